package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smk-cms-api/internal/dto"
	"github.com/noah-isme/smk-cms-api/internal/models"
	"github.com/noah-isme/smk-cms-api/internal/service"
	"github.com/noah-isme/smk-cms-api/pkg/response"
)

type programService interface {
	List(ctx context.Context) ([]models.Program, error)
	Get(ctx context.Context, id string) (*models.Program, error)
	Create(ctx context.Context, req dto.ProgramRequest, actor service.Actor) (*models.Program, error)
	Update(ctx context.Context, id string, req dto.ProgramRequest, actor service.Actor) (*models.Program, error)
}

// ProgramHandler handles study program endpoints.
type ProgramHandler struct {
	service programService
}

// NewProgramHandler constructs the handler.
func NewProgramHandler(svc programService) *ProgramHandler {
	return &ProgramHandler{service: svc}
}

// PublicList godoc
// @Summary Study programs in display order
// @Tags Public
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /public/programs [get]
func (h *ProgramHandler) PublicList(c *gin.Context) {
	programs, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Public(c, programs)
}

// List godoc
// @Summary Study programs
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/programs [get]
func (h *ProgramHandler) List(c *gin.Context) {
	programs, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, programs, nil)
}

// Get godoc
// @Summary Study program by id
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Router /admin/programs/{id} [get]
func (h *ProgramHandler) Get(c *gin.Context) {
	program, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program, nil)
}

// Create godoc
// @Summary Append a study program
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ProgramRequest true "Program payload"
// @Success 201 {object} response.Envelope
// @Router /admin/programs [post]
func (h *ProgramHandler) Create(c *gin.Context) {
	var req dto.ProgramRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	program, err := h.service.Create(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, program)
}

// Update godoc
// @Summary Edit a study program
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Param payload body dto.ProgramRequest true "Program payload"
// @Success 200 {object} response.Envelope
// @Router /admin/programs/{id} [put]
func (h *ProgramHandler) Update(c *gin.Context) {
	var req dto.ProgramRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	program, err := h.service.Update(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program, nil)
}
