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

type pageSectionService interface {
	List(ctx context.Context, page string, visibleOnly bool) ([]models.PageSection, error)
	Create(ctx context.Context, page string, req dto.CreatePageSectionRequest, actor service.Actor) (*models.PageSection, error)
	Update(ctx context.Context, id string, req dto.UpdatePageSectionRequest, actor service.Actor) (*models.PageSection, error)
	SetVisibility(ctx context.Context, id string, req dto.VisibilityRequest, actor service.Actor) (*models.PageSection, error)
}

// PageSectionHandler handles page builder endpoints.
type PageSectionHandler struct {
	service pageSectionService
}

// NewPageSectionHandler constructs the handler.
func NewPageSectionHandler(svc pageSectionService) *PageSectionHandler {
	return &PageSectionHandler{service: svc}
}

// PublicList godoc
// @Summary Visible sections of a page in display order
// @Tags Public
// @Produce json
// @Param page path string true "Page key"
// @Success 200 {object} response.Envelope
// @Router /public/pages/{page}/sections [get]
func (h *PageSectionHandler) PublicList(c *gin.Context) {
	sections, err := h.service.List(c.Request.Context(), c.Param("page"), true)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Public(c, sections)
}

// List godoc
// @Summary All sections of a page
// @Tags Page Sections
// @Produce json
// @Security BearerAuth
// @Param page path string true "Page key"
// @Success 200 {object} response.Envelope
// @Router /admin/pages/{page}/sections [get]
func (h *PageSectionHandler) List(c *gin.Context) {
	sections, err := h.service.List(c.Request.Context(), c.Param("page"), false)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections, nil)
}

// Create godoc
// @Summary Append a section to a page
// @Tags Page Sections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page path string true "Page key"
// @Param payload body dto.CreatePageSectionRequest true "Section payload"
// @Success 201 {object} response.Envelope
// @Router /admin/pages/{page}/sections [post]
func (h *PageSectionHandler) Create(c *gin.Context) {
	var req dto.CreatePageSectionRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	section, err := h.service.Create(c.Request.Context(), c.Param("page"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, section)
}

// Update godoc
// @Summary Edit a section
// @Tags Page Sections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Section ID"
// @Param payload body dto.UpdatePageSectionRequest true "Section payload"
// @Success 200 {object} response.Envelope
// @Router /admin/sections/{id} [put]
func (h *PageSectionHandler) Update(c *gin.Context) {
	var req dto.UpdatePageSectionRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	section, err := h.service.Update(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, section, nil)
}

// SetVisibility godoc
// @Summary Show or hide a section
// @Tags Page Sections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Section ID"
// @Param payload body dto.VisibilityRequest true "Visibility"
// @Success 200 {object} response.Envelope
// @Router /admin/sections/{id}/visibility [post]
func (h *PageSectionHandler) SetVisibility(c *gin.Context) {
	var req dto.VisibilityRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	section, err := h.service.SetVisibility(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, section, nil)
}
