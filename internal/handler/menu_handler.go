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

type menuService interface {
	Tree(ctx context.Context, activeOnly bool) ([]models.MenuNode, error)
	Create(ctx context.Context, req dto.CreateMenuRequest, actor service.Actor) (*models.MenuItem, error)
	Update(ctx context.Context, id string, req dto.UpdateMenuRequest, actor service.Actor) (*models.MenuItem, error)
}

// MenuHandler handles navigation menu endpoints.
type MenuHandler struct {
	service menuService
}

// NewMenuHandler constructs the handler.
func NewMenuHandler(svc menuService) *MenuHandler {
	return &MenuHandler{service: svc}
}

// PublicTree godoc
// @Summary Active navigation tree
// @Tags Public
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /public/menus [get]
func (h *MenuHandler) PublicTree(c *gin.Context) {
	tree, err := h.service.Tree(c.Request.Context(), true)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Public(c, tree)
}

// Tree godoc
// @Summary Full navigation tree including inactive items
// @Tags Menus
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/menus [get]
func (h *MenuHandler) Tree(c *gin.Context) {
	tree, err := h.service.Tree(c.Request.Context(), false)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tree, nil)
}

// Create godoc
// @Summary Append a menu item
// @Tags Menus
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateMenuRequest true "Menu payload"
// @Success 201 {object} response.Envelope
// @Router /admin/menus [post]
func (h *MenuHandler) Create(c *gin.Context) {
	var req dto.CreateMenuRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Create(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Edit a menu item
// @Tags Menus
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Menu ID"
// @Param payload body dto.UpdateMenuRequest true "Menu payload"
// @Success 200 {object} response.Envelope
// @Router /admin/menus/{id} [put]
func (h *MenuHandler) Update(c *gin.Context) {
	var req dto.UpdateMenuRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}
