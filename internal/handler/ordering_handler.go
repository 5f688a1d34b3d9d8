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

type orderingService interface {
	Move(ctx context.Context, col models.Collection, id string, direction models.Direction, actor service.Actor) (*dto.MoveResult, error)
	Remove(ctx context.Context, col models.Collection, id string, actor service.Actor) error
}

// OrderingHandler exposes move and remove for every ordered collection.
type OrderingHandler struct {
	service orderingService
}

// NewOrderingHandler constructs the handler.
func NewOrderingHandler(svc orderingService) *OrderingHandler {
	return &OrderingHandler{service: svc}
}

// Move godoc
// @Summary Move an item one step up or down within its group
// @Tags Ordering
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Param payload body dto.MoveRequest true "Direction"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/menus/{id}/move [post]
// @Router /admin/sections/{id}/move [post]
// @Router /admin/programs/{id}/move [post]
func (h *OrderingHandler) Move(col models.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.MoveRequest
		if err := bindJSON(c, &req); err != nil {
			response.Error(c, err)
			return
		}
		result, err := h.service.Move(c.Request.Context(), col, c.Param("id"), req.Direction, actorFromContext(c))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, result, nil)
	}
}

// Remove godoc
// @Summary Delete an item; siblings keep their positions
// @Tags Ordering
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Success 204
// @Router /admin/menus/{id} [delete]
// @Router /admin/sections/{id} [delete]
// @Router /admin/programs/{id} [delete]
func (h *OrderingHandler) Remove(col models.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.service.Remove(c.Request.Context(), col, c.Param("id"), actorFromContext(c)); err != nil {
			response.Error(c, err)
			return
		}
		response.NoContent(c)
	}
}
