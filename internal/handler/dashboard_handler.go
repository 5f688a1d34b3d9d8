package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smk-cms-api/internal/dto"
	"github.com/noah-isme/smk-cms-api/internal/middleware"
	"github.com/noah-isme/smk-cms-api/internal/models"
	appErrors "github.com/noah-isme/smk-cms-api/pkg/errors"
	"github.com/noah-isme/smk-cms-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context, refresh bool) (*models.DashboardSummary, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary godoc
// @Summary Admin dashboard counts
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param refresh query bool false "Skip the cached aggregate"
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var query dto.DashboardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "refresh must be a boolean"))
		return
	}
	summary, cacheHit, err := h.service.Summary(c.Request.Context(), query.Refresh)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ResponseMeta(c))
}
