package handler

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smk-cms-api/internal/dto"
	"github.com/noah-isme/smk-cms-api/internal/service"
	appErrors "github.com/noah-isme/smk-cms-api/pkg/errors"
	"github.com/noah-isme/smk-cms-api/pkg/response"
)

const (
	maxSettingsBody      = 1 << 20
	jsonPatchContentType = "application/json-patch+json"
)

type settingsService interface {
	Get(ctx context.Context, key string) (*dto.SettingDocument, error)
	List(ctx context.Context) ([]dto.SettingDocument, error)
	Replace(ctx context.Context, key string, body json.RawMessage, actor service.Actor) (*dto.SettingDocument, error)
	Patch(ctx context.Context, key string, patch json.RawMessage, format service.PatchFormat, actor service.Actor) (*dto.SettingDocument, error)
}

// SettingsHandler serves site settings documents.
type SettingsHandler struct {
	service settingsService
}

// NewSettingsHandler constructs the handler.
func NewSettingsHandler(svc settingsService) *SettingsHandler {
	return &SettingsHandler{service: svc}
}

// PublicGet godoc
// @Summary Settings document merged with defaults
// @Tags Public
// @Produce json
// @Param key path string true "beranda, theme, branding or hero_slider"
// @Success 200 {object} response.Envelope
// @Router /public/settings/{key} [get]
func (h *SettingsHandler) PublicGet(c *gin.Context) {
	doc, err := h.service.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Public(c, doc)
}

// List godoc
// @Summary Every settings document
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /admin/settings [get]
func (h *SettingsHandler) List(c *gin.Context) {
	docs, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, docs, nil)
}

// Get godoc
// @Summary Settings document by key
// @Tags Settings
// @Produce json
// @Security BearerAuth
// @Param key path string true "Settings key"
// @Success 200 {object} response.Envelope
// @Router /admin/settings/{key} [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	doc, err := h.service.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// Replace godoc
// @Summary Replace a settings document
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Settings key"
// @Param payload body object true "Whole document"
// @Success 200 {object} response.Envelope
// @Router /admin/settings/{key} [put]
func (h *SettingsHandler) Replace(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	doc, err := h.service.Replace(c.Request.Context(), c.Param("key"), body, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// Patch godoc
// @Summary Patch a settings document
// @Description application/json-patch+json bodies are RFC 6902 operation lists; any other JSON body is an RFC 7396 merge patch.
// @Tags Settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Settings key"
// @Param payload body object true "Patch"
// @Success 200 {object} response.Envelope
// @Router /admin/settings/{key} [patch]
func (h *SettingsHandler) Patch(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format := service.PatchFormatMerge
	if mediaType, _, parseErr := mime.ParseMediaType(c.GetHeader("Content-Type")); parseErr == nil && mediaType == jsonPatchContentType {
		format = service.PatchFormatJSONPatch
	}
	doc, err := h.service.Patch(c.Request.Context(), c.Param("key"), body, format, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

func readBody(c *gin.Context) (json.RawMessage, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSettingsBody+1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read request body")
	}
	if len(body) > maxSettingsBody {
		return nil, appErrors.Clone(appErrors.ErrValidation, "request body is too large")
	}
	if !json.Valid(body) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "request body must be valid JSON")
	}
	return body, nil
}
