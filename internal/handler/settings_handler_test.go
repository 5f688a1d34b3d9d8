package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smk-cms-api/internal/dto"
	"github.com/noah-isme/smk-cms-api/internal/service"
	appErrors "github.com/noah-isme/smk-cms-api/pkg/errors"
)

type fakeSettingsSrv struct {
	body   json.RawMessage
	format service.PatchFormat
}

func (f *fakeSettingsSrv) Get(_ context.Context, key string) (*dto.SettingDocument, error) {
	if key != "theme" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown settings key")
	}
	return &dto.SettingDocument{Key: key, Version: 1, Value: json.RawMessage(`{"radius":"md"}`)}, nil
}

func (f *fakeSettingsSrv) List(context.Context) ([]dto.SettingDocument, error) {
	return []dto.SettingDocument{{Key: "theme", Value: json.RawMessage(`{}`)}}, nil
}

func (f *fakeSettingsSrv) Replace(_ context.Context, key string, body json.RawMessage, _ service.Actor) (*dto.SettingDocument, error) {
	f.body = body
	return &dto.SettingDocument{Key: key, Value: body, Stored: true}, nil
}

func (f *fakeSettingsSrv) Patch(_ context.Context, key string, patch json.RawMessage, format service.PatchFormat, _ service.Actor) (*dto.SettingDocument, error) {
	f.body = patch
	f.format = format
	return &dto.SettingDocument{Key: key, Value: json.RawMessage(`{}`), Stored: true}, nil
}

func settingsRouter(srv *fakeSettingsSrv) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewSettingsHandler(srv)
	router := gin.New()
	router.GET("/public/settings/:key", handler.PublicGet)
	router.GET("/admin/settings", handler.List)
	router.PUT("/admin/settings/:key", handler.Replace)
	router.PATCH("/admin/settings/:key", handler.Patch)
	return router
}

func TestSettingsHandlerPublicGet(t *testing.T) {
	router := settingsRouter(&fakeSettingsSrv{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/public/settings/theme", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))
	value := decodeEnvelope(t, rec).Data["value"].(map[string]interface{})
	assert.Equal(t, "md", value["radius"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/public/settings/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSettingsHandlerReplaceRequiresJSON(t *testing.T) {
	srv := &fakeSettingsSrv{}
	router := settingsRouter(srv)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/admin/settings/theme", strings.NewReader(`{"radius":`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/admin/settings/theme", strings.NewReader(`{"radius":"lg"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"radius":"lg"}`, string(srv.body))
}

func TestSettingsHandlerPatchFormatFollowsContentType(t *testing.T) {
	srv := &fakeSettingsSrv{}
	router := settingsRouter(srv)

	req := httptest.NewRequest(http.MethodPatch, "/admin/settings/theme", strings.NewReader(`{"dark_mode":true}`))
	req.Header.Set("Content-Type", "application/merge-patch+json")
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, service.PatchFormatMerge, srv.format)

	req = httptest.NewRequest(http.MethodPatch, "/admin/settings/theme", strings.NewReader(`[{"op":"replace","path":"/radius","value":"sm"}]`))
	req.Header.Set("Content-Type", "application/json-patch+json; charset=utf-8")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.PatchFormatJSONPatch, srv.format)
}
