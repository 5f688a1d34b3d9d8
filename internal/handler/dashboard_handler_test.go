package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smk-cms-api/internal/models"
	appErrors "github.com/noah-isme/smk-cms-api/pkg/errors"
)

type fakeDashboardSrv struct {
	summary *models.DashboardSummary
	hit     bool
	err     error
	refresh bool
}

func (f *fakeDashboardSrv) Summary(_ context.Context, refresh bool) (*models.DashboardSummary, bool, error) {
	f.refresh = refresh
	return f.summary, f.hit, f.err
}

type responseEnvelope struct {
	Data  map[string]interface{} `json:"data"`
	Meta  map[string]interface{} `json:"meta"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Pagination *models.Pagination `json:"pagination"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestDashboardHandlerSummaryReportsCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeDashboardSrv{summary: &models.DashboardSummary{TotalPPDB: 9}, hit: true}
	handler := NewDashboardHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/dashboard?refresh=true", nil)

	handler.Summary(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, srv.refresh)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, float64(9), envelope.Data["total_ppdb"])
}

func TestDashboardHandlerSummaryErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{err: appErrors.Wrap(errors.New("db"), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count content")})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	handler.Summary(c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/dashboard?refresh=maybe", nil)
	handler.Summary(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
