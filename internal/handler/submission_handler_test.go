package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smk-cms-api/internal/dto"
	"github.com/noah-isme/smk-cms-api/internal/middleware"
	"github.com/noah-isme/smk-cms-api/internal/models"
	"github.com/noah-isme/smk-cms-api/internal/service"
	appErrors "github.com/noah-isme/smk-cms-api/pkg/errors"
)

type fakeSubmissionSrv struct {
	created   dto.CreateSubmissionRequest
	query     dto.SubmissionQuery
	decided   dto.DecideRequest
	actor     service.Actor
	decideErr error
}

func (f *fakeSubmissionSrv) Create(_ context.Context, req dto.CreateSubmissionRequest, actor service.Actor) (*models.Submission, error) {
	f.created = req
	f.actor = actor
	return &models.Submission{ID: "sub-1", RegistrationNumber: "PPDB-2026-ABC123", Status: models.SubmissionStatusPending, Email: req.Email}, nil
}

func (f *fakeSubmissionSrv) Get(_ context.Context, id string) (*models.Submission, error) {
	if id != "sub-1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
	}
	return &models.Submission{ID: id, Status: models.SubmissionStatusPending}, nil
}

func (f *fakeSubmissionSrv) List(_ context.Context, query dto.SubmissionQuery) ([]models.Submission, *models.Pagination, error) {
	f.query = query
	return []models.Submission{{ID: "sub-1"}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (f *fakeSubmissionSrv) Decide(_ context.Context, id string, req dto.DecideRequest, actor service.Actor) (*models.Submission, error) {
	f.decided = req
	f.actor = actor
	if f.decideErr != nil {
		return nil, f.decideErr
	}
	return &models.Submission{ID: id, Status: req.Status}, nil
}

type fakeExporter struct {
	query dto.ExportQuery
}

func (f *fakeExporter) Submissions(_ context.Context, query dto.ExportQuery) (*dto.ExportFile, error) {
	f.query = query
	return &dto.ExportFile{Filename: "ppdb-20260601-090000.csv", ContentType: "text/csv; charset=utf-8", Body: []byte("a,b\n")}, nil
}

func submissionRouter(srv *fakeSubmissionSrv, exporter *fakeExporter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewSubmissionHandler(srv, exporter)
	router := gin.New()
	router.POST("/public/ppdb", handler.Submit)
	admin := router.Group("/admin", func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "reviewer-1", Role: models.RoleAdmin})
	})
	admin.GET("/ppdb", handler.List)
	admin.GET("/ppdb/export", handler.Export)
	admin.GET("/ppdb/:id", handler.Get)
	admin.POST("/ppdb/:id/decision", handler.Decide)
	return router
}

func TestSubmissionHandlerSubmit(t *testing.T) {
	srv := &fakeSubmissionSrv{}
	router := submissionRouter(srv, nil)

	body := `{"full_name":"Budi","email":"budi@example.com","phone":"0812345","origin_school":"SMP 1","program_id":"4f1c2a4e-8d0b-4c53-9a57-2f0e6b1f3a10"}`
	req := httptest.NewRequest(http.MethodPost, "/public/ppdb", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "PPDB-2026-ABC123", envelope.Data["registration_number"])
	assert.Equal(t, "pending", envelope.Data["status"])
	assert.NotContains(t, envelope.Data, "email")
	assert.Equal(t, "Budi", srv.created.FullName)
	assert.Empty(t, srv.actor.UserID)

	req = httptest.NewRequest(http.MethodPost, "/public/ppdb", strings.NewReader(`{"full_name":`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, rec).Error.Code)
}

func TestSubmissionHandlerListBindsFilters(t *testing.T) {
	srv := &fakeSubmissionSrv{}
	router := submissionRouter(srv, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/ppdb?status=pending&q=smp&page=2&page_size=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.SubmissionQuery{Status: "pending", Search: "smp", Page: 2, PageSize: 5}, srv.query)
	assert.Equal(t, 1, decodeEnvelope(t, rec).Pagination.TotalCount)
}

func TestSubmissionHandlerDecide(t *testing.T) {
	srv := &fakeSubmissionSrv{}
	router := submissionRouter(srv, nil)

	req := httptest.NewRequest(http.MethodPost, "/admin/ppdb/sub-1/decision", strings.NewReader(`{"status":"approved"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.SubmissionStatusApproved, srv.decided.Status)
	assert.Equal(t, "reviewer-1", srv.actor.UserID)

	srv.decideErr = appErrors.Clone(appErrors.ErrInvalidState, "submission is already approved")
	req = httptest.NewRequest(http.MethodPost, "/admin/ppdb/sub-1/decision", strings.NewReader(`{"status":"rejected"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "INVALID_STATE", envelope.Error.Code)
	assert.Equal(t, "submission is already approved", envelope.Error.Message)
}

func TestSubmissionHandlerGetAndExport(t *testing.T) {
	exporter := &fakeExporter{}
	router := submissionRouter(&fakeSubmissionSrv{}, exporter)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/ppdb/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/ppdb/export?format=csv&status=approved", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "ppdb-20260601-090000.csv")
	assert.Equal(t, "a,b\n", rec.Body.String())
	assert.Equal(t, "approved", exporter.query.Status)
	assert.Equal(t, "csv", exporter.query.Format)
}
