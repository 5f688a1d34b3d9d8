package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smk-cms-api/internal/dto"
	"github.com/noah-isme/smk-cms-api/internal/models"
	"github.com/noah-isme/smk-cms-api/internal/service"
	appErrors "github.com/noah-isme/smk-cms-api/pkg/errors"
	"github.com/noah-isme/smk-cms-api/pkg/response"
)

type submissionService interface {
	Create(ctx context.Context, req dto.CreateSubmissionRequest, actor service.Actor) (*models.Submission, error)
	Get(ctx context.Context, id string) (*models.Submission, error)
	List(ctx context.Context, query dto.SubmissionQuery) ([]models.Submission, *models.Pagination, error)
	Decide(ctx context.Context, id string, req dto.DecideRequest, actor service.Actor) (*models.Submission, error)
}

type submissionExporter interface {
	Submissions(ctx context.Context, query dto.ExportQuery) (*dto.ExportFile, error)
}

// SubmissionHandler handles PPDB intake and review endpoints.
type SubmissionHandler struct {
	service  submissionService
	exporter submissionExporter
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(svc submissionService, exporter submissionExporter) *SubmissionHandler {
	return &SubmissionHandler{service: svc, exporter: exporter}
}

// Submit godoc
// @Summary Register for PPDB
// @Tags Public
// @Accept json
// @Produce json
// @Param payload body dto.CreateSubmissionRequest true "Registration form"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /public/ppdb [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req dto.CreateSubmissionRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	submission, err := h.service.Create(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{
		"id":                  submission.ID,
		"registration_number": submission.RegistrationNumber,
		"status":              submission.Status,
	})
}

// List godoc
// @Summary List PPDB submissions
// @Tags PPDB
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Param q query string false "Search name, school, email or registration number"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/ppdb [get]
func (h *SubmissionHandler) List(c *gin.Context) {
	var query dto.SubmissionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	submissions, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submissions, pagination)
}

// Get godoc
// @Summary PPDB submission detail
// @Tags PPDB
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope
// @Router /admin/ppdb/{id} [get]
func (h *SubmissionHandler) Get(c *gin.Context) {
	submission, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}

// Decide godoc
// @Summary Approve or reject a pending submission
// @Tags PPDB
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Param payload body dto.DecideRequest true "Outcome"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/ppdb/{id}/decision [post]
func (h *SubmissionHandler) Decide(c *gin.Context) {
	var req dto.DecideRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	submission, err := h.service.Decide(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}

// Export godoc
// @Summary Download submissions as CSV or PDF
// @Tags PPDB
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv (default) or pdf"
// @Param status query string false "pending, approved or rejected"
// @Param q query string false "Search keyword"
// @Success 200 {file} file
// @Router /admin/ppdb/export [get]
func (h *SubmissionHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	file, err := h.exporter.Submissions(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
