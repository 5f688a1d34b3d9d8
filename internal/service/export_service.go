package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/smk-cms-api/internal/dto"
	"github.com/noah-isme/smk-cms-api/internal/models"
	appErrors "github.com/noah-isme/smk-cms-api/pkg/errors"
	"github.com/noah-isme/smk-cms-api/pkg/export"
)

const defaultExportMaxRows = 5000

var submissionExportHeaders = []string{
	"Registration Number", "Full Name", "Email", "Phone", "Origin School", "Program", "Status", "Submitted At",
}

type submissionLister interface {
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, int, error)
}

type programLister interface {
	List(ctx context.Context) ([]models.Program, error)
}

type renderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

// ExportService renders filtered PPDB submissions as CSV or PDF.
type ExportService struct {
	submissions submissionLister
	programs    programLister
	csv         renderer
	pdf         renderer
	logger      *zap.Logger
	maxRows     int
	now         func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to pkg/export.
func NewExportService(submissions submissionLister, programs programLister, logger *zap.Logger, maxRows int, csv, pdf renderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRows <= 0 {
		maxRows = defaultExportMaxRows
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		submissions: submissions,
		programs:    programs,
		csv:         csv,
		pdf:         pdf,
		logger:      logger,
		maxRows:     maxRows,
		now:         time.Now,
	}
}

// Submissions renders every submission matching query, newest first.
func (s *ExportService) Submissions(ctx context.Context, query dto.ExportQuery) (*dto.ExportFile, error) {
	format := strings.ToLower(strings.TrimSpace(query.Format))
	if format == "" {
		format = "csv"
	}
	var out renderer
	switch format {
	case "csv":
		out = s.csv
	case "pdf":
		out = s.pdf
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	filter, err := submissionFilter(query.SubmissionQuery)
	if err != nil {
		return nil, err
	}
	filter.Page = 1
	filter.PageSize = s.maxRows
	rows, total, err := s.submissions.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submissions")
	}
	if total > len(rows) {
		s.logger.Warn("ppdb export truncated", zap.Int("total", total), zap.Int("exported", len(rows)))
	}

	names, err := s.programNames(ctx)
	if err != nil {
		return nil, err
	}
	generated := s.now().UTC()
	dataset := export.Dataset{
		Title:    "Data Pendaftar PPDB",
		Subtitle: exportSubtitle(filter, generated, len(rows), total),
		Headers:  submissionExportHeaders,
		Rows:     make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		program := names[row.ProgramID]
		if program == "" {
			program = row.ProgramID
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Registration Number": row.RegistrationNumber,
			"Full Name":           row.FullName,
			"Email":               row.Email,
			"Phone":               row.Phone,
			"Origin School":       row.OriginSchool,
			"Program":             program,
			"Status":              string(row.Status),
			"Submitted At":        row.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	body, err := out.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("ppdb-%s.%s", generated.Format("20060102-150405"), format),
		ContentType: out.ContentType(),
		Body:        body,
	}, nil
}

func (s *ExportService) programNames(ctx context.Context) (map[string]string, error) {
	names := make(map[string]string)
	if s.programs == nil {
		return names, nil
	}
	programs, err := s.programs.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load programs")
	}
	for _, program := range programs {
		names[program.ID] = program.Name
	}
	return names, nil
}

func exportSubtitle(filter models.SubmissionFilter, generated time.Time, exported, total int) string {
	parts := []string{"Generated " + generated.Format("2006-01-02 15:04 MST")}
	if filter.Status != "" {
		parts = append(parts, "status "+string(filter.Status))
	}
	if filter.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", filter.Search))
	}
	parts = append(parts, fmt.Sprintf("%d of %d rows", exported, total))
	return strings.Join(parts, " | ")
}
