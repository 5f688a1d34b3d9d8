package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smk-cms-api/internal/dto"
	"github.com/noah-isme/smk-cms-api/internal/models"
	appErrors "github.com/noah-isme/smk-cms-api/pkg/errors"
)

type exportListerStub struct {
	rows   []models.Submission
	total  int
	filter models.SubmissionFilter
}

func (e *exportListerStub) List(_ context.Context, filter models.SubmissionFilter) ([]models.Submission, int, error) {
	e.filter = filter
	return e.rows, e.total, nil
}

type programListerStub []models.Program

func (p programListerStub) List(context.Context) ([]models.Program, error) {
	return p, nil
}

func TestExportServiceRendersCSVWithProgramNames(t *testing.T) {
	lister := &exportListerStub{
		rows: []models.Submission{{
			RegistrationNumber: "PPDB-2026-A1B2C3",
			FullName:           "Siti Aminah",
			Email:              "siti@example.com",
			Phone:              "0812",
			OriginSchool:       "SMP 4",
			ProgramID:          testProgramID,
			Status:             models.SubmissionStatusApproved,
			CreatedAt:          time.Date(2026, 5, 2, 3, 4, 5, 0, time.UTC),
		}},
		total: 1,
	}
	svc := NewExportService(lister, programListerStub{{ID: testProgramID, Name: "Teknik Komputer dan Jaringan"}}, nil, 50, nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC) }

	file, err := svc.Submissions(context.Background(), dto.ExportQuery{SubmissionQuery: dto.SubmissionQuery{Status: "approved"}})
	require.NoError(t, err)
	assert.Equal(t, "ppdb-20260601-093000.csv", file.Filename)
	assert.Contains(t, file.ContentType, "text/csv")
	assert.Equal(t, models.SubmissionStatusApproved, lister.filter.Status)
	assert.Equal(t, 50, lister.filter.PageSize)

	records, err := csv.NewReader(bytes.NewReader(file.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, submissionExportHeaders, records[0])
	assert.Equal(t, "Teknik Komputer dan Jaringan", records[1][5])
	assert.Equal(t, "2026-05-02T03:04:05Z", records[1][7])
}

func TestExportServiceRendersPDF(t *testing.T) {
	svc := NewExportService(&exportListerStub{}, nil, nil, 0, nil, nil)

	file, err := svc.Submissions(context.Background(), dto.ExportQuery{Format: "PDF"})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))
}

func TestExportServiceRejectsUnknownInput(t *testing.T) {
	svc := NewExportService(&exportListerStub{}, nil, nil, 0, nil, nil)

	_, err := svc.Submissions(context.Background(), dto.ExportQuery{Format: "xlsx"})
	require.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Submissions(context.Background(), dto.ExportQuery{SubmissionQuery: dto.SubmissionQuery{Status: "archived"}})
	require.ErrorIs(t, err, appErrors.ErrValidation)
}
