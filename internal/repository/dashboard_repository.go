package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/smk-cms-api/internal/models"
)

// DashboardRepository runs read-only aggregate queries for the admin dashboard.
type DashboardRepository struct {
	db          *sqlx.DB
	submissions *SubmissionRepository
}

// NewDashboardRepository constructs the repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db, submissions: NewSubmissionRepository(db)}
}

// ContentCounts counts rows of every content table in a single round trip.
func (r *DashboardRepository) ContentCounts(ctx context.Context) (*models.ContentCounts, error) {
	const query = `SELECT
    (SELECT COUNT(*) FROM menus) AS menus,
    (SELECT COUNT(*) FROM page_sections) AS page_sections,
    (SELECT COUNT(*) FROM programs) AS programs,
    (SELECT COUNT(*) FROM news) AS news,
    (SELECT COUNT(*) FROM teachers) AS teachers,
    (SELECT COUNT(*) FROM events) AS events,
    (SELECT COUNT(*) FROM gallery) AS gallery,
    (SELECT COUNT(*) FROM achievements) AS achievements`
	var counts models.ContentCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count content: %w", err)
	}
	return &counts, nil
}

// SubmissionCounts aggregates PPDB submissions per status.
func (r *DashboardRepository) SubmissionCounts(ctx context.Context) ([]models.SubmissionStatusCount, error) {
	return r.submissions.CountByStatus(ctx)
}
