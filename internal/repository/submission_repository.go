package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/smk-cms-api/internal/models"
)

const submissionColumns = `id, registration_number, full_name, email, phone, origin_school, program_id,
       parent_name, address, birth_date, status, created_at`

// SubmissionRepository persists PPDB submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create inserts a new submission. Status defaults to pending.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.Status == "" {
		submission.Status = models.SubmissionStatusPending
	}
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO ppdb_submissions (id, registration_number, full_name, email, phone, origin_school, program_id,
       parent_name, address, birth_date, status, created_at)
VALUES (:id, :registration_number, :full_name, :email, :phone, :origin_school, :program_id,
        :parent_name, :address, :birth_date, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// GetByID fetches a submission.
func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM ppdb_submissions WHERE id = $1`
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, id); err != nil {
		return nil, err
	}
	return &submission, nil
}

// List returns a page of submissions, newest first, with the total match count.
func (r *SubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, int, error) {
	where, args := buildSubmissionFilter(filter)

	countQuery := `SELECT COUNT(*) FROM ppdb_submissions` + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size < 1 {
		size = 20
	}
	query := fmt.Sprintf(`SELECT %s FROM ppdb_submissions%s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`,
		submissionColumns, where, size, (page-1)*size)

	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, total, nil
}

// UpdateStatusIfPending moves a pending submission to status. It returns
// sql.ErrNoRows when the row is missing or no longer pending, so concurrent
// deciders cannot both succeed.
func (r *SubmissionRepository) UpdateStatusIfPending(ctx context.Context, id string, status models.SubmissionStatus) error {
	const query = `UPDATE ppdb_submissions SET status = $1 WHERE id = $2 AND status = 'pending'`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update submission status: %w", err)
	}
	return expectAffected(result)
}

// CountByStatus aggregates submissions per status.
func (r *SubmissionRepository) CountByStatus(ctx context.Context) ([]models.SubmissionStatusCount, error) {
	const query = `SELECT status, COUNT(*) AS total FROM ppdb_submissions GROUP BY status ORDER BY status`
	var counts []models.SubmissionStatusCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count submissions by status: %w", err)
	}
	return counts, nil
}

// likeEscaper makes search text match literally inside an ILIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func buildSubmissionFilter(filter models.SubmissionFilter) (string, []interface{}) {
	conditions := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+likeEscaper.Replace(search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			`(full_name ILIKE $%[1]d ESCAPE '\' OR origin_school ILIKE $%[1]d ESCAPE '\' OR email ILIKE $%[1]d ESCAPE '\' OR registration_number ILIKE $%[1]d ESCAPE '\')`, n))
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
