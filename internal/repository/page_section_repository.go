package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/smk-cms-api/internal/models"
)

const pageSectionColumns = `id, page, section_key, title, content, is_visible, position, created_at, updated_at`

// PageSectionRepository persists page builder sections.
type PageSectionRepository struct {
	db *sqlx.DB
}

// NewPageSectionRepository constructs the repository.
func NewPageSectionRepository(db *sqlx.DB) *PageSectionRepository {
	return &PageSectionRepository{db: db}
}

// Create appends section to the end of its page.
func (r *PageSectionRepository) Create(ctx context.Context, section *models.PageSection) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	if len(section.Content) == 0 {
		section.Content = []byte(`{}`)
	}
	now := time.Now().UTC()
	section.CreatedAt = now
	section.UpdatedAt = now

	page := section.Page
	return appendInPartition(ctx, r.db, models.CollectionPageSections, &page, func(tx *sqlx.Tx, position int) error {
		section.Position = position
		const query = `INSERT INTO page_sections (` + pageSectionColumns + `)
VALUES (:id, :page, :section_key, :title, :content, :is_visible, :position, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, query, section); err != nil {
			return fmt.Errorf("insert page section: %w", err)
		}
		return nil
	})
}

// GetByID fetches a section.
func (r *PageSectionRepository) GetByID(ctx context.Context, id string) (*models.PageSection, error) {
	const query = `SELECT ` + pageSectionColumns + ` FROM page_sections WHERE id = $1`
	var section models.PageSection
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// ListByPage returns the sections of page in display order.
func (r *PageSectionRepository) ListByPage(ctx context.Context, page string, visibleOnly bool) ([]models.PageSection, error) {
	query := `SELECT ` + pageSectionColumns + ` FROM page_sections WHERE page = $1`
	if visibleOnly {
		query += ` AND is_visible = TRUE`
	}
	query += ` ORDER BY position ASC, created_at ASC, id ASC`
	var sections []models.PageSection
	if err := r.db.SelectContext(ctx, &sections, query, page); err != nil {
		return nil, fmt.Errorf("list page sections: %w", err)
	}
	return sections, nil
}

// Update rewrites title, content and visibility.
func (r *PageSectionRepository) Update(ctx context.Context, section *models.PageSection) error {
	section.UpdatedAt = time.Now().UTC()
	const query = `UPDATE page_sections SET title = :title, content = :content, is_visible = :is_visible, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, section)
	if err != nil {
		return fmt.Errorf("update page section: %w", err)
	}
	return expectAffected(result)
}

// SetVisibility toggles whether the section renders publicly.
func (r *PageSectionRepository) SetVisibility(ctx context.Context, id string, visible bool) error {
	const query = `UPDATE page_sections SET is_visible = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, visible, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set page section visibility: %w", err)
	}
	return expectAffected(result)
}

func expectAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
