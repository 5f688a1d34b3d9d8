package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/smk-cms-api/internal/models"
)

const programColumns = `id, name, slug, description, icon, position, created_at, updated_at`

// ProgramRepository persists study programs.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository constructs the repository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// Create appends program after the current last program.
func (r *ProgramRepository) Create(ctx context.Context, program *models.Program) error {
	if program.ID == "" {
		program.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	program.CreatedAt = now
	program.UpdatedAt = now

	return appendInPartition(ctx, r.db, models.CollectionPrograms, nil, func(tx *sqlx.Tx, position int) error {
		program.Position = position
		const query = `INSERT INTO programs (` + programColumns + `)
VALUES (:id, :name, :slug, :description, :icon, :position, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, query, program); err != nil {
			return fmt.Errorf("insert program: %w", err)
		}
		return nil
	})
}

// GetByID fetches a program.
func (r *ProgramRepository) GetByID(ctx context.Context, id string) (*models.Program, error) {
	const query = `SELECT ` + programColumns + ` FROM programs WHERE id = $1`
	var program models.Program
	if err := r.db.GetContext(ctx, &program, query, id); err != nil {
		return nil, err
	}
	return &program, nil
}

// List returns all programs in display order.
func (r *ProgramRepository) List(ctx context.Context) ([]models.Program, error) {
	const query = `SELECT ` + programColumns + ` FROM programs ORDER BY position ASC, created_at ASC, id ASC`
	var programs []models.Program
	if err := r.db.SelectContext(ctx, &programs, query); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programs, nil
}

// Update rewrites the descriptive columns of a program.
func (r *ProgramRepository) Update(ctx context.Context, program *models.Program) error {
	program.UpdatedAt = time.Now().UTC()
	const query = `UPDATE programs SET name = :name, slug = :slug, description = :description, icon = :icon, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, program)
	if err != nil {
		return fmt.Errorf("update program: %w", err)
	}
	return expectAffected(result)
}
