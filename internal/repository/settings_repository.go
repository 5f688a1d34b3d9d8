package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/smk-cms-api/internal/models"
)

// SettingsRepository persists settings documents keyed by name.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs the repository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get fetches a stored document. Missing keys return sql.ErrNoRows.
func (r *SettingsRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	const query = `SELECT key, version, value, updated_by, updated_at FROM settings WHERE key = $1`
	var setting models.Setting
	if err := r.db.GetContext(ctx, &setting, query, key); err != nil {
		return nil, err
	}
	return &setting, nil
}

// List returns every stored document.
func (r *SettingsRepository) List(ctx context.Context) ([]models.Setting, error) {
	const query = `SELECT key, version, value, updated_by, updated_at FROM settings ORDER BY key ASC`
	var settings []models.Setting
	if err := r.db.SelectContext(ctx, &settings, query); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return settings, nil
}

// Upsert writes the whole document, replacing any stored value.
func (r *SettingsRepository) Upsert(ctx context.Context, setting *models.Setting) error {
	const query = `INSERT INTO settings (key, version, value, updated_by, updated_at)
VALUES (:key, :version, :value, :updated_by, :updated_at)
ON CONFLICT (key)
DO UPDATE SET version = EXCLUDED.version, value = EXCLUDED.value,
              updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`
	setting.UpdatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, query, setting); err != nil {
		return fmt.Errorf("upsert setting %s: %w", setting.Key, err)
	}
	return nil
}
