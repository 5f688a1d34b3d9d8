package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/smk-cms-api/internal/models"
)

const menuColumns = `id, parent_id, title, url, is_active, position, created_at, updated_at`

// MenuRepository persists navigation menu items.
type MenuRepository struct {
	db *sqlx.DB
}

// NewMenuRepository constructs the repository.
func NewMenuRepository(db *sqlx.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// Create appends item to the end of its parent's children.
func (r *MenuRepository) Create(ctx context.Context, item *models.MenuItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	return appendInPartition(ctx, r.db, models.CollectionMenus, item.ParentID, func(tx *sqlx.Tx, position int) error {
		item.Position = position
		const query = `INSERT INTO menus (` + menuColumns + `)
VALUES (:id, :parent_id, :title, :url, :is_active, :position, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, query, item); err != nil {
			return fmt.Errorf("insert menu: %w", err)
		}
		return nil
	})
}

// GetByID fetches a menu item.
func (r *MenuRepository) GetByID(ctx context.Context, id string) (*models.MenuItem, error) {
	const query = `SELECT ` + menuColumns + ` FROM menus WHERE id = $1`
	var item models.MenuItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns every menu item, roots first, each partition in display order.
func (r *MenuRepository) List(ctx context.Context, activeOnly bool) ([]models.MenuItem, error) {
	query := `SELECT ` + menuColumns + ` FROM menus`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY parent_id NULLS FIRST, position ASC, created_at ASC, id ASC`
	var items []models.MenuItem
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	return items, nil
}

// Update rewrites the editable columns. Position and parent are untouched.
func (r *MenuRepository) Update(ctx context.Context, item *models.MenuItem) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE menus SET title = :title, url = :url, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, item)
	if err != nil {
		return fmt.Errorf("update menu: %w", err)
	}
	return expectAffected(result)
}
