package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/smk-cms-api/internal/models"
)

// ErrPositionConflict signals that a guarded position write found the row
// in a different state than the caller read it in.
var ErrPositionConflict = errors.New("position changed concurrently")

const rootPartition = "<root>"

// OrderingRepository reads and reorders rows of any ordered collection.
type OrderingRepository struct {
	db *sqlx.DB
}

// NewOrderingRepository constructs the repository.
func NewOrderingRepository(db *sqlx.DB) *OrderingRepository {
	return &OrderingRepository{db: db}
}

// Get fetches the ordering view of a single row.
func (r *OrderingRepository) Get(ctx context.Context, col models.Collection, id string) (*models.OrderedItem, error) {
	query := fmt.Sprintf(`SELECT id, %s AS partition_key, position, created_at FROM %s WHERE id = $1`,
		partitionExpr(col), col.Table)
	var item models.OrderedItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get %s item: %w", col.Name, err)
	}
	return &item, nil
}

// ListPartition returns the partition in display order. Ties on position are
// broken by creation time and then id so the order is stable across calls.
func (r *OrderingRepository) ListPartition(ctx context.Context, col models.Collection, partition *string) ([]models.OrderedItem, error) {
	where, args := partitionWhere(col, partition, 1)
	query := fmt.Sprintf(`SELECT id, %s AS partition_key, position, created_at FROM %s%s ORDER BY position ASC, created_at ASC, id ASC`,
		partitionExpr(col), col.Table, where)
	var items []models.OrderedItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list %s partition: %w", col.Name, err)
	}
	return items, nil
}

// SwapPositions exchanges the positions of a and b in one transaction. Each
// write only applies if the row still holds the position the caller read;
// otherwise nothing is committed and ErrPositionConflict is returned.
func (r *OrderingRepository) SwapPositions(ctx context.Context, col models.Collection, a, b models.OrderedItem) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s swap: %w", col.Name, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	query := fmt.Sprintf(`UPDATE %s SET position = $1, updated_at = $2 WHERE id = $3 AND position = $4`, col.Table)
	for _, step := range []struct {
		item   models.OrderedItem
		target int
	}{
		{item: a, target: b.Position},
		{item: b, target: a.Position},
	} {
		result, execErr := tx.ExecContext(ctx, query, step.target, now, step.item.ID, step.item.Position)
		if execErr != nil {
			err = fmt.Errorf("update %s position: %w", col.Name, execErr)
			return err
		}
		rows, rowsErr := result.RowsAffected()
		if rowsErr != nil {
			err = fmt.Errorf("check %s position rows: %w", col.Name, rowsErr)
			return err
		}
		if rows != 1 {
			err = ErrPositionConflict
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit %s swap: %w", col.Name, err)
	}
	return nil
}

// Delete removes a row without renumbering its siblings.
func (r *OrderingRepository) Delete(ctx context.Context, col models.Collection, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, col.Table)
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete %s item: %w", col.Name, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check %s delete rows: %w", col.Name, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// appendInPartition runs insert inside a transaction that holds an advisory
// lock on the partition, passing the next free position (max + 1, or 0 for an
// empty partition).
func appendInPartition(ctx context.Context, db *sqlx.DB, col models.Collection, partition *string, insert func(tx *sqlx.Tx, position int) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s append: %w", col.Name, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, partitionLockKey(col, partition)); err != nil {
		return fmt.Errorf("lock %s partition: %w", col.Name, err)
	}

	where, args := partitionWhere(col, partition, 1)
	var next int
	query := fmt.Sprintf(`SELECT COALESCE(MAX(position) + 1, 0) FROM %s%s`, col.Table, where)
	if err = tx.GetContext(ctx, &next, query, args...); err != nil {
		return fmt.Errorf("next %s position: %w", col.Name, err)
	}

	if err = insert(tx, next); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit %s append: %w", col.Name, err)
	}
	return nil
}

func partitionExpr(col models.Collection) string {
	if !col.Partitioned() {
		return "NULL::text"
	}
	return col.PartitionColumn + "::text"
}

func partitionWhere(col models.Collection, partition *string, argIndex int) (string, []interface{}) {
	if !col.Partitioned() {
		return "", nil
	}
	if partition == nil {
		return fmt.Sprintf(" WHERE %s IS NULL", col.PartitionColumn), nil
	}
	return fmt.Sprintf(" WHERE %s = $%d", col.PartitionColumn, argIndex), []interface{}{*partition}
}

func partitionLockKey(col models.Collection, partition *string) string {
	if partition == nil {
		return col.Table + ":" + rootPartition
	}
	return col.Table + ":" + *partition
}
