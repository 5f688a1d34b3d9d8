package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// SeedRepository writes default content into empty tables.
type SeedRepository struct {
	db *sqlx.DB
}

// NewSeedRepository constructs the repository.
func NewSeedRepository(db *sqlx.DB) *SeedRepository {
	return &SeedRepository{db: db}
}

// SeedTable inserts rows into table only if the table is empty, all inside one
// transaction. It reports whether anything was written.
func (r *SeedRepository) SeedTable(ctx context.Context, table string, columns []string, rows []map[string]interface{}) (seeded bool, err error) {
	if len(rows) == 0 {
		return false, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin seed %s: %w", table, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, fmt.Sprintf(`LOCK TABLE %s IN SHARE ROW EXCLUSIVE MODE`, table)); err != nil {
		return false, fmt.Errorf("lock %s: %w", table, err)
	}

	var existing int
	if err = tx.GetContext(ctx, &existing, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)); err != nil {
		return false, fmt.Errorf("count %s: %w", table, err)
	}
	if existing > 0 {
		if err = tx.Rollback(); err != nil {
			return false, fmt.Errorf("release seed %s: %w", table, err)
		}
		return false, nil
	}

	named := make([]string, len(columns))
	for i, column := range columns {
		named[i] = ":" + column
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, table, strings.Join(columns, ", "), strings.Join(named, ", "))
	for _, row := range rows {
		if _, err = tx.NamedExecContext(ctx, query, row); err != nil {
			return false, fmt.Errorf("seed %s: %w", table, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit seed %s: %w", table, err)
	}
	return true, nil
}
