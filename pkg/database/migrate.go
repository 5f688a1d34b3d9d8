package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const migrationDir = "migrations"

// Migrator applies the embedded goose migrations.
type Migrator struct {
	db *sql.DB
}

// NewMigrator prepares goose for the postgres dialect and the embedded files.
func NewMigrator(db *sql.DB, logger *zap.Logger) (*Migrator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	goose.SetBaseFS(migrationFS)
	goose.SetLogger(gooseLogger{sugar: logger.Sugar()})
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	return &Migrator{db: db}, nil
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	if err := goose.UpContext(ctx, m.db, migrationDir); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Down rolls back the most recent migration.
func (m *Migrator) Down(ctx context.Context) error {
	if err := goose.DownContext(ctx, m.db, migrationDir); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Status logs the applied state of every migration.
func (m *Migrator) Status(ctx context.Context) error {
	if err := goose.StatusContext(ctx, m.db, migrationDir); err != nil {
		return fmt.Errorf("migrate status: %w", err)
	}
	return nil
}

type gooseLogger struct {
	sugar *zap.SugaredLogger
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.sugar.Fatalf(format, v...)
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}
