package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Setting is a persisted settings document keyed by name.
type Setting struct {
	Key       string         `db:"key" json:"key"`
	Version   int            `db:"version" json:"version"`
	Value     types.JSONText `db:"value" json:"value"`
	UpdatedBy *string        `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}
