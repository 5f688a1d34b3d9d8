package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// PageSection is a block of a public page managed by the page builder.
type PageSection struct {
	ID         string         `db:"id" json:"id"`
	Page       string         `db:"page" json:"page"`
	SectionKey string         `db:"section_key" json:"section_key"`
	Title      string         `db:"title" json:"title"`
	Content    types.JSONText `db:"content" json:"content"`
	IsVisible  bool           `db:"is_visible" json:"is_visible"`
	Position   int            `db:"position" json:"position"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}
