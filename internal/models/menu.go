package models

import "time"

// MenuItem is a navigation entry; submenus reference their parent.
type MenuItem struct {
	ID        string    `db:"id" json:"id"`
	ParentID  *string   `db:"parent_id" json:"parent_id,omitempty"`
	Title     string    `db:"title" json:"title"`
	URL       string    `db:"url" json:"url"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	Position  int       `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// MenuNode is a menu item with its ordered children.
type MenuNode struct {
	MenuItem
	Children []MenuNode `json:"children"`
}
