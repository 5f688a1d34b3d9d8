package models

import "time"

// Direction is a one-step move within an ordered partition.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Valid reports whether d is a supported move direction.
func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

// Collection describes a table whose rows carry a user-visible ordering.
// PartitionColumn is empty when the whole table is one partition.
type Collection struct {
	Name            string
	Table           string
	PartitionColumn string
}

// Partitioned reports whether ordering is scoped by a partition column.
func (c Collection) Partitioned() bool {
	return c.PartitionColumn != ""
}

var (
	CollectionMenus        = Collection{Name: "menus", Table: "menus", PartitionColumn: "parent_id"}
	CollectionPageSections = Collection{Name: "page_sections", Table: "page_sections", PartitionColumn: "page"}
	CollectionPrograms     = Collection{Name: "programs", Table: "programs"}
)

// OrderedItem is the ordering view of a row in any Collection.
type OrderedItem struct {
	ID        string    `db:"id" json:"id"`
	Partition *string   `db:"partition_key" json:"partition,omitempty"`
	Position  int       `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Before reports whether i sorts ahead of other: position, then creation
// time, then id.
func (i OrderedItem) Before(other OrderedItem) bool {
	if i.Position != other.Position {
		return i.Position < other.Position
	}
	if !i.CreatedAt.Equal(other.CreatedAt) {
		return i.CreatedAt.Before(other.CreatedAt)
	}
	return i.ID < other.ID
}
