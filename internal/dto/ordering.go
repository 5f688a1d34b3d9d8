package dto

import "github.com/noah-isme/smk-cms-api/internal/models"

// MoveRequest asks for a one-step reorder of a collection item.
type MoveRequest struct {
	Direction models.Direction `json:"direction" validate:"required"`
}

// MoveResult reports whether the item moved and the partition's resulting order.
type MoveResult struct {
	Moved bool                 `json:"moved"`
	Items []models.OrderedItem `json:"items"`
}
