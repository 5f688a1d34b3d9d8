package dto

// CreateMenuRequest payload for appending a menu item.
type CreateMenuRequest struct {
	ParentID *string `json:"parent_id" validate:"omitempty,uuid"`
	Title    string  `json:"title" validate:"required,max=120"`
	URL      string  `json:"url" validate:"required,max=255"`
	IsActive *bool   `json:"is_active"`
}

// UpdateMenuRequest payload for editing a menu item in place.
type UpdateMenuRequest struct {
	Title    string `json:"title" validate:"required,max=120"`
	URL      string `json:"url" validate:"required,max=255"`
	IsActive *bool  `json:"is_active"`
}
