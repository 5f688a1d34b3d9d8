package dto

// ProgramRequest payload for creating or editing a study program.
type ProgramRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Slug        string  `json:"slug" validate:"required,max=80"`
	Description string  `json:"description" validate:"max=2000"`
	Icon        *string `json:"icon" validate:"omitempty,max=255"`
}
