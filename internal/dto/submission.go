package dto

import "github.com/noah-isme/smk-cms-api/internal/models"

// CreateSubmissionRequest is the public PPDB registration form.
type CreateSubmissionRequest struct {
	RegistrationNumber string  `json:"registration_number" validate:"omitempty,max=40"`
	FullName           string  `json:"full_name" validate:"required,max=150"`
	Email              string  `json:"email" validate:"required,email"`
	Phone              string  `json:"phone" validate:"required,min=6,max=20"`
	OriginSchool       string  `json:"origin_school" validate:"required,max=150"`
	ProgramID          string  `json:"program_id" validate:"required,uuid"`
	ParentName         *string `json:"parent_name" validate:"omitempty,max=150"`
	Address            *string `json:"address" validate:"omitempty,max=500"`
	BirthDate          string  `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
}

// DecideRequest carries a reviewer outcome.
type DecideRequest struct {
	Status models.SubmissionStatus `json:"status" validate:"required"`
}

// SubmissionQuery mirrors supported listing filters.
type SubmissionQuery struct {
	Status   string `form:"status"`
	Search   string `form:"q"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ExportQuery selects the export format on top of the listing filters.
type ExportQuery struct {
	SubmissionQuery
	Format string `form:"format"`
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
