package models

import "time"

// SubmissionStatus captures the admissions review lifecycle.
type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "pending"
	SubmissionStatusApproved SubmissionStatus = "approved"
	SubmissionStatusRejected SubmissionStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionStatusPending, SubmissionStatusApproved, SubmissionStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionStatusApproved || s == SubmissionStatusRejected
}

// Submission is a PPDB (admissions) registration. Intake fields are written
// once on creation; only Status changes afterwards.
type Submission struct {
	ID                 string           `db:"id" json:"id"`
	RegistrationNumber string           `db:"registration_number" json:"registration_number"`
	FullName           string           `db:"full_name" json:"full_name"`
	Email              string           `db:"email" json:"email"`
	Phone              string           `db:"phone" json:"phone"`
	OriginSchool       string           `db:"origin_school" json:"origin_school"`
	ProgramID          string           `db:"program_id" json:"program_id"`
	ParentName         *string          `db:"parent_name" json:"parent_name,omitempty"`
	Address            *string          `db:"address" json:"address,omitempty"`
	BirthDate          *time.Time       `db:"birth_date" json:"birth_date,omitempty"`
	Status             SubmissionStatus `db:"status" json:"status"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
}

// SubmissionFilter constrains listing queries.
type SubmissionFilter struct {
	Status   SubmissionStatus
	Search   string
	Page     int
	PageSize int
}

// SubmissionStatusCount is one row of the per-status aggregate.
type SubmissionStatusCount struct {
	Status SubmissionStatus `db:"status" json:"status"`
	Total  int              `db:"total" json:"total"`
}
