package dto

import "encoding/json"

// CreatePageSectionRequest payload for appending a section to a page.
type CreatePageSectionRequest struct {
	SectionKey string          `json:"section_key" validate:"required,max=64"`
	Title      string          `json:"title" validate:"required,max=150"`
	Content    json.RawMessage `json:"content"`
	IsVisible  *bool           `json:"is_visible"`
}

// UpdatePageSectionRequest payload for editing a section.
type UpdatePageSectionRequest struct {
	Title     string          `json:"title" validate:"required,max=150"`
	Content   json.RawMessage `json:"content"`
	IsVisible *bool           `json:"is_visible"`
}

// VisibilityRequest toggles whether a section renders publicly.
type VisibilityRequest struct {
	IsVisible *bool `json:"is_visible" validate:"required"`
}
