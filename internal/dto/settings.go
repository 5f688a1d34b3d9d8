package dto

import (
	"encoding/json"
	"time"
)

// SettingDocument is a settings value resolved against its defaults.
type SettingDocument struct {
	Key       string          `json:"key"`
	Version   int             `json:"version"`
	Value     json.RawMessage `json:"value"`
	Stored    bool            `json:"stored"`
	UpdatedBy *string         `json:"updated_by,omitempty"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}
