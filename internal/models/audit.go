package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// AuditAction constants represent actions to be logged.
const (
	AuditActionSubmissionCreate = "PPDB_SUBMISSION_CREATE"
	AuditActionSubmissionDecide = "PPDB_SUBMISSION_DECIDE"
	AuditActionCollectionCreate = "COLLECTION_CREATE"
	AuditActionCollectionUpdate = "COLLECTION_UPDATE"
	AuditActionCollectionDelete = "COLLECTION_DELETE"
	AuditActionCollectionMove   = "COLLECTION_MOVE"
	AuditActionSettingsUpdate   = "SETTINGS_UPDATE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string             `db:"id" json:"id"`
	UserID     *string            `db:"user_id" json:"user_id,omitempty"`
	Action     string             `db:"action" json:"action"`
	Resource   string             `db:"resource" json:"resource"`
	ResourceID *string            `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  types.NullJSONText `db:"old_values" json:"old_values,omitempty"`
	NewValues  types.NullJSONText `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string             `db:"ip_address" json:"ip_address"`
	UserAgent  string             `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time          `db:"created_at" json:"created_at"`
}
