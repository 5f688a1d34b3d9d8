package service

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/smk-cms-api/internal/models"
	"github.com/noah-isme/smk-cms-api/pkg/logger"
)

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Actor identifies who triggered a write.
type Actor struct {
	UserID    string
	IP        string
	UserAgent string
}

// emitAudit persists entry on a best-effort basis; failures are logged, never returned.
func emitAudit(ctx context.Context, audit auditLogger, base *zap.Logger, actor Actor, entry *models.AuditLog) {
	if audit == nil || entry == nil {
		return
	}
	if actor.UserID != "" {
		userID := actor.UserID
		entry.UserID = &userID
	}
	entry.IPAddress = actor.IP
	if entry.IPAddress == "" {
		entry.IPAddress = "system"
	}
	entry.UserAgent = actor.UserAgent
	if err := audit.CreateAuditLog(ctx, entry); err != nil {
		logger.WithContext(ctx, base).Warn("failed to persist audit log", zap.String("action", entry.Action), zap.Error(err))
	}
}

func auditPayload(v interface{}) types.NullJSONText {
	if v == nil {
		return types.NullJSONText{}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return types.NullJSONText{}
	}
	return types.NullJSONText{JSONText: raw, Valid: true}
}

func stringPtr(value string) *string {
	return &value
}
