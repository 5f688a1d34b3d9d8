package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/jmoiron/sqlx/types"
	"github.com/wI2L/jsondiff"
	"go.uber.org/zap"

	"github.com/noah-isme/smk-cms-api/internal/dto"
	"github.com/noah-isme/smk-cms-api/internal/models"
	appErrors "github.com/noah-isme/smk-cms-api/pkg/errors"
)

const settingsResource = "settings"

// PatchFormat selects how a settings patch body is interpreted.
type PatchFormat string

const (
	// PatchFormatMerge is an RFC 7396 merge patch.
	PatchFormatMerge PatchFormat = "merge"
	// PatchFormatJSONPatch is an RFC 6902 operation list.
	PatchFormatJSONPatch PatchFormat = "json-patch"
)

type settingsStore interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	List(ctx context.Context) ([]models.Setting, error)
	Upsert(ctx context.Context, setting *models.Setting) error
}

// SettingsService serves the site settings documents. Reads always resolve the
// stored value against the current defaults so older documents gain new fields.
type SettingsService struct {
	repo    settingsStore
	audit   auditLogger
	cache   cacheInvalidator
	logger  *zap.Logger
	schemas map[string]SettingsSchema
}

// NewSettingsService constructs the service. A nil schemas map uses DefaultSettingsSchemas.
func NewSettingsService(repo settingsStore, audit auditLogger, cache cacheInvalidator, logger *zap.Logger, schemas map[string]SettingsSchema) *SettingsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if schemas == nil {
		schemas = DefaultSettingsSchemas()
	}
	return &SettingsService{repo: repo, audit: audit, cache: cache, logger: logger, schemas: schemas}
}

// Get resolves one settings document.
func (s *SettingsService) Get(ctx context.Context, key string) (*dto.SettingDocument, error) {
	schema, err := s.schema(key)
	if err != nil {
		return nil, err
	}
	stored, err := s.repo.Get(ctx, schema.Key)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	if errors.Is(err, sql.ErrNoRows) {
		stored = nil
	}
	return s.resolve(schema, stored)
}

// List resolves every known settings document ordered by key.
func (s *SettingsService) List(ctx context.Context) ([]dto.SettingDocument, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list settings")
	}
	stored := make(map[string]*models.Setting, len(rows))
	for i := range rows {
		stored[rows[i].Key] = &rows[i]
	}

	docs := make([]dto.SettingDocument, 0, len(s.schemas))
	for _, key := range sortedSchemaKeys(s.schemas) {
		doc, err := s.resolve(s.schemas[key], stored[key])
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

// Replace stores body as the whole document. Last write wins.
func (s *SettingsService) Replace(ctx context.Context, key string, body json.RawMessage, actor Actor) (*dto.SettingDocument, error) {
	schema, err := s.schema(key)
	if err != nil {
		return nil, err
	}
	value, err := decodeObject(body, "settings value must be a JSON object")
	if err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, schema.Key)
	if err != nil {
		return nil, err
	}
	return s.write(ctx, schema, current, value, actor)
}

// Patch applies patch to the resolved document and stores the result.
func (s *SettingsService) Patch(ctx context.Context, key string, patch json.RawMessage, format PatchFormat, actor Actor) (*dto.SettingDocument, error) {
	schema, err := s.schema(key)
	if err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, schema.Key)
	if err != nil {
		return nil, err
	}

	var patched []byte
	switch format {
	case PatchFormatJSONPatch:
		ops, decodeErr := jsonpatch.DecodePatch(patch)
		if decodeErr != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "patch must be a JSON Patch operation list")
		}
		patched, err = ops.Apply(current.Value)
	case PatchFormatMerge, "":
		if _, decodeErr := decodeObject(patch, "merge patch must be a JSON object"); decodeErr != nil {
			return nil, decodeErr
		}
		patched, err = jsonpatch.MergePatch(current.Value, patch)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported patch format %q", format))
	}
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "patch could not be applied: "+err.Error())
	}

	value, err := decodeObject(patched, "patched settings value must be a JSON object")
	if err != nil {
		return nil, err
	}
	return s.write(ctx, schema, current, value, actor)
}

func (s *SettingsService) write(ctx context.Context, schema SettingsSchema, current *dto.SettingDocument, value map[string]interface{}, actor Actor) (*dto.SettingDocument, error) {
	merged := schema.Merge(value)
	if schema.Validate != nil {
		if err := schema.Validate(merged); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
	}
	encoded, err := json.Marshal(merged)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode settings")
	}

	setting := &models.Setting{
		Key:     schema.Key,
		Version: schema.Version,
		Value:   types.JSONText(encoded),
	}
	if actor.UserID != "" {
		setting.UpdatedBy = stringPtr(actor.UserID)
	}
	if err := s.repo.Upsert(ctx, setting); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save settings")
	}

	diff, err := jsondiff.CompareJSON(current.Value, encoded)
	if err != nil {
		s.logger.Warn("settings diff failed", zap.String("key", schema.Key), zap.Error(err))
	}
	invalidateDashboard(ctx, s.cache)
	emitAudit(ctx, s.audit, s.logger, actor, &models.AuditLog{
		Action:     models.AuditActionSettingsUpdate,
		Resource:   settingsResource,
		ResourceID: stringPtr(schema.Key),
		NewValues:  auditPayload(diff),
	})

	return s.resolve(schema, setting)
}

func (s *SettingsService) resolve(schema SettingsSchema, stored *models.Setting) (*dto.SettingDocument, error) {
	var value map[string]interface{}
	doc := &dto.SettingDocument{Key: schema.Key, Version: schema.Version}
	if stored != nil {
		doc.Stored = true
		doc.UpdatedBy = stored.UpdatedBy
		updatedAt := stored.UpdatedAt
		doc.UpdatedAt = &updatedAt
		if err := json.Unmarshal(stored.Value, &value); err != nil {
			s.logger.Warn("stored settings are not an object, serving defaults",
				zap.String("key", schema.Key),
				zap.Int("stored_version", stored.Version),
				zap.Error(err))
			value = nil
		}
	}
	encoded, err := json.Marshal(schema.Merge(value))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode settings")
	}
	doc.Value = encoded
	return doc, nil
}

func (s *SettingsService) schema(key string) (SettingsSchema, error) {
	schema, ok := s.schemas[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return SettingsSchema{}, appErrors.Clone(appErrors.ErrNotFound, "unknown settings key")
	}
	return schema, nil
}

func decodeObject(raw []byte, message string) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, appErrors.Clone(appErrors.ErrValidation, message)
	}
	var value map[string]interface{}
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, message)
	}
	return value, nil
}
