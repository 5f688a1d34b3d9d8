package service

import (
	"bytes"
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/smk-cms-api/internal/dto"
	"github.com/noah-isme/smk-cms-api/internal/models"
	appErrors "github.com/noah-isme/smk-cms-api/pkg/errors"
)

var pageKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

type pageSectionStore interface {
	Create(ctx context.Context, section *models.PageSection) error
	GetByID(ctx context.Context, id string) (*models.PageSection, error)
	ListByPage(ctx context.Context, page string, visibleOnly bool) ([]models.PageSection, error)
	Update(ctx context.Context, section *models.PageSection) error
	SetVisibility(ctx context.Context, id string, visible bool) error
}

// PageSectionService manages page builder sections.
type PageSectionService struct {
	repo      pageSectionStore
	audit     auditLogger
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPageSectionService constructs the service.
func NewPageSectionService(repo pageSectionStore, audit auditLogger, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *PageSectionService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageSectionService{repo: repo, audit: audit, cache: cache, validator: validate, logger: logger}
}

// List returns the sections of page in display order.
func (s *PageSectionService) List(ctx context.Context, page string, visibleOnly bool) ([]models.PageSection, error) {
	key, err := normalizePageKey(page)
	if err != nil {
		return nil, err
	}
	sections, err := s.repo.ListByPage(ctx, key, visibleOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list page sections")
	}
	return sections, nil
}

// Create appends a section to page.
func (s *PageSectionService) Create(ctx context.Context, page string, req dto.CreatePageSectionRequest, actor Actor) (*models.PageSection, error) {
	key, err := normalizePageKey(page)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	content, err := sectionContent(req.Content)
	if err != nil {
		return nil, err
	}

	section := &models.PageSection{
		Page:       key,
		SectionKey: strings.TrimSpace(req.SectionKey),
		Title:      strings.TrimSpace(req.Title),
		Content:    content,
		IsVisible:  req.IsVisible == nil || *req.IsVisible,
	}
	if err := s.repo.Create(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create page section")
	}

	invalidateDashboard(ctx, s.cache)
	emitAudit(ctx, s.audit, s.logger, actor, &models.AuditLog{
		Action:     models.AuditActionCollectionCreate,
		Resource:   models.CollectionPageSections.Name,
		ResourceID: stringPtr(section.ID),
		NewValues:  auditPayload(section),
	})
	return section, nil
}

// Update edits title, content and visibility. Omitted content is kept.
func (s *PageSectionService) Update(ctx context.Context, id string, req dto.UpdatePageSectionRequest, actor Actor) (*models.PageSection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	section, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *section

	section.Title = strings.TrimSpace(req.Title)
	if len(req.Content) > 0 {
		content, err := sectionContent(req.Content)
		if err != nil {
			return nil, err
		}
		section.Content = content
	}
	if req.IsVisible != nil {
		section.IsVisible = *req.IsVisible
	}
	if err := s.repo.Update(ctx, section); err != nil {
		if isMissing(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "page section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update page section")
	}

	emitAudit(ctx, s.audit, s.logger, actor, &models.AuditLog{
		Action:     models.AuditActionCollectionUpdate,
		Resource:   models.CollectionPageSections.Name,
		ResourceID: stringPtr(section.ID),
		OldValues:  auditPayload(before),
		NewValues:  auditPayload(section),
	})
	return section, nil
}

// SetVisibility shows or hides a section on the public page.
func (s *PageSectionService) SetVisibility(ctx context.Context, id string, req dto.VisibilityRequest, actor Actor) (*models.PageSection, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if err := s.repo.SetVisibility(ctx, id, *req.IsVisible); err != nil {
		if isMissing(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "page section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update visibility")
	}
	section, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	emitAudit(ctx, s.audit, s.logger, actor, &models.AuditLog{
		Action:     models.AuditActionCollectionUpdate,
		Resource:   models.CollectionPageSections.Name,
		ResourceID: stringPtr(id),
		NewValues:  auditPayload(map[string]bool{"is_visible": *req.IsVisible}),
	})
	return section, nil
}

func (s *PageSectionService) load(ctx context.Context, id string) (*models.PageSection, error) {
	section, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isMissing(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "page section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load page section")
	}
	return section, nil
}

func normalizePageKey(page string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(page))
	if !pageKeyPattern.MatchString(key) {
		return "", appErrors.Clone(appErrors.ErrValidation, "page must be a lowercase key such as beranda or profil")
	}
	return key, nil
}

// sectionContent requires a JSON object; empty input becomes {}.
func sectionContent(raw json.RawMessage) (types.JSONText, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return types.JSONText(`{}`), nil
	}
	var probe map[string]interface{}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "content must be a JSON object")
	}
	return types.JSONText(append([]byte(nil), trimmed...)), nil
}
