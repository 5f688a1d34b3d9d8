package service

import (
	"context"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/smk-cms-api/internal/dto"
	"github.com/noah-isme/smk-cms-api/internal/models"
	"github.com/noah-isme/smk-cms-api/internal/repository"
	appErrors "github.com/noah-isme/smk-cms-api/pkg/errors"
)

type programStore interface {
	Create(ctx context.Context, program *models.Program) error
	GetByID(ctx context.Context, id string) (*models.Program, error)
	List(ctx context.Context) ([]models.Program, error)
	Update(ctx context.Context, program *models.Program) error
}

// ProgramService manages study programs.
type ProgramService struct {
	repo      programStore
	audit     auditLogger
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProgramService constructs the service.
func NewProgramService(repo programStore, audit auditLogger, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *ProgramService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgramService{repo: repo, audit: audit, cache: cache, validator: validate, logger: logger}
}

// List returns programs in display order.
func (s *ProgramService) List(ctx context.Context) ([]models.Program, error) {
	programs, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}
	return programs, nil
}

// Get returns a single program.
func (s *ProgramService) Get(ctx context.Context, id string) (*models.Program, error) {
	program, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isMissing(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	return program, nil
}

// Create appends a program after the existing ones.
func (s *ProgramService) Create(ctx context.Context, req dto.ProgramRequest, actor Actor) (*models.Program, error) {
	program, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, program); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "slug already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create program")
	}

	invalidateDashboard(ctx, s.cache)
	emitAudit(ctx, s.audit, s.logger, actor, &models.AuditLog{
		Action:     models.AuditActionCollectionCreate,
		Resource:   models.CollectionPrograms.Name,
		ResourceID: stringPtr(program.ID),
		NewValues:  auditPayload(program),
	})
	return program, nil
}

// Update replaces the descriptive fields of a program.
func (s *ProgramService) Update(ctx context.Context, id string, req dto.ProgramRequest, actor Actor) (*models.Program, error) {
	changes, err := s.fromRequest(req)
	if err != nil {
		return nil, err
	}
	program, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *program

	program.Name = changes.Name
	program.Slug = changes.Slug
	program.Description = changes.Description
	program.Icon = changes.Icon
	if err := s.repo.Update(ctx, program); err != nil {
		switch {
		case isMissing(err):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		case repository.IsUniqueViolation(err):
			return nil, appErrors.Clone(appErrors.ErrConflict, "slug already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update program")
	}

	emitAudit(ctx, s.audit, s.logger, actor, &models.AuditLog{
		Action:     models.AuditActionCollectionUpdate,
		Resource:   models.CollectionPrograms.Name,
		ResourceID: stringPtr(program.ID),
		OldValues:  auditPayload(before),
		NewValues:  auditPayload(program),
	})
	return program, nil
}

func (s *ProgramService) fromRequest(req dto.ProgramRequest) (*models.Program, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	slug := slugify(req.Slug)
	if slug == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slug must contain letters or digits")
	}
	program := &models.Program{
		Name:        strings.TrimSpace(req.Name),
		Slug:        slug,
		Description: strings.TrimSpace(req.Description),
	}
	if req.Icon != nil {
		if icon := strings.TrimSpace(*req.Icon); icon != "" {
			program.Icon = &icon
		}
	}
	return program, nil
}

// slugify lowercases s and collapses every run of non-alphanumerics into one dash.
func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
