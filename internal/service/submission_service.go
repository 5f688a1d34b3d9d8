package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/smk-cms-api/internal/dto"
	"github.com/noah-isme/smk-cms-api/internal/models"
	"github.com/noah-isme/smk-cms-api/internal/repository"
	appErrors "github.com/noah-isme/smk-cms-api/pkg/errors"
)

const (
	defaultRegistrationPrefix = "PPDB"
	registrationSuffixLength  = 6
	generatedNumberAttempts   = 3
	defaultSubmissionPageSize = 20
	maxSubmissionPageSize     = 100
	submissionResource        = "ppdb_submission"
)

type submissionStore interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, int, error)
	UpdateStatusIfPending(ctx context.Context, id string, status models.SubmissionStatus) error
}

type programLookup interface {
	GetByID(ctx context.Context, id string) (*models.Program, error)
}

// SubmissionService runs PPDB intake and the pending -> approved|rejected review.
type SubmissionService struct {
	repo      submissionStore
	programs  programLookup
	audit     auditLogger
	cache     cacheInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	prefix    string
	now       func() time.Time
}

// SubmissionServiceOption configures the service.
type SubmissionServiceOption func(*SubmissionService)

// WithRegistrationPrefix sets the prefix of generated registration numbers.
func WithRegistrationPrefix(prefix string) SubmissionServiceOption {
	return func(s *SubmissionService) {
		if p := strings.ToUpper(strings.TrimSpace(prefix)); p != "" {
			s.prefix = p
		}
	}
}

// WithSubmissionClock overrides the clock used for registration years.
func WithSubmissionClock(now func() time.Time) SubmissionServiceOption {
	return func(s *SubmissionService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSubmissionCache invalidates dashboard aggregates on writes.
func WithSubmissionCache(cache cacheInvalidator) SubmissionServiceOption {
	return func(s *SubmissionService) {
		s.cache = cache
	}
}

// WithSubmissionMetrics records intake and decision counters.
func WithSubmissionMetrics(metrics *MetricsService) SubmissionServiceOption {
	return func(s *SubmissionService) {
		s.metrics = metrics
	}
}

// NewSubmissionService constructs the service with defaults.
func NewSubmissionService(repo submissionStore, programs programLookup, audit auditLogger, validate *validator.Validate, logger *zap.Logger, opts ...SubmissionServiceOption) *SubmissionService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &SubmissionService{
		repo:      repo,
		programs:  programs,
		audit:     audit,
		validator: validate,
		logger:    logger,
		prefix:    defaultRegistrationPrefix,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Create records a new registration. It always starts pending.
func (s *SubmissionService) Create(ctx context.Context, req dto.CreateSubmissionRequest, actor Actor) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if err := s.checkProgram(ctx, req.ProgramID); err != nil {
		return nil, err
	}

	submission := &models.Submission{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        strings.TrimSpace(req.Phone),
		OriginSchool: strings.TrimSpace(req.OriginSchool),
		ProgramID:    req.ProgramID,
		ParentName:   trimmedOrNil(req.ParentName),
		Address:      trimmedOrNil(req.Address),
		Status:       models.SubmissionStatusPending,
		CreatedAt:    s.now().UTC(),
	}
	if req.BirthDate != "" {
		birth, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "birth_date must match 2006-01-02")
		}
		submission.BirthDate = &birth
	}

	provided := strings.ToUpper(strings.TrimSpace(req.RegistrationNumber))
	attempts := generatedNumberAttempts
	if provided != "" {
		attempts = 1
	}
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		submission.ID = ""
		submission.RegistrationNumber = provided
		if provided == "" {
			submission.RegistrationNumber = s.registrationNumber()
		}
		err = s.repo.Create(ctx, submission)
		if err == nil || !repository.IsUniqueViolation(err) {
			break
		}
	}
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "registration number already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create submission")
	}

	s.metrics.RecordSubmission()
	invalidateDashboard(ctx, s.cache)
	emitAudit(ctx, s.audit, s.logger, actor, &models.AuditLog{
		Action:     models.AuditActionSubmissionCreate,
		Resource:   submissionResource,
		ResourceID: stringPtr(submission.ID),
		NewValues:  auditPayload(map[string]string{"registration_number": submission.RegistrationNumber, "status": string(submission.Status)}),
	})
	return submission, nil
}

// Get returns a submission by id.
func (s *SubmissionService) Get(ctx context.Context, id string) (*models.Submission, error) {
	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isMissing(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	return submission, nil
}

// List returns submissions newest first, filtered by status and free text.
func (s *SubmissionService) List(ctx context.Context, query dto.SubmissionQuery) ([]models.Submission, *models.Pagination, error) {
	filter, err := submissionFilter(query)
	if err != nil {
		return nil, nil, err
	}
	if filter.PageSize > maxSubmissionPageSize {
		filter.PageSize = maxSubmissionPageSize
	}
	submissions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	return submissions, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Decide moves a pending submission to approved or rejected. The write is
// conditional on the row still being pending, so of two racing decisions
// exactly one succeeds and the other gets INVALID_STATE.
func (s *SubmissionService) Decide(ctx context.Context, id string, req dto.DecideRequest, actor Actor) (*models.Submission, error) {
	submission, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	outcome := models.SubmissionStatus(strings.ToLower(strings.TrimSpace(string(req.Status))))
	if !outcome.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be approved or rejected")
	}
	if submission.Status != models.SubmissionStatusPending {
		s.metrics.RecordDecision(string(outcome), resultRejected)
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("submission is already %s", submission.Status))
	}

	if err := s.repo.UpdateStatusIfPending(ctx, id, outcome); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordDecision(string(outcome), resultRejected)
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "submission was decided by another reviewer")
		}
		s.metrics.RecordDecision(string(outcome), resultError)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update submission")
	}
	submission.Status = outcome
	s.metrics.RecordDecision(string(outcome), resultOK)

	invalidateDashboard(ctx, s.cache)
	emitAudit(ctx, s.audit, s.logger, actor, &models.AuditLog{
		Action:     models.AuditActionSubmissionDecide,
		Resource:   submissionResource,
		ResourceID: stringPtr(submission.ID),
		OldValues:  auditPayload(map[string]string{"status": string(models.SubmissionStatusPending)}),
		NewValues:  auditPayload(map[string]string{"status": string(outcome)}),
	})
	return submission, nil
}

func (s *SubmissionService) checkProgram(ctx context.Context, programID string) error {
	if s.programs == nil {
		return nil
	}
	if _, err := s.programs.GetByID(ctx, programID); err != nil {
		if isMissing(err) {
			return appErrors.Clone(appErrors.ErrValidation, "program_id does not reference a program")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	return nil
}

// registrationNumber renders PREFIX-YEAR-XXXXXX from a fresh uuid.
func (s *SubmissionService) registrationNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:registrationSuffixLength]
	return fmt.Sprintf("%s-%d-%s", s.prefix, s.now().Year(), suffix)
}

func submissionFilter(query dto.SubmissionQuery) (models.SubmissionFilter, error) {
	filter := models.SubmissionFilter{
		Search:   strings.TrimSpace(query.Search),
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if status := strings.ToLower(strings.TrimSpace(query.Status)); status != "" {
		filter.Status = models.SubmissionStatus(status)
		if !filter.Status.Valid() {
			return filter, appErrors.Clone(appErrors.ErrValidation, "status must be pending, approved or rejected")
		}
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = defaultSubmissionPageSize
	}
	return filter, nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
