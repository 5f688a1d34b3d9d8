package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/smk-cms-api/internal/models"
	appErrors "github.com/noah-isme/smk-cms-api/pkg/errors"
)

const dashboardSummaryKey = "dash:summary"

type dashboardRepository interface {
	ContentCounts(ctx context.Context) (*models.ContentCounts, error)
	SubmissionCounts(ctx context.Context) ([]models.SubmissionStatusCount, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardService aggregates content and admissions counts at read time.
type DashboardService struct {
	repo   dashboardRepository
	cache  dashboardCache
	logger *zap.Logger
	now    func() time.Time
	cfg    DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService. A nil cache disables caching.
func NewDashboardService(repo dashboardRepository, cache dashboardCache, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, cache: cache, logger: logger, now: time.Now, cfg: cfg}
}

// Summary returns the dashboard aggregate and whether it came from cache.
// refresh skips the cache read but still repopulates it.
func (s *DashboardService) Summary(ctx context.Context, refresh bool) (*models.DashboardSummary, bool, error) {
	if !refresh {
		if summary, hit := s.cached(ctx); hit {
			return summary, true, nil
		}
	}

	summary, err := s.compose(ctx)
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardSummaryKey, summary, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}
	return summary, false, nil
}

func (s *DashboardService) cached(ctx context.Context) (*models.DashboardSummary, bool) {
	if s.cache == nil {
		return nil, false
	}
	var summary models.DashboardSummary
	hit, err := s.cache.Get(ctx, dashboardSummaryKey, &summary)
	if err != nil {
		s.logger.Warn("dashboard cache read failed", zap.Error(err))
		return nil, false
	}
	if !hit {
		return nil, false
	}
	return &summary, true
}

func (s *DashboardService) compose(ctx context.Context) (*models.DashboardSummary, error) {
	content, err := s.repo.ContentCounts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count content")
	}
	counts, err := s.repo.SubmissionCounts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count submissions")
	}

	summary := &models.DashboardSummary{
		Content: *content,
		Submissions: map[models.SubmissionStatus]int{
			models.SubmissionStatusPending:  0,
			models.SubmissionStatusApproved: 0,
			models.SubmissionStatusRejected: 0,
		},
		GeneratedAt: s.now().UTC(),
	}
	for _, row := range counts {
		summary.Submissions[row.Status] += row.Total
		summary.TotalPPDB += row.Total
	}
	return summary, nil
}
