package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smk-cms-api/internal/models"
	appErrors "github.com/noah-isme/smk-cms-api/pkg/errors"
)

type memoryCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
		}
	}
	return nil
}

type dashboardRepoStub struct {
	content     models.ContentCounts
	submissions []models.SubmissionStatusCount
	err         error
	calls       int
}

func (d *dashboardRepoStub) ContentCounts(context.Context) (*models.ContentCounts, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	counts := d.content
	return &counts, nil
}

func (d *dashboardRepoStub) SubmissionCounts(context.Context) ([]models.SubmissionStatusCount, error) {
	return d.submissions, nil
}

func TestDashboardSummaryAggregatesAtReadTime(t *testing.T) {
	repo := &dashboardRepoStub{
		content: models.ContentCounts{Menus: 4, Programs: 3, News: 12},
		submissions: []models.SubmissionStatusCount{
			{Status: models.SubmissionStatusPending, Total: 5},
			{Status: models.SubmissionStatusApproved, Total: 2},
		},
	}
	svc := NewDashboardService(repo, nil, nil, DashboardServiceConfig{})

	summary, cached, err := svc.Summary(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 4, summary.Content.Menus)
	assert.Equal(t, 7, summary.TotalPPDB)
	assert.Equal(t, 0, summary.Submissions[models.SubmissionStatusRejected])
	assert.Equal(t, 5, summary.Submissions[models.SubmissionStatusPending])
}

func TestDashboardSummaryCacheIsInvalidatedByWrites(t *testing.T) {
	repo := &dashboardRepoStub{
		submissions: []models.SubmissionStatusCount{{Status: models.SubmissionStatusPending, Total: 1}},
	}
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	svc := NewDashboardService(repo, cache, nil, DashboardServiceConfig{})
	ctx := context.Background()

	_, cached, err := svc.Summary(ctx, false)
	require.NoError(t, err)
	assert.False(t, cached)

	summary, cached, err := svc.Summary(ctx, false)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 1, summary.TotalPPDB)
	assert.Equal(t, 1, repo.calls)

	repo.submissions = []models.SubmissionStatusCount{{Status: models.SubmissionStatusPending, Total: 2}}
	invalidateDashboard(ctx, cache)

	summary, cached, err = svc.Summary(ctx, false)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, summary.TotalPPDB)
}

func TestDashboardSummaryRefreshBypassesCache(t *testing.T) {
	repo := &dashboardRepoStub{}
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true)
	svc := NewDashboardService(repo, cache, nil, DashboardServiceConfig{})

	_, _, err := svc.Summary(context.Background(), false)
	require.NoError(t, err)
	_, cached, err := svc.Summary(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, repo.calls)
}

func TestDashboardSummaryPropagatesRepositoryErrors(t *testing.T) {
	svc := NewDashboardService(&dashboardRepoStub{err: errors.New("db down")}, nil, nil, DashboardServiceConfig{})

	_, _, err := svc.Summary(context.Background(), false)
	require.ErrorIs(t, err, appErrors.ErrInternal)
}
