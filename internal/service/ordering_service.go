package service

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/smk-cms-api/internal/dto"
	"github.com/noah-isme/smk-cms-api/internal/models"
	"github.com/noah-isme/smk-cms-api/internal/repository"
	appErrors "github.com/noah-isme/smk-cms-api/pkg/errors"
)

const dashboardCachePattern = "dash:*"

type orderingStore interface {
	Get(ctx context.Context, col models.Collection, id string) (*models.OrderedItem, error)
	ListPartition(ctx context.Context, col models.Collection, partition *string) ([]models.OrderedItem, error)
	SwapPositions(ctx context.Context, col models.Collection, a, b models.OrderedItem) error
	Delete(ctx context.Context, col models.Collection, id string) error
}

// OrderingService reorders and removes items of any ordered collection.
type OrderingService struct {
	repo    orderingStore
	audit   auditLogger
	cache   cacheInvalidator
	metrics *MetricsService
	logger  *zap.Logger
}

// OrderingServiceOption configures the service.
type OrderingServiceOption func(*OrderingService)

// WithOrderingCache invalidates cached aggregates after removals.
func WithOrderingCache(cache cacheInvalidator) OrderingServiceOption {
	return func(s *OrderingService) {
		s.cache = cache
	}
}

// WithOrderingMetrics records move outcomes.
func WithOrderingMetrics(metrics *MetricsService) OrderingServiceOption {
	return func(s *OrderingService) {
		s.metrics = metrics
	}
}

// NewOrderingService constructs the service.
func NewOrderingService(repo orderingStore, audit auditLogger, logger *zap.Logger, opts ...OrderingServiceOption) *OrderingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &OrderingService{repo: repo, audit: audit, logger: logger}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// List returns a partition sorted by position, creation time and id.
func (s *OrderingService) List(ctx context.Context, col models.Collection, partition *string) ([]models.OrderedItem, error) {
	items, err := s.repo.ListPartition(ctx, col, partition)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list items")
	}
	sortItems(items)
	return items, nil
}

// Move swaps the item with its neighbor in direction. At either end of the
// partition it returns the unchanged order without writing anything.
func (s *OrderingService) Move(ctx context.Context, col models.Collection, id string, direction models.Direction, actor Actor) (*dto.MoveResult, error) {
	if !direction.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "direction must be up or down")
	}

	item, err := s.repo.Get(ctx, col, id)
	if err != nil {
		if isMissing(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, col.Name+" item not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load item")
	}

	items, err := s.List(ctx, col, item.Partition)
	if err != nil {
		return nil, err
	}

	index := indexOf(items, item.ID)
	if index < 0 {
		s.metrics.RecordMove(col.Name, resultConflict)
		return nil, appErrors.Clone(appErrors.ErrConflict, "item changed partition; reload and retry")
	}

	neighbor := index - 1
	if direction == models.DirectionDown {
		neighbor = index + 1
	}
	if neighbor < 0 || neighbor >= len(items) {
		s.metrics.RecordMove(col.Name, resultNoop)
		return &dto.MoveResult{Moved: false, Items: items}, nil
	}

	current, other := items[index], items[neighbor]
	if current.Position == other.Position {
		s.metrics.RecordMove(col.Name, resultConflict)
		return nil, appErrors.Clone(appErrors.ErrConflict, "items share a position; reload and retry")
	}

	if err := s.repo.SwapPositions(ctx, col, current, other); err != nil {
		if errors.Is(err, repository.ErrPositionConflict) {
			s.metrics.RecordMove(col.Name, resultConflict)
			return nil, appErrors.Clone(appErrors.ErrConflict, "order changed concurrently; reload and retry")
		}
		s.metrics.RecordMove(col.Name, resultError)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to move item")
	}

	items[index].Position, items[neighbor].Position = other.Position, current.Position
	sortItems(items)
	s.metrics.RecordMove(col.Name, resultOK)

	emitAudit(ctx, s.audit, s.logger, actor, &models.AuditLog{
		Action:     models.AuditActionCollectionMove,
		Resource:   col.Name,
		ResourceID: stringPtr(current.ID),
		OldValues:  auditPayload(map[string]int{"position": current.Position}),
		NewValues:  auditPayload(map[string]interface{}{"position": other.Position, "direction": direction}),
	})

	return &dto.MoveResult{Moved: true, Items: items}, nil
}

// Remove deletes an item. Siblings keep their positions.
func (s *OrderingService) Remove(ctx context.Context, col models.Collection, id string, actor Actor) error {
	if err := s.repo.Delete(ctx, col, id); err != nil {
		if isMissing(err) {
			return appErrors.Clone(appErrors.ErrNotFound, col.Name+" item not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete item")
	}
	invalidateDashboard(ctx, s.cache)
	emitAudit(ctx, s.audit, s.logger, actor, &models.AuditLog{
		Action:     models.AuditActionCollectionDelete,
		Resource:   col.Name,
		ResourceID: stringPtr(id),
	})
	return nil
}

func sortItems(items []models.OrderedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Before(items[j])
	})
}

func indexOf(items []models.OrderedItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}
