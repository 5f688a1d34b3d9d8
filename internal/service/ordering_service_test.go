package service

import (
	"context"
	"database/sql"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/smk-cms-api/internal/models"
	"github.com/noah-isme/smk-cms-api/internal/repository"
	appErrors "github.com/noah-isme/smk-cms-api/pkg/errors"
)

type orderingStoreStub struct {
	mu      sync.Mutex
	items   map[string]models.OrderedItem
	swaps   int
	deletes int
	swapErr error
}

func newOrderingStoreStub(items ...models.OrderedItem) *orderingStoreStub {
	stub := &orderingStoreStub{items: make(map[string]models.OrderedItem)}
	for _, item := range items {
		stub.items[item.ID] = item
	}
	return stub
}

func (s *orderingStoreStub) Get(_ context.Context, _ models.Collection, id string) (*models.OrderedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &item, nil
}

// ListPartition deliberately returns map order so callers must sort.
func (s *orderingStoreStub) ListPartition(_ context.Context, _ models.Collection, partition *string) ([]models.OrderedItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.OrderedItem
	for _, item := range s.items {
		if samePartition(item.Partition, partition) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *orderingStoreStub) SwapPositions(_ context.Context, _ models.Collection, a, b models.OrderedItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.swapErr != nil {
		return s.swapErr
	}
	storedA, okA := s.items[a.ID]
	storedB, okB := s.items[b.ID]
	if !okA || !okB || storedA.Position != a.Position || storedB.Position != b.Position {
		return repository.ErrPositionConflict
	}
	storedA.Position, storedB.Position = b.Position, a.Position
	s.items[a.ID] = storedA
	s.items[b.ID] = storedB
	s.swaps++
	return nil
}

func (s *orderingStoreStub) Delete(_ context.Context, _ models.Collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.items, id)
	s.deletes++
	return nil
}

func samePartition(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type auditStub struct {
	mu   sync.Mutex
	logs []*models.AuditLog
}

func (a *auditStub) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, log)
	return nil
}

type invalidatorStub struct {
	patterns []string
}

func (i *invalidatorStub) Invalidate(_ context.Context, pattern string) error {
	i.patterns = append(i.patterns, pattern)
	return nil
}

var baseTime = time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

func orderedItem(id string, position int, offset time.Duration) models.OrderedItem {
	return models.OrderedItem{ID: id, Position: position, CreatedAt: baseTime.Add(offset)}
}

func ids(items []models.OrderedItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestOrderingServiceMoveUpSwapsWithNeighbor(t *testing.T) {
	store := newOrderingStoreStub(orderedItem("a", 0, 0), orderedItem("b", 1, time.Second), orderedItem("c", 2, 2*time.Second))
	audit := &auditStub{}
	svc := NewOrderingService(store, audit, nil)

	result, err := svc.Move(context.Background(), models.CollectionPrograms, "b", models.DirectionUp, Actor{UserID: "admin-1"})
	require.NoError(t, err)
	assert.True(t, result.Moved)
	assert.Equal(t, []string{"b", "a", "c"}, ids(result.Items))

	listed, err := svc.List(context.Background(), models.CollectionPrograms, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, ids(listed))
	assert.Equal(t, 0, listed[0].Position)
	assert.Equal(t, 1, listed[1].Position)
	assert.Equal(t, 2, listed[2].Position)
	assert.Equal(t, 1, store.swaps)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionCollectionMove, audit.logs[0].Action)
}

func TestOrderingServiceMoveAtBoundaryIsNoop(t *testing.T) {
	store := newOrderingStoreStub(orderedItem("a", 0, 0), orderedItem("b", 1, time.Second), orderedItem("c", 2, 2*time.Second))
	metrics := NewMetricsService()
	svc := NewOrderingService(store, nil, nil, WithOrderingMetrics(metrics))

	before, err := svc.List(context.Background(), models.CollectionPrograms, nil)
	require.NoError(t, err)

	result, err := svc.Move(context.Background(), models.CollectionPrograms, "a", models.DirectionUp, Actor{})
	require.NoError(t, err)
	assert.False(t, result.Moved)

	result, err = svc.Move(context.Background(), models.CollectionPrograms, "c", models.DirectionDown, Actor{})
	require.NoError(t, err)
	assert.False(t, result.Moved)

	after, err := svc.List(context.Background(), models.CollectionPrograms, nil)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Zero(t, store.swaps)
	assert.Zero(t, store.deletes)
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.moves.WithLabelValues("programs", resultNoop)))
}

func TestOrderingServiceMovesNeverDuplicatePositions(t *testing.T) {
	parent := "root-menu"
	var seed []models.OrderedItem
	for i, position := range []int{0, 3, 7, 8, 15, 16} {
		item := orderedItem(string(rune('a'+i)), position, time.Duration(i)*time.Second)
		item.Partition = &parent
		seed = append(seed, item)
	}
	store := newOrderingStoreStub(seed...)
	svc := NewOrderingService(store, nil, nil)

	rng := rand.New(rand.NewSource(7))
	for step := 0; step < 200; step++ {
		id := seed[rng.Intn(len(seed))].ID
		direction := models.DirectionUp
		if rng.Intn(2) == 1 {
			direction = models.DirectionDown
		}
		_, err := svc.Move(context.Background(), models.CollectionMenus, id, direction, Actor{})
		require.NoError(t, err)

		items, err := svc.List(context.Background(), models.CollectionMenus, &parent)
		require.NoError(t, err)
		seen := make(map[int]string, len(items))
		for _, item := range items {
			if other, dup := seen[item.Position]; dup {
				t.Fatalf("step %d: %s and %s share position %d", step, other, item.ID, item.Position)
			}
			seen[item.Position] = item.ID
		}
		assert.Len(t, seen, len(seed))
	}
}

func TestOrderingServiceListIsDeterministicUnderTies(t *testing.T) {
	store := newOrderingStoreStub(
		orderedItem("z", 1, 0),
		orderedItem("y", 1, 0),
		orderedItem("x", 1, -time.Minute),
		orderedItem("w", 0, time.Hour),
	)
	svc := NewOrderingService(store, nil, nil)

	first, err := svc.List(context.Background(), models.CollectionPrograms, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"w", "x", "y", "z"}, ids(first))
	for i := 0; i < 20; i++ {
		again, err := svc.List(context.Background(), models.CollectionPrograms, nil)
		require.NoError(t, err)
		assert.Equal(t, ids(first), ids(again))
	}
}

func TestOrderingServiceMoveIntoTieIsConflict(t *testing.T) {
	store := newOrderingStoreStub(orderedItem("a", 4, 0), orderedItem("b", 4, time.Second))
	svc := NewOrderingService(store, nil, nil)

	_, err := svc.Move(context.Background(), models.CollectionPrograms, "b", models.DirectionUp, Actor{})
	require.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Zero(t, store.swaps)
}

func TestOrderingServiceMoveErrors(t *testing.T) {
	store := newOrderingStoreStub(orderedItem("a", 0, 0), orderedItem("b", 1, time.Second))
	svc := NewOrderingService(store, nil, nil)

	_, err := svc.Move(context.Background(), models.CollectionPrograms, "ghost", models.DirectionUp, Actor{})
	require.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.Move(context.Background(), models.CollectionPrograms, "a", models.Direction("sideways"), Actor{})
	require.ErrorIs(t, err, appErrors.ErrValidation)

	store.swapErr = repository.ErrPositionConflict
	_, err = svc.Move(context.Background(), models.CollectionPrograms, "b", models.DirectionUp, Actor{})
	require.ErrorIs(t, err, appErrors.ErrConflict)

	listed, err := svc.List(context.Background(), models.CollectionPrograms, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(listed))
}

func TestOrderingServiceMoveStaysInsidePartition(t *testing.T) {
	home, about := "beranda", "profil"
	first := orderedItem("h1", 0, 0)
	first.Partition = &home
	second := orderedItem("h2", 1, time.Second)
	second.Partition = &home
	other := orderedItem("p1", 0, 0)
	other.Partition = &about
	store := newOrderingStoreStub(first, second, other)
	svc := NewOrderingService(store, nil, nil)

	result, err := svc.Move(context.Background(), models.CollectionPageSections, "h1", models.DirectionDown, Actor{})
	require.NoError(t, err)
	assert.Equal(t, []string{"h2", "h1"}, ids(result.Items))

	result, err = svc.Move(context.Background(), models.CollectionPageSections, "p1", models.DirectionDown, Actor{})
	require.NoError(t, err)
	assert.False(t, result.Moved)
}

func TestOrderingServiceRemoveKeepsGaps(t *testing.T) {
	store := newOrderingStoreStub(orderedItem("a", 0, 0), orderedItem("b", 1, time.Second), orderedItem("c", 2, 2*time.Second))
	cache := &invalidatorStub{}
	svc := NewOrderingService(store, &auditStub{}, nil, WithOrderingCache(cache))

	require.NoError(t, svc.Remove(context.Background(), models.CollectionPrograms, "b", Actor{UserID: "admin-1"}))
	listed, err := svc.List(context.Background(), models.CollectionPrograms, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids(listed))
	assert.Equal(t, 2, listed[1].Position)
	assert.Equal(t, []string{dashboardCachePattern}, cache.patterns)

	err = svc.Remove(context.Background(), models.CollectionPrograms, "b", Actor{})
	require.ErrorIs(t, err, appErrors.ErrNotFound)

	result, err := svc.Move(context.Background(), models.CollectionPrograms, "c", models.DirectionUp, Actor{})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, ids(result.Items))
	assert.Equal(t, 0, result.Items[0].Position)
	assert.Equal(t, 2, result.Items[1].Position)
}
