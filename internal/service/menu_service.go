package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/smk-cms-api/internal/dto"
	"github.com/noah-isme/smk-cms-api/internal/models"
	appErrors "github.com/noah-isme/smk-cms-api/pkg/errors"
)

type menuStore interface {
	Create(ctx context.Context, item *models.MenuItem) error
	GetByID(ctx context.Context, id string) (*models.MenuItem, error)
	List(ctx context.Context, activeOnly bool) ([]models.MenuItem, error)
	Update(ctx context.Context, item *models.MenuItem) error
}

// MenuService manages the navigation menu tree.
type MenuService struct {
	repo      menuStore
	audit     auditLogger
	cache     cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMenuService constructs the service.
func NewMenuService(repo menuStore, audit auditLogger, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *MenuService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MenuService{repo: repo, audit: audit, cache: cache, validator: validate, logger: logger}
}

// Tree returns the menu as nested nodes. With activeOnly, inactive items and
// everything beneath them are left out.
func (s *MenuService) Tree(ctx context.Context, activeOnly bool) ([]models.MenuNode, error) {
	items, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list menus")
	}
	return buildMenuTree(items), nil
}

// Create appends a menu item under its parent, or at the root.
func (s *MenuService) Create(ctx context.Context, req dto.CreateMenuRequest, actor Actor) (*models.MenuItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if req.ParentID != nil {
		if _, err := s.repo.GetByID(ctx, *req.ParentID); err != nil {
			if isMissing(err) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "parent_id does not reference a menu")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parent menu")
		}
	}

	item := &models.MenuItem{
		ParentID: req.ParentID,
		Title:    strings.TrimSpace(req.Title),
		URL:      strings.TrimSpace(req.URL),
		IsActive: req.IsActive == nil || *req.IsActive,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create menu")
	}

	invalidateDashboard(ctx, s.cache)
	emitAudit(ctx, s.audit, s.logger, actor, &models.AuditLog{
		Action:     models.AuditActionCollectionCreate,
		Resource:   models.CollectionMenus.Name,
		ResourceID: stringPtr(item.ID),
		NewValues:  auditPayload(item),
	})
	return item, nil
}

// Update edits title, url and activation of an existing item.
func (s *MenuService) Update(ctx context.Context, id string, req dto.UpdateMenuRequest, actor Actor) (*models.MenuItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if isMissing(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "menu not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load menu")
	}
	before := *item

	item.Title = strings.TrimSpace(req.Title)
	item.URL = strings.TrimSpace(req.URL)
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, item); err != nil {
		if isMissing(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "menu not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update menu")
	}

	emitAudit(ctx, s.audit, s.logger, actor, &models.AuditLog{
		Action:     models.AuditActionCollectionUpdate,
		Resource:   models.CollectionMenus.Name,
		ResourceID: stringPtr(item.ID),
		OldValues:  auditPayload(before),
		NewValues:  auditPayload(item),
	})
	return item, nil
}

func buildMenuTree(items []models.MenuItem) []models.MenuNode {
	children := make(map[string][]models.MenuItem)
	var roots []models.MenuItem
	for _, item := range items {
		if item.ParentID == nil {
			roots = append(roots, item)
			continue
		}
		children[*item.ParentID] = append(children[*item.ParentID], item)
	}

	var build func(level []models.MenuItem) []models.MenuNode
	build = func(level []models.MenuItem) []models.MenuNode {
		sortMenuItems(level)
		nodes := make([]models.MenuNode, 0, len(level))
		for _, item := range level {
			nodes = append(nodes, models.MenuNode{MenuItem: item, Children: build(children[item.ID])})
		}
		return nodes
	}
	return build(roots)
}

func sortMenuItems(items []models.MenuItem) {
	ordered := make([]models.OrderedItem, len(items))
	byID := make(map[string]models.MenuItem, len(items))
	for i, item := range items {
		ordered[i] = models.OrderedItem{ID: item.ID, Position: item.Position, CreatedAt: item.CreatedAt}
		byID[item.ID] = item
	}
	sortItems(ordered)
	for i, o := range ordered {
		items[i] = byID[o.ID]
	}
}

func invalidateDashboard(ctx context.Context, cache cacheInvalidator) {
	if cache == nil {
		return
	}
	_ = cache.Invalidate(ctx, dashboardCachePattern)
}
