package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/user-permission-service/internal/cache"
	"github.com/arklim/user-permission-service/internal/core/domain"
	"github.com/arklim/user-permission-service/internal/core/port"
	"github.com/arklim/user-permission-service/internal/repository"
)

// MenuNode is one node of the assembled navigation tree.
type MenuNode struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Path           string     `json:"path"`
	Component      string     `json:"component,omitempty"`
	Icon           string     `json:"icon,omitempty"`
	SortOrder      int        `json:"sortOrder"`
	PermissionCode *string    `json:"permissionCode,omitempty"`
	IsVisible      bool       `json:"isVisible"`
	Children       []MenuNode `json:"children,omitempty"`
}

// MenuService owns the navigation hierarchy. Parent chains are kept
// acyclic here: the repository stores flat rows and cannot enforce it.
type MenuService struct {
	menus       port.MenuRepository
	resolver    *PermissionResolver
	store       port.CacheStore
	invalidator *cache.Invalidator
	publisher   port.EventPublisher
	clock       port.Clock
	cacheTTL    time.Duration
	log         *zap.Logger
}

// MenuServiceDeps bundles the collaborators of MenuService.
type MenuServiceDeps struct {
	Menus       port.MenuRepository
	Resolver    *PermissionResolver
	Store       port.CacheStore
	Invalidator *cache.Invalidator
	Publisher   port.EventPublisher
	Clock       port.Clock
	CacheTTL    time.Duration
	Logger      *zap.Logger
}

// NewMenuService constructs a MenuService.
func NewMenuService(deps MenuServiceDeps) (*MenuService, error) {
	if deps.Menus == nil {
		return nil, fmt.Errorf("menu repository is required")
	}
	if deps.Resolver == nil {
		return nil, fmt.Errorf("permission resolver is required")
	}
	if deps.Clock == nil {
		deps.Clock = port.SystemClock()
	}
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = 30 * time.Minute
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &MenuService{
		menus:       deps.Menus,
		resolver:    deps.Resolver,
		store:       deps.Store,
		invalidator: deps.Invalidator,
		publisher:   deps.Publisher,
		clock:       deps.Clock,
		cacheTTL:    deps.CacheTTL,
		log:         deps.Logger,
	}, nil
}

// Create adds a navigation node. The parent, when set, must exist.
func (s *MenuService) Create(ctx context.Context, in domain.MenuInput) (*domain.Menu, error) {
	if in.ParentID != nil {
		if _, err := s.menus.GetByID(ctx, *in.ParentID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrMenuNotFound
			}
			return nil, fmt.Errorf("load parent menu: %w", err)
		}
	}

	menu, events, err := domain.NewMenu(in, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.menus.Create(ctx, *menu); err != nil {
		return nil, fmt.Errorf("create menu: %w", err)
	}

	s.publish(ctx, events...)
	if s.invalidator != nil {
		s.invalidator.OnMenuChanged(ctx, menu.ID)
	}
	return menu, nil
}

// Get loads one node by id.
func (s *MenuService) Get(ctx context.Context, menuID string) (*domain.Menu, error) {
	menu, err := s.menus.GetByID(ctx, menuID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMenuNotFound
		}
		return nil, fmt.Errorf("load menu: %w", err)
	}
	return menu, nil
}

// Update applies new field values. Re-parenting walks the proposed
// ancestor chain first; a chain that reaches back to the node itself is
// rejected before anything is written.
func (s *MenuService) Update(ctx context.Context, menuID string, in domain.MenuInput) (*domain.Menu, error) {
	menu, err := s.menus.GetByID(ctx, menuID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMenuNotFound
		}
		return nil, fmt.Errorf("load menu: %w", err)
	}

	if in.ParentID != nil {
		if err := s.checkParentChain(ctx, menuID, *in.ParentID); err != nil {
			return nil, err
		}
	}

	events, err := menu.Update(in, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.menus.Update(ctx, *menu); err != nil {
		return nil, fmt.Errorf("update menu: %w", err)
	}

	s.publish(ctx, events...)
	if s.invalidator != nil {
		s.invalidator.OnMenuChanged(ctx, menu.ID)
	}
	return menu, nil
}

// Delete removes a node. Children of the deleted node become roots.
func (s *MenuService) Delete(ctx context.Context, menuID string) error {
	if err := s.menus.Delete(ctx, menuID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMenuNotFound
		}
		return fmt.Errorf("delete menu: %w", err)
	}

	s.publish(ctx, domain.MenuDeletedEvent{EventMeta: domain.EventMeta{At: s.clock.Now()}, MenuID: menuID})
	if s.invalidator != nil {
		s.invalidator.OnMenuChanged(ctx, menuID)
	}
	return nil
}

// Tree returns the full navigation tree regardless of permissions,
// cached as one entry. Administrative screens use this view.
func (s *MenuService) Tree(ctx context.Context) ([]MenuNode, error) {
	return cache.GetOrCompute(ctx, s.store, cache.MenuList(), s.cacheTTL, func(ctx context.Context) ([]MenuNode, error) {
		menus, err := s.menus.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list menus: %w", err)
		}
		return buildTree(menus, nil), nil
	})
}

// UserTree returns the navigation tree filtered to the user's resolved
// permissions. Ungated menus are always included; gated ones require
// the exact code. Cached per user and cleared on any user, role,
// permission, or menu change.
func (s *MenuService) UserTree(ctx context.Context, userID string) ([]MenuNode, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	return cache.GetOrCompute(ctx, s.store, cache.UserMenus(userID), s.cacheTTL, func(ctx context.Context) ([]MenuNode, error) {
		permissions, err := s.resolver.Resolve(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("resolve permissions: %w", err)
		}

		granted := make(map[string]struct{}, len(permissions))
		for _, code := range permissions {
			granted[code] = struct{}{}
		}

		menus, err := s.menus.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list menus: %w", err)
		}

		visible := make([]domain.Menu, 0, len(menus))
		for _, menu := range menus {
			if !menu.IsVisible {
				continue
			}
			if menu.RequiresPermission() {
				if _, ok := granted[*menu.PermissionCode]; !ok {
					continue
				}
			}
			visible = append(visible, menu)
		}
		return buildTree(visible, nil), nil
	})
}

// checkParentChain walks from the proposed parent to the root and
// fails if the chain passes through menuID. The visited set guards
// against pre-existing cycles in stored data.
func (s *MenuService) checkParentChain(ctx context.Context, menuID, parentID string) error {
	visited := map[string]struct{}{menuID: {}}
	current := parentID

	for current != "" {
		if _, seen := visited[current]; seen {
			return domain.NewRuleError("menu.cyclic_parent", "menu parent chain forms a cycle")
		}
		visited[current] = struct{}{}

		parent, err := s.menus.GetByID(ctx, current)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrMenuNotFound
			}
			return fmt.Errorf("load parent menu: %w", err)
		}
		if parent.ParentID == nil {
			return nil
		}
		current = *parent.ParentID
	}
	return nil
}

// buildTree assembles nodes whose ParentID matches parent, recursing
// for children. Orphaned nodes (parent filtered out or missing) are
// lifted to the root level so they stay reachable.
func buildTree(menus []domain.Menu, parent *string) []MenuNode {
	byID := make(map[string]struct{}, len(menus))
	for _, m := range menus {
		byID[m.ID] = struct{}{}
	}

	var nodes []MenuNode
	for _, m := range menus {
		if !sameParent(m.ParentID, parent, byID) {
			continue
		}
		node := MenuNode{
			ID:             m.ID,
			Name:           m.Name,
			Path:           m.Path,
			Component:      m.Component,
			Icon:           m.Icon,
			SortOrder:      m.SortOrder,
			PermissionCode: m.PermissionCode,
			IsVisible:      m.IsVisible,
		}
		id := m.ID
		node.Children = buildTree(menus, &id)
		nodes = append(nodes, node)
	}

	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].SortOrder != nodes[j].SortOrder {
			return nodes[i].SortOrder < nodes[j].SortOrder
		}
		return nodes[i].Name < nodes[j].Name
	})
	return nodes
}

func sameParent(menuParent, want *string, present map[string]struct{}) bool {
	if want == nil {
		if menuParent == nil {
			return true
		}
		_, parentPresent := present[*menuParent]
		return !parentPresent
	}
	return menuParent != nil && *menuParent == *want
}

func (s *MenuService) publish(ctx context.Context, events ...domain.Event) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.log.Warn("publish events failed", zap.Error(err))
	}
}
