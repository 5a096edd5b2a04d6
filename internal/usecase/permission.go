package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/user-permission-service/internal/cache"
	"github.com/arklim/user-permission-service/internal/core/domain"
	"github.com/arklim/user-permission-service/internal/core/port"
	"github.com/arklim/user-permission-service/internal/repository"
)

// PermissionModuleGroup is one module's slice of the catalog listing.
type PermissionModuleGroup struct {
	Module      string              `json:"module"`
	Permissions []domain.Permission `json:"permissions"`
}

// PermissionService owns the permission catalog. The catalog is
// append-mostly: codes are created and listed, never renamed.
type PermissionService struct {
	permissions port.PermissionRepository
	store       port.CacheStore
	invalidator *cache.Invalidator
	publisher   port.EventPublisher
	clock       port.Clock
	cacheTTL    time.Duration
	log         *zap.Logger
}

// PermissionServiceDeps bundles the collaborators of PermissionService.
type PermissionServiceDeps struct {
	Permissions port.PermissionRepository
	Store       port.CacheStore
	Invalidator *cache.Invalidator
	Publisher   port.EventPublisher
	Clock       port.Clock
	CacheTTL    time.Duration
	Logger      *zap.Logger
}

// NewPermissionService constructs a PermissionService.
func NewPermissionService(deps PermissionServiceDeps) (*PermissionService, error) {
	if deps.Permissions == nil {
		return nil, fmt.Errorf("permission repository is required")
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

	return &PermissionService{
		permissions: deps.Permissions,
		store:       deps.Store,
		invalidator: deps.Invalidator,
		publisher:   deps.Publisher,
		clock:       deps.Clock,
		cacheTTL:    deps.CacheTTL,
		log:         deps.Logger,
	}, nil
}

// Create registers a new catalog entry.
func (s *PermissionService) Create(ctx context.Context, code, name, description, module string, permType domain.PermissionType) (*domain.Permission, error) {
	permission, events, err := domain.NewPermission(code, name, description, module, permType, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.permissions.Create(ctx, *permission); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.NewRuleError("permission.duplicate_code", "permission code already exists")
		}
		return nil, fmt.Errorf("create permission: %w", err)
	}

	s.publish(ctx, events...)
	if s.invalidator != nil {
		s.invalidator.OnPermissionChanged(ctx, permission.Code)
	}

	s.log.Info("permission created", zap.String("code", permission.Code), zap.String("module", permission.Module))
	return permission, nil
}

// Get loads one catalog entry by code.
func (s *PermissionService) Get(ctx context.Context, code string) (*domain.Permission, error) {
	permission, err := s.permissions.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPermissionNotFound
		}
		return nil, fmt.Errorf("load permission: %w", err)
	}
	return permission, nil
}

// List returns the whole catalog, cached as one entry.
func (s *PermissionService) List(ctx context.Context) ([]domain.Permission, error) {
	return cache.GetOrCompute(ctx, s.store, cache.PermissionList(), s.cacheTTL, func(ctx context.Context) ([]domain.Permission, error) {
		permissions, err := s.permissions.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list permissions: %w", err)
		}
		return permissions, nil
	})
}

// ListGrouped returns the catalog grouped by module, preserving the
// repository's code ordering inside each group and ordering groups by
// first appearance.
func (s *PermissionService) ListGrouped(ctx context.Context) ([]PermissionModuleGroup, error) {
	permissions, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	groups := make([]PermissionModuleGroup, 0)
	for _, permission := range permissions {
		i, ok := index[permission.Module]
		if !ok {
			i = len(groups)
			index[permission.Module] = i
			groups = append(groups, PermissionModuleGroup{Module: permission.Module})
		}
		groups[i].Permissions = append(groups[i].Permissions, permission)
	}
	return groups, nil
}

func (s *PermissionService) publish(ctx context.Context, events ...domain.Event) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.log.Warn("publish events failed", zap.Error(err))
	}
}
