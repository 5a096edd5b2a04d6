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

// RoleService owns role lifecycle and permission grants. Any role
// mutation fans out through the invalidator: every cached user
// permission set derived from the role is cleared in the same call.
type RoleService struct {
	roles       port.RoleRepository
	permissions port.PermissionRepository
	store       port.CacheStore
	invalidator *cache.Invalidator
	publisher   port.EventPublisher
	clock       port.Clock
	cacheTTL    time.Duration
	log         *zap.Logger
}

// RoleServiceDeps bundles the collaborators of RoleService.
type RoleServiceDeps struct {
	Roles       port.RoleRepository
	Permissions port.PermissionRepository
	Store       port.CacheStore
	Invalidator *cache.Invalidator
	Publisher   port.EventPublisher
	Clock       port.Clock
	CacheTTL    time.Duration
	Logger      *zap.Logger
}

// NewRoleService constructs a RoleService.
func NewRoleService(deps RoleServiceDeps) (*RoleService, error) {
	if deps.Roles == nil {
		return nil, fmt.Errorf("role repository is required")
	}
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

	return &RoleService{
		roles:       deps.Roles,
		permissions: deps.Permissions,
		store:       deps.Store,
		invalidator: deps.Invalidator,
		publisher:   deps.Publisher,
		clock:       deps.Clock,
		cacheTTL:    deps.CacheTTL,
		log:         deps.Logger,
	}, nil
}

// Create registers a new role with an optional initial permission set.
func (s *RoleService) Create(ctx context.Context, name, description string, permissionCodes []string) (*domain.Role, error) {
	now := s.clock.Now()
	role, events, err := domain.NewRole(name, description, now)
	if err != nil {
		return nil, err
	}

	for _, code := range permissionCodes {
		if err := s.ensurePermission(ctx, code); err != nil {
			return nil, err
		}
		events = append(events, role.AssignPermission(code, now)...)
	}

	if err := s.roles.Create(ctx, *role); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.NewRuleError("role.duplicate_name", "role name is already taken")
		}
		return nil, fmt.Errorf("create role: %w", err)
	}

	s.publish(ctx, events...)
	if s.invalidator != nil {
		s.invalidator.OnRoleChanged(ctx, role.ID)
	}

	s.log.Info("role created", zap.String("role_id", role.ID), zap.String("name", role.Name))
	return role, nil
}

// Get loads one role by id including its permission codes.
func (s *RoleService) Get(ctx context.Context, roleID string) (*domain.Role, error) {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("load role: %w", err)
	}
	return role, nil
}

// Update renames a role.
func (s *RoleService) Update(ctx context.Context, roleID, name, description string) (*domain.Role, error) {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("load role: %w", err)
	}

	events, err := role.Rename(name, description, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.roles.Update(ctx, *role); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.NewRuleError("role.duplicate_name", "role name is already taken")
		}
		return nil, fmt.Errorf("update role: %w", err)
	}

	s.publish(ctx, events...)
	if s.invalidator != nil {
		s.invalidator.OnRoleChanged(ctx, role.ID)
	}
	return role, nil
}

// Delete removes a role. Users holding the role simply lose it from
// their resolved permission sets on the next computation.
func (s *RoleService) Delete(ctx context.Context, roleID string) error {
	if err := s.roles.Delete(ctx, roleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("delete role: %w", err)
	}

	s.publish(ctx, domain.RoleDeletedEvent{EventMeta: domain.EventMeta{At: s.clock.Now()}, RoleID: roleID})
	if s.invalidator != nil {
		s.invalidator.OnRoleChanged(ctx, roleID)
	}
	return nil
}

// GrantPermissions adds permission codes to a role. Codes the role
// already holds are skipped; the operation is idempotent.
func (s *RoleService) GrantPermissions(ctx context.Context, roleID string, codes []string) error {
	return s.mutatePermissions(ctx, roleID, codes, true)
}

// RevokePermissions removes permission codes from a role. Codes the
// role does not hold are skipped.
func (s *RoleService) RevokePermissions(ctx context.Context, roleID string, codes []string) error {
	return s.mutatePermissions(ctx, roleID, codes, false)
}

// List returns all roles. The listing is cached as a whole; any role
// mutation drops it.
func (s *RoleService) List(ctx context.Context) ([]domain.Role, error) {
	return cache.GetOrCompute(ctx, s.store, cache.RoleList(), s.cacheTTL, func(ctx context.Context) ([]domain.Role, error) {
		roles, err := s.roles.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list roles: %w", err)
		}
		return roles, nil
	})
}

// PermissionCodes returns the codes granted to one role, cached per
// role id.
func (s *RoleService) PermissionCodes(ctx context.Context, roleID string) ([]string, error) {
	if _, err := s.Get(ctx, roleID); err != nil {
		return nil, err
	}
	return cache.GetOrCompute(ctx, s.store, cache.RolePermissions(roleID), s.cacheTTL, func(ctx context.Context) ([]string, error) {
		codes, err := s.roles.GetPermissionCodes(ctx, roleID)
		if err != nil {
			return nil, fmt.Errorf("load role permissions: %w", err)
		}
		return codes, nil
	})
}

func (s *RoleService) mutatePermissions(ctx context.Context, roleID string, codes []string, grant bool) error {
	role, err := s.roles.GetByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("load role: %w", err)
	}

	now := s.clock.Now()
	var events []domain.Event
	for _, code := range codes {
		if grant {
			if err := s.ensurePermission(ctx, code); err != nil {
				return err
			}
			events = append(events, role.AssignPermission(code, now)...)
		} else {
			events = append(events, role.RemovePermission(code, now)...)
		}
	}

	if len(events) == 0 {
		return nil
	}

	if err := s.roles.ReplacePermissions(ctx, role.ID, role.PermissionCodes); err != nil {
		return fmt.Errorf("replace role permissions: %w", err)
	}

	s.publish(ctx, events...)
	if s.invalidator != nil {
		s.invalidator.OnRoleChanged(ctx, role.ID)
	}
	return nil
}

func (s *RoleService) ensurePermission(ctx context.Context, code string) error {
	if _, err := s.permissions.GetByCode(ctx, code); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPermissionNotFound
		}
		return fmt.Errorf("load permission: %w", err)
	}
	return nil
}

func (s *RoleService) publish(ctx context.Context, events ...domain.Event) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.log.Warn("publish events failed", zap.Error(err))
	}
}
