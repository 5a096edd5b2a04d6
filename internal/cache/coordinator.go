package cache

import (
	"context"

	"go.uber.org/zap"

	"github.com/arklim/user-permission-service/internal/core/port"
)

// Invalidator applies the invalidation fan-out for each upstream entity
// mutation. Every rule runs on a context detached from the caller's
// cancellation: once a mutation commits, either the whole fan-out is
// applied or the affected entries simply expire by TTL. A client
// disconnect can not leave the fan-out half done.
type Invalidator struct {
	store  port.CacheStore
	logger *zap.Logger
}

// NewInvalidator wires the coordinator over a cache store.
func NewInvalidator(store port.CacheStore, logger *zap.Logger) *Invalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invalidator{store: store, logger: logger}
}

// OnUserChanged evicts the user's detail, permission, and menu entries
// plus every list page (list entries embed denormalized role names).
func (i *Invalidator) OnUserChanged(ctx context.Context, userID string) {
	ctx = context.WithoutCancel(ctx)
	i.delete(ctx, UserByID(userID), UserRoles(userID), UserPermissions(userID), UserMenus(userID))
	i.deletePrefix(ctx, UserList())
	i.logger.Debug("cache fan-out applied", zap.String("entity", "user"), zap.String("id", userID))
}

// OnRoleChanged evicts the role's entries, every user's permission and
// menu caches (a role permission change transitively affects all
// members), and all list pages.
func (i *Invalidator) OnRoleChanged(ctx context.Context, roleID string) {
	ctx = context.WithoutCancel(ctx)
	i.delete(ctx, RoleByID(roleID), RolePermissions(roleID))
	i.deletePrefix(ctx, RoleList())
	i.deletePrefix(ctx, UserPermissionsPrefix())
	i.deletePrefix(ctx, UserMenusPrefix())
	i.deletePrefix(ctx, UserList())
	i.logger.Debug("cache fan-out applied", zap.String("entity", "role"), zap.String("id", roleID))
}

// OnPermissionChanged evicts the permission catalog plus every
// role-permission and user-permission cache.
func (i *Invalidator) OnPermissionChanged(ctx context.Context, code string) {
	ctx = context.WithoutCancel(ctx)
	i.deletePrefix(ctx, PermissionList())
	i.deletePrefix(ctx, RolePermissionsPrefix())
	i.deletePrefix(ctx, UserPermissionsPrefix())
	i.logger.Debug("cache fan-out applied", zap.String("entity", "permission"), zap.String("code", code))
}

// OnMenuChanged evicts the menu catalog plus every user's menu cache.
func (i *Invalidator) OnMenuChanged(ctx context.Context, menuID string) {
	ctx = context.WithoutCancel(ctx)
	i.delete(ctx, MenuByID(menuID))
	i.deletePrefix(ctx, MenuList())
	i.deletePrefix(ctx, UserMenusPrefix())
	i.logger.Debug("cache fan-out applied", zap.String("entity", "menu"), zap.String("id", menuID))
}

func (i *Invalidator) delete(ctx context.Context, keys ...string) {
	if i.store == nil {
		return
	}
	if err := i.store.Delete(ctx, keys...); err != nil {
		i.logger.Warn("cache delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (i *Invalidator) deletePrefix(ctx context.Context, prefix string) {
	if i.store == nil {
		return
	}
	if err := i.store.DeleteByPrefix(ctx, prefix); err != nil {
		i.logger.Warn("cache prefix delete failed", zap.String("prefix", prefix), zap.Error(err))
	}
}
