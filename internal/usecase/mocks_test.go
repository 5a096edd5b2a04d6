package usecase

import (
	"context"
	"slices"
	"strings"

	"github.com/arklim/user-permission-service/internal/core/domain"
	"github.com/arklim/user-permission-service/internal/core/port"
	"github.com/arklim/user-permission-service/internal/repository"
)

type fakeUserRepo struct {
	order         []string
	users         map[string]*domain.User
	forceConflict bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) add(user *domain.User) {
	clone := *user
	clone.RoleIDs = slices.Clone(user.RoleIDs)
	r.users[user.ID] = &clone
	r.order = append(r.order, user.ID)
}

func (r *fakeUserRepo) Create(_ context.Context, user domain.User) error {
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	r.add(&user)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *user
	clone.RoleIDs = slices.Clone(user.RoleIDs)
	return &clone, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			clone.RoleIDs = slices.Clone(user.RoleIDs)
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user domain.User, expectedVersion int64) error {
	stored, ok := r.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.forceConflict {
		r.forceConflict = false
		return repository.ErrVersionConflict
	}
	if stored.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	clone := user
	clone.RoleIDs = slices.Clone(user.RoleIDs)
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, filter port.UserListFilter) ([]domain.User, error) {
	matched := r.matching(filter)
	if filter.Offset >= len(matched) {
		return nil, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (r *fakeUserRepo) Count(_ context.Context, filter port.UserListFilter) (int, error) {
	return len(r.matching(filter)), nil
}

func (r *fakeUserRepo) ReplaceRoles(_ context.Context, userID string, roleIDs []string) error {
	user, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.RoleIDs = slices.Clone(roleIDs)
	return nil
}

func (r *fakeUserRepo) matching(filter port.UserListFilter) []domain.User {
	var matched []domain.User
	for _, id := range r.order {
		user := r.users[id]
		if filter.Keyword != "" && !strings.Contains(user.Username, filter.Keyword) {
			continue
		}
		if filter.IsActive != nil && user.IsActive != *filter.IsActive {
			continue
		}
		matched = append(matched, *user)
	}
	return matched
}

type fakeRoleRepo struct {
	roles           map[string]*domain.Role
	members         map[string][]string
	listByUserCalls int
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{
		roles:   make(map[string]*domain.Role),
		members: make(map[string][]string),
	}
}

func (r *fakeRoleRepo) add(role *domain.Role) {
	clone := *role
	clone.PermissionCodes = slices.Clone(role.PermissionCodes)
	r.roles[role.ID] = &clone
}

func (r *fakeRoleRepo) assign(userID string, roleIDs ...string) {
	r.members[userID] = append(r.members[userID], roleIDs...)
}

func (r *fakeRoleRepo) Create(_ context.Context, role domain.Role) error {
	for _, existing := range r.roles {
		if existing.Name == role.Name {
			return repository.ErrDuplicate
		}
	}
	r.add(&role)
	return nil
}

func (r *fakeRoleRepo) GetByID(_ context.Context, id string) (*domain.Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *role
	clone.PermissionCodes = slices.Clone(role.PermissionCodes)
	return &clone, nil
}

func (r *fakeRoleRepo) GetByName(_ context.Context, name string) (*domain.Role, error) {
	for _, role := range r.roles {
		if role.Name == name {
			clone := *role
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeRoleRepo) List(_ context.Context) ([]domain.Role, error) {
	roles := make([]domain.Role, 0, len(r.roles))
	for _, role := range r.roles {
		roles = append(roles, *role)
	}
	return roles, nil
}

func (r *fakeRoleRepo) Update(_ context.Context, role domain.Role) error {
	if _, ok := r.roles[role.ID]; !ok {
		return repository.ErrNotFound
	}
	r.add(&role)
	return nil
}

func (r *fakeRoleRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.roles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.roles, id)
	return nil
}

func (r *fakeRoleRepo) ListByUser(_ context.Context, userID string) ([]domain.Role, error) {
	r.listByUserCalls++
	var roles []domain.Role
	for _, roleID := range r.members[userID] {
		if role, ok := r.roles[roleID]; ok {
			roles = append(roles, *role)
		}
	}
	return roles, nil
}

func (r *fakeRoleRepo) GetPermissionCodes(_ context.Context, roleID string) ([]string, error) {
	role, ok := r.roles[roleID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return slices.Clone(role.PermissionCodes), nil
}

func (r *fakeRoleRepo) ReplacePermissions(_ context.Context, roleID string, codes []string) error {
	role, ok := r.roles[roleID]
	if !ok {
		return repository.ErrNotFound
	}
	role.PermissionCodes = slices.Clone(codes)
	return nil
}

func (r *fakeRoleRepo) ListUserIDs(_ context.Context, roleID string) ([]string, error) {
	var ids []string
	for userID, roleIDs := range r.members {
		if slices.Contains(roleIDs, roleID) {
			ids = append(ids, userID)
		}
	}
	return ids, nil
}

type fakeMenuRepo struct {
	order []string
	menus map[string]*domain.Menu
}

func newFakeMenuRepo() *fakeMenuRepo {
	return &fakeMenuRepo{menus: make(map[string]*domain.Menu)}
}

func (r *fakeMenuRepo) add(menu *domain.Menu) {
	clone := *menu
	r.menus[menu.ID] = &clone
	r.order = append(r.order, menu.ID)
}

func (r *fakeMenuRepo) Create(_ context.Context, menu domain.Menu) error {
	r.add(&menu)
	return nil
}

func (r *fakeMenuRepo) GetByID(_ context.Context, id string) (*domain.Menu, error) {
	menu, ok := r.menus[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *menu
	return &clone, nil
}

func (r *fakeMenuRepo) List(_ context.Context) ([]domain.Menu, error) {
	menus := make([]domain.Menu, 0, len(r.order))
	for _, id := range r.order {
		menus = append(menus, *r.menus[id])
	}
	return menus, nil
}

func (r *fakeMenuRepo) Update(_ context.Context, menu domain.Menu) error {
	if _, ok := r.menus[menu.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := menu
	r.menus[menu.ID] = &clone
	return nil
}

func (r *fakeMenuRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.menus[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.menus, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	return nil
}

type fakePermissionRepo struct {
	order       []string
	permissions map[string]*domain.Permission
}

func newFakePermissionRepo() *fakePermissionRepo {
	return &fakePermissionRepo{permissions: make(map[string]*domain.Permission)}
}

func (r *fakePermissionRepo) Create(_ context.Context, permission domain.Permission) error {
	if _, ok := r.permissions[permission.Code]; ok {
		return repository.ErrDuplicate
	}
	clone := permission
	r.permissions[permission.Code] = &clone
	r.order = append(r.order, permission.Code)
	return nil
}

func (r *fakePermissionRepo) GetByCode(_ context.Context, code string) (*domain.Permission, error) {
	permission, ok := r.permissions[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *permission
	return &clone, nil
}

func (r *fakePermissionRepo) List(_ context.Context) ([]domain.Permission, error) {
	permissions := make([]domain.Permission, 0, len(r.order))
	for _, code := range r.order {
		permissions = append(permissions, *r.permissions[code])
	}
	return permissions, nil
}

func (r *fakePermissionRepo) ListByModule(_ context.Context, module string) ([]domain.Permission, error) {
	var permissions []domain.Permission
	for _, code := range r.order {
		if r.permissions[code].Module == module {
			permissions = append(permissions, *r.permissions[code])
		}
	}
	return permissions, nil
}

type capturePublisher struct {
	events []domain.Event
}

func (p *capturePublisher) Publish(_ context.Context, events ...domain.Event) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *capturePublisher) names() []string {
	names := make([]string, 0, len(p.events))
	for _, event := range p.events {
		names = append(names, event.EventName())
	}
	return names
}
