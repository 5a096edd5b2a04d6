package cache

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Cache keys are structured as <entity-prefix>:<kind>[:<identifier>].
// The entity prefix is the unit of bulk invalidation.
const (
	UserPrefix       = "user"
	RolePrefix       = "role"
	PermissionPrefix = "permission"
	MenuPrefix       = "menu"
)

// UserByID keys a single user detail entry.
func UserByID(id string) string { return fmt.Sprintf("%s:id:%s", UserPrefix, id) }

// UserList keys the unfiltered user list; query variants share the prefix.
func UserList() string { return UserPrefix + ":list" }

// UserListQuery keys one page of a filtered user list by parameter
// fingerprint. It shares the UserList prefix so list invalidation covers
// every page and filter combination.
func UserListQuery(params ...string) string {
	return fmt.Sprintf("%s:q:%s", UserList(), fingerprint(params...))
}

// UserRoles keys the role associations (ids and names) for a user.
func UserRoles(userID string) string { return fmt.Sprintf("%s:roles:%s", UserPrefix, userID) }

// UserPermissions keys the resolved permission set for a user.
func UserPermissions(userID string) string {
	return fmt.Sprintf("%s:permissions:%s", UserPrefix, userID)
}

// UserPermissionsPrefix covers every user's resolved permission set.
func UserPermissionsPrefix() string { return UserPrefix + ":permissions" }

// UserMenus keys the visible menu tree for a user.
func UserMenus(userID string) string { return fmt.Sprintf("%s:menus:%s", UserPrefix, userID) }

// UserMenusPrefix covers every user's menu tree.
func UserMenusPrefix() string { return UserPrefix + ":menus" }

// RoleByID keys a single role entry.
func RoleByID(id string) string { return fmt.Sprintf("%s:id:%s", RolePrefix, id) }

// RoleList keys the role catalog.
func RoleList() string { return RolePrefix + ":list" }

// RolePermissions keys the permission codes of one role.
func RolePermissions(roleID string) string {
	return fmt.Sprintf("%s:permissions:%s", RolePrefix, roleID)
}

// RolePermissionsPrefix covers every role's permission codes.
func RolePermissionsPrefix() string { return RolePrefix + ":permissions" }

// PermissionList keys the permission catalog.
func PermissionList() string { return PermissionPrefix + ":list" }

// MenuByID keys a single menu node.
func MenuByID(id string) string { return fmt.Sprintf("%s:id:%s", MenuPrefix, id) }

// MenuList keys the full menu catalog.
func MenuList() string { return MenuPrefix + ":list" }

func fingerprint(params ...string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.Join(params, "\x1f")))
	return fmt.Sprintf("%016x", h.Sum64())
}
