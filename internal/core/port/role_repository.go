package port

import (
	"context"

	"github.com/arklim/user-permission-service/internal/core/domain"
)

// RoleRepository handles role persistence. Reads eager-load the
// permission-code associations.
type RoleRepository interface {
	Create(ctx context.Context, role domain.Role) error
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
	Update(ctx context.Context, role domain.Role) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]domain.Role, error)
	// GetPermissionCodes returns the codes assigned to one role.
	GetPermissionCodes(ctx context.Context, roleID string) ([]string, error)
	// ReplacePermissions rewrites the role↔permission join set.
	ReplacePermissions(ctx context.Context, roleID string, codes []string) error
	// ListUserIDs returns the ids of users holding the role.
	ListUserIDs(ctx context.Context, roleID string) ([]string, error)
}
