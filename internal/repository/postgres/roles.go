package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/user-permission-service/internal/core/domain"
	"github.com/arklim/user-permission-service/internal/repository"
)

// RoleRepository implements port.RoleRepository using PostgreSQL.
// Reads eager-load the permission-code associations from
// ups.role_permissions.
type RoleRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewRoleRepository constructs a repository backed by any executor
// that satisfies pgExecutor.
func NewRoleRepository(exec pgExecutor) *RoleRepository {
	repo := &RoleRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance that executes statements within
// the supplied transaction.
func (r *RoleRepository) WithTx(tx pgx.Tx) *RoleRepository {
	if tx == nil {
		return r
	}
	return &RoleRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a role row plus its permission associations.
func (r *RoleRepository) Create(ctx context.Context, role domain.Role) error {
	stmt, args, err := r.builder.Insert("ups.roles").
		Columns("id", "name", "description", "created_at", "updated_at", "version").
		Values(role.ID, role.Name, role.Description, role.CreatedAt, role.UpdatedAt, role.Version).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert role sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert role: %w", err)
	}

	if len(role.PermissionCodes) > 0 {
		if err := r.insertPermissions(ctx, role.ID, role.PermissionCodes); err != nil {
			return err
		}
	}

	return nil
}

// GetByID retrieves a role by identifier.
func (r *RoleRepository) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByName retrieves a role by its unique name.
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	return r.getOne(ctx, squirrel.Eq{"name": name})
}

func (r *RoleRepository) getOne(ctx context.Context, where squirrel.Eq) (*domain.Role, error) {
	stmt, args, err := r.builder.
		Select("id", "name", "description", "created_at", "updated_at", "version").
		From("ups.roles").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select role sql: %w", err)
	}

	var role domain.Role
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&role.ID,
		&role.Name,
		&role.Description,
		&role.CreatedAt,
		&role.UpdatedAt,
		&role.Version,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan role: %w", err)
	}

	codes, err := r.GetPermissionCodes(ctx, role.ID)
	if err != nil {
		return nil, err
	}
	role.PermissionCodes = codes

	return &role, nil
}

// List returns all roles ordered by name.
func (r *RoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	stmt, args, err := r.builder.
		Select("id", "name", "description", "created_at", "updated_at", "version").
		From("ups.roles").
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list roles sql: %w", err)
	}

	roles, err := r.queryRoles(ctx, stmt, args)
	if err != nil {
		return nil, err
	}

	for i := range roles {
		codes, err := r.GetPermissionCodes(ctx, roles[i].ID)
		if err != nil {
			return nil, err
		}
		roles[i].PermissionCodes = codes
	}

	return roles, nil
}

// Update persists role name and description changes.
func (r *RoleRepository) Update(ctx context.Context, role domain.Role) error {
	stmt, args, err := r.builder.Update("ups.roles").
		Set("name", role.Name).
		Set("description", role.Description).
		Set("updated_at", role.UpdatedAt).
		Set("version", role.Version).
		Where(squirrel.Eq{"id": role.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update role sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a role row; associations cascade.
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("ups.roles").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete role sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListByUser returns the roles held by one user, ordered by name.
func (r *RoleRepository) ListByUser(ctx context.Context, userID string) ([]domain.Role, error) {
	stmt, args, err := r.builder.
		Select("r.id", "r.name", "r.description", "r.created_at", "r.updated_at", "r.version").
		From("ups.roles r").
		Join("ups.user_roles ur ON ur.role_id = r.id").
		Where(squirrel.Eq{"ur.user_id": userID}).
		OrderBy("r.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list roles by user sql: %w", err)
	}

	roles, err := r.queryRoles(ctx, stmt, args)
	if err != nil {
		return nil, err
	}

	for i := range roles {
		codes, err := r.GetPermissionCodes(ctx, roles[i].ID)
		if err != nil {
			return nil, err
		}
		roles[i].PermissionCodes = codes
	}

	return roles, nil
}

// GetPermissionCodes returns the codes assigned to one role, ordered.
func (r *RoleRepository) GetPermissionCodes(ctx context.Context, roleID string) ([]string, error) {
	stmt, args, err := r.builder.Select("permission_code").
		From("ups.role_permissions").
		Where(squirrel.Eq{"role_id": roleID}).
		OrderBy("permission_code").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select role permissions sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("select role permissions: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan role permission: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role permissions: %w", err)
	}

	return codes, nil
}

// ReplacePermissions rewrites the role's permission associations.
func (r *RoleRepository) ReplacePermissions(ctx context.Context, roleID string, codes []string) error {
	stmt, args, err := r.builder.Delete("ups.role_permissions").
		Where(squirrel.Eq{"role_id": roleID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete role permissions sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete role permissions: %w", err)
	}

	return r.insertPermissions(ctx, roleID, codes)
}

// ListUserIDs returns the ids of users holding the role.
func (r *RoleRepository) ListUserIDs(ctx context.Context, roleID string) ([]string, error) {
	stmt, args, err := r.builder.Select("user_id").
		From("ups.user_roles").
		Where(squirrel.Eq{"role_id": roleID}).
		OrderBy("user_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select role users sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("select role users: %w", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan role user: %w", err)
		}
		userIDs = append(userIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role users: %w", err)
	}

	return userIDs, nil
}

func (r *RoleRepository) insertPermissions(ctx context.Context, roleID string, codes []string) error {
	if len(codes) == 0 {
		return nil
	}

	query := r.builder.Insert("ups.role_permissions").Columns("role_id", "permission_code")
	for _, code := range codes {
		query = query.Values(roleID, code)
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert role permissions sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert role permissions: %w", err)
	}

	return nil
}

func (r *RoleRepository) queryRoles(ctx context.Context, stmt string, args []any) ([]domain.Role, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(
			&role.ID,
			&role.Name,
			&role.Description,
			&role.CreatedAt,
			&role.UpdatedAt,
			&role.Version,
		); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}

	return roles, nil
}
