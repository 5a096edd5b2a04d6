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

// PermissionRepository implements port.PermissionRepository using
// PostgreSQL. The catalog is append-mostly; there is no update path.
type PermissionRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewPermissionRepository constructs a repository backed by any
// executor that satisfies pgExecutor.
func NewPermissionRepository(exec pgExecutor) *PermissionRepository {
	repo := &PermissionRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Create inserts a catalog entry.
func (r *PermissionRepository) Create(ctx context.Context, permission domain.Permission) error {
	stmt, args, err := r.builder.Insert("ups.permissions").
		Columns("code", "name", "description", "module", "type", "created_at").
		Values(permission.Code, permission.Name, permission.Description, permission.Module, string(permission.Type), permission.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert permission sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert permission: %w", err)
	}

	return nil
}

// GetByCode retrieves a catalog entry by its unique code.
func (r *PermissionRepository) GetByCode(ctx context.Context, code string) (*domain.Permission, error) {
	stmt, args, err := r.builder.
		Select("code", "name", "description", "module", "type", "created_at").
		From("ups.permissions").
		Where(squirrel.Eq{"code": code}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select permission sql: %w", err)
	}

	var (
		permission domain.Permission
		permType   string
	)
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&permission.Code,
		&permission.Name,
		&permission.Description,
		&permission.Module,
		&permType,
		&permission.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan permission: %w", err)
	}
	permission.Type = domain.PermissionType(permType)

	return &permission, nil
}

// List returns the whole catalog ordered by module, then code.
func (r *PermissionRepository) List(ctx context.Context) ([]domain.Permission, error) {
	return r.list(ctx, nil)
}

// ListByModule returns one module's slice of the catalog.
func (r *PermissionRepository) ListByModule(ctx context.Context, module string) ([]domain.Permission, error) {
	return r.list(ctx, squirrel.Eq{"module": module})
}

func (r *PermissionRepository) list(ctx context.Context, where squirrel.Eq) ([]domain.Permission, error) {
	query := r.builder.
		Select("code", "name", "description", "module", "type", "created_at").
		From("ups.permissions").
		OrderBy("module", "code")
	if where != nil {
		query = query.Where(where)
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list permissions sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()

	var permissions []domain.Permission
	for rows.Next() {
		var (
			permission domain.Permission
			permType   string
		)
		if err := rows.Scan(
			&permission.Code,
			&permission.Name,
			&permission.Description,
			&permission.Module,
			&permType,
			&permission.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan permission: %w", err)
		}
		permission.Type = domain.PermissionType(permType)
		permissions = append(permissions, permission)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate permissions: %w", err)
	}

	return permissions, nil
}
