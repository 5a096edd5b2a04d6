package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arklim/user-permission-service/internal/core/domain"
	"github.com/arklim/user-permission-service/internal/repository"
)

// MenuRepository implements port.MenuRepository using PostgreSQL.
// Nodes are stored flat; the tree is assembled by the menu service.
type MenuRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewMenuRepository constructs a repository backed by any executor
// that satisfies pgExecutor.
func NewMenuRepository(exec pgExecutor) *MenuRepository {
	repo := &MenuRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// Create inserts a navigation node.
func (r *MenuRepository) Create(ctx context.Context, menu domain.Menu) error {
	stmt, args, err := r.builder.Insert("ups.menus").
		Columns("id", "name", "path", "component", "icon", "parent_id", "sort_order", "permission_code", "is_visible", "created_at", "updated_at", "version").
		Values(menu.ID, menu.Name, menu.Path, menu.Component, menu.Icon, nullable(menu.ParentID), menu.SortOrder, nullable(menu.PermissionCode), menu.IsVisible, menu.CreatedAt, menu.UpdatedAt, menu.Version).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert menu sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert menu: %w", err)
	}

	return nil
}

// GetByID retrieves a node by identifier.
func (r *MenuRepository) GetByID(ctx context.Context, id string) (*domain.Menu, error) {
	stmt, args, err := r.builder.
		Select("id", "name", "path", "component", "icon", "parent_id", "sort_order", "permission_code", "is_visible", "created_at", "updated_at", "version").
		From("ups.menus").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select menu sql: %w", err)
	}

	menu, err := scanMenu(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		return nil, err
	}

	return menu, nil
}

// List returns all nodes ordered by sort order, then name.
func (r *MenuRepository) List(ctx context.Context) ([]domain.Menu, error) {
	stmt, args, err := r.builder.
		Select("id", "name", "path", "component", "icon", "parent_id", "sort_order", "permission_code", "is_visible", "created_at", "updated_at", "version").
		From("ups.menus").
		OrderBy("sort_order", "name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list menus sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	defer rows.Close()

	var menus []domain.Menu
	for rows.Next() {
		menu, err := scanMenu(rows)
		if err != nil {
			return nil, err
		}
		menus = append(menus, *menu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate menus: %w", err)
	}

	return menus, nil
}

// Update persists node changes.
func (r *MenuRepository) Update(ctx context.Context, menu domain.Menu) error {
	stmt, args, err := r.builder.Update("ups.menus").
		Set("name", menu.Name).
		Set("path", menu.Path).
		Set("component", menu.Component).
		Set("icon", menu.Icon).
		Set("parent_id", nullable(menu.ParentID)).
		Set("sort_order", menu.SortOrder).
		Set("permission_code", nullable(menu.PermissionCode)).
		Set("is_visible", menu.IsVisible).
		Set("updated_at", menu.UpdatedAt).
		Set("version", menu.Version).
		Where(squirrel.Eq{"id": menu.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update menu sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update menu: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a node. Children keep their parent_id; orphans are
// lifted to the root by the tree assembly.
func (r *MenuRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("ups.menus").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete menu sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete menu: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func nullable(value *string) any {
	if value == nil || *value == "" {
		return nil
	}
	return *value
}

func scanMenu(row pgx.Row) (*domain.Menu, error) {
	var (
		menu           domain.Menu
		parentID       sql.NullString
		permissionCode sql.NullString
	)

	if err := row.Scan(
		&menu.ID,
		&menu.Name,
		&menu.Path,
		&menu.Component,
		&menu.Icon,
		&parentID,
		&menu.SortOrder,
		&permissionCode,
		&menu.IsVisible,
		&menu.CreatedAt,
		&menu.UpdatedAt,
		&menu.Version,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan menu: %w", err)
	}

	if parentID.Valid {
		val := parentID.String
		menu.ParentID = &val
	}
	if permissionCode.Valid {
		val := permissionCode.String
		menu.PermissionCode = &val
	}

	return &menu, nil
}
