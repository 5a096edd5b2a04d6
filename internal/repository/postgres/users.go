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
	"github.com/arklim/user-permission-service/internal/core/port"
	"github.com/arklim/user-permission-service/internal/repository"
)

// UserRepository implements port.UserRepository using PostgreSQL.
// Reads eager-load the role-id associations from ups.user_roles.
type UserRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository constructs a repository backed by any executor
// that satisfies pgExecutor.
func NewUserRepository(exec pgExecutor) *UserRepository {
	repo := &UserRepository{
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
func (r *UserRepository) WithTx(tx pgx.Tx) *UserRepository {
	if tx == nil {
		return r
	}
	return &UserRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a user row plus its role associations.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	var phoneValue any
	if user.Phone != nil && *user.Phone != "" {
		phoneValue = *user.Phone
	}

	stmt, args, err := r.builder.Insert("ups.users").
		Columns("id", "username", "password_hash", "email", "display_name", "phone", "is_active", "created_at", "updated_at", "version").
		Values(user.ID, user.Username, user.PasswordHash, user.Email, user.DisplayName, phoneValue, user.IsActive, user.CreatedAt, user.UpdatedAt, user.Version).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}

	if len(user.RoleIDs) > 0 {
		if err := r.insertRoles(ctx, user.ID, user.RoleIDs); err != nil {
			return err
		}
	}

	return nil
}

// GetByID retrieves a user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByUsername retrieves a user by its unique username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, squirrel.Eq{"username": username})
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Eq) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select("id", "username", "password_hash", "email", "display_name", "phone", "is_active", "created_at", "updated_at", "version").
		From("ups.users").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)
	user, err := scanUser(row)
	if err != nil {
		return nil, err
	}

	roleIDs, err := r.loadRoleIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.RoleIDs = roleIDs

	return user, nil
}

// Update persists the aggregate guarded by its previous version stamp.
// A concurrent edit leaves zero rows affected and surfaces as
// repository.ErrVersionConflict.
func (r *UserRepository) Update(ctx context.Context, user domain.User, expectedVersion int64) error {
	var phoneValue any
	if user.Phone != nil && *user.Phone != "" {
		phoneValue = *user.Phone
	}

	stmt, args, err := r.builder.Update("ups.users").
		Set("username", user.Username).
		Set("password_hash", user.PasswordHash).
		Set("email", user.Email).
		Set("display_name", user.DisplayName).
		Set("phone", phoneValue).
		Set("is_active", user.IsActive).
		Set("updated_at", user.UpdatedAt).
		Set("version", user.Version).
		Where(squirrel.Eq{"id": user.ID, "version": expectedVersion}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrVersionConflict
	}

	return nil
}

// Delete removes a user row; role associations cascade.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("ups.users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete user sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// List returns one filtered, ordered page of users.
func (r *UserRepository) List(ctx context.Context, filter port.UserListFilter) ([]domain.User, error) {
	query := r.builder.
		Select("id", "username", "password_hash", "email", "display_name", "phone", "is_active", "created_at", "updated_at", "version").
		From("ups.users").
		OrderBy("created_at DESC", "id")

	query = applyUserFilter(query, filter)
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list users sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	for i := range users {
		roleIDs, err := r.loadRoleIDs(ctx, users[i].ID)
		if err != nil {
			return nil, err
		}
		users[i].RoleIDs = roleIDs
	}

	return users, nil
}

// Count returns the number of users matching the filter.
func (r *UserRepository) Count(ctx context.Context, filter port.UserListFilter) (int, error) {
	query := r.builder.Select("COUNT(*)").From("ups.users")
	query = applyUserFilter(query, filter)

	stmt, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count users sql: %w", err)
	}

	var count int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}

	return count, nil
}

// ReplaceRoles rewrites the user's role associations as delete-then-insert.
func (r *UserRepository) ReplaceRoles(ctx context.Context, userID string, roleIDs []string) error {
	stmt, args, err := r.builder.Delete("ups.user_roles").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete user roles sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete user roles: %w", err)
	}

	return r.insertRoles(ctx, userID, roleIDs)
}

func (r *UserRepository) insertRoles(ctx context.Context, userID string, roleIDs []string) error {
	if len(roleIDs) == 0 {
		return nil
	}

	query := r.builder.Insert("ups.user_roles").Columns("user_id", "role_id")
	for _, roleID := range roleIDs {
		query = query.Values(userID, roleID)
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build insert user roles sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert user roles: %w", err)
	}

	return nil
}

func (r *UserRepository) loadRoleIDs(ctx context.Context, userID string) ([]string, error) {
	stmt, args, err := r.builder.Select("role_id").
		From("ups.user_roles").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("role_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user roles sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("select user roles: %w", err)
	}
	defer rows.Close()

	var roleIDs []string
	for rows.Next() {
		var roleID string
		if err := rows.Scan(&roleID); err != nil {
			return nil, fmt.Errorf("scan user role: %w", err)
		}
		roleIDs = append(roleIDs, roleID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user roles: %w", err)
	}

	return roleIDs, nil
}

func applyUserFilter(query squirrel.SelectBuilder, filter port.UserListFilter) squirrel.SelectBuilder {
	if filter.Keyword != "" {
		pattern := "%" + filter.Keyword + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"username": pattern},
			squirrel.ILike{"display_name": pattern},
			squirrel.ILike{"email": pattern},
		})
	}
	if filter.IsActive != nil {
		query = query.Where(squirrel.Eq{"is_active": *filter.IsActive})
	}
	return query
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user  domain.User
		phone sql.NullString
	)

	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Email,
		&user.DisplayName,
		&phone,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Version,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if phone.Valid {
		val := phone.String
		user.Phone = &val
	}

	return &user, nil
}
