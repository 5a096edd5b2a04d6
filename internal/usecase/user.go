package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/user-permission-service/internal/cache"
	"github.com/arklim/user-permission-service/internal/core/domain"
	"github.com/arklim/user-permission-service/internal/core/port"
	"github.com/arklim/user-permission-service/internal/infra/logger"
	"github.com/arklim/user-permission-service/internal/infra/security"
	"github.com/arklim/user-permission-service/internal/repository"
)

// CreateUserInput carries the fields for account creation.
type CreateUserInput struct {
	Username    string
	Password    string
	Email       string
	DisplayName string
	Phone       *string
	RoleIDs     []string
}

// UpdateUserInput carries the mutable profile fields plus the version
// the caller read. A stale version yields a conflict, never a silent
// lost update.
type UpdateUserInput struct {
	Email       string
	DisplayName string
	Phone       *string
	Version     int64
}

// UserConflict reports a stale-version update. Current carries the
// state that won so the caller can re-read, merge, and retry.
type UserConflict struct {
	Current *domain.User
}

func (c *UserConflict) Error() string {
	return fmt.Sprintf("user %s was modified concurrently (current version %d)", c.Current.ID, c.Current.Version)
}

// UserSummary is one row of a paged user listing. Role names are
// denormalized so the list renders without extra lookups.
type UserSummary struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	DisplayName string   `json:"displayName"`
	Email       string   `json:"email"`
	IsActive    bool     `json:"isActive"`
	RoleNames   []string `json:"roleNames"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserPage is a paged user listing.
type UserPage struct {
	Items []UserSummary `json:"items"`
	Total int           `json:"total"`
}

// UserService owns the account lifecycle: creation, profile updates,
// activation, role assignment, and removal.
type UserService struct {
	users       port.UserRepository
	roles       port.RoleRepository
	hasher      port.PasswordHasher
	passwords   *security.PasswordValidator
	store       port.CacheStore
	invalidator *cache.Invalidator
	publisher   port.EventPublisher
	clock       port.Clock
	cacheTTL    time.Duration
	log         *zap.Logger
}

// UserServiceDeps bundles the collaborators of UserService.
type UserServiceDeps struct {
	Users       port.UserRepository
	Roles       port.RoleRepository
	Hasher      port.PasswordHasher
	Passwords   *security.PasswordValidator
	Store       port.CacheStore
	Invalidator *cache.Invalidator
	Publisher   port.EventPublisher
	Clock       port.Clock
	CacheTTL    time.Duration
	Logger      *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(deps UserServiceDeps) (*UserService, error) {
	if deps.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if deps.Roles == nil {
		return nil, fmt.Errorf("role repository is required")
	}
	if deps.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	if deps.Passwords == nil {
		deps.Passwords = security.DefaultPasswordValidator()
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

	return &UserService{
		users:       deps.Users,
		roles:       deps.Roles,
		hasher:      deps.Hasher,
		passwords:   deps.Passwords,
		store:       deps.Store,
		invalidator: deps.Invalidator,
		publisher:   deps.Publisher,
		clock:       deps.Clock,
		cacheTTL:    deps.CacheTTL,
		log:         deps.Logger,
	}, nil
}

// Create registers a new account with an optional initial role set.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	if err := s.passwords.Validate(in.Password); err != nil {
		return nil, domain.NewValidationError("password", err.Error())
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.clock.Now()
	user, events, err := domain.NewUser(in.Username, hash, in.Email, in.DisplayName, in.Phone, now)
	if err != nil {
		return nil, err
	}

	for _, roleID := range in.RoleIDs {
		if _, err := s.roles.GetByID(ctx, roleID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrRoleNotFound
			}
			return nil, fmt.Errorf("load role: %w", err)
		}
		events = append(events, user.AssignRole(roleID, now)...)
	}

	if err := s.users.Create(ctx, *user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.NewRuleError("user.duplicate_username", "username is already taken")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.publish(ctx, events...)
	if s.invalidator != nil {
		s.invalidator.OnUserChanged(ctx, user.ID)
	}

	s.log.Info("user created",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("email", logger.MaskEmail(user.Email)))

	return user, nil
}

// Get loads one user by id.
func (s *UserService) Get(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// Update applies profile changes under optimistic concurrency. When the
// stored version no longer matches the one the caller read, the current
// state is re-fetched and returned inside a *UserConflict.
func (s *UserService) Update(ctx context.Context, userID string, in UpdateUserInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	if user.Version != in.Version {
		return nil, &UserConflict{Current: user}
	}

	events, err := user.UpdateInfo(in.Email, in.DisplayName, in.Phone, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, *user, in.Version); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, s.conflict(ctx, userID)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.publish(ctx, events...)
	if s.invalidator != nil {
		s.invalidator.OnUserChanged(ctx, user.ID)
	}

	phone := ""
	if user.Phone != nil {
		phone = logger.MaskPhone(*user.Phone)
	}
	s.log.Info("user updated",
		zap.String("user_id", user.ID),
		zap.String("email", logger.MaskEmail(user.Email)),
		zap.String("phone", phone))

	return user, nil
}

// SetActive flips the account status.
func (s *UserService) SetActive(ctx context.Context, userID string, active bool) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}

	loadedVersion := user.Version
	var events []domain.Event
	if active {
		events = user.Activate(s.clock.Now())
	} else {
		events = user.Deactivate(s.clock.Now())
	}

	if err := s.users.Update(ctx, *user, loadedVersion); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return s.conflict(ctx, userID)
		}
		return fmt.Errorf("update user: %w", err)
	}

	s.publish(ctx, events...)
	if s.invalidator != nil {
		s.invalidator.OnUserChanged(ctx, user.ID)
	}
	return nil
}

// AssignRole adds one role to the user. Assigning a role the user
// already holds succeeds without changing anything.
func (s *UserService) AssignRole(ctx context.Context, userID, roleID string) error {
	return s.mutateRoles(ctx, userID, roleID, func(user *domain.User, now time.Time) []domain.Event {
		return user.AssignRole(roleID, now)
	})
}

// RemoveRole drops one role from the user. Removing a role the user
// does not hold succeeds without changing anything.
func (s *UserService) RemoveRole(ctx context.Context, userID, roleID string) error {
	return s.mutateRoles(ctx, userID, roleID, func(user *domain.User, now time.Time) []domain.Event {
		return user.RemoveRole(roleID, now)
	})
}

// SetRoles replaces the entire role set of a user.
func (s *UserService) SetRoles(ctx context.Context, userID string, roleIDs []string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}

	now := s.clock.Now()
	var events []domain.Event
	for _, roleID := range slices.Clone(user.RoleIDs) {
		if !slices.Contains(roleIDs, roleID) {
			events = append(events, user.RemoveRole(roleID, now)...)
		}
	}
	for _, roleID := range roleIDs {
		if _, err := s.roles.GetByID(ctx, roleID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrRoleNotFound
			}
			return fmt.Errorf("load role: %w", err)
		}
		events = append(events, user.AssignRole(roleID, now)...)
	}

	if len(events) == 0 {
		return nil
	}

	if err := s.users.ReplaceRoles(ctx, user.ID, user.RoleIDs); err != nil {
		return fmt.Errorf("replace roles: %w", err)
	}

	s.publish(ctx, events...)
	if s.invalidator != nil {
		s.invalidator.OnUserChanged(ctx, user.ID)
	}
	return nil
}

// Delete removes an account permanently.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.publish(ctx, domain.UserDeletedEvent{EventMeta: domain.EventMeta{At: s.clock.Now()}, UserID: userID})
	if s.invalidator != nil {
		s.invalidator.OnUserChanged(ctx, userID)
	}
	return nil
}

// List returns one page of users with denormalized role names. Pages
// are cached under a fingerprint of the filter; any user or role
// mutation clears the whole listing namespace.
func (s *UserService) List(ctx context.Context, filter port.UserListFilter) (*UserPage, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	key := cache.UserListQuery(
		filter.Keyword,
		boolParam(filter.IsActive),
		strconv.Itoa(filter.Limit),
		strconv.Itoa(filter.Offset),
	)

	page, err := cache.GetOrCompute(ctx, s.store, key, s.cacheTTL, func(ctx context.Context) (UserPage, error) {
		return s.listUncached(ctx, filter)
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *UserService) listUncached(ctx context.Context, filter port.UserListFilter) (UserPage, error) {
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return UserPage{}, fmt.Errorf("list users: %w", err)
	}
	total, err := s.users.Count(ctx, filter)
	if err != nil {
		return UserPage{}, fmt.Errorf("count users: %w", err)
	}

	page := UserPage{Items: make([]UserSummary, 0, len(users)), Total: total}
	for _, user := range users {
		roles, err := s.roles.ListByUser(ctx, user.ID)
		if err != nil {
			return UserPage{}, fmt.Errorf("load roles for user %s: %w", user.ID, err)
		}
		names := make([]string, 0, len(roles))
		for _, role := range roles {
			names = append(names, role.Name)
		}
		page.Items = append(page.Items, UserSummary{
			ID:          user.ID,
			Username:    user.Username,
			DisplayName: user.DisplayName,
			Email:       user.Email,
			IsActive:    user.IsActive,
			RoleNames:   names,
			CreatedAt:   user.CreatedAt,
		})
	}
	return page, nil
}

func (s *UserService) mutateRoles(ctx context.Context, userID, roleID string, mutate func(*domain.User, time.Time) []domain.Event) error {
	if _, err := s.roles.GetByID(ctx, roleID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoleNotFound
		}
		return fmt.Errorf("load role: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}

	events := mutate(user, s.clock.Now())
	if len(events) == 0 {
		return nil
	}

	if err := s.users.ReplaceRoles(ctx, user.ID, user.RoleIDs); err != nil {
		return fmt.Errorf("replace roles: %w", err)
	}

	s.publish(ctx, events...)
	if s.invalidator != nil {
		s.invalidator.OnUserChanged(ctx, user.ID)
	}
	return nil
}

func (s *UserService) conflict(ctx context.Context, userID string) error {
	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("reload user after version conflict: %w", err)
	}
	return &UserConflict{Current: current}
}

func (s *UserService) publish(ctx context.Context, events ...domain.Event) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.log.Warn("publish events failed", zap.Error(err))
	}
}

func boolParam(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}
