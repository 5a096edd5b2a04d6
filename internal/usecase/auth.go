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
	"github.com/arklim/user-permission-service/internal/infra/logger"
	"github.com/arklim/user-permission-service/internal/infra/security"
	"github.com/arklim/user-permission-service/internal/infra/telemetry"
	"github.com/arklim/user-permission-service/internal/repository"
)

// InvalidCredentialsMessage is the single outward-facing login failure
// text. Unknown username, wrong password, and inactive account all
// produce exactly this string.
const InvalidCredentialsMessage = "invalid username or password"

// LoginResult is the outcome of a login attempt.
type LoginResult struct {
	Success     bool     `json:"success"`
	Message     string   `json:"message"`
	UserID      string   `json:"userId,omitempty"`
	Username    string   `json:"username,omitempty"`
	DisplayName string   `json:"displayName,omitempty"`
	Token       string   `json:"token,omitempty"`
	Permissions []string `json:"permissions"`
}

// PasswordResult is the outcome of a password change or reset.
type PasswordResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UserInfo is the assembled read model for one user.
type UserInfo struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	DisplayName string   `json:"displayName"`
	Email       string   `json:"email"`
	Phone       *string  `json:"phone,omitempty"`
	RoleIDs     []string `json:"roleIds"`
	RoleNames   []string `json:"roleNames"`
	Permissions []string `json:"permissions"`
	IsActive    bool     `json:"isActive"`
}

type userRoleSnapshot struct {
	IDs   []string `json:"ids"`
	Names []string `json:"names"`
}

// AuthService coordinates credential validation, permission resolution,
// and token issuance. Within one request, validation strictly precedes
// issuance: no token is ever issued for an unvalidated or inactive user.
type AuthService struct {
	users       port.UserRepository
	roles       port.RoleRepository
	hasher      port.PasswordHasher
	tokens      *security.TokenIssuer
	resolver    *PermissionResolver
	passwords   *security.PasswordValidator
	store       port.CacheStore
	invalidator *cache.Invalidator
	publisher   port.EventPublisher
	clock       port.Clock
	cacheTTL    time.Duration
	metrics     *telemetry.Metrics
	log         *zap.Logger
}

// AuthServiceDeps bundles the collaborators of AuthService.
type AuthServiceDeps struct {
	Users       port.UserRepository
	Roles       port.RoleRepository
	Hasher      port.PasswordHasher
	Tokens      *security.TokenIssuer
	Resolver    *PermissionResolver
	Passwords   *security.PasswordValidator
	Store       port.CacheStore
	Invalidator *cache.Invalidator
	Publisher   port.EventPublisher
	Clock       port.Clock
	CacheTTL    time.Duration
	Metrics     *telemetry.Metrics
	Logger      *zap.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(deps AuthServiceDeps) (*AuthService, error) {
	if deps.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if deps.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	if deps.Tokens == nil {
		return nil, fmt.Errorf("token issuer is required")
	}
	if deps.Resolver == nil {
		return nil, fmt.Errorf("permission resolver is required")
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

	return &AuthService{
		users:       deps.Users,
		roles:       deps.Roles,
		hasher:      deps.Hasher,
		tokens:      deps.Tokens,
		resolver:    deps.Resolver,
		passwords:   deps.Passwords,
		store:       deps.Store,
		invalidator: deps.Invalidator,
		publisher:   deps.Publisher,
		clock:       deps.Clock,
		cacheTTL:    deps.CacheTTL,
		metrics:     deps.Metrics,
		log:         deps.Logger,
	}, nil
}

func (s *AuthService) countLogin(result string) {
	if s.metrics != nil {
		s.metrics.LoginAttempts.WithLabelValues(result).Inc()
	}
}

func (s *AuthService) countAuthz(outcome string) {
	if s.metrics != nil {
		s.metrics.AuthzDecisions.WithLabelValues(outcome).Inc()
	}
}

// Login validates credentials and issues a signed access token embedding
// the resolved permission set. It fails closed: unknown username, wrong
// password, and inactive account all yield the identical generic result.
func (s *AuthService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	failure := LoginResult{Success: false, Message: InvalidCredentialsMessage, Permissions: []string{}}

	if username == "" || password == "" {
		s.countLogin("failure")
		return failure, nil
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		s.countLogin("failure")
		if errors.Is(err, repository.ErrNotFound) {
			return failure, nil
		}
		return failure, fmt.Errorf("lookup user: %w", err)
	}

	if !user.IsActive {
		s.countLogin("failure")
		s.log.Info("login rejected for inactive account", zap.String("username", username))
		return failure, nil
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.countLogin("failure")
		s.log.Info("login rejected",
			zap.String("username", username),
			zap.String("email", logger.MaskEmail(user.Email)))
		return failure, nil
	}

	permissions, err := s.resolver.Resolve(ctx, user.ID)
	if err != nil {
		return failure, fmt.Errorf("resolve permissions: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.DisplayName, permissions)
	if err != nil {
		return failure, fmt.Errorf("issue token: %w", err)
	}

	s.countLogin("success")
	return LoginResult{
		Success:     true,
		Message:     "ok",
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Token:       token,
		Permissions: permissions,
	}, nil
}

// VerifyToken validates a presented token and returns its claims.
func (s *AuthService) VerifyToken(token string) (*security.AccessClaims, error) {
	return s.tokens.Verify(token)
}

// Authorize verifies the token and evaluates the single-code policy.
// Token failures surface as security.ErrInvalidToken; a valid token
// lacking the permission surfaces as ErrForbidden.
func (s *AuthService) Authorize(token, requiredCode string) (*security.AccessClaims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.countAuthz("invalid_token")
		return nil, err
	}
	if !Authorize(claims, requiredCode) {
		s.countAuthz("denied")
		return nil, ErrForbidden
	}
	s.countAuthz("allowed")
	return claims, nil
}

// GetUserInfo assembles the user read model: cached profile, role
// associations, and the resolved permission set.
func (s *AuthService) GetUserInfo(ctx context.Context, userID string) (*UserInfo, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	user, err := cache.GetOrCompute(ctx, s.store, cache.UserByID(userID), s.cacheTTL, func(ctx context.Context) (*domain.User, error) {
		return s.users.GetByID(ctx, userID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	snapshot, err := cache.GetOrCompute(ctx, s.store, cache.UserRoles(userID), s.cacheTTL, func(ctx context.Context) (userRoleSnapshot, error) {
		roles, err := s.roles.ListByUser(ctx, userID)
		if err != nil {
			return userRoleSnapshot{}, err
		}
		snap := userRoleSnapshot{IDs: make([]string, 0, len(roles)), Names: make([]string, 0, len(roles))}
		for _, role := range roles {
			snap.IDs = append(snap.IDs, role.ID)
			snap.Names = append(snap.Names, role.Name)
		}
		return snap, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load user roles: %w", err)
	}

	permissions, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve permissions: %w", err)
	}

	return &UserInfo{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Phone:       user.Phone,
		RoleIDs:     snapshot.IDs,
		RoleNames:   snapshot.Names,
		Permissions: permissions,
		IsActive:    user.IsActive,
	}, nil
}

// ChangePassword verifies the current password and installs the new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) (PasswordResult, error) {
	if err := s.passwords.Validate(newPassword); err != nil {
		return PasswordResult{Success: false, Message: err.Error()}, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return PasswordResult{}, ErrUserNotFound
		}
		return PasswordResult{}, fmt.Errorf("load user: %w", err)
	}

	if !user.IsActive {
		return PasswordResult{Success: false, Message: "account is not active"}, nil
	}

	if !s.hasher.Verify(oldPassword, user.PasswordHash) {
		return PasswordResult{Success: false, Message: "current password is incorrect"}, nil
	}

	event := domain.UserPasswordChangedEvent{EventMeta: domain.EventMeta{At: s.clock.Now()}, UserID: user.ID}
	return s.installPassword(ctx, user, newPassword, event)
}

// ResetPassword installs a new password without checking the old one.
// Callers must independently authorize this as a privileged operation.
func (s *AuthService) ResetPassword(ctx context.Context, userID, newPassword string) (PasswordResult, error) {
	if err := s.passwords.Validate(newPassword); err != nil {
		return PasswordResult{Success: false, Message: err.Error()}, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return PasswordResult{}, ErrUserNotFound
		}
		return PasswordResult{}, fmt.Errorf("load user: %w", err)
	}

	event := domain.UserPasswordResetEvent{EventMeta: domain.EventMeta{At: s.clock.Now()}, UserID: user.ID}
	return s.installPassword(ctx, user, newPassword, event)
}

func (s *AuthService) installPassword(ctx context.Context, user *domain.User, newPassword string, event domain.Event) (PasswordResult, error) {
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return PasswordResult{}, fmt.Errorf("hash password: %w", err)
	}

	loadedVersion := user.Version
	if err := user.SetPasswordHash(hash, s.clock.Now()); err != nil {
		return PasswordResult{}, err
	}

	if err := s.users.Update(ctx, *user, loadedVersion); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return PasswordResult{Success: false, Message: "user was modified concurrently, retry"}, nil
		}
		return PasswordResult{}, fmt.Errorf("update user: %w", err)
	}

	s.publish(ctx, event)
	if s.invalidator != nil {
		s.invalidator.OnUserChanged(ctx, user.ID)
	}

	return PasswordResult{Success: true, Message: "ok"}, nil
}

func (s *AuthService) publish(ctx context.Context, events ...domain.Event) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.log.Warn("publish events failed", zap.Error(err))
	}
}
