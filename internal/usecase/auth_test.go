package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arklim/user-permission-service/internal/cache"
	"github.com/arklim/user-permission-service/internal/core/domain"
	"github.com/arklim/user-permission-service/internal/infra/security"
)

const tokenSecret = "0123456789abcdef0123456789abcdef"

func claimsWith(codes ...string) *security.AccessClaims {
	return &security.AccessClaims{Permissions: codes}
}

type authFixture struct {
	svc   *AuthService
	users *fakeUserRepo
	roles *fakeRoleRepo
	pub   *capturePublisher
	user  *domain.User
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	users := newFakeUserRepo()
	roles := seedRoles(t)
	pub := &capturePublisher{}
	hasher := security.NewSHA256Hasher()

	hash, err := hasher.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	user, _, err := domain.NewUser("alice", hash, "alice@example.com", "Alice", nil, time.Now().UTC())
	if err != nil {
		t.Fatalf("NewUser returned error: %v", err)
	}
	user.AssignRole("r1", time.Now().UTC())
	user.AssignRole("r2", time.Now().UTC())
	users.add(user)
	roles.assign(user.ID, "r1", "r2")

	tokens, err := security.NewTokenIssuer(tokenSecret, "user-permission-service", "api", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer returned error: %v", err)
	}

	store := cache.NewMemoryStore()
	svc, err := NewAuthService(AuthServiceDeps{
		Users:       users,
		Roles:       roles,
		Hasher:      hasher,
		Tokens:      tokens,
		Resolver:    NewPermissionResolver(roles, store, time.Minute),
		Store:       store,
		Invalidator: cache.NewInvalidator(store, nil),
		Publisher:   pub,
	})
	if err != nil {
		t.Fatalf("NewAuthService returned error: %v", err)
	}

	return &authFixture{svc: svc, users: users, roles: roles, pub: pub, user: user}
}

func TestLoginSuccess(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.svc.Login(context.Background(), "alice", "secret123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Message)
	}
	if result.UserID != f.user.ID || result.Username != "alice" || result.DisplayName != "Alice" {
		t.Fatalf("unexpected identity fields: %+v", result)
	}

	want := []string{"audit:read", "doc:read", "doc:write"}
	if len(result.Permissions) != len(want) {
		t.Fatalf("expected permissions %v, got %v", want, result.Permissions)
	}
	for i := range want {
		if result.Permissions[i] != want[i] {
			t.Fatalf("expected permissions %v, got %v", want, result.Permissions)
		}
	}

	claims, err := f.svc.VerifyToken(result.Token)
	if err != nil {
		t.Fatalf("issued token must verify: %v", err)
	}
	if claims.Subject != f.user.ID {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if !claims.HasPermission("doc:write") {
		t.Fatalf("token must embed the resolved permission set")
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)

	inactive, _, err := domain.NewUser("carol", "somehash", "carol@example.com", "", nil, time.Now().UTC())
	if err != nil {
		t.Fatalf("NewUser returned error: %v", err)
	}
	inactive.Deactivate(time.Now().UTC())
	f.users.add(inactive)

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"unknown username", "nobody", "secret123"},
		{"wrong password", "alice", "wrong"},
		{"inactive account", "carol", "secret123"},
		{"empty username", "", "secret123"},
		{"empty password", "alice", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := f.svc.Login(context.Background(), tc.username, tc.password)
			if err != nil {
				t.Fatalf("Login returned error: %v", err)
			}
			if result.Success {
				t.Fatalf("expected failure")
			}
			if result.Message != InvalidCredentialsMessage {
				t.Fatalf("failure message must be uniform, got %q", result.Message)
			}
			if result.Token != "" || result.UserID != "" {
				t.Fatalf("failure result must carry no identity material: %+v", result)
			}
		})
	}
}

func TestAuthorizeDecisions(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.svc.Login(context.Background(), "alice", "secret123")
	if err != nil || !result.Success {
		t.Fatalf("login failed: %v %q", err, result.Message)
	}

	if _, err := f.svc.Authorize(result.Token, "doc:read"); err != nil {
		t.Fatalf("held permission must authorize: %v", err)
	}
	if _, err := f.svc.Authorize(result.Token, "admin:all"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.Authorize("garbage", "doc:read"); !errors.Is(err, security.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	result, err := f.svc.ChangePassword(ctx, f.user.ID, "wrong", "newsecret1")
	if err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	if result.Success {
		t.Fatalf("wrong current password must fail")
	}

	result, err = f.svc.ChangePassword(ctx, f.user.ID, "secret123", "newsecret1")
	if err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Message)
	}

	login, err := f.svc.Login(ctx, "alice", "newsecret1")
	if err != nil || !login.Success {
		t.Fatalf("new password must authenticate: %v %q", err, login.Message)
	}
	login, err = f.svc.Login(ctx, "alice", "secret123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if login.Success {
		t.Fatalf("old password must stop authenticating")
	}

	names := f.pub.names()
	if len(names) == 0 || names[len(names)-1] != "user.password.changed" {
		t.Fatalf("expected password changed event, got %v", names)
	}
}

func TestChangePasswordRejectsWeakPassword(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.svc.ChangePassword(context.Background(), f.user.ID, "secret123", "abc")
	if err != nil {
		t.Fatalf("ChangePassword returned error: %v", err)
	}
	if result.Success {
		t.Fatalf("short password must be rejected by policy")
	}
}

func TestResetPasswordSkipsOldPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	result, err := f.svc.ResetPassword(ctx, f.user.ID, "resetsecret1")
	if err != nil {
		t.Fatalf("ResetPassword returned error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Message)
	}

	login, err := f.svc.Login(ctx, "alice", "resetsecret1")
	if err != nil || !login.Success {
		t.Fatalf("reset password must authenticate: %v %q", err, login.Message)
	}

	names := f.pub.names()
	if len(names) == 0 || names[len(names)-1] != "user.password.reset" {
		t.Fatalf("expected password reset event, got %v", names)
	}
}

func TestResetPasswordUnknownUser(t *testing.T) {
	f := newAuthFixture(t)
	if _, err := f.svc.ResetPassword(context.Background(), "missing", "resetsecret1"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetUserInfo(t *testing.T) {
	f := newAuthFixture(t)

	info, err := f.svc.GetUserInfo(context.Background(), f.user.ID)
	if err != nil {
		t.Fatalf("GetUserInfo returned error: %v", err)
	}
	if info.Username != "alice" || info.Email != "alice@example.com" {
		t.Fatalf("unexpected profile: %+v", info)
	}
	if len(info.RoleIDs) != 2 || len(info.RoleNames) != 2 {
		t.Fatalf("expected two roles, got %+v", info)
	}
	if len(info.Permissions) != 3 {
		t.Fatalf("expected resolved permissions, got %v", info.Permissions)
	}
}

func TestGetUserInfoUnknownUser(t *testing.T) {
	f := newAuthFixture(t)
	if _, err := f.svc.GetUserInfo(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
