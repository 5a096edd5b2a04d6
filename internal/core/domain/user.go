package domain

import (
	"slices"
	"strings"
	"time"

	uuid "github.com/google/uuid"
)

const (
	usernameMinLength = 3
	usernameMaxLength = 50
)

// User is the identity aggregate root. It owns its role associations
// exclusively; no other aggregate mutates them. The password hash is the
// only credential material ever held; plaintext never enters the domain.
type User struct {
	EntityMeta
	Username     string
	PasswordHash string
	Email        string
	DisplayName  string
	Phone        *string
	IsActive     bool
	RoleIDs      []string
}

// NewUser validates and constructs a user. The password arrives already
// hashed; displayName defaults to the username when empty.
func NewUser(username, passwordHash, email, displayName string, phone *string, now time.Time) (*User, []Event, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, nil, err
	}
	if passwordHash == "" {
		return nil, nil, NewRuleError("user.password_required", "password hash is required")
	}

	if strings.TrimSpace(displayName) == "" {
		displayName = username
	}

	user := &User{
		EntityMeta:   newEntityMeta(uuid.NewString(), now),
		Username:     username,
		PasswordHash: passwordHash,
		Email:        email,
		DisplayName:  displayName,
		Phone:        phone,
		IsActive:     true,
	}

	events := []Event{UserCreatedEvent{
		EventMeta: EventMeta{At: now},
		UserID:    user.ID,
		Username:  user.Username,
	}}

	return user, events, nil
}

// UpdateInfo changes profile fields. Empty displayName leaves it untouched.
func (u *User) UpdateInfo(email, displayName string, phone *string, now time.Time) ([]Event, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	u.Email = email
	if strings.TrimSpace(displayName) != "" {
		u.DisplayName = displayName
	}
	if phone != nil {
		u.Phone = phone
	}
	u.Touch(now)

	return []Event{UserUpdatedEvent{
		EventMeta: EventMeta{At: now},
		UserID:    u.ID,
		Username:  u.Username,
	}}, nil
}

// SetPasswordHash swaps the stored credential. The caller decides which
// event fits the flow (change vs reset).
func (u *User) SetPasswordHash(hash string, now time.Time) error {
	if hash == "" {
		return NewRuleError("user.password_required", "password hash is required")
	}
	u.PasswordHash = hash
	u.Touch(now)
	return nil
}

// Activate enables login. No-op events are still emitted so downstream
// caches converge.
func (u *User) Activate(now time.Time) []Event {
	u.IsActive = true
	u.Touch(now)
	return []Event{UserStatusChangedEvent{EventMeta: EventMeta{At: now}, UserID: u.ID, IsActive: true}}
}

// Deactivate disables login without destroying the account.
func (u *User) Deactivate(now time.Time) []Event {
	u.IsActive = false
	u.Touch(now)
	return []Event{UserStatusChangedEvent{EventMeta: EventMeta{At: now}, UserID: u.ID, IsActive: false}}
}

// AssignRole adds a role association. Assigning an already-held role is a
// no-op and returns no events.
func (u *User) AssignRole(roleID string, now time.Time) []Event {
	if roleID == "" || slices.Contains(u.RoleIDs, roleID) {
		return nil
	}

	u.RoleIDs = append(u.RoleIDs, roleID)
	u.Touch(now)

	return []Event{UserRoleAssignedEvent{EventMeta: EventMeta{At: now}, UserID: u.ID, RoleID: roleID}}
}

// RemoveRole drops a role association. Removing a role the user does not
// hold is a no-op.
func (u *User) RemoveRole(roleID string, now time.Time) []Event {
	idx := slices.Index(u.RoleIDs, roleID)
	if idx < 0 {
		return nil
	}

	u.RoleIDs = slices.Delete(u.RoleIDs, idx, idx+1)
	u.Touch(now)

	return []Event{UserRoleRemovedEvent{EventMeta: EventMeta{At: now}, UserID: u.ID, RoleID: roleID}}
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(roleID string) bool {
	return slices.Contains(u.RoleIDs, roleID)
}

func validateUsername(username string) error {
	if username == "" {
		return NewValidationError("username", "username is required")
	}
	if len(username) < usernameMinLength || len(username) > usernameMaxLength {
		return NewValidationError("username", "username must be between 3 and 50 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return NewValidationError("email", "email is required")
	}
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		return NewValidationError("email", "email format is invalid")
	}
	return nil
}
