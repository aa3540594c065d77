// Package user provides the user account model. Unlike roles and
// assignments, users are plain mutable entities; the RBAC core only ever
// references them by ID.
package user

import (
	"strings"
	"time"

	"github.com/userdeskio/api/pkg/domain/shared"
)

// Status represents the account status.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
)

// IsValid checks if the status is known.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

// String returns the string representation of the status.
func (s Status) String() string { return string(s) }

// Preferences holds per-user settings stored as JSONB.
type Preferences struct {
	Theme         string `json:"theme,omitempty"`    // "light", "dark", "system"
	Language      string `json:"language,omitempty"` // BCP 47 tag
	Timezone      string `json:"timezone,omitempty"` // IANA name
	Notifications bool   `json:"notifications,omitempty"`
}

// User represents a user account.
type User struct {
	id           shared.ID
	email        string
	name         string
	avatarURL    string
	phone        string
	status       Status
	preferences  Preferences
	passwordHash string
	lastLoginAt  *time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

// New creates an active user account.
func New(email, name, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		id:           shared.NewID(),
		email:        strings.ToLower(strings.TrimSpace(email)),
		name:         strings.TrimSpace(name),
		status:       StatusActive,
		passwordHash: passwordHash,
		createdAt:    now,
		updatedAt:    now,
	}
}

// Reconstruct recreates a User from persistence.
func Reconstruct(
	id shared.ID,
	email, name, avatarURL, phone string,
	status Status,
	preferences Preferences,
	passwordHash string,
	lastLoginAt *time.Time,
	createdAt, updatedAt time.Time,
) *User {
	return &User{
		id:           id,
		email:        email,
		name:         name,
		avatarURL:    avatarURL,
		phone:        phone,
		status:       status,
		preferences:  preferences,
		passwordHash: passwordHash,
		lastLoginAt:  lastLoginAt,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// ID returns the user ID.
func (u *User) ID() shared.ID { return u.id }

// Email returns the normalized email address.
func (u *User) Email() string { return u.email }

// Name returns the display name.
func (u *User) Name() string { return u.name }

// AvatarURL returns the avatar location.
func (u *User) AvatarURL() string { return u.avatarURL }

// Phone returns the phone number.
func (u *User) Phone() string { return u.phone }

// Status returns the account status.
func (u *User) Status() Status { return u.status }

// Preferences returns the user settings.
func (u *User) Preferences() Preferences { return u.preferences }

// PasswordHash returns the bcrypt hash for local authentication.
func (u *User) PasswordHash() string { return u.passwordHash }

// LastLoginAt returns the last successful login, if any.
func (u *User) LastLoginAt() *time.Time { return u.lastLoginAt }

// CreatedAt returns when the account was created.
func (u *User) CreatedAt() time.Time { return u.createdAt }

// UpdatedAt returns the last modification time.
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool { return u.status == StatusActive }

// UpdateProfile replaces the profile fields.
func (u *User) UpdateProfile(name, avatarURL, phone string) {
	u.name = strings.TrimSpace(name)
	u.avatarURL = strings.TrimSpace(avatarURL)
	u.phone = strings.TrimSpace(phone)
	u.touch()
}

// UpdatePreferences replaces the settings bag.
func (u *User) UpdatePreferences(prefs Preferences) {
	u.preferences = prefs
	u.touch()
}

// SetPasswordHash replaces the stored credential hash.
func (u *User) SetPasswordHash(hash string) {
	u.passwordHash = hash
	u.touch()
}

// Suspend blocks the account.
func (u *User) Suspend() {
	u.status = StatusSuspended
	u.touch()
}

// Activate restores a suspended or inactive account.
func (u *User) Activate() {
	u.status = StatusActive
	u.touch()
}

// Deactivate marks the account inactive.
func (u *User) Deactivate() {
	u.status = StatusInactive
	u.touch()
}

// RecordLogin stores a successful login time.
func (u *User) RecordLogin(at time.Time) {
	t := at
	u.lastLoginAt = &t
	u.touch()
}

func (u *User) touch() {
	u.updatedAt = time.Now().UTC()
}
