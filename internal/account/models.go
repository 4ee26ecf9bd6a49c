// Package account provides the Account entity and the guarded
// lifecycle state machine administrators use to act on it.
//
// # PII Considerations
//
// This package stores the identity fields the platform needs to run a
// community/jobs site: email, username, password hash and an optional
// two-factor secret. All of these are scrubbed by the compliance
// pipeline's anonymization (see internal/compliance); authored content
// is retained but points at the neutralized account.
package account

import (
	"time"

	"github.com/google/uuid"
)

// Role is an account's privilege level.
type Role string

// Known roles. Admin accounts are shielded from ordinary moderation
// actions (see Lifecycle).
const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is a member of the known role set.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// Status is an account's lifecycle state.
type Status string

// Lifecycle states. New accounts start active; banned and deleted are
// terminal for soft transitions. Hard deletion removes the row itself.
const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusBanned    Status = "banned"
	StatusDeleted   Status = "deleted"
)

// Account represents a user account.
//
// Accounts are mutated only through the Lifecycle service or the
// compliance pipeline; nothing else writes status, role or the
// verification flag.
type Account struct {
	// ID is the unique account identifier (format: usr_XXXX).
	ID string

	// Email is the account's unique email address.
	Email string

	// Username is the account's unique handle.
	Username string

	// PasswordHash is the stored credential hash. Cleared by
	// anonymization.
	PasswordHash string

	// TwoFactorSecret is the TOTP secret, empty when 2FA is off.
	// Cleared by anonymization.
	TwoFactorSecret string

	// Role is the account's privilege level.
	Role Role

	// Status is the account's lifecycle state.
	Status Status

	// EmailVerified reports whether the email address was confirmed.
	EmailVerified bool

	// CreatedAt is when the account was created.
	CreatedAt time.Time

	// UpdatedAt is when the account was last updated.
	UpdatedAt time.Time
}

// OAuthLink ties an account to an external identity provider.
// Removed in full by anonymization and hard deletion.
type OAuthLink struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	CreatedAt      time.Time
}

// touch refreshes the account's update timestamp.
func touch(a *Account) {
	a.UpdatedAt = time.Now()
}

// NewID returns a fresh account identifier.
func NewID() string {
	return "usr_" + uuid.New().String()[:22]
}

// NewAccount returns an active, unverified account with the default
// role.
func NewAccount(email, username string) *Account {
	now := time.Now()
	return &Account{
		ID:            NewID(),
		Email:         email,
		Username:      username,
		Role:          RoleUser,
		Status:        StatusActive,
		EmailVerified: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
