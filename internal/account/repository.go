package account

import (
	"context"
	"errors"
)

// Repository errors.
var (
	// ErrNotFound is returned when no account matches the lookup.
	ErrNotFound = errors.New("account not found")

	// ErrEmailTaken is returned when a write collides with another
	// account's email.
	ErrEmailTaken = errors.New("email already taken")

	// ErrUsernameTaken is returned when a write collides with another
	// account's username.
	ErrUsernameTaken = errors.New("username already taken")
)

// Repository defines the interface for account persistence.
//
// Implementations participate in a caller-owned transaction when one is
// on the context (see database.TxManager).
type Repository interface {
	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id string) (*Account, error)

	// GetByEmail retrieves an account by its unique email.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// GetByUsername retrieves an account by its unique username.
	GetByUsername(ctx context.Context, username string) (*Account, error)

	// Create creates a new account.
	Create(ctx context.Context, acct *Account) error

	// Update replaces an existing account's mutable fields. Returns
	// ErrNotFound if the account does not exist and ErrEmailTaken or
	// ErrUsernameTaken on a uniqueness collision.
	Update(ctx context.Context, acct *Account) error

	// Delete physically removes the account row. Used only by the hard
	// delete path; soft deletion is a status change via Update.
	Delete(ctx context.Context, id string) error

	// ListOAuthLinks returns the account's identity-provider links.
	ListOAuthLinks(ctx context.Context, userID string) ([]*OAuthLink, error)

	// AddOAuthLink attaches an identity-provider link to an account.
	AddOAuthLink(ctx context.Context, link *OAuthLink) error

	// DeleteOAuthLinks removes all identity-provider links for a user.
	// Removing zero links is not an error.
	DeleteOAuthLinks(ctx context.Context, userID string) error
}
