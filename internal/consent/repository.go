package consent

import (
	"context"
	"errors"
)

// Ledger errors.
var (
	// ErrUnknownCategory is returned for a category outside the fixed
	// enumeration.
	ErrUnknownCategory = errors.New("unknown consent category")
)

// Repository defines the interface for consent persistence.
type Repository interface {
	// GetAllForUser returns the stored consent rows for a user. Rows
	// may be missing for categories the user never touched; the
	// service synthesizes defaults.
	GetAllForUser(ctx context.Context, userID string) ([]*Consent, error)

	// Upsert creates or replaces the single current row for the
	// consent's (user, category) pair.
	Upsert(ctx context.Context, c *Consent) error

	// AppendLog appends an immutable log entry. Log entries are never
	// updated or deleted, including by anonymization.
	AppendLog(ctx context.Context, entry *LogEntry) error

	// ListLogForUser returns the user's consent history, newest first.
	ListLogForUser(ctx context.Context, userID string) ([]*LogEntry, error)

	// DeleteAllForUser removes the user's current consent rows. Used
	// by anonymization; the log is retained as legal evidence.
	DeleteAllForUser(ctx context.Context, userID string) error

	// PurgeLogForUser removes the user's consent log. Used only by the
	// hard-delete purge, which removes everything the user ever touched.
	PurgeLogForUser(ctx context.Context, userID string) error
}
