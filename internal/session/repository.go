package session

import (
	"context"
	"errors"
)

// Repository errors.
var (
	ErrSessionNotFound = errors.New("session not found")
)

// Repository defines the interface for session persistence.
type Repository interface {
	// Create stores a new session.
	Create(ctx context.Context, sess *Session) error

	// GetByToken retrieves a session by its token.
	GetByToken(ctx context.Context, token string) (*Session, error)

	// ListByUser returns all live sessions for a user.
	ListByUser(ctx context.Context, userID string) ([]*Session, error)

	// DeleteAllForUser removes every session for a user and returns
	// how many were removed. Removing zero sessions is not an error.
	DeleteAllForUser(ctx context.Context, userID string) (int64, error)
}
