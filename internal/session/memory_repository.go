package session

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository,
// used in tests.
type InMemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*Session // keyed by session ID
	byToken  map[string]string   // token -> session ID
}

// NewInMemoryRepository creates a new in-memory session repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		sessions: make(map[string]*Session),
		byToken:  make(map[string]string),
	}
}

// Create stores a new session.
func (r *InMemoryRepository) Create(_ context.Context, sess *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *sess
	r.sessions[sess.ID] = &cp
	r.byToken[sess.Token] = sess.ID
	return nil
}

// GetByToken retrieves a session by its token.
func (r *InMemoryRepository) GetByToken(_ context.Context, token string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byToken[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *sess
	return &cp, nil
}

// ListByUser returns all live sessions for a user.
func (r *InMemoryRepository) ListByUser(_ context.Context, userID string) ([]*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Session
	for _, sess := range r.sessions {
		if sess.UserID == userID {
			cp := *sess
			out = append(out, &cp)
		}
	}
	return out, nil
}

// DeleteAllForUser removes every session for a user.
func (r *InMemoryRepository) DeleteAllForUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for id, sess := range r.sessions {
		if sess.UserID == userID {
			delete(r.byToken, sess.Token)
			delete(r.sessions, id)
			count++
		}
	}
	return count, nil
}
