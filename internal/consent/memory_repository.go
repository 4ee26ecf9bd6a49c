package consent

import (
	"context"
	"sync"
)

type consentKey struct {
	userID   string
	category Category
}

// InMemoryRepository is an in-memory implementation of Repository,
// used in tests.
type InMemoryRepository struct {
	mu       sync.RWMutex
	consents map[consentKey]*Consent
	log      []*LogEntry
}

// NewInMemoryRepository creates a new in-memory consent repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		consents: make(map[consentKey]*Consent),
	}
}

// GetAllForUser returns the stored consent rows for a user.
func (r *InMemoryRepository) GetAllForUser(_ context.Context, userID string) ([]*Consent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Consent
	for key, c := range r.consents {
		if key.userID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Upsert creates or replaces the current row for (user, category).
func (r *InMemoryRepository) Upsert(_ context.Context, c *Consent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *c
	r.consents[consentKey{c.UserID, c.Category}] = &cp
	return nil
}

// AppendLog appends an immutable log entry.
func (r *InMemoryRepository) AppendLog(_ context.Context, entry *LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *entry
	r.log = append(r.log, &cp)
	return nil
}

// ListLogForUser returns the user's consent history, newest first.
func (r *InMemoryRepository) ListLogForUser(_ context.Context, userID string) ([]*LogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*LogEntry
	for i := len(r.log) - 1; i >= 0; i-- {
		if r.log[i].UserID == userID {
			cp := *r.log[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

// DeleteAllForUser removes the user's current consent rows.
func (r *InMemoryRepository) DeleteAllForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key := range r.consents {
		if key.userID == userID {
			delete(r.consents, key)
		}
	}
	return nil
}

// PurgeLogForUser removes the user's consent log.
func (r *InMemoryRepository) PurgeLogForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.log[:0]
	for _, entry := range r.log {
		if entry.UserID != userID {
			kept = append(kept, entry)
		}
	}
	r.log = kept
	return nil
}
