package audit

import (
	"context"
	"sync"
)

// InMemoryRecorder is an in-memory implementation of Recorder, used in
// tests.
type InMemoryRecorder struct {
	mu      sync.RWMutex
	entries []*Entry
}

// NewInMemoryRecorder creates a new in-memory audit recorder.
func NewInMemoryRecorder() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Record appends an entry.
func (r *InMemoryRecorder) Record(_ context.Context, entry *Entry) error {
	if err := validate(entry); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *entry
	r.entries = append(r.entries, &cp)
	return nil
}

// ListByTarget returns entries for a target, newest first.
func (r *InMemoryRecorder) ListByTarget(_ context.Context, targetType, targetID string) ([]*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Entry
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.TargetType == targetType && e.TargetID == targetID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ListByActor returns entries recorded for an actor, newest first.
func (r *InMemoryRecorder) ListByActor(_ context.Context, actorID string) ([]*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Entry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].ActorID == actorID {
			cp := *r.entries[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}
