package audit

import (
	"context"
	"errors"
)

// Recorder errors.
var (
	// ErrInvalidEntry is returned when an entry is missing its actor,
	// action or target. Whether the recorded action was legitimate is
	// validated by the caller before recording, not here.
	ErrInvalidEntry = errors.New("audit entry missing required fields")
)

// Recorder defines the append-only interface for the audit log.
// Implementations must never expose update or delete operations.
type Recorder interface {
	// Record appends an entry. Implementations participate in a
	// caller-owned transaction when one is on the context.
	Record(ctx context.Context, entry *Entry) error

	// ListByTarget returns entries for a target, newest first.
	ListByTarget(ctx context.Context, targetType, targetID string) ([]*Entry, error)

	// ListByActor returns entries recorded for an actor, newest first.
	ListByActor(ctx context.Context, actorID string) ([]*Entry, error)
}

// validate checks the required fields shared by all implementations.
func validate(entry *Entry) error {
	if entry.ActorID == "" || entry.Action == "" || entry.TargetType == "" || entry.TargetID == "" {
		return ErrInvalidEntry
	}
	return nil
}
