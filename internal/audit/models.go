// Package audit provides the append-only administrative action log.
//
// Entries are written by the account lifecycle and the compliance
// pipeline, inside the same transaction as the change they describe.
// They are never updated or deleted; the log is the sole source of
// truth for who did what to whom and why.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action tags the kind of administrative action an entry records.
type Action string

// Known audit actions.
const (
	ActionEmailVerified     Action = "email_verified"
	ActionRoleChanged       Action = "role_changed"
	ActionUserSuspended     Action = "user_suspended"
	ActionUserBanned        Action = "user_banned"
	ActionUserSoftDeleted   Action = "user_soft_deleted"
	ActionUserHardDeleted   Action = "user_hard_deleted"
	ActionDeletionRequested Action = "deletion_requested"
	ActionDeletionProcessed Action = "deletion_request_processed"
)

// TargetUser is the target type for actions against an account.
const TargetUser = "user"

// TargetDeletionRequest is the target type for actions against a
// deletion request.
const TargetDeletionRequest = "deletion_request"

// Meta carries optional request metadata attached to an entry for
// legal evidence.
type Meta struct {
	IPAddress string
	UserAgent string
}

// Entry is an immutable record of an administrative action.
type Entry struct {
	// ID is the unique entry identifier (format: aud_XXXX).
	ID string

	// ActorID identifies who performed the action.
	ActorID string

	// Action tags what was done.
	Action Action

	// TargetType and TargetID identify what the action was applied to.
	TargetType string
	TargetID   string

	// Changes is an optional before/after snapshot of the fields the
	// action touched. Stored as JSONB.
	Changes map[string]any

	// Reason is the actor's free-text justification, if any.
	Reason string

	// IPAddress and UserAgent describe the originating request, if
	// known.
	IPAddress string
	UserAgent string

	// CreatedAt is when the action happened.
	CreatedAt time.Time
}

// NewEntry returns an entry with a fresh ID and timestamp.
func NewEntry(actorID string, action Action, targetType, targetID string) *Entry {
	return &Entry{
		ID:         "aud_" + uuid.New().String()[:22],
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		CreatedAt:  time.Now(),
	}
}

// WithMeta attaches request metadata to the entry.
func (e *Entry) WithMeta(meta Meta) *Entry {
	e.IPAddress = meta.IPAddress
	e.UserAgent = meta.UserAgent
	return e
}
