package compliance

import (
	"context"
	"errors"
)

// Pipeline errors.
var (
	// ErrRequestNotFound is returned when no deletion or export
	// request matches the lookup.
	ErrRequestNotFound = errors.New("request not found")

	// ErrDuplicateRequest is returned when a user already has a
	// pending deletion request. The store-level uniqueness constraint
	// is the source of truth; a violation at write time maps here too.
	ErrDuplicateRequest = errors.New("a pending deletion request already exists")

	// ErrEmailMismatch is returned when the confirmation email does
	// not match the account's current address.
	ErrEmailMismatch = errors.New("confirmation email does not match account")

	// ErrRequestClosed is returned when processing targets a request
	// already in a final state.
	ErrRequestClosed = errors.New("request is already in a final state")

	// ErrMissingProcessor is returned when processing is attempted
	// without an authenticated processor id.
	ErrMissingProcessor = errors.New("processor id is required")

	// ErrProcessingDisabled is returned while the deletion-processing
	// kill switch is on.
	ErrProcessingDisabled = errors.New("deletion processing is disabled")
)

// Repository defines the interface for deletion/export request
// persistence.
type Repository interface {
	// CreateDeletionRequest stores a new request. Returns
	// ErrDuplicateRequest when the user already has a request in the
	// requested state.
	CreateDeletionRequest(ctx context.Context, req *DeletionRequest) error

	// GetDeletionRequest retrieves a request by ID.
	GetDeletionRequest(ctx context.Context, id string) (*DeletionRequest, error)

	// GetPendingForUser returns the user's requested-state request, or
	// ErrRequestNotFound.
	GetPendingForUser(ctx context.Context, userID string) (*DeletionRequest, error)

	// UpdateDeletionRequest replaces a request's mutable fields.
	UpdateDeletionRequest(ctx context.Context, req *DeletionRequest) error

	// ListDeletionRequests returns a user's requests, newest first.
	ListDeletionRequests(ctx context.Context, userID string) ([]*DeletionRequest, error)

	// DeleteRequestsForUser removes all of a user's deletion requests.
	// Used only by the hard-delete purge.
	DeleteRequestsForUser(ctx context.Context, userID string) error

	// CreateExportRequest stores a new export job.
	CreateExportRequest(ctx context.Context, req *ExportRequest) error

	// GetExportRequest retrieves an export job by ID.
	GetExportRequest(ctx context.Context, id string) (*ExportRequest, error)

	// UpdateExportRequest replaces an export job's mutable fields.
	UpdateExportRequest(ctx context.Context, req *ExportRequest) error

	// ListExportRequests returns a user's export jobs, newest first.
	ListExportRequests(ctx context.Context, userID string) ([]*ExportRequest, error)

	// SaveSnapshot persists a completed snapshot for an export job.
	SaveSnapshot(ctx context.Context, requestID string, snap *Snapshot) error

	// GetSnapshot retrieves the snapshot for a ready export job.
	GetSnapshot(ctx context.Context, requestID string) (*Snapshot, error)
}
