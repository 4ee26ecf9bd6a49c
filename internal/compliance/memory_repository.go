package compliance

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository,
// used in tests.
type InMemoryRepository struct {
	mu        sync.RWMutex
	deletions map[string]*DeletionRequest
	exports   map[string]*ExportRequest
	snapshots map[string]*Snapshot
}

// NewInMemoryRepository creates a new in-memory compliance repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		deletions: make(map[string]*DeletionRequest),
		exports:   make(map[string]*ExportRequest),
		snapshots: make(map[string]*Snapshot),
	}
}

// CreateDeletionRequest stores a new request, enforcing the
// at-most-one-pending rule the Postgres partial unique index enforces.
func (r *InMemoryRepository) CreateDeletionRequest(_ context.Context, req *DeletionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.deletions {
		if existing.UserID == req.UserID && existing.Status == StatusRequested {
			return ErrDuplicateRequest
		}
	}

	cp := *req
	r.deletions[req.ID] = &cp
	return nil
}

// GetDeletionRequest retrieves a request by ID.
func (r *InMemoryRepository) GetDeletionRequest(_ context.Context, id string) (*DeletionRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.deletions[id]
	if !ok {
		return nil, ErrRequestNotFound
	}
	cp := *req
	return &cp, nil
}

// GetPendingForUser returns the user's requested-state request.
func (r *InMemoryRepository) GetPendingForUser(_ context.Context, userID string) (*DeletionRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, req := range r.deletions {
		if req.UserID == userID && req.Status == StatusRequested {
			cp := *req
			return &cp, nil
		}
	}
	return nil, ErrRequestNotFound
}

// UpdateDeletionRequest replaces a request's mutable fields.
func (r *InMemoryRepository) UpdateDeletionRequest(_ context.Context, req *DeletionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.deletions[req.ID]; !ok {
		return ErrRequestNotFound
	}
	cp := *req
	r.deletions[req.ID] = &cp
	return nil
}

// ListDeletionRequests returns a user's requests, newest first.
func (r *InMemoryRepository) ListDeletionRequests(_ context.Context, userID string) ([]*DeletionRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*DeletionRequest
	for _, req := range r.deletions {
		if req.UserID == userID {
			cp := *req
			out = append(out, &cp)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].RequestedAt.After(out[i].RequestedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

// DeleteRequestsForUser removes all of a user's deletion requests.
func (r *InMemoryRepository) DeleteRequestsForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, req := range r.deletions {
		if req.UserID == userID {
			delete(r.deletions, id)
		}
	}
	return nil
}

// CreateExportRequest stores a new export job.
func (r *InMemoryRepository) CreateExportRequest(_ context.Context, req *ExportRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *req
	r.exports[req.ID] = &cp
	return nil
}

// GetExportRequest retrieves an export job by ID.
func (r *InMemoryRepository) GetExportRequest(_ context.Context, id string) (*ExportRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.exports[id]
	if !ok {
		return nil, ErrRequestNotFound
	}
	cp := *req
	return &cp, nil
}

// UpdateExportRequest replaces an export job's mutable fields.
func (r *InMemoryRepository) UpdateExportRequest(_ context.Context, req *ExportRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.exports[req.ID]; !ok {
		return ErrRequestNotFound
	}
	cp := *req
	r.exports[req.ID] = &cp
	return nil
}

// ListExportRequests returns a user's export jobs, newest first.
func (r *InMemoryRepository) ListExportRequests(_ context.Context, userID string) ([]*ExportRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*ExportRequest
	for _, req := range r.exports {
		if req.UserID == userID {
			cp := *req
			out = append(out, &cp)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

// SaveSnapshot persists a completed snapshot for an export job.
func (r *InMemoryRepository) SaveSnapshot(_ context.Context, requestID string, snap *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshots[requestID] = snap
	return nil
}

// GetSnapshot retrieves the snapshot for a ready export job.
func (r *InMemoryRepository) GetSnapshot(_ context.Context, requestID string) (*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap, ok := r.snapshots[requestID]
	if !ok {
		return nil, ErrRequestNotFound
	}
	return snap, nil
}
