package compliance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guildboard/guildboard/internal/database"
)

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations. The deletion_requests table carries a partial unique
// index on (user_id) WHERE status = 'requested'.
const uniqueViolation = "23505"

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL compliance repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) q(ctx context.Context) database.Querier {
	return database.QuerierFrom(ctx, r.pool)
}

const deletionColumns = `
	id, user_id, status, reason, processor_id, notes,
	requested_at, processed_at, completed_at, cancelled_at, updated_at
`

// CreateDeletionRequest stores a new request. A unique-violation on
// the pending index is the authoritative duplicate signal, regardless
// of what an earlier read said.
func (r *PostgresRepository) CreateDeletionRequest(ctx context.Context, req *DeletionRequest) error {
	query := `
		INSERT INTO deletion_requests (` + deletionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.q(ctx).Exec(ctx, query,
		req.ID, req.UserID, req.Status, req.Reason, req.ProcessorID, req.Notes,
		req.RequestedAt, req.ProcessedAt, req.CompletedAt, req.CancelledAt, req.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateRequest
	}
	return err
}

// GetDeletionRequest retrieves a request by ID.
func (r *PostgresRepository) GetDeletionRequest(ctx context.Context, id string) (*DeletionRequest, error) {
	query := `SELECT ` + deletionColumns + ` FROM deletion_requests WHERE id = $1`
	return r.scanDeletion(r.q(ctx).QueryRow(ctx, query, id))
}

// GetPendingForUser returns the user's requested-state request.
func (r *PostgresRepository) GetPendingForUser(ctx context.Context, userID string) (*DeletionRequest, error) {
	query := `
		SELECT ` + deletionColumns + `
		FROM deletion_requests
		WHERE user_id = $1 AND status = 'requested'
	`
	return r.scanDeletion(r.q(ctx).QueryRow(ctx, query, userID))
}

func (r *PostgresRepository) scanDeletion(row pgx.Row) (*DeletionRequest, error) {
	var req DeletionRequest
	err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.Status,
		&req.Reason,
		&req.ProcessorID,
		&req.Notes,
		&req.RequestedAt,
		&req.ProcessedAt,
		&req.CompletedAt,
		&req.CancelledAt,
		&req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// UpdateDeletionRequest replaces a request's mutable fields.
func (r *PostgresRepository) UpdateDeletionRequest(ctx context.Context, req *DeletionRequest) error {
	query := `
		UPDATE deletion_requests
		SET status = $2, processor_id = $3, notes = $4,
			processed_at = $5, completed_at = $6, cancelled_at = $7, updated_at = $8
		WHERE id = $1
	`
	tag, err := r.q(ctx).Exec(ctx, query,
		req.ID, req.Status, req.ProcessorID, req.Notes,
		req.ProcessedAt, req.CompletedAt, req.CancelledAt, req.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// ListDeletionRequests returns a user's requests, newest first.
func (r *PostgresRepository) ListDeletionRequests(ctx context.Context, userID string) ([]*DeletionRequest, error) {
	query := `
		SELECT ` + deletionColumns + `
		FROM deletion_requests
		WHERE user_id = $1
		ORDER BY requested_at DESC
	`
	rows, err := r.q(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*DeletionRequest
	for rows.Next() {
		req, err := r.scanDeletion(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// DeleteRequestsForUser removes all of a user's deletion requests.
func (r *PostgresRepository) DeleteRequestsForUser(ctx context.Context, userID string) error {
	_, err := r.q(ctx).Exec(ctx, `DELETE FROM deletion_requests WHERE user_id = $1`, userID)
	return err
}

// CreateExportRequest stores a new export job.
func (r *PostgresRepository) CreateExportRequest(ctx context.Context, req *ExportRequest) error {
	query := `
		INSERT INTO export_requests (id, user_id, status, failure_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q(ctx).Exec(ctx, query,
		req.ID, req.UserID, req.Status, req.FailureReason, req.CreatedAt, req.UpdatedAt,
	)
	return err
}

// GetExportRequest retrieves an export job by ID.
func (r *PostgresRepository) GetExportRequest(ctx context.Context, id string) (*ExportRequest, error) {
	query := `
		SELECT id, user_id, status, failure_reason, created_at, updated_at
		FROM export_requests WHERE id = $1
	`
	var req ExportRequest
	err := r.q(ctx).QueryRow(ctx, query, id).Scan(
		&req.ID, &req.UserID, &req.Status, &req.FailureReason, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// UpdateExportRequest replaces an export job's mutable fields.
func (r *PostgresRepository) UpdateExportRequest(ctx context.Context, req *ExportRequest) error {
	query := `
		UPDATE export_requests
		SET status = $2, failure_reason = $3, updated_at = $4
		WHERE id = $1
	`
	tag, err := r.q(ctx).Exec(ctx, query, req.ID, req.Status, req.FailureReason, req.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// ListExportRequests returns a user's export jobs, newest first.
func (r *PostgresRepository) ListExportRequests(ctx context.Context, userID string) ([]*ExportRequest, error) {
	query := `
		SELECT id, user_id, status, failure_reason, created_at, updated_at
		FROM export_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.q(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*ExportRequest
	for rows.Next() {
		var req ExportRequest
		if err := rows.Scan(
			&req.ID, &req.UserID, &req.Status, &req.FailureReason, &req.CreatedAt, &req.UpdatedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, &req)
	}
	return requests, rows.Err()
}

// SaveSnapshot persists a completed snapshot for an export job.
func (r *PostgresRepository) SaveSnapshot(ctx context.Context, requestID string, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	query := `
		INSERT INTO export_snapshots (request_id, snapshot, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (request_id) DO UPDATE SET snapshot = EXCLUDED.snapshot
	`
	_, err = r.q(ctx).Exec(ctx, query, requestID, data)
	return err
}

// GetSnapshot retrieves the snapshot for a ready export job.
func (r *PostgresRepository) GetSnapshot(ctx context.Context, requestID string) (*Snapshot, error) {
	var data []byte
	err := r.q(ctx).QueryRow(ctx,
		`SELECT snapshot FROM export_snapshots WHERE request_id = $1`, requestID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
