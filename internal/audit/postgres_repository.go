package audit

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guildboard/guildboard/internal/database"
)

// PostgresRecorder is a PostgreSQL implementation of Recorder. The
// backing table carries no UPDATE or DELETE paths in this codebase;
// appends are the only write.
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

// NewPostgresRecorder creates a new PostgreSQL audit recorder.
func NewPostgresRecorder(pool *pgxpool.Pool) *PostgresRecorder {
	return &PostgresRecorder{pool: pool}
}

func (r *PostgresRecorder) q(ctx context.Context) database.Querier {
	return database.QuerierFrom(ctx, r.pool)
}

// Record appends an entry.
func (r *PostgresRecorder) Record(ctx context.Context, entry *Entry) error {
	if err := validate(entry); err != nil {
		return err
	}

	query := `
		INSERT INTO audit_entries (
			id, actor_id, action, target_type, target_id,
			changes, reason, ip_address, user_agent, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.q(ctx).Exec(ctx, query,
		entry.ID,
		entry.ActorID,
		entry.Action,
		entry.TargetType,
		entry.TargetID,
		entry.Changes,
		entry.Reason,
		entry.IPAddress,
		entry.UserAgent,
		entry.CreatedAt,
	)
	return err
}

// ListByTarget returns entries for a target, newest first.
func (r *PostgresRecorder) ListByTarget(ctx context.Context, targetType, targetID string) ([]*Entry, error) {
	query := `
		SELECT id, actor_id, action, target_type, target_id,
			changes, reason, ip_address, user_agent, created_at
		FROM audit_entries
		WHERE target_type = $1 AND target_id = $2
		ORDER BY created_at DESC
	`
	rows, err := r.q(ctx).Query(ctx, query, targetType, targetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// ListByActor returns entries recorded for an actor, newest first.
func (r *PostgresRecorder) ListByActor(ctx context.Context, actorID string) ([]*Entry, error) {
	query := `
		SELECT id, actor_id, action, target_type, target_id,
			changes, reason, ip_address, user_agent, created_at
		FROM audit_entries
		WHERE actor_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.q(ctx).Query(ctx, query, actorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]*Entry, error) {
	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID,
			&e.ActorID,
			&e.Action,
			&e.TargetType,
			&e.TargetID,
			&e.Changes,
			&e.Reason,
			&e.IPAddress,
			&e.UserAgent,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
