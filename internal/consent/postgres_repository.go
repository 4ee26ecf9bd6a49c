package consent

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guildboard/guildboard/internal/database"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL consent repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) q(ctx context.Context) database.Querier {
	return database.QuerierFrom(ctx, r.pool)
}

// GetAllForUser returns the stored consent rows for a user.
func (r *PostgresRepository) GetAllForUser(ctx context.Context, userID string) ([]*Consent, error) {
	query := `
		SELECT user_id, category, status, policy_version,
			granted_at, withdrawn_at, created_at, updated_at
		FROM consents
		WHERE user_id = $1
	`
	rows, err := r.q(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var consents []*Consent
	for rows.Next() {
		var c Consent
		if err := rows.Scan(
			&c.UserID,
			&c.Category,
			&c.Status,
			&c.PolicyVersion,
			&c.GrantedAt,
			&c.WithdrawnAt,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		consents = append(consents, &c)
	}
	return consents, rows.Err()
}

// Upsert creates or replaces the current row for (user, category).
// The primary key on (user_id, category) guarantees a single current
// row per pair.
func (r *PostgresRepository) Upsert(ctx context.Context, c *Consent) error {
	query := `
		INSERT INTO consents (
			user_id, category, status, policy_version,
			granted_at, withdrawn_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, category)
		DO UPDATE SET
			status = EXCLUDED.status,
			policy_version = EXCLUDED.policy_version,
			granted_at = EXCLUDED.granted_at,
			withdrawn_at = EXCLUDED.withdrawn_at,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.q(ctx).Exec(ctx, query,
		c.UserID,
		c.Category,
		c.Status,
		c.PolicyVersion,
		c.GrantedAt,
		c.WithdrawnAt,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

// AppendLog appends an immutable log entry.
func (r *PostgresRepository) AppendLog(ctx context.Context, entry *LogEntry) error {
	query := `
		INSERT INTO consent_log (
			id, user_id, category, status, policy_version,
			ip_address, user_agent, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.q(ctx).Exec(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Category,
		entry.Status,
		entry.PolicyVersion,
		entry.IPAddress,
		entry.UserAgent,
		entry.CreatedAt,
	)
	return err
}

// ListLogForUser returns the user's consent history, newest first.
func (r *PostgresRepository) ListLogForUser(ctx context.Context, userID string) ([]*LogEntry, error) {
	query := `
		SELECT id, user_id, category, status, policy_version,
			ip_address, user_agent, created_at
		FROM consent_log
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.q(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.Category,
			&e.Status,
			&e.PolicyVersion,
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

// DeleteAllForUser removes the user's current consent rows; the log is
// untouched.
func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) error {
	_, err := r.q(ctx).Exec(ctx, `DELETE FROM consents WHERE user_id = $1`, userID)
	return err
}

// PurgeLogForUser removes the user's consent log.
func (r *PostgresRepository) PurgeLogForUser(ctx context.Context, userID string) error {
	_, err := r.q(ctx).Exec(ctx, `DELETE FROM consent_log WHERE user_id = $1`, userID)
	return err
}
