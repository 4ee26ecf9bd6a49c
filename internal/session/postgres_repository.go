package session

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guildboard/guildboard/internal/database"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL session repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) q(ctx context.Context) database.Querier {
	return database.QuerierFrom(ctx, r.pool)
}

// Create stores a new session.
func (r *PostgresRepository) Create(ctx context.Context, sess *Session) error {
	query := `
		INSERT INTO sessions (id, user_id, token, ip_address, user_agent, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.q(ctx).Exec(ctx, query,
		sess.ID,
		sess.UserID,
		sess.Token,
		sess.IPAddress,
		sess.UserAgent,
		sess.CreatedAt,
		sess.ExpiresAt,
	)
	return err
}

// GetByToken retrieves a session by its token.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*Session, error) {
	query := `
		SELECT id, user_id, token, ip_address, user_agent, created_at, expires_at
		FROM sessions
		WHERE token = $1 AND expires_at > NOW()
	`
	var sess Session
	err := r.q(ctx).QueryRow(ctx, query, token).Scan(
		&sess.ID,
		&sess.UserID,
		&sess.Token,
		&sess.IPAddress,
		&sess.UserAgent,
		&sess.CreatedAt,
		&sess.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &sess, nil
}

// ListByUser returns all live sessions for a user.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*Session, error) {
	query := `
		SELECT id, user_id, token, ip_address, user_agent, created_at, expires_at
		FROM sessions
		WHERE user_id = $1 AND expires_at > NOW()
		ORDER BY created_at DESC
	`
	rows, err := r.q(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(
			&sess.ID,
			&sess.UserID,
			&sess.Token,
			&sess.IPAddress,
			&sess.UserAgent,
			&sess.CreatedAt,
			&sess.ExpiresAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, &sess)
	}
	return sessions, rows.Err()
}

// DeleteAllForUser removes every session for a user. Joins the
// caller's transaction when one is on the context, so a suspension and
// its session revocation commit together.
func (r *PostgresRepository) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	tag, err := r.q(ctx).Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
