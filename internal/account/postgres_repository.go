package account

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guildboard/guildboard/internal/database"
)

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations.
const uniqueViolation = "23505"

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL account repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) q(ctx context.Context) database.Querier {
	return database.QuerierFrom(ctx, r.pool)
}

const accountColumns = `
	id, email, username, password_hash, two_factor_secret,
	role, status, email_verified, created_at, updated_at
`

// GetByID retrieves an account by ID.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanAccount(ctx, query, id)
}

// GetByEmail retrieves an account by its unique email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.scanAccount(ctx, query, email)
}

// GetByUsername retrieves an account by its unique username.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`
	return r.scanAccount(ctx, query, username)
}

func (r *PostgresRepository) scanAccount(ctx context.Context, query string, arg any) (*Account, error) {
	var acct Account
	err := r.q(ctx).QueryRow(ctx, query, arg).Scan(
		&acct.ID,
		&acct.Email,
		&acct.Username,
		&acct.PasswordHash,
		&acct.TwoFactorSecret,
		&acct.Role,
		&acct.Status,
		&acct.EmailVerified,
		&acct.CreatedAt,
		&acct.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &acct, nil
}

// Create creates a new account.
func (r *PostgresRepository) Create(ctx context.Context, acct *Account) error {
	query := `
		INSERT INTO accounts (
			id, email, username, password_hash, two_factor_secret,
			role, status, email_verified, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.q(ctx).Exec(ctx, query,
		acct.ID,
		acct.Email,
		acct.Username,
		acct.PasswordHash,
		acct.TwoFactorSecret,
		acct.Role,
		acct.Status,
		acct.EmailVerified,
		acct.CreatedAt,
		acct.UpdatedAt,
	)
	return translateUniqueViolation(err)
}

// Update replaces an existing account's mutable fields.
func (r *PostgresRepository) Update(ctx context.Context, acct *Account) error {
	query := `
		UPDATE accounts
		SET email = $2, username = $3, password_hash = $4,
			two_factor_secret = $5, role = $6, status = $7,
			email_verified = $8, updated_at = $9
		WHERE id = $1
	`
	tag, err := r.q(ctx).Exec(ctx, query,
		acct.ID,
		acct.Email,
		acct.Username,
		acct.PasswordHash,
		acct.TwoFactorSecret,
		acct.Role,
		acct.Status,
		acct.EmailVerified,
		acct.UpdatedAt,
	)
	if err != nil {
		return translateUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete physically removes the account row.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.q(ctx).Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListOAuthLinks returns the account's identity-provider links.
func (r *PostgresRepository) ListOAuthLinks(ctx context.Context, userID string) ([]*OAuthLink, error) {
	query := `
		SELECT id, user_id, provider, provider_user_id, created_at
		FROM oauth_links
		WHERE user_id = $1
		ORDER BY created_at
	`
	rows, err := r.q(ctx).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*OAuthLink
	for rows.Next() {
		var link OAuthLink
		if err := rows.Scan(
			&link.ID,
			&link.UserID,
			&link.Provider,
			&link.ProviderUserID,
			&link.CreatedAt,
		); err != nil {
			return nil, err
		}
		links = append(links, &link)
	}
	return links, rows.Err()
}

// AddOAuthLink attaches an identity-provider link to an account.
func (r *PostgresRepository) AddOAuthLink(ctx context.Context, link *OAuthLink) error {
	query := `
		INSERT INTO oauth_links (id, user_id, provider, provider_user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.q(ctx).Exec(ctx, query,
		link.ID, link.UserID, link.Provider, link.ProviderUserID, link.CreatedAt,
	)
	return err
}

// DeleteOAuthLinks removes all identity-provider links for a user.
func (r *PostgresRepository) DeleteOAuthLinks(ctx context.Context, userID string) error {
	_, err := r.q(ctx).Exec(ctx, `DELETE FROM oauth_links WHERE user_id = $1`, userID)
	return err
}

// translateUniqueViolation maps a unique-constraint violation to the
// repository's conflict errors, leaving other errors untouched.
func translateUniqueViolation(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch {
		case strings.Contains(pgErr.ConstraintName, "email"):
			return ErrEmailTaken
		case strings.Contains(pgErr.ConstraintName, "username"):
			return ErrUsernameTaken
		}
	}
	return err
}
