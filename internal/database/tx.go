package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx operations shared by *pgxpool.Pool and
// pgx.Tx. Repositories execute against a Querier so the same code path
// serves both pooled and transactional calls.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxManager runs a function inside a single transaction. Services own
// their transaction boundaries and pass the returned context down to
// repositories, which pick up the transaction via QuerierFrom.
type TxManager interface {
	// WithinTx executes fn inside one transaction. If fn returns an
	// error the transaction is rolled back; otherwise it is committed.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// txKey is the context key for an in-flight transaction.
type txKey struct{}

// PgxTxManager is a TxManager backed by a pgx connection pool.
type PgxTxManager struct {
	pool *pgxpool.Pool
}

// NewPgxTxManager creates a transaction manager for the given pool.
func NewPgxTxManager(pool *pgxpool.Pool) *PgxTxManager {
	return &PgxTxManager{pool: pool}
}

// WithinTx executes fn inside one transaction. Nested calls join the
// transaction already on the context instead of opening a second one.
func (m *PgxTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// QuerierFrom returns the transaction on the context if one is in
// flight, falling back to the given pool.
func QuerierFrom(ctx context.Context, pool *pgxpool.Pool) Querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}

// NoopTxManager is a TxManager without transactional semantics, used
// with the in-memory repositories in tests.
type NoopTxManager struct{}

// WithinTx calls fn directly.
func (NoopTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
