// Package store provides the thin database access layer shared by the
// generator, the simulator and the migrator's relational side: small
// interfaces over pooled Postgres access plus SQL building helpers.
package store

import "context"

// Querier defines the statement execution operations handlers need.
// It is satisfied by both a pooled connection source and an open
// transaction, so handlers never know which one they run on.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	Exec(ctx context.Context, query string, args ...any) (Result, error)
}

// Rows defines the interface for query result rows.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

// Row defines the interface for single-row results.
type Row interface {
	Scan(dest ...any) error
}

// Result defines the interface for execution results.
type Result interface {
	RowsAffected() (int64, error)
}

// Tx is an open transaction. Begin opens a nested transaction
// (a savepoint on Postgres), which the bulk generator uses to keep
// one failed row from poisoning the whole batch.
type Tx interface {
	Querier
	Begin(ctx context.Context) (Tx, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DB is a pooled connection source that can open transactions.
type DB interface {
	Querier
	Begin(ctx context.Context) (Tx, error)
	Ping(ctx context.Context) error
	Close()
}
