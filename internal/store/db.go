package store

import (
	"context"
	"database/sql"
)

// DBTX is the narrow query surface the engine stores are written against.
// Both *sql.DB and *sql.Tx satisfy it, which is what lets a store's WithTx
// variant share one transaction across the ledger and branch writes while
// plain reads go straight to the pool.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
