package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the query surface shared by pgxpool.Pool, pgxpool.Conn and pgx.Tx.
// Adapters take it so the same code runs inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// nestedTxStarter is a DBTX that can open a savepoint-backed nested transaction.
type nestedTxStarter interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}
