package port

import "context"

// SessionPort is one database session: a single connection with an open
// transaction. Every port it hands out is bound to that transaction.
type SessionPort interface {
	Backlog() RawBacklogPort
	Storage() NormalizedStoragePort
	Runs() RunTrackerPort
	Documents() DocumentLookupPort
	Skips() SkipLedgerPort

	Savepoint(ctx context.Context, name string) error
	RollbackToSavepoint(ctx context.Context, name string) error

	// Commit and Rollback end the transaction and release the connection.
	// Rollback after Commit is a no-op.
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// SessionProviderPort opens sessions.
type SessionProviderPort interface {
	Begin(ctx context.Context) (SessionPort, error)
}
