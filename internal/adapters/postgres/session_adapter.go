package postgres

import (
	"auction-normalizer-service/internal/contextkeys"
	"auction-normalizer-service/internal/core/port"
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionConfig carries the adapter settings every session shares.
type SessionConfig struct {
	Backlog BacklogConfig
	Storage StorageConfig
}

// SessionProvider opens one transaction on one dedicated pool connection per session.
type SessionProvider struct {
	pool *pgxpool.Pool
	cfg  SessionConfig
}

func NewSessionProvider(pool *pgxpool.Pool, cfg SessionConfig) (*SessionProvider, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &SessionProvider{pool: pool, cfg: cfg}, nil
}

func (p *SessionProvider) Begin(ctx context.Context) (port.SessionPort, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "SessionProvider",
		"method":    "Begin",
	})

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		logger.Error("Failed to acquire connection", err, nil)
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		conn.Release()
		logger.Error("Failed to begin transaction", err, nil)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	logger.Debug("Session opened", nil)
	return newSession(conn, tx, p.cfg), nil
}

type session struct {
	conn *pgxpool.Conn
	tx   pgx.Tx
	done bool

	backlog   *RawBacklogAdapter
	storage   *NormalizedStorageAdapter
	runs      *RunTrackerAdapter
	documents *DocumentLookupAdapter
	skips     *SkipLedgerAdapter
}

func newSession(conn *pgxpool.Conn, tx pgx.Tx, cfg SessionConfig) *session {
	return &session{
		conn:      conn,
		tx:        tx,
		backlog:   NewRawBacklogAdapter(tx, cfg.Backlog),
		storage:   NewNormalizedStorageAdapter(tx, cfg.Storage),
		runs:      NewRunTrackerAdapter(tx),
		documents: NewDocumentLookupAdapter(tx),
		skips:     NewSkipLedgerAdapter(tx),
	}
}

func (s *session) Backlog() port.RawBacklogPort        { return s.backlog }
func (s *session) Storage() port.NormalizedStoragePort { return s.storage }
func (s *session) Runs() port.RunTrackerPort           { return s.runs }
func (s *session) Documents() port.DocumentLookupPort  { return s.documents }
func (s *session) Skips() port.SkipLedgerPort          { return s.skips }

var savepointName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func (s *session) Savepoint(ctx context.Context, name string) error {
	if !savepointName.MatchString(name) {
		return fmt.Errorf("invalid savepoint name %q", name)
	}
	if _, err := s.tx.Exec(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to create savepoint %s: %w", name, err)
	}
	return nil
}

func (s *session) RollbackToSavepoint(ctx context.Context, name string) error {
	if !savepointName.MatchString(name) {
		return fmt.Errorf("invalid savepoint name %q", name)
	}
	if _, err := s.tx.Exec(ctx, "ROLLBACK TO SAVEPOINT "+name); err != nil {
		return fmt.Errorf("failed to roll back to savepoint %s: %w", name, err)
	}
	return nil
}

func (s *session) Commit(ctx context.Context) error {
	if s.done {
		return fmt.Errorf("session already closed")
	}
	s.done = true
	defer s.conn.Release()

	if err := s.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *session) Rollback(ctx context.Context) error {
	if s.done {
		return nil
	}
	s.done = true
	defer s.conn.Release()

	if err := s.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}
