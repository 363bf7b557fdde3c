package postgres

import (
	"auction-normalizer-service/internal/contextkeys"
	"auction-normalizer-service/internal/core/port"
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DocumentLookupAdapter resolves the stored PDF attached to a raw record.
type DocumentLookupAdapter struct {
	db DBTX
}

func NewDocumentLookupAdapter(db DBTX) *DocumentLookupAdapter {
	return &DocumentLookupAdapter{db: db}
}

const latestDocumentSQL = `
	SELECT file_path
	FROM boe_subastas_pdfs
	WHERE raw_id = $1
	ORDER BY fetched_at DESC
	LIMIT 1`

// LatestDocumentPath returns the newest document path for rawID.
// Inside a transaction the query runs in a nested one, so a failed lookup
// does not abort the surrounding pass.
func (a *DocumentLookupAdapter) LatestDocumentPath(ctx context.Context, rawID int64) (string, bool, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "DocumentLookupAdapter",
		"method":    "LatestDocumentPath",
		"raw_id":    rawID,
	})

	db := a.db
	var nested pgx.Tx
	if starter, ok := a.db.(nestedTxStarter); ok {
		tx, err := starter.Begin(ctx)
		if err != nil {
			return "", false, fmt.Errorf("failed to open document lookup savepoint: %w", err)
		}
		nested = tx
		db = tx
	}

	var path string
	err := db.QueryRow(ctx, latestDocumentSQL, rawID).Scan(&path)

	if nested != nil {
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			_ = nested.Rollback(ctx)
		} else if cerr := nested.Commit(ctx); cerr != nil {
			return "", false, fmt.Errorf("failed to release document lookup savepoint: %w", cerr)
		}
	}

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return "", false, nil
	case err != nil:
		repoLogger.Warn("Document lookup failed", port.Fields{"error": err.Error()})
		return "", false, fmt.Errorf("failed to look up document for raw %d: %w", rawID, err)
	}
	return path, true, nil
}
