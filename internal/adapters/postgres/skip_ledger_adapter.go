package postgres

import (
	"auction-normalizer-service/internal/contextkeys"
	"auction-normalizer-service/internal/core/domain"
	"auction-normalizer-service/internal/core/port"
	"context"
	"fmt"
)

// SkipLedgerAdapter writes skipped raw records to normalization_skips.
type SkipLedgerAdapter struct {
	db DBTX
}

func NewSkipLedgerAdapter(db DBTX) *SkipLedgerAdapter {
	return &SkipLedgerAdapter{db: db}
}

const recordSkipSQL = `
	INSERT INTO normalization_skips (raw_id, checksum, reason, schema_version, run_id, skipped_at)
	VALUES ($1, NULLIF($2, ''), $3, $4, $5, now())
	ON CONFLICT (raw_id) DO UPDATE SET
		checksum = EXCLUDED.checksum,
		reason = EXCLUDED.reason,
		schema_version = EXCLUDED.schema_version,
		run_id = EXCLUDED.run_id,
		skipped_at = EXCLUDED.skipped_at`

// RecordSkip keeps one row per raw record; a later skip replaces the earlier one.
func (a *SkipLedgerAdapter) RecordSkip(ctx context.Context, skip domain.SkippedRecord) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "SkipLedgerAdapter",
		"method":    "RecordSkip",
		"raw_id":    skip.RawID,
		"reason":    skip.Reason,
	})

	_, err := a.db.Exec(ctx, recordSkipSQL, skip.RawID, skip.Checksum, skip.Reason, skip.SchemaVersion, skip.RunID)
	if err != nil {
		repoLogger.Error("Failed to record skipped raw record", err, nil)
		return fmt.Errorf("failed to record skip of raw record %d: %w", skip.RawID, err)
	}
	return nil
}
