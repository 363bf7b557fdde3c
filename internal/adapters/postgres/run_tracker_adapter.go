package postgres

import (
	"auction-normalizer-service/internal/contextkeys"
	"auction-normalizer-service/internal/core/domain"
	"auction-normalizer-service/internal/core/port"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunTrackerAdapter records normalization runs in normalization_runs.
type RunTrackerAdapter struct {
	db DBTX
}

func NewRunTrackerAdapter(db DBTX) *RunTrackerAdapter {
	return &RunTrackerAdapter{db: db}
}

func (a *RunTrackerAdapter) Start(ctx context.Context, run domain.NormalizationRun) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "RunTrackerAdapter",
		"method":    "Start",
		"run_id":    run.RunID.String(),
	})

	_, err := a.db.Exec(ctx, `
		INSERT INTO normalization_runs (run_id, started_at, status, processed, errors)
		VALUES ($1, $2, $3, 0, 0)`,
		run.RunID, run.StartedAt, string(domain.RunStatusRunning),
	)
	if err != nil {
		repoLogger.Error("Failed to record run start", err, nil)
		return fmt.Errorf("failed to record run start: %w", err)
	}
	return nil
}

// Seal writes the terminal state of a run. Only unsealed runs are touched.
func (a *RunTrackerAdapter) Seal(ctx context.Context, runID uuid.UUID, status domain.RunStatus, finishedAt time.Time, processed, errors int) error {
	logger := contextkeys.LoggerFromContext(ctx)
	repoLogger := logger.WithFields(port.Fields{
		"component": "RunTrackerAdapter",
		"method":    "Seal",
		"run_id":    runID.String(),
		"status":    string(status),
	})

	if !status.IsTerminal() {
		return fmt.Errorf("cannot seal run %s with status %q", runID, status)
	}

	tag, err := a.db.Exec(ctx, `
		UPDATE normalization_runs
		SET status = $2, finished_at = $3, processed = $4, errors = $5
		WHERE run_id = $1 AND finished_at IS NULL`,
		runID, string(status), finishedAt, processed, errors,
	)
	if err != nil {
		repoLogger.Error("Failed to seal run", err, nil)
		return fmt.Errorf("failed to seal run %s: %w", runID, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := a.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM normalization_runs WHERE run_id = $1)`, runID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check run %s: %w", runID, err)
	}
	if exists {
		repoLogger.Warn("Run is already sealed", nil)
		return fmt.Errorf("run %s: %w", runID, domain.ErrRunAlreadySealed)
	}
	return fmt.Errorf("run %s: %w", runID, domain.ErrRunNotFound)
}
