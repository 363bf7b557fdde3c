package usecase

import (
	"auction-normalizer-service/internal/contextkeys"
	"auction-normalizer-service/internal/core/domain"
	"auction-normalizer-service/internal/core/port"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const startSavepoint = "after_start"

// Skip reasons reported to metrics.
const (
	skipParseFailed       = "parse_failed"
	skipMissingCoreFields = "missing_core_fields"
	skipContractViolation = "contract_violation"
)

// NormalizeBacklogConfig holds the per-deployment knobs of a pass.
type NormalizeBacklogConfig struct {
	Policy            domain.SelectionPolicy
	Limit             int
	ConflictKey       domain.ConflictKeyStrategy
	SchemaVersion     int
	RequireCoreFields bool
	// StrictMode counts per-record failures as run errors instead of skips.
	// Strict failures are not written to the skip ledger, so every pass
	// retries them.
	StrictMode bool
}

type NormalizeBacklogUseCase struct {
	sessions  port.SessionProviderPort
	parser    port.RecordParserPort
	validator port.ContractValidatorPort
	documents port.DocumentTextPort
	metrics   port.PipelineMetricsPort
	reporter  port.RunReporterPort
	cfg       NormalizeBacklogConfig
	now       func() time.Time
}

// NewNormalizeBacklogUseCase wires the pass. documents, metrics and reporter
// are optional; nil disables the price fallback, metrics and run reports.
func NewNormalizeBacklogUseCase(
	sessions port.SessionProviderPort,
	parser port.RecordParserPort,
	validator port.ContractValidatorPort,
	documents port.DocumentTextPort,
	metrics port.PipelineMetricsPort,
	reporter port.RunReporterPort,
	cfg NormalizeBacklogConfig,
) (*NormalizeBacklogUseCase, error) {
	if sessions == nil || parser == nil || validator == nil {
		return nil, fmt.Errorf("normalize backlog: sessions, parser and validator are required")
	}
	if cfg.Limit <= 0 {
		return nil, fmt.Errorf("normalize backlog: limit must be positive, got %d", cfg.Limit)
	}
	if cfg.ConflictKey == "" {
		cfg.ConflictKey = domain.ConflictByIdentifier
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if reporter == nil {
		reporter = noopReporter{}
	}
	return &NormalizeBacklogUseCase{
		sessions:  sessions,
		parser:    parser,
		validator: validator,
		documents: documents,
		metrics:   metrics,
		reporter:  reporter,
		cfg:       cfg,
		now:       time.Now,
	}, nil
}

// Execute runs one pass over the backlog inside a single transaction and seals
// the run. On failure the returned summary carries the error status.
func (uc *NormalizeBacklogUseCase) Execute(ctx context.Context) (*domain.RunSummary, error) {
	ctx, ucLogger := contextkeys.WithLoggerFields(ctx, port.Fields{
		"use_case": "NormalizeBacklog",
		"policy":   string(uc.cfg.Policy),
	})

	session, err := uc.sessions.Begin(ctx)
	if err != nil {
		ucLogger.Error("Failed to open database session", err, nil)
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	defer session.Rollback(ctx)

	run := domain.NewNormalizationRun(uc.now())
	ctx, ucLogger = contextkeys.WithLoggerFields(ctx, port.Fields{"run_id": run.RunID.String()})

	if err := session.Runs().Start(ctx, run); err != nil {
		ucLogger.Error("Failed to start run", err, nil)
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	if err := session.Savepoint(ctx, startSavepoint); err != nil {
		ucLogger.Error("Failed to set savepoint", err, nil)
		return nil, fmt.Errorf("failed to set savepoint: %w", err)
	}

	ucLogger.Info("Normalization run started", port.Fields{"limit": uc.cfg.Limit})

	var coverage domain.Coverage
	passErr := uc.normalizePass(ctx, session, run.RunID, &coverage)
	if passErr != nil {
		return uc.fail(ctx, session, run, &coverage, passErr)
	}

	finishedAt := uc.now()
	status := domain.SealStatus(coverage.Processed())
	if err := session.Runs().Seal(ctx, run.RunID, status, finishedAt, coverage.Processed(), coverage.Errors); err != nil {
		ucLogger.Error("Failed to seal run", err, nil)
		return uc.fail(ctx, session, run, &coverage, fmt.Errorf("failed to seal run: %w", err))
	}
	if err := session.Commit(ctx); err != nil {
		ucLogger.Error("Failed to commit run", err, nil)
		return nil, fmt.Errorf("failed to commit run: %w", err)
	}

	run.FinishedAt = &finishedAt
	run.Status = status
	run.Processed = coverage.Processed()
	run.Errors = coverage.Errors
	summary := newSummary(run, coverage)

	ucLogger.Info("Normalization run sealed", port.Fields{
		"status":    string(status),
		"total":     coverage.Total,
		"inserted":  coverage.Inserted,
		"updated":   coverage.Updated,
		"unchanged": coverage.Unchanged,
		"skipped":   coverage.Skipped,
		"errors":    coverage.Errors,
	})

	uc.publish(ctx, summary)
	return summary, nil
}

func (uc *NormalizeBacklogUseCase) normalizePass(ctx context.Context, session port.SessionPort, runID uuid.UUID, coverage *domain.Coverage) error {
	logger := contextkeys.LoggerFromContext(ctx)

	records, err := session.Backlog().SelectPending(ctx, uc.cfg.Policy, uc.cfg.Limit)
	if err != nil {
		return fmt.Errorf("failed to select backlog: %w", err)
	}
	logger.Info("Backlog selected", port.Fields{"candidates": len(records)})

	for _, raw := range records {
		coverage.Total++
		recCtx, _ := contextkeys.WithLoggerFields(ctx, port.Fields{"raw_id": raw.ID})

		if err := uc.normalizeRecord(recCtx, session, runID, raw, coverage); err != nil {
			return fmt.Errorf("raw record %d: %w", raw.ID, err)
		}
	}
	return nil
}

// normalizeRecord returns an error only for failures that must abort the run.
func (uc *NormalizeBacklogUseCase) normalizeRecord(ctx context.Context, session port.SessionPort, runID uuid.UUID, raw domain.RawRecord, coverage *domain.Coverage) error {
	logger := contextkeys.LoggerFromContext(ctx)

	rec, err := uc.parser.Parse(raw)
	if err != nil {
		return uc.reject(ctx, session, runID, raw, coverage, skipParseFailed, err)
	}

	if rec.StartingPrice == nil {
		rec.StartingPrice = uc.priceFromDocument(ctx, session, raw.ID)
	}
	rec.SchemaVersion = uc.cfg.SchemaVersion

	if uc.cfg.RequireCoreFields && !rec.HasCoreFields() {
		coverage.Skipped++
		uc.metrics.RecordSkip(skipMissingCoreFields)
		logger.Debug("Record skipped", port.Fields{"reason": domain.ErrMissingCoreFields.Error()})
		return uc.recordSkip(ctx, session, runID, raw, skipMissingCoreFields)
	}

	rec.ConflictKey = uc.cfg.ConflictKey.Key(rec)
	ctx, logger = contextkeys.WithLoggerFields(ctx, port.Fields{"conflict_key": rec.ConflictKey})

	if err := uc.validator.Validate(rec); err != nil {
		return uc.reject(ctx, session, runID, raw, coverage, skipContractViolation, err)
	}

	prev, err := session.Storage().FindByConflictKey(ctx, rec.ConflictKey)
	if err != nil {
		return fmt.Errorf("failed to load stored record: %w", err)
	}

	confidence := domain.Score(rec)
	transition := domain.ClassifyTransition(prev, rec)
	uc.metrics.RecordTransition(transition)
	switch transition {
	case domain.TransitionDegraded:
		coverage.Degraded++
		logger.Warn("Low confidence record", port.Fields{"signals": confidence.Signals})
	case domain.TransitionRecovered:
		coverage.Recovered++
		logger.Info("Record confidence recovered", port.Fields{"signals": confidence.Signals})
	}

	outcome, err := session.Storage().Upsert(ctx, rec)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}

	coverage.Record(outcome)
	coverage.CountFields(rec)
	uc.metrics.RecordOutcome(outcome)
	logger.Debug("Record written", port.Fields{"outcome": string(outcome), "identifier": rec.Identifier})
	return nil
}

// reject handles a record that cannot be stored. A lenient pass records the
// skip so later passes stop selecting the record; a strict pass leaves it
// pending.
func (uc *NormalizeBacklogUseCase) reject(ctx context.Context, session port.SessionPort, runID uuid.UUID, raw domain.RawRecord, coverage *domain.Coverage, reason string, cause error) error {
	logger := contextkeys.LoggerFromContext(ctx)
	uc.metrics.RecordSkip(reason)

	if uc.cfg.StrictMode {
		coverage.Errors++
		logger.Error("Record rejected", cause, port.Fields{"reason": reason})
		return nil
	}
	coverage.Skipped++
	logger.Warn("Record skipped", port.Fields{"reason": reason, "error": cause.Error()})
	return uc.recordSkip(ctx, session, runID, raw, reason)
}

// recordSkip writes the skip ledger entry. A failed write aborts the run.
func (uc *NormalizeBacklogUseCase) recordSkip(ctx context.Context, session port.SessionPort, runID uuid.UUID, raw domain.RawRecord, reason string) error {
	skip := domain.SkippedRecord{
		RawID:         raw.ID,
		Checksum:      raw.Checksum,
		Reason:        reason,
		SchemaVersion: uc.cfg.SchemaVersion,
		RunID:         runID,
	}
	if err := session.Skips().RecordSkip(ctx, skip); err != nil {
		return fmt.Errorf("failed to record skip: %w", err)
	}
	return nil
}

// priceFromDocument reads the starting price from the latest stored document.
// Every failure leaves the price empty.
func (uc *NormalizeBacklogUseCase) priceFromDocument(ctx context.Context, session port.SessionPort, rawID int64) *string {
	if uc.documents == nil {
		return nil
	}
	logger := contextkeys.LoggerFromContext(ctx)

	path, ok, err := session.Documents().LatestDocumentPath(ctx, rawID)
	if err != nil {
		logger.Warn("Document lookup failed", port.Fields{"error": err.Error()})
		return nil
	}
	if !ok {
		return nil
	}

	text, err := uc.documents.ExtractText(ctx, path)
	if err != nil {
		logger.Warn("Document text extraction failed", port.Fields{"path": path, "error": err.Error()})
		return nil
	}

	price := uc.parser.PriceFromText(text)
	if price != nil {
		logger.Debug("Starting price taken from document", port.Fields{"path": path})
	}
	return price
}

// fail undoes the pass, seals the run as error and commits the seal.
func (uc *NormalizeBacklogUseCase) fail(ctx context.Context, session port.SessionPort, run domain.NormalizationRun, coverage *domain.Coverage, cause error) (*domain.RunSummary, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	logger.Error("Normalization pass failed, rolling back", cause, nil)

	if err := session.RollbackToSavepoint(ctx, startSavepoint); err != nil {
		return nil, errors.Join(cause, fmt.Errorf("failed to roll back to savepoint: %w", err))
	}

	// Nothing written by the pass survives the rollback.
	coverage.Inserted, coverage.Updated, coverage.Unchanged = 0, 0, 0
	coverage.Fields = domain.FieldCoverage{}
	coverage.Errors++

	finishedAt := uc.now()
	if err := session.Runs().Seal(ctx, run.RunID, domain.RunStatusError, finishedAt, 0, coverage.Errors); err != nil {
		return nil, errors.Join(cause, fmt.Errorf("failed to seal run as error: %w", err))
	}
	if err := session.Commit(ctx); err != nil {
		return nil, errors.Join(cause, fmt.Errorf("failed to commit error seal: %w", err))
	}

	run.FinishedAt = &finishedAt
	run.Status = domain.RunStatusError
	run.Errors = coverage.Errors
	summary := newSummary(run, *coverage)

	logger.Warn("Normalization run sealed as error", port.Fields{"errors": coverage.Errors})
	uc.publish(ctx, summary)
	return summary, fmt.Errorf("normalization run %s failed: %w", run.RunID, cause)
}

// publish reports a sealed run. Failures here never change the run outcome.
func (uc *NormalizeBacklogUseCase) publish(ctx context.Context, summary *domain.RunSummary) {
	logger := contextkeys.LoggerFromContext(ctx)

	uc.metrics.RecordRun(summary, summary.Run.FinishedAt.Sub(summary.Run.StartedAt))
	if err := uc.metrics.Push(ctx); err != nil {
		logger.Warn("Failed to push metrics", port.Fields{"error": err.Error()})
	}
	if err := uc.reporter.ReportRun(ctx, summary); err != nil {
		logger.Warn("Failed to report run", port.Fields{"error": err.Error()})
	}
}

func newSummary(run domain.NormalizationRun, coverage domain.Coverage) *domain.RunSummary {
	return &domain.RunSummary{
		Run:      run,
		RunID:    run.RunID.String(),
		Status:   run.Status,
		Coverage: coverage,
	}
}

type noopMetrics struct{}

func (noopMetrics) RecordOutcome(domain.UpsertOutcome)          {}
func (noopMetrics) RecordSkip(string)                           {}
func (noopMetrics) RecordTransition(domain.Transition)          {}
func (noopMetrics) RecordRun(*domain.RunSummary, time.Duration) {}
func (noopMetrics) Push(context.Context) error                  { return nil }

type noopReporter struct{}

func (noopReporter) ReportRun(context.Context, *domain.RunSummary) error { return nil }
