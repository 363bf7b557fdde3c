package port

import (
	"auction-normalizer-service/internal/core/domain"
	"context"
	"time"
)

// PipelineMetricsPort collects pipeline counters for one process lifetime.
type PipelineMetricsPort interface {
	RecordOutcome(outcome domain.UpsertOutcome)
	RecordSkip(reason string)
	RecordTransition(transition domain.Transition)
	RecordRun(summary *domain.RunSummary, duration time.Duration)
	// Push ships the collected values. Implementations without a sink return nil.
	Push(ctx context.Context) error
}
