package port

import (
	"auction-normalizer-service/internal/core/domain"
	"context"
)

// RunReporterPort announces a sealed run to other services.
type RunReporterPort interface {
	ReportRun(ctx context.Context, summary *domain.RunSummary) error
}
