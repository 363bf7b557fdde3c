package port

import (
	"auction-normalizer-service/internal/core/domain"
	"context"
)

// SkipLedgerPort remembers records a lenient pass gave up on, so the backlog
// stops offering them until their content or the schema version changes.
type SkipLedgerPort interface {
	RecordSkip(ctx context.Context, skip domain.SkippedRecord) error
}
