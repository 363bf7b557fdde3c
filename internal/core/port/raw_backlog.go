package port

import (
	"auction-normalizer-service/internal/core/domain"
	"context"
)

// RawBacklogPort reads raw records that still need normalization.
type RawBacklogPort interface {
	// SelectPending returns up to limit records in ascending id order.
	SelectPending(ctx context.Context, policy domain.SelectionPolicy, limit int) ([]domain.RawRecord, error)
}
