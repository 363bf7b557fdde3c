package port

import (
	"auction-normalizer-service/internal/core/domain"
	"context"
)

type NormalizedStoragePort interface {
	Upsert(ctx context.Context, record *domain.NormalizedAuction) (domain.UpsertOutcome, error)
	// FindByConflictKey returns nil, nil when no row carries the key.
	FindByConflictKey(ctx context.Context, conflictKey string) (*domain.NormalizedAuction, error)
}
