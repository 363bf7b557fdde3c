package usecases_port

import (
	"auction-normalizer-service/internal/core/domain"
	"context"
)

type NormalizeBacklogPort interface {
	Execute(ctx context.Context) (*domain.RunSummary, error)
}
