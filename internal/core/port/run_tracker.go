package port

import (
	"auction-normalizer-service/internal/core/domain"
	"context"
	"time"

	"github.com/google/uuid"
)

type RunTrackerPort interface {
	Start(ctx context.Context, run domain.NormalizationRun) error
	// Seal returns domain.ErrRunAlreadySealed on a second call for the same run.
	Seal(ctx context.Context, runID uuid.UUID, status domain.RunStatus, finishedAt time.Time, processed, errors int) error
}
