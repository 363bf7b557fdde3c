package domain

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusRunning          RunStatus = "running"
	RunStatusOK               RunStatus = "ok"
	RunStatusSuccessNoChanges RunStatus = "success_no_changes"
	RunStatusError            RunStatus = "error"
)

// IsTerminal reports whether the status seals a run.
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusOK, RunStatusSuccessNoChanges, RunStatusError:
		return true
	}
	return false
}

// NormalizationRun is one invocation of the pipeline over a backlog batch.
type NormalizationRun struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     RunStatus
	Processed  int
	Errors     int
}

// NewNormalizationRun returns an unsealed run with a fresh id.
func NewNormalizationRun(now time.Time) NormalizationRun {
	return NormalizationRun{
		RunID:     uuid.New(),
		StartedAt: now,
		Status:    RunStatusRunning,
	}
}

// SealStatus picks the terminal status for a pass that finished without error.
func SealStatus(processed int) RunStatus {
	if processed == 0 {
		return RunStatusSuccessNoChanges
	}
	return RunStatusOK
}

// RunSummary is what the orchestrator returns once a run is sealed.
type RunSummary struct {
	Run      NormalizationRun `json:"-"`
	RunID    string           `json:"run_id"`
	Status   RunStatus        `json:"status"`
	Coverage Coverage         `json:"coverage"`
}
