package report

import (
	"context"

	"github.com/google/uuid"
)

// RunRepository persists finished scenario runs with their check results
type RunRepository interface {
	Save(ctx context.Context, run *Run) error
	GetByID(ctx context.Context, id uuid.UUID) (*Run, error)
	ListByResource(ctx context.Context, resource string, limit int) ([]*Run, error)
}

// SnapshotRepository stores ledger snapshots taken while a scenario runs
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot *Snapshot) error
	GetByRunID(ctx context.Context, runID uuid.UUID) ([]*Snapshot, error)
}

// ErrRunNotFound indicates a missing scenario run
type ErrRunNotFound struct {
	RunID uuid.UUID
}

func (e ErrRunNotFound) Error() string {
	return "scenario run not found: " + e.RunID.String()
}

// Is implements the errors.Is interface for ErrRunNotFound
func (e ErrRunNotFound) Is(target error) bool {
	t, ok := target.(ErrRunNotFound)
	if !ok {
		return false
	}
	if t.RunID == uuid.Nil {
		return true
	}
	return e.RunID == t.RunID
}
