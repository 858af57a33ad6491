package report

import (
	"time"

	"github.com/google/uuid"
)

// RunEvent is the message form of a finished run
type RunEvent struct {
	RunID        uuid.UUID     `json:"run_id"`
	Scenario     string        `json:"scenario"`
	Resource     string        `json:"resource"`
	Status       Status        `json:"status"`
	KnownUnsafe  bool          `json:"known_unsafe"`
	Checks       []CheckResult `json:"checks"`
	FailedChecks []string      `json:"failed_checks,omitempty"`
	Error        string        `json:"error,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
	DurationMS   int64         `json:"duration_ms"`
}

// NewRunEvent flattens a run into its published form
func NewRunEvent(run *Run) RunEvent {
	return RunEvent{
		RunID:        run.ID,
		Scenario:     run.Scenario,
		Resource:     run.Resource,
		Status:       run.Status,
		KnownUnsafe:  run.KnownUnsafe,
		Checks:       run.Checks,
		FailedChecks: run.FailedChecks(),
		Error:        run.Error,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
		DurationMS:   run.Duration().Milliseconds(),
	}
}

// Run rebuilds the run carried by the event
func (e RunEvent) Run() *Run {
	return &Run{
		ID:          e.RunID,
		Scenario:    e.Scenario,
		Resource:    e.Resource,
		Status:      e.Status,
		KnownUnsafe: e.KnownUnsafe,
		Checks:      e.Checks,
		Error:       e.Error,
		StartedAt:   e.StartedAt,
		FinishedAt:  e.FinishedAt,
	}
}

// Validate reports whether the event carries enough to be stored
func (e RunEvent) Validate() error {
	switch {
	case e.RunID == uuid.Nil:
		return ErrInvalidEvent{Reason: "missing run_id"}
	case e.Scenario == "":
		return ErrInvalidEvent{Reason: "missing scenario"}
	case e.Status != StatusPassed && e.Status != StatusFailed && e.Status != StatusError:
		return ErrInvalidEvent{Reason: "unknown status " + string(e.Status)}
	}
	return nil
}

// ErrInvalidEvent indicates a run event that cannot be turned into a run
type ErrInvalidEvent struct {
	Reason string
}

func (e ErrInvalidEvent) Error() string {
	return "invalid run event: " + e.Reason
}

// Is implements the errors.Is interface for ErrInvalidEvent
func (e ErrInvalidEvent) Is(target error) bool {
	_, ok := target.(ErrInvalidEvent)
	return ok
}
