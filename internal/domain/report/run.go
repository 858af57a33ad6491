package report

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/parabank-conformance/internal/domain/account"
	"github.com/parabank-conformance/internal/domain/shared"
	"github.com/parabank-conformance/internal/domain/transaction"
)

// Status is the outcome of a scenario run
type Status string

const (
	StatusPassed Status = "PASSED"
	// StatusFailed means the system under test broke an invariant
	StatusFailed Status = "FAILED"
	// StatusError means the harness or the transport broke
	StatusError Status = "ERROR"
)

// CheckResult is the outcome of a single invariant check
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// Run records one execution of a scenario
type Run struct {
	ID          uuid.UUID     `json:"id"`
	Scenario    string        `json:"scenario"`
	Resource    string        `json:"resource"`
	Status      Status        `json:"status"`
	KnownUnsafe bool          `json:"known_unsafe,omitempty"` // observed behavior is accepted but unsafe
	Checks      []CheckResult `json:"checks"`
	Error       string        `json:"error,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  time.Time     `json:"finished_at"`
}

// NewRun starts a run for the given scenario and resource
func NewRun(scenario, resource string) *Run {
	return &Run{
		ID:        uuid.New(),
		Scenario:  scenario,
		Resource:  resource,
		StartedAt: time.Now().UTC(),
	}
}

// Finish stamps the run with its checks and final status
func (r *Run) Finish(checks []CheckResult, err error) {
	r.Checks = checks
	r.Status = StatusFor(err)
	if err != nil {
		r.Error = err.Error()
	}
	r.FinishedAt = time.Now().UTC()
}

// Duration is the wall time of the run
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// FailedChecks lists the names of checks that did not pass
func (r *Run) FailedChecks() []string {
	var failed []string
	for _, c := range r.Checks {
		if !c.Passed {
			failed = append(failed, c.Name)
		}
	}
	return failed
}

// StatusFor classifies a scenario error
func StatusFor(err error) Status {
	switch {
	case err == nil:
		return StatusPassed
	case errors.Is(err, shared.InvariantViolationError{}):
		return StatusFailed
	default:
		return StatusError
	}
}

// Snapshot captures ledger state for one account at one stage of a run
type Snapshot struct {
	RunID        uuid.UUID                 `json:"run_id"`
	Scenario     string                    `json:"scenario"`
	Stage        string                    `json:"stage"`
	AccountID    string                    `json:"account_id"`
	Account      *account.Account          `json:"account,omitempty"`
	Transactions []transaction.Transaction `json:"transactions,omitempty"`
	CapturedAt   time.Time                 `json:"captured_at"`
}

// Summary aggregates a batch of runs
type Summary struct {
	Total       int `json:"total"`
	Passed      int `json:"passed"`
	Failed      int `json:"failed"`
	Errored     int `json:"errored"`
	KnownUnsafe int `json:"known_unsafe"`
}

// Summarize counts runs by status
func Summarize(runs []*Run) Summary {
	var s Summary
	for _, r := range runs {
		s.Total++
		switch r.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		default:
			s.Errored++
		}
		if r.KnownUnsafe {
			s.KnownUnsafe++
		}
	}
	return s
}

// OK reports whether every run passed
func (s Summary) OK() bool {
	return s.Failed == 0 && s.Errored == 0
}
