package invariant

import (
	"fmt"

	"github.com/parabank-conformance/internal/domain/report"
	"github.com/parabank-conformance/internal/domain/shared"
)

// Checker accumulates named check results for one scenario.
// It never stops at the first failure. Not safe for concurrent use.
type Checker struct {
	scenario string
	results  []report.CheckResult
}

// NewChecker creates a Checker for the named scenario
func NewChecker(scenario string) *Checker {
	return &Checker{scenario: scenario}
}

// Check records a predicate outcome and returns ok
func (c *Checker) Check(name string, ok bool, detail string) bool {
	c.results = append(c.results, report.CheckResult{Name: name, Passed: ok, Detail: detail})
	return ok
}

// Checkf is Check with a formatted detail
func (c *Checker) Checkf(name string, ok bool, format string, args ...any) bool {
	return c.Check(name, ok, fmt.Sprintf(format, args...))
}

// Results returns a copy of the recorded checks in order
func (c *Checker) Results() []report.CheckResult {
	out := make([]report.CheckResult, len(c.results))
	copy(out, c.results)
	return out
}

// Err returns an InvariantViolationError naming every failed check, or nil
func (c *Checker) Err() error {
	var failed []string
	for _, r := range c.results {
		if !r.Passed {
			failed = append(failed, r.Name)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return shared.InvariantViolationError{Scenario: c.scenario, Failed: failed}
}
