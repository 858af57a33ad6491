package shared

import (
	"fmt"
	"strings"
)

// NotFoundError indicates the ledger answered but did not return the requested entity
type NotFoundError struct {
	Resource   string
	ID         string
	StatusCode int
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s (status %d)", e.Resource, e.ID, e.StatusCode)
}

// Is implements the errors.Is interface for NotFoundError
func (e NotFoundError) Is(target error) bool {
	t, ok := target.(NotFoundError)
	if !ok {
		return false
	}
	// An empty target matches any NotFoundError
	if t.Resource == "" && t.ID == "" {
		return true
	}
	return e.Resource == t.Resource && e.ID == t.ID
}

// MalformedResponseError indicates the response decoded but a required node or field is missing
type MalformedResponseError struct {
	Resource string
	Reason   string
}

func (e MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: %s", e.Resource, e.Reason)
}

// Is implements the errors.Is interface for MalformedResponseError
func (e MalformedResponseError) Is(target error) bool {
	t, ok := target.(MalformedResponseError)
	if !ok {
		return false
	}
	if t.Resource == "" {
		return true
	}
	return e.Resource == t.Resource
}

// LedgerUnavailableError indicates a transport failure or a server-side error status
type LedgerUnavailableError struct {
	Operation  string
	StatusCode int // zero when the request never got a response
	Err        error
}

func (e LedgerUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ledger unavailable during %s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("ledger unavailable during %s: status %d", e.Operation, e.StatusCode)
}

func (e LedgerUnavailableError) Unwrap() error {
	return e.Err
}

// Is implements the errors.Is interface for LedgerUnavailableError
func (e LedgerUnavailableError) Is(target error) bool {
	t, ok := target.(LedgerUnavailableError)
	if !ok {
		return false
	}
	if t.Operation == "" {
		return true
	}
	return e.Operation == t.Operation
}

// InvariantViolationError reports that the system under test broke one or more checks.
// It never indicates a harness defect.
type InvariantViolationError struct {
	Scenario string
	Failed   []string
}

func (e InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Scenario, strings.Join(e.Failed, "; "))
}

// Is implements the errors.Is interface for InvariantViolationError
func (e InvariantViolationError) Is(target error) bool {
	t, ok := target.(InvariantViolationError)
	if !ok {
		return false
	}
	if t.Scenario == "" {
		return true
	}
	return e.Scenario == t.Scenario
}
