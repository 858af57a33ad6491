package invariant

import (
	"errors"
	"testing"

	"github.com/parabank-conformance/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecker_AllPass(t *testing.T) {
	c := NewChecker("deposit")
	assert.True(t, c.Check("balance_delta", true, ""))
	assert.True(t, c.Checkf("latest_transaction", true, "amount %s", "125"))

	assert.NoError(t, c.Err())
	results := c.Results()
	require.Len(t, results, 2)
	assert.Equal(t, "latest_transaction", results[1].Name)
	assert.Equal(t, "amount 125", results[1].Detail)
}

func TestChecker_RecordsEveryFailure(t *testing.T) {
	c := NewChecker("withdraw")
	assert.False(t, c.Check("balance_delta", false, "expected -50"))
	assert.True(t, c.Check("owned_by_customer", true, ""))
	assert.False(t, c.Check("latest_transaction", false, "empty history"))

	err := c.Err()
	require.Error(t, err)

	var violation shared.InvariantViolationError
	require.True(t, errors.As(err, &violation))
	assert.Equal(t, "withdraw", violation.Scenario)
	assert.Equal(t, []string{"balance_delta", "latest_transaction"}, violation.Failed)
	assert.Len(t, c.Results(), 3)
}

func TestChecker_ResultsIsACopy(t *testing.T) {
	c := NewChecker("x")
	c.Check("a", true, "")
	results := c.Results()
	results[0].Passed = false

	assert.True(t, c.Results()[0].Passed)
	assert.NoError(t, c.Err())
}
