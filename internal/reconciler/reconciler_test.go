package reconciler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/parabank-conformance/internal/config"
	"github.com/parabank-conformance/internal/domain/account"
	"github.com/parabank-conformance/internal/domain/shared"
	"github.com/parabank-conformance/internal/fake_ledger"
	"github.com/parabank-conformance/internal/ledger_client"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLedgerClient struct {
	mock.Mock
}

func (m *MockLedgerClient) GetAccount(ctx context.Context, accountID string) (account.Account, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(account.Account), args.Error(1)
}

func (m *MockLedgerClient) Deposit(ctx context.Context, accountID string, amount decimal.Decimal) error {
	return m.Called(ctx, accountID, amount).Error(0)
}

func (m *MockLedgerClient) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) error {
	return m.Called(ctx, accountID, amount).Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decimalArg(expected string) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(dec(expected))
	})
}

func accountWithBalance(balance string) account.Account {
	return account.Account{ID: "14898", CustomerID: "13655", Type: account.TypeChecking, Balance: dec(balance)}
}

func TestReconciler_Reconcile(t *testing.T) {
	testCases := []struct {
		name           string
		balance        string
		target         string
		setupMock      func(*MockLedgerClient)
		expectedAction Action
		expectedDelta  string
	}{
		{
			name:    "BelowTargetDeposits",
			balance: "515.50",
			target:  "1000",
			setupMock: func(m *MockLedgerClient) {
				m.On("Deposit", mock.Anything, "14898", decimalArg("484.50")).Return(nil).Once()
			},
			expectedAction: ActionDeposit,
			expectedDelta:  "484.50",
		},
		{
			name:    "AboveTargetWithdraws",
			balance: "1200.25",
			target:  "1000",
			setupMock: func(m *MockLedgerClient) {
				m.On("Withdraw", mock.Anything, "14898", decimalArg("200.25")).Return(nil).Once()
			},
			expectedAction: ActionWithdraw,
			expectedDelta:  "-200.25",
		},
		{
			name:           "AtTargetDoesNothing",
			balance:        "1000.00",
			target:         "1000",
			setupMock:      func(m *MockLedgerClient) {},
			expectedAction: ActionNone,
			expectedDelta:  "0",
		},
		{
			name:           "WithinToleranceDoesNothing",
			balance:        "999.9995",
			target:         "1000",
			setupMock:      func(m *MockLedgerClient) {},
			expectedAction: ActionNone,
			expectedDelta:  "0.0005",
		},
		{
			name:           "ExactlyToleranceDoesNothing",
			balance:        "1000.001",
			target:         "1000",
			setupMock:      func(m *MockLedgerClient) {},
			expectedAction: ActionNone,
			expectedDelta:  "-0.001",
		},
		{
			name:    "NegativeBalanceDeposits",
			balance: "-500",
			target:  "1000",
			setupMock: func(m *MockLedgerClient) {
				m.On("Deposit", mock.Anything, "14898", decimalArg("1500")).Return(nil).Once()
			},
			expectedAction: ActionDeposit,
			expectedDelta:  "1500",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := new(MockLedgerClient)
			client.On("GetAccount", mock.Anything, "14898").Return(accountWithBalance(tc.balance), nil).Once()
			tc.setupMock(client)

			r := New(client, DefaultTolerance(), discardLogger())
			result, err := r.Reconcile(context.Background(), "14898", dec(tc.target))

			require.NoError(t, err)
			assert.Equal(t, tc.expectedAction, result.Action)
			assert.True(t, dec(tc.expectedDelta).Equal(result.Delta), "delta %s", result.Delta)
			assert.True(t, dec(tc.balance).Equal(result.Before))
			assert.True(t, dec(tc.target).Equal(result.Target))
			client.AssertExpectations(t)
			// Exactly one read, never a read-back
			client.AssertNumberOfCalls(t, "GetAccount", 1)
		})
	}
}

func TestReconciler_ErrorsPropagate(t *testing.T) {
	t.Run("ReadFailure", func(t *testing.T) {
		client := new(MockLedgerClient)
		client.On("GetAccount", mock.Anything, "14898").
			Return(account.Account{}, shared.NotFoundError{Resource: "account", ID: "14898", StatusCode: 400})

		_, err := New(client, DefaultTolerance(), discardLogger()).Reconcile(context.Background(), "14898", dec("1000"))

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.NotFoundError{Resource: "account", ID: "14898"})
		client.AssertNotCalled(t, "Deposit", mock.Anything, mock.Anything, mock.Anything)
		client.AssertNotCalled(t, "Withdraw", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("MutationFailureIsNotRetried", func(t *testing.T) {
		transportErr := errors.New("connection reset")
		client := new(MockLedgerClient)
		client.On("GetAccount", mock.Anything, "14898").Return(accountWithBalance("100"), nil)
		client.On("Deposit", mock.Anything, "14898", decimalArg("900")).
			Return(shared.LedgerUnavailableError{Operation: "deposit", Err: transportErr})

		result, err := New(client, DefaultTolerance(), discardLogger()).Reconcile(context.Background(), "14898", dec("1000"))

		require.Error(t, err)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, shared.LedgerUnavailableError{Operation: "deposit"})
		assert.ErrorIs(t, err, transportErr)
		client.AssertNumberOfCalls(t, "Deposit", 1)
	})
}

func TestNew_DefaultsTolerance(t *testing.T) {
	r := New(new(MockLedgerClient), decimal.Zero, discardLogger())
	assert.True(t, DefaultTolerance().Equal(r.Tolerance()))
	assert.True(t, dec("0.001").Equal(DefaultTolerance()))

	r = New(new(MockLedgerClient), dec("0.5"), discardLogger())
	assert.True(t, dec("0.5").Equal(r.Tolerance()))
}

// Against the fake ledger: reconcile, read back, reconcile again
func TestReconciler_IdempotentAgainstFakeLedger(t *testing.T) {
	ts, err := fake_ledger.NewTestServer(discardLogger(), config.FakeLedgerConfig{
		AllowOverdraft: true,
		SeedCustomerID: "13655",
		SeedAccountIDs: []string{"14898"},
		SeedBalance:    dec("515.50"),
	})
	require.NoError(t, err)
	defer ts.Close()

	client := ledger_client.NewClient(&config.LedgerConfig{BaseURL: ts.BaseURL(), Timeout: 5 * time.Second}, discardLogger())
	r := New(client, DefaultTolerance(), discardLogger())
	ctx := context.Background()

	for _, target := range []string{"1000", "250.75", "0"} {
		first, err := r.Reconcile(ctx, "14898", dec(target))
		require.NoError(t, err)
		assert.NotEqual(t, ActionNone, first.Action, "target %s", target)

		acc, err := client.GetAccount(ctx, "14898")
		require.NoError(t, err)
		assert.True(t, acc.Balance.Sub(dec(target)).Abs().LessThanOrEqual(DefaultTolerance()), "balance %s, target %s", acc.Balance, target)

		second, err := r.Reconcile(ctx, "14898", dec(target))
		require.NoError(t, err)
		assert.Equal(t, ActionNone, second.Action, "second reconcile must not mutate")
	}

	txs, err := client.GetTransactions(ctx, "14898")
	require.NoError(t, err)
	assert.Len(t, txs, 4, "opening credit plus one mutation per target")
}
