package invariant

import (
	"testing"

	"github.com/parabank-conformance/internal/domain/account"
	"github.com/parabank-conformance/internal/domain/transaction"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func acct(id, customerID string, t account.Type, balance string) account.Account {
	return account.Account{ID: id, CustomerID: customerID, Type: t, Balance: dec(balance)}
}

func tx(t transaction.Type, amount string) transaction.Transaction {
	return transaction.Transaction{ID: "1", AccountID: "14898", Type: t, Amount: dec(amount)}
}

func TestWithinTolerance(t *testing.T) {
	assert.True(t, WithinTolerance(dec("1125.00"), dec("1125.009"), AmountTolerance()))
	assert.True(t, WithinTolerance(dec("1125.01"), dec("1125"), AmountTolerance()))
	assert.False(t, WithinTolerance(dec("1125.02"), dec("1125"), AmountTolerance()))
	assert.True(t, WithinTolerance(dec("-3"), dec("-3.0005"), ReconcileTolerance()))
	assert.False(t, WithinTolerance(dec("0"), dec("0.0011"), ReconcileTolerance()))
}

func TestAllPositiveBalance(t *testing.T) {
	testCases := []struct {
		name     string
		accounts []account.Account
		expected bool
	}{
		{"Empty", nil, true},
		{"AllPositive", []account.Account{acct("1", "c", account.TypeChecking, "0.01"), acct("2", "c", account.TypeSavings, "10")}, true},
		{"ZeroIsNotPositive", []account.Account{acct("1", "c", account.TypeChecking, "0")}, false},
		{"OneNegative", []account.Account{acct("1", "c", account.TypeChecking, "10"), acct("2", "c", account.TypeSavings, "-0.01")}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, AllPositiveBalance(tc.accounts))
		})
	}
}

func TestAllOwnedBy(t *testing.T) {
	accounts := []account.Account{acct("1", "13655", account.TypeChecking, "1"), acct("2", "13655", account.TypeSavings, "1")}
	assert.True(t, AllOwnedBy(accounts, "13655"))
	assert.False(t, AllOwnedBy(accounts, "13656"))
	assert.False(t, AllOwnedBy(append(accounts, acct("3", "99", account.TypeChecking, "1")), "13655"))
	assert.True(t, AllOwnedBy(nil, "13655"))
}

func TestAllValidType(t *testing.T) {
	accounts := []account.Account{acct("1", "c", account.TypeChecking, "1"), acct("2", "c", account.TypeCredit, "1")}
	assert.True(t, AllValidType(accounts, account.NewTypeSet(account.TypeChecking, account.TypeSavings, account.TypeCredit)))
	assert.False(t, AllValidType(accounts, account.NewTypeSet(account.TypeChecking, account.TypeSavings)))
	assert.True(t, AllValidType(nil, account.NewTypeSet()))
}

func TestAnyOfType(t *testing.T) {
	accounts := []account.Account{acct("1", "c", account.TypeSavings, "1"), acct("2", "c", account.TypeChecking, "1")}
	assert.True(t, AnyOfType(accounts, account.TypeChecking))
	assert.False(t, AnyOfType(accounts, account.TypeCredit))
	assert.False(t, AnyOfType(nil, account.TypeChecking))
}

func TestLatestTransactionMatches(t *testing.T) {
	history := []transaction.Transaction{tx(transaction.TypeDebit, "50"), tx(transaction.TypeCredit, "125")}

	assert.True(t, LatestTransactionMatches(history, transaction.TypeCredit, dec("125"), AmountTolerance()))
	assert.True(t, LatestTransactionMatches(history, transaction.TypeCredit, dec("125.005"), AmountTolerance()))
	assert.False(t, LatestTransactionMatches(history, transaction.TypeDebit, dec("125"), AmountTolerance()), "type must match")
	assert.False(t, LatestTransactionMatches(history, transaction.TypeCredit, dec("124"), AmountTolerance()), "amount must match")
	assert.False(t, LatestTransactionMatches(history, transaction.TypeDebit, dec("50"), AmountTolerance()), "only the latest counts")
	assert.False(t, LatestTransactionMatches(nil, transaction.TypeCredit, dec("125"), AmountTolerance()), "empty history")
}

func TestBalanceDelta(t *testing.T) {
	assert.True(t, BalanceDelta(dec("1000"), dec("1125.00"), dec("125"), AmountTolerance()))
	assert.True(t, BalanceDelta(dec("1125"), dec("1075"), dec("-50"), AmountTolerance()))
	assert.False(t, BalanceDelta(dec("1125"), dec("1075"), dec("50"), AmountTolerance()), "sign matters")
	assert.False(t, BalanceDelta(dec("1000"), dec("1000"), dec("125"), AmountTolerance()))
	assert.True(t, BalanceDelta(dec("515.50"), dec("-500.00"), dec("-1015.50"), AmountTolerance()))
}

func TestTolerances(t *testing.T) {
	assert.True(t, dec("0.01").Equal(AmountTolerance()))
	assert.True(t, dec("0.001").Equal(ReconcileTolerance()))

	// Callers get their own copy; nothing they do with it moves the contract
	widened := AmountTolerance().Mul(dec("100"))
	assert.True(t, dec("1").Equal(widened))
	assert.True(t, dec("0.01").Equal(AmountTolerance()))
}
