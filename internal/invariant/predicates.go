// Package invariant holds the pure predicates a ledger must satisfy and a
// Checker that records each predicate outcome by name.
package invariant

import (
	"github.com/parabank-conformance/internal/domain/account"
	"github.com/parabank-conformance/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// AmountTolerance bounds post-mutation balance arithmetic (0.01)
func AmountTolerance() decimal.Decimal {
	return decimal.New(1, -2)
}

// ReconcileTolerance bounds reconciliation convergence (0.001)
func ReconcileTolerance() decimal.Decimal {
	return decimal.New(1, -3)
}

// WithinTolerance reports |a - b| <= tolerance
func WithinTolerance(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

// AllPositiveBalance reports whether every account has a balance strictly above zero.
// It is vacuously true for no accounts.
func AllPositiveBalance(accounts []account.Account) bool {
	for _, a := range accounts {
		if !a.Balance.IsPositive() {
			return false
		}
	}
	return true
}

// AllOwnedBy reports whether every account belongs to customerID
func AllOwnedBy(accounts []account.Account, customerID string) bool {
	for _, a := range accounts {
		if a.CustomerID != customerID {
			return false
		}
	}
	return true
}

// AllValidType reports whether every account type is in allowed
func AllValidType(accounts []account.Account, allowed account.TypeSet) bool {
	for _, a := range accounts {
		if !allowed.Contains(a.Type) {
			return false
		}
	}
	return true
}

// AnyOfType reports whether at least one account has type t
func AnyOfType(accounts []account.Account, t account.Type) bool {
	for _, a := range accounts {
		if a.Type == t {
			return true
		}
	}
	return false
}

// LatestTransactionMatches reports whether the most recent transaction has the
// expected type and an amount within tolerance. False for an empty history.
func LatestTransactionMatches(txs []transaction.Transaction, expectedType transaction.Type, expectedAmount, tolerance decimal.Decimal) bool {
	latest, ok := transaction.Latest(txs)
	if !ok {
		return false
	}
	return latest.Type == expectedType && WithinTolerance(latest.Amount, expectedAmount, tolerance)
}

// BalanceDelta reports whether after - before equals expectedDelta within tolerance
func BalanceDelta(before, after, expectedDelta, tolerance decimal.Decimal) bool {
	return WithinTolerance(after.Sub(before), expectedDelta, tolerance)
}
