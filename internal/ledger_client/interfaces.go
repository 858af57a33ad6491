package ledger_client

import (
	"context"

	"github.com/parabank-conformance/internal/domain/account"
	"github.com/parabank-conformance/internal/domain/customer"
	"github.com/parabank-conformance/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// AccountReader reads account state from the ledger
type AccountReader interface {
	// GetAccount returns the account with the given id
	// Returns shared.NotFoundError when the ledger rejects the id
	GetAccount(ctx context.Context, accountID string) (account.Account, error)
}

// AccountMutator applies balance changes. Neither call returns the new balance,
// callers re-read the account to observe the effect.
type AccountMutator interface {
	Deposit(ctx context.Context, accountID string, amount decimal.Decimal) error
	Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) error
}

// Ledger is the full set of operations the harness drives against a ledger
type Ledger interface {
	AccountReader
	AccountMutator

	// GetAccountsByCustomer returns every account owned by the customer, possibly none
	GetAccountsByCustomer(ctx context.Context, customerID string) ([]account.Account, error)

	// GetTransactions returns the account's transactions in ledger order
	GetTransactions(ctx context.Context, accountID string) ([]transaction.Transaction, error)

	// GetCustomer returns the customer profile
	GetCustomer(ctx context.Context, customerID string) (customer.Customer, error)
}

var _ Ledger = (*Client)(nil)
