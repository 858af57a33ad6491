package service

import (
	"context"

	"github.com/parabank-conformance/internal/domain/account"
	"github.com/parabank-conformance/internal/domain/customer"
	"github.com/parabank-conformance/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// LedgerService defines the operations the fake ledger serves over HTTP
type LedgerService interface {
	// GetAccount returns shared.NotFoundError if the account doesn't exist
	GetAccount(ctx context.Context, accountID string) (account.Account, error)

	// GetAccountsByCustomer returns shared.NotFoundError if the customer doesn't exist
	GetAccountsByCustomer(ctx context.Context, customerID string) ([]account.Account, error)

	// GetTransactions returns the account's transactions, oldest first
	GetTransactions(ctx context.Context, accountID string) ([]transaction.Transaction, error)

	GetCustomer(ctx context.Context, customerID string) (customer.Customer, error)

	// Deposit credits a positive amount
	Deposit(ctx context.Context, accountID string, amount decimal.Decimal) error

	// Withdraw debits a positive amount, returning InsufficientFundsError when
	// overdraft is disabled and the balance does not cover it
	Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) error
}
