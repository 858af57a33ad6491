package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/parabank-conformance/internal/config"
	"github.com/parabank-conformance/internal/domain/account"
	"github.com/parabank-conformance/internal/domain/customer"
	"github.com/parabank-conformance/internal/domain/shared"
	"github.com/parabank-conformance/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

const (
	depositDescription    = "Deposit via Web Service"
	withdrawalDescription = "Withdrawal via Web Service"
	openingDescription    = "Initial Deposit"

	firstTransactionID = 100000
)

// MemoryLedger is an in-memory LedgerService. With overdraft allowed it
// reproduces the reference ledger's acceptance of withdrawals past zero.
type MemoryLedger struct {
	mu             sync.RWMutex
	allowOverdraft bool
	customers      map[string]customer.Customer
	accounts       map[string]account.Account
	accountOrder   []string
	transactions   map[string][]transaction.Transaction
	nextTxID       int64
	now            func() time.Time
	logger         *slog.Logger
}

// NewMemoryLedger creates an empty ledger
func NewMemoryLedger(logger *slog.Logger, allowOverdraft bool) *MemoryLedger {
	return &MemoryLedger{
		allowOverdraft: allowOverdraft,
		customers:      make(map[string]customer.Customer),
		accounts:       make(map[string]account.Account),
		transactions:   make(map[string][]transaction.Transaction),
		nextTxID:       firstTransactionID,
		now:            time.Now,
		logger:         logger,
	}
}

// NewSeededLedger creates a ledger holding the configured customer and accounts.
// The first seeded account is CHECKING, the rest SAVINGS.
func NewSeededLedger(logger *slog.Logger, cfg *config.FakeLedgerConfig) (*MemoryLedger, error) {
	l := NewMemoryLedger(logger, cfg.AllowOverdraft)
	if cfg.SeedCustomerID == "" {
		return l, nil
	}

	if err := l.AddCustomer(customer.Customer{
		ID:        cfg.SeedCustomerID,
		FirstName: "John",
		LastName:  "Smith",
		Address: customer.Address{
			Street:  "1431 Main St",
			City:    "Beverly Hills",
			State:   "CA",
			ZipCode: "90210",
		},
		PhoneNumber: "310-447-4121",
		SSN:         "622-11-9999",
	}); err != nil {
		return nil, fmt.Errorf("failed to seed customer: %w", err)
	}

	for i, id := range cfg.SeedAccountIDs {
		accountType := account.TypeSavings
		if i == 0 {
			accountType = account.TypeChecking
		}
		if err := l.OpenAccount(cfg.SeedCustomerID, id, accountType, cfg.SeedBalance); err != nil {
			return nil, fmt.Errorf("failed to seed account %s: %w", id, err)
		}
	}

	logger.Info("fake ledger seeded",
		"customer_id", cfg.SeedCustomerID,
		"accounts", len(cfg.SeedAccountIDs),
		"balance", cfg.SeedBalance.StringFixed(2),
		"allow_overdraft", cfg.AllowOverdraft,
	)
	return l, nil
}

// AddCustomer registers a customer without accounts
func (l *MemoryLedger) AddCustomer(c customer.Customer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.customers[c.ID]; exists {
		return fmt.Errorf("customer %s: %w", c.ID, ErrDuplicateID)
	}
	c.Accounts = nil
	l.customers[c.ID] = c
	return nil
}

// OpenAccount creates an account for an existing customer. A positive opening
// balance is recorded as a Credit transaction.
func (l *MemoryLedger) OpenAccount(customerID, accountID string, accountType account.Type, balance decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.customers[customerID]; !ok {
		return fmt.Errorf("customer %s: %w", customerID, ErrUnknownCustomer)
	}
	if _, exists := l.accounts[accountID]; exists {
		return fmt.Errorf("account %s: %w", accountID, ErrDuplicateID)
	}

	l.accounts[accountID] = account.Account{
		ID:         accountID,
		CustomerID: customerID,
		Type:       accountType,
		Balance:    balance,
	}
	l.accountOrder = append(l.accountOrder, accountID)
	if balance.IsPositive() {
		l.recordLocked(accountID, transaction.TypeCredit, balance, openingDescription)
	}
	return nil
}

// GetAccount returns a copy of the account
func (l *MemoryLedger) GetAccount(ctx context.Context, accountID string) (account.Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	acc, ok := l.accounts[accountID]
	if !ok {
		return account.Account{}, shared.NotFoundError{Resource: "account", ID: accountID}
	}
	return acc, nil
}

// GetAccountsByCustomer returns the customer's accounts in opening order
func (l *MemoryLedger) GetAccountsByCustomer(ctx context.Context, customerID string) ([]account.Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, ok := l.customers[customerID]; !ok {
		return nil, shared.NotFoundError{Resource: "customer", ID: customerID}
	}
	accounts := make([]account.Account, 0)
	for _, id := range l.accountOrder {
		if acc := l.accounts[id]; acc.CustomerID == customerID {
			accounts = append(accounts, acc)
		}
	}
	return accounts, nil
}

// GetTransactions returns a copy of the account's transaction history
func (l *MemoryLedger) GetTransactions(ctx context.Context, accountID string) ([]transaction.Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, ok := l.accounts[accountID]; !ok {
		return nil, shared.NotFoundError{Resource: "account", ID: accountID}
	}
	history := l.transactions[accountID]
	txs := make([]transaction.Transaction, len(history))
	copy(txs, history)
	return txs, nil
}

// GetCustomer returns the customer profile without embedded accounts
func (l *MemoryLedger) GetCustomer(ctx context.Context, customerID string) (customer.Customer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	c, ok := l.customers[customerID]
	if !ok {
		return customer.Customer{}, shared.NotFoundError{Resource: "customer", ID: customerID}
	}
	return c, nil
}

// Deposit credits the account
func (l *MemoryLedger) Deposit(ctx context.Context, accountID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[accountID]
	if !ok {
		return shared.NotFoundError{Resource: "account", ID: accountID}
	}
	acc.Balance = acc.Balance.Add(amount)
	l.accounts[accountID] = acc
	l.recordLocked(accountID, transaction.TypeCredit, amount, depositDescription)

	l.logger.Debug("deposit applied", "account_id", accountID, "amount", amount.StringFixed(2), "balance", acc.Balance.StringFixed(2))
	return nil
}

// Withdraw debits the account
func (l *MemoryLedger) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	acc, ok := l.accounts[accountID]
	if !ok {
		return shared.NotFoundError{Resource: "account", ID: accountID}
	}
	if !l.allowOverdraft && acc.Balance.LessThan(amount) {
		return InsufficientFundsError{AccountID: accountID, Balance: acc.Balance, Amount: amount}
	}
	acc.Balance = acc.Balance.Sub(amount)
	l.accounts[accountID] = acc
	l.recordLocked(accountID, transaction.TypeDebit, amount, withdrawalDescription)

	if acc.IsOverdrawn() {
		l.logger.Warn("withdrawal left account overdrawn", "account_id", accountID, "balance", acc.Balance.StringFixed(2))
	}
	return nil
}

// recordLocked appends a transaction; callers hold the write lock
func (l *MemoryLedger) recordLocked(accountID string, txType transaction.Type, amount decimal.Decimal, description string) {
	l.transactions[accountID] = append(l.transactions[accountID], transaction.Transaction{
		ID:          strconv.FormatInt(l.nextTxID, 10),
		AccountID:   accountID,
		Type:        txType,
		Date:        l.now().UTC().Format(time.RFC3339),
		Amount:      amount,
		Description: description,
	})
	l.nextTxID++
}

var _ LedgerService = (*MemoryLedger)(nil)
