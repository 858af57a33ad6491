// Package reconciler drives an account to a target balance with a single
// corrective deposit or withdraw.
package reconciler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/parabank-conformance/internal/domain/account"
	"github.com/shopspring/decimal"
)

// LedgerClient is the subset of the ledger the reconciler drives
type LedgerClient interface {
	GetAccount(ctx context.Context, accountID string) (account.Account, error)
	Deposit(ctx context.Context, accountID string, amount decimal.Decimal) error
	Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) error
}

// Action is the corrective mutation a reconciliation issued
type Action string

const (
	ActionNone     Action = "none"
	ActionDeposit  Action = "deposit"
	ActionWithdraw Action = "withdraw"
)

// DefaultTolerance is the convergence tolerance used when none is configured (0.001)
func DefaultTolerance() decimal.Decimal {
	return decimal.New(1, -3)
}

// Result describes one reconciliation
type Result struct {
	AccountID string
	Before    decimal.Decimal
	Target    decimal.Decimal
	Delta     decimal.Decimal // Target - Before
	Action    Action
}

// Reconciler brings accounts to a known starting balance.
// It does not lock: callers must not reconcile the same account concurrently.
type Reconciler struct {
	client    LedgerClient
	tolerance decimal.Decimal
	logger    *slog.Logger
}

// New creates a Reconciler. A non-positive tolerance falls back to DefaultTolerance.
func New(client LedgerClient, tolerance decimal.Decimal, logger *slog.Logger) *Reconciler {
	if !tolerance.IsPositive() {
		tolerance = DefaultTolerance()
	}
	return &Reconciler{
		client:    client,
		tolerance: tolerance,
		logger:    logger,
	}
}

// Tolerance returns the convergence tolerance in use
func (r *Reconciler) Tolerance() decimal.Decimal {
	return r.tolerance
}

// Reconcile reads the balance once and issues at most one mutation so the
// balance becomes target. It does not read back; the write is not atomic with
// the read, so a concurrent writer can leave the account off target.
func (r *Reconciler) Reconcile(ctx context.Context, accountID string, target decimal.Decimal) (*Result, error) {
	acc, err := r.client.GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance of account %s: %w", accountID, err)
	}

	result := &Result{
		AccountID: accountID,
		Before:    acc.Balance,
		Target:    target,
		Delta:     target.Sub(acc.Balance),
		Action:    ActionNone,
	}

	switch {
	case result.Delta.Abs().LessThanOrEqual(r.tolerance):
		r.logger.Debug("account already at target", "account_id", accountID, "balance", acc.Balance.String())
		return result, nil

	case result.Delta.IsPositive():
		if err := r.client.Deposit(ctx, accountID, result.Delta); err != nil {
			return nil, fmt.Errorf("failed to deposit %s into account %s: %w", result.Delta, accountID, err)
		}
		result.Action = ActionDeposit

	default:
		amount := result.Delta.Neg()
		if err := r.client.Withdraw(ctx, accountID, amount); err != nil {
			return nil, fmt.Errorf("failed to withdraw %s from account %s: %w", amount, accountID, err)
		}
		result.Action = ActionWithdraw
	}

	r.logger.Info("account reconciled",
		"account_id", accountID,
		"before", result.Before.String(),
		"target", target.String(),
		"action", result.Action,
	)
	return result, nil
}
