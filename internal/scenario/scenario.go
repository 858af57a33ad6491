// Package scenario defines ledger conformance scenarios and runs them on a
// worker pool, never letting two in-flight scenarios share an account or customer.
package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/parabank-conformance/internal/domain/account"
	"github.com/parabank-conformance/internal/domain/report"
	"github.com/parabank-conformance/internal/domain/transaction"
	"github.com/parabank-conformance/internal/invariant"
	"github.com/parabank-conformance/internal/ledger_client"
	"github.com/parabank-conformance/internal/reconciler"
)

// Scenario is one strict reconcile, mutate, re-read, check sequence
type Scenario interface {
	// Name identifies the scenario in reports
	Name() string

	// Resources lists every account or customer id the scenario reads or mutates
	Resources() []string

	// KnownUnsafe marks scenarios that assert a behavior of the ledger which is
	// observed today but undesirable
	KnownUnsafe() bool

	// Run executes the scenario, recording invariant outcomes on check.
	// A returned error means the scenario could not complete.
	Run(ctx context.Context, env *Env, check *invariant.Checker) error
}

// Env is the per-run view of the ledger handed to a scenario
type Env struct {
	Ledger     ledger_client.Ledger
	Reconciler *reconciler.Reconciler
	Logger     *slog.Logger

	runID     uuid.UUID
	scenario  string
	snapshots []report.Snapshot
}

// Capture re-reads an account and its transactions and records them as a
// snapshot for the given stage
func (e *Env) Capture(ctx context.Context, stage, accountID string) (account.Account, []transaction.Transaction, error) {
	acc, err := e.Ledger.GetAccount(ctx, accountID)
	if err != nil {
		return account.Account{}, nil, fmt.Errorf("failed to read account %s at %s: %w", accountID, stage, err)
	}
	txs, err := e.Ledger.GetTransactions(ctx, accountID)
	if err != nil {
		return account.Account{}, nil, fmt.Errorf("failed to read transactions of %s at %s: %w", accountID, stage, err)
	}

	e.snapshots = append(e.snapshots, report.Snapshot{
		RunID:        e.runID,
		Scenario:     e.scenario,
		Stage:        stage,
		AccountID:    accountID,
		Account:      &acc,
		Transactions: txs,
		CapturedAt:   time.Now().UTC(),
	})
	e.Logger.Debug("snapshot captured", "stage", stage, "account_id", accountID, "balance", acc.Balance.String(), "transactions", len(txs))
	return acc, txs, nil
}

// Snapshots returns the snapshots captured so far
func (e *Env) Snapshots() []report.Snapshot {
	return e.snapshots
}
