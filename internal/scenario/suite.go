package scenario

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/parabank-conformance/internal/config"
	"github.com/parabank-conformance/internal/domain/account"
	"github.com/parabank-conformance/internal/domain/shared"
	"github.com/parabank-conformance/internal/domain/transaction"
	"github.com/parabank-conformance/internal/invariant"
	"github.com/shopspring/decimal"
)

// DefaultSuite builds the standard scenarios from configuration, in execution order
func DefaultSuite(cfg *config.ScenarioConfig) []Scenario {
	overdraftAccountID := cfg.OverdraftAccountID
	if overdraftAccountID == "" {
		overdraftAccountID = cfg.AccountID
	}

	allowed := account.NewTypeSet(account.TypeChecking, account.TypeSavings)
	if cfg.AllowCreditAccounts {
		allowed[account.TypeCredit] = struct{}{}
	}

	watch := []string{cfg.AccountID}
	if overdraftAccountID != cfg.AccountID {
		watch = append(watch, overdraftAccountID)
	}

	return []Scenario{
		&CustomerAccounts{CustomerID: cfg.CustomerID, Watch: watch, AllowedTypes: allowed},
		&Deposit{AccountID: cfg.AccountID, Target: cfg.TargetBalance, Amount: cfg.DepositAmount},
		&Withdraw{AccountID: cfg.AccountID, Target: cfg.TargetBalance, Amount: cfg.WithdrawAmount},
		&DepositThenWithdraw{
			AccountID:      cfg.AccountID,
			Target:         cfg.TargetBalance,
			DepositAmount:  cfg.DepositAmount,
			WithdrawAmount: cfg.WithdrawAmount,
		},
		&NegativeBalanceExposure{AccountID: overdraftAccountID, Target: cfg.TargetBalance, Margin: cfg.OverdraftMargin},
	}
}

// CustomerAccounts checks ownership, type and balance of every account a customer holds
type CustomerAccounts struct {
	CustomerID   string
	Watch        []string // account ids other scenarios may mutate; they must not run alongside this one
	AllowedTypes account.TypeSet
}

func (s *CustomerAccounts) Name() string { return "customer_accounts" }

func (s *CustomerAccounts) Resources() []string {
	return append([]string{s.CustomerID}, s.Watch...)
}

func (s *CustomerAccounts) KnownUnsafe() bool { return false }

func (s *CustomerAccounts) Run(ctx context.Context, env *Env, check *invariant.Checker) error {
	accounts, err := env.Ledger.GetAccountsByCustomer(ctx, s.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to list accounts of customer %s: %w", s.CustomerID, err)
	}

	check.Checkf("accounts_present", len(accounts) > 0, "%d accounts", len(accounts))
	check.Checkf("owned_by_customer", invariant.AllOwnedBy(accounts, s.CustomerID), "customer %s", s.CustomerID)
	check.Check("valid_account_type", invariant.AllValidType(accounts, s.AllowedTypes), "")
	check.Check("has_checking_account", invariant.AnyOfType(accounts, account.TypeChecking), "")
	check.Check("positive_balance", invariant.AllPositiveBalance(accounts), "")
	return nil
}

// Deposit reconciles to Target, deposits Amount and checks the arithmetic
type Deposit struct {
	AccountID string
	Target    decimal.Decimal
	Amount    decimal.Decimal
}

func (s *Deposit) Name() string        { return "deposit" }
func (s *Deposit) Resources() []string { return []string{s.AccountID} }
func (s *Deposit) KnownUnsafe() bool   { return false }

func (s *Deposit) Run(ctx context.Context, env *Env, check *invariant.Checker) error {
	before, err := reconcileAndCapture(ctx, env, check, s.AccountID, s.Target)
	if err != nil {
		return err
	}
	if err := env.Ledger.Deposit(ctx, s.AccountID, s.Amount); err != nil {
		return fmt.Errorf("failed to deposit: %w", err)
	}
	_, err = checkMutation(ctx, env, check, "after_deposit", s.AccountID, before, transaction.TypeCredit, s.Amount)
	return err
}

// Withdraw reconciles to Target, withdraws Amount and checks the arithmetic
type Withdraw struct {
	AccountID string
	Target    decimal.Decimal
	Amount    decimal.Decimal
}

func (s *Withdraw) Name() string        { return "withdraw" }
func (s *Withdraw) Resources() []string { return []string{s.AccountID} }
func (s *Withdraw) KnownUnsafe() bool   { return false }

func (s *Withdraw) Run(ctx context.Context, env *Env, check *invariant.Checker) error {
	before, err := reconcileAndCapture(ctx, env, check, s.AccountID, s.Target)
	if err != nil {
		return err
	}
	if err := env.Ledger.Withdraw(ctx, s.AccountID, s.Amount); err != nil {
		return fmt.Errorf("failed to withdraw: %w", err)
	}
	_, err = checkMutation(ctx, env, check, "after_withdraw", s.AccountID, before, transaction.TypeDebit, s.Amount)
	return err
}

// DepositThenWithdraw chains a deposit and a withdraw from one reconciled start
type DepositThenWithdraw struct {
	AccountID      string
	Target         decimal.Decimal
	DepositAmount  decimal.Decimal
	WithdrawAmount decimal.Decimal
}

func (s *DepositThenWithdraw) Name() string        { return "deposit_then_withdraw" }
func (s *DepositThenWithdraw) Resources() []string { return []string{s.AccountID} }
func (s *DepositThenWithdraw) KnownUnsafe() bool   { return false }

func (s *DepositThenWithdraw) Run(ctx context.Context, env *Env, check *invariant.Checker) error {
	before, err := reconcileAndCapture(ctx, env, check, s.AccountID, s.Target)
	if err != nil {
		return err
	}

	if err := env.Ledger.Deposit(ctx, s.AccountID, s.DepositAmount); err != nil {
		return fmt.Errorf("failed to deposit: %w", err)
	}
	afterDeposit, err := checkMutation(ctx, env, check, "after_deposit", s.AccountID, before, transaction.TypeCredit, s.DepositAmount)
	if err != nil {
		return err
	}

	if err := env.Ledger.Withdraw(ctx, s.AccountID, s.WithdrawAmount); err != nil {
		return fmt.Errorf("failed to withdraw: %w", err)
	}
	_, err = checkMutation(ctx, env, check, "after_withdraw", s.AccountID, afterDeposit, transaction.TypeDebit, s.WithdrawAmount)
	return err
}

// NegativeBalanceExposure withdraws balance + Margin and expects the ledger
// to accept it, leaving a negative balance. The account is reconciled back
// to Target afterwards.
type NegativeBalanceExposure struct {
	AccountID string
	Target    decimal.Decimal
	Margin    decimal.Decimal
}

func (s *NegativeBalanceExposure) Name() string        { return "negative_balance_exposure" }
func (s *NegativeBalanceExposure) Resources() []string { return []string{s.AccountID} }
func (s *NegativeBalanceExposure) KnownUnsafe() bool   { return true }

func (s *NegativeBalanceExposure) Run(ctx context.Context, env *Env, check *invariant.Checker) error {
	before, err := reconcileAndCapture(ctx, env, check, s.AccountID, s.Target)
	if err != nil {
		return err
	}

	amount := before.Balance.Add(s.Margin)
	err = env.Ledger.Withdraw(ctx, s.AccountID, amount)

	var unavailable shared.LedgerUnavailableError
	switch {
	case err == nil:
		check.Checkf("overdraft_accepted", true, "withdrew %s from balance %s", amount, before.Balance)
	case errors.As(err, &unavailable) && unavailable.StatusCode >= 400 && unavailable.StatusCode < http.StatusInternalServerError:
		// The ledger now refuses overdrafts; the known-unsafe behavior is gone
		check.Checkf("overdraft_accepted", false, "ledger rejected withdrawal of %s with status %d", amount, unavailable.StatusCode)
		return nil
	default:
		return fmt.Errorf("failed to withdraw past zero: %w", err)
	}

	after, _, err := env.Capture(ctx, "after_overdraft", s.AccountID)
	if err != nil {
		return err
	}
	check.Checkf("balance_negative", after.IsOverdrawn(), "balance %s", after.Balance)
	check.Checkf("balance_delta",
		invariant.BalanceDelta(before.Balance, after.Balance, amount.Neg(), invariant.AmountTolerance()),
		"before %s, after %s, expected delta -%s", before.Balance, after.Balance, amount)

	if _, err := env.Reconciler.Reconcile(ctx, s.AccountID, s.Target); err != nil {
		return fmt.Errorf("failed to restore account %s: %w", s.AccountID, err)
	}
	return nil
}

// reconcileAndCapture brings the account to target and records the starting state
func reconcileAndCapture(ctx context.Context, env *Env, check *invariant.Checker, accountID string, target decimal.Decimal) (account.Account, error) {
	if _, err := env.Reconciler.Reconcile(ctx, accountID, target); err != nil {
		return account.Account{}, err
	}
	before, _, err := env.Capture(ctx, "reconciled", accountID)
	if err != nil {
		return account.Account{}, err
	}
	check.Checkf("reconciled_to_target",
		invariant.WithinTolerance(before.Balance, target, env.Reconciler.Tolerance()),
		"balance %s, target %s", before.Balance, target)
	return before, nil
}

// checkMutation re-reads the account after a mutation and checks the balance
// arithmetic and the latest transaction
func checkMutation(
	ctx context.Context,
	env *Env,
	check *invariant.Checker,
	stage, accountID string,
	before account.Account,
	txType transaction.Type,
	amount decimal.Decimal,
) (account.Account, error) {
	after, txs, err := env.Capture(ctx, stage, accountID)
	if err != nil {
		return account.Account{}, err
	}

	expectedDelta := amount
	if txType == transaction.TypeDebit {
		expectedDelta = amount.Neg()
	}

	check.Checkf(stage+".balance_delta",
		invariant.BalanceDelta(before.Balance, after.Balance, expectedDelta, invariant.AmountTolerance()),
		"before %s, after %s, expected %s", before.Balance, after.Balance, before.Balance.Add(expectedDelta))

	latestDetail := "no transactions"
	if latest, ok := transaction.Latest(txs); ok {
		latestDetail = fmt.Sprintf("latest %s %s, expected %s %s", latest.Type, latest.Amount, txType, amount)
	}
	check.Check(stage+".latest_transaction",
		invariant.LatestTransactionMatches(txs, txType, amount, invariant.AmountTolerance()),
		latestDetail)

	return after, nil
}
