package service

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrUnknownCustomer = errors.New("customer does not exist")
	ErrDuplicateID     = errors.New("id already in use")
)

// InsufficientFundsError is returned by Withdraw when overdraft is disabled
type InsufficientFundsError struct {
	AccountID string
	Balance   decimal.Decimal
	Amount    decimal.Decimal
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in account %s: balance %s, requested %s",
		e.AccountID, e.Balance.StringFixed(2), e.Amount.StringFixed(2))
}

// Is implements the errors.Is interface for InsufficientFundsError
func (e InsufficientFundsError) Is(target error) bool {
	t, ok := target.(InsufficientFundsError)
	if !ok {
		return false
	}
	return t.AccountID == "" || t.AccountID == e.AccountID
}
