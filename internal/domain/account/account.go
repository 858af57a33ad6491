package account

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrInvalidType = errors.New("invalid account type")
)

// Type is the closed set of account kinds the ledger exposes
type Type string

const (
	TypeChecking Type = "CHECKING"
	TypeSavings  Type = "SAVINGS"
	TypeCredit   Type = "CREDIT"
)

// ParseType maps wire text to a Type, rejecting anything outside the enumeration
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToUpper(strings.TrimSpace(s))); t {
	case TypeChecking, TypeSavings, TypeCredit:
		return t, nil
	default:
		return "", ErrInvalidType
	}
}

// TypeSet is a set of allowed account types
type TypeSet map[Type]struct{}

// NewTypeSet builds a TypeSet from the given types
func NewTypeSet(types ...Type) TypeSet {
	set := make(TypeSet, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	return set
}

// Contains reports whether t is in the set
func (s TypeSet) Contains(t Type) bool {
	_, ok := s[t]
	return ok
}

// Account is a read-only snapshot of a ledger account
type Account struct {
	ID         string          `json:"id"`
	CustomerID string          `json:"customer_id"`
	Type       Type            `json:"type"`
	Balance    decimal.Decimal `json:"balance"`
}

// IsOverdrawn reports whether the balance is below zero
func (a Account) IsOverdrawn() bool {
	return a.Balance.IsNegative()
}
