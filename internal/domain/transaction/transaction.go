package transaction

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidType = errors.New("invalid transaction type")

// Type carries the sign of a transaction; Amount itself is always unsigned
type Type string

const (
	TypeCredit Type = "Credit"
	TypeDebit  Type = "Debit"
)

// ParseType accepts the wire spelling in any letter case
func ParseType(s string) (Type, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CREDIT":
		return TypeCredit, nil
	case "DEBIT":
		return TypeDebit, nil
	default:
		return "", ErrInvalidType
	}
}

// Transaction is a read-only snapshot of a ledger transaction
type Transaction struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"account_id"`
	Type        Type            `json:"type"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// Signed returns the amount with the sign implied by the type
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == TypeDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Latest returns the transaction with the greatest insertion order, which is
// the last one in the sequence as received from the ledger.
func Latest(txs []Transaction) (Transaction, bool) {
	if len(txs) == 0 {
		return Transaction{}, false
	}
	return txs[len(txs)-1], true
}
