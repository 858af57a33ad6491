package xmlrecord

import (
	"fmt"
	"io"

	"github.com/parabank-conformance/internal/domain/account"
	"github.com/parabank-conformance/internal/domain/customer"
	"github.com/parabank-conformance/internal/domain/shared"
	"github.com/parabank-conformance/internal/domain/transaction"
	"github.com/shopspring/decimal"
)

// Sequence keys used by the ledger's list endpoints
const (
	AccountsKey     = "accounts.account"
	TransactionsKey = "transactions.transaction"
)

// ParseAccount decodes an <account> document
func ParseAccount(r io.Reader) (account.Account, error) {
	doc, err := Decode(r)
	if err != nil {
		return account.Account{}, err
	}
	node, err := Lookup(doc, "account")
	if err != nil {
		return account.Account{}, err
	}
	return ToAccount(node)
}

// ParseAccounts decodes an <accounts> document; an empty container yields no accounts
func ParseAccounts(r io.Reader) ([]account.Account, error) {
	doc, err := Decode(r)
	if err != nil {
		return nil, err
	}
	nodes, err := NormalizeOptionalSequence(doc, AccountsKey)
	if err != nil {
		return nil, err
	}
	return ToAccounts(nodes)
}

// ParseTransactions decodes a <transactions> document in ledger order
func ParseTransactions(r io.Reader) ([]transaction.Transaction, error) {
	doc, err := Decode(r)
	if err != nil {
		return nil, err
	}
	nodes, err := NormalizeOptionalSequence(doc, TransactionsKey)
	if err != nil {
		return nil, err
	}
	return ToTransactions(nodes)
}

// ParseCustomer decodes a <customer> document
func ParseCustomer(r io.Reader) (customer.Customer, error) {
	doc, err := Decode(r)
	if err != nil {
		return customer.Customer{}, err
	}
	node, err := Lookup(doc, "customer")
	if err != nil {
		return customer.Customer{}, err
	}
	return ToCustomer(node)
}

// ToAccount maps an <account> node to an Account
func ToAccount(n *Node) (account.Account, error) {
	const resource = "account"

	id, err := requiredText(n, resource, "id")
	if err != nil {
		return account.Account{}, err
	}
	customerID, err := requiredText(n, resource, "customerId")
	if err != nil {
		return account.Account{}, err
	}
	rawType, err := requiredText(n, resource, "type")
	if err != nil {
		return account.Account{}, err
	}
	accType, err := account.ParseType(rawType)
	if err != nil {
		return account.Account{}, shared.MalformedResponseError{Resource: resource, Reason: fmt.Sprintf("field type: %v %q", err, rawType)}
	}
	balance, err := requiredDecimal(n, resource, "balance")
	if err != nil {
		return account.Account{}, err
	}

	return account.Account{
		ID:         id,
		CustomerID: customerID,
		Type:       accType,
		Balance:    balance,
	}, nil
}

// ToAccounts maps each node in order
func ToAccounts(nodes []*Node) ([]account.Account, error) {
	accounts := make([]account.Account, 0, len(nodes))
	for i, n := range nodes {
		acc, err := ToAccount(n)
		if err != nil {
			return nil, fmt.Errorf("account at position %d: %w", i, err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// ToTransaction maps a <transaction> node to a Transaction
func ToTransaction(n *Node) (transaction.Transaction, error) {
	const resource = "transaction"

	id, err := requiredText(n, resource, "id")
	if err != nil {
		return transaction.Transaction{}, err
	}
	accountID, err := requiredText(n, resource, "accountId")
	if err != nil {
		return transaction.Transaction{}, err
	}
	rawType, err := requiredText(n, resource, "type")
	if err != nil {
		return transaction.Transaction{}, err
	}
	txType, err := transaction.ParseType(rawType)
	if err != nil {
		return transaction.Transaction{}, shared.MalformedResponseError{Resource: resource, Reason: fmt.Sprintf("field type: %v %q", err, rawType)}
	}
	amount, err := requiredDecimal(n, resource, "amount")
	if err != nil {
		return transaction.Transaction{}, err
	}
	if amount.IsNegative() {
		return transaction.Transaction{}, shared.MalformedResponseError{Resource: resource, Reason: "field amount is negative: " + amount.String()}
	}

	date, _ := n.ChildText("date")
	description, _ := n.ChildText("description")

	return transaction.Transaction{
		ID:          id,
		AccountID:   accountID,
		Type:        txType,
		Date:        date,
		Amount:      amount,
		Description: description,
	}, nil
}

// ToTransactions maps each node in order
func ToTransactions(nodes []*Node) ([]transaction.Transaction, error) {
	txs := make([]transaction.Transaction, 0, len(nodes))
	for i, n := range nodes {
		tx, err := ToTransaction(n)
		if err != nil {
			return nil, fmt.Errorf("transaction at position %d: %w", i, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// ToCustomer maps a <customer> node; only the id is required
func ToCustomer(n *Node) (customer.Customer, error) {
	id, err := requiredText(n, "customer", "id")
	if err != nil {
		return customer.Customer{}, err
	}

	c := customer.Customer{ID: id}
	c.FirstName, _ = n.ChildText("firstName")
	c.LastName, _ = n.ChildText("lastName")
	c.PhoneNumber, _ = n.ChildText("phoneNumber")
	c.SSN, _ = n.ChildText("ssn")

	if v, ok := n.Child("address"); ok {
		addr := v.Nodes[0]
		c.Address.Street, _ = addr.ChildText("street")
		c.Address.City, _ = addr.ChildText("city")
		c.Address.State, _ = addr.ChildText("state")
		c.Address.ZipCode, _ = addr.ChildText("zipCode")
	}

	if _, ok := n.Child("accounts"); ok {
		nodes, err := NormalizeOptionalSequence(n, "accounts.account")
		if err != nil {
			return customer.Customer{}, err
		}
		if c.Accounts, err = ToAccounts(nodes); err != nil {
			return customer.Customer{}, err
		}
	}

	return c, nil
}

func requiredText(n *Node, resource, field string) (string, error) {
	text, ok := n.ChildText(field)
	if !ok || text == "" {
		return "", shared.MalformedResponseError{Resource: resource, Reason: "missing field " + field}
	}
	return text, nil
}

func requiredDecimal(n *Node, resource, field string) (decimal.Decimal, error) {
	text, err := requiredText(n, resource, field)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, shared.MalformedResponseError{Resource: resource, Reason: fmt.Sprintf("field %s is not a decimal: %q", field, text)}
	}
	return d, nil
}
