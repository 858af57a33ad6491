package handler

import (
	"encoding/xml"

	"github.com/parabank-conformance/internal/domain/account"
	"github.com/parabank-conformance/internal/domain/customer"
	"github.com/parabank-conformance/internal/domain/transaction"
)

// AccountResponse is the <account> element
type AccountResponse struct {
	XMLName    xml.Name `xml:"account"`
	ID         string   `xml:"id"`
	CustomerID string   `xml:"customerId"`
	Type       string   `xml:"type"`
	Balance    string   `xml:"balance"`
}

// AccountListResponse is the <accounts> container; an empty list renders as <accounts></accounts>
type AccountListResponse struct {
	XMLName  xml.Name          `xml:"accounts"`
	Accounts []AccountResponse `xml:"account"`
}

// TransactionResponse is the <transaction> element
type TransactionResponse struct {
	XMLName     xml.Name `xml:"transaction"`
	ID          string   `xml:"id"`
	AccountID   string   `xml:"accountId"`
	Type        string   `xml:"type"`
	Date        string   `xml:"date"`
	Amount      string   `xml:"amount"`
	Description string   `xml:"description"`
}

// TransactionListResponse is the <transactions> container
type TransactionListResponse struct {
	XMLName      xml.Name              `xml:"transactions"`
	Transactions []TransactionResponse `xml:"transaction"`
}

// AddressResponse is the customer's <address> element
type AddressResponse struct {
	Street  string `xml:"street"`
	City    string `xml:"city"`
	State   string `xml:"state"`
	ZipCode string `xml:"zipCode"`
}

// CustomerResponse is the <customer> element
type CustomerResponse struct {
	XMLName     xml.Name        `xml:"customer"`
	ID          string          `xml:"id"`
	FirstName   string          `xml:"firstName"`
	LastName    string          `xml:"lastName"`
	Address     AddressResponse `xml:"address"`
	PhoneNumber string          `xml:"phoneNumber"`
	SSN         string          `xml:"ssn"`
}

// Amounts always render with two decimal places, as the reference ledger does
func mapAccountToResponse(acc account.Account) AccountResponse {
	return AccountResponse{
		ID:         acc.ID,
		CustomerID: acc.CustomerID,
		Type:       string(acc.Type),
		Balance:    acc.Balance.StringFixed(2),
	}
}

func mapAccountsToResponse(accounts []account.Account) AccountListResponse {
	resp := AccountListResponse{Accounts: make([]AccountResponse, 0, len(accounts))}
	for _, acc := range accounts {
		resp.Accounts = append(resp.Accounts, mapAccountToResponse(acc))
	}
	return resp
}

func mapTransactionsToResponse(txs []transaction.Transaction) TransactionListResponse {
	resp := TransactionListResponse{Transactions: make([]TransactionResponse, 0, len(txs))}
	for _, tx := range txs {
		resp.Transactions = append(resp.Transactions, TransactionResponse{
			ID:          tx.ID,
			AccountID:   tx.AccountID,
			Type:        string(tx.Type),
			Date:        tx.Date,
			Amount:      tx.Amount.StringFixed(2),
			Description: tx.Description,
		})
	}
	return resp
}

func mapCustomerToResponse(c customer.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Address: AddressResponse{
			Street:  c.Address.Street,
			City:    c.Address.City,
			State:   c.Address.State,
			ZipCode: c.Address.ZipCode,
		},
		PhoneNumber: c.PhoneNumber,
		SSN:         c.SSN,
	}
}
