package customer

import "github.com/parabank-conformance/internal/domain/account"

// Address is the postal address of a customer
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
}

// Customer owns zero or more accounts
type Customer struct {
	ID          string            `json:"id"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	Address     Address           `json:"address"`
	PhoneNumber string            `json:"phone_number"`
	SSN         string            `json:"ssn"`
	Accounts    []account.Account `json:"accounts,omitempty"`
}

// FullName joins first and last name
func (c Customer) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}
