package xmlrecord

import (
	"strings"
	"testing"

	"github.com/parabank-conformance/internal/domain/account"
	"github.com/parabank-conformance/internal/domain/shared"
	"github.com/parabank-conformance/internal/domain/transaction"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const singleAccountXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<account><id>14898</id><customerId>12212</customerId><type>CHECKING</type><balance>1000.00</balance></account>`

func TestParseAccount(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		acc, err := ParseAccount(strings.NewReader(singleAccountXML))
		require.NoError(t, err)

		assert.Equal(t, "14898", acc.ID)
		assert.Equal(t, "12212", acc.CustomerID)
		assert.Equal(t, account.TypeChecking, acc.Type)
		assert.True(t, acc.Balance.Equal(decimal.RequireFromString("1000")))
	})

	t.Run("TrailingGarbageIsRejected", func(t *testing.T) {
		_, err := ParseAccount(strings.NewReader(singleAccountXML + "garbage"))
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.MalformedResponseError{})
	})

	t.Run("NegativeBalanceIsAccepted", func(t *testing.T) {
		acc, err := ParseAccount(strings.NewReader(`<account><id>1</id><customerId>2</customerId><type>SAVINGS</type><balance>-500.00</balance></account>`))
		require.NoError(t, err)
		assert.True(t, acc.IsOverdrawn())
	})

	testCases := []struct {
		name   string
		doc    string
		reason string
	}{
		{"NoAccountNode", `<error>Could not find account</error>`, "missing node account"},
		{"MissingBalance", `<account><id>1</id><customerId>2</customerId><type>CHECKING</type></account>`, "missing field balance"},
		{"EmptyID", `<account><id></id><customerId>2</customerId><type>CHECKING</type><balance>1</balance></account>`, "missing field id"},
		{"BadBalance", `<account><id>1</id><customerId>2</customerId><type>CHECKING</type><balance>lots</balance></account>`, `field balance is not a decimal: "lots"`},
		{"UnknownType", `<account><id>1</id><customerId>2</customerId><type>LOAN</type><balance>1</balance></account>`, `field type: invalid account type "LOAN"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAccount(strings.NewReader(tc.doc))
			var malformed shared.MalformedResponseError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tc.reason, malformed.Reason)
		})
	}
}

func TestParseAccounts(t *testing.T) {
	t.Run("SingleElementCollapse", func(t *testing.T) {
		accounts, err := ParseAccounts(strings.NewReader(`<accounts><account><id>1</id><customerId>13655</customerId><type>CHECKING</type><balance>10.50</balance></account></accounts>`))
		require.NoError(t, err)
		require.Len(t, accounts, 1)
		assert.Equal(t, "13655", accounts[0].CustomerID)
	})

	t.Run("ManyInOrder", func(t *testing.T) {
		accounts, err := ParseAccounts(strings.NewReader(`<accounts>
			<account><id>1</id><customerId>13655</customerId><type>CHECKING</type><balance>10</balance></account>
			<account><id>2</id><customerId>13655</customerId><type>SAVINGS</type><balance>20</balance></account>
		</accounts>`))
		require.NoError(t, err)
		require.Len(t, accounts, 2)
		assert.Equal(t, "1", accounts[0].ID)
		assert.Equal(t, account.TypeSavings, accounts[1].Type)
	})

	t.Run("EmptyList", func(t *testing.T) {
		accounts, err := ParseAccounts(strings.NewReader(`<accounts/>`))
		require.NoError(t, err)
		assert.Empty(t, accounts)
	})

	t.Run("ErrorDocumentAfterListIsRejected", func(t *testing.T) {
		accounts, err := ParseAccounts(strings.NewReader(`<accounts><account><id>1</id><customerId>13655</customerId><type>CHECKING</type><balance>10</balance></account></accounts><error>boom</error>`))
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.MalformedResponseError{})
		assert.Nil(t, accounts)
	})

	t.Run("BadElementReportsPosition", func(t *testing.T) {
		_, err := ParseAccounts(strings.NewReader(`<accounts>
			<account><id>1</id><customerId>1</customerId><type>CHECKING</type><balance>1</balance></account>
			<account><id>2</id><customerId>1</customerId><type>CHECKING</type></account>
		</accounts>`))
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.MalformedResponseError{Resource: "account"})
		assert.Contains(t, err.Error(), "position 1")
	})
}

func TestParseTransactions(t *testing.T) {
	t.Run("SingleElementCollapse", func(t *testing.T) {
		txs, err := ParseTransactions(strings.NewReader(`<transactions><transaction><id>99</id><accountId>14898</accountId><type>Credit</type><date>2026-10-18T00:00:00-07:00</date><amount>125.00</amount><description>Deposit via Web Service</description></transaction></transactions>`))
		require.NoError(t, err)
		require.Len(t, txs, 1)

		tx := txs[0]
		assert.Equal(t, "99", tx.ID)
		assert.Equal(t, "14898", tx.AccountID)
		assert.Equal(t, transaction.TypeCredit, tx.Type)
		assert.Equal(t, "2026-10-18T00:00:00-07:00", tx.Date)
		assert.True(t, tx.Amount.Equal(decimal.NewFromInt(125)))
		assert.Equal(t, "Deposit via Web Service", tx.Description)
	})

	t.Run("OrderPreserved", func(t *testing.T) {
		txs, err := ParseTransactions(strings.NewReader(`<transactions>
			<transaction><id>1</id><accountId>5</accountId><type>Credit</type><amount>1</amount></transaction>
			<transaction><id>2</id><accountId>5</accountId><type>Debit</type><amount>2</amount></transaction>
		</transactions>`))
		require.NoError(t, err)
		require.Len(t, txs, 2)
		latest, _ := transaction.Latest(txs)
		assert.Equal(t, "2", latest.ID)
		assert.Equal(t, transaction.TypeDebit, latest.Type)
	})

	t.Run("NegativeAmountIsMalformed", func(t *testing.T) {
		_, err := ParseTransactions(strings.NewReader(`<transactions><transaction><id>1</id><accountId>5</accountId><type>Debit</type><amount>-2</amount></transaction></transactions>`))
		assert.ErrorIs(t, err, shared.MalformedResponseError{Resource: "transaction"})
	})

	t.Run("UnknownTypeIsMalformed", func(t *testing.T) {
		_, err := ParseTransactions(strings.NewReader(`<transactions><transaction><id>1</id><accountId>5</accountId><type>Fee</type><amount>2</amount></transaction></transactions>`))
		assert.ErrorIs(t, err, shared.MalformedResponseError{Resource: "transaction"})
	})

	t.Run("Empty", func(t *testing.T) {
		txs, err := ParseTransactions(strings.NewReader(`<transactions></transactions>`))
		require.NoError(t, err)
		assert.Empty(t, txs)
	})
}

func TestParseCustomer(t *testing.T) {
	t.Run("FullRecord", func(t *testing.T) {
		c, err := ParseCustomer(strings.NewReader(`<customer>
			<id>12212</id><firstName>John</firstName><lastName>Smith</lastName>
			<address><street>1431 Main St</street><city>Beverly Hills</city><state>CA</state><zipCode>90210</zipCode></address>
			<phoneNumber>310-447-4121</phoneNumber><ssn>622-11-9999</ssn>
		</customer>`))
		require.NoError(t, err)

		assert.Equal(t, "12212", c.ID)
		assert.Equal(t, "John Smith", c.FullName())
		assert.Equal(t, "Beverly Hills", c.Address.City)
		assert.Equal(t, "90210", c.Address.ZipCode)
		assert.Equal(t, "310-447-4121", c.PhoneNumber)
		assert.Equal(t, "622-11-9999", c.SSN)
		assert.Empty(t, c.Accounts)
	})

	t.Run("EmbeddedAccounts", func(t *testing.T) {
		c, err := ParseCustomer(strings.NewReader(`<customer><id>7</id><accounts><account><id>1</id><customerId>7</customerId><type>CREDIT</type><balance>0</balance></account></accounts></customer>`))
		require.NoError(t, err)
		require.Len(t, c.Accounts, 1)
		assert.Equal(t, account.TypeCredit, c.Accounts[0].Type)
	})

	t.Run("MissingID", func(t *testing.T) {
		_, err := ParseCustomer(strings.NewReader(`<customer><firstName>John</firstName></customer>`))
		assert.ErrorIs(t, err, shared.MalformedResponseError{Resource: "customer"})
	})
}
