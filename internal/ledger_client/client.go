// Package ledger_client talks to a ParaBank-style ledger over HTTP and XML.
// It holds no state and never retries: every call is exactly one request.
package ledger_client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/parabank-conformance/internal/config"
	"github.com/parabank-conformance/internal/domain/account"
	"github.com/parabank-conformance/internal/domain/customer"
	"github.com/parabank-conformance/internal/domain/shared"
	"github.com/parabank-conformance/internal/domain/transaction"
	"github.com/parabank-conformance/internal/xmlrecord"
	"github.com/shopspring/decimal"
)

const defaultAccept = "application/xml"

// Client is a client for the ledger service
type Client struct {
	baseURL    string
	accept     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new ledger client from the ledger configuration
func NewClient(cfg *config.LedgerConfig, logger *slog.Logger) *Client {
	accept := strings.TrimSpace(cfg.Accept)
	if accept == "" {
		accept = defaultAccept
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		accept:     accept,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// GetAccount retrieves a single account
func (c *Client) GetAccount(ctx context.Context, accountID string) (account.Account, error) {
	var acc account.Account
	err := c.read(ctx, "account", accountID, "/accounts/"+url.PathEscape(accountID), func(body io.Reader) (err error) {
		acc, err = xmlrecord.ParseAccount(body)
		return err
	})
	return acc, err
}

// GetAccountsByCustomer retrieves all accounts of a customer
func (c *Client) GetAccountsByCustomer(ctx context.Context, customerID string) ([]account.Account, error) {
	var accounts []account.Account
	err := c.read(ctx, "customer", customerID, "/customers/"+url.PathEscape(customerID)+"/accounts", func(body io.Reader) (err error) {
		accounts, err = xmlrecord.ParseAccounts(body)
		return err
	})
	return accounts, err
}

// GetTransactions retrieves the transactions of an account in ledger order
func (c *Client) GetTransactions(ctx context.Context, accountID string) ([]transaction.Transaction, error) {
	var txs []transaction.Transaction
	err := c.read(ctx, "account", accountID, "/accounts/"+url.PathEscape(accountID)+"/transactions", func(body io.Reader) (err error) {
		txs, err = xmlrecord.ParseTransactions(body)
		return err
	})
	return txs, err
}

// GetCustomer retrieves a customer profile
func (c *Client) GetCustomer(ctx context.Context, customerID string) (customer.Customer, error) {
	var cust customer.Customer
	err := c.read(ctx, "customer", customerID, "/customers/"+url.PathEscape(customerID), func(body io.Reader) (err error) {
		cust, err = xmlrecord.ParseCustomer(body)
		return err
	})
	return cust, err
}

// Deposit credits amount to the account
func (c *Client) Deposit(ctx context.Context, accountID string, amount decimal.Decimal) error {
	return c.mutate(ctx, "deposit", accountID, amount)
}

// Withdraw debits amount from the account. The ledger decides whether the
// resulting balance may go negative.
func (c *Client) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) error {
	return c.mutate(ctx, "withdraw", accountID, amount)
}

// read performs a GET and hands the body to parse once status and content type are acceptable
func (c *Client) read(ctx context.Context, resource, id, path string, parse func(io.Reader) error) error {
	operation := "get " + strings.TrimPrefix(path, "/")

	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return shared.LedgerUnavailableError{Operation: operation, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return shared.LedgerUnavailableError{Operation: operation, StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return shared.NotFoundError{Resource: resource, ID: id, StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "xml") {
		return shared.MalformedResponseError{
			Resource: resource,
			Reason:   fmt.Sprintf("unexpected content type %q", contentType),
		}
	}

	if err := parse(resp.Body); err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", resource, id, err)
	}
	return nil
}

// mutate posts a deposit or withdraw; any non-2xx answer means the mutation did not happen
func (c *Client) mutate(ctx context.Context, operation, accountID string, amount decimal.Decimal) error {
	query := url.Values{}
	query.Set("accountId", accountID)
	query.Set("amount", amount.String())

	resp, err := c.do(ctx, http.MethodPost, "/"+operation+"?"+query.Encode(), nil)
	if err != nil {
		return shared.LedgerUnavailableError{Operation: operation, Err: err}
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return shared.LedgerUnavailableError{Operation: operation, StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", c.accept)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("ledger request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("failed to execute request to ledger: %w", err)
	}
	c.logger.Debug("ledger request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	return resp, nil
}
