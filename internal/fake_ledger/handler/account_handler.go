package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/parabank-conformance/internal/fake_ledger/service"
)

// AccountHandler serves account, customer and transaction reads
type AccountHandler struct {
	ledger service.LedgerService
	logger *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, ledger service.LedgerService) *AccountHandler {
	return &AccountHandler{
		ledger: ledger,
		logger: logger,
	}
}

// GetAccount handles GET /accounts/:id
func (h *AccountHandler) GetAccount(c *gin.Context) {
	acc, err := h.ledger.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	RespondXML(c, mapAccountToResponse(acc))
}

// GetTransactions handles GET /accounts/:id/transactions
func (h *AccountHandler) GetTransactions(c *gin.Context) {
	txs, err := h.ledger.GetTransactions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	RespondXML(c, mapTransactionsToResponse(txs))
}

// GetCustomer handles GET /customers/:id
func (h *AccountHandler) GetCustomer(c *gin.Context) {
	cust, err := h.ledger.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	RespondXML(c, mapCustomerToResponse(cust))
}

// GetCustomerAccounts handles GET /customers/:id/accounts
func (h *AccountHandler) GetCustomerAccounts(c *gin.Context) {
	accounts, err := h.ledger.GetAccountsByCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	RespondXML(c, mapAccountsToResponse(accounts))
}
