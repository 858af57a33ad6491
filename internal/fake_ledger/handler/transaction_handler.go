package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/parabank-conformance/internal/fake_ledger/service"
	"github.com/shopspring/decimal"
)

// TransactionHandler serves deposit and withdraw mutations
type TransactionHandler struct {
	ledger service.LedgerService
	logger *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, ledger service.LedgerService) *TransactionHandler {
	return &TransactionHandler{
		ledger: ledger,
		logger: logger,
	}
}

// MutationParams are the query parameters of POST /deposit and POST /withdraw
type MutationParams struct {
	AccountID string `form:"accountId" binding:"required"`
	Amount    string `form:"amount" binding:"required"`
}

// Deposit handles POST /deposit?accountId=&amount=
func (h *TransactionHandler) Deposit(c *gin.Context) {
	h.mutate(c, h.ledger.Deposit, "Successfully deposited $%s to account #%s")
}

// Withdraw handles POST /withdraw?accountId=&amount=
func (h *TransactionHandler) Withdraw(c *gin.Context) {
	h.mutate(c, h.ledger.Withdraw, "Successfully withdrew $%s from account #%s")
}

func (h *TransactionHandler) mutate(
	c *gin.Context,
	apply func(ctx context.Context, accountID string, amount decimal.Decimal) error,
	confirmation string,
) {
	var params MutationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.logger.Warn("Invalid mutation parameters", "query", c.Request.URL.RawQuery, "error", err)
		RespondBadRequest(c, "Missing accountId or amount")
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(params.Amount))
	if err != nil {
		RespondBadRequest(c, fmt.Sprintf("Invalid amount %q", params.Amount))
		return
	}

	if err := apply(c.Request.Context(), params.AccountID, amount); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	RespondText(c, fmt.Sprintf(confirmation, amount.StringFixed(2), params.AccountID))
}
