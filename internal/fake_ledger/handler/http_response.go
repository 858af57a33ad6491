package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parabank-conformance/internal/domain/shared"
	"github.com/parabank-conformance/internal/fake_ledger/middleware"
	"github.com/parabank-conformance/internal/fake_ledger/service"
)

// The reference ledger answers reads with XML and reports every failure,
// including unknown ids, as a plain-text 400.

// RespondXML sends a 200 OK response with an XML body
func RespondXML(c *gin.Context, body interface{}) {
	c.XML(http.StatusOK, body)
}

// RespondText sends a 200 OK plain-text confirmation
func RespondText(c *gin.Context, message string) {
	c.String(http.StatusOK, message)
}

// RespondBadRequest sends a 400 with a plain-text reason
func RespondBadRequest(c *gin.Context, message string) {
	c.String(http.StatusBadRequest, message)
}

// RespondInternalError sends a 500 with a generic plain-text reason
func RespondInternalError(c *gin.Context) {
	c.String(http.StatusInternalServerError, "An internal error has occurred and has been logged.")
}

// respondServiceError maps LedgerService errors to responses
func respondServiceError(c *gin.Context, logger *slog.Logger, err error) {
	var notFound shared.NotFoundError
	var insufficient service.InsufficientFundsError
	switch {
	case errors.As(err, &notFound):
		RespondBadRequest(c, fmt.Sprintf("Could not find %s #%s", notFound.Resource, notFound.ID))
	case errors.As(err, &insufficient):
		RespondBadRequest(c, fmt.Sprintf("Insufficient funds in account #%s", insufficient.AccountID))
	case errors.Is(err, service.ErrInvalidAmount):
		RespondBadRequest(c, "Amount must be greater than zero")
	default:
		logger.Error("ledger operation failed",
			"correlation_id", middleware.GetCorrelationID(c),
			"path", c.Request.URL.Path,
			"error", err,
		)
		RespondInternalError(c)
	}
}
