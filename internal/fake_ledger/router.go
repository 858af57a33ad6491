package fake_ledger

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parabank-conformance/internal/fake_ledger/handler"
	"github.com/parabank-conformance/internal/fake_ledger/middleware"
)

// setupRouter mounts the ledger routes under basePath
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	basePath string,
	accountHandler *handler.AccountHandler,
	transactionHandler *handler.TransactionHandler,
) {
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))

	bank := r.Group(basePath)
	{
		accounts := bank.Group("/accounts")
		{
			accounts.GET("/:id", accountHandler.GetAccount)
			accounts.GET("/:id/transactions", accountHandler.GetTransactions)
		}

		customers := bank.Group("/customers")
		{
			customers.GET("/:id", accountHandler.GetCustomer)
			customers.GET("/:id/accounts", accountHandler.GetCustomerAccounts)
		}

		bank.POST("/deposit", transactionHandler.Deposit)
		bank.POST("/withdraw", transactionHandler.Withdraw)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
