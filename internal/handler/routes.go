package handler

import (
	"net/http"

	"github.com/finwise/finwise-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, rateLimiter *middleware.RateLimiter, transactionHandler *TransactionHandler, statementHandler *StatementHandler, receiptHandler *ReceiptHandler, summaryHandler *SummaryHandler, savingsHandler *SavingsHandler, investmentHandler *InvestmentHandler, advisoryHandler *AdvisoryHandler) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api")
	api.Use(middleware.Identity())
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	transactions := api.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	statements := api.Group("/statements")
	statements.POST("/import", statementHandler.Import)

	receipts := api.Group("/receipts")
	receipts.POST("", receiptHandler.Capture)
	receipts.POST("/analyze", receiptHandler.Analyze)

	summary := api.Group("/summary")
	summary.GET("/:year/:month", summaryHandler.GetSummary)
	summary.POST("/evaluate", summaryHandler.Evaluate)

	savings := api.Group("/savings")
	savings.POST("/recommend", savingsHandler.Recommend)
	savings.GET("/history", savingsHandler.History)

	investments := api.Group("/investments")
	investments.POST("/plan", investmentHandler.Plan)
	investments.GET("/history", investmentHandler.History)

	advisory := api.Group("/advisory")
	advisory.GET("/anomalies", advisoryHandler.ListAnomalies)
	advisory.GET("/reports/:year/:month", advisoryHandler.GetReport)
}
