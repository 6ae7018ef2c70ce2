package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/finwise/finwise-backend/internal/middleware"
	"github.com/finwise/finwise-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the manual entry request
type CreateTransactionRequest struct {
	Title          string          `json:"title"`
	Amount         decimal.Decimal `json:"amount"`
	Direction      string          `json:"direction"`
	Category       string          `json:"category"`
	OccurredAt     *time.Time      `json:"occurredAt"`
	IncludeInTotal *bool           `json:"includeInTotal"`
}

// ListTransactionsResponse bundles the filtered listing with its aggregates
type ListTransactionsResponse struct {
	Transactions []*domain.Transaction    `json:"transactions"`
	Totals       *service.DirectionTotals `json:"totals"`
}

// CreateTransaction handles POST /transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	input := service.CreateTransactionInput{
		Title:          req.Title,
		Amount:         req.Amount,
		Direction:      domain.TransactionDirection(req.Direction),
		Category:       req.Category,
		IncludeInTotal: true,
	}
	if req.OccurredAt != nil {
		input.OccurredAt = *req.OccurredAt
	}
	if req.IncludeInTotal != nil {
		input.IncludeInTotal = *req.IncludeInTotal
	}

	transaction, err := h.transactionService.Create(userID, input)
	if err != nil {
		if validationErr, handled := transactionValidationError(c, err); handled {
			return validationErr
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create transaction")
		return NewInternalError(c, "Failed to create transaction")
	}

	return c.JSON(http.StatusCreated, transaction)
}

// GetTransactions handles GET /transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)

	filters := parseFilters(c)
	transactions, err := h.transactionService.List(userID, filters)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list transactions")
		return NewInternalError(c, "Failed to list transactions")
	}

	totals, err := h.transactionService.Totals(userID, filters)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to compute totals")
		return NewInternalError(c, "Failed to list transactions")
	}

	return c.JSON(http.StatusOK, ListTransactionsResponse{
		Transactions: transactions,
		Totals:       totals,
	})
}

// DeleteTransaction handles DELETE /transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.transactionService.Delete(userID, id); err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Str("transaction_id", id.String()).Msg("Failed to delete transaction")
		return NewInternalError(c, "Failed to delete transaction")
	}

	return c.NoContent(http.StatusNoContent)
}

func parseFilters(c echo.Context) *domain.TransactionFilters {
	filters := &domain.TransactionFilters{}
	if v := c.QueryParam("parsed"); v == "true" || v == "false" {
		parsed := v == "true"
		filters.Parsed = &parsed
	}
	if v := c.QueryParam("withAttachment"); v == "true" || v == "false" {
		withAttachment := v == "true"
		filters.WithAttachment = &withAttachment
	}
	if v := c.QueryParam("direction"); v != "" {
		direction := domain.TransactionDirection(v)
		filters.Direction = &direction
	}
	if v := c.QueryParam("category"); v != "" {
		category := v
		filters.Category = &category
	}
	return filters
}

// transactionValidationError maps domain validation sentinels to 400 responses
func transactionValidationError(c echo.Context, err error) (error, bool) {
	switch {
	case errors.Is(err, domain.ErrTitleRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "title", Message: "Title is required"},
		}), true
	case errors.Is(err, domain.ErrTitleTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "title", Message: "Title must be 255 characters or less"},
		}), true
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be non-negative"},
		}), true
	case errors.Is(err, domain.ErrInvalidDirection):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "direction", Message: "Direction must be Paid or Received"},
		}), true
	case errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, "Validation failed", nil), true
	}
	return nil, false
}
