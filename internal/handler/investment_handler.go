package handler

import (
	"errors"
	"net/http"

	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/finwise/finwise-backend/internal/middleware"
	"github.com/finwise/finwise-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// InvestmentHandler handles micro-investment planner HTTP requests
type InvestmentHandler struct {
	investmentService *service.InvestmentService
}

// NewInvestmentHandler creates a new InvestmentHandler
func NewInvestmentHandler(investmentService *service.InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{investmentService: investmentService}
}

// PlanRequest represents the planner request
type PlanRequest struct {
	SavingsGoal decimal.Decimal `json:"savingsGoal"`
}

// Plan handles POST /investments/plan
func (h *InvestmentHandler) Plan(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req PlanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	plan, err := h.investmentService.PlanAndStore(userID, req.SavingsGoal)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidGoal) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "savingsGoal", Message: "Savings goal must be non-negative"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to compute plan")
		return NewInternalError(c, "Failed to compute plan")
	}

	return c.JSON(http.StatusOK, plan)
}

// History handles GET /investments/history
func (h *InvestmentHandler) History(c echo.Context) error {
	userID := middleware.GetUserID(c)

	plans, err := h.investmentService.History(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list plans")
		return NewInternalError(c, "Failed to list plans")
	}

	return c.JSON(http.StatusOK, plans)
}
