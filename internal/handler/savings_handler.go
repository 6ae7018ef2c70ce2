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

// SavingsHandler handles budget allocation HTTP requests
type SavingsHandler struct {
	savingsService *service.SavingsService
}

// NewSavingsHandler creates a new SavingsHandler
func NewSavingsHandler(savingsService *service.SavingsService) *SavingsHandler {
	return &SavingsHandler{savingsService: savingsService}
}

// RecommendRequest represents the allocation calculator request
type RecommendRequest struct {
	MonthlyIncome decimal.Decimal `json:"monthlyIncome"`
}

// Recommend handles POST /savings/recommend
func (h *SavingsHandler) Recommend(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var req RecommendRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	breakdown, err := h.savingsService.Recommend(userID, req.MonthlyIncome)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidIncome) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "monthlyIncome", Message: "Monthly income must be a positive number"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to compute recommendation")
		return NewInternalError(c, "Failed to compute recommendation")
	}

	return c.JSON(http.StatusOK, breakdown)
}

// History handles GET /savings/history
func (h *SavingsHandler) History(c echo.Context) error {
	userID := middleware.GetUserID(c)

	recs, err := h.savingsService.History(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list recommendations")
		return NewInternalError(c, "Failed to list recommendations")
	}

	return c.JSON(http.StatusOK, recs)
}
