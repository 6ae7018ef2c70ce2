package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/finwise/finwise-backend/internal/middleware"
	"github.com/finwise/finwise-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// SummaryHandler handles monthly summary HTTP requests
type SummaryHandler struct {
	summaryService *service.SummaryService
}

// NewSummaryHandler creates a new SummaryHandler
func NewSummaryHandler(summaryService *service.SummaryService) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService}
}

// GetSummary handles GET /summary/:year/:month. The summary is recomputed
// from the ledger before it is returned, so the response always reflects the
// current transaction history.
func (h *SummaryHandler) GetSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return NewValidationError(c, "Invalid year", nil)
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		return NewValidationError(c, "Invalid month", nil)
	}

	summary, err := h.summaryService.GetSummary(userID, year, month)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidMonth) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "month", Message: "Month must be between 1 and 12"},
			})
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Int("year", year).Int("month", month).Msg("Failed to get summary")
		return NewInternalError(c, "Failed to get summary")
	}

	return c.JSON(http.StatusOK, summary)
}

// Evaluate handles POST /summary/evaluate, refreshing the current and
// previous month summaries on demand.
func (h *SummaryHandler) Evaluate(c echo.Context) error {
	userID := middleware.GetUserID(c)

	if err := h.summaryService.Evaluate(userID); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to evaluate summaries")
		return NewInternalError(c, "Failed to evaluate summaries")
	}

	return c.NoContent(http.StatusNoContent)
}
