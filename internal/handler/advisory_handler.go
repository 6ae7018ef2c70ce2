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

// AdvisoryHandler exposes the advisory annotations: anomaly warnings and
// monthly insight reports.
type AdvisoryHandler struct {
	advisoryService *service.AdvisoryService
}

// NewAdvisoryHandler creates a new AdvisoryHandler
func NewAdvisoryHandler(advisoryService *service.AdvisoryService) *AdvisoryHandler {
	return &AdvisoryHandler{advisoryService: advisoryService}
}

// ListAnomalies handles GET /advisory/anomalies
func (h *AdvisoryHandler) ListAnomalies(c echo.Context) error {
	userID := middleware.GetUserID(c)

	warnings, err := h.advisoryService.ListAnomalies(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to list anomalies")
		return NewInternalError(c, "Failed to list anomalies")
	}

	return c.JSON(http.StatusOK, warnings)
}

// GetReport handles GET /advisory/reports/:year/:month
func (h *AdvisoryHandler) GetReport(c echo.Context) error {
	userID := middleware.GetUserID(c)

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return NewValidationError(c, "Invalid year", nil)
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		return NewValidationError(c, "Invalid month", nil)
	}

	report, err := h.advisoryService.GetReport(userID, year, month)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return NewNotFoundError(c, "No report for this month")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get report")
		return NewInternalError(c, "Failed to get report")
	}

	return c.JSON(http.StatusOK, report)
}
