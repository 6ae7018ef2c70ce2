package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/finwise/finwise-backend/internal/middleware"
	"github.com/finwise/finwise-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// StatementHandler handles bank statement import HTTP requests
type StatementHandler struct {
	statementService *service.StatementService
}

// NewStatementHandler creates a new StatementHandler
func NewStatementHandler(statementService *service.StatementService) *StatementHandler {
	return &StatementHandler{statementService: statementService}
}

// Import handles POST /statements/import. Expects a multipart upload with the
// PDF under the "file" field.
func (h *StatementHandler) Import(c echo.Context) error {
	userID := middleware.GetUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "Missing statement file", []ValidationError{
			{Field: "file", Message: "A PDF statement file is required"},
		})
	}
	if ct := fileHeader.Header.Get("Content-Type"); ct != "" && ct != "application/pdf" {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "file", Message: "Statement must be a PDF"},
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open statement upload")
		return NewInternalError(c, "Failed to read statement")
	}
	defer file.Close()

	pdfBytes, err := io.ReadAll(file)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read statement upload")
		return NewInternalError(c, "Failed to read statement")
	}

	result, err := h.statementService.Import(c.Request().Context(), userID, pdfBytes)
	if err != nil {
		if errors.Is(err, service.ErrStatementParsingDisabled) {
			return NewUnavailableError(c, "Statement parsing is not enabled")
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Statement file is too large"},
			})
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to import statement")
		return NewInternalError(c, "Failed to import statement")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("statement_tag", result.StatementTag).
		Int("imported", result.RowsImported).
		Int("skipped", result.RowsSkipped).
		Msg("Statement imported")

	return c.JSON(http.StatusOK, result)
}
