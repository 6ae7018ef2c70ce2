package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/finwise/finwise-backend/internal/middleware"
	"github.com/finwise/finwise-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ReceiptHandler handles receipt capture and analysis HTTP requests
type ReceiptHandler struct {
	receiptService     *service.ReceiptService
	transactionService *service.TransactionService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *service.ReceiptService, transactionService *service.TransactionService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService, transactionService: transactionService}
}

// CaptureResponse bundles the created transaction with its stored attachment
type CaptureResponse struct {
	Transaction  *domain.Transaction `json:"transaction"`
	ThumbnailKey string              `json:"thumbnailKey,omitempty"`
	Analysis     any                 `json:"analysis,omitempty"`
}

// Capture handles POST /receipts. Expects a multipart upload with the image
// under "file" plus the transaction fields as form values. The attachment is
// stored first; the transaction is created referencing it.
func (h *ReceiptHandler) Capture(c echo.Context) error {
	userID := middleware.GetUserID(c)

	data, contentType, err := readUpload(c)
	if err != nil {
		return NewValidationError(c, "Missing receipt file", []ValidationError{
			{Field: "file", Message: "A receipt image is required"},
		})
	}

	amount, err := decimal.NewFromString(c.FormValue("amount"))
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be a number"},
		})
	}

	upload, err := h.receiptService.Process(c.Request().Context(), userID, contentType, data)
	if err != nil {
		if errors.Is(err, service.ErrReceiptStorageDisabled) {
			return NewUnavailableError(c, "Receipt storage is not enabled")
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, err.Error(), nil)
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to store receipt")
		return NewInternalError(c, "Failed to store receipt")
	}

	input := service.CreateTransactionInput{
		Title:          c.FormValue("title"),
		Amount:         amount,
		Direction:      domain.TransactionDirection(c.FormValue("direction")),
		Category:       c.FormValue("category"),
		IncludeInTotal: true,
		AttachmentKey:  &upload.AttachmentKey,
	}
	if v := c.FormValue("occurredAt"); v != "" {
		occurredAt, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "occurredAt", Message: "Must be an RFC 3339 timestamp"},
			})
		}
		input.OccurredAt = occurredAt
	}

	transaction, err := h.transactionService.Create(userID, input)
	if err != nil {
		if validationErr, handled := transactionValidationError(c, err); handled {
			return validationErr
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewNotFoundError(c, "User not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create transaction from receipt")
		return NewInternalError(c, "Failed to create transaction")
	}

	resp := CaptureResponse{Transaction: transaction, ThumbnailKey: upload.ThumbnailKey}
	if upload.Analysis != nil {
		resp.Analysis = upload.Analysis
	}
	return c.JSON(http.StatusCreated, resp)
}

// Analyze handles POST /receipts/analyze, running only the AI extraction so
// the client can pre-fill a manual entry form.
func (h *ReceiptHandler) Analyze(c echo.Context) error {
	userID := middleware.GetUserID(c)

	data, contentType, err := readUpload(c)
	if err != nil {
		return NewValidationError(c, "Missing receipt file", []ValidationError{
			{Field: "file", Message: "A receipt image is required"},
		})
	}

	analysis, err := h.receiptService.Analyze(c.Request().Context(), data, contentType)
	if err != nil {
		if errors.Is(err, service.ErrReceiptAnalysisDisabled) {
			return NewUnavailableError(c, "Receipt analysis is not enabled")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to analyze receipt")
		return NewInternalError(c, "Failed to analyze receipt")
	}

	return c.JSON(http.StatusOK, analysis)
}

func readUpload(c echo.Context) ([]byte, string, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, "", err
	}
	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, fileHeader.Header.Get("Content-Type"), nil
}
