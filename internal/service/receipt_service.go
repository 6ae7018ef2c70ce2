package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"
	"github.com/finwise/finwise-backend/internal/ai"
	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/finwise/finwise-backend/internal/repository/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	maxReceiptSize    = 5 * 1024 * 1024
	minReceiptWidth   = 50
	minReceiptHeight  = 50
	thumbnailWidth    = 200
	thumbnailQuality  = 85
	presignedURLValid = 15 * time.Minute
)

var allowedReceiptTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

var (
	ErrReceiptTooLarge        = fmt.Errorf("receipt exceeds %d bytes: %w", maxReceiptSize, domain.ErrInvalidInput)
	ErrUnsupportedReceiptType = fmt.Errorf("unsupported receipt content type: %w", domain.ErrInvalidInput)
	ErrReceiptTooSmall        = fmt.Errorf("receipt image below %dx%d: %w", minReceiptWidth, minReceiptHeight, domain.ErrInvalidInput)

	// ErrReceiptAnalysisDisabled is returned by Analyze when no model is
	// configured.
	ErrReceiptAnalysisDisabled = fmt.Errorf("receipt analysis is not enabled")

	// ErrReceiptStorageDisabled is returned when no attachment store is
	// configured. Only the receipt endpoints degrade; the ledger core never
	// touches storage.
	ErrReceiptStorageDisabled = fmt.Errorf("receipt storage is not enabled")
)

// ReceiptUpload is the result of storing a receipt image: the stored object
// keys plus the model's best-effort extraction, nil when analysis is
// unavailable or failed.
type ReceiptUpload struct {
	AttachmentKey string
	ThumbnailKey  string
	Analysis      *ai.ReceiptData
}

// ReceiptService validates, stores and analyzes receipt images. Storage
// failures are hard errors; analysis failures are not.
type ReceiptService struct {
	attachments storage.AttachmentRepository
	analyzer    ai.ReceiptAnalyzer
	logger      zerolog.Logger
}

// NewReceiptService creates a new ReceiptService. attachments and analyzer
// may each be nil; the corresponding operations fail with their Disabled
// sentinel.
func NewReceiptService(attachments storage.AttachmentRepository, analyzer ai.ReceiptAnalyzer, logger zerolog.Logger) *ReceiptService {
	return &ReceiptService{attachments: attachments, analyzer: analyzer, logger: logger}
}

// Process validates the image, stores the original and a thumbnail, and runs
// the receipt analyzer over the original bytes.
func (s *ReceiptService) Process(ctx context.Context, userID uuid.UUID, contentType string, data []byte) (*ReceiptUpload, error) {
	if s.attachments == nil {
		return nil, ErrReceiptStorageDisabled
	}
	if len(data) > maxReceiptSize {
		return nil, ErrReceiptTooLarge
	}
	ext, ok := allowedReceiptTypes[contentType]
	if !ok {
		return nil, ErrUnsupportedReceiptType
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode receipt image: %w", domain.ErrInvalidInput)
	}
	bounds := img.Bounds()
	if bounds.Dx() < minReceiptWidth || bounds.Dy() < minReceiptHeight {
		return nil, ErrReceiptTooSmall
	}

	originalKey := storage.GenerateObjectPath(userID, "original", ext)
	if _, err := s.attachments.Upload(ctx, originalKey, bytes.NewReader(data), contentType, int64(len(data))); err != nil {
		return nil, fmt.Errorf("store receipt: %w", err)
	}

	thumbKey, err := s.storeThumbnail(ctx, userID, img)
	if err != nil {
		// The original is stored and usable; a missing thumbnail only
		// degrades list views.
		s.logger.Warn().Err(err).Msg("receipt thumbnail not stored")
		thumbKey = ""
	}

	upload := &ReceiptUpload{AttachmentKey: originalKey, ThumbnailKey: thumbKey}

	if s.analyzer != nil {
		analysis, err := s.analyzer.AnalyzeReceipt(ctx, data, contentType)
		if err != nil {
			s.logger.Warn().Err(err).Msg("receipt analysis failed")
		} else {
			upload.Analysis = analysis
		}
	}

	return upload, nil
}

func (s *ReceiptService) storeThumbnail(ctx context.Context, userID uuid.UUID, img image.Image) (string, error) {
	thumb := imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(thumbnailQuality)); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}

	key := storage.GenerateObjectPath(userID, "thumb", ".jpg")
	if _, err := s.attachments.Upload(ctx, key, &buf, "image/jpeg", int64(buf.Len())); err != nil {
		return "", fmt.Errorf("store thumbnail: %w", err)
	}
	return key, nil
}

// Analyze runs only the AI extraction, without storing anything. Unlike the
// capture path, a missing analyzer is a hard error here: extraction is the
// whole point of the call.
func (s *ReceiptService) Analyze(ctx context.Context, data []byte, contentType string) (*ai.ReceiptData, error) {
	if s.analyzer == nil {
		return nil, ErrReceiptAnalysisDisabled
	}
	if len(data) > maxReceiptSize {
		return nil, ErrReceiptTooLarge
	}
	if _, ok := allowedReceiptTypes[contentType]; !ok {
		return nil, ErrUnsupportedReceiptType
	}
	return s.analyzer.AnalyzeReceipt(ctx, data, contentType)
}

// AttachmentURL returns a short-lived presigned URL for a stored receipt
func (s *ReceiptService) AttachmentURL(ctx context.Context, objectPath string) (string, error) {
	if s.attachments == nil {
		return "", ErrReceiptStorageDisabled
	}
	return s.attachments.GeneratePresignedURL(ctx, objectPath, presignedURLValid)
}

// Delete removes a stored receipt object
func (s *ReceiptService) Delete(ctx context.Context, objectPath string) error {
	if s.attachments == nil {
		return ErrReceiptStorageDisabled
	}
	return s.attachments.Delete(ctx, objectPath)
}
