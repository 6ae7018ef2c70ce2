package service

import (
	"context"
	"fmt"
	"time"

	"github.com/finwise/finwise-backend/internal/ai"
	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxStatementSize = 10 * 1024 * 1024

// ErrStatementParsingDisabled is returned when no statement parser is
// configured (no API key).
var ErrStatementParsingDisabled = fmt.Errorf("statement parsing is not enabled")

// ErrStatementTooLarge rejects oversized uploads before they reach the model
var ErrStatementTooLarge = fmt.Errorf("statement exceeds %d bytes: %w", maxStatementSize, domain.ErrInvalidInput)

// StatementImportResult summarizes one statement upload
type StatementImportResult struct {
	StatementTag string `json:"statementTag"`
	RowsParsed   int    `json:"rowsParsed"`
	RowsImported int    `json:"rowsImported"`
	RowsSkipped  int    `json:"rowsSkipped"`
}

// StatementService turns uploaded bank-statement PDFs into ledger rows via
// the AI parser and the deduplicating import path.
type StatementService struct {
	parser             ai.StatementParser
	transactionService *TransactionService
	logger             zerolog.Logger
}

// NewStatementService creates a new StatementService. parser may be nil;
// Import then fails with ErrStatementParsingDisabled.
func NewStatementService(parser ai.StatementParser, transactionService *TransactionService, logger zerolog.Logger) *StatementService {
	return &StatementService{parser: parser, transactionService: transactionService, logger: logger}
}

// Import parses the PDF and ingests its rows. Rows the model dated
// unparseably are skipped, and previously imported rows are deduplicated by
// fingerprint, so re-uploading a statement never double-counts.
func (s *StatementService) Import(ctx context.Context, userID uuid.UUID, pdfBytes []byte) (*StatementImportResult, error) {
	if s.parser == nil {
		return nil, ErrStatementParsingDisabled
	}
	if len(pdfBytes) > maxStatementSize {
		return nil, ErrStatementTooLarge
	}

	parsed, err := s.parser.ParseStatement(ctx, pdfBytes)
	if err != nil {
		return nil, fmt.Errorf("parse statement: %w", err)
	}

	tag := uuid.New().String()
	rows := make([]ImportRow, 0, len(parsed))
	skipped := 0
	for _, p := range parsed {
		date, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			s.logger.Debug().Str("date", p.Date).Msg("statement row skipped: bad date")
			skipped++
			continue
		}
		direction := domain.TransactionDirection(p.Type)
		if direction != domain.DirectionPaid && direction != domain.DirectionReceived {
			skipped++
			continue
		}
		rows = append(rows, ImportRow{
			Date:        date,
			Description: p.Description,
			Amount:      p.Amount,
			Category:    p.Category,
			Direction:   direction,
		})
	}

	imported, err := s.transactionService.ImportStatement(userID, tag, rows)
	if err != nil {
		return nil, err
	}

	return &StatementImportResult{
		StatementTag: tag,
		RowsParsed:   len(parsed),
		RowsImported: imported,
		RowsSkipped:  skipped,
	}, nil
}
