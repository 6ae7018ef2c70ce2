package service

import (
	"context"
	"strings"
	"time"

	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/finwise/finwise-backend/internal/jobs"
	"github.com/finwise/finwise-backend/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// TransactionService owns the write path of the ledger. Every mutation ends
// with a summary refresh, and advisory jobs are published fire-and-forget:
// a full queue or a down AI backend never fails the request.
type TransactionService struct {
	userRepo        domain.UserRepository
	transactionRepo domain.TransactionRepository
	summaryService  *SummaryService
	publisher       jobs.Publisher
	logger          zerolog.Logger
	now             func() time.Time
}

// NewTransactionService creates a new TransactionService. publisher may be
// nil when the advisory pipeline is disabled.
func NewTransactionService(
	userRepo domain.UserRepository,
	transactionRepo domain.TransactionRepository,
	summaryService *SummaryService,
	publisher jobs.Publisher,
	logger zerolog.Logger,
) *TransactionService {
	return &TransactionService{
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		summaryService:  summaryService,
		publisher:       publisher,
		logger:          logger,
		now:             time.Now,
	}
}

// WithClock overrides the time source for tests
func (s *TransactionService) WithClock(now func() time.Time) *TransactionService {
	s.now = now
	return s
}

// CreateTransactionInput carries the caller-supplied fields of a new record
type CreateTransactionInput struct {
	Title          string
	Amount         decimal.Decimal
	Direction      domain.TransactionDirection
	Category       string
	OccurredAt     time.Time
	IncludeInTotal bool
	AttachmentKey  *string
}

func (in *CreateTransactionInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return domain.ErrTitleRequired
	}
	if len(in.Title) > domain.MaxTransactionTitleLength {
		return domain.ErrTitleTooLong
	}
	if in.Amount.IsNegative() {
		return domain.ErrInvalidAmount
	}
	if in.Direction != domain.DirectionPaid && in.Direction != domain.DirectionReceived {
		return domain.ErrInvalidDirection
	}
	in.Category = strings.TrimSpace(in.Category)
	if in.Category == "" {
		in.Category = domain.CategoryOthers
	}
	if len(in.Category) > domain.MaxCategoryLength {
		return domain.ErrInvalidInput
	}
	return nil
}

// Create records a transaction, refreshes the user's summaries and kicks off
// the advisory pipeline.
func (s *TransactionService) Create(userID uuid.UUID, input CreateTransactionInput) (*domain.Transaction, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(userID); err != nil {
		return nil, err
	}

	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = s.now().UTC()
	}

	fingerprint := domain.Fingerprint(userID, occurredAt, input.Title, input.Amount, input.Direction)
	created, err := s.transactionRepo.Create(&domain.Transaction{
		UserID:         userID,
		Title:          input.Title,
		Amount:         input.Amount,
		Direction:      input.Direction,
		Category:       input.Category,
		OccurredAt:     occurredAt,
		IncludeInTotal: input.IncludeInTotal,
		Fingerprint:    &fingerprint,
		AttachmentKey:  input.AttachmentKey,
	})
	if err != nil {
		return nil, err
	}

	if err := s.summaryService.Evaluate(userID); err != nil {
		return nil, err
	}

	s.publishAdvisory(&jobs.AdvisoryJob{
		Kind:          jobs.KindTransactionCreated,
		UserID:        userID,
		TransactionID: created.ID,
	})
	s.publishInsightJob(userID)

	return created, nil
}

// Delete removes a transaction owned by the user and refreshes summaries so
// totals never keep counting a deleted record.
func (s *TransactionService) Delete(userID, id uuid.UUID) error {
	if err := s.transactionRepo.Delete(userID, id); err != nil {
		return err
	}
	return s.summaryService.Evaluate(userID)
}

// List returns the user's transactions, newest first, optionally filtered
func (s *TransactionService) List(userID uuid.UUID, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return nil, err
	}
	return s.transactionRepo.ListByUser(userID, filters)
}

// DirectionTotals are running sums per direction over a filtered view
type DirectionTotals struct {
	TotalPaid     decimal.Decimal `json:"totalPaid"`
	TotalReceived decimal.Decimal `json:"totalReceived"`
}

// Totals sums paid and received amounts over the filtered view. Listing
// totals count every record; only summary figures honor the inclusion flag.
func (s *TransactionService) Totals(userID uuid.UUID, filters *domain.TransactionFilters) (*DirectionTotals, error) {
	paid, err := s.transactionRepo.SumByFilter(userID, domain.DirectionPaid, filters)
	if err != nil {
		return nil, err
	}
	received, err := s.transactionRepo.SumByFilter(userID, domain.DirectionReceived, filters)
	if err != nil {
		return nil, err
	}
	return &DirectionTotals{TotalPaid: paid, TotalReceived: received}, nil
}

// ImportRow is one statement line ready for ingestion
type ImportRow struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Category    string
	Direction   domain.TransactionDirection
}

// ImportStatement ingests parsed statement rows with fingerprint
// deduplication: a row whose fingerprint already exists is silently skipped,
// so re-uploading the same statement is a no-op. Returns the number of rows
// actually inserted.
func (s *TransactionService) ImportStatement(userID uuid.UUID, statementTag string, rows []ImportRow) (int, error) {
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return 0, err
	}

	inserted := 0
	for _, row := range rows {
		title := strings.TrimSpace(row.Description)
		if title == "" || row.Amount.IsNegative() {
			continue
		}
		if row.Direction != domain.DirectionPaid && row.Direction != domain.DirectionReceived {
			continue
		}
		category := strings.TrimSpace(row.Category)
		if category == "" || len(category) > domain.MaxCategoryLength {
			category = domain.CategoryOthers
		}

		fingerprint := domain.Fingerprint(userID, row.Date, title, row.Amount, row.Direction)
		tag := statementTag
		ok, err := s.transactionRepo.CreateIfAbsent(&domain.Transaction{
			UserID:         userID,
			Title:          title,
			Amount:         row.Amount,
			Direction:      row.Direction,
			Category:       category,
			OccurredAt:     row.Date,
			IncludeInTotal: true,
			Fingerprint:    &fingerprint,
			Parsed:         true,
			StatementTag:   &tag,
		})
		if err != nil {
			return inserted, err
		}
		if ok {
			inserted++
		}
	}

	if inserted > 0 {
		if err := s.summaryService.Evaluate(userID); err != nil {
			return inserted, err
		}
		s.publishInsightJob(userID)
	}

	return inserted, nil
}

func (s *TransactionService) publishInsightJob(userID uuid.UUID) {
	year, month, _, _ := util.MonthWindow(s.now().UTC())
	s.publishAdvisory(&jobs.AdvisoryJob{
		Kind:   jobs.KindMonthlyInsight,
		UserID: userID,
		Year:   year,
		Month:  month,
	})
}

// publishAdvisory enqueues a job without ever failing the caller
func (s *TransactionService) publishAdvisory(job *jobs.AdvisoryJob) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(context.Background(), job); err != nil {
		s.logger.Warn().
			Err(err).
			Str("kind", string(job.Kind)).
			Str("user_id", job.UserID.String()).
			Msg("advisory job dropped")
	}
}
