package service

import (
	"context"
	"fmt"
	"time"

	"github.com/finwise/finwise-backend/internal/ai"
	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/finwise/finwise-backend/internal/jobs"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	// duplicateWindow is how far back the anomaly scan looks for a matching
	// title and amount.
	duplicateWindow = 24 * time.Hour
	// largeExpenseFactor flags a paid transaction above this multiple of the
	// user's average paid amount.
	largeExpenseFactor = 5
	// largeExpenseFloor keeps small accounts from flagging trivial amounts
	largeExpenseFloor = 1000
)

// AdvisoryService runs the AI-assisted annotators behind the job queue.
// Everything here is best-effort: failures are logged and swallowed, and the
// ledger core never observes them.
type AdvisoryService struct {
	transactionRepo domain.TransactionRepository
	summaryRepo     domain.SummaryRepository
	anomalyRepo     domain.AnomalyWarningRepository
	reportRepo      domain.AIReportRepository
	categorizer     ai.Categorizer
	insightWriter   ai.InsightWriter
	logger          zerolog.Logger
}

// NewAdvisoryService creates a new AdvisoryService. categorizer and
// insightWriter may be nil; the corresponding advisors become no-ops.
func NewAdvisoryService(
	transactionRepo domain.TransactionRepository,
	summaryRepo domain.SummaryRepository,
	anomalyRepo domain.AnomalyWarningRepository,
	reportRepo domain.AIReportRepository,
	categorizer ai.Categorizer,
	insightWriter ai.InsightWriter,
	logger zerolog.Logger,
) *AdvisoryService {
	return &AdvisoryService{
		transactionRepo: transactionRepo,
		summaryRepo:     summaryRepo,
		anomalyRepo:     anomalyRepo,
		reportRepo:      reportRepo,
		categorizer:     categorizer,
		insightWriter:   insightWriter,
		logger:          logger,
	}
}

// ListAnomalies returns the user's anomaly warnings, newest first
func (s *AdvisoryService) ListAnomalies(userID uuid.UUID) ([]*domain.AnomalyWarning, error) {
	return s.anomalyRepo.ListByUser(userID)
}

// GetReport returns the stored monthly insight report for (user, year, month)
func (s *AdvisoryService) GetReport(userID uuid.UUID, year, month int) (*domain.AIReport, error) {
	return s.reportRepo.GetByMonth(userID, year, month)
}

// HandleJob dispatches one advisory job. It only returns an error for
// unknown kinds; advisor failures are handled internally.
func (s *AdvisoryService) HandleJob(ctx context.Context, job *jobs.AdvisoryJob) error {
	switch job.Kind {
	case jobs.KindTransactionCreated:
		s.scanAnomalies(job)
		s.maybeSuggestCategory(ctx, job)
		return nil
	case jobs.KindMonthlyInsight:
		s.generateInsight(ctx, job)
		return nil
	default:
		return fmt.Errorf("unknown advisory job kind %q", job.Kind)
	}
}

// scanAnomalies flags duplicates and unusually large expenses. Warnings are
// annotations only; the transaction's financial fields are never touched.
func (s *AdvisoryService) scanAnomalies(job *jobs.AdvisoryJob) {
	txn, err := s.transactionRepo.GetByID(job.TransactionID)
	if err != nil {
		s.logger.Warn().Err(err).Str("transaction_id", job.TransactionID.String()).Msg("anomaly scan: load failed")
		return
	}

	flagged := false

	similar, err := s.transactionRepo.FindSimilarWithin(txn.UserID, txn.ID, txn.Title, txn.Amount, txn.OccurredAt, duplicateWindow)
	if err != nil {
		s.logger.Warn().Err(err).Msg("anomaly scan: duplicate lookup failed")
	} else if similar != nil {
		s.recordWarning(&domain.AnomalyWarning{
			UserID:        txn.UserID,
			TransactionID: txn.ID,
			Type:          domain.AnomalyDuplicate,
			Reason:        fmt.Sprintf("Possible duplicate of '%s' recorded within 24 hours", similar.Title),
		})
		flagged = true
	}

	if txn.Direction == domain.DirectionPaid {
		avg, err := s.transactionRepo.AverageAmount(txn.UserID, domain.DirectionPaid, txn.ID)
		if err != nil {
			s.logger.Warn().Err(err).Msg("anomaly scan: average lookup failed")
		} else if avg.IsPositive() &&
			txn.Amount.GreaterThan(avg.Mul(decimal.NewFromInt(largeExpenseFactor))) &&
			txn.Amount.GreaterThan(decimal.NewFromInt(largeExpenseFloor)) {
			s.recordWarning(&domain.AnomalyWarning{
				UserID:        txn.UserID,
				TransactionID: txn.ID,
				Type:          domain.AnomalyLargeExpense,
				Reason:        fmt.Sprintf("₹%s is over 5x your average spend of ₹%s", txn.Amount.StringFixed(2), avg.StringFixed(2)),
			})
			flagged = true
		}
	}

	if flagged {
		if err := s.transactionRepo.MarkAnomaly(txn.ID); err != nil {
			s.logger.Warn().Err(err).Msg("anomaly scan: mark failed")
		}
	}
}

func (s *AdvisoryService) recordWarning(w *domain.AnomalyWarning) {
	if _, err := s.anomalyRepo.Create(w); err != nil {
		s.logger.Warn().Err(err).Str("type", string(w.Type)).Msg("anomaly scan: warning not stored")
	}
}

// maybeSuggestCategory asks the model for a category, but only for
// transactions the user left in Others. The suggestion is stored alongside
// the record; the user's own category is never overwritten.
func (s *AdvisoryService) maybeSuggestCategory(ctx context.Context, job *jobs.AdvisoryJob) {
	if s.categorizer == nil {
		return
	}

	txn, err := s.transactionRepo.GetByID(job.TransactionID)
	if err != nil {
		s.logger.Warn().Err(err).Msg("category suggestion: load failed")
		return
	}
	if txn.Category != domain.CategoryOthers {
		return
	}

	suggestion, err := s.categorizer.SuggestCategory(ctx, txn.Title, domain.Categories)
	if err != nil {
		s.logger.Warn().Err(err).Msg("category suggestion: model call failed")
		return
	}
	if !validCategory(suggestion) {
		s.logger.Debug().Str("suggestion", suggestion).Msg("category suggestion: outside taxonomy, discarded")
		return
	}

	if err := s.transactionRepo.SetCategorySuggestion(txn.ID, suggestion); err != nil {
		s.logger.Warn().Err(err).Msg("category suggestion: store failed")
	}
}

func validCategory(category string) bool {
	for _, c := range domain.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// generateInsight writes a narrative report over the month's summary and
// category breakdown, upserted so repeat jobs refresh rather than duplicate.
func (s *AdvisoryService) generateInsight(ctx context.Context, job *jobs.AdvisoryJob) {
	if s.insightWriter == nil {
		return
	}

	summary, err := s.summaryRepo.GetByMonth(job.UserID, job.Year, job.Month)
	if err != nil {
		s.logger.Warn().Err(err).Int("year", job.Year).Int("month", job.Month).Msg("insight: summary load failed")
		return
	}

	totals, err := s.transactionRepo.CategoryTotalsForMonth(job.UserID, job.Year, job.Month)
	if err != nil {
		s.logger.Warn().Err(err).Msg("insight: category totals failed")
		return
	}

	byCategory := make(map[string]decimal.Decimal, len(totals))
	for _, t := range totals {
		byCategory[t.Category] = t.Total
	}

	content, err := s.insightWriter.MonthlyInsight(ctx, ai.InsightData{
		TotalIncome:    summary.TotalIncome,
		TotalExpenses:  summary.TotalExpenses,
		TotalSavings:   summary.TotalSavings,
		CategoryTotals: byCategory,
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("insight: model call failed")
		return
	}

	if _, err := s.reportRepo.Upsert(&domain.AIReport{
		UserID:       job.UserID,
		Type:         domain.ReportTypeMonthlyInsight,
		Year:         job.Year,
		Month:        job.Month,
		Content:      content,
		DataSnapshot: totals,
	}); err != nil {
		s.logger.Warn().Err(err).Msg("insight: store failed")
	}
}
