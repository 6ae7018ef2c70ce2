package service

import (
	"errors"
	"time"

	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/finwise/finwise-backend/internal/util"
	"github.com/google/uuid"
)

// SummaryService recomputes monthly summaries from the raw transaction
// ledger. Every derived figure is rebuilt from scratch on each call, never
// incrementally maintained, so retroactive edits and deletions can never
// leave the running balance inconsistent.
type SummaryService struct {
	userRepo        domain.UserRepository
	transactionRepo domain.TransactionRepository
	summaryRepo     domain.SummaryRepository
	now             func() time.Time
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(userRepo domain.UserRepository, transactionRepo domain.TransactionRepository, summaryRepo domain.SummaryRepository) *SummaryService {
	return &SummaryService{
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		summaryRepo:     summaryRepo,
		now:             time.Now,
	}
}

// WithClock overrides the time source. Only the goal-status decision is
// time-sensitive; tests pin it here.
func (s *SummaryService) WithClock(now func() time.Time) *SummaryService {
	s.now = now
	return s
}

// Recompute rebuilds the summary for (user, year, month) from raw
// transactions and upserts it. Idempotent: with no intervening ledger
// changes, consecutive calls produce identical rows.
func (s *SummaryService) Recompute(userID uuid.UUID, year, month int) (*domain.MonthlySummary, error) {
	if month < 1 || month > 12 {
		return nil, domain.ErrInvalidMonth
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	monthExpense, err := s.transactionRepo.SumForMonth(userID, domain.DirectionPaid, year, month)
	if err != nil {
		return nil, err
	}
	monthReceived, err := s.transactionRepo.SumForMonth(userID, domain.DirectionReceived, year, month)
	if err != nil {
		return nil, err
	}

	// The running balance is derived from the full history, not carried
	// forward month to month.
	globalIncome, err := s.transactionRepo.SumAllTime(userID, domain.DirectionReceived)
	if err != nil {
		return nil, err
	}
	globalExpense, err := s.transactionRepo.SumAllTime(userID, domain.DirectionPaid)
	if err != nil {
		return nil, err
	}

	currentBalance := user.MonthlyIncome.Add(globalIncome).Sub(globalExpense)
	monthlyIncome := user.MonthlyIncome.Add(monthReceived)
	monthlySavings := monthlyIncome.Sub(monthExpense)

	goalStatus := domain.GoalStatusPending
	if s.now().UTC().After(util.MonthEnd(year, month)) {
		if monthlySavings.GreaterThanOrEqual(user.SavingsGoal) {
			goalStatus = domain.GoalStatusAchieved
		} else {
			goalStatus = domain.GoalStatusNotAchieved
		}
	}

	return s.summaryRepo.Upsert(&domain.MonthlySummary{
		UserID:         userID,
		Year:           year,
		Month:          month,
		TotalIncome:    monthlyIncome,
		TotalExpenses:  monthExpense,
		TotalSavings:   monthlySavings,
		CurrentBalance: currentBalance,
		GoalStatus:     goalStatus,
	})
}

// Evaluate refreshes the current calendar month and the immediately
// preceding one. A backdated record in the prior month changes that month's
// already-closed totals, so both windows stay live; months further back are
// not refreshed until something touches them again.
func (s *SummaryService) Evaluate(userID uuid.UUID) error {
	curYear, curMonth, prevYear, prevMonth := util.MonthWindow(s.now().UTC())

	if _, err := s.Recompute(userID, curYear, curMonth); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return err
	}
	_, err := s.Recompute(userID, prevYear, prevMonth)
	return err
}

// GetSummary returns the stored summary for a month, recomputing it first so
// reads always reflect the current ledger.
func (s *SummaryService) GetSummary(userID uuid.UUID, year, month int) (*domain.MonthlySummary, error) {
	return s.Recompute(userID, year, month)
}
