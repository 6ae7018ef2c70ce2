package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/finwise/finwise-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSummaryFixture(t *testing.T, baseIncome, savingsGoal string) (*SummaryService, *testutil.MockUserRepo, *testutil.MockTransactionRepo, *testutil.MockSummaryRepo, uuid.UUID) {
	t.Helper()
	userRepo := testutil.NewMockUserRepo()
	transactionRepo := testutil.NewMockTransactionRepo()
	summaryRepo := testutil.NewMockSummaryRepo()

	user := userRepo.Add(&domain.User{
		Email:         "test@example.com",
		MonthlyIncome: decimal.RequireFromString(baseIncome),
		SavingsGoal:   decimal.RequireFromString(savingsGoal),
	})

	svc := NewSummaryService(userRepo, transactionRepo, summaryRepo)
	return svc, userRepo, transactionRepo, summaryRepo, user.ID
}

func addTransaction(t *testing.T, repo *testutil.MockTransactionRepo, userID uuid.UUID, amount string, direction domain.TransactionDirection, occurredAt time.Time, included bool) {
	t.Helper()
	_, err := repo.Create(&domain.Transaction{
		UserID:         userID,
		Title:          "txn",
		Amount:         decimal.RequireFromString(amount),
		Direction:      direction,
		Category:       domain.CategoryOthers,
		OccurredAt:     occurredAt,
		IncludeInTotal: included,
	})
	require.NoError(t, err)
}

func TestSummaryService_Recompute_DerivesAllFiguresFromLedger(t *testing.T) {
	svc, _, transactionRepo, _, userID := newSummaryFixture(t, "5000", "2000")
	svc.WithClock(func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) })

	march := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	addTransaction(t, transactionRepo, userID, "1000", domain.DirectionPaid, march, true)
	addTransaction(t, transactionRepo, userID, "2000", domain.DirectionReceived, march, true)

	summary, err := svc.Recompute(userID, 2025, 3)
	require.NoError(t, err)

	assert.Equal(t, "7000", summary.TotalIncome.String())
	assert.Equal(t, "1000", summary.TotalExpenses.String())
	assert.Equal(t, "6000", summary.TotalSavings.String())
	assert.Equal(t, "6000", summary.CurrentBalance.String())
	assert.Equal(t, domain.GoalStatusPending, summary.GoalStatus)
}

func TestSummaryService_Recompute_ExcludedTransactionsNeverCount(t *testing.T) {
	svc, _, transactionRepo, _, userID := newSummaryFixture(t, "5000", "0")
	svc.WithClock(func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) })

	march := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	addTransaction(t, transactionRepo, userID, "999", domain.DirectionPaid, march, false)

	summary, err := svc.Recompute(userID, 2025, 3)
	require.NoError(t, err)

	assert.Equal(t, "0", summary.TotalExpenses.String())
	assert.Equal(t, "5000", summary.CurrentBalance.String())
}

func TestSummaryService_Recompute_IsIdempotent(t *testing.T) {
	svc, _, transactionRepo, summaryRepo, userID := newSummaryFixture(t, "5000", "1000")
	svc.WithClock(func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) })

	march := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	addTransaction(t, transactionRepo, userID, "700", domain.DirectionPaid, march, true)

	first, err := svc.Recompute(userID, 2025, 3)
	require.NoError(t, err)
	second, err := svc.Recompute(userID, 2025, 3)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.TotalIncome.String(), second.TotalIncome.String())
	assert.Equal(t, first.TotalExpenses.String(), second.TotalExpenses.String())
	assert.Equal(t, first.TotalSavings.String(), second.TotalSavings.String())
	assert.Equal(t, first.CurrentBalance.String(), second.CurrentBalance.String())
	assert.Equal(t, 1, summaryRepo.Count())
}

func TestSummaryService_Recompute_BalanceSpansAllMonths(t *testing.T) {
	svc, _, transactionRepo, _, userID := newSummaryFixture(t, "5000", "0")
	svc.WithClock(func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) })

	january := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	march := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	addTransaction(t, transactionRepo, userID, "3000", domain.DirectionPaid, january, true)
	addTransaction(t, transactionRepo, userID, "500", domain.DirectionReceived, march, true)

	summary, err := svc.Recompute(userID, 2025, 3)
	require.NoError(t, err)

	// Month figures only see March; the balance sees the whole history.
	assert.Equal(t, "0", summary.TotalExpenses.String())
	assert.Equal(t, "5500", summary.TotalIncome.String())
	assert.Equal(t, "2500", summary.CurrentBalance.String())
}

func TestSummaryService_Recompute_DeletionReflectedOnNextRead(t *testing.T) {
	svc, _, transactionRepo, _, userID := newSummaryFixture(t, "5000", "0")
	svc.WithClock(func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) })

	march := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	created, err := transactionRepo.Create(&domain.Transaction{
		UserID:         userID,
		Title:          "refundable",
		Amount:         decimal.RequireFromString("1200"),
		Direction:      domain.DirectionPaid,
		Category:       domain.CategoryOthers,
		OccurredAt:     march,
		IncludeInTotal: true,
	})
	require.NoError(t, err)

	before, err := svc.Recompute(userID, 2025, 3)
	require.NoError(t, err)
	assert.Equal(t, "1200", before.TotalExpenses.String())

	require.NoError(t, transactionRepo.Delete(userID, created.ID))

	after, err := svc.Recompute(userID, 2025, 3)
	require.NoError(t, err)
	assert.Equal(t, "0", after.TotalExpenses.String())
	assert.Equal(t, "5000", after.CurrentBalance.String())
}

func TestSummaryService_Recompute_GoalStatusPendingUntilMonthEnd(t *testing.T) {
	svc, _, transactionRepo, _, userID := newSummaryFixture(t, "5000", "100000")
	svc.WithClock(func() time.Time { return time.Date(2025, 3, 31, 23, 59, 58, 0, time.UTC) })

	march := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	addTransaction(t, transactionRepo, userID, "4000", domain.DirectionPaid, march, true)

	summary, err := svc.Recompute(userID, 2025, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.GoalStatusPending, summary.GoalStatus)
}

func TestSummaryService_Recompute_GoalStatusSettlesAfterMonthEnd(t *testing.T) {
	svc, _, transactionRepo, _, userID := newSummaryFixture(t, "5000", "2000")
	svc.WithClock(func() time.Time { return time.Date(2025, 4, 1, 0, 0, 1, 0, time.UTC) })

	march := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	addTransaction(t, transactionRepo, userID, "1000", domain.DirectionPaid, march, true)

	summary, err := svc.Recompute(userID, 2025, 3)
	require.NoError(t, err)
	// Savings 5000 - 1000 = 4000 >= goal 2000
	assert.Equal(t, domain.GoalStatusAchieved, summary.GoalStatus)
}

func TestSummaryService_Recompute_GoalStatusNotAchieved(t *testing.T) {
	svc, _, transactionRepo, _, userID := newSummaryFixture(t, "5000", "2000")
	svc.WithClock(func() time.Time { return time.Date(2025, 4, 1, 0, 0, 1, 0, time.UTC) })

	march := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	addTransaction(t, transactionRepo, userID, "4500", domain.DirectionPaid, march, true)

	summary, err := svc.Recompute(userID, 2025, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.GoalStatusNotAchieved, summary.GoalStatus)
}

func TestSummaryService_Recompute_RejectsInvalidMonth(t *testing.T) {
	svc, _, _, _, userID := newSummaryFixture(t, "5000", "0")

	_, err := svc.Recompute(userID, 2025, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidMonth)

	_, err = svc.Recompute(userID, 2025, 13)
	assert.ErrorIs(t, err, domain.ErrInvalidMonth)
}

func TestSummaryService_Evaluate_RefreshesCurrentAndPreviousMonth(t *testing.T) {
	svc, _, transactionRepo, summaryRepo, userID := newSummaryFixture(t, "5000", "0")
	svc.WithClock(func() time.Time { return time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC) })

	// Backdated record in February changes that already-closed month.
	february := time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC)
	addTransaction(t, transactionRepo, userID, "800", domain.DirectionPaid, february, true)

	require.NoError(t, svc.Evaluate(userID))

	assert.Equal(t, 2, summaryRepo.Count())

	prev, err := summaryRepo.GetByMonth(userID, 2025, 2)
	require.NoError(t, err)
	assert.Equal(t, "800", prev.TotalExpenses.String())

	cur, err := summaryRepo.GetByMonth(userID, 2025, 3)
	require.NoError(t, err)
	assert.Equal(t, "0", cur.TotalExpenses.String())
}

func TestSummaryService_Evaluate_OlderMonthsStayStale(t *testing.T) {
	svc, _, transactionRepo, summaryRepo, userID := newSummaryFixture(t, "5000", "0")
	svc.WithClock(func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) })

	january := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	addTransaction(t, transactionRepo, userID, "900", domain.DirectionPaid, january, true)

	require.NoError(t, svc.Evaluate(userID))

	// Only the February and March windows were written; January refreshes
	// lazily when it is next read.
	assert.Equal(t, 2, summaryRepo.Count())
	_, err := summaryRepo.GetByMonth(userID, 2025, 1)
	assert.ErrorIs(t, err, domain.ErrSummaryNotFound)

	january2025, err := svc.GetSummary(userID, 2025, 1)
	require.NoError(t, err)
	assert.Equal(t, "900", january2025.TotalExpenses.String())
}

func TestSummaryService_Evaluate_JanuaryWindowWrapsToDecember(t *testing.T) {
	svc, _, _, summaryRepo, userID := newSummaryFixture(t, "5000", "0")
	svc.WithClock(func() time.Time { return time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC) })

	require.NoError(t, svc.Evaluate(userID))

	_, err := summaryRepo.GetByMonth(userID, 2024, 12)
	require.NoError(t, err)
	_, err = summaryRepo.GetByMonth(userID, 2025, 1)
	require.NoError(t, err)
}

func TestSummaryService_Evaluate_UnknownUserIsNoOp(t *testing.T) {
	svc, _, _, summaryRepo, _ := newSummaryFixture(t, "5000", "0")

	require.NoError(t, svc.Evaluate(uuid.New()))
	assert.Equal(t, 0, summaryRepo.Count())
}

// wrappingUserRepo annotates lookup errors the way a real repository layer
// does, so the sentinel arrives wrapped rather than bare.
type wrappingUserRepo struct {
	inner domain.UserRepository
}

func (r wrappingUserRepo) GetByID(id uuid.UUID) (*domain.User, error) {
	u, err := r.inner.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("lookup user %s: %w", id, err)
	}
	return u, nil
}

func TestSummaryService_Evaluate_WrappedUnknownUserIsNoOp(t *testing.T) {
	userRepo := testutil.NewMockUserRepo()
	transactionRepo := testutil.NewMockTransactionRepo()
	summaryRepo := testutil.NewMockSummaryRepo()
	svc := NewSummaryService(wrappingUserRepo{userRepo}, transactionRepo, summaryRepo)

	require.NoError(t, svc.Evaluate(uuid.New()))
	assert.Equal(t, 0, summaryRepo.Count())
}

func TestSummaryService_GetSummary_RecomputesOnRead(t *testing.T) {
	svc, _, transactionRepo, _, userID := newSummaryFixture(t, "5000", "0")
	svc.WithClock(func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) })

	first, err := svc.GetSummary(userID, 2025, 3)
	require.NoError(t, err)
	assert.Equal(t, "0", first.TotalExpenses.String())

	march := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	addTransaction(t, transactionRepo, userID, "250", domain.DirectionPaid, march, true)

	second, err := svc.GetSummary(userID, 2025, 3)
	require.NoError(t, err)
	assert.Equal(t, "250", second.TotalExpenses.String())
}
