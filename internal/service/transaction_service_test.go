package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/finwise/finwise-backend/internal/jobs"
	"github.com/finwise/finwise-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturePublisher records published jobs; optionally failing every publish
type capturePublisher struct {
	mu   sync.Mutex
	jobs []*jobs.AdvisoryJob
	fail error
}

func (p *capturePublisher) Publish(ctx context.Context, job *jobs.AdvisoryJob) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail != nil {
		return p.fail
	}
	p.jobs = append(p.jobs, job)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) kinds() []jobs.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	kinds := make([]jobs.Kind, 0, len(p.jobs))
	for _, job := range p.jobs {
		kinds = append(kinds, job.Kind)
	}
	return kinds
}

func newTransactionFixture(t *testing.T) (*TransactionService, *testutil.MockTransactionRepo, *testutil.MockSummaryRepo, *capturePublisher, uuid.UUID) {
	t.Helper()
	userRepo := testutil.NewMockUserRepo()
	transactionRepo := testutil.NewMockTransactionRepo()
	summaryRepo := testutil.NewMockSummaryRepo()
	publisher := &capturePublisher{}

	user := userRepo.Add(&domain.User{
		Email:         "test@example.com",
		MonthlyIncome: decimal.RequireFromString("5000"),
	})

	summaryService := NewSummaryService(userRepo, transactionRepo, summaryRepo)
	svc := NewTransactionService(userRepo, transactionRepo, summaryService, publisher, zerolog.Nop())
	return svc, transactionRepo, summaryRepo, publisher, user.ID
}

func TestTransactionService_Create_PersistsAndRefreshesSummaries(t *testing.T) {
	svc, _, summaryRepo, publisher, userID := newTransactionFixture(t)

	created, err := svc.Create(userID, CreateTransactionInput{
		Title:          "Coffee",
		Amount:         decimal.RequireFromString("120"),
		Direction:      domain.DirectionPaid,
		IncludeInTotal: true,
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, domain.CategoryOthers, created.Category)
	require.NotNil(t, created.Fingerprint)

	// Current and previous month summaries refreshed.
	assert.Equal(t, 2, summaryRepo.Count())

	// Advisory pipeline kicked off for the transaction and the month.
	kinds := publisher.kinds()
	assert.Contains(t, kinds, jobs.KindTransactionCreated)
	assert.Contains(t, kinds, jobs.KindMonthlyInsight)
}

func TestTransactionService_Create_ValidationFailures(t *testing.T) {
	svc, _, _, _, userID := newTransactionFixture(t)

	tests := []struct {
		name  string
		input CreateTransactionInput
		want  error
	}{
		{"empty title", CreateTransactionInput{Title: "  ", Amount: decimal.NewFromInt(10), Direction: domain.DirectionPaid}, domain.ErrTitleRequired},
		{"negative amount", CreateTransactionInput{Title: "x", Amount: decimal.NewFromInt(-5), Direction: domain.DirectionPaid}, domain.ErrInvalidAmount},
		{"bad direction", CreateTransactionInput{Title: "x", Amount: decimal.NewFromInt(5), Direction: "Transferred"}, domain.ErrInvalidDirection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(userID, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTransactionService_Create_UnknownUser(t *testing.T) {
	svc, _, _, _, _ := newTransactionFixture(t)

	_, err := svc.Create(uuid.New(), CreateTransactionInput{
		Title:     "Coffee",
		Amount:    decimal.NewFromInt(10),
		Direction: domain.DirectionPaid,
	})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestTransactionService_Create_PublishFailureDoesNotFailRequest(t *testing.T) {
	svc, _, _, publisher, userID := newTransactionFixture(t)
	publisher.fail = errors.New("queue is full")

	_, err := svc.Create(userID, CreateTransactionInput{
		Title:          "Coffee",
		Amount:         decimal.RequireFromString("120"),
		Direction:      domain.DirectionPaid,
		IncludeInTotal: true,
	})
	assert.NoError(t, err)
}

func TestTransactionService_Delete_RemovesAndRefreshes(t *testing.T) {
	svc, transactionRepo, summaryRepo, _, userID := newTransactionFixture(t)

	created, err := svc.Create(userID, CreateTransactionInput{
		Title:          "Rent",
		Amount:         decimal.RequireFromString("2000"),
		Direction:      domain.DirectionPaid,
		IncludeInTotal: true,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(userID, created.ID))

	_, err = transactionRepo.GetByID(created.ID)
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)

	now := time.Now().UTC()
	summary, err := summaryRepo.GetByMonth(userID, now.Year(), int(now.Month()))
	require.NoError(t, err)
	assert.Equal(t, "0", summary.TotalExpenses.String())
}

func TestTransactionService_Delete_OtherUsersTransaction(t *testing.T) {
	svc, _, _, _, userID := newTransactionFixture(t)

	created, err := svc.Create(userID, CreateTransactionInput{
		Title:          "Rent",
		Amount:         decimal.RequireFromString("2000"),
		Direction:      domain.DirectionPaid,
		IncludeInTotal: true,
	})
	require.NoError(t, err)

	err = svc.Delete(uuid.New(), created.ID)
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestTransactionService_ImportStatement_DeduplicatesByFingerprint(t *testing.T) {
	svc, transactionRepo, _, _, userID := newTransactionFixture(t)

	rows := []ImportRow{
		{Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Description: "Salary", Amount: decimal.RequireFromString("30000"), Category: "Salary", Direction: domain.DirectionReceived},
		{Date: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), Description: "Grocery Store", Amount: decimal.RequireFromString("850"), Category: "Groceries", Direction: domain.DirectionPaid},
	}

	inserted, err := svc.ImportStatement(userID, "stmt-1", rows)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	// Re-uploading the same statement is a no-op.
	inserted, err = svc.ImportStatement(userID, "stmt-2", rows)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	all, err := transactionRepo.ListByUser(userID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	for _, txn := range all {
		assert.True(t, txn.Parsed)
		require.NotNil(t, txn.StatementTag)
		assert.Equal(t, "stmt-1", *txn.StatementTag)
	}
}

func TestTransactionService_ImportStatement_SkipsMalformedRows(t *testing.T) {
	svc, transactionRepo, _, _, userID := newTransactionFixture(t)

	rows := []ImportRow{
		{Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Description: "", Amount: decimal.NewFromInt(10), Direction: domain.DirectionPaid},
		{Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Description: "ok", Amount: decimal.NewFromInt(-10), Direction: domain.DirectionPaid},
		{Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Description: "ok", Amount: decimal.NewFromInt(10), Direction: "Unknown"},
		{Date: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Description: "kept", Amount: decimal.NewFromInt(10), Direction: domain.DirectionPaid},
	}

	inserted, err := svc.ImportStatement(userID, "stmt", rows)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	all, err := transactionRepo.ListByUser(userID, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "kept", all[0].Title)
}

func TestTransactionService_Totals_SplitByDirection(t *testing.T) {
	svc, _, _, _, userID := newTransactionFixture(t)

	_, err := svc.Create(userID, CreateTransactionInput{Title: "a", Amount: decimal.NewFromInt(100), Direction: domain.DirectionPaid, IncludeInTotal: true})
	require.NoError(t, err)
	_, err = svc.Create(userID, CreateTransactionInput{Title: "b", Amount: decimal.NewFromInt(40), Direction: domain.DirectionPaid, IncludeInTotal: true})
	require.NoError(t, err)
	_, err = svc.Create(userID, CreateTransactionInput{Title: "c", Amount: decimal.NewFromInt(900), Direction: domain.DirectionReceived, IncludeInTotal: true})
	require.NoError(t, err)

	totals, err := svc.Totals(userID, nil)
	require.NoError(t, err)
	assert.Equal(t, "140", totals.TotalPaid.String())
	assert.Equal(t, "900", totals.TotalReceived.String())
}

func TestTransactionService_Totals_CountExcludedRecords(t *testing.T) {
	svc, _, summaryRepo, _, userID := newTransactionFixture(t)

	_, err := svc.Create(userID, CreateTransactionInput{Title: "reimbursed lunch", Amount: decimal.NewFromInt(300), Direction: domain.DirectionPaid, IncludeInTotal: false})
	require.NoError(t, err)
	_, err = svc.Create(userID, CreateTransactionInput{Title: "rent", Amount: decimal.NewFromInt(100), Direction: domain.DirectionPaid, IncludeInTotal: true})
	require.NoError(t, err)

	totals, err := svc.Totals(userID, nil)
	require.NoError(t, err)
	assert.Equal(t, "400", totals.TotalPaid.String())

	// Summary figures still honor the inclusion flag.
	now := time.Now().UTC()
	summary, err := summaryRepo.GetByMonth(userID, now.Year(), int(now.Month()))
	require.NoError(t, err)
	assert.Equal(t, "100", summary.TotalExpenses.String())
}
