package service

import (
	"context"
	"testing"

	"github.com/finwise/finwise-backend/internal/ai"
	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/finwise/finwise-backend/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStatementParser struct {
	rows []*ai.ParsedTransaction
	err  error
}

func (s *stubStatementParser) ParseStatement(ctx context.Context, pdfBytes []byte) ([]*ai.ParsedTransaction, error) {
	return s.rows, s.err
}

type statementFixture struct {
	userRepo        *testutil.MockUserRepo
	transactionRepo *testutil.MockTransactionRepo
	user            *domain.User
}

func newStatementFixture(parser ai.StatementParser) (*StatementService, *statementFixture) {
	userRepo := testutil.NewMockUserRepo()
	transactionRepo := testutil.NewMockTransactionRepo()
	summaryService := NewSummaryService(userRepo, transactionRepo, testutil.NewMockSummaryRepo())
	transactionService := NewTransactionService(userRepo, transactionRepo, summaryService, nil, zerolog.Nop())
	user := userRepo.Add(&domain.User{
		Email:         "stmt@example.com",
		MonthlyIncome: decimal.NewFromInt(5000),
	})
	svc := NewStatementService(parser, transactionService, zerolog.Nop())
	return svc, &statementFixture{userRepo: userRepo, transactionRepo: transactionRepo, user: user}
}

func TestStatementImport_ParsesAndIngestsRows(t *testing.T) {
	parser := &stubStatementParser{rows: []*ai.ParsedTransaction{
		{Date: "2025-03-01", Description: "SALARY CREDIT", Amount: decimal.NewFromInt(45000), Category: "Others", Type: "Received"},
		{Date: "2025-03-02", Description: "GROCERY STORE", Amount: decimal.NewFromInt(1200), Category: "Groceries", Type: "Paid"},
	}}
	svc, f := newStatementFixture(parser)

	result, err := svc.Import(context.Background(), f.user.ID, []byte("%PDF-1.4"))
	require.NoError(t, err)

	assert.Equal(t, 2, result.RowsParsed)
	assert.Equal(t, 2, result.RowsImported)
	assert.Equal(t, 0, result.RowsSkipped)
	assert.NotEmpty(t, result.StatementTag)

	txns, err := f.transactionRepo.ListByUser(f.user.ID, nil)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	for _, txn := range txns {
		assert.True(t, txn.Parsed)
		require.NotNil(t, txn.StatementTag)
		assert.Equal(t, result.StatementTag, *txn.StatementTag)
	}
}

func TestStatementImport_SkipsMalformedRows(t *testing.T) {
	parser := &stubStatementParser{rows: []*ai.ParsedTransaction{
		{Date: "03/01/2025", Description: "BAD DATE", Amount: decimal.NewFromInt(100), Type: "Paid"},
		{Date: "2025-03-02", Description: "BAD TYPE", Amount: decimal.NewFromInt(100), Type: "Debit"},
		{Date: "2025-03-03", Description: "COFFEE", Amount: decimal.NewFromInt(150), Category: "Food & Drinks", Type: "Paid"},
	}}
	svc, f := newStatementFixture(parser)

	result, err := svc.Import(context.Background(), f.user.ID, []byte("%PDF-1.4"))
	require.NoError(t, err)

	assert.Equal(t, 3, result.RowsParsed)
	assert.Equal(t, 1, result.RowsImported)
	assert.Equal(t, 2, result.RowsSkipped)
}

func TestStatementImport_ReuploadDeduplicates(t *testing.T) {
	rows := []*ai.ParsedTransaction{
		{Date: "2025-03-02", Description: "GROCERY STORE", Amount: decimal.NewFromInt(1200), Category: "Groceries", Type: "Paid"},
	}
	svc, f := newStatementFixture(&stubStatementParser{rows: rows})

	first, err := svc.Import(context.Background(), f.user.ID, []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, 1, first.RowsImported)

	second, err := svc.Import(context.Background(), f.user.ID, []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, 0, second.RowsImported)

	txns, err := f.transactionRepo.ListByUser(f.user.ID, nil)
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestStatementImport_DisabledWithoutParser(t *testing.T) {
	svc, f := newStatementFixture(nil)

	_, err := svc.Import(context.Background(), f.user.ID, []byte("%PDF-1.4"))
	assert.ErrorIs(t, err, ErrStatementParsingDisabled)
}

func TestStatementImport_RejectsOversizedUpload(t *testing.T) {
	svc, f := newStatementFixture(&stubStatementParser{})

	_, err := svc.Import(context.Background(), f.user.ID, make([]byte, maxStatementSize+1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
