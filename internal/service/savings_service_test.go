package service

import (
	"testing"

	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/finwise/finwise-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateBreakdown_FoundationTier(t *testing.T) {
	breakdown, err := CalculateBreakdown(decimal.RequireFromString("5000"))
	require.NoError(t, err)

	assert.Equal(t, "500", breakdown.Savings.String())
	assert.Equal(t, "3000", breakdown.Needs.String())
	assert.Equal(t, "1500", breakdown.Wants.String())
	assert.Equal(t, "15000", breakdown.EmergencyFundGoal.String())
	assert.Equal(t, "30", breakdown.MonthsToReachGoal.String())
	assert.Equal(t, explanationFoundation, breakdown.Explanation)
}

func TestCalculateBreakdown_TierBoundaries(t *testing.T) {
	tests := []struct {
		name        string
		income      string
		savingsRate string
		explanation string
	}{
		{"just below lower boundary", "9999.99", "0.1", explanationFoundation},
		{"exactly lower boundary", "10000", "0.2", explanationClassic},
		{"exactly upper boundary", "30000", "0.2", explanationClassic},
		{"just above upper boundary", "30000.01", "0.3", explanationAccelerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			income := decimal.RequireFromString(tt.income)
			breakdown, err := CalculateBreakdown(income)
			require.NoError(t, err)

			expectedSavings := income.Mul(decimal.RequireFromString(tt.savingsRate))
			assert.True(t, breakdown.Savings.Equal(expectedSavings),
				"savings %s != expected %s", breakdown.Savings, expectedSavings)
			assert.Equal(t, tt.explanation, breakdown.Explanation)
		})
	}
}

func TestCalculateBreakdown_SplitCoversWholeIncome(t *testing.T) {
	for _, income := range []string{"1", "9999.99", "10000", "25000", "30000", "100000"} {
		breakdown, err := CalculateBreakdown(decimal.RequireFromString(income))
		require.NoError(t, err)

		total := breakdown.Savings.Add(breakdown.Needs).Add(breakdown.Wants)
		assert.True(t, total.Equal(breakdown.Income),
			"income %s: savings+needs+wants = %s", income, total)
	}
}

func TestCalculateBreakdown_MonthsToGoalPerTier(t *testing.T) {
	// fund/savings reduces to 3/rate, so each tier has a fixed horizon:
	// 30 months at 10%, 15 at 20%, 10 at 30%.
	tests := []struct {
		income string
		months string
	}{
		{"5000", "30"},
		{"10000", "15"},
		{"31000", "10"},
	}
	for _, tt := range tests {
		breakdown, err := CalculateBreakdown(decimal.RequireFromString(tt.income))
		require.NoError(t, err)
		assert.Equal(t, tt.months, breakdown.MonthsToReachGoal.String(), "income %s", tt.income)
	}
}

func TestCalculateBreakdown_RejectsNonPositiveIncome(t *testing.T) {
	_, err := CalculateBreakdown(decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidIncome)

	_, err = CalculateBreakdown(decimal.RequireFromString("-100"))
	assert.ErrorIs(t, err, domain.ErrInvalidIncome)
}

func TestSavingsService_Recommend_PersistsHistory(t *testing.T) {
	repo := testutil.NewMockSavingsRecommendationRepo()
	svc := NewSavingsService(repo)
	userID := uuid.New()

	breakdown, err := svc.Recommend(userID, decimal.RequireFromString("20000"))
	require.NoError(t, err)
	assert.Equal(t, "4000", breakdown.Savings.String())

	history, err := svc.History(userID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "20000", history[0].MonthlyIncome.String())
	assert.Equal(t, "4000", history[0].RecommendedSavings.String())
	assert.Equal(t, explanationClassic, history[0].Explanation)
}

func TestSavingsService_Recommend_InvalidIncomeStoresNothing(t *testing.T) {
	repo := testutil.NewMockSavingsRecommendationRepo()
	svc := NewSavingsService(repo)
	userID := uuid.New()

	_, err := svc.Recommend(userID, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidIncome)

	history, err := svc.History(userID)
	require.NoError(t, err)
	assert.Empty(t, history)
}
