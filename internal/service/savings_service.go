package service

import (
	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tier boundaries and rates for the income-based savings split
var (
	lowerTierCeiling = decimal.NewFromInt(10000)
	upperTierCeiling = decimal.NewFromInt(30000)

	emergencyFundMonths = decimal.NewFromInt(3)
)

// Tier explanations are part of the observable contract and must match
// verbatim per tier.
const (
	explanationFoundation = "We recommend a conservative 10% savings rate as you build your financial foundation. Focus on covering essentials first!"
	explanationClassic    = "The classic 50/30/20 rule is perfect for your income level. It balances living well today with security for tomorrow."
	explanationAccelerate = "With your income level, you have a great opportunity to accelerate your wealth building by saving 30%."
)

// SavingsService turns a monthly income figure into a tiered
// needs/wants/savings breakdown and records recommendation history.
type SavingsService struct {
	recommendationRepo domain.SavingsRecommendationRepository
}

// NewSavingsService creates a new SavingsService
func NewSavingsService(recommendationRepo domain.SavingsRecommendationRepository) *SavingsService {
	return &SavingsService{recommendationRepo: recommendationRepo}
}

// CalculateBreakdown is the pure allocation calculator. Tiers:
//
//	income < 10,000          → 10% savings / 60% needs / 30% wants
//	10,000 ≤ income ≤ 30,000 → 20% savings / 50% needs / 30% wants
//	income > 30,000          → 30% savings / 45% needs / 25% wants
//
// The emergency fund goal is three months of income; the months-to-goal
// figure is rounded to one decimal place.
func CalculateBreakdown(income decimal.Decimal) (*domain.SavingsBreakdown, error) {
	if income.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidIncome
	}

	var savingsRate, needsRate, wantsRate decimal.Decimal
	var explanation string

	switch {
	case income.LessThan(lowerTierCeiling):
		savingsRate = decimal.NewFromFloat(0.10)
		needsRate = decimal.NewFromFloat(0.60)
		wantsRate = decimal.NewFromFloat(0.30)
		explanation = explanationFoundation
	case income.LessThanOrEqual(upperTierCeiling):
		savingsRate = decimal.NewFromFloat(0.20)
		needsRate = decimal.NewFromFloat(0.50)
		wantsRate = decimal.NewFromFloat(0.30)
		explanation = explanationClassic
	default:
		savingsRate = decimal.NewFromFloat(0.30)
		needsRate = decimal.NewFromFloat(0.45)
		wantsRate = decimal.NewFromFloat(0.25)
		explanation = explanationAccelerate
	}

	savings := income.Mul(savingsRate)
	emergencyFundGoal := income.Mul(emergencyFundMonths)

	// The tiers never produce a zero savings rate; the guard is for the
	// divide, not a reachable tier.
	monthsToReachGoal := decimal.Zero
	if savings.GreaterThan(decimal.Zero) {
		monthsToReachGoal = emergencyFundGoal.Div(savings).Round(1)
	}

	return &domain.SavingsBreakdown{
		Income:            income,
		Savings:           savings,
		Needs:             income.Mul(needsRate),
		Wants:             income.Mul(wantsRate),
		EmergencyFundGoal: emergencyFundGoal,
		MonthsToReachGoal: monthsToReachGoal,
		Explanation:       explanation,
	}, nil
}

// Recommend computes a breakdown and stores it as recommendation history
func (s *SavingsService) Recommend(userID uuid.UUID, income decimal.Decimal) (*domain.SavingsBreakdown, error) {
	breakdown, err := CalculateBreakdown(income)
	if err != nil {
		return nil, err
	}

	_, err = s.recommendationRepo.Create(&domain.SavingsRecommendation{
		UserID:             userID,
		MonthlyIncome:      breakdown.Income,
		RecommendedSavings: breakdown.Savings,
		NeedsAmount:        breakdown.Needs,
		WantsAmount:        breakdown.Wants,
		EmergencyFundGoal:  breakdown.EmergencyFundGoal,
		MonthsToReachGoal:  breakdown.MonthsToReachGoal,
		Explanation:        breakdown.Explanation,
	})
	if err != nil {
		return nil, err
	}

	return breakdown, nil
}

// History returns stored recommendations, newest first
func (s *SavingsService) History(userID uuid.UUID) ([]*domain.SavingsRecommendation, error) {
	return s.recommendationRepo.ListByUser(userID)
}
