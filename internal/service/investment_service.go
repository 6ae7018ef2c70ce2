package service

import (
	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Goal magnitude thresholds for planner tiers
var (
	microTierCeiling = decimal.NewFromInt(1000)
	safeTierCeiling  = decimal.NewFromInt(5000)

	oneHundred = decimal.NewFromInt(100)
	fifty      = decimal.NewFromInt(50)
	ten        = decimal.NewFromInt(10)
	goldRatio  = decimal.NewFromFloat(0.6)
)

// InvestmentService maps a savings goal to a tiered allocation across risk
// buckets plus concrete instrument suggestions, and records plan history.
type InvestmentService struct {
	planRepo domain.InvestmentPlanRepository
	cfg      domain.PlannerConfig
}

// NewInvestmentService creates a new InvestmentService
func NewInvestmentService(planRepo domain.InvestmentPlanRepository, cfg domain.PlannerConfig) *InvestmentService {
	return &InvestmentService{planRepo: planRepo, cfg: cfg}
}

// PlanInvestment is the pure planner. Goals under 1000 go entirely into the
// micro bucket; larger goals split per cfg percentages (defaults 50/30/20).
// The safe (1000–5000) and growth (>5000) tiers intentionally share the same
// split formula and differ only in label. Bucket amounts are rounded to whole
// currency units with the remainder folded into the micro bucket, so
// micro + safe + growth always equals the goal exactly.
func PlanInvestment(savingsGoal decimal.Decimal, cfg domain.PlannerConfig) (*domain.InvestmentPlan, error) {
	if savingsGoal.IsNegative() {
		return nil, domain.ErrInvalidGoal
	}

	var tier domain.PlanTier
	var micro, safe, growth decimal.Decimal

	switch {
	case savingsGoal.LessThan(microTierCeiling):
		tier = domain.PlanTierMicro
		micro = savingsGoal
		safe = decimal.Zero
		growth = decimal.Zero
	case savingsGoal.LessThan(safeTierCeiling):
		tier = domain.PlanTierSafe
		micro = cfg.MicroPercent.Div(oneHundred).Mul(savingsGoal)
		safe = cfg.SafePercent.Div(oneHundred).Mul(savingsGoal)
		growth = cfg.GrowthPercent.Div(oneHundred).Mul(savingsGoal)
	default:
		tier = domain.PlanTierGrowth
		micro = cfg.MicroPercent.Div(oneHundred).Mul(savingsGoal)
		safe = cfg.SafePercent.Div(oneHundred).Mul(savingsGoal)
		growth = cfg.GrowthPercent.Div(oneHundred).Mul(savingsGoal)
	}

	micro = micro.Round(0)
	safe = safe.Round(0)
	growth = growth.Round(0)

	// Fold the rounding remainder into the micro bucket so the buckets
	// reconcile to the goal exactly.
	diff := savingsGoal.Sub(micro.Add(safe).Add(growth))
	micro = micro.Add(diff)

	allocation := domain.InvestmentAllocation{
		Micro:  micro,
		Safe:   safe,
		Growth: growth,
	}
	if savingsGoal.GreaterThan(decimal.Zero) {
		allocation.MicroPercent = micro.Div(savingsGoal).Mul(oneHundred)
		allocation.SafePercent = safe.Div(savingsGoal).Mul(oneHundred)
		allocation.GrowthPercent = growth.Div(savingsGoal).Mul(oneHundred)
	}

	return &domain.InvestmentPlan{
		Budget:      savingsGoal,
		Tier:        tier,
		Allocation:  allocation,
		Suggestions: buildSuggestions(micro, safe, growth),
	}, nil
}

// buildSuggestions runs the greedy waterfall over the micro bucket and emits
// one fixed instrument per non-empty safe/growth bucket.
func buildSuggestions(micro, safe, growth decimal.Decimal) []*domain.InvestmentSuggestion {
	suggestions := []*domain.InvestmentSuggestion{}

	remaining := micro
	if remaining.GreaterThanOrEqual(oneHundred) {
		amt := decimal.Max(oneHundred, remaining.Mul(goldRatio))
		amt = decimal.Min(remaining, amt)
		amt = amt.Div(ten).Floor().Mul(ten)
		suggestions = append(suggestions, &domain.InvestmentSuggestion{
			Type:        "Digital Gold",
			Amount:      amt,
			Risk:        "Low",
			Image:       "gold.png",
			Description: "Safe asset that protects against inflation.",
			ReturnRange: "10-12% p.a.",
			MinAmount:   100,
			Tooltip:     "24K Gold 99.9% Purity stored in secure vaults.",
		})
		remaining = remaining.Sub(amt)
	}

	if remaining.GreaterThanOrEqual(fifty) {
		suggestions = append(suggestions, &domain.InvestmentSuggestion{
			Type:        "Digital Silver",
			Amount:      remaining,
			Risk:        "Medium",
			Image:       "silver.png",
			Description: "Affordable metal with high industrial demand.",
			ReturnRange: "12-15% p.a.",
			MinAmount:   50,
			Tooltip:     "99.9% Purity Silver. Good for small diversification.",
		})
		remaining = decimal.Zero
	}

	if remaining.GreaterThan(decimal.Zero) {
		suggestions = append(suggestions, &domain.InvestmentSuggestion{
			Type:        "Piggybank Fund",
			Amount:      remaining,
			Risk:        "Low",
			Image:       "piggybank.png",
			Description: "Emergency cash for instant access.",
			ReturnRange: "0-3% p.a.",
			MinAmount:   1,
			Tooltip:     "Keep this as digital cash or savings account balance.",
		})
	}

	if safe.GreaterThan(decimal.Zero) {
		suggestions = append(suggestions, &domain.InvestmentSuggestion{
			Type:        "Mini RD Plan",
			Amount:      safe,
			Risk:        "Low",
			Image:       "rd.png",
			Description: "Guaranteed returns with bank safety.",
			ReturnRange: "6-7.5% p.a.",
			MinAmount:   500,
			Tooltip:     "Recurring Deposit with partner banks.",
		})
	}

	if growth.GreaterThan(decimal.Zero) {
		suggestions = append(suggestions, &domain.InvestmentSuggestion{
			Type:        "Index Fund SIP",
			Amount:      growth,
			Risk:        "Medium",
			Image:       "sip.png",
			Description: "Track top 50 companies for long-term wealth.",
			ReturnRange: "12-16% p.a.",
			MinAmount:   100,
			Tooltip:     "Nifty 50 Index Fund. Low cost, steady growth.",
		})
	}

	return suggestions
}

// PlanAndStore computes a plan with the service's configured percentages and
// persists it as plan history.
func (s *InvestmentService) PlanAndStore(userID uuid.UUID, savingsGoal decimal.Decimal) (*domain.InvestmentPlan, error) {
	plan, err := PlanInvestment(savingsGoal, s.cfg)
	if err != nil {
		return nil, err
	}

	_, err = s.planRepo.Create(&domain.StoredInvestmentPlan{
		UserID:      userID,
		SavingsGoal: savingsGoal,
		Plan:        plan,
	})
	if err != nil {
		return nil, err
	}

	return plan, nil
}

// History returns stored plans, newest first
func (s *InvestmentService) History(userID uuid.UUID) ([]*domain.StoredInvestmentPlan, error) {
	return s.planRepo.ListByUser(userID)
}
