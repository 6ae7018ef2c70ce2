package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PlanTier string

const (
	PlanTierMicro  PlanTier = "micro"
	PlanTierSafe   PlanTier = "safe"
	PlanTierGrowth PlanTier = "growth"
)

// PlannerConfig holds the bucket percentages for the micro-investment
// planner. It is always passed explicitly at call time; the planner never
// reads ambient configuration.
type PlannerConfig struct {
	MicroPercent  decimal.Decimal
	SafePercent   decimal.Decimal
	GrowthPercent decimal.Decimal
}

// DefaultPlannerConfig returns the documented 50/30/20 split.
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		MicroPercent:  decimal.NewFromInt(50),
		SafePercent:   decimal.NewFromInt(30),
		GrowthPercent: decimal.NewFromInt(20),
	}
}

// InvestmentAllocation splits a savings goal across the three risk buckets.
// The invariant Micro + Safe + Growth == the original goal holds exactly;
// any rounding remainder is folded into the micro bucket.
type InvestmentAllocation struct {
	Micro         decimal.Decimal `json:"micro"`
	MicroPercent  decimal.Decimal `json:"micro_percent"`
	Safe          decimal.Decimal `json:"safe"`
	SafePercent   decimal.Decimal `json:"safe_percent"`
	Growth        decimal.Decimal `json:"growth"`
	GrowthPercent decimal.Decimal `json:"growth_percent"`
}

// InvestmentSuggestion is a concrete instrument suggestion. The descriptive
// metadata is fixed user-facing guidance text, reproduced verbatim.
type InvestmentSuggestion struct {
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Risk        string          `json:"risk"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	ReturnRange string          `json:"return_range"`
	MinAmount   int             `json:"min_amount"`
	Tooltip     string          `json:"tooltip"`
}

// InvestmentPlan is the planner output for a savings goal.
type InvestmentPlan struct {
	Budget      decimal.Decimal         `json:"budget"`
	Tier        PlanTier                `json:"tier"`
	Allocation  InvestmentAllocation    `json:"allocation"`
	Suggestions []*InvestmentSuggestion `json:"suggestions"`
}

// StoredInvestmentPlan is a persisted plan, kept as advisory history.
type StoredInvestmentPlan struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	SavingsGoal decimal.Decimal `json:"savingsGoal"`
	Plan        *InvestmentPlan `json:"plan"`
	AdviceText  *string         `json:"adviceText,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// InvestmentPlanRepository defines the interface for plan history
type InvestmentPlanRepository interface {
	Create(plan *StoredInvestmentPlan) (*StoredInvestmentPlan, error)
	ListByUser(userID uuid.UUID) ([]*StoredInvestmentPlan, error)
}
