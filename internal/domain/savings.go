package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SavingsBreakdown is the output of the budget allocation calculator:
// a needs/wants/savings split of a monthly income figure plus an
// emergency-fund horizon.
type SavingsBreakdown struct {
	Income            decimal.Decimal `json:"income"`
	Savings           decimal.Decimal `json:"savings"`
	Needs             decimal.Decimal `json:"needs"`
	Wants             decimal.Decimal `json:"wants"`
	EmergencyFundGoal decimal.Decimal `json:"emergencyFundGoal"`
	MonthsToReachGoal decimal.Decimal `json:"monthsToReachGoal"`
	Explanation       string          `json:"explanation"`
}

// SavingsRecommendation is a persisted breakdown, kept as advisory history.
type SavingsRecommendation struct {
	ID                 uuid.UUID       `json:"id"`
	UserID             uuid.UUID       `json:"userId"`
	MonthlyIncome      decimal.Decimal `json:"monthlyIncome"`
	RecommendedSavings decimal.Decimal `json:"recommendedSavings"`
	NeedsAmount        decimal.Decimal `json:"needsAmount"`
	WantsAmount        decimal.Decimal `json:"wantsAmount"`
	EmergencyFundGoal  decimal.Decimal `json:"emergencyFundGoal"`
	MonthsToReachGoal  decimal.Decimal `json:"monthsToReachGoal"`
	Explanation        string          `json:"explanation"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// SavingsRecommendationRepository defines the interface for recommendation history
type SavingsRecommendationRepository interface {
	Create(rec *SavingsRecommendation) (*SavingsRecommendation, error)
	ListByUser(userID uuid.UUID) ([]*SavingsRecommendation, error)
}
