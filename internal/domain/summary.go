package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type GoalStatus string

const (
	GoalStatusPending     GoalStatus = "PENDING"
	GoalStatusAchieved    GoalStatus = "ACHIEVED"
	GoalStatusNotAchieved GoalStatus = "NOT_ACHIEVED"
)

// MonthlySummary is a materialized view over the transaction ledger, keyed
// uniquely by (user, year, month). Every field is recomputable from raw
// transactions plus the user's base monthly income; it is never a source of
// truth.
type MonthlySummary struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"userId"`
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	TotalIncome    decimal.Decimal `json:"totalIncome"`
	TotalExpenses  decimal.Decimal `json:"totalExpenses"`
	TotalSavings   decimal.Decimal `json:"totalSavings"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	GoalStatus     GoalStatus      `json:"goalStatus"`
	LastUpdated    time.Time       `json:"lastUpdated"`
}

// SummaryRepository defines the interface for summary persistence.
// Upsert must be atomic: insert when absent, overwrite when present.
type SummaryRepository interface {
	GetByMonth(userID uuid.UUID, year, month int) (*MonthlySummary, error)
	Upsert(summary *MonthlySummary) (*MonthlySummary, error)
}
