package domain

import (
	"time"

	"github.com/google/uuid"
)

type AnomalyType string

const (
	AnomalyDuplicate    AnomalyType = "DUPLICATE"
	AnomalyLargeExpense AnomalyType = "LARGE_EXPENSE"
)

// AnomalyWarning is an advisory flag attached to a transaction. It never
// affects ledger totals.
type AnomalyWarning struct {
	ID            uuid.UUID   `json:"id"`
	UserID        uuid.UUID   `json:"userId"`
	TransactionID uuid.UUID   `json:"transactionId"`
	Type          AnomalyType `json:"type"`
	Reason        string      `json:"reason"`
	IsResolved    bool        `json:"isResolved"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// AnomalyWarningRepository defines the interface for anomaly persistence
type AnomalyWarningRepository interface {
	Create(warning *AnomalyWarning) (*AnomalyWarning, error)
	ListByUser(userID uuid.UUID) ([]*AnomalyWarning, error)
}

const ReportTypeMonthlyInsight = "MONTHLY_INSIGHT"

// AIReport is generated narrative text over a month's ledger data,
// upserted by (user, year, month).
type AIReport struct {
	ID           uuid.UUID        `json:"id"`
	UserID       uuid.UUID        `json:"userId"`
	Type         string           `json:"type"`
	Year         int              `json:"year"`
	Month        int              `json:"month"`
	Content      string           `json:"content"`
	DataSnapshot []*CategoryTotal `json:"dataSnapshot,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// AIReportRepository defines the interface for report persistence
type AIReportRepository interface {
	Upsert(report *AIReport) (*AIReport, error)
	GetByMonth(userID uuid.UUID, year, month int) (*AIReport, error)
}
