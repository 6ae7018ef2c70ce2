package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents a user in the system. The ledger core treats the financial
// profile fields (MonthlyIncome, SavingsGoal) as read-only inputs; account
// management belongs to the excluded auth layer.
type User struct {
	ID            uuid.UUID       `json:"id"`
	Email         string          `json:"email"`
	FullName      *string         `json:"fullName,omitempty"`
	MonthlyIncome decimal.Decimal `json:"monthlyIncome"`
	SavingsGoal   decimal.Decimal `json:"savingsGoal"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// UserRepository defines the interface for user lookups
type UserRepository interface {
	GetByID(id uuid.UUID) (*User, error)
}
