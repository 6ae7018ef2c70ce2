package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionDirection string

const (
	DirectionPaid     TransactionDirection = "Paid"
	DirectionReceived TransactionDirection = "Received"
)

// CategoryOthers is the fallback category; only transactions left in it are
// eligible for AI category suggestions.
const CategoryOthers = "Others"

// Categories is the fixed category taxonomy offered to users and to the
// AI categorizer.
var Categories = []string{
	"Food & Drinks",
	"Travel",
	"Bills & Utilities",
	"Shopping",
	"Health",
	"Education",
	"Groceries",
	CategoryOthers,
}

// Transaction is an append-mostly ledger record. Amount, Direction,
// IncludeInTotal and OccurredAt are immutable after creation; only the
// advisory annotations (AICategorySuggestion, IsAnomaly) may change.
type Transaction struct {
	ID                   uuid.UUID            `json:"id"`
	UserID               uuid.UUID            `json:"userId"`
	Title                string               `json:"title"`
	Amount               decimal.Decimal      `json:"amount"`
	Direction            TransactionDirection `json:"direction"`
	Category             string               `json:"category"`
	OccurredAt           time.Time            `json:"occurredAt"`
	IncludeInTotal       bool                 `json:"includeInTotal"`
	Fingerprint          *string              `json:"-"`
	Parsed               bool                 `json:"parsed"`
	StatementTag         *string              `json:"statementTag,omitempty"`
	AttachmentKey        *string              `json:"attachmentKey,omitempty"`
	AICategorySuggestion *string              `json:"aiCategorySuggestion,omitempty"`
	IsAnomaly            bool                 `json:"isAnomaly"`
	CreatedAt            time.Time            `json:"createdAt"`
}

// Fingerprint computes the deduplication fingerprint for a transaction:
// a stable SHA-256 over the identifying fields. Imports treat a fingerprint
// collision as a no-op.
func Fingerprint(userID uuid.UUID, date time.Time, description string, amount decimal.Decimal, direction TransactionDirection) string {
	raw := fmt.Sprintf("%s-%s-%s-%s-%s", userID, date.Format("2006-01-02"), description, amount.Abs().String(), direction)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// TransactionFilters narrows ListByUser results
type TransactionFilters struct {
	Parsed         *bool
	WithAttachment *bool
	Direction      *TransactionDirection
	Category       *string
}

// CategoryTotal is an aggregate of paid amounts per category
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// TransactionRepository defines the interface for transaction persistence
type TransactionRepository interface {
	Create(transaction *Transaction) (*Transaction, error)
	// CreateIfAbsent inserts the transaction unless its fingerprint already
	// exists; it reports whether a row was inserted.
	CreateIfAbsent(transaction *Transaction) (bool, error)
	GetByID(id uuid.UUID) (*Transaction, error)
	ListByUser(userID uuid.UUID, filters *TransactionFilters) ([]*Transaction, error)
	Delete(userID uuid.UUID, id uuid.UUID) error

	// SumForMonth sums included amounts for one direction within a calendar month.
	SumForMonth(userID uuid.UUID, direction TransactionDirection, year, month int) (decimal.Decimal, error)
	// SumAllTime sums included amounts for one direction over the entire history.
	SumAllTime(userID uuid.UUID, direction TransactionDirection) (decimal.Decimal, error)
	SumByFilter(userID uuid.UUID, direction TransactionDirection, filters *TransactionFilters) (decimal.Decimal, error)
	CategoryTotalsForMonth(userID uuid.UUID, year, month int) ([]*CategoryTotal, error)
	// AverageAmount returns the mean included amount for one direction,
	// leaving out excludeID so a record is never compared against itself.
	AverageAmount(userID uuid.UUID, direction TransactionDirection, excludeID uuid.UUID) (decimal.Decimal, error)
	// FindSimilarWithin looks for another transaction by the same user with the
	// same title and amount dated within the window before occurredAt.
	FindSimilarWithin(userID uuid.UUID, excludeID uuid.UUID, title string, amount decimal.Decimal, occurredAt time.Time, window time.Duration) (*Transaction, error)

	// Advisory annotations; never touch the financial fields.
	SetCategorySuggestion(id uuid.UUID, category string) error
	MarkAnomaly(id uuid.UUID) error
}
