package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SummaryRepository implements domain.SummaryRepository using PostgreSQL
type SummaryRepository struct {
	pool *pgxpool.Pool
}

// NewSummaryRepository creates a new SummaryRepository
func NewSummaryRepository(pool *pgxpool.Pool) *SummaryRepository {
	return &SummaryRepository{pool: pool}
}

const summaryColumns = `id, user_id, year, month, total_income, total_expenses,
	total_savings, current_balance, goal_status, last_updated`

// GetByMonth retrieves the stored summary for (user, year, month)
func (r *SummaryRepository) GetByMonth(userID uuid.UUID, year, month int) (*domain.MonthlySummary, error) {
	query := `SELECT ` + summaryColumns + `
		FROM monthly_summaries
		WHERE user_id = $1 AND year = $2 AND month = $3`

	summary, err := scanSummary(r.pool.QueryRow(context.Background(), query, pgUUID(userID), year, month))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSummaryNotFound
		}
		return nil, err
	}
	return summary, nil
}

// Upsert inserts or overwrites the summary row for (user, year, month)
func (r *SummaryRepository) Upsert(s *domain.MonthlySummary) (*domain.MonthlySummary, error) {
	totalIncome, err := decimalToPgNumeric(s.TotalIncome)
	if err != nil {
		return nil, fmt.Errorf("invalid total income: %w", err)
	}
	totalExpenses, err := decimalToPgNumeric(s.TotalExpenses)
	if err != nil {
		return nil, fmt.Errorf("invalid total expenses: %w", err)
	}
	totalSavings, err := decimalToPgNumeric(s.TotalSavings)
	if err != nil {
		return nil, fmt.Errorf("invalid total savings: %w", err)
	}
	currentBalance, err := decimalToPgNumeric(s.CurrentBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid current balance: %w", err)
	}

	query := `
		INSERT INTO monthly_summaries (user_id, year, month, total_income, total_expenses,
			total_savings, current_balance, goal_status, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (user_id, year, month) DO UPDATE SET
			total_income = EXCLUDED.total_income,
			total_expenses = EXCLUDED.total_expenses,
			total_savings = EXCLUDED.total_savings,
			current_balance = EXCLUDED.current_balance,
			goal_status = EXCLUDED.goal_status,
			last_updated = NOW()
		RETURNING ` + summaryColumns

	return scanSummary(r.pool.QueryRow(context.Background(), query,
		pgUUID(s.UserID), s.Year, s.Month,
		totalIncome, totalExpenses, totalSavings, currentBalance, string(s.GoalStatus)))
}

func scanSummary(row pgx.Row) (*domain.MonthlySummary, error) {
	var (
		s              domain.MonthlySummary
		id             pgtype.UUID
		userID         pgtype.UUID
		totalIncome    pgtype.Numeric
		totalExpenses  pgtype.Numeric
		totalSavings   pgtype.Numeric
		currentBalance pgtype.Numeric
		goalStatus     string
		lastUpdated    pgtype.Timestamptz
	)
	err := row.Scan(&id, &userID, &s.Year, &s.Month, &totalIncome, &totalExpenses,
		&totalSavings, &currentBalance, &goalStatus, &lastUpdated)
	if err != nil {
		return nil, err
	}

	s.ID = pgUUIDToUUID(id)
	s.UserID = pgUUIDToUUID(userID)
	s.TotalIncome = pgNumericToDecimal(totalIncome)
	s.TotalExpenses = pgNumericToDecimal(totalExpenses)
	s.TotalSavings = pgNumericToDecimal(totalSavings)
	s.CurrentBalance = pgNumericToDecimal(currentBalance)
	s.GoalStatus = domain.GoalStatus(goalStatus)
	s.LastUpdated = lastUpdated.Time
	return &s, nil
}
