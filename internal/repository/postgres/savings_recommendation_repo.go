package postgres

import (
	"context"
	"fmt"

	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SavingsRecommendationRepository implements
// domain.SavingsRecommendationRepository using PostgreSQL
type SavingsRecommendationRepository struct {
	pool *pgxpool.Pool
}

// NewSavingsRecommendationRepository creates a new SavingsRecommendationRepository
func NewSavingsRecommendationRepository(pool *pgxpool.Pool) *SavingsRecommendationRepository {
	return &SavingsRecommendationRepository{pool: pool}
}

const recommendationColumns = `id, user_id, monthly_income, recommended_savings,
	needs_amount, wants_amount, emergency_fund_goal, months_to_reach_goal,
	explanation, created_at`

// Create stores a recommendation
func (r *SavingsRecommendationRepository) Create(rec *domain.SavingsRecommendation) (*domain.SavingsRecommendation, error) {
	income, err := decimalToPgNumeric(rec.MonthlyIncome)
	if err != nil {
		return nil, fmt.Errorf("invalid monthly income: %w", err)
	}
	savings, err := decimalToPgNumeric(rec.RecommendedSavings)
	if err != nil {
		return nil, fmt.Errorf("invalid recommended savings: %w", err)
	}
	needs, err := decimalToPgNumeric(rec.NeedsAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid needs amount: %w", err)
	}
	wants, err := decimalToPgNumeric(rec.WantsAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid wants amount: %w", err)
	}
	fund, err := decimalToPgNumeric(rec.EmergencyFundGoal)
	if err != nil {
		return nil, fmt.Errorf("invalid emergency fund goal: %w", err)
	}
	months, err := decimalToPgNumeric(rec.MonthsToReachGoal)
	if err != nil {
		return nil, fmt.Errorf("invalid months to reach goal: %w", err)
	}

	query := `
		INSERT INTO savings_recommendations (user_id, monthly_income, recommended_savings,
			needs_amount, wants_amount, emergency_fund_goal, months_to_reach_goal, explanation)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + recommendationColumns

	return scanRecommendation(r.pool.QueryRow(context.Background(), query,
		pgUUID(rec.UserID), income, savings, needs, wants, fund, months, rec.Explanation))
}

// ListByUser returns the user's recommendations, newest first
func (r *SavingsRecommendationRepository) ListByUser(userID uuid.UUID) ([]*domain.SavingsRecommendation, error) {
	query := `SELECT ` + recommendationColumns + `
		FROM savings_recommendations
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(context.Background(), query, pgUUID(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := []*domain.SavingsRecommendation{}
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func scanRecommendation(row pgx.Row) (*domain.SavingsRecommendation, error) {
	var (
		rec       domain.SavingsRecommendation
		id        pgtype.UUID
		userID    pgtype.UUID
		income    pgtype.Numeric
		savings   pgtype.Numeric
		needs     pgtype.Numeric
		wants     pgtype.Numeric
		fund      pgtype.Numeric
		months    pgtype.Numeric
		createdAt pgtype.Timestamptz
	)
	err := row.Scan(&id, &userID, &income, &savings, &needs, &wants, &fund, &months,
		&rec.Explanation, &createdAt)
	if err != nil {
		return nil, err
	}

	rec.ID = pgUUIDToUUID(id)
	rec.UserID = pgUUIDToUUID(userID)
	rec.MonthlyIncome = pgNumericToDecimal(income)
	rec.RecommendedSavings = pgNumericToDecimal(savings)
	rec.NeedsAmount = pgNumericToDecimal(needs)
	rec.WantsAmount = pgNumericToDecimal(wants)
	rec.EmergencyFundGoal = pgNumericToDecimal(fund)
	rec.MonthsToReachGoal = pgNumericToDecimal(months)
	rec.CreatedAt = createdAt.Time
	return &rec, nil
}
