package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InvestmentPlanRepository implements domain.InvestmentPlanRepository using
// PostgreSQL. The plan body (allocation + suggestions) is stored as JSONB.
type InvestmentPlanRepository struct {
	pool *pgxpool.Pool
}

// NewInvestmentPlanRepository creates a new InvestmentPlanRepository
func NewInvestmentPlanRepository(pool *pgxpool.Pool) *InvestmentPlanRepository {
	return &InvestmentPlanRepository{pool: pool}
}

const planColumns = `id, user_id, savings_goal, plan, advice_text, created_at`

// Create stores a plan
func (r *InvestmentPlanRepository) Create(plan *domain.StoredInvestmentPlan) (*domain.StoredInvestmentPlan, error) {
	goal, err := decimalToPgNumeric(plan.SavingsGoal)
	if err != nil {
		return nil, fmt.Errorf("invalid savings goal: %w", err)
	}
	body, err := json.Marshal(plan.Plan)
	if err != nil {
		return nil, fmt.Errorf("marshal plan: %w", err)
	}

	query := `
		INSERT INTO investment_plans (user_id, savings_goal, plan, advice_text)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + planColumns

	return scanPlan(r.pool.QueryRow(context.Background(), query,
		pgUUID(plan.UserID), goal, body, stringPtrToPgText(plan.AdviceText)))
}

// ListByUser returns the user's plans, newest first
func (r *InvestmentPlanRepository) ListByUser(userID uuid.UUID) ([]*domain.StoredInvestmentPlan, error) {
	query := `SELECT ` + planColumns + `
		FROM investment_plans
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(context.Background(), query, pgUUID(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []*domain.StoredInvestmentPlan{}
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

func scanPlan(row pgx.Row) (*domain.StoredInvestmentPlan, error) {
	var (
		plan       domain.StoredInvestmentPlan
		id         pgtype.UUID
		userID     pgtype.UUID
		goal       pgtype.Numeric
		body       []byte
		adviceText pgtype.Text
		createdAt  pgtype.Timestamptz
	)
	err := row.Scan(&id, &userID, &goal, &body, &adviceText, &createdAt)
	if err != nil {
		return nil, err
	}

	plan.ID = pgUUIDToUUID(id)
	plan.UserID = pgUUIDToUUID(userID)
	plan.SavingsGoal = pgNumericToDecimal(goal)
	plan.AdviceText = pgTextToStringPtr(adviceText)
	plan.CreatedAt = createdAt.Time
	if len(body) > 0 {
		var p domain.InvestmentPlan
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("unmarshal plan: %w", err)
		}
		plan.Plan = &p
	}
	return &plan, nil
}
