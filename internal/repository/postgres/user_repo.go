package postgres

import (
	"context"
	"errors"

	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID retrieves a user by their UUID
func (r *UserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	const query = `
		SELECT id, email, full_name, monthly_income, savings_goal, created_at, updated_at
		FROM users
		WHERE id = $1`

	var (
		user      domain.User
		pgID      pgtype.UUID
		fullName  pgtype.Text
		income    pgtype.Numeric
		goal      pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := r.pool.QueryRow(context.Background(), query, pgUUID(id)).
		Scan(&pgID, &user.Email, &fullName, &income, &goal, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	user.ID = pgUUIDToUUID(pgID)
	user.FullName = pgTextToStringPtr(fullName)
	user.MonthlyIncome = pgNumericToDecimal(income)
	user.SavingsGoal = pgNumericToDecimal(goal)
	user.CreatedAt = createdAt.Time
	user.UpdatedAt = updatedAt.Time
	return &user, nil
}
