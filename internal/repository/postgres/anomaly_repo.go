package postgres

import (
	"context"

	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AnomalyWarningRepository implements domain.AnomalyWarningRepository using PostgreSQL
type AnomalyWarningRepository struct {
	pool *pgxpool.Pool
}

// NewAnomalyWarningRepository creates a new AnomalyWarningRepository
func NewAnomalyWarningRepository(pool *pgxpool.Pool) *AnomalyWarningRepository {
	return &AnomalyWarningRepository{pool: pool}
}

const warningColumns = `id, user_id, transaction_id, type, reason, is_resolved, created_at`

// Create stores a warning
func (r *AnomalyWarningRepository) Create(w *domain.AnomalyWarning) (*domain.AnomalyWarning, error) {
	query := `
		INSERT INTO anomaly_warnings (user_id, transaction_id, type, reason)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + warningColumns

	return scanWarning(r.pool.QueryRow(context.Background(), query,
		pgUUID(w.UserID), pgUUID(w.TransactionID), string(w.Type), w.Reason))
}

// ListByUser returns the user's warnings, newest first
func (r *AnomalyWarningRepository) ListByUser(userID uuid.UUID) ([]*domain.AnomalyWarning, error) {
	query := `SELECT ` + warningColumns + `
		FROM anomaly_warnings
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(context.Background(), query, pgUUID(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	warnings := []*domain.AnomalyWarning{}
	for rows.Next() {
		w, err := scanWarning(rows)
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, w)
	}
	return warnings, rows.Err()
}

func scanWarning(row pgx.Row) (*domain.AnomalyWarning, error) {
	var (
		w             domain.AnomalyWarning
		id            pgtype.UUID
		userID        pgtype.UUID
		transactionID pgtype.UUID
		warningType   string
		createdAt     pgtype.Timestamptz
	)
	err := row.Scan(&id, &userID, &transactionID, &warningType, &w.Reason, &w.IsResolved, &createdAt)
	if err != nil {
		return nil, err
	}

	w.ID = pgUUIDToUUID(id)
	w.UserID = pgUUIDToUUID(userID)
	w.TransactionID = pgUUIDToUUID(transactionID)
	w.Type = domain.AnomalyType(warningType)
	w.CreatedAt = createdAt.Time
	return &w, nil
}
