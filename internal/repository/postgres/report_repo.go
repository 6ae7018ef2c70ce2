package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AIReportRepository implements domain.AIReportRepository using PostgreSQL.
// The category snapshot is stored as JSONB next to the narrative text.
type AIReportRepository struct {
	pool *pgxpool.Pool
}

// NewAIReportRepository creates a new AIReportRepository
func NewAIReportRepository(pool *pgxpool.Pool) *AIReportRepository {
	return &AIReportRepository{pool: pool}
}

const reportColumns = `id, user_id, type, year, month, content, data_snapshot, created_at`

// Upsert inserts or refreshes the report for (user, type, year, month)
func (r *AIReportRepository) Upsert(report *domain.AIReport) (*domain.AIReport, error) {
	snapshot, err := json.Marshal(report.DataSnapshot)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	query := `
		INSERT INTO ai_reports (user_id, type, year, month, content, data_snapshot)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, type, year, month) DO UPDATE SET
			content = EXCLUDED.content,
			data_snapshot = EXCLUDED.data_snapshot,
			created_at = NOW()
		RETURNING ` + reportColumns

	return scanReport(r.pool.QueryRow(context.Background(), query,
		pgUUID(report.UserID), report.Type, report.Year, report.Month, report.Content, snapshot))
}

// GetByMonth retrieves the monthly insight report for (user, year, month)
func (r *AIReportRepository) GetByMonth(userID uuid.UUID, year, month int) (*domain.AIReport, error) {
	query := `SELECT ` + reportColumns + `
		FROM ai_reports
		WHERE user_id = $1 AND type = $2 AND year = $3 AND month = $4`

	report, err := scanReport(r.pool.QueryRow(context.Background(), query,
		pgUUID(userID), domain.ReportTypeMonthlyInsight, year, month))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return report, nil
}

func scanReport(row pgx.Row) (*domain.AIReport, error) {
	var (
		report    domain.AIReport
		id        pgtype.UUID
		userID    pgtype.UUID
		snapshot  []byte
		createdAt pgtype.Timestamptz
	)
	err := row.Scan(&id, &userID, &report.Type, &report.Year, &report.Month,
		&report.Content, &snapshot, &createdAt)
	if err != nil {
		return nil, err
	}

	report.ID = pgUUIDToUUID(id)
	report.UserID = pgUUIDToUUID(userID)
	report.CreatedAt = createdAt.Time
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &report.DataSnapshot); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot: %w", err)
		}
	}
	return &report, nil
}
