package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, user_id, title, amount, direction, category, occurred_at,
	include_in_total, fingerprint, parsed, statement_tag, attachment_key,
	ai_category_suggestion, is_anomaly, created_at`

// Create inserts a transaction and returns the stored row
func (r *TransactionRepository) Create(t *domain.Transaction) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(t.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	query := `
		INSERT INTO transactions (user_id, title, amount, direction, category, occurred_at,
			include_in_total, fingerprint, parsed, statement_tag, attachment_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + transactionColumns

	row := r.pool.QueryRow(context.Background(), query,
		pgUUID(t.UserID), t.Title, amount, string(t.Direction), t.Category,
		pgtype.Timestamptz{Time: t.OccurredAt, Valid: true}, t.IncludeInTotal,
		stringPtrToPgText(t.Fingerprint), t.Parsed,
		stringPtrToPgText(t.StatementTag), stringPtrToPgText(t.AttachmentKey))
	return scanTransaction(row)
}

// createIfAbsentQuery targets the partial unique index on
// (user_id, fingerprint). The conflict target must repeat the index
// predicate or Postgres cannot infer the partial index as arbiter; the
// insert always supplies a fingerprint, so the predicate holds.
const createIfAbsentQuery = `
	INSERT INTO transactions (user_id, title, amount, direction, category, occurred_at,
		include_in_total, fingerprint, parsed, statement_tag, attachment_key)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (user_id, fingerprint) WHERE fingerprint IS NOT NULL DO NOTHING`

// CreateIfAbsent inserts unless the fingerprint already exists for the user.
func (r *TransactionRepository) CreateIfAbsent(t *domain.Transaction) (bool, error) {
	amount, err := decimalToPgNumeric(t.Amount)
	if err != nil {
		return false, fmt.Errorf("invalid amount: %w", err)
	}

	tag, err := r.pool.Exec(context.Background(), createIfAbsentQuery,
		pgUUID(t.UserID), t.Title, amount, string(t.Direction), t.Category,
		pgtype.Timestamptz{Time: t.OccurredAt, Valid: true}, t.IncludeInTotal,
		stringPtrToPgText(t.Fingerprint), t.Parsed,
		stringPtrToPgText(t.StatementTag), stringPtrToPgText(t.AttachmentKey))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// GetByID retrieves a transaction by ID
func (r *TransactionRepository) GetByID(id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	txn, err := scanTransaction(r.pool.QueryRow(context.Background(), query, pgUUID(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return txn, nil
}

// ListByUser returns the user's transactions newest first, optionally filtered
func (r *TransactionRepository) ListByUser(userID uuid.UUID, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`
	args := []any{pgUUID(userID)}
	query, args = appendFilters(query, args, filters)
	query += ` ORDER BY occurred_at DESC, created_at DESC`

	rows, err := r.pool.Query(context.Background(), query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []*domain.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}
	return transactions, rows.Err()
}

// Delete removes a transaction if it belongs to the user
func (r *TransactionRepository) Delete(userID, id uuid.UUID) error {
	const query = `DELETE FROM transactions WHERE id = $1 AND user_id = $2`

	tag, err := r.pool.Exec(context.Background(), query, pgUUID(id), pgUUID(userID))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// SumForMonth sums included amounts for one direction within a calendar month
func (r *TransactionRepository) SumForMonth(userID uuid.UUID, direction domain.TransactionDirection, year, month int) (decimal.Decimal, error) {
	const query = `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND direction = $2 AND include_in_total
		  AND occurred_at >= $3 AND occurred_at < $4`

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var sum pgtype.Numeric
	err := r.pool.QueryRow(context.Background(), query,
		pgUUID(userID), string(direction),
		pgtype.Timestamptz{Time: start, Valid: true},
		pgtype.Timestamptz{Time: end, Valid: true}).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(sum), nil
}

// SumAllTime sums included amounts for one direction over the entire history
func (r *TransactionRepository) SumAllTime(userID uuid.UUID, direction domain.TransactionDirection) (decimal.Decimal, error) {
	const query = `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND direction = $2 AND include_in_total`

	var sum pgtype.Numeric
	err := r.pool.QueryRow(context.Background(), query, pgUUID(userID), string(direction)).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(sum), nil
}

// SumByFilter sums amounts for one direction over a filtered view. Unlike
// the summary sums, listing totals count every record, including those
// excluded from summary totals.
func (r *TransactionRepository) SumByFilter(userID uuid.UUID, direction domain.TransactionDirection, filters *domain.TransactionFilters) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND direction = $2`
	args := []any{pgUUID(userID), string(direction)}
	query, args = appendFilters(query, args, filters)

	var sum pgtype.Numeric
	err := r.pool.QueryRow(context.Background(), query, args...).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(sum), nil
}

// CategoryTotalsForMonth aggregates included paid amounts per category
func (r *TransactionRepository) CategoryTotalsForMonth(userID uuid.UUID, year, month int) ([]*domain.CategoryTotal, error) {
	const query = `
		SELECT category, COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND direction = $2 AND include_in_total
		  AND occurred_at >= $3 AND occurred_at < $4
		GROUP BY category
		ORDER BY 2 DESC`

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	rows, err := r.pool.Query(context.Background(), query,
		pgUUID(userID), string(domain.DirectionPaid),
		pgtype.Timestamptz{Time: start, Valid: true},
		pgtype.Timestamptz{Time: end, Valid: true})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := []*domain.CategoryTotal{}
	for rows.Next() {
		var (
			category string
			sum      pgtype.Numeric
		)
		if err := rows.Scan(&category, &sum); err != nil {
			return nil, err
		}
		totals = append(totals, &domain.CategoryTotal{Category: category, Total: pgNumericToDecimal(sum)})
	}
	return totals, rows.Err()
}

// AverageAmount returns the mean included amount for one direction,
// excluding the given transaction
func (r *TransactionRepository) AverageAmount(userID uuid.UUID, direction domain.TransactionDirection, excludeID uuid.UUID) (decimal.Decimal, error) {
	const query = `
		SELECT COALESCE(AVG(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND direction = $2 AND include_in_total AND id <> $3`

	var avg pgtype.Numeric
	err := r.pool.QueryRow(context.Background(), query, pgUUID(userID), string(direction), pgUUID(excludeID)).Scan(&avg)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(avg), nil
}

// FindSimilarWithin looks for another transaction by the same user with the
// same title and amount dated within the window before occurredAt. Returns
// (nil, nil) when none exists.
func (r *TransactionRepository) FindSimilarWithin(userID, excludeID uuid.UUID, title string, amount decimal.Decimal, occurredAt time.Time, window time.Duration) (*domain.Transaction, error) {
	amountNum, err := decimalToPgNumeric(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1 AND id <> $2 AND title = $3 AND amount = $4
		  AND occurred_at >= $5 AND occurred_at <= $6
		ORDER BY occurred_at DESC
		LIMIT 1`

	row := r.pool.QueryRow(context.Background(), query,
		pgUUID(userID), pgUUID(excludeID), title, amountNum,
		pgtype.Timestamptz{Time: occurredAt.Add(-window), Valid: true},
		pgtype.Timestamptz{Time: occurredAt, Valid: true})

	txn, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return txn, nil
}

// SetCategorySuggestion stores the AI category suggestion on a transaction
func (r *TransactionRepository) SetCategorySuggestion(id uuid.UUID, category string) error {
	const query = `UPDATE transactions SET ai_category_suggestion = $2 WHERE id = $1`

	tag, err := r.pool.Exec(context.Background(), query, pgUUID(id), category)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// MarkAnomaly flags a transaction as anomalous
func (r *TransactionRepository) MarkAnomaly(id uuid.UUID) error {
	const query = `UPDATE transactions SET is_anomaly = TRUE WHERE id = $1`

	tag, err := r.pool.Exec(context.Background(), query, pgUUID(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// appendFilters extends a WHERE clause with the optional listing filters
func appendFilters(query string, args []any, filters *domain.TransactionFilters) (string, []any) {
	if filters == nil {
		return query, args
	}
	if filters.Parsed != nil {
		args = append(args, *filters.Parsed)
		query += fmt.Sprintf(" AND parsed = $%d", len(args))
	}
	if filters.WithAttachment != nil {
		if *filters.WithAttachment {
			query += " AND attachment_key IS NOT NULL"
		} else {
			query += " AND attachment_key IS NULL"
		}
	}
	if filters.Direction != nil {
		args = append(args, string(*filters.Direction))
		query += fmt.Sprintf(" AND direction = $%d", len(args))
	}
	if filters.Category != nil {
		args = append(args, *filters.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	return query, args
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t             domain.Transaction
		id            pgtype.UUID
		userID        pgtype.UUID
		amount        pgtype.Numeric
		direction     string
		occurredAt    pgtype.Timestamptz
		fingerprint   pgtype.Text
		statementTag  pgtype.Text
		attachmentKey pgtype.Text
		suggestion    pgtype.Text
		createdAt     pgtype.Timestamptz
	)
	err := row.Scan(&id, &userID, &t.Title, &amount, &direction, &t.Category, &occurredAt,
		&t.IncludeInTotal, &fingerprint, &t.Parsed, &statementTag, &attachmentKey,
		&suggestion, &t.IsAnomaly, &createdAt)
	if err != nil {
		return nil, err
	}

	t.ID = pgUUIDToUUID(id)
	t.UserID = pgUUIDToUUID(userID)
	t.Amount = pgNumericToDecimal(amount)
	t.Direction = domain.TransactionDirection(direction)
	t.OccurredAt = occurredAt.Time
	t.Fingerprint = pgTextToStringPtr(fingerprint)
	t.StatementTag = pgTextToStringPtr(statementTag)
	t.AttachmentKey = pgTextToStringPtr(attachmentKey)
	t.AICategorySuggestion = pgTextToStringPtr(suggestion)
	t.CreatedAt = createdAt.Time
	return &t, nil
}
