// Package testutil provides map-backed in-memory repository implementations
// for service tests. They mirror the PostgreSQL semantics the services rely
// on, including fingerprint deduplication and upsert-by-month.
package testutil

import (
	"sync"
	"time"

	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockUserRepo is an in-memory domain.UserRepository
type MockUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

// Add seeds a user, assigning an ID when absent
func (m *MockUserRepo) Add(user *domain.User) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.users[user.ID] = user
	return user
}

func (m *MockUserRepo) GetByID(id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copy := *user
	return &copy, nil
}

// MockTransactionRepo is an in-memory domain.TransactionRepository
type MockTransactionRepo struct {
	mu           sync.Mutex
	transactions map[uuid.UUID]*domain.Transaction
}

func NewMockTransactionRepo() *MockTransactionRepo {
	return &MockTransactionRepo{transactions: make(map[uuid.UUID]*domain.Transaction)}
}

func (m *MockTransactionRepo) Create(t *domain.Transaction) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *t
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now().UTC()
	m.transactions[stored.ID] = &stored
	result := stored
	return &result, nil
}

func (m *MockTransactionRepo) CreateIfAbsent(t *domain.Transaction) (bool, error) {
	m.mu.Lock()
	if t.Fingerprint != nil {
		for _, existing := range m.transactions {
			if existing.UserID == t.UserID && existing.Fingerprint != nil &&
				*existing.Fingerprint == *t.Fingerprint {
				m.mu.Unlock()
				return false, nil
			}
		}
	}
	m.mu.Unlock()
	_, err := m.Create(t)
	return err == nil, err
}

func (m *MockTransactionRepo) GetByID(id uuid.UUID) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	copy := *t
	return &copy, nil
}

func (m *MockTransactionRepo) ListByUser(userID uuid.UUID, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*domain.Transaction{}
	for _, t := range m.transactions {
		if t.UserID != userID || !matchesFilters(t, filters) {
			continue
		}
		copy := *t
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockTransactionRepo) Delete(userID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok || t.UserID != userID {
		return domain.ErrTransactionNotFound
	}
	delete(m.transactions, id)
	return nil
}

func (m *MockTransactionRepo) SumForMonth(userID uuid.UUID, direction domain.TransactionDirection, year, month int) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := decimal.Zero
	for _, t := range m.transactions {
		if t.UserID != userID || t.Direction != direction || !t.IncludeInTotal {
			continue
		}
		at := t.OccurredAt.UTC()
		if at.Year() == year && int(at.Month()) == month {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (m *MockTransactionRepo) SumAllTime(userID uuid.UUID, direction domain.TransactionDirection) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := decimal.Zero
	for _, t := range m.transactions {
		if t.UserID == userID && t.Direction == direction && t.IncludeInTotal {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (m *MockTransactionRepo) SumByFilter(userID uuid.UUID, direction domain.TransactionDirection, filters *domain.TransactionFilters) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := decimal.Zero
	for _, t := range m.transactions {
		if t.UserID == userID && t.Direction == direction && matchesFilters(t, filters) {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (m *MockTransactionRepo) CategoryTotalsForMonth(userID uuid.UUID, year, month int) ([]*domain.CategoryTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byCategory := map[string]decimal.Decimal{}
	for _, t := range m.transactions {
		if t.UserID != userID || t.Direction != domain.DirectionPaid || !t.IncludeInTotal {
			continue
		}
		at := t.OccurredAt.UTC()
		if at.Year() == year && int(at.Month()) == month {
			byCategory[t.Category] = byCategory[t.Category].Add(t.Amount)
		}
	}
	totals := []*domain.CategoryTotal{}
	for category, total := range byCategory {
		totals = append(totals, &domain.CategoryTotal{Category: category, Total: total})
	}
	return totals, nil
}

func (m *MockTransactionRepo) AverageAmount(userID uuid.UUID, direction domain.TransactionDirection, excludeID uuid.UUID) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := decimal.Zero
	count := 0
	for _, t := range m.transactions {
		if t.UserID == userID && t.ID != excludeID && t.Direction == direction && t.IncludeInTotal {
			sum = sum.Add(t.Amount)
			count++
		}
	}
	if count == 0 {
		return decimal.Zero, nil
	}
	return sum.Div(decimal.NewFromInt(int64(count))), nil
}

func (m *MockTransactionRepo) FindSimilarWithin(userID, excludeID uuid.UUID, title string, amount decimal.Decimal, occurredAt time.Time, window time.Duration) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	earliest := occurredAt.Add(-window)
	for _, t := range m.transactions {
		if t.UserID != userID || t.ID == excludeID {
			continue
		}
		if t.Title == title && t.Amount.Equal(amount) &&
			!t.OccurredAt.Before(earliest) && !t.OccurredAt.After(occurredAt) {
			copy := *t
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockTransactionRepo) SetCategorySuggestion(id uuid.UUID, category string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	t.AICategorySuggestion = &category
	return nil
}

func (m *MockTransactionRepo) MarkAnomaly(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	t.IsAnomaly = true
	return nil
}

func matchesFilters(t *domain.Transaction, filters *domain.TransactionFilters) bool {
	if filters == nil {
		return true
	}
	if filters.Parsed != nil && t.Parsed != *filters.Parsed {
		return false
	}
	if filters.WithAttachment != nil && (t.AttachmentKey != nil) != *filters.WithAttachment {
		return false
	}
	if filters.Direction != nil && t.Direction != *filters.Direction {
		return false
	}
	if filters.Category != nil && t.Category != *filters.Category {
		return false
	}
	return true
}

type summaryKey struct {
	userID uuid.UUID
	year   int
	month  int
}

// MockSummaryRepo is an in-memory domain.SummaryRepository
type MockSummaryRepo struct {
	mu        sync.Mutex
	summaries map[summaryKey]*domain.MonthlySummary
}

func NewMockSummaryRepo() *MockSummaryRepo {
	return &MockSummaryRepo{summaries: make(map[summaryKey]*domain.MonthlySummary)}
}

func (m *MockSummaryRepo) GetByMonth(userID uuid.UUID, year, month int) (*domain.MonthlySummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.summaries[summaryKey{userID, year, month}]
	if !ok {
		return nil, domain.ErrSummaryNotFound
	}
	copy := *s
	return &copy, nil
}

func (m *MockSummaryRepo) Upsert(s *domain.MonthlySummary) (*domain.MonthlySummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := summaryKey{s.UserID, s.Year, s.Month}
	stored := *s
	if existing, ok := m.summaries[key]; ok {
		stored.ID = existing.ID
	} else {
		stored.ID = uuid.New()
	}
	stored.LastUpdated = time.Now().UTC()
	m.summaries[key] = &stored
	result := stored
	return &result, nil
}

// Count returns the number of stored summary rows
func (m *MockSummaryRepo) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.summaries)
}

// MockSavingsRecommendationRepo is an in-memory domain.SavingsRecommendationRepository
type MockSavingsRecommendationRepo struct {
	mu   sync.Mutex
	recs []*domain.SavingsRecommendation
}

func NewMockSavingsRecommendationRepo() *MockSavingsRecommendationRepo {
	return &MockSavingsRecommendationRepo{}
}

func (m *MockSavingsRecommendationRepo) Create(rec *domain.SavingsRecommendation) (*domain.SavingsRecommendation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *rec
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now().UTC()
	m.recs = append(m.recs, &stored)
	result := stored
	return &result, nil
}

func (m *MockSavingsRecommendationRepo) ListByUser(userID uuid.UUID) ([]*domain.SavingsRecommendation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*domain.SavingsRecommendation{}
	for _, rec := range m.recs {
		if rec.UserID == userID {
			copy := *rec
			result = append(result, &copy)
		}
	}
	return result, nil
}

// MockInvestmentPlanRepo is an in-memory domain.InvestmentPlanRepository
type MockInvestmentPlanRepo struct {
	mu    sync.Mutex
	plans []*domain.StoredInvestmentPlan
}

func NewMockInvestmentPlanRepo() *MockInvestmentPlanRepo {
	return &MockInvestmentPlanRepo{}
}

func (m *MockInvestmentPlanRepo) Create(plan *domain.StoredInvestmentPlan) (*domain.StoredInvestmentPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *plan
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now().UTC()
	m.plans = append(m.plans, &stored)
	result := stored
	return &result, nil
}

func (m *MockInvestmentPlanRepo) ListByUser(userID uuid.UUID) ([]*domain.StoredInvestmentPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*domain.StoredInvestmentPlan{}
	for _, plan := range m.plans {
		if plan.UserID == userID {
			copy := *plan
			result = append(result, &copy)
		}
	}
	return result, nil
}

// MockAnomalyRepo is an in-memory domain.AnomalyWarningRepository
type MockAnomalyRepo struct {
	mu       sync.Mutex
	warnings []*domain.AnomalyWarning
}

func NewMockAnomalyRepo() *MockAnomalyRepo {
	return &MockAnomalyRepo{}
}

func (m *MockAnomalyRepo) Create(w *domain.AnomalyWarning) (*domain.AnomalyWarning, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *w
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now().UTC()
	m.warnings = append(m.warnings, &stored)
	result := stored
	return &result, nil
}

func (m *MockAnomalyRepo) ListByUser(userID uuid.UUID) ([]*domain.AnomalyWarning, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*domain.AnomalyWarning{}
	for _, w := range m.warnings {
		if w.UserID == userID {
			copy := *w
			result = append(result, &copy)
		}
	}
	return result, nil
}

type reportKey struct {
	userID uuid.UUID
	typ    string
	year   int
	month  int
}

// MockReportRepo is an in-memory domain.AIReportRepository
type MockReportRepo struct {
	mu      sync.Mutex
	reports map[reportKey]*domain.AIReport
}

func NewMockReportRepo() *MockReportRepo {
	return &MockReportRepo{reports: make(map[reportKey]*domain.AIReport)}
}

func (m *MockReportRepo) Upsert(report *domain.AIReport) (*domain.AIReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := reportKey{report.UserID, report.Type, report.Year, report.Month}
	stored := *report
	if existing, ok := m.reports[key]; ok {
		stored.ID = existing.ID
	} else {
		stored.ID = uuid.New()
	}
	stored.CreatedAt = time.Now().UTC()
	m.reports[key] = &stored
	result := stored
	return &result, nil
}

func (m *MockReportRepo) GetByMonth(userID uuid.UUID, year, month int) (*domain.AIReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	report, ok := m.reports[reportKey{userID, domain.ReportTypeMonthlyInsight, year, month}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copy := *report
	return &copy, nil
}
