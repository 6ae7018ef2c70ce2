package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/finwise/finwise-backend/internal/domain"
	"github.com/finwise/finwise-backend/internal/service"
	"github.com/finwise/finwise-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func newInvestmentHandler() (*InvestmentHandler, *service.InvestmentService) {
	svc := service.NewInvestmentService(testutil.NewMockInvestmentPlanRepo(), domain.DefaultPlannerConfig())
	return NewInvestmentHandler(svc), svc
}

func TestInvestmentPlan_Success(t *testing.T) {
	e := echo.New()
	handler, _ := newInvestmentHandler()
	userID := uuid.New()

	body := `{"savingsGoal": 3000}`
	req := httptest.NewRequest(http.MethodPost, "/api/investments/plan", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := handler.Plan(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var plan domain.InvestmentPlan
	if err := json.Unmarshal(rec.Body.Bytes(), &plan); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if plan.Tier != domain.PlanTierSafe {
		t.Errorf("Expected tier safe, got %s", plan.Tier)
	}
	total := plan.Allocation.Micro.Add(plan.Allocation.Safe).Add(plan.Allocation.Growth)
	if !total.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("Expected allocation to total 3000, got %s", total)
	}
}

func TestInvestmentPlan_NegativeGoal(t *testing.T) {
	e := echo.New()
	handler, _ := newInvestmentHandler()

	body := `{"savingsGoal": -50}`
	req := httptest.NewRequest(http.MethodPost, "/api/investments/plan", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, uuid.New())

	if err := handler.Plan(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestInvestmentHistory_ReturnsStoredPlans(t *testing.T) {
	e := echo.New()
	handler, svc := newInvestmentHandler()
	userID := uuid.New()

	if _, err := svc.PlanAndStore(userID, decimal.NewFromInt(800)); err != nil {
		t.Fatalf("Failed to seed plan: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/investments/history", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupUserContext(c, userID)

	if err := handler.History(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var plans []*domain.StoredInvestmentPlan
	if err := json.Unmarshal(rec.Body.Bytes(), &plans); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(plans) != 1 {
		t.Fatalf("Expected 1 plan, got %d", len(plans))
	}
	if !plans[0].SavingsGoal.Equal(decimal.NewFromInt(800)) {
		t.Errorf("Expected goal 800, got %s", plans[0].SavingsGoal)
	}
	if plans[0].Plan == nil || plans[0].Plan.Tier != domain.PlanTierMicro {
		t.Errorf("Expected stored micro tier plan, got %+v", plans[0].Plan)
	}
}
