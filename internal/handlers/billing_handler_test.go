package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toroprop/toro-api/internal/config"
	"github.com/toroprop/toro-api/internal/models"
	"github.com/toroprop/toro-api/internal/repository"
	"github.com/toroprop/toro-api/internal/services"
	"github.com/toroprop/toro-api/pkg/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Setup("test")
	os.Exit(m.Run())
}

// stubBillingStore serves one active contract and no payments
type stubBillingStore struct{}

func (stubBillingStore) ActiveContracts(ctx context.Context) ([]models.Contract, error) {
	return []models.Contract{{
		ID:          1,
		InitialRent: decimal.NewFromInt(100000),
		CurrentRent: decimal.NewFromInt(100000),
		Status:      models.ContractStatusActive,
	}}, nil
}

func (stubBillingStore) PaymentByContractAndPeriod(ctx context.Context, contractID uint, period string) (*models.Payment, error) {
	return nil, nil
}

func (stubBillingStore) PendingPayments(ctx context.Context) ([]models.Payment, error) {
	return []models.Payment{{
		ID:         7,
		ContractID: 1,
		Period:     "2025-01",
		RentAmount: decimal.NewFromInt(150000),
		Status:     models.PaymentStatusPending,
	}}, nil
}

func (stubBillingStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return nil
}

func (stubBillingStore) UpdatePaymentLateFee(ctx context.Context, paymentID uint, fee decimal.Decimal) error {
	return nil
}

type stubUnitOfWork struct{}

func (stubUnitOfWork) Run(ctx context.Context, fn func(store repository.BillingRepository) error) error {
	return fn(stubBillingStore{})
}

func newBillingRouter() *gin.Engine {
	cfg := &config.Config{
		BillingDueDay:           10,
		BillingDailyLateFeeRate: decimal.RequireFromString("0.005"),
	}
	svc := services.NewBillingService(stubUnitOfWork{}, cfg).WithClock(func() time.Time {
		return time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)
	})
	h := NewBillingHandler(svc)

	router := gin.New()
	router.POST("/api/v1/billing/generate", h.Generate)
	router.POST("/api/v1/billing/accrue", h.Accrue)
	return router
}

func TestBillingHandler_Generate(t *testing.T) {
	router := newBillingRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/billing/generate", strings.NewReader(`{"period": "2025-03"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Result services.GenerationResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "2025-03", body.Result.Period)
	assert.Equal(t, 1, body.Result.Created)
	assert.Equal(t, 0, body.Result.Skipped)
}

func TestBillingHandler_Generate_DefaultsToCurrentMonth(t *testing.T) {
	router := newBillingRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/billing/generate", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Result services.GenerationResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "2025-01", body.Result.Period)
}

func TestBillingHandler_Generate_MalformedPeriodIsBadRequest(t *testing.T) {
	router := newBillingRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/billing/generate?period=2025-13", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "periodo inválido")
}

func TestBillingHandler_Accrue(t *testing.T) {
	router := newBillingRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/billing/accrue", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Result services.AccrualResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Result.DryRun)
	assert.Equal(t, 1, body.Result.Updated)
	// 150000 * 0.005 * 5 days
	assert.Equal(t, "3750", body.Result.TotalLateFee.String())
}

func TestBillingHandler_Accrue_DryRun(t *testing.T) {
	router := newBillingRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/billing/accrue?dry_run=true", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Result services.AccrualResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Result.DryRun)
	assert.Equal(t, 1, body.Result.Updated)
}
