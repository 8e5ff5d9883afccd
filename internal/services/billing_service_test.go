package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toroprop/toro-api/internal/config"
	"github.com/toroprop/toro-api/internal/models"
	"github.com/toroprop/toro-api/internal/repository"
	"github.com/toroprop/toro-api/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Setup("test")
	os.Exit(m.Run())
}

// fakeBillingStore is an in-memory BillingRepository
type fakeBillingStore struct {
	contracts []models.Contract
	payments  []models.Payment
	nextID    uint

	createErr  error
	feeUpdates map[uint]decimal.Decimal
}

func newFakeBillingStore() *fakeBillingStore {
	return &fakeBillingStore{nextID: 1, feeUpdates: make(map[uint]decimal.Decimal)}
}

func (f *fakeBillingStore) ActiveContracts(ctx context.Context) ([]models.Contract, error) {
	var active []models.Contract
	for _, c := range f.contracts {
		if c.Status == models.ContractStatusActive {
			active = append(active, c)
		}
	}
	return active, nil
}

func (f *fakeBillingStore) PaymentByContractAndPeriod(ctx context.Context, contractID uint, period string) (*models.Payment, error) {
	for i := range f.payments {
		if f.payments[i].ContractID == contractID && f.payments[i].Period == period {
			return &f.payments[i], nil
		}
	}
	return nil, nil
}

func (f *fakeBillingStore) PendingPayments(ctx context.Context) ([]models.Payment, error) {
	var pending []models.Payment
	for _, p := range f.payments {
		if p.Status == models.PaymentStatusPending {
			pending = append(pending, p)
		}
	}
	return pending, nil
}

func (f *fakeBillingStore) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, p := range f.payments {
		if p.ContractID == payment.ContractID && p.Period == payment.Period {
			return repository.ErrDuplicatePayment
		}
	}
	payment.ID = f.nextID
	f.nextID++
	f.payments = append(f.payments, *payment)
	return nil
}

func (f *fakeBillingStore) UpdatePaymentLateFee(ctx context.Context, paymentID uint, fee decimal.Decimal) error {
	for i := range f.payments {
		if f.payments[i].ID == paymentID {
			f.payments[i].LateFeeAmount = fee
			f.feeUpdates[paymentID] = fee
			return nil
		}
	}
	return nil
}

// fakeUnitOfWork hands the store straight to fn, tracking invocations
type fakeUnitOfWork struct {
	store *fakeBillingStore
	runs  int
}

func (f *fakeUnitOfWork) Run(ctx context.Context, fn func(store repository.BillingRepository) error) error {
	f.runs++
	return fn(f.store)
}

func testConfig() *config.Config {
	return &config.Config{
		BillingDueDay:           10,
		BillingDailyLateFeeRate: decimal.RequireFromString("0.005"),
	}
}

func fixedClock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, day, 15, 30, 0, 0, time.UTC)
	}
}

func activeContract(id uint, rent int64) models.Contract {
	return models.Contract{
		ID:          id,
		InitialRent: decimal.NewFromInt(rent),
		CurrentRent: decimal.NewFromInt(rent),
		Status:      models.ContractStatusActive,
	}
}

func TestGenerateMonthlyObligations_CreatesOnePaymentPerContract(t *testing.T) {
	store := newFakeBillingStore()
	store.contracts = []models.Contract{activeContract(1, 100000)}
	uow := &fakeUnitOfWork{store: store}

	svc := NewBillingService(uow, testConfig())
	result, err := svc.GenerateMonthlyObligations(context.Background(), "2025-03")

	require.NoError(t, err)
	assert.Equal(t, "2025-03", result.Period)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Skipped)

	require.Len(t, store.payments, 1)
	payment := store.payments[0]
	assert.Equal(t, uint(1), payment.ContractID)
	assert.Equal(t, "2025-03", payment.Period)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.True(t, payment.RentAmount.Equal(decimal.NewFromInt(100000)))
	assert.True(t, payment.CommonCharges.IsZero())
	assert.True(t, payment.UtilitiesAmount.IsZero())
	assert.True(t, payment.LateFeeAmount.IsZero())
}

func TestGenerateMonthlyObligations_SecondRunOnlyFillsGaps(t *testing.T) {
	store := newFakeBillingStore()
	store.contracts = []models.Contract{activeContract(1, 100000), activeContract(2, 80000)}
	uow := &fakeUnitOfWork{store: store}
	svc := NewBillingService(uow, testConfig())

	first, err := svc.GenerateMonthlyObligations(context.Background(), "2025-03")
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)

	// A third contract signs mid-month; the re-run bills only it.
	store.contracts = append(store.contracts, activeContract(3, 120000))

	second, err := svc.GenerateMonthlyObligations(context.Background(), "2025-03")
	require.NoError(t, err)
	assert.Equal(t, 1, second.Created)
	assert.Equal(t, 2, second.Skipped)
	assert.Len(t, store.payments, 3)
}

func TestGenerateMonthlyObligations_InactiveContractsNotBilled(t *testing.T) {
	expired := activeContract(2, 90000)
	expired.Status = models.ContractStatusExpired

	store := newFakeBillingStore()
	store.contracts = []models.Contract{activeContract(1, 100000), expired}
	uow := &fakeUnitOfWork{store: store}
	svc := NewBillingService(uow, testConfig())

	result, err := svc.GenerateMonthlyObligations(context.Background(), "2025-03")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Len(t, store.payments, 1)
}

func TestGenerateMonthlyObligations_EmptyPeriodDefaultsToCurrentMonth(t *testing.T) {
	store := newFakeBillingStore()
	store.contracts = []models.Contract{activeContract(1, 100000)}
	uow := &fakeUnitOfWork{store: store}

	svc := NewBillingService(uow, testConfig()).WithClock(fixedClock(2025, time.March, 15))
	result, err := svc.GenerateMonthlyObligations(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, "2025-03", result.Period)
	assert.Equal(t, 1, result.Created)
}

func TestGenerateMonthlyObligations_MalformedPeriodRejectedBeforeAnyQuery(t *testing.T) {
	store := newFakeBillingStore()
	uow := &fakeUnitOfWork{store: store}
	svc := NewBillingService(uow, testConfig())

	for _, period := range []string{"2025-13", "2025-3", "03-2025", "banana"} {
		result, err := svc.GenerateMonthlyObligations(context.Background(), period)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	}
	assert.Equal(t, 0, uow.runs)
}

func TestGenerateMonthlyObligations_DuplicateInsertRaceCountsAsSkipped(t *testing.T) {
	store := newFakeBillingStore()
	store.contracts = []models.Contract{activeContract(1, 100000)}
	store.createErr = repository.ErrDuplicatePayment
	uow := &fakeUnitOfWork{store: store}

	svc := NewBillingService(uow, testConfig())
	result, err := svc.GenerateMonthlyObligations(context.Background(), "2025-03")

	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Skipped)
}

func TestGenerateMonthlyObligations_CustomRentResolver(t *testing.T) {
	store := newFakeBillingStore()
	store.contracts = []models.Contract{activeContract(1, 100000)}
	uow := &fakeUnitOfWork{store: store}

	svc := NewBillingService(uow, testConfig()).WithRentResolver(func(c *models.Contract) decimal.Decimal {
		return c.CurrentRent.Mul(decimal.NewFromInt(2))
	})

	_, err := svc.GenerateMonthlyObligations(context.Background(), "2025-03")
	require.NoError(t, err)
	assert.True(t, store.payments[0].RentAmount.Equal(decimal.NewFromInt(200000)))
}

func pendingPayment(id uint, period string, principal int64) models.Payment {
	return models.Payment{
		ID:              id,
		ContractID:      id,
		Period:          period,
		RentAmount:      decimal.NewFromInt(principal),
		CommonCharges:   decimal.Zero,
		UtilitiesAmount: decimal.Zero,
		LateFeeAmount:   decimal.Zero,
		Status:          models.PaymentStatusPending,
	}
}

func TestAccrueLateFees_ComputesFeeFromDaysPastDue(t *testing.T) {
	store := newFakeBillingStore()
	store.payments = []models.Payment{pendingPayment(1, "2025-01", 150000)}
	uow := &fakeUnitOfWork{store: store}

	// Due 2025-01-10, evaluated 2025-01-15: five days late.
	// 150000 * 0.005 * 5 = 3750.00
	svc := NewBillingService(uow, testConfig()).WithClock(fixedClock(2025, time.January, 15))
	result, err := svc.AccrueLateFees(context.Background(), false)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, "3750.00", result.TotalLateFee.StringFixed(2))
	assert.Equal(t, "3750", store.feeUpdates[1].String())
}

func TestAccrueLateFees_NotYetDueStaysZero(t *testing.T) {
	store := newFakeBillingStore()
	store.payments = []models.Payment{pendingPayment(1, "2025-01", 150000)}
	uow := &fakeUnitOfWork{store: store}

	svc := NewBillingService(uow, testConfig()).WithClock(fixedClock(2025, time.January, 5))
	result, err := svc.AccrueLateFees(context.Background(), false)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Updated)
	assert.True(t, result.TotalLateFee.IsZero())
	assert.Empty(t, store.feeUpdates)
}

func TestAccrueLateFees_DueDateItselfIsNotLate(t *testing.T) {
	store := newFakeBillingStore()
	store.payments = []models.Payment{pendingPayment(1, "2025-01", 150000)}
	uow := &fakeUnitOfWork{store: store}

	svc := NewBillingService(uow, testConfig()).WithClock(fixedClock(2025, time.January, 10))
	result, err := svc.AccrueLateFees(context.Background(), false)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Updated)
}

func TestAccrueLateFees_StaleFeeResetWhenNoLongerDue(t *testing.T) {
	payment := pendingPayment(1, "2025-02", 150000)
	payment.LateFeeAmount = decimal.RequireFromString("3750.00")

	store := newFakeBillingStore()
	store.payments = []models.Payment{payment}
	uow := &fakeUnitOfWork{store: store}

	// The due date moved out from under the fee (period not yet due at the
	// evaluation date), so the fee is recomputed down to zero.
	svc := NewBillingService(uow, testConfig()).WithClock(fixedClock(2025, time.February, 5))
	result, err := svc.AccrueLateFees(context.Background(), false)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.True(t, store.feeUpdates[1].IsZero())
}

func TestAccrueLateFees_RerunSameDateIsIdempotent(t *testing.T) {
	store := newFakeBillingStore()
	store.payments = []models.Payment{pendingPayment(1, "2025-01", 150000)}
	uow := &fakeUnitOfWork{store: store}

	svc := NewBillingService(uow, testConfig()).WithClock(fixedClock(2025, time.January, 15))

	first, err := svc.AccrueLateFees(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Updated)

	second, err := svc.AccrueLateFees(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, first.TotalLateFee.String(), second.TotalLateFee.String())
}

func TestAccrueLateFees_DryRunCountsWithoutWriting(t *testing.T) {
	store := newFakeBillingStore()
	store.payments = []models.Payment{pendingPayment(1, "2025-01", 150000)}
	uow := &fakeUnitOfWork{store: store}

	svc := NewBillingService(uow, testConfig()).WithClock(fixedClock(2025, time.January, 15))
	result, err := svc.AccrueLateFees(context.Background(), true)

	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, "3750.00", result.TotalLateFee.StringFixed(2))
	assert.Empty(t, store.feeUpdates)
	assert.True(t, store.payments[0].LateFeeAmount.IsZero())
}

func TestAccrueLateFees_SettledPaymentsAreFrozen(t *testing.T) {
	settled := pendingPayment(1, "2025-01", 150000)
	settled.Status = models.PaymentStatusSettled
	partial := pendingPayment(2, "2025-01", 90000)
	partial.Status = models.PaymentStatusPartial

	store := newFakeBillingStore()
	store.payments = []models.Payment{settled, partial}
	uow := &fakeUnitOfWork{store: store}

	svc := NewBillingService(uow, testConfig()).WithClock(fixedClock(2025, time.March, 1))
	result, err := svc.AccrueLateFees(context.Background(), false)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Updated)
	assert.Empty(t, store.feeUpdates)
}

func TestAccrueLateFees_MalformedPeriodRowSkippedNotFatal(t *testing.T) {
	corrupt := pendingPayment(1, "corrupted", 150000)
	healthy := pendingPayment(2, "2025-01", 150000)

	store := newFakeBillingStore()
	store.payments = []models.Payment{corrupt, healthy}
	uow := &fakeUnitOfWork{store: store}

	svc := NewBillingService(uow, testConfig()).WithClock(fixedClock(2025, time.January, 15))
	result, err := svc.AccrueLateFees(context.Background(), false)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Contains(t, store.feeUpdates, uint(2))
	assert.NotContains(t, store.feeUpdates, uint(1))
}

func TestAccrueLateFees_FeeRoundsHalfUp(t *testing.T) {
	// 10001 * 0.005 * 1 = 50.005 → 50.01
	store := newFakeBillingStore()
	store.payments = []models.Payment{pendingPayment(1, "2025-01", 10001)}
	uow := &fakeUnitOfWork{store: store}

	svc := NewBillingService(uow, testConfig()).WithClock(fixedClock(2025, time.January, 11))
	result, err := svc.AccrueLateFees(context.Background(), false)

	require.NoError(t, err)
	assert.Equal(t, "50.01", result.TotalLateFee.StringFixed(2))
}

func TestAccrueLateFees_TotalAggregatesAllRows(t *testing.T) {
	// One row already carries the right fee, the other needs an update;
	// the total reflects both.
	carried := pendingPayment(1, "2025-01", 150000)
	carried.LateFeeAmount = decimal.RequireFromString("3750")

	store := newFakeBillingStore()
	store.payments = []models.Payment{carried, pendingPayment(2, "2025-01", 90000)}
	uow := &fakeUnitOfWork{store: store}

	svc := NewBillingService(uow, testConfig()).WithClock(fixedClock(2025, time.January, 15))
	result, err := svc.AccrueLateFees(context.Background(), false)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	// 3750 + 90000*0.005*5 = 3750 + 2250
	assert.Equal(t, "6000.00", result.TotalLateFee.StringFixed(2))
}
