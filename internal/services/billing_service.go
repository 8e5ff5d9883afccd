package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/shopspring/decimal"
	"github.com/toroprop/toro-api/internal/config"
	"github.com/toroprop/toro-api/internal/models"
	"github.com/toroprop/toro-api/internal/repository"
	"github.com/toroprop/toro-api/pkg/logger"
)

// RentResolver returns the rent to bill for a contract. The default resolver
// bills the rent recorded at signing; an indexation-aware implementation can
// be swapped in once rent adjustment history is tracked.
type RentResolver func(contract *models.Contract) decimal.Decimal

// InitialRentResolver bills the contract's initial rent. This mirrors the
// historical billing behavior: adjustments applied after signing are not
// reflected, which is a known product gap rather than a bug.
func InitialRentResolver(contract *models.Contract) decimal.Decimal {
	return contract.InitialRent
}

// BillingService owns the two batch routines of the system: monthly
// obligation generation and late-fee accrual. Each invocation runs inside a
// single unit of work, so a run commits completely or not at all.
type BillingService struct {
	uow          repository.UnitOfWork
	dueDay       int
	dailyRate    decimal.Decimal
	rentResolver RentResolver
	now          func() time.Time
}

// NewBillingService creates a billing service with the configured due day
// and daily late-fee rate.
func NewBillingService(uow repository.UnitOfWork, cfg *config.Config) *BillingService {
	return &BillingService{
		uow:          uow,
		dueDay:       cfg.BillingDueDay,
		dailyRate:    cfg.BillingDailyLateFeeRate,
		rentResolver: InitialRentResolver,
		now:          time.Now,
	}
}

// WithRentResolver overrides the rent resolver. Seam for a future
// indexation-aware rent source.
func (s *BillingService) WithRentResolver(resolver RentResolver) *BillingService {
	s.rentResolver = resolver
	return s
}

// WithClock overrides the evaluation clock. Tests use this to pin the
// evaluation date.
func (s *BillingService) WithClock(now func() time.Time) *BillingService {
	s.now = now
	return s
}

// GenerationResult reports one obligation-generation run
type GenerationResult struct {
	Period  string `json:"period"`
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
}

// AccrualResult reports one late-fee accrual run
type AccrualResult struct {
	Updated      int             `json:"updated"`
	TotalLateFee decimal.Decimal `json:"total_late_fee"`
	DryRun       bool            `json:"dry_run"`
}

// GenerateMonthlyObligations ensures exactly one pending payment exists per
// active contract for the target period. An empty period defaults to the
// current calendar month; a malformed one rejects the whole run before any
// contract is read. Re-running for the same period creates nothing new.
func (s *BillingService) GenerateMonthlyObligations(ctx context.Context, period string) (*GenerationResult, error) {
	var target models.Period
	if period == "" {
		target = models.PeriodOf(s.now())
	} else {
		parsed, err := models.ParsePeriod(period)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
		}
		target = parsed
	}

	result := &GenerationResult{Period: target.String()}

	err := s.uow.Run(ctx, func(store repository.BillingRepository) error {
		contracts, err := store.ActiveContracts(ctx)
		if err != nil {
			return fmt.Errorf("failed to load active contracts: %w", err)
		}

		for i := range contracts {
			contract := &contracts[i]

			existing, err := store.PaymentByContractAndPeriod(ctx, contract.ID, result.Period)
			if err != nil {
				return fmt.Errorf("failed to check existing payment for contract %d: %w", contract.ID, err)
			}
			if existing != nil {
				result.Skipped++
				continue
			}

			payment := &models.Payment{
				ContractID:      contract.ID,
				Period:          result.Period,
				RentAmount:      s.rentResolver(contract),
				CommonCharges:   decimal.Zero,
				UtilitiesAmount: decimal.Zero,
				LateFeeAmount:   decimal.Zero,
				Status:          models.PaymentStatusPending,
			}

			if err := store.CreatePayment(ctx, payment); err != nil {
				if errors.Is(err, repository.ErrDuplicatePayment) {
					// Lost an insert race with a concurrent run; the
					// obligation exists, which is all we need.
					result.Skipped++
					continue
				}
				return fmt.Errorf("failed to create payment for contract %d: %w", contract.ID, err)
			}

			result.Created++
			logger.Info("Generated obligation",
				"contract_id", contract.ID,
				"period", result.Period,
				"rent", payment.RentAmount.String(),
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Obligation generation finished",
		"period", result.Period,
		"created", result.Created,
		"skipped", result.Skipped,
	)
	return result, nil
}

// AccrueLateFees recomputes the late fee of every pending payment from the
// number of whole days the evaluation date sits past the due date:
//
//	fee = round2(principal × dailyRate × daysLate)
//
// Rounding is half away from zero ("half-up") via decimal.Round. Fees are
// replaced, never accumulated: re-running on the same date changes nothing,
// and a payment not yet due has its fee reset to zero. In dry-run mode the
// counters are computed but no write is issued.
func (s *BillingService) AccrueLateFees(ctx context.Context, dryRun bool) (*AccrualResult, error) {
	result := &AccrualResult{DryRun: dryRun, TotalLateFee: decimal.Zero}
	today := dateOnly(s.now())

	err := s.uow.Run(ctx, func(store repository.BillingRepository) error {
		payments, err := store.PendingPayments(ctx)
		if err != nil {
			return fmt.Errorf("failed to load pending payments: %w", err)
		}

		for i := range payments {
			payment := &payments[i]

			period, err := models.ParsePeriod(payment.Period)
			if err != nil {
				// One corrupt row must not abort the batch.
				logger.Warn("Skipping payment with malformed period",
					"payment_id", payment.ID,
					"period", payment.Period,
				)
				sentry.CaptureException(fmt.Errorf("late-fee accrual: payment %d: %w", payment.ID, err))
				continue
			}

			newFee := s.computeFee(payment, period, today)
			result.TotalLateFee = result.TotalLateFee.Add(newFee)

			if newFee.Equal(payment.LateFeeAmount) {
				continue
			}

			result.Updated++
			if dryRun {
				continue
			}

			if err := store.UpdatePaymentLateFee(ctx, payment.ID, newFee); err != nil {
				return fmt.Errorf("failed to update late fee for payment %d: %w", payment.ID, err)
			}
			logger.Info("Late fee updated",
				"payment_id", payment.ID,
				"period", payment.Period,
				"late_fee", newFee.String(),
			)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Late-fee accrual finished",
		"updated", result.Updated,
		"total_late_fee", result.TotalLateFee.String(),
		"dry_run", dryRun,
	)
	return result, nil
}

// computeFee returns the late fee owed on the evaluation date. Zero when the
// payment is not yet past due.
func (s *BillingService) computeFee(payment *models.Payment, period models.Period, today time.Time) decimal.Decimal {
	dueDate := period.DueDate(s.dueDay)
	if !today.After(dueDate) {
		return decimal.Zero
	}

	daysLate := int64(today.Sub(dueDate).Hours() / 24)
	return payment.Principal().
		Mul(s.dailyRate).
		Mul(decimal.NewFromInt(daysLate)).
		Round(2)
}

// dateOnly truncates an instant to midnight UTC so day arithmetic against
// period due dates works on whole days.
func dateOnly(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
