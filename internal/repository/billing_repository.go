package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/toroprop/toro-api/internal/models"
	"gorm.io/gorm"
)

// ErrDuplicatePayment signals that a payment for the same (contract, period)
// pair already exists. The obligation generator treats it as "already billed".
var ErrDuplicatePayment = errors.New("payment already exists for contract and period")

// BillingRepository is the storage port consumed by the billing routines.
// Implementations are expected to be transaction-scoped: every call issued
// through one UnitOfWork.Run commits or rolls back together.
type BillingRepository interface {
	// ActiveContracts returns every contract currently being billed.
	ActiveContracts(ctx context.Context) ([]models.Contract, error)
	// PaymentByContractAndPeriod returns the obligation for the pair, or
	// (nil, nil) when none exists.
	PaymentByContractAndPeriod(ctx context.Context, contractID uint, period string) (*models.Payment, error)
	// PendingPayments returns every open obligation, oldest period first.
	PendingPayments(ctx context.Context) ([]models.Payment, error)
	CreatePayment(ctx context.Context, payment *models.Payment) error
	UpdatePaymentLateFee(ctx context.Context, paymentID uint, fee decimal.Decimal) error
}

// UnitOfWork runs a function against a transaction-scoped BillingRepository.
// The transaction commits when fn returns nil and rolls back otherwise, so a
// billing run either lands completely or not at all.
type UnitOfWork interface {
	Run(ctx context.Context, fn func(store BillingRepository) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a gorm-backed unit of work
func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Run(ctx context.Context, fn func(store BillingRepository) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&billingRepository{db: tx})
	})
}

type billingRepository struct {
	db *gorm.DB
}

func (r *billingRepository) ActiveContracts(ctx context.Context) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.WithContext(ctx).
		Where("status = ?", models.ContractStatusActive).
		Order("id ASC").
		Find(&contracts).Error
	return contracts, err
}

func (r *billingRepository) PaymentByContractAndPeriod(ctx context.Context, contractID uint, period string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("contract_id = ? AND period = ?", contractID, period).
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *billingRepository) PendingPayments(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("status = ?", models.PaymentStatusPending).
		Order("period ASC, contract_id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *billingRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	err := r.db.WithContext(ctx).Create(payment).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicatePayment
	}
	return err
}

func (r *billingRepository) UpdatePaymentLateFee(ctx context.Context, paymentID uint, fee decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ?", paymentID).
		Update("late_fee_amount", fee).Error
}
