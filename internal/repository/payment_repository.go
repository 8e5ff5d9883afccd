package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/toroprop/toro-api/internal/models"
	"gorm.io/gorm"
)

// PaymentRepository defines the interface for payment data access
type PaymentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Payment, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*models.Payment, error)
	FindByContract(ctx context.Context, contractID uint) ([]models.Payment, error)
	FindByPeriod(ctx context.Context, period string) ([]models.Payment, error)
	FindOverdue(ctx context.Context) ([]models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *PaymentQuery) ([]models.Payment, int64, error)
	GetStats(ctx context.Context, period string) (*PaymentStats, error)
}

// PaymentQuery extends ListQuery with payment-specific filters
type PaymentQuery struct {
	*ListQuery
	Status     string
	Period     string
	ContractID uint
}

// PaymentStats aggregates a period's collection numbers
type PaymentStats struct {
	Period        string          `json:"period"`
	PendingCount  int64           `json:"pending_count"`
	PartialCount  int64           `json:"partial_count"`
	SettledCount  int64           `json:"settled_count"`
	TotalBilled   decimal.Decimal `json:"total_billed"`
	TotalLateFees decimal.Decimal `json:"total_late_fees"`
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByIDWithDetails(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Contract").
		Preload("Contract.Department").
		Preload("Contract.Tenant").
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByContract(ctx context.Context, contractID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("period ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) FindByPeriod(ctx context.Context, period string) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("period = ?", period).
		Preload("Contract.Department").
		Preload("Contract.Tenant").
		Order("contract_id ASC").
		Find(&payments).Error
	return payments, err
}

// FindOverdue returns open payments with a non-zero late fee, newest first.
// Used by the overdue report; the accrual engine goes through its own port.
func (r *paymentRepository) FindOverdue(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("status = ? AND late_fee_amount > 0", models.PaymentStatusPending).
		Preload("Contract.Department").
		Preload("Contract.Tenant").
		Order("period DESC, contract_id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *paymentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Payment{}, id).Error
}

func (r *paymentRepository) List(ctx context.Context, query *PaymentQuery) ([]models.Payment, int64, error) {
	var payments []models.Payment
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Payment{})

	if query.Status != "" {
		db = db.Where("payments.status = ?", query.Status)
	}
	if query.Period != "" {
		db = db.Where("period = ?", query.Period)
	}
	if query.ContractID > 0 {
		db = db.Where("contract_id = ?", query.ContractID)
	}
	if query.Search != "" {
		term := "%" + query.Search + "%"
		db = db.Joins("JOIN contracts ON contracts.id = payments.contract_id").
			Joins("JOIN tenants ON tenants.id = contracts.tenant_id").
			Joins("JOIN departments ON departments.id = contracts.department_id").
			Where("tenants.full_name LIKE ? OR departments.alias LIKE ?", term, term)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = db.Preload("Contract.Department").Preload("Contract.Tenant")
	db = orderBy(db, query.ListQuery, map[string]bool{"period": true, "status": true, "created_at": true}, "period desc, contract_id asc")
	err := paginate(db, query.ListQuery).Find(&payments).Error
	return payments, total, err
}

func (r *paymentRepository) GetStats(ctx context.Context, period string) (*PaymentStats, error) {
	stats := &PaymentStats{Period: period}

	db := r.db.WithContext(ctx).Model(&models.Payment{}).Where("period = ?", period)

	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	if err := db.Session(&gorm.Session{}).Select("status, count(*) as count").Group("status").Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, rr := range rows {
		switch rr.Status {
		case models.PaymentStatusPending:
			stats.PendingCount = rr.Count
		case models.PaymentStatusPartial:
			stats.PartialCount = rr.Count
		case models.PaymentStatusSettled:
			stats.SettledCount = rr.Count
		}
	}

	type sums struct {
		TotalBilled   decimal.Decimal
		TotalLateFees decimal.Decimal
	}
	var s sums
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("period = ?", period).
		Select("COALESCE(SUM(rent_amount + common_charges + utilities_amount), 0) as total_billed, COALESCE(SUM(late_fee_amount), 0) as total_late_fees").
		Scan(&s).Error
	if err != nil {
		return nil, err
	}
	stats.TotalBilled = s.TotalBilled
	stats.TotalLateFees = s.TotalLateFees

	return stats, nil
}
