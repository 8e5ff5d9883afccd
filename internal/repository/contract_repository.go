package repository

import (
	"context"
	"time"

	"github.com/toroprop/toro-api/internal/models"
	"gorm.io/gorm"
)

// ContractRepository defines the interface for contract data access
type ContractRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Contract, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*models.Contract, error)
	FindActive(ctx context.Context) ([]models.Contract, error)
	FindExpiring(ctx context.Context, before time.Time) ([]models.Contract, error)
	Create(ctx context.Context, contract *models.Contract) error
	Update(ctx context.Context, contract *models.Contract) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ContractQuery) ([]models.Contract, int64, error)
}

// ContractQuery extends ListQuery with contract-specific filters
type ContractQuery struct {
	*ListQuery
	Status       string
	DepartmentID uint
	TenantID     uint
}

type contractRepository struct {
	db *gorm.DB
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) FindByID(ctx context.Context, id uint) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).First(&contract, id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) FindByIDWithDetails(ctx context.Context, id uint) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Joins("Department").
		Joins("Tenant").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("period ASC")
		}).
		First(&contract, id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) FindActive(ctx context.Context) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.WithContext(ctx).
		Where("status = ?", models.ContractStatusActive).
		Order("id ASC").
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) FindExpiring(ctx context.Context, before time.Time) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_date <= ?", models.ContractStatusActive, before).
		Preload("Department").
		Preload("Tenant").
		Order("end_date ASC").
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) Create(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *contractRepository) Update(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Save(contract).Error
}

func (r *contractRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Contract{}, id).Error
}

func (r *contractRepository) List(ctx context.Context, query *ContractQuery) ([]models.Contract, int64, error) {
	var contracts []models.Contract
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Contract{})

	if query.Status != "" {
		db = db.Where("contracts.status = ?", query.Status)
	}
	if query.DepartmentID > 0 {
		db = db.Where("department_id = ?", query.DepartmentID)
	}
	if query.TenantID > 0 {
		db = db.Where("tenant_id = ?", query.TenantID)
	}
	if query.Search != "" {
		term := "%" + query.Search + "%"
		db = db.Joins("JOIN departments ON departments.id = contracts.department_id").
			Joins("JOIN tenants ON tenants.id = contracts.tenant_id").
			Where("departments.alias LIKE ? OR tenants.full_name LIKE ?", term, term)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = db.Preload("Department").Preload("Tenant")
	db = orderBy(db, query.ListQuery, map[string]bool{"start_date": true, "end_date": true, "created_at": true}, "contracts.id desc")
	err := paginate(db, query.ListQuery).Find(&contracts).Error
	return contracts, total, err
}
