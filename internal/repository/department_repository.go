package repository

import (
	"context"

	"github.com/toroprop/toro-api/internal/models"
	"gorm.io/gorm"
)

// DepartmentRepository defines the interface for department data access
type DepartmentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Department, error)
	FindByAlias(ctx context.Context, alias string) (*models.Department, error)
	Create(ctx context.Context, department *models.Department) error
	Update(ctx context.Context, department *models.Department) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Department, int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type departmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) FindByID(ctx context.Context, id uint) (*models.Department, error) {
	var department models.Department
	err := r.db.WithContext(ctx).First(&department, id).Error
	if err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *departmentRepository) FindByAlias(ctx context.Context, alias string) (*models.Department, error) {
	var department models.Department
	err := r.db.WithContext(ctx).Where("alias = ?", alias).First(&department).Error
	if err != nil {
		return nil, err
	}
	return &department, nil
}

func (r *departmentRepository) Create(ctx context.Context, department *models.Department) error {
	return r.db.WithContext(ctx).Create(department).Error
}

func (r *departmentRepository) Update(ctx context.Context, department *models.Department) error {
	return r.db.WithContext(ctx).Save(department).Error
}

func (r *departmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Department{}, id).Error
}

func (r *departmentRepository) List(ctx context.Context, query *ListQuery) ([]models.Department, int64, error) {
	var departments []models.Department
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Department{})

	if status := query.Filters["status"]; status != "" {
		db = db.Where("status = ?", status)
	}
	if propertyType := query.Filters["property_type"]; propertyType != "" {
		db = db.Where("property_type = ?", propertyType)
	}
	if query.Search != "" {
		term := "%" + query.Search + "%"
		db = db.Where("alias LIKE ? OR address LIKE ?", term, term)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = orderBy(db, query, map[string]bool{"alias": true, "status": true, "created_at": true}, "alias asc")
	err := paginate(db, query).Find(&departments).Error
	return departments, total, err
}

func (r *departmentRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.Department{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, rr := range rows {
		counts[rr.Status] = rr.Count
	}
	return counts, nil
}
