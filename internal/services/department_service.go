package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/toroprop/toro-api/internal/models"
	"github.com/toroprop/toro-api/internal/repository"
	"gorm.io/gorm"
)

type DepartmentService struct {
	repo     repository.DepartmentRepository
	auditSvc *AuditService
}

func NewDepartmentService(repo repository.DepartmentRepository, auditSvc *AuditService) *DepartmentService {
	return &DepartmentService{repo: repo, auditSvc: auditSvc}
}

type CreateDepartmentRequest struct {
	Alias        string `json:"alias" binding:"required,max=80"`
	Address      string `json:"address" binding:"required"`
	PropertyType string `json:"property_type" binding:"omitempty,oneof=apartment house commercial parking"`
	Floor        *int   `json:"floor"`
	Bedrooms     *int   `json:"bedrooms"`
	Notes        string `json:"notes"`
}

type UpdateDepartmentRequest struct {
	Address      *string `json:"address"`
	PropertyType *string `json:"property_type" binding:"omitempty,oneof=apartment house commercial parking"`
	Floor        *int    `json:"floor"`
	Bedrooms     *int    `json:"bedrooms"`
	Status       *string `json:"status" binding:"omitempty,oneof=rented vacant renovation"`
	Notes        *string `json:"notes"`
}

func (s *DepartmentService) Create(ctx context.Context, req *CreateDepartmentRequest, ip, userAgent string) (*models.Department, error) {
	if existing, err := s.repo.FindByAlias(ctx, req.Alias); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: alias %q", ErrDuplicate, req.Alias)
	}

	propertyType := req.PropertyType
	if propertyType == "" {
		propertyType = models.PropertyTypeApartment
	}

	department := &models.Department{
		Alias:        req.Alias,
		Address:      req.Address,
		PropertyType: propertyType,
		Floor:        req.Floor,
		Bedrooms:     req.Bedrooms,
		Status:       models.DepartmentStatusVacant,
		StatusSince:  time.Now().UTC(),
		Notes:        &req.Notes,
	}

	if err := s.repo.Create(ctx, department); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: alias %q", ErrDuplicate, req.Alias)
		}
		return nil, err
	}

	s.auditSvc.LogAsync(models.AuditActionCreate, "department", department.ID, department.Alias, ip, userAgent)
	return department, nil
}

func (s *DepartmentService) GetByID(ctx context.Context, id uint) (*models.Department, error) {
	department, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return department, nil
}

func (s *DepartmentService) Update(ctx context.Context, id uint, req *UpdateDepartmentRequest, ip, userAgent string) (*models.Department, error) {
	department, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Address != nil {
		department.Address = *req.Address
	}
	if req.PropertyType != nil {
		department.PropertyType = *req.PropertyType
	}
	if req.Floor != nil {
		department.Floor = req.Floor
	}
	if req.Bedrooms != nil {
		department.Bedrooms = req.Bedrooms
	}
	if req.Status != nil && *req.Status != department.Status {
		department.Status = *req.Status
		department.StatusSince = time.Now().UTC()
	}
	if req.Notes != nil {
		department.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, department); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(models.AuditActionUpdate, "department", department.ID, department.Alias, ip, userAgent)
	return department, nil
}

func (s *DepartmentService) Delete(ctx context.Context, id uint, ip, userAgent string) error {
	department, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if department.Status == models.DepartmentStatusRented {
		return fmt.Errorf("%w: el departamento tiene un contrato activo", ErrInUse)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.LogAsync(models.AuditActionDelete, "department", id, department.Alias, ip, userAgent)
	return nil
}

func (s *DepartmentService) List(ctx context.Context, query *repository.ListQuery) ([]models.Department, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *DepartmentService) Occupancy(ctx context.Context) (map[string]int64, error) {
	return s.repo.CountByStatus(ctx)
}
