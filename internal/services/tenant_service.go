package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/toroprop/toro-api/internal/models"
	"github.com/toroprop/toro-api/internal/repository"
	"gorm.io/gorm"
)

type TenantService struct {
	repo     repository.TenantRepository
	auditSvc *AuditService
}

func NewTenantService(repo repository.TenantRepository, auditSvc *AuditService) *TenantService {
	return &TenantService{repo: repo, auditSvc: auditSvc}
}

type CreateTenantRequest struct {
	FullName       string  `json:"full_name" binding:"required,max=120"`
	NationalID     *string `json:"national_id"`
	Email          string  `json:"email" binding:"omitempty,email"`
	Phone          string  `json:"phone"`
	ContactChannel string  `json:"contact_channel" binding:"omitempty,oneof=whatsapp email phone"`
	Notes          string  `json:"notes"`
}

type UpdateTenantRequest struct {
	FullName       *string `json:"full_name" binding:"omitempty,max=120"`
	NationalID     *string `json:"national_id"`
	Email          *string `json:"email" binding:"omitempty,email"`
	Phone          *string `json:"phone"`
	ContactChannel *string `json:"contact_channel" binding:"omitempty,oneof=whatsapp email phone"`
	Status         *string `json:"status" binding:"omitempty,oneof=active inactive"`
	Notes          *string `json:"notes"`
}

func (s *TenantService) Create(ctx context.Context, req *CreateTenantRequest, ip, userAgent string) (*models.Tenant, error) {
	if req.NationalID != nil && *req.NationalID != "" {
		if existing, err := s.repo.FindByNationalID(ctx, *req.NationalID); err == nil && existing != nil {
			return nil, fmt.Errorf("%w: documento %q", ErrDuplicate, *req.NationalID)
		}
	}

	contactChannel := req.ContactChannel
	if contactChannel == "" {
		contactChannel = models.ContactChannelWhatsApp
	}

	tenant := &models.Tenant{
		FullName:       req.FullName,
		NationalID:     req.NationalID,
		Email:          &req.Email,
		Phone:          &req.Phone,
		ContactChannel: contactChannel,
		Status:         models.TenantStatusActive,
		Notes:          &req.Notes,
	}

	if err := s.repo.Create(ctx, tenant); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: documento duplicado", ErrDuplicate)
		}
		return nil, err
	}

	s.auditSvc.LogAsync(models.AuditActionCreate, "tenant", tenant.ID, tenant.FullName, ip, userAgent)
	return tenant, nil
}

func (s *TenantService) GetByID(ctx context.Context, id uint) (*models.Tenant, error) {
	tenant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return tenant, nil
}

func (s *TenantService) Update(ctx context.Context, id uint, req *UpdateTenantRequest, ip, userAgent string) (*models.Tenant, error) {
	tenant, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		tenant.FullName = *req.FullName
	}
	if req.NationalID != nil {
		tenant.NationalID = req.NationalID
	}
	if req.Email != nil {
		tenant.Email = req.Email
	}
	if req.Phone != nil {
		tenant.Phone = req.Phone
	}
	if req.ContactChannel != nil {
		tenant.ContactChannel = *req.ContactChannel
	}
	if req.Status != nil {
		tenant.Status = *req.Status
	}
	if req.Notes != nil {
		tenant.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, tenant); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: documento duplicado", ErrDuplicate)
		}
		return nil, err
	}

	s.auditSvc.LogAsync(models.AuditActionUpdate, "tenant", tenant.ID, tenant.FullName, ip, userAgent)
	return tenant, nil
}

func (s *TenantService) Delete(ctx context.Context, id uint, ip, userAgent string) error {
	tenant, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	hasContracts, err := s.repo.HasActiveContracts(ctx, id)
	if err != nil {
		return err
	}
	if hasContracts {
		return fmt.Errorf("%w: el inquilino tiene contratos activos", ErrInUse)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditSvc.LogAsync(models.AuditActionDelete, "tenant", id, tenant.FullName, ip, userAgent)
	return nil
}

func (s *TenantService) List(ctx context.Context, query *repository.ListQuery) ([]models.Tenant, int64, error) {
	return s.repo.List(ctx, query)
}
