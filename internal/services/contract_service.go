package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/toroprop/toro-api/internal/models"
	"github.com/toroprop/toro-api/internal/repository"
	"github.com/toroprop/toro-api/internal/statemachine"
	"gorm.io/gorm"
)

type ContractService struct {
	repo           repository.ContractRepository
	departmentRepo repository.DepartmentRepository
	tenantRepo     repository.TenantRepository
	auditSvc       *AuditService
}

func NewContractService(repo repository.ContractRepository, departmentRepo repository.DepartmentRepository, tenantRepo repository.TenantRepository, auditSvc *AuditService) *ContractService {
	return &ContractService{
		repo:           repo,
		departmentRepo: departmentRepo,
		tenantRepo:     tenantRepo,
		auditSvc:       auditSvc,
	}
}

type CreateContractRequest struct {
	DepartmentID    uint                `json:"department_id" binding:"required"`
	TenantID        uint                `json:"tenant_id" binding:"required"`
	StartDate       time.Time           `json:"start_date" binding:"required" time_format:"2006-01-02"`
	EndDate         time.Time           `json:"end_date" binding:"required" time_format:"2006-01-02"`
	InitialRent     decimal.Decimal     `json:"initial_rent" binding:"required"`
	AdjustmentRule  *string             `json:"adjustment_rule"`
	SecurityDeposit decimal.NullDecimal `json:"security_deposit"`
}

type UpdateContractRequest struct {
	EndDate           *time.Time           `json:"end_date" time_format:"2006-01-02"`
	CurrentRent       *decimal.Decimal     `json:"current_rent"`
	AdjustmentRule    *string              `json:"adjustment_rule"`
	SecurityDeposit   *decimal.NullDecimal `json:"security_deposit"`
	SignedDocumentURL *string              `json:"signed_document_url"`
}

func (s *ContractService) Create(ctx context.Context, req *CreateContractRequest, ip, userAgent string) (*models.Contract, error) {
	if !req.EndDate.After(req.StartDate) {
		return nil, fmt.Errorf("%w: la fecha de fin debe ser posterior al inicio", ErrInvalidState)
	}
	if req.InitialRent.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: la renta debe ser mayor que cero", ErrInvalidState)
	}

	department, err := s.departmentRepo.FindByID(ctx, req.DepartmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: departamento %d", ErrNotFound, req.DepartmentID)
		}
		return nil, err
	}
	if !department.IsAvailable() {
		return nil, fmt.Errorf("%w: el departamento %q no está disponible", ErrInUse, department.Alias)
	}

	if _, err := s.tenantRepo.FindByID(ctx, req.TenantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: inquilino %d", ErrNotFound, req.TenantID)
		}
		return nil, err
	}

	contract := &models.Contract{
		DepartmentID:    req.DepartmentID,
		TenantID:        req.TenantID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		InitialRent:     req.InitialRent,
		CurrentRent:     req.InitialRent,
		AdjustmentRule:  req.AdjustmentRule,
		SecurityDeposit: req.SecurityDeposit,
		Status:          models.ContractStatusActive,
	}

	if err := s.repo.Create(ctx, contract); err != nil {
		return nil, err
	}

	department.Status = models.DepartmentStatusRented
	department.StatusSince = time.Now().UTC()
	if err := s.departmentRepo.Update(ctx, department); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(models.AuditActionCreate, "contract", contract.ID, fmt.Sprintf("department=%d tenant=%d", contract.DepartmentID, contract.TenantID), ip, userAgent)
	return contract, nil
}

func (s *ContractService) GetByID(ctx context.Context, id uint) (*models.Contract, error) {
	contract, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return contract, nil
}

func (s *ContractService) Update(ctx context.Context, id uint, req *UpdateContractRequest, ip, userAgent string) (*models.Contract, error) {
	contract, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if req.EndDate != nil {
		if !req.EndDate.After(contract.StartDate) {
			return nil, fmt.Errorf("%w: la fecha de fin debe ser posterior al inicio", ErrInvalidState)
		}
		contract.EndDate = *req.EndDate
	}
	if req.CurrentRent != nil {
		if req.CurrentRent.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: la renta debe ser mayor que cero", ErrInvalidState)
		}
		contract.CurrentRent = *req.CurrentRent
	}
	if req.AdjustmentRule != nil {
		contract.AdjustmentRule = req.AdjustmentRule
	}
	if req.SecurityDeposit != nil {
		contract.SecurityDeposit = *req.SecurityDeposit
	}
	if req.SignedDocumentURL != nil {
		contract.SignedDocumentURL = req.SignedDocumentURL
	}

	if err := s.repo.Update(ctx, contract); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(models.AuditActionUpdate, "contract", contract.ID, "", ip, userAgent)
	return contract, nil
}

// Terminate rescinds an active contract early and frees its department.
func (s *ContractService) Terminate(ctx context.Context, id uint, ip, userAgent string) (*models.Contract, error) {
	return s.close(ctx, id, ip, userAgent, func(cfsm *statemachine.ContractFSM) error {
		return cfsm.Terminate(ctx)
	})
}

// Expire marks an active contract as run out and frees its department.
func (s *ContractService) Expire(ctx context.Context, id uint, ip, userAgent string) (*models.Contract, error) {
	return s.close(ctx, id, ip, userAgent, func(cfsm *statemachine.ContractFSM) error {
		return cfsm.Expire(ctx)
	})
}

func (s *ContractService) close(ctx context.Context, id uint, ip, userAgent string, transition func(*statemachine.ContractFSM) error) (*models.Contract, error) {
	contract, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	cfsm := statemachine.NewContractFSM(contract)
	if err := transition(cfsm); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	if err := s.repo.Update(ctx, contract); err != nil {
		return nil, err
	}

	if department, err := s.departmentRepo.FindByID(ctx, contract.DepartmentID); err == nil {
		department.Status = models.DepartmentStatusVacant
		department.StatusSince = time.Now().UTC()
		if err := s.departmentRepo.Update(ctx, department); err != nil {
			return nil, err
		}
	}

	s.auditSvc.LogAsync(models.AuditActionUpdate, "contract", contract.ID, contract.Status, ip, userAgent)
	return contract, nil
}

func (s *ContractService) List(ctx context.Context, query *repository.ContractQuery) ([]models.Contract, int64, error) {
	return s.repo.List(ctx, query)
}

// ExpireDue transitions every active contract whose end date has passed.
// Used by the scheduler.
func (s *ContractService) ExpireDue(ctx context.Context) (int, error) {
	contracts, err := s.repo.FindExpiring(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range contracts {
		contract := &contracts[i]
		cfsm := statemachine.NewContractFSM(contract)
		if err := cfsm.Expire(ctx); err != nil {
			continue
		}
		if err := s.repo.Update(ctx, contract); err != nil {
			return expired, err
		}
		if department, err := s.departmentRepo.FindByID(ctx, contract.DepartmentID); err == nil {
			department.Status = models.DepartmentStatusVacant
			department.StatusSince = time.Now().UTC()
			if err := s.departmentRepo.Update(ctx, department); err != nil {
				return expired, err
			}
		}
		expired++
	}
	return expired, nil
}
