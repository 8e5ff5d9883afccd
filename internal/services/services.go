package services

import (
	"github.com/toroprop/toro-api/internal/config"
	"github.com/toroprop/toro-api/internal/jobs"
	"github.com/toroprop/toro-api/internal/repository"
	"github.com/toroprop/toro-api/internal/storage"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Department *DepartmentService
	Tenant     *TenantService
	Contract   *ContractService
	Payment    *PaymentService
	Billing    *BillingService
	Report     *ReportService
	Export     *ExportService
	Import     *ImportService
	Audit      *AuditService
	Job        *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, storage *storage.LocalStorage, cfg *config.Config, db *gorm.DB) *Services {
	auditSvc := NewAuditService(db, worker)
	uow := repository.NewUnitOfWork(db)

	return &Services{
		Department: NewDepartmentService(repos.Department, auditSvc),
		Tenant:     NewTenantService(repos.Tenant, auditSvc),
		Contract:   NewContractService(repos.Contract, repos.Department, repos.Tenant, auditSvc),
		Payment:    NewPaymentService(repos.Payment, storage, auditSvc),
		Billing:    NewBillingService(uow, cfg),
		Report:     NewReportService(repos.Payment, repos.Contract, cfg.BillingDueDay),
		Export:     NewExportService(repos),
		Import:     NewImportService(repos, auditSvc),
		Audit:      auditSvc,
		Job:        NewJobService(worker),
	}
}
