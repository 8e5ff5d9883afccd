package handlers

import (
	"github.com/toroprop/toro-api/internal/services"
	"github.com/toroprop/toro-api/internal/storage"
)

// Handlers holds all handler instances
type Handlers struct {
	Health     *HealthHandler
	Department *DepartmentHandler
	Tenant     *TenantHandler
	Contract   *ContractHandler
	Payment    *PaymentHandler
	Billing    *BillingHandler
	Report     *ReportHandler
	Audit      *AuditHandler
	Job        *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, storage *storage.LocalStorage) *Handlers {
	return &Handlers{
		Health:     NewHealthHandler(),
		Department: NewDepartmentHandler(svcs.Department),
		Tenant:     NewTenantHandler(svcs.Tenant),
		Contract:   NewContractHandler(svcs.Contract, svcs.Report),
		Payment:    NewPaymentHandler(svcs.Payment, svcs.Report, storage),
		Billing:    NewBillingHandler(svcs.Billing),
		Report:     NewReportHandler(svcs.Report, svcs.Export, svcs.Import),
		Audit:      NewAuditHandler(svcs.Audit),
		Job:        NewJobHandler(svcs.Job),
	}
}
