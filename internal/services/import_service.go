package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/toroprop/toro-api/internal/models"
	"github.com/toroprop/toro-api/internal/repository"
	"github.com/toroprop/toro-api/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// ImportService loads master data (departments, tenants, contracts) from the
// three-sheet workbook produced by ExportService.MasterDataTemplate.
type ImportService struct {
	repos    *repository.Repositories
	auditSvc *AuditService
}

func NewImportService(repos *repository.Repositories, auditSvc *AuditService) *ImportService {
	return &ImportService{repos: repos, auditSvc: auditSvc}
}

// ImportResult summarizes one import run. Rows that fail validation are
// skipped and reported; they never abort the run.
type ImportResult struct {
	DepartmentsCreated int      `json:"departments_created"`
	TenantsCreated     int      `json:"tenants_created"`
	ContractsCreated   int      `json:"contracts_created"`
	SkippedRows        int      `json:"skipped_rows"`
	Errors             []string `json:"errors,omitempty"`
}

func (r *ImportResult) fail(sheet string, row int, reason string) {
	r.SkippedRows++
	r.Errors = append(r.Errors, fmt.Sprintf("%s fila %d: %s", sheet, row, reason))
}

// ImportMasterData reads the workbook and creates the entities it describes.
// Sheets are processed in dependency order so contracts can reference
// departments and tenants created in the same run.
func (s *ImportService) ImportMasterData(ctx context.Context, reader io.Reader, ip, userAgent string) (*ImportResult, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	result := &ImportResult{}

	s.importDepartments(ctx, f, result)
	s.importTenants(ctx, f, result)
	s.importContracts(ctx, f, result)

	s.auditSvc.LogAsync(models.AuditActionImport, "import", 0,
		fmt.Sprintf("departments=%d tenants=%d contracts=%d skipped=%d",
			result.DepartmentsCreated, result.TenantsCreated, result.ContractsCreated, result.SkippedRows),
		ip, userAgent)

	logger.Info("Master data import finished",
		"departments", result.DepartmentsCreated,
		"tenants", result.TenantsCreated,
		"contracts", result.ContractsCreated,
		"skipped", result.SkippedRows)

	return result, nil
}

func (s *ImportService) importDepartments(ctx context.Context, f *excelize.File, result *ImportResult) {
	rows, err := f.GetRows(SheetDepartments)
	if err != nil {
		return
	}

	for i, row := range rows {
		if i == 0 || isEmptyRow(row) {
			continue
		}
		rowNum := i + 1

		alias := cell(row, 0)
		address := cell(row, 1)
		if alias == "" || address == "" {
			result.fail(SheetDepartments, rowNum, "alias y dirección son obligatorios")
			continue
		}

		if existing, err := s.repos.Department.FindByAlias(ctx, alias); err == nil && existing != nil {
			result.fail(SheetDepartments, rowNum, fmt.Sprintf("alias %q ya existe", alias))
			continue
		}

		propertyType := cell(row, 2)
		if propertyType == "" {
			propertyType = models.PropertyTypeApartment
		}

		notes := cell(row, 5)
		department := &models.Department{
			Alias:        alias,
			Address:      address,
			PropertyType: propertyType,
			Floor:        cellInt(row, 3),
			Bedrooms:     cellInt(row, 4),
			Status:       models.DepartmentStatusVacant,
			StatusSince:  time.Now().UTC(),
			Notes:        &notes,
		}

		if err := s.repos.Department.Create(ctx, department); err != nil {
			result.fail(SheetDepartments, rowNum, err.Error())
			continue
		}
		result.DepartmentsCreated++
	}
}

func (s *ImportService) importTenants(ctx context.Context, f *excelize.File, result *ImportResult) {
	rows, err := f.GetRows(SheetTenants)
	if err != nil {
		return
	}

	for i, row := range rows {
		if i == 0 || isEmptyRow(row) {
			continue
		}
		rowNum := i + 1

		fullName := cell(row, 0)
		if fullName == "" {
			result.fail(SheetTenants, rowNum, "nombre es obligatorio")
			continue
		}

		email := cell(row, 2)
		phone := cell(row, 3)
		notes := cell(row, 5)
		tenant := &models.Tenant{
			FullName:       fullName,
			Email:          &email,
			Phone:          &phone,
			ContactChannel: models.ContactChannelWhatsApp,
			Status:         models.TenantStatusActive,
			Notes:          &notes,
		}
		if nationalID := cell(row, 1); nationalID != "" {
			if existing, err := s.repos.Tenant.FindByNationalID(ctx, nationalID); err == nil && existing != nil {
				result.fail(SheetTenants, rowNum, fmt.Sprintf("documento %q ya existe", nationalID))
				continue
			}
			tenant.NationalID = &nationalID
		}
		if channel := cell(row, 4); channel != "" {
			tenant.ContactChannel = channel
		}

		if err := s.repos.Tenant.Create(ctx, tenant); err != nil {
			result.fail(SheetTenants, rowNum, err.Error())
			continue
		}
		result.TenantsCreated++
	}
}

func (s *ImportService) importContracts(ctx context.Context, f *excelize.File, result *ImportResult) {
	rows, err := f.GetRows(SheetContracts)
	if err != nil {
		return
	}

	for i, row := range rows {
		if i == 0 || isEmptyRow(row) {
			continue
		}
		rowNum := i + 1

		department, err := s.repos.Department.FindByAlias(ctx, cell(row, 0))
		if err != nil || department == nil {
			result.fail(SheetContracts, rowNum, fmt.Sprintf("departamento %q no encontrado", cell(row, 0)))
			continue
		}
		if !department.IsAvailable() {
			result.fail(SheetContracts, rowNum, fmt.Sprintf("departamento %q no está disponible", department.Alias))
			continue
		}

		tenant, err := s.repos.Tenant.FindByNationalID(ctx, cell(row, 1))
		if err != nil || tenant == nil {
			result.fail(SheetContracts, rowNum, fmt.Sprintf("inquilino con documento %q no encontrado", cell(row, 1)))
			continue
		}

		startDate, err := cellDate(row, 2)
		if err != nil {
			result.fail(SheetContracts, rowNum, "fecha de inicio inválida")
			continue
		}
		endDate, err := cellDate(row, 3)
		if err != nil || !endDate.After(startDate) {
			result.fail(SheetContracts, rowNum, "fecha de fin inválida")
			continue
		}

		rent, err := decimal.NewFromString(cell(row, 4))
		if err != nil || rent.LessThanOrEqual(decimal.Zero) {
			result.fail(SheetContracts, rowNum, "renta inválida")
			continue
		}

		contract := &models.Contract{
			DepartmentID: department.ID,
			TenantID:     tenant.ID,
			StartDate:    startDate,
			EndDate:      endDate,
			InitialRent:  rent,
			CurrentRent:  rent,
			Status:       models.ContractStatusActive,
		}
		if depositStr := cell(row, 5); depositStr != "" {
			deposit, err := decimal.NewFromString(depositStr)
			if err != nil {
				result.fail(SheetContracts, rowNum, "depósito inválido")
				continue
			}
			contract.SecurityDeposit = decimal.NewNullDecimal(deposit)
		}

		if err := s.repos.Contract.Create(ctx, contract); err != nil {
			result.fail(SheetContracts, rowNum, err.Error())
			continue
		}

		department.Status = models.DepartmentStatusRented
		department.StatusSince = time.Now().UTC()
		if err := s.repos.Department.Update(ctx, department); err != nil {
			result.fail(SheetContracts, rowNum, err.Error())
			continue
		}
		result.ContractsCreated++
	}
}

func isEmptyRow(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func cellInt(row []string, idx int) *int {
	value := cell(row, idx)
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &n
}

// cellDate accepts ISO dates and the slash format spreadsheets tend to
// produce.
func cellDate(row []string, idx int) (time.Time, error) {
	value := cell(row, idx)
	for _, layout := range []string{"2006-01-02", "02/01/2006", "1/2/06"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date: %q", value)
}
