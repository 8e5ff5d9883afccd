package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toroprop/toro-api/internal/jobs"
	"github.com/toroprop/toro-api/internal/models"
	"github.com/toroprop/toro-api/internal/repository"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type mockDepartmentRepo struct {
	repository.DepartmentRepository
	byAlias map[string]*models.Department
	nextID  uint
}

func (m *mockDepartmentRepo) FindByAlias(ctx context.Context, alias string) (*models.Department, error) {
	if d, ok := m.byAlias[alias]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) Create(ctx context.Context, department *models.Department) error {
	m.nextID++
	department.ID = m.nextID
	m.byAlias[department.Alias] = department
	return nil
}

func (m *mockDepartmentRepo) Update(ctx context.Context, department *models.Department) error {
	m.byAlias[department.Alias] = department
	return nil
}

type mockTenantRepo struct {
	repository.TenantRepository
	byNationalID map[string]*models.Tenant
	nextID       uint
}

func (m *mockTenantRepo) FindByNationalID(ctx context.Context, nationalID string) (*models.Tenant, error) {
	if t, ok := m.byNationalID[nationalID]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTenantRepo) Create(ctx context.Context, tenant *models.Tenant) error {
	m.nextID++
	tenant.ID = m.nextID
	if tenant.NationalID != nil {
		m.byNationalID[*tenant.NationalID] = tenant
	}
	return nil
}

type mockContractRepo struct {
	repository.ContractRepository
	created []*models.Contract
}

func (m *mockContractRepo) Create(ctx context.Context, contract *models.Contract) error {
	contract.ID = uint(len(m.created) + 1)
	m.created = append(m.created, contract)
	return nil
}

func newImportFixture(t *testing.T) (*ImportService, *mockDepartmentRepo, *mockTenantRepo, *mockContractRepo, *jobs.Worker) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AuditLog{}))

	departments := &mockDepartmentRepo{byAlias: map[string]*models.Department{}}
	tenants := &mockTenantRepo{byNationalID: map[string]*models.Tenant{}}
	contracts := &mockContractRepo{}

	worker := jobs.NewWorker(1)
	auditSvc := NewAuditService(db, worker)

	repos := &repository.Repositories{
		Department: departments,
		Tenant:     tenants,
		Contract:   contracts,
	}
	return NewImportService(repos, auditSvc), departments, tenants, contracts, worker
}

func buildImportWorkbook(t *testing.T) *excelize.File {
	t.Helper()

	buf, err := NewExportService(nil).MasterDataTemplate()
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	return f
}

func TestImportService_ImportMasterData(t *testing.T) {
	svc, departments, tenants, contracts, worker := newImportFixture(t)
	defer worker.Shutdown()

	f := buildImportWorkbook(t)
	defer f.Close()

	f.SetSheetRow(SheetDepartments, "A2", &[]interface{}{"A-101", "Av. Las Flores 123", "apartment", 3, 2, "frente a la plaza"})
	f.SetSheetRow(SheetTenants, "A2", &[]interface{}{"María González", "8-123-456", "maria@example.com", "+50761234567", "whatsapp", ""})
	f.SetSheetRow(SheetContracts, "A2", &[]interface{}{"A-101", "8-123-456", "2025-01-01", "2026-01-01", "250000", "250000"})

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	result, err := svc.ImportMasterData(context.Background(), buf, "127.0.0.1", "test")
	require.NoError(t, err)

	assert.Equal(t, 1, result.DepartmentsCreated)
	assert.Equal(t, 1, result.TenantsCreated)
	assert.Equal(t, 1, result.ContractsCreated)
	assert.Equal(t, 0, result.SkippedRows)
	assert.Empty(t, result.Errors)

	department := departments.byAlias["A-101"]
	require.NotNil(t, department)
	assert.Equal(t, models.DepartmentStatusRented, department.Status)

	tenant := tenants.byNationalID["8-123-456"]
	require.NotNil(t, tenant)
	assert.Equal(t, "María González", tenant.FullName)

	require.Len(t, contracts.created, 1)
	contract := contracts.created[0]
	assert.Equal(t, department.ID, contract.DepartmentID)
	assert.Equal(t, tenant.ID, contract.TenantID)
	assert.Equal(t, models.ContractStatusActive, contract.Status)
	assert.True(t, contract.CurrentRent.Equal(decimal.NewFromInt(250000)))
	require.True(t, contract.SecurityDeposit.Valid)
	assert.True(t, contract.SecurityDeposit.Decimal.Equal(decimal.NewFromInt(250000)))
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), contract.StartDate)
}

func TestImportService_BadRowsAreSkippedNotFatal(t *testing.T) {
	svc, _, _, contracts, worker := newImportFixture(t)
	defer worker.Shutdown()

	f := buildImportWorkbook(t)
	defer f.Close()

	// missing address
	f.SetSheetRow(SheetDepartments, "A2", &[]interface{}{"B-202", ""})
	f.SetSheetRow(SheetDepartments, "A3", &[]interface{}{"C-303", "Calle 50"})
	// missing name
	f.SetSheetRow(SheetTenants, "A2", &[]interface{}{"", "9-999-999"})
	// unknown department alias
	f.SetSheetRow(SheetContracts, "A2", &[]interface{}{"Z-9", "9-999-999", "2025-01-01", "2026-01-01", "100000", ""})

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	result, err := svc.ImportMasterData(context.Background(), buf, "127.0.0.1", "test")
	require.NoError(t, err)

	assert.Equal(t, 1, result.DepartmentsCreated)
	assert.Equal(t, 0, result.TenantsCreated)
	assert.Equal(t, 0, result.ContractsCreated)
	assert.Equal(t, 3, result.SkippedRows)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "Departamentos fila 2")
	assert.Contains(t, result.Errors[2], `departamento "Z-9" no encontrado`)
	assert.Empty(t, contracts.created)
}

func TestImportService_DuplicateAliasSkipped(t *testing.T) {
	svc, departments, _, _, worker := newImportFixture(t)
	defer worker.Shutdown()

	departments.byAlias["A-101"] = &models.Department{ID: 1, Alias: "A-101", Status: models.DepartmentStatusVacant}

	f := buildImportWorkbook(t)
	defer f.Close()

	f.SetSheetRow(SheetDepartments, "A2", &[]interface{}{"A-101", "Av. Las Flores 123"})

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	result, err := svc.ImportMasterData(context.Background(), buf, "", "")
	require.NoError(t, err)

	assert.Equal(t, 0, result.DepartmentsCreated)
	assert.Equal(t, 1, result.SkippedRows)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "ya existe")
}

func TestExportService_MasterDataTemplateSheets(t *testing.T) {
	buf, err := NewExportService(nil).MasterDataTemplate()
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{SheetDepartments, SheetTenants, SheetContracts}, f.GetSheetList())

	alias, err := f.GetCellValue(SheetDepartments, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Alias", alias)

	document, err := f.GetCellValue(SheetContracts, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Documento Inquilino", document)
}
