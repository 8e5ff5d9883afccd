package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/toroprop/toro-api/internal/repository"
	"github.com/xuri/excelize/v2"
)

// ExportService produces Excel workbooks for payments and the master data
// import template.
type ExportService struct {
	repos *repository.Repositories
}

func NewExportService(repos *repository.Repositories) *ExportService {
	return &ExportService{repos: repos}
}

// ExportPayments builds an xlsx workbook with every payment matching the
// query, one row per payment.
func (s *ExportService) ExportPayments(ctx context.Context, query *repository.PaymentQuery) (*bytes.Buffer, error) {
	if query.ListQuery == nil {
		query.ListQuery = repository.NewListQuery()
	}
	query.PerPage = 0 // export everything
	payments, _, err := s.repos.Payment.List(ctx, query)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Pagos"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Departamento", "Inquilino", "Periodo", "Renta", "Gastos Comunes", "Servicios", "Mora", "Total", "Pagado", "Estado", "Fecha Pago"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	f.SetCellStyle(sheet, "A1", "L1", headerStyle)

	for i, payment := range payments {
		row := i + 2
		settledAt := ""
		if payment.SettledAt != nil {
			settledAt = payment.SettledAt.Format("2006-01-02")
		}
		paidAmount := ""
		if payment.PaidAmount.Valid {
			paidAmount = payment.PaidAmount.Decimal.StringFixed(2)
		}

		values := []interface{}{
			payment.ID,
			payment.Contract.Department.Alias,
			payment.Contract.Tenant.FullName,
			payment.Period,
			payment.RentAmount.StringFixed(2),
			payment.CommonCharges.StringFixed(2),
			payment.UtilitiesAmount.StringFixed(2),
			payment.LateFeeAmount.StringFixed(2),
			payment.TotalDue().StringFixed(2),
			paidAmount,
			payment.Status,
			settledAt,
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			f.SetCellValue(sheet, cell, value)
		}
	}

	f.SetColWidth(sheet, "B", "C", 24)
	f.SetColWidth(sheet, "D", "L", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

// Sheet names the master data importer reads back
const (
	SheetDepartments = "Departamentos"
	SheetTenants     = "Inquilinos"
	SheetContracts   = "Contratos"
)

// MasterDataTemplate builds the empty three-sheet workbook used for bulk
// onboarding. Column order must match what ImportService expects.
func (s *ExportService) MasterDataTemplate() (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E2EFDA"}, Pattern: 1},
	})

	sheets := map[string][]string{
		SheetDepartments: {"Alias", "Direccion", "Tipo", "Piso", "Dormitorios", "Notas"},
		SheetTenants:     {"Nombre Completo", "Documento", "Email", "Telefono", "Canal Contacto", "Notas"},
		SheetContracts:   {"Departamento Alias", "Documento Inquilino", "Fecha Inicio", "Fecha Fin", "Renta Inicial", "Deposito"},
	}

	f.SetSheetName("Sheet1", SheetDepartments)
	f.NewSheet(SheetTenants)
	f.NewSheet(SheetContracts)

	for sheet, headers := range sheets {
		for i, header := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, header)
		}
		lastCell, _ := excelize.CoordinatesToCellName(len(headers), 1)
		f.SetCellStyle(sheet, "A1", lastCell, headerStyle)
		f.SetColWidth(sheet, "A", "F", 22)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write template: %w", err)
	}
	return buf, nil
}

// exportFileName builds the attachment name for a payments export
func ExportFileName(period string) string {
	if period == "" {
		return "pagos.xlsx"
	}
	return fmt.Sprintf("pagos_%s.xlsx", period)
}
