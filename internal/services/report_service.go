package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/toroprop/toro-api/internal/models"
	"github.com/toroprop/toro-api/internal/repository"
)

// ReportService produces the operational reports: overdue CSV, monthly
// collection CSV, payment receipts and tenant account statements.
type ReportService struct {
	paymentRepo  repository.PaymentRepository
	contractRepo repository.ContractRepository
	dueDay       int
}

func NewReportService(paymentRepo repository.PaymentRepository, contractRepo repository.ContractRepository, dueDay int) *ReportService {
	return &ReportService{
		paymentRepo:  paymentRepo,
		contractRepo: contractRepo,
		dueDay:       dueDay,
	}
}

// GenerateOverdueCSV generates a CSV of payments currently in arrears
func (s *ReportService) GenerateOverdueCSV(ctx context.Context) (*bytes.Buffer, error) {
	payments, err := s.paymentRepo.FindOverdue(ctx)
	if err != nil {
		return nil, err
	}

	b := &bytes.Buffer{}
	w := csv.NewWriter(b)

	header := []string{"ID", "Departamento", "Inquilino", "Teléfono", "Periodo", "Vencimiento", "Días Mora", "Principal", "Mora Acum.", "Total"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	today := time.Now().UTC()
	for _, p := range payments {
		departmentAlias := "N/A"
		tenantName := "N/A"
		phone := "N/A"
		if p.Contract.ID != 0 {
			if p.Contract.Department.ID != 0 {
				departmentAlias = p.Contract.Department.Alias
			}
			if p.Contract.Tenant.ID != 0 {
				tenantName = p.Contract.Tenant.FullName
				if p.Contract.Tenant.Phone != nil && *p.Contract.Tenant.Phone != "" {
					phone = *p.Contract.Tenant.Phone
				}
			}
		}

		dueDate, err := p.DueDate(s.dueDay)
		if err != nil {
			continue
		}
		daysOverdue := int(today.Sub(dueDate).Hours() / 24)
		if daysOverdue < 0 {
			daysOverdue = 0
		}

		record := []string{
			fmt.Sprintf("%d", p.ID),
			departmentAlias,
			tenantName,
			phone,
			p.Period,
			dueDate.Format("2006-01-02"),
			fmt.Sprintf("%d", daysOverdue),
			p.Principal().StringFixed(2),
			p.LateFeeAmount.StringFixed(2),
			p.TotalDue().StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return b, nil
}

// GenerateCollectionCSV generates a CSV of one period's collection status,
// one row per payment plus a totals row.
func (s *ReportService) GenerateCollectionCSV(ctx context.Context, period string) (*bytes.Buffer, error) {
	if _, err := models.ParsePeriod(period); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	payments, err := s.paymentRepo.FindByPeriod(ctx, period)
	if err != nil {
		return nil, err
	}

	b := &bytes.Buffer{}
	w := csv.NewWriter(b)

	header := []string{"Departamento", "Inquilino", "Renta", "Gastos", "Servicios", "Mora", "Total", "Pagado", "Estado"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	stats, err := s.paymentRepo.GetStats(ctx, period)
	if err != nil {
		return nil, err
	}

	for _, p := range payments {
		departmentAlias := "N/A"
		tenantName := "N/A"
		if p.Contract.ID != 0 {
			if p.Contract.Department.ID != 0 {
				departmentAlias = p.Contract.Department.Alias
			}
			if p.Contract.Tenant.ID != 0 {
				tenantName = p.Contract.Tenant.FullName
			}
		}

		paidAmount := ""
		if p.PaidAmount.Valid {
			paidAmount = p.PaidAmount.Decimal.StringFixed(2)
		}

		record := []string{
			departmentAlias,
			tenantName,
			p.RentAmount.StringFixed(2),
			p.CommonCharges.StringFixed(2),
			p.UtilitiesAmount.StringFixed(2),
			p.LateFeeAmount.StringFixed(2),
			p.TotalDue().StringFixed(2),
			paidAmount,
			p.Status,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	totals := []string{
		"TOTAL", "",
		"", "", "",
		stats.TotalLateFees.StringFixed(2),
		stats.TotalBilled.StringFixed(2),
		"",
		fmt.Sprintf("pendientes=%d parciales=%d liquidados=%d", stats.PendingCount, stats.PartialCount, stats.SettledCount),
	}
	if err := w.Write(totals); err != nil {
		return nil, err
	}

	w.Flush()
	return b, nil
}

// GenerateReceiptPDF generates a settlement receipt for a paid payment
func (s *ReportService) GenerateReceiptPDF(ctx context.Context, paymentID uint) ([]byte, string, error) {
	payment, err := s.paymentRepo.FindByIDWithDetails(ctx, paymentID)
	if err != nil {
		return nil, "", err
	}
	if payment.Status == models.PaymentStatusPending {
		return nil, "", fmt.Errorf("%w: el pago no registra liquidación", ErrInvalidState)
	}

	departmentAlias := "N/A"
	tenantName := "N/A"
	if payment.Contract.ID != 0 {
		if payment.Contract.Department.ID != 0 {
			departmentAlias = payment.Contract.Department.Alias
		}
		if payment.Contract.Tenant.ID != 0 {
			tenantName = payment.Contract.Tenant.FullName
		}
	}

	settledAt := ""
	if payment.SettledAt != nil {
		settledAt = payment.SettledAt.Format("02/01/2006")
	}
	paidAmount := "0.00"
	if payment.PaidAmount.Valid {
		paidAmount = payment.PaidAmount.Decimal.StringFixed(2)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Recibo de Pago")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 8, "Recibo No:")
	pdf.Cell(40, 8, fmt.Sprintf("%06d", payment.ID))
	pdf.Ln(6)

	pdf.Cell(60, 8, "Departamento:")
	pdf.Cell(40, 8, departmentAlias)
	pdf.Ln(6)

	pdf.Cell(60, 8, "Inquilino:")
	pdf.Cell(40, 8, tenantName)
	pdf.Ln(6)

	pdf.Cell(60, 8, "Periodo:")
	pdf.Cell(40, 8, payment.Period)
	pdf.Ln(6)

	pdf.Cell(60, 8, "Fecha de Pago:")
	pdf.Cell(40, 8, settledAt)
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Detalle")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 8, "Renta:")
	pdf.Cell(40, 8, payment.RentAmount.StringFixed(2))
	pdf.Ln(6)

	pdf.Cell(60, 8, "Gastos Comunes:")
	pdf.Cell(40, 8, payment.CommonCharges.StringFixed(2))
	pdf.Ln(6)

	pdf.Cell(60, 8, "Servicios:")
	pdf.Cell(40, 8, payment.UtilitiesAmount.StringFixed(2))
	pdf.Ln(6)

	pdf.Cell(60, 8, "Mora:")
	pdf.Cell(40, 8, payment.LateFeeAmount.StringFixed(2))
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(60, 8, "Total:")
	pdf.Cell(40, 8, payment.TotalDue().StringFixed(2))
	pdf.Ln(6)

	pdf.Cell(60, 8, "Monto Pagado:")
	pdf.Cell(40, 8, paidAmount)
	pdf.Ln(6)

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("recibo_%d_%s.pdf", payment.ID, payment.Period)
	return buf.Bytes(), filename, nil
}

// GenerateStatementPDF generates an account statement for one contract:
// every payment of the contract with its status and running totals.
func (s *ReportService) GenerateStatementPDF(ctx context.Context, contractID uint) (*bytes.Buffer, error) {
	contract, err := s.contractRepo.FindByIDWithDetails(ctx, contractID)
	if err != nil {
		return nil, err
	}

	type PaymentLine struct {
		Period   string
		DueDate  string
		Total    string
		Paid     string
		LateFee  string
		Status   string
	}

	statusLabels := map[string]string{
		models.PaymentStatusPending: "Pendiente",
		models.PaymentStatusPartial: "Parcial",
		models.PaymentStatusSettled: "Liquidado",
	}

	var lines []PaymentLine
	totalBilled := decimal.Zero
	totalPaid := decimal.Zero
	for _, p := range contract.Payments {
		dueStr := ""
		if due, err := p.DueDate(s.dueDay); err == nil {
			dueStr = due.Format("02/01/2006")
		}
		paid := ""
		if p.PaidAmount.Valid {
			paid = p.PaidAmount.Decimal.StringFixed(2)
			totalPaid = totalPaid.Add(p.PaidAmount.Decimal)
		}
		totalBilled = totalBilled.Add(p.TotalDue())

		status := p.Status
		if label, ok := statusLabels[status]; ok {
			status = label
		}

		lines = append(lines, PaymentLine{
			Period:  p.Period,
			DueDate: dueStr,
			Total:   p.TotalDue().StringFixed(2),
			Paid:    paid,
			LateFee: p.LateFeeAmount.StringFixed(2),
			Status:  status,
		})
	}

	data := map[string]interface{}{
		"DepartmentAlias": contract.Department.Alias,
		"TenantName":      contract.Tenant.FullName,
		"StartDate":       contract.StartDate.Format("02/01/2006"),
		"EndDate":         contract.EndDate.Format("02/01/2006"),
		"CurrentRent":     contract.CurrentRent.StringFixed(2),
		"Payments":        lines,
		"TotalBilled":     totalBilled.StringFixed(2),
		"TotalPaid":       totalPaid.StringFixed(2),
		"Balance":         totalBilled.Sub(totalPaid).StringFixed(2),
		"Date":            time.Now().Format("02/01/2006"),
	}

	return s.generatePDF("statement.html", data)
}

// Helper to generate PDF from HTML template
func (s *ReportService) generatePDF(templateName string, data interface{}) (*bytes.Buffer, error) {
	tmplPath := fmt.Sprintf("internal/services/templates/reports/%s", templateName)
	if _, err := os.Stat(tmplPath); os.IsNotExist(err) {
		// Path relative to the package, used when running tests
		tmplPath = fmt.Sprintf("templates/reports/%s", templateName)
	}

	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", templateName, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(buf.Bytes()))
	page.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create pdf: %w", err)
	}

	return pdfg.Buffer(), nil
}
