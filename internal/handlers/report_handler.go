package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/toroprop/toro-api/internal/repository"
	"github.com/toroprop/toro-api/internal/services"
)

type ReportHandler struct {
	reportService *services.ReportService
	exportService *services.ExportService
	importService *services.ImportService
}

func NewReportHandler(reportService *services.ReportService, exportService *services.ExportService, importService *services.ImportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		exportService: exportService,
		importService: importService,
	}
}

// @Summary Overdue Report
// @Description Download a CSV of payments currently in arrears
// @Tags Reports
// @Produce text/csv
// @Success 200 {file} file "csv"
// @Router /reports/overdue [get]
func (h *ReportHandler) OverdueCSV(c *gin.Context) {
	buf, err := h.reportService.GenerateOverdueCSV(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("morosidad_%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// @Summary Collection Report
// @Description Download a CSV of one period's collection status
// @Tags Reports
// @Produce text/csv
// @Param period query string true "Period (YYYY-MM)"
// @Success 200 {file} file "csv"
// @Failure 400 {object} map[string]string
// @Router /reports/collection [get]
func (h *ReportHandler) CollectionCSV(c *gin.Context) {
	period := c.Query("period")
	buf, err := h.reportService.GenerateCollectionCSV(c.Request.Context(), period)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("cobranza_%s.csv", period)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// @Summary Export Payments
// @Description Download an Excel workbook of payments, optionally filtered
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param period query string false "Period (YYYY-MM)"
// @Param status query string false "Filter by status"
// @Success 200 {file} file "xlsx"
// @Router /reports/payments/export [get]
func (h *ReportHandler) ExportPayments(c *gin.Context) {
	query := &repository.PaymentQuery{
		ListQuery: repository.NewListQuery(),
		Status:    c.Query("status"),
		Period:    c.Query("period"),
	}

	buf, err := h.exportService.ExportPayments(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+services.ExportFileName(query.Period))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// @Summary Import Template
// @Description Download the empty master data workbook
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file "xlsx"
// @Router /reports/import/template [get]
func (h *ReportHandler) ImportTemplate(c *gin.Context) {
	buf, err := h.exportService.MasterDataTemplate()
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=plantilla_datos.xlsx")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// @Summary Import Master Data
// @Description Upload a filled master data workbook. Invalid rows are skipped and reported.
// @Tags Reports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Workbook"
// @Success 200 {object} services.ImportResult
// @Router /reports/import [post]
func (h *ReportHandler) Import(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Archivo requerido"})
		return
	}
	defer file.Close()

	result, err := h.importService.ImportMasterData(c.Request.Context(), file, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result, "message": "Importación completada"})
}
