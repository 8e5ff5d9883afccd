package handlers

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/toroprop/toro-api/internal/repository"
	"github.com/toroprop/toro-api/internal/services"
	"github.com/toroprop/toro-api/internal/storage"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
	reportService  *services.ReportService
	storage        *storage.LocalStorage
}

func NewPaymentHandler(paymentService *services.PaymentService, reportService *services.ReportService, storage *storage.LocalStorage) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, reportService: reportService, storage: storage}
}

// @Summary List Payments
// @Description Get a paginated list of payments
// @Tags Payments
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Param period query string false "Filter by period (YYYY-MM)"
// @Param contract_id query int false "Filter by contract"
// @Success 200 {object} map[string]interface{}
// @Router /payments [get]
func (h *PaymentHandler) Index(c *gin.Context) {
	listQuery := repository.NewListQuery()
	listQuery.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	listQuery.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))

	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		listQuery.SortBy = parts[0]
		if len(parts) > 1 {
			listQuery.SortDir = parts[1]
		}
	}

	query := &repository.PaymentQuery{
		ListQuery: listQuery,
		Status:    c.Query("status"),
		Period:    c.Query("period"),
	}
	if contractID, err := strconv.ParseUint(c.Query("contract_id"), 10, 32); err == nil {
		query.ContractID = uint(contractID)
	}

	payments, total, err := h.paymentService.List(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var responses []interface{}
	for _, payment := range payments {
		responses = append(responses, payment.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": responses,
		"pagination": gin.H{
			"page":     listQuery.Page,
			"per_page": listQuery.PerPage,
			"total":    total,
		},
	})
}

// @Summary Get Payment
// @Description Get a payment by ID
// @Tags Payments
// @Accept json
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.PaymentResponse
// @Failure 404 {object} map[string]string
// @Router /payments/{payment_id} [get]
func (h *PaymentHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)
	payment, err := h.paymentService.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse()})
}

// @Summary Update Payment
// @Description Adjust common charges, utilities or notes of an open payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Param request body services.UpdatePaymentRequest true "Payment Data"
// @Success 200 {object} models.PaymentResponse
// @Router /payments/{payment_id} [put]
func (h *PaymentHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)
	var req services.UpdatePaymentRequest
	if err := BindNestedOrFlat(c, "payment", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.paymentService.Update(c.Request.Context(), uint(id), &req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse()})
}

// @Summary Settle Payment
// @Description Record a full or partial settlement
// @Tags Payments
// @Accept json
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Param request body services.SettlePaymentRequest true "Settlement Data"
// @Success 200 {object} models.PaymentResponse
// @Router /payments/{payment_id}/settle [post]
func (h *PaymentHandler) Settle(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)
	var req services.SettlePaymentRequest
	if err := BindNestedOrFlat(c, "payment", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.paymentService.Settle(c.Request.Context(), uint(id), &req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse(), "message": "Pago registrado"})
}

// @Summary Reopen Payment
// @Description Undo a settlement and return the payment to pending
// @Tags Payments
// @Accept json
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Success 200 {object} models.PaymentResponse
// @Router /payments/{payment_id}/reopen [post]
func (h *PaymentHandler) Reopen(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)
	payment, err := h.paymentService.Reopen(c.Request.Context(), uint(id), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment.ToResponse(), "message": "Pago reabierto"})
}

// @Summary Upload Receipt
// @Description Upload payment receipt image/pdf
// @Tags Payments
// @Accept multipart/form-data
// @Produce json
// @Param payment_id path int true "Payment ID"
// @Param receipt formData file true "Receipt File"
// @Success 200 {object} map[string]string
// @Router /payments/{payment_id}/receipt [post]
func (h *PaymentHandler) UploadReceipt(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)

	file, header, err := c.Request.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Archivo requerido"})
		return
	}
	defer file.Close()

	if _, err := h.paymentService.UploadReceipt(c.Request.Context(), uint(id), file, header, c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comprobante subido exitosamente"})
}

// @Summary Download Receipt
// @Description Download payment receipt
// @Tags Payments
// @Produce application/octet-stream
// @Param payment_id path int true "Payment ID"
// @Success 200 {file} file "receipt"
// @Router /payments/{payment_id}/receipt [get]
func (h *PaymentHandler) DownloadReceipt(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)
	file, relativePath, err := h.paymentService.DownloadReceipt(c.Request.Context(), uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	file.Close()

	c.Header("Content-Disposition", "attachment; filename="+filepath.Base(relativePath))
	c.File(h.storage.GetFullPath(relativePath))
}

// @Summary Receipt PDF
// @Description Generate a settlement receipt PDF
// @Tags Payments
// @Produce application/pdf
// @Param payment_id path int true "Payment ID"
// @Success 200 {file} file "receipt"
// @Router /payments/{payment_id}/receipt/pdf [get]
func (h *PaymentHandler) ReceiptPDF(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payment_id"), 10, 32)
	data, filename, err := h.reportService.GenerateReceiptPDF(c.Request.Context(), uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", data)
}

// @Summary Payment Stats
// @Description Get payment counts and totals, optionally for one period
// @Tags Payments
// @Produce json
// @Param period query string false "Period (YYYY-MM)"
// @Success 200 {object} repository.PaymentStats
// @Router /payments/stats [get]
func (h *PaymentHandler) Stats(c *gin.Context) {
	stats, err := h.paymentService.Stats(c.Request.Context(), c.Query("period"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary Overdue Payments
// @Description List pending payments with accrued late fees
// @Tags Payments
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /payments/overdue [get]
func (h *PaymentHandler) Overdue(c *gin.Context) {
	payments, err := h.paymentService.ListOverdue(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var responses []interface{}
	for _, payment := range payments {
		responses = append(responses, payment.ToResponse())
	}
	c.JSON(http.StatusOK, gin.H{"payments": responses})
}
