package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/toroprop/toro-api/internal/services"
)

type BillingHandler struct {
	billingService *services.BillingService
}

func NewBillingHandler(billingService *services.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

type GenerateObligationsRequest struct {
	Period string `json:"period"`
}

// @Summary Generate Monthly Obligations
// @Description Create one pending payment per active contract for a period. Re-running for the same period only fills gaps.
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body GenerateObligationsRequest false "Target period (YYYY-MM), defaults to current month"
// @Success 200 {object} services.GenerationResult
// @Failure 400 {object} map[string]string
// @Router /billing/generate [post]
func (h *BillingHandler) Generate(c *gin.Context) {
	var req GenerateObligationsRequest
	c.ShouldBindJSON(&req)
	if req.Period == "" {
		req.Period = c.Query("period")
	}

	result, err := h.billingService.GenerateMonthlyObligations(c.Request.Context(), req.Period)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result, "message": "Generación completada"})
}

// @Summary Accrue Late Fees
// @Description Recompute late fees on pending payments past their due date. Pass dry_run=true to preview without writing.
// @Tags Billing
// @Accept json
// @Produce json
// @Param dry_run query bool false "Preview without persisting" default(false)
// @Success 200 {object} services.AccrualResult
// @Router /billing/accrue [post]
func (h *BillingHandler) Accrue(c *gin.Context) {
	dryRun := c.Query("dry_run") == "true" || c.Query("dry_run") == "1"

	result, err := h.billingService.AccrueLateFees(c.Request.Context(), dryRun)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result, "message": "Acumulación completada"})
}
