package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/toroprop/toro-api/internal/repository"
	"github.com/toroprop/toro-api/internal/services"
)

type ContractHandler struct {
	contractService *services.ContractService
	reportService   *services.ReportService
}

func NewContractHandler(contractService *services.ContractService, reportService *services.ReportService) *ContractHandler {
	return &ContractHandler{contractService: contractService, reportService: reportService}
}

// @Summary List Contracts
// @Description Get a paginated list of contracts
// @Tags Contracts
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Param department_id query int false "Filter by department"
// @Param tenant_id query int false "Filter by tenant"
// @Success 200 {object} map[string]interface{}
// @Router /contracts [get]
func (h *ContractHandler) Index(c *gin.Context) {
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

	query := &repository.ContractQuery{
		ListQuery: listQuery,
		Status:    c.Query("status"),
	}
	if departmentID, err := strconv.ParseUint(c.Query("department_id"), 10, 32); err == nil {
		query.DepartmentID = uint(departmentID)
	}
	if tenantID, err := strconv.ParseUint(c.Query("tenant_id"), 10, 32); err == nil {
		query.TenantID = uint(tenantID)
	}

	contracts, total, err := h.contractService.List(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var responses []interface{}
	for _, contract := range contracts {
		responses = append(responses, contract.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"contracts": responses,
		"pagination": gin.H{
			"page":     listQuery.Page,
			"per_page": listQuery.PerPage,
			"total":    total,
		},
	})
}

// @Summary Get Contract
// @Description Get a contract with its department, tenant and payments
// @Tags Contracts
// @Accept json
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} models.ContractResponse
// @Failure 404 {object} map[string]string
// @Router /contracts/{contract_id} [get]
func (h *ContractHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)
	contract, err := h.contractService.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}

// @Summary Create Contract
// @Description Create a contract linking a vacant department to a tenant
// @Tags Contracts
// @Accept json
// @Produce json
// @Param request body services.CreateContractRequest true "Contract Data"
// @Success 201 {object} models.ContractResponse
// @Router /contracts [post]
func (h *ContractHandler) Create(c *gin.Context) {
	var req services.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.contractService.Create(c.Request.Context(), &req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"contract": contract.ToResponse()})
}

// @Summary Update Contract
// @Description Update a contract's rent, dates or documents
// @Tags Contracts
// @Accept json
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Param request body services.UpdateContractRequest true "Contract Data"
// @Success 200 {object} models.ContractResponse
// @Router /contracts/{contract_id} [put]
func (h *ContractHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)
	var req services.UpdateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.contractService.Update(c.Request.Context(), uint(id), &req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}

// @Summary Terminate Contract
// @Description Rescind a contract before its end date
// @Tags Contracts
// @Accept json
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} models.ContractResponse
// @Router /contracts/{contract_id}/terminate [post]
func (h *ContractHandler) Terminate(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)
	contract, err := h.contractService.Terminate(c.Request.Context(), uint(id), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse(), "message": "Contrato rescindido"})
}

// @Summary Expire Contract
// @Description Mark a contract whose end date passed as expired
// @Tags Contracts
// @Accept json
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} models.ContractResponse
// @Router /contracts/{contract_id}/expire [post]
func (h *ContractHandler) Expire(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)
	contract, err := h.contractService.Expire(c.Request.Context(), uint(id), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse(), "message": "Contrato vencido"})
}

// @Summary Contract Statement
// @Description Download an account statement PDF for a contract
// @Tags Contracts
// @Produce application/pdf
// @Param contract_id path int true "Contract ID"
// @Success 200 {file} file "statement"
// @Router /contracts/{contract_id}/statement [get]
func (h *ContractHandler) Statement(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)
	buf, err := h.reportService.GenerateStatementPDF(c.Request.Context(), uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("estado_cuenta_%d.pdf", id)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
