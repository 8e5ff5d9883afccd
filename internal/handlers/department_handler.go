package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/toroprop/toro-api/internal/repository"
	"github.com/toroprop/toro-api/internal/services"
)

type DepartmentHandler struct {
	departmentService *services.DepartmentService
}

func NewDepartmentHandler(departmentService *services.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{departmentService: departmentService}
}

// @Summary List Departments
// @Description Get a paginated list of departments
// @Tags Departments
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Param property_type query string false "Filter by property type"
// @Param search_term query string false "Search term"
// @Success 200 {object} map[string]interface{}
// @Router /departments [get]
func (h *DepartmentHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.Filters["status"] = c.Query("status")
	query.Filters["property_type"] = c.Query("property_type")

	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	departments, total, err := h.departmentService.List(c.Request.Context(), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"departments": departments,
		"pagination": gin.H{
			"page":     query.Page,
			"per_page": query.PerPage,
			"total":    total,
		},
	})
}

// @Summary Get Department
// @Description Get a department by ID
// @Tags Departments
// @Accept json
// @Produce json
// @Param department_id path int true "Department ID"
// @Success 200 {object} models.Department
// @Failure 404 {object} map[string]string
// @Router /departments/{department_id} [get]
func (h *DepartmentHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("department_id"), 10, 32)
	department, err := h.departmentService.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"department": department})
}

// @Summary Create Department
// @Description Create a new department
// @Tags Departments
// @Accept json
// @Produce json
// @Param request body services.CreateDepartmentRequest true "Department Data"
// @Success 201 {object} models.Department
// @Router /departments [post]
func (h *DepartmentHandler) Create(c *gin.Context) {
	var req services.CreateDepartmentRequest
	if err := BindNestedOrFlat(c, "department", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	department, err := h.departmentService.Create(c.Request.Context(), &req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"department": department})
}

// @Summary Update Department
// @Description Update an existing department
// @Tags Departments
// @Accept json
// @Produce json
// @Param department_id path int true "Department ID"
// @Param request body services.UpdateDepartmentRequest true "Department Data"
// @Success 200 {object} models.Department
// @Router /departments/{department_id} [put]
func (h *DepartmentHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("department_id"), 10, 32)
	var req services.UpdateDepartmentRequest
	if err := BindNestedOrFlat(c, "department", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	department, err := h.departmentService.Update(c.Request.Context(), uint(id), &req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"department": department})
}

// @Summary Delete Department
// @Description Delete a department without an active contract
// @Tags Departments
// @Accept json
// @Produce json
// @Param department_id path int true "Department ID"
// @Success 200 {object} map[string]string
// @Router /departments/{department_id} [delete]
func (h *DepartmentHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("department_id"), 10, 32)
	if err := h.departmentService.Delete(c.Request.Context(), uint(id), c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Departamento eliminado"})
}

// @Summary Department Occupancy
// @Description Get department counts grouped by status
// @Tags Departments
// @Produce json
// @Success 200 {object} map[string]int64
// @Router /departments/occupancy [get]
func (h *DepartmentHandler) Occupancy(c *gin.Context) {
	counts, err := h.departmentService.Occupancy(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"occupancy": counts})
}
