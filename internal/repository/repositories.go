package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Department DepartmentRepository
	Tenant     TenantRepository
	Contract   ContractRepository
	Payment    PaymentRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Department: NewDepartmentRepository(db),
		Tenant:     NewTenantRepository(db),
		Contract:   NewContractRepository(db),
		Payment:    NewPaymentRepository(db),
	}
}

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

func (q *ListQuery) offset() int {
	page := q.Page
	if page < 1 {
		page = 1
	}
	return (page - 1) * q.PerPage
}

// paginate applies offset/limit to a query
func paginate(db *gorm.DB, q *ListQuery) *gorm.DB {
	if q.PerPage > 0 {
		db = db.Offset(q.offset()).Limit(q.PerPage)
	}
	return db
}

// orderBy applies sorting with a whitelist of sortable columns
func orderBy(db *gorm.DB, q *ListQuery, allowed map[string]bool, fallback string) *gorm.DB {
	if q.SortBy != "" && allowed[q.SortBy] {
		dir := "asc"
		if q.SortDir == "desc" {
			dir = "desc"
		}
		return db.Order(q.SortBy + " " + dir)
	}
	return db.Order(fallback)
}
