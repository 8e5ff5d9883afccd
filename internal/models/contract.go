package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contract represents a rental agreement between one department and one tenant
type Contract struct {
	ID                 uint                `gorm:"primaryKey" json:"id"`
	DepartmentID       uint                `gorm:"not null;index" json:"department_id"`
	TenantID           uint                `gorm:"not null;index" json:"tenant_id"`
	StartDate          time.Time           `gorm:"type:date;not null" json:"start_date"`
	EndDate            time.Time           `gorm:"type:date;not null;index" json:"end_date"`
	InitialRent        decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"initial_rent"`
	CurrentRent        decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"current_rent"`
	AdjustmentRule     *string             `gorm:"size:255" json:"adjustment_rule"`
	NextAdjustmentDate *time.Time          `gorm:"type:date" json:"next_adjustment_date"`
	SecurityDeposit    decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"security_deposit"`
	SignedDocumentURL  *string             `gorm:"size:500" json:"signed_document_url"`
	Status             string              `gorm:"default:active;not null;index" json:"status"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`

	// Associations
	Department Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Tenant     Tenant     `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	Payments   []Payment  `gorm:"foreignKey:ContractID" json:"payments,omitempty"`
}

// TableName specifies the table name for Contract
func (Contract) TableName() string {
	return "contracts"
}

// Contract status constants
const (
	ContractStatusActive     = "active"
	ContractStatusExpired    = "expired"
	ContractStatusTerminated = "terminated"
)

// IsActive returns true if the contract is currently billed
func (c *Contract) IsActive() bool {
	return c.Status == ContractStatusActive
}

// MayTerminate returns true if the contract can be rescinded early
func (c *Contract) MayTerminate() bool {
	return c.Status == ContractStatusActive
}

// MayExpire returns true if the contract can be marked as run out
func (c *Contract) MayExpire() bool {
	return c.Status == ContractStatusActive
}

// ContractResponse is the JSON response format for contracts
type ContractResponse struct {
	ID                 uint                `json:"id"`
	DepartmentID       uint                `json:"department_id"`
	DepartmentAlias    string              `json:"department_alias,omitempty"`
	TenantID           uint                `json:"tenant_id"`
	TenantName         string              `json:"tenant_name,omitempty"`
	StartDate          time.Time           `json:"start_date"`
	EndDate            time.Time           `json:"end_date"`
	InitialRent        decimal.Decimal     `json:"initial_rent"`
	CurrentRent        decimal.Decimal     `json:"current_rent"`
	AdjustmentRule     *string             `json:"adjustment_rule"`
	NextAdjustmentDate *time.Time          `json:"next_adjustment_date"`
	SecurityDeposit    decimal.NullDecimal `json:"security_deposit"`
	SignedDocumentURL  *string             `json:"signed_document_url"`
	Status             string              `json:"status"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
	Payments           []PaymentResponse   `json:"payments,omitempty"`
}

// ToResponse converts Contract to ContractResponse
func (c *Contract) ToResponse() ContractResponse {
	resp := ContractResponse{
		ID:                 c.ID,
		DepartmentID:       c.DepartmentID,
		TenantID:           c.TenantID,
		StartDate:          c.StartDate,
		EndDate:            c.EndDate,
		InitialRent:        c.InitialRent,
		CurrentRent:        c.CurrentRent,
		AdjustmentRule:     c.AdjustmentRule,
		NextAdjustmentDate: c.NextAdjustmentDate,
		SecurityDeposit:    c.SecurityDeposit,
		SignedDocumentURL:  c.SignedDocumentURL,
		Status:             c.Status,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}

	if c.Department.ID != 0 {
		resp.DepartmentAlias = c.Department.Alias
	}
	if c.Tenant.ID != 0 {
		resp.TenantName = c.Tenant.FullName
	}
	for _, payment := range c.Payments {
		resp.Payments = append(resp.Payments, payment.ToResponse())
	}

	return resp
}
