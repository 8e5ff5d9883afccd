package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Payment represents the monthly obligation of one contract for one period.
// At most one row exists per (contract, period) pair; the composite unique
// index backs the generator's duplicate check under concurrent runs.
type Payment struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	ContractID      uint                `gorm:"not null;uniqueIndex:idx_payments_contract_period" json:"contract_id"`
	Period          string              `gorm:"size:7;not null;uniqueIndex:idx_payments_contract_period;index" json:"period"`
	RentAmount      decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"rent_amount"`
	CommonCharges   decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0" json:"common_charges"`
	UtilitiesAmount decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0" json:"utilities_amount"`
	LateFeeAmount   decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0" json:"late_fee_amount"`
	PaidAmount      decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"paid_amount"`
	PaymentMethod   *string             `gorm:"size:50" json:"payment_method"`
	SettledAt       *time.Time          `gorm:"type:date" json:"settled_at"`
	Notes           *string             `gorm:"type:text" json:"notes"`
	Status          string              `gorm:"default:pending;not null;index" json:"status"`
	ReceiptPath     *string             `json:"-"`
	CreatedAt       time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`

	// Associations
	Contract Contract `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

// Payment status constants
const (
	PaymentStatusPending = "pending"
	PaymentStatusPartial = "partial"
	PaymentStatusSettled = "settled"
)

// Principal returns the base owed for the period: rent plus common charges
// plus utilities. The late fee never feeds back into the principal.
func (p *Payment) Principal() decimal.Decimal {
	return p.RentAmount.Add(p.CommonCharges).Add(p.UtilitiesAmount)
}

// TotalDue returns principal plus the accrued late fee
func (p *Payment) TotalDue() decimal.Decimal {
	return p.Principal().Add(p.LateFeeAmount)
}

// MaySettle returns true if payment can be settled in full
func (p *Payment) MaySettle() bool {
	return p.Status == PaymentStatusPending || p.Status == PaymentStatusPartial
}

// MaySettlePartial returns true if a partial settlement can be recorded
func (p *Payment) MaySettlePartial() bool {
	return p.Status == PaymentStatusPending
}

// MayReopen returns true if a settlement can be undone
func (p *Payment) MayReopen() bool {
	return p.Status == PaymentStatusSettled || p.Status == PaymentStatusPartial
}

// DueDate derives the payment's due date from its period token and the
// configured due day of month.
func (p *Payment) DueDate(dueDay int) (time.Time, error) {
	period, err := ParsePeriod(p.Period)
	if err != nil {
		return time.Time{}, err
	}
	return period.DueDate(dueDay), nil
}

// IsOverdue returns true if the payment is still open past its due date.
// Rows with malformed period tokens are reported as not overdue here; the
// accrual engine logs and skips them.
func (p *Payment) IsOverdue(dueDay int, at time.Time) bool {
	if p.Status != PaymentStatusPending {
		return false
	}
	due, err := p.DueDate(dueDay)
	if err != nil {
		return false
	}
	return at.After(due)
}

// PaymentResponse is the JSON response format for payments
type PaymentResponse struct {
	ID              uint                `json:"id"`
	ContractID      uint                `json:"contract_id"`
	Period          string              `json:"period"`
	RentAmount      decimal.Decimal     `json:"rent_amount"`
	CommonCharges   decimal.Decimal     `json:"common_charges"`
	UtilitiesAmount decimal.Decimal     `json:"utilities_amount"`
	LateFeeAmount   decimal.Decimal     `json:"late_fee_amount"`
	TotalDue        decimal.Decimal     `json:"total_due"`
	PaidAmount      decimal.NullDecimal `json:"paid_amount"`
	PaymentMethod   *string             `json:"payment_method"`
	SettledAt       *time.Time          `json:"settled_at"`
	Notes           *string             `json:"notes"`
	Status          string              `json:"status"`
	HasReceipt      bool                `json:"has_receipt"`
	IsPDF           bool                `json:"is_pdf"`
	CreatedAt       time.Time           `json:"created_at"`

	// Contract details
	DepartmentAlias string `json:"department_alias,omitempty"`
	TenantName      string `json:"tenant_name,omitempty"`
}

// ToResponse converts Payment to PaymentResponse
func (p *Payment) ToResponse() PaymentResponse {
	resp := PaymentResponse{
		ID:              p.ID,
		ContractID:      p.ContractID,
		Period:          p.Period,
		RentAmount:      p.RentAmount,
		CommonCharges:   p.CommonCharges,
		UtilitiesAmount: p.UtilitiesAmount,
		LateFeeAmount:   p.LateFeeAmount,
		TotalDue:        p.TotalDue(),
		PaidAmount:      p.PaidAmount,
		PaymentMethod:   p.PaymentMethod,
		SettledAt:       p.SettledAt,
		Notes:           p.Notes,
		Status:          p.Status,
		HasReceipt:      p.ReceiptPath != nil && *p.ReceiptPath != "",
		IsPDF:           p.ReceiptPath != nil && strings.HasSuffix(strings.ToLower(*p.ReceiptPath), ".pdf"),
		CreatedAt:       p.CreatedAt,
	}

	if p.Contract.ID != 0 {
		if p.Contract.Department.ID != 0 {
			resp.DepartmentAlias = p.Contract.Department.Alias
		}
		if p.Contract.Tenant.ID != 0 {
			resp.TenantName = p.Contract.Tenant.FullName
		}
	}

	return resp
}
