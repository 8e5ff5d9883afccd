package models

import (
	"time"
)

// Tenant represents a person renting one or more departments
type Tenant struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	FullName       string    `gorm:"size:200;not null" json:"full_name"`
	NationalID     *string   `gorm:"size:20;uniqueIndex" json:"national_id"`
	Phone          *string   `gorm:"size:50" json:"phone"`
	Email          *string   `gorm:"size:255" json:"email"`
	ContactChannel string    `gorm:"size:50;default:whatsapp" json:"contact_channel"`
	Status         string    `gorm:"default:active;not null;index" json:"status"`
	Notes          *string   `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Associations
	Contracts []Contract `gorm:"foreignKey:TenantID" json:"contracts,omitempty"`
}

// TableName specifies the table name for Tenant
func (Tenant) TableName() string {
	return "tenants"
}

// Tenant status constants
const (
	TenantStatusActive   = "active"
	TenantStatusInactive = "inactive"
)

// Contact channel constants
const (
	ContactChannelWhatsApp = "whatsapp"
)
