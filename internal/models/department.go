package models

import (
	"time"
)

// Department represents a rental unit (apartment, house, studio, garage)
type Department struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Alias            string     `gorm:"size:100;not null;uniqueIndex" json:"alias"`
	Address          string     `gorm:"size:255;not null" json:"address"`
	OwnerName        *string    `gorm:"size:200" json:"owner_name"`
	PropertyType     string     `gorm:"size:50;not null" json:"property_type"`
	Floor            *int       `json:"floor"`
	Bedrooms         *int       `json:"bedrooms"`
	IncludedServices *string    `gorm:"type:text" json:"included_services"`
	InsurancePolicy  *string    `gorm:"size:100" json:"insurance_policy"`
	InsuranceExpiry  *time.Time `gorm:"type:date" json:"insurance_expiry"`
	Status           string     `gorm:"default:vacant;not null;index" json:"status"`
	StatusSince      time.Time  `gorm:"type:date;not null" json:"status_since"`
	Notes            *string    `gorm:"type:text" json:"notes"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Associations
	Contracts []Contract `gorm:"foreignKey:DepartmentID" json:"contracts,omitempty"`
}

// TableName specifies the table name for Department
func (Department) TableName() string {
	return "departments"
}

// Department status constants
const (
	DepartmentStatusRented     = "rented"
	DepartmentStatusVacant     = "vacant"
	DepartmentStatusRenovation = "renovation"
)

// Property type constants
const (
	PropertyTypeApartment  = "apartment"
	PropertyTypeHouse      = "house"
	PropertyTypeStudio     = "studio"
	PropertyTypeGarage     = "garage"
	PropertyTypeCommercial = "commercial"
)

// IsAvailable returns true if the unit can be put under a new contract
func (d *Department) IsAvailable() bool {
	return d.Status == DepartmentStatusVacant
}
