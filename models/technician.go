package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Technician locations
const (
	LocationSanDiego = "San Diego"
	LocationTijuana  = "Tijuana"
	LocationBoth     = "Both"
)

// Technician is a field employee who can be assigned jobs and work orders
type Technician struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             *string   `gorm:"size:255;index" json:"user_id" binding:"omitempty,max=255"` // auth subject of the linked login
	FirstName          *string   `gorm:"size:100" json:"first_name" binding:"omitempty,max=100"`
	LastName           *string   `gorm:"size:100" json:"last_name" binding:"omitempty,max=100"`
	EmployeeID         string    `gorm:"size:50;uniqueIndex;not null" json:"employee_id" binding:"required,max=50"`
	Specialization     *string   `gorm:"size:100" json:"specialization" binding:"omitempty,max=100"`
	Location           *string   `gorm:"size:20;index" json:"location" binding:"omitempty,oneof='San Diego' Tijuana Both"`
	CertificationLevel *string   `gorm:"size:50" json:"certification_level" binding:"omitempty,max=50"`
	HourlyRate         *float64  `gorm:"type:decimal(10,2)" json:"hourly_rate" binding:"omitempty,min=0,max=99999999.99"`
	IsAvailable        bool      `gorm:"not null;index" json:"is_available"`
	CurrentLatitude    *float64  `gorm:"type:decimal(10,8)" json:"current_latitude" binding:"omitempty,min=-90,max=90"`
	CurrentLongitude   *float64  `gorm:"type:decimal(11,8)" json:"current_longitude" binding:"omitempty,min=-180,max=180"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	Jobs []Scheduling `gorm:"foreignKey:TechnicianID;constraint:OnDelete:SET NULL" json:"jobs,omitempty" binding:"-"`
}

// NewTechnician returns a technician with a fresh id, available by default
func NewTechnician() Technician {
	return Technician{
		ID:          uuid.New(),
		IsAvailable: true,
	}
}

// TableName specifies the table name for the Technician model
func (Technician) TableName() string {
	return "technicians"
}

// DisplayName joins first and last name, falling back to the employee id
func (t Technician) DisplayName() string {
	var parts []string
	if t.FirstName != nil && *t.FirstName != "" {
		parts = append(parts, *t.FirstName)
	}
	if t.LastName != nil && *t.LastName != "" {
		parts = append(parts, *t.LastName)
	}
	if len(parts) == 0 {
		return t.EmployeeID
	}
	return strings.Join(parts, " ")
}
