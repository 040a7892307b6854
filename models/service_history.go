package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceHistory is a log entry of service delivered to a client
type ServiceHistory struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ClientID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"client_id"`
	JobID         *uuid.UUID `gorm:"type:uuid;index" json:"job_id"`
	WorkOrderID   *uuid.UUID `gorm:"type:uuid;index" json:"work_order_id"`
	ServiceDate   Date       `gorm:"index;not null" json:"service_date" binding:"required"`
	ServiceType   *string    `gorm:"size:100" json:"service_type" binding:"omitempty,max=100"`
	Description   *string    `gorm:"type:text" json:"description"`
	TechnicianID  *uuid.UUID `gorm:"type:uuid;index" json:"technician_id"`
	AmountCharged *float64   `gorm:"type:decimal(12,2)" json:"amount_charged" binding:"omitempty,min=0"`
	Notes         *string    `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Client     *Client     `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty" binding:"-"`
	Job        *Scheduling `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"job,omitempty" binding:"-"`
	WorkOrder  *WorkOrder  `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE" json:"work_order,omitempty" binding:"-"`
	Technician *Technician `gorm:"foreignKey:TechnicianID;constraint:OnDelete:SET NULL" json:"technician,omitempty" binding:"-"`
}

// TableName specifies the table name for the ServiceHistory model
func (ServiceHistory) TableName() string {
	return "service_history"
}
