package models

import (
	"time"

	"github.com/google/uuid"
)

// Work order statuses
const (
	WorkOrderStatusPending    = "pending"
	WorkOrderStatusInProgress = "in_progress"
	WorkOrderStatusCompleted  = "completed"
	WorkOrderStatusCancelled  = "cancelled"
)

// WorkOrder is the billable record of work performed against a job
type WorkOrder struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WorkOrderNumber string     `gorm:"size:50;uniqueIndex;not null" json:"work_order_number" binding:"required,max=50"`
	JobID           uuid.UUID  `gorm:"type:uuid;index;not null" json:"job_id"`
	ClientID        uuid.UUID  `gorm:"type:uuid;index;not null" json:"client_id"`
	TechnicianID    *uuid.UUID `gorm:"type:uuid;index" json:"technician_id"`
	Title           string     `gorm:"size:255;not null" json:"title" binding:"required,max=255"`
	Description     string     `gorm:"type:text;not null" json:"description" binding:"required"`
	Status          string     `gorm:"size:20;index;not null" json:"status" binding:"required,oneof=pending in_progress completed cancelled"`
	Priority        string     `gorm:"size:50;not null" json:"priority" binding:"required,max=50"`
	ScheduledDate   *Date      `gorm:"index" json:"scheduled_date"`
	CompletedDate   *time.Time `gorm:"index" json:"completed_date"`
	TechnicianNotes *string    `gorm:"type:text" json:"technician_notes"`
	ClientSignature *string    `gorm:"type:text" json:"client_signature"`
	SignatureDate   *time.Time `json:"signature_date"`
	LaborHours      *float64   `gorm:"type:decimal(5,2)" json:"labor_hours" binding:"omitempty,min=0"`
	LaborCost       *float64   `gorm:"type:decimal(10,2)" json:"labor_cost" binding:"omitempty,min=0"`
	PartsCost       *float64   `gorm:"type:decimal(10,2)" json:"parts_cost" binding:"omitempty,min=0"`
	TotalCost       *float64   `gorm:"type:decimal(10,2)" json:"total_cost" binding:"omitempty,min=0"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Job        *Scheduling      `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"job,omitempty" binding:"-"`
	Client     *Client          `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty" binding:"-"`
	Technician *Technician      `gorm:"foreignKey:TechnicianID;constraint:OnDelete:SET NULL" json:"technician,omitempty" binding:"-"`
	Photos     []WorkOrderPhoto `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:CASCADE" json:"photos,omitempty" binding:"-"`
}

// NewWorkOrder returns a work order with a fresh id and default status and priority
func NewWorkOrder() WorkOrder {
	return WorkOrder{
		ID:       uuid.New(),
		Status:   WorkOrderStatusPending,
		Priority: PriorityNormal,
	}
}

// TableName specifies the table name for the WorkOrder model
func (WorkOrder) TableName() string {
	return "work_orders"
}

// WorkOrderPhoto is a photo attached to a work order. The file itself lives
// in blob storage under PhotoPath.
type WorkOrderPhoto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WorkOrderID uuid.UUID `gorm:"type:uuid;index;not null" json:"work_order_id"`
	PhotoURL    string    `gorm:"type:text;not null" json:"photo_url"`
	PhotoPath   string    `gorm:"type:text;not null" json:"photo_path"`
	Caption     *string   `gorm:"type:text" json:"caption"`
	UploadedBy  *string   `gorm:"size:255" json:"uploaded_by"`
	UploadedAt  time.Time `gorm:"not null" json:"uploaded_at"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the WorkOrderPhoto model
func (WorkOrderPhoto) TableName() string {
	return "work_order_photos"
}
