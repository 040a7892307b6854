package models

import (
	"time"

	"github.com/google/uuid"
)

// Job statuses
const (
	JobStatusScheduled  = "scheduled"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusCancelled  = "cancelled"
)

// PriorityNormal is the default priority for jobs and work orders
const PriorityNormal = "normal"

// Scheduling is a scheduled service visit (a job) for a client
type Scheduling struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	JobNumber         string     `gorm:"size:50;uniqueIndex;not null" json:"job_number" binding:"required,max=50"`
	ClientID          uuid.UUID  `gorm:"type:uuid;index;not null" json:"client_id"`
	TechnicianID      *uuid.UUID `gorm:"type:uuid;index" json:"technician_id"`
	Title             string     `gorm:"size:255;not null" json:"title" binding:"required,max=255"`
	Description       *string    `gorm:"type:text" json:"description"`
	ServiceType       string     `gorm:"size:100;not null" json:"service_type" binding:"required,max=100"`
	Status            string     `gorm:"size:20;index;not null" json:"status" binding:"required,oneof=scheduled in_progress completed cancelled"`
	Priority          string     `gorm:"size:50;not null" json:"priority" binding:"required,max=50"`
	ScheduledDate     Date       `gorm:"index;not null" json:"scheduled_date" binding:"required"`
	ScheduledTime     string     `gorm:"size:8;not null" json:"scheduled_time" binding:"required,clock"`
	EstimatedDuration *int       `json:"estimated_duration" binding:"omitempty,min=0"` // minutes
	ActualStartTime   *time.Time `json:"actual_start_time"`
	ActualEndTime     *time.Time `json:"actual_end_time"`
	LocationAddress   string     `gorm:"type:text;not null" json:"location_address" binding:"required"`
	LocationLat       *float64   `gorm:"type:decimal(10,8)" json:"location_lat" binding:"omitempty,min=-90,max=90"`
	LocationLng       *float64   `gorm:"type:decimal(11,8)" json:"location_lng" binding:"omitempty,min=-180,max=180"`
	Notes             *string    `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	Client     *Client     `gorm:"foreignKey:ClientID" json:"client,omitempty" binding:"-"`
	Technician *Technician `gorm:"foreignKey:TechnicianID" json:"technician,omitempty" binding:"-"`
}

// NewScheduling returns a job with a fresh id and default status and priority
func NewScheduling() Scheduling {
	return Scheduling{
		ID:       uuid.New(),
		Status:   JobStatusScheduled,
		Priority: PriorityNormal,
	}
}

// TableName specifies the table name for the Scheduling model
func (Scheduling) TableName() string {
	return "scheduling"
}
