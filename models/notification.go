package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Notification channels
const (
	NotificationSMS   = "sms"
	NotificationEmail = "email"
	NotificationInApp = "in-app"
)

// Notification statuses
const (
	NotificationStatusPending   = "pending"
	NotificationStatusScheduled = "scheduled"
	NotificationStatusSent      = "sent"
	NotificationStatusFailed    = "failed"
	NotificationStatusRead      = "read"
)

// Notification is a message queued for a staff user or a client
type Notification struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             *string           `gorm:"size:255;index" json:"user_id" binding:"omitempty,max=255"`
	ClientID           *uuid.UUID        `gorm:"type:uuid;index" json:"client_id"`
	NotificationType   string            `gorm:"size:20;not null" json:"notification_type" binding:"required,oneof=sms email in-app"`
	Subject            *string           `gorm:"size:255" json:"subject" binding:"omitempty,max=255"`
	Message            string            `gorm:"type:text;not null" json:"message" binding:"required"`
	Status             string            `gorm:"size:20;index;not null" json:"status" binding:"required,oneof=pending scheduled sent failed read"`
	ScheduledFor       *time.Time        `gorm:"index" json:"scheduled_for"`
	SentAt             *time.Time        `json:"sent_at"`
	ReadAt             *time.Time        `json:"read_at"`
	RelatedJobID       *uuid.UUID        `gorm:"type:uuid" json:"related_job_id"`
	RelatedWorkOrderID *uuid.UUID        `gorm:"type:uuid" json:"related_work_order_id"`
	Metadata           datatypes.JSONMap `json:"metadata"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`

	Client           *Client     `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty" binding:"-"`
	RelatedJob       *Scheduling `gorm:"foreignKey:RelatedJobID;constraint:OnDelete:SET NULL" json:"-" binding:"-"`
	RelatedWorkOrder *WorkOrder  `gorm:"foreignKey:RelatedWorkOrderID;constraint:OnDelete:SET NULL" json:"-" binding:"-"`
}

// NewNotification returns a pending notification with a fresh id
func NewNotification() Notification {
	return Notification{
		ID:     uuid.New(),
		Status: NotificationStatusPending,
	}
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
