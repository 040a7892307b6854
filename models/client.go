package models

import (
	"time"

	"github.com/google/uuid"
)

// Client represents a customer account that jobs and invoices are raised against
type Client struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ClientCode          string    `gorm:"size:50;uniqueIndex;not null" json:"client_code" binding:"required,max=50"`
	Name                string    `gorm:"size:255;index;not null" json:"name" binding:"required,max=255"`
	Email               *string   `gorm:"size:255;index" json:"email" binding:"omitempty,email,max=255"`
	Phone               string    `gorm:"size:20;index;not null" json:"phone" binding:"required,max=20"`
	Address             string    `gorm:"type:text;not null" json:"address" binding:"required"`
	City                *string   `gorm:"size:100" json:"city" binding:"omitempty,max=100"`
	State               *string   `gorm:"size:100" json:"state" binding:"omitempty,max=100"`
	PostalCode          *string   `gorm:"size:20" json:"postal_code" binding:"omitempty,max=20"`
	Country             string    `gorm:"size:2;not null" json:"country" binding:"required,len=2"`
	PreferredContact    *string   `gorm:"size:10" json:"preferred_contact" binding:"omitempty,oneof=email phone sms"`
	PreferredLanguage   string    `gorm:"size:2;not null" json:"preferred_language" binding:"required,oneof=en es"`
	ServiceHistoryCount int       `gorm:"not null" json:"service_history_count" binding:"min=0"`
	LastServiceDate     *Date     `json:"last_service_date"`
	Notes               *string   `gorm:"type:text" json:"notes"`
	IsActive            bool      `gorm:"not null" json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	Jobs []Scheduling `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"jobs,omitempty" binding:"-"`
}

// NewClient returns a client with a fresh id and the column defaults applied
func NewClient() Client {
	return Client{
		ID:                uuid.New(),
		Country:           "US",
		PreferredLanguage: "en",
		IsActive:          true,
	}
}

// TableName specifies the table name for the Client model
func (Client) TableName() string {
	return "clients"
}
