package models

import (
	"time"

	"github.com/google/uuid"
)

// Billing statuses
const (
	BillingStatusDraft     = "draft"
	BillingStatusIssued    = "issued"
	BillingStatusPaid      = "paid"
	BillingStatusOverdue   = "overdue"
	BillingStatusCancelled = "cancelled"
)

// Invoice types
const (
	InvoiceTypeQuote   = "quote"
	InvoiceTypeInvoice = "invoice"
)

// Billing is an invoice or quote issued to a client
type Billing struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNumber   string     `gorm:"size:50;uniqueIndex;not null" json:"invoice_number" binding:"required,max=50"`
	ClientID        uuid.UUID  `gorm:"type:uuid;index;not null" json:"client_id"`
	WorkOrderID     *uuid.UUID `gorm:"type:uuid;index" json:"work_order_id"`
	JobID           *uuid.UUID `gorm:"type:uuid;index" json:"job_id"`
	InvoiceType     string     `gorm:"size:20;not null" json:"invoice_type" binding:"required,oneof=quote invoice"`
	Status          string     `gorm:"size:20;index;not null" json:"status" binding:"required,oneof=draft issued paid overdue cancelled"`
	IssueDate       Date       `gorm:"index;not null" json:"issue_date" binding:"required"`
	DueDate         Date       `gorm:"not null" json:"due_date" binding:"required"`
	Subtotal        float64    `gorm:"type:decimal(12,2);not null" json:"subtotal" binding:"min=0"`
	TaxRate         *float64   `gorm:"type:decimal(5,2);not null;default:0" json:"tax_rate" binding:"omitempty,min=0"`
	TaxAmount       float64    `gorm:"type:decimal(12,2);not null" json:"tax_amount" binding:"min=0"`
	DiscountAmount  float64    `gorm:"type:decimal(12,2);not null" json:"discount_amount" binding:"min=0"`
	TotalAmount     float64    `gorm:"type:decimal(12,2);not null" json:"total_amount" binding:"min=0"`
	AmountPaid      float64    `gorm:"type:decimal(12,2);not null" json:"amount_paid" binding:"min=0"`
	BalanceDue      float64    `gorm:"type:decimal(12,2);not null" json:"balance_due"`
	PaymentMethod   *string    `gorm:"size:50" json:"payment_method" binding:"omitempty,max=50"`
	PaymentDate     *Date      `json:"payment_date"`
	Notes           *string    `gorm:"type:text" json:"notes"`
	TermsConditions *string    `gorm:"type:text" json:"terms_conditions"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Client    *Client           `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"client,omitempty" binding:"-"`
	WorkOrder *WorkOrder        `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:SET NULL" json:"work_order,omitempty" binding:"-"`
	Job       *Scheduling       `gorm:"foreignKey:JobID;constraint:OnDelete:SET NULL" json:"job,omitempty" binding:"-"`
	LineItems []BillingLineItem `gorm:"foreignKey:BillingID;constraint:OnDelete:CASCADE" json:"line_items,omitempty" binding:"omitempty,dive"`
}

// NewBilling returns a draft invoice with a fresh id
func NewBilling() Billing {
	return Billing{
		ID:          uuid.New(),
		InvoiceType: InvoiceTypeInvoice,
		Status:      BillingStatusDraft,
	}
}

// TaxPercent is the tax rate, zero when none was set
func (b *Billing) TaxPercent() float64 {
	if b.TaxRate == nil {
		return 0
	}
	return *b.TaxRate
}

// TableName specifies the table name for the Billing model
func (Billing) TableName() string {
	return "billing"
}

// BillingLineItem is one billable entry on an invoice
type BillingLineItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BillingID   uuid.UUID `gorm:"type:uuid;index;not null" json:"billing_id"`
	Description string    `gorm:"type:text;not null" json:"description" binding:"required"`
	Quantity    float64   `gorm:"type:decimal(10,2);not null" json:"quantity" binding:"min=0"`
	UnitPrice   float64   `gorm:"type:decimal(10,2);not null" json:"unit_price" binding:"min=0"`
	TotalPrice  float64   `gorm:"type:decimal(12,2);not null" json:"total_price" binding:"min=0"`
	ItemType    *string   `gorm:"size:20" json:"item_type" binding:"omitempty,oneof=labor parts service"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Billing *Billing `json:"billing,omitempty" binding:"-"`
}

// TableName specifies the table name for the BillingLineItem model
func (BillingLineItem) TableName() string {
	return "billing_line_items"
}
