package models

import (
	"time"

	"github.com/google/uuid"
)

// Inventory transaction types
const (
	TransactionDeduction  = "deduction"
	TransactionRestock    = "restock"
	TransactionAdjustment = "adjustment"
)

// Inventory is a stocked part
type Inventory struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	InventoryCode   string    `gorm:"size:50;uniqueIndex;not null" json:"inventory_code" binding:"required,max=50"`
	PartName        string    `gorm:"size:255;not null" json:"part_name" binding:"required,max=255"`
	PartNumber      string    `gorm:"size:100;not null" json:"part_number" binding:"required,max=100"`
	Category        string    `gorm:"size:20;index;not null" json:"category" binding:"required,oneof=hvac electrical plumbing tools filters other"`
	Stock           int       `gorm:"not null" json:"stock" binding:"min=0"`
	MinStock        int       `gorm:"not null" json:"min_stock" binding:"min=0"`
	Location        *string   `gorm:"size:20" json:"location" binding:"omitempty,oneof='San Diego' Tijuana Both"`
	UnitPrice       float64   `gorm:"type:decimal(10,2);not null" json:"unit_price" binding:"min=0,max=99999999.99"`
	Supplier        *string   `gorm:"size:255" json:"supplier" binding:"omitempty,max=255"`
	SupplierContact *string   `gorm:"size:255" json:"supplier_contact" binding:"omitempty,max=255"`
	LastRestocked   *Date     `json:"last_restocked"`
	IsActive        bool      `gorm:"not null" json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewInventory returns an active inventory item with a fresh id
func NewInventory() Inventory {
	return Inventory{
		ID:       uuid.New(),
		IsActive: true,
	}
}

// TableName specifies the table name for the Inventory model
func (Inventory) TableName() string {
	return "inventories"
}

// LowStock reports whether stock has fallen to or below the reorder point
func (i Inventory) LowStock() bool {
	return i.Stock <= i.MinStock
}

// InventoryTransaction records a stock movement against a part
type InventoryTransaction struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	InventoryID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"inventory_id"`
	WorkOrderID     *uuid.UUID `gorm:"type:uuid;index" json:"work_order_id"`
	TransactionType string     `gorm:"size:20;not null" json:"transaction_type" binding:"required,oneof=deduction restock adjustment"`
	Quantity        *int       `gorm:"not null" json:"quantity" binding:"required"`
	UnitPrice       *float64   `gorm:"type:decimal(10,2)" json:"unit_price" binding:"omitempty,min=0"`
	TotalCost       *float64   `gorm:"type:decimal(10,2)" json:"total_cost" binding:"omitempty,min=0"`
	Notes           *string    `gorm:"type:text" json:"notes"`
	CreatedBy       *string    `gorm:"size:255" json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Inventory *Inventory `gorm:"foreignKey:InventoryID;constraint:OnDelete:CASCADE" json:"inventory,omitempty" binding:"-"`
	WorkOrder *WorkOrder `gorm:"foreignKey:WorkOrderID;constraint:OnDelete:SET NULL" json:"work_order,omitempty" binding:"-"`
}

// TableName specifies the table name for the InventoryTransaction model
func (InventoryTransaction) TableName() string {
	return "inventory_transactions"
}
