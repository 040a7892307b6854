// Package models holds the gorm models for the field service back office.
package models

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{
		&Client{},
		&Technician{},
		&Scheduling{},
		&WorkOrder{},
		&WorkOrderPhoto{},
		&Inventory{},
		&InventoryTransaction{},
		&Billing{},
		&BillingLineItem{},
		&ServiceHistory{},
		&Notification{},
	}
}
