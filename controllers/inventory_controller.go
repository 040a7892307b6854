package controllers

import (
	"net/http"

	"github.com/bluebay-mechanical/field-service-api/config"
	"github.com/bluebay-mechanical/field-service-api/middleware"
	"github.com/bluebay-mechanical/field-service-api/models"
	"github.com/bluebay-mechanical/field-service-api/query"
	"github.com/bluebay-mechanical/field-service-api/services"
	"github.com/bluebay-mechanical/field-service-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var inventorySpec = query.Spec{
	Filters: map[string]query.Filter{
		"inventory_code": {Column: "inventory_code", Mode: query.Partial},
		"part_name":      {Column: "part_name", Mode: query.Partial},
		"part_number":    {Column: "part_number", Mode: query.Partial},
		"category":       {Column: "category", Mode: query.Partial},
		"location":       {Column: "location", Mode: query.Partial},
		"supplier":       {Column: "supplier", Mode: query.Partial},
		"is_active":      {Column: "is_active", Mode: query.Boolean},
	},
	Sorts: map[string]string{
		"inventory_code": "inventory_code",
		"part_name":      "part_name",
		"stock":          "stock",
		"min_stock":      "min_stock",
		"unit_price":     "unit_price",
		"created_at":     "created_at",
	},
	DefaultSort: "-created_at",
}

var inventoryTransactionSpec = query.Spec{
	Filters: map[string]query.Filter{
		"transaction_type": {Column: "transaction_type", Mode: query.Partial},
		"created_by":       {Column: "created_by", Mode: query.Partial},
		"inventory_id":     {Column: "inventory_id", Mode: query.ExactUUID},
		"work_order_id":    {Column: "work_order_id", Mode: query.ExactUUID},
	},
	Sorts: map[string]string{
		"created_at": "created_at",
		"quantity":   "quantity",
		"total_cost": "total_cost",
	},
	Includes: map[string]string{
		"inventory": "Inventory",
		"workOrder": "WorkOrder",
	},
	DefaultSort: "-created_at",
}

// ListInventory handles GET /api/v1/inventory
func ListInventory(c *gin.Context) {
	listResource[models.Inventory](c, config.GetDB(), inventorySpec, "inventory")
}

// GetInventory handles GET /api/v1/inventory/:id
func GetInventory(c *gin.Context) {
	showResource[models.Inventory](c, config.GetDB(), inventorySpec, "Inventory item")
}

// CreateInventory handles POST /api/v1/inventory
func CreateInventory(c *gin.Context) {
	db := config.GetDB().WithContext(c.Request.Context())

	item := models.NewInventory()
	id := item.ID
	if !bindJSON(c, &item) {
		return
	}
	item.ID = id

	if !validateInventory(c, db, &item, nil) {
		return
	}

	if err := db.Create(&item).Error; err != nil {
		respondDatabaseError(c, err, "Failed to create inventory item")
		return
	}

	respondData(c, http.StatusCreated, item)
}

// UpdateInventory handles PUT /api/v1/inventory/:id
func UpdateInventory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	db := config.GetDB().WithContext(c.Request.Context())

	var item models.Inventory
	if !findByID(c, db, &item, id, "Inventory item") {
		return
	}
	createdAt := item.CreatedAt

	if !bindJSON(c, &item) {
		return
	}
	item.ID, item.CreatedAt = id, createdAt

	if !validateInventory(c, db, &item, &id) {
		return
	}

	if err := db.Save(&item).Error; err != nil {
		respondDatabaseError(c, err, "Failed to update inventory item")
		return
	}

	respondData(c, http.StatusOK, item)
}

// DeleteInventory handles DELETE /api/v1/inventory/:id
func DeleteInventory(c *gin.Context) {
	deleteResource[models.Inventory](c, config.GetDB(), "Inventory item")
}

func validateInventory(c *gin.Context, db *gorm.DB, item *models.Inventory, excludeID *uuid.UUID) bool {
	fields := utils.FieldErrors{}
	return runChecks(c, "inventory item", fields, func() error {
		return checkUnique(db, fields, &models.Inventory{}, "inventory_code", item.InventoryCode, excludeID)
	})
}

// ListInventoryTransactions handles GET /api/v1/inventory-transactions
func ListInventoryTransactions(c *gin.Context) {
	listResource[models.InventoryTransaction](c, config.GetDB(), inventoryTransactionSpec, "inventory transactions")
}

// GetInventoryTransaction handles GET /api/v1/inventory-transactions/:id
func GetInventoryTransaction(c *gin.Context) {
	showResource[models.InventoryTransaction](c, config.GetDB(), inventoryTransactionSpec, "Inventory transaction")
}

// CreateInventoryTransaction handles POST /api/v1/inventory-transactions.
// created_by defaults to the caller.
func CreateInventoryTransaction(c *gin.Context) {
	db := config.GetDB().WithContext(c.Request.Context())

	tx := models.InventoryTransaction{ID: uuid.New()}
	id := tx.ID
	if !bindJSON(c, &tx) {
		return
	}
	tx.ID = id

	if !validateInventoryTransaction(c, db, &tx) {
		return
	}
	services.ApplyTransactionDefaults(&tx)
	if tx.CreatedBy == nil {
		if userID, err := middleware.GetUserID(c); err == nil {
			tx.CreatedBy = &userID
		}
	}

	if err := db.Omit(clause.Associations).Create(&tx).Error; err != nil {
		respondDatabaseError(c, err, "Failed to create inventory transaction")
		return
	}

	respondData(c, http.StatusCreated, tx)
}

// UpdateInventoryTransaction handles PUT /api/v1/inventory-transactions/:id
func UpdateInventoryTransaction(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	db := config.GetDB().WithContext(c.Request.Context())

	var tx models.InventoryTransaction
	if !findByID(c, db, &tx, id, "Inventory transaction") {
		return
	}
	createdAt := tx.CreatedAt

	if !bindJSON(c, &tx) {
		return
	}
	tx.ID, tx.CreatedAt = id, createdAt

	if !validateInventoryTransaction(c, db, &tx) {
		return
	}

	if err := db.Omit(clause.Associations).Save(&tx).Error; err != nil {
		respondDatabaseError(c, err, "Failed to update inventory transaction")
		return
	}

	respondData(c, http.StatusOK, tx)
}

// DeleteInventoryTransaction handles DELETE /api/v1/inventory-transactions/:id
func DeleteInventoryTransaction(c *gin.Context) {
	deleteResource[models.InventoryTransaction](c, config.GetDB(), "Inventory transaction")
}

func validateInventoryTransaction(c *gin.Context, db *gorm.DB, tx *models.InventoryTransaction) bool {
	fields := utils.FieldErrors{}
	return runChecks(c, "inventory transaction", fields,
		func() error { return checkRequiredRef(db, fields, &models.Inventory{}, "inventory_id", tx.InventoryID) },
		func() error { return checkOptionalRef(db, fields, &models.WorkOrder{}, "work_order_id", tx.WorkOrderID) },
	)
}
