package controllers

import (
	"net/http"

	"github.com/bluebay-mechanical/field-service-api/config"
	"github.com/bluebay-mechanical/field-service-api/models"
	"github.com/bluebay-mechanical/field-service-api/query"
	"github.com/bluebay-mechanical/field-service-api/services"
	"github.com/bluebay-mechanical/field-service-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var billingLineItemSpec = query.Spec{
	Filters: map[string]query.Filter{
		"item_type":  {Column: "item_type", Mode: query.Partial},
		"billing_id": {Column: "billing_id", Mode: query.ExactUUID},
	},
	Sorts: map[string]string{
		"created_at":  "created_at",
		"total_price": "total_price",
	},
	Includes:    map[string]string{"billing": "Billing"},
	DefaultSort: "-created_at",
}

// ListBillingLineItems handles GET /api/v1/billing-line-items
func ListBillingLineItems(c *gin.Context) {
	listResource[models.BillingLineItem](c, config.GetDB(), billingLineItemSpec, "line items")
}

// GetBillingLineItem handles GET /api/v1/billing-line-items/:id
func GetBillingLineItem(c *gin.Context) {
	showResource[models.BillingLineItem](c, config.GetDB(), billingLineItemSpec, "Line item")
}

// CreateBillingLineItem handles POST /api/v1/billing-line-items. The parent
// invoice totals are not recalculated.
func CreateBillingLineItem(c *gin.Context) {
	db := config.GetDB().WithContext(c.Request.Context())

	item := models.BillingLineItem{ID: uuid.New()}
	id := item.ID
	if !bindJSON(c, &item) {
		return
	}
	item.ID = id

	if !validateBillingLineItem(c, db, &item) {
		return
	}
	services.ApplyLineItemDefaults(&item)

	if err := db.Omit(clause.Associations).Create(&item).Error; err != nil {
		respondDatabaseError(c, err, "Failed to create line item")
		return
	}

	respondData(c, http.StatusCreated, item)
}

// UpdateBillingLineItem handles PUT /api/v1/billing-line-items/:id
func UpdateBillingLineItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	db := config.GetDB().WithContext(c.Request.Context())

	var item models.BillingLineItem
	if !findByID(c, db, &item, id, "Line item") {
		return
	}
	createdAt := item.CreatedAt

	if !bindJSON(c, &item) {
		return
	}
	item.ID, item.CreatedAt = id, createdAt

	if !validateBillingLineItem(c, db, &item) {
		return
	}

	if err := db.Omit(clause.Associations).Save(&item).Error; err != nil {
		respondDatabaseError(c, err, "Failed to update line item")
		return
	}

	respondData(c, http.StatusOK, item)
}

// DeleteBillingLineItem handles DELETE /api/v1/billing-line-items/:id
func DeleteBillingLineItem(c *gin.Context) {
	deleteResource[models.BillingLineItem](c, config.GetDB(), "Line item")
}

func validateBillingLineItem(c *gin.Context, db *gorm.DB, item *models.BillingLineItem) bool {
	fields := utils.FieldErrors{}
	return runChecks(c, "line item", fields, func() error {
		return checkRequiredRef(db, fields, &models.Billing{}, "billing_id", item.BillingID)
	})
}
