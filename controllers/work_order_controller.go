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

var workOrderSpec = query.Spec{
	Filters: map[string]query.Filter{
		"work_order_number": {Column: "work_order_number", Mode: query.Partial},
		"title":             {Column: "title", Mode: query.Partial},
		"status":            {Column: "status", Mode: query.Partial},
		"priority":          {Column: "priority", Mode: query.Partial},
		"client_id":         {Column: "client_id", Mode: query.ExactUUID},
		"technician_id":     {Column: "technician_id", Mode: query.ExactUUID},
	},
	Sorts: map[string]string{
		"work_order_number": "work_order_number",
		"scheduled_date":    "scheduled_date",
		"completed_date":    "completed_date",
		"created_at":        "created_at",
	},
	Includes: map[string]string{
		"client":     "Client",
		"technician": "Technician",
		"job":        "Job",
		"photos":     "Photos",
	},
	DefaultSort: "-created_at",
}

// ListWorkOrders handles GET /api/v1/work-orders
func ListWorkOrders(c *gin.Context) {
	listResource[models.WorkOrder](c, config.GetDB(), workOrderSpec, "work orders")
}

// GetWorkOrder handles GET /api/v1/work-orders/:id
func GetWorkOrder(c *gin.Context) {
	showResource[models.WorkOrder](c, config.GetDB(), workOrderSpec, "Work order")
}

// CreateWorkOrder handles POST /api/v1/work-orders
func CreateWorkOrder(c *gin.Context) {
	db := config.GetDB().WithContext(c.Request.Context())

	wo := models.NewWorkOrder()
	id := wo.ID
	if !bindJSON(c, &wo) {
		return
	}
	wo.ID = id

	if !validateWorkOrder(c, db, &wo, nil) {
		return
	}
	services.ApplyWorkOrderDefaults(&wo)

	if err := db.Omit(clause.Associations).Create(&wo).Error; err != nil {
		respondDatabaseError(c, err, "Failed to create work order")
		return
	}

	respondData(c, http.StatusCreated, wo)
}

// UpdateWorkOrder handles PUT /api/v1/work-orders/:id
func UpdateWorkOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	db := config.GetDB().WithContext(c.Request.Context())

	var wo models.WorkOrder
	if !findByID(c, db, &wo, id, "Work order") {
		return
	}
	createdAt := wo.CreatedAt

	if !bindJSON(c, &wo) {
		return
	}
	wo.ID, wo.CreatedAt = id, createdAt

	if !validateWorkOrder(c, db, &wo, &id) {
		return
	}

	if err := db.Omit(clause.Associations).Save(&wo).Error; err != nil {
		respondDatabaseError(c, err, "Failed to update work order")
		return
	}

	respondData(c, http.StatusOK, wo)
}

// DeleteWorkOrder handles DELETE /api/v1/work-orders/:id. Photo records go
// with it; the stored files are left in place.
func DeleteWorkOrder(c *gin.Context) {
	deleteResource[models.WorkOrder](c, config.GetDB(), "Work order")
}

func validateWorkOrder(c *gin.Context, db *gorm.DB, wo *models.WorkOrder, excludeID *uuid.UUID) bool {
	fields := utils.FieldErrors{}
	return runChecks(c, "work order", fields,
		func() error {
			return checkUnique(db, fields, &models.WorkOrder{}, "work_order_number", wo.WorkOrderNumber, excludeID)
		},
		func() error { return checkRequiredRef(db, fields, &models.Scheduling{}, "job_id", wo.JobID) },
		func() error { return checkRequiredRef(db, fields, &models.Client{}, "client_id", wo.ClientID) },
		func() error { return checkOptionalRef(db, fields, &models.Technician{}, "technician_id", wo.TechnicianID) },
	)
}
