package controllers

import (
	"net/http"

	"github.com/bluebay-mechanical/field-service-api/config"
	"github.com/bluebay-mechanical/field-service-api/models"
	"github.com/bluebay-mechanical/field-service-api/query"
	"github.com/bluebay-mechanical/field-service-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var serviceHistorySpec = query.Spec{
	Filters: map[string]query.Filter{
		"service_type":  {Column: "service_type", Mode: query.Partial},
		"client_id":     {Column: "client_id", Mode: query.ExactUUID},
		"job_id":        {Column: "job_id", Mode: query.ExactUUID},
		"work_order_id": {Column: "work_order_id", Mode: query.ExactUUID},
		"technician_id": {Column: "technician_id", Mode: query.ExactUUID},
	},
	Sorts: map[string]string{
		"service_date": "service_date",
		"created_at":   "created_at",
	},
	Includes: map[string]string{
		"client":     "Client",
		"job":        "Job",
		"workOrder":  "WorkOrder",
		"technician": "Technician",
	},
	DefaultSort: "-created_at",
}

// ListServiceHistory handles GET /api/v1/service-history
func ListServiceHistory(c *gin.Context) {
	listResource[models.ServiceHistory](c, config.GetDB(), serviceHistorySpec, "service history")
}

// GetServiceHistory handles GET /api/v1/service-history/:id
func GetServiceHistory(c *gin.Context) {
	showResource[models.ServiceHistory](c, config.GetDB(), serviceHistorySpec, "Service history entry")
}

// CreateServiceHistory handles POST /api/v1/service-history
func CreateServiceHistory(c *gin.Context) {
	db := config.GetDB().WithContext(c.Request.Context())

	entry := models.ServiceHistory{ID: uuid.New()}
	id := entry.ID
	if !bindJSON(c, &entry) {
		return
	}
	entry.ID = id

	if !validateServiceHistory(c, db, &entry) {
		return
	}

	if err := db.Omit(clause.Associations).Create(&entry).Error; err != nil {
		respondDatabaseError(c, err, "Failed to create service history entry")
		return
	}

	respondData(c, http.StatusCreated, entry)
}

// UpdateServiceHistory handles PUT /api/v1/service-history/:id
func UpdateServiceHistory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	db := config.GetDB().WithContext(c.Request.Context())

	var entry models.ServiceHistory
	if !findByID(c, db, &entry, id, "Service history entry") {
		return
	}
	createdAt := entry.CreatedAt

	if !bindJSON(c, &entry) {
		return
	}
	entry.ID, entry.CreatedAt = id, createdAt

	if !validateServiceHistory(c, db, &entry) {
		return
	}

	if err := db.Omit(clause.Associations).Save(&entry).Error; err != nil {
		respondDatabaseError(c, err, "Failed to update service history entry")
		return
	}

	respondData(c, http.StatusOK, entry)
}

// DeleteServiceHistory handles DELETE /api/v1/service-history/:id
func DeleteServiceHistory(c *gin.Context) {
	deleteResource[models.ServiceHistory](c, config.GetDB(), "Service history entry")
}

func validateServiceHistory(c *gin.Context, db *gorm.DB, entry *models.ServiceHistory) bool {
	fields := utils.FieldErrors{}
	return runChecks(c, "service history entry", fields,
		func() error { return checkRequiredRef(db, fields, &models.Client{}, "client_id", entry.ClientID) },
		func() error { return checkOptionalRef(db, fields, &models.Scheduling{}, "job_id", entry.JobID) },
		func() error { return checkOptionalRef(db, fields, &models.WorkOrder{}, "work_order_id", entry.WorkOrderID) },
		func() error { return checkOptionalRef(db, fields, &models.Technician{}, "technician_id", entry.TechnicianID) },
	)
}
