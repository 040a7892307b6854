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

var technicianSpec = query.Spec{
	Filters: map[string]query.Filter{
		"employee_id":         {Column: "employee_id", Mode: query.Partial},
		"specialization":      {Column: "specialization", Mode: query.Partial},
		"location":            {Column: "location", Mode: query.Partial},
		"certification_level": {Column: "certification_level", Mode: query.Partial},
		"user_id":             {Column: "user_id", Mode: query.Exact},
		"is_available":        {Column: "is_available", Mode: query.Boolean},
	},
	Sorts: map[string]string{
		"employee_id": "employee_id",
		"hourly_rate": "hourly_rate",
		"created_at":  "created_at",
	},
	Includes:    map[string]string{"jobs": "Jobs"},
	DefaultSort: "-created_at",
}

// ListTechnicians handles GET /api/v1/technicians
func ListTechnicians(c *gin.Context) {
	listResource[models.Technician](c, config.GetDB(), technicianSpec, "technicians")
}

// GetTechnician handles GET /api/v1/technicians/:id
func GetTechnician(c *gin.Context) {
	showResource[models.Technician](c, config.GetDB(), technicianSpec, "Technician")
}

// CreateTechnician handles POST /api/v1/technicians
func CreateTechnician(c *gin.Context) {
	db := config.GetDB().WithContext(c.Request.Context())

	tech := models.NewTechnician()
	id := tech.ID
	if !bindJSON(c, &tech) {
		return
	}
	tech.ID = id

	if !validateTechnician(c, db, &tech, nil) {
		return
	}

	if err := db.Omit(clause.Associations).Create(&tech).Error; err != nil {
		respondDatabaseError(c, err, "Failed to create technician")
		return
	}

	respondData(c, http.StatusCreated, tech)
}

// UpdateTechnician handles PUT /api/v1/technicians/:id
func UpdateTechnician(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	db := config.GetDB().WithContext(c.Request.Context())

	var tech models.Technician
	if !findByID(c, db, &tech, id, "Technician") {
		return
	}
	createdAt := tech.CreatedAt

	if !bindJSON(c, &tech) {
		return
	}
	tech.ID, tech.CreatedAt = id, createdAt

	if !validateTechnician(c, db, &tech, &id) {
		return
	}

	if err := db.Omit(clause.Associations).Save(&tech).Error; err != nil {
		respondDatabaseError(c, err, "Failed to update technician")
		return
	}

	respondData(c, http.StatusOK, tech)
}

// DeleteTechnician handles DELETE /api/v1/technicians/:id. Assigned jobs
// and work orders keep their rows with the technician cleared.
func DeleteTechnician(c *gin.Context) {
	deleteResource[models.Technician](c, config.GetDB(), "Technician")
}

func validateTechnician(c *gin.Context, db *gorm.DB, tech *models.Technician, excludeID *uuid.UUID) bool {
	fields := utils.FieldErrors{}
	return runChecks(c, "technician", fields, func() error {
		return checkUnique(db, fields, &models.Technician{}, "employee_id", tech.EmployeeID, excludeID)
	})
}
