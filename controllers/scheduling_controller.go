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

var schedulingSpec = query.Spec{
	Filters: map[string]query.Filter{
		"job_number":     {Column: "job_number", Mode: query.Partial},
		"title":          {Column: "title", Mode: query.Partial},
		"service_type":   {Column: "service_type", Mode: query.Partial},
		"status":         {Column: "status", Mode: query.Partial},
		"priority":       {Column: "priority", Mode: query.Partial},
		"scheduled_date": {Column: "scheduled_date", Mode: query.Partial},
		"client_id":      {Column: "client_id", Mode: query.ExactUUID},
		"technician_id":  {Column: "technician_id", Mode: query.ExactUUID},
	},
	Sorts: map[string]string{
		"job_number":     "job_number",
		"scheduled_date": "scheduled_date",
		"scheduled_time": "scheduled_time",
		"priority":       "priority",
		"created_at":     "created_at",
	},
	Includes: map[string]string{
		"client":     "Client",
		"technician": "Technician",
	},
	DefaultSort: "-created_at",
}

// ListScheduling handles GET /api/v1/scheduling
func ListScheduling(c *gin.Context) {
	listResource[models.Scheduling](c, config.GetDB(), schedulingSpec, "jobs")
}

// GetScheduling handles GET /api/v1/scheduling/:id
func GetScheduling(c *gin.Context) {
	showResource[models.Scheduling](c, config.GetDB(), schedulingSpec, "Job")
}

// CreateScheduling handles POST /api/v1/scheduling
func CreateScheduling(c *gin.Context) {
	db := config.GetDB().WithContext(c.Request.Context())

	job := models.NewScheduling()
	id := job.ID
	if !bindJSON(c, &job) {
		return
	}
	job.ID = id

	if !validateScheduling(c, db, &job, nil) {
		return
	}

	if err := db.Omit(clause.Associations).Create(&job).Error; err != nil {
		respondDatabaseError(c, err, "Failed to create job")
		return
	}

	respondData(c, http.StatusCreated, job)
}

// UpdateScheduling handles PUT /api/v1/scheduling/:id
func UpdateScheduling(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	db := config.GetDB().WithContext(c.Request.Context())

	var job models.Scheduling
	if !findByID(c, db, &job, id, "Job") {
		return
	}
	createdAt := job.CreatedAt

	if !bindJSON(c, &job) {
		return
	}
	job.ID, job.CreatedAt = id, createdAt

	if !validateScheduling(c, db, &job, &id) {
		return
	}

	if err := db.Omit(clause.Associations).Save(&job).Error; err != nil {
		respondDatabaseError(c, err, "Failed to update job")
		return
	}

	respondData(c, http.StatusOK, job)
}

// DeleteScheduling handles DELETE /api/v1/scheduling/:id
func DeleteScheduling(c *gin.Context) {
	deleteResource[models.Scheduling](c, config.GetDB(), "Job")
}

func validateScheduling(c *gin.Context, db *gorm.DB, job *models.Scheduling, excludeID *uuid.UUID) bool {
	fields := utils.FieldErrors{}
	return runChecks(c, "job", fields,
		func() error {
			return checkUnique(db, fields, &models.Scheduling{}, "job_number", job.JobNumber, excludeID)
		},
		func() error { return checkRequiredRef(db, fields, &models.Client{}, "client_id", job.ClientID) },
		func() error { return checkOptionalRef(db, fields, &models.Technician{}, "technician_id", job.TechnicianID) },
	)
}
