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

var clientSpec = query.Spec{
	Filters: map[string]query.Filter{
		"client_code":        {Column: "client_code", Mode: query.Partial},
		"name":               {Column: "name", Mode: query.Partial},
		"email":              {Column: "email", Mode: query.Partial},
		"phone":              {Column: "phone", Mode: query.Partial},
		"city":               {Column: "city", Mode: query.Partial},
		"state":              {Column: "state", Mode: query.Partial},
		"country":            {Column: "country", Mode: query.Partial},
		"preferred_contact":  {Column: "preferred_contact", Mode: query.Partial},
		"preferred_language": {Column: "preferred_language", Mode: query.Partial},
		"is_active":          {Column: "is_active", Mode: query.Boolean},
	},
	Sorts: map[string]string{
		"client_code":       "client_code",
		"name":              "name",
		"last_service_date": "last_service_date",
		"created_at":        "created_at",
	},
	Includes:    map[string]string{"jobs": "Jobs"},
	DefaultSort: "-created_at",
}

// ListClients handles GET /api/v1/clients
func ListClients(c *gin.Context) {
	listResource[models.Client](c, config.GetDB(), clientSpec, "clients")
}

// GetClient handles GET /api/v1/clients/:id
func GetClient(c *gin.Context) {
	showResource[models.Client](c, config.GetDB(), clientSpec, "Client")
}

// CreateClient handles POST /api/v1/clients
func CreateClient(c *gin.Context) {
	db := config.GetDB().WithContext(c.Request.Context())

	client := models.NewClient()
	id := client.ID
	if !bindJSON(c, &client) {
		return
	}
	client.ID = id

	if !validateClient(c, db, &client, nil) {
		return
	}

	if err := db.Omit(clause.Associations).Create(&client).Error; err != nil {
		respondDatabaseError(c, err, "Failed to create client")
		return
	}

	respondData(c, http.StatusCreated, client)
}

// UpdateClient handles PUT /api/v1/clients/:id
func UpdateClient(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	db := config.GetDB().WithContext(c.Request.Context())

	var client models.Client
	if !findByID(c, db, &client, id, "Client") {
		return
	}
	createdAt := client.CreatedAt

	if !bindJSON(c, &client) {
		return
	}
	client.ID, client.CreatedAt = id, createdAt

	if !validateClient(c, db, &client, &id) {
		return
	}

	if err := db.Omit(clause.Associations).Save(&client).Error; err != nil {
		respondDatabaseError(c, err, "Failed to update client")
		return
	}

	respondData(c, http.StatusOK, client)
}

// DeleteClient handles DELETE /api/v1/clients/:id
func DeleteClient(c *gin.Context) {
	deleteResource[models.Client](c, config.GetDB(), "Client")
}

func validateClient(c *gin.Context, db *gorm.DB, client *models.Client, excludeID *uuid.UUID) bool {
	fields := utils.FieldErrors{}
	return runChecks(c, "client", fields, func() error {
		return checkUnique(db, fields, &models.Client{}, "client_code", client.ClientCode, excludeID)
	})
}
