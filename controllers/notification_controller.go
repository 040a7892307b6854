package controllers

import (
	"net/http"
	"time"

	"github.com/bluebay-mechanical/field-service-api/config"
	"github.com/bluebay-mechanical/field-service-api/models"
	"github.com/bluebay-mechanical/field-service-api/query"
	"github.com/bluebay-mechanical/field-service-api/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var notificationSpec = query.Spec{
	Filters: map[string]query.Filter{
		"notification_type": {Column: "notification_type", Mode: query.Partial},
		"status":            {Column: "status", Mode: query.Partial},
		"user_id":           {Column: "user_id", Mode: query.Exact},
		"client_id":         {Column: "client_id", Mode: query.ExactUUID},
	},
	Sorts: map[string]string{
		"created_at":    "created_at",
		"scheduled_for": "scheduled_for",
		"sent_at":       "sent_at",
	},
	DefaultSort: "-created_at",
	PageSize:    25,
}

// ListNotifications handles GET /api/v1/notifications
func ListNotifications(c *gin.Context) {
	listResource[models.Notification](c, config.GetDB(), notificationSpec, "notifications")
}

// GetNotification handles GET /api/v1/notifications/:id
func GetNotification(c *gin.Context) {
	showResource[models.Notification](c, config.GetDB(), notificationSpec, "Notification")
}

// CreateNotification handles POST /api/v1/notifications
func CreateNotification(c *gin.Context) {
	db := config.GetDB().WithContext(c.Request.Context())

	n := models.NewNotification()
	id := n.ID
	if !bindJSON(c, &n) {
		return
	}
	n.ID = id
	if n.ScheduledFor != nil && n.Status == models.NotificationStatusPending {
		n.Status = models.NotificationStatusScheduled
	}

	if !validateNotification(c, db, &n) {
		return
	}

	if err := db.Omit(clause.Associations).Create(&n).Error; err != nil {
		respondDatabaseError(c, err, "Failed to create notification")
		return
	}

	respondData(c, http.StatusCreated, n)
}

// UpdateNotification handles PUT /api/v1/notifications/:id. Moving to
// status "read" stamps read_at.
func UpdateNotification(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	db := config.GetDB().WithContext(c.Request.Context())

	var n models.Notification
	if !findByID(c, db, &n, id, "Notification") {
		return
	}
	createdAt := n.CreatedAt

	if !bindJSON(c, &n) {
		return
	}
	n.ID, n.CreatedAt = id, createdAt
	if n.Status == models.NotificationStatusRead && n.ReadAt == nil {
		now := time.Now().UTC()
		n.ReadAt = &now
	}

	if !validateNotification(c, db, &n) {
		return
	}

	if err := db.Omit(clause.Associations).Save(&n).Error; err != nil {
		respondDatabaseError(c, err, "Failed to update notification")
		return
	}

	respondData(c, http.StatusOK, n)
}

// DeleteNotification handles DELETE /api/v1/notifications/:id
func DeleteNotification(c *gin.Context) {
	deleteResource[models.Notification](c, config.GetDB(), "Notification")
}

func validateNotification(c *gin.Context, db *gorm.DB, n *models.Notification) bool {
	fields := utils.FieldErrors{}
	return runChecks(c, "notification", fields,
		func() error { return checkOptionalRef(db, fields, &models.Client{}, "client_id", n.ClientID) },
		func() error { return checkOptionalRef(db, fields, &models.Scheduling{}, "related_job_id", n.RelatedJobID) },
		func() error {
			return checkOptionalRef(db, fields, &models.WorkOrder{}, "related_work_order_id", n.RelatedWorkOrderID)
		},
	)
}
