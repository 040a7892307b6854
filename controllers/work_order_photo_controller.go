package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bluebay-mechanical/field-service-api/config"
	"github.com/bluebay-mechanical/field-service-api/logger"
	"github.com/bluebay-mechanical/field-service-api/middleware"
	"github.com/bluebay-mechanical/field-service-api/models"
	"github.com/bluebay-mechanical/field-service-api/query"
	"github.com/bluebay-mechanical/field-service-api/services"
	"github.com/bluebay-mechanical/field-service-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ListWorkOrderPhotos handles GET /api/v1/work-order-photos, newest first.
// filter[work_order_id] narrows to one work order. Not paginated.
func ListWorkOrderPhotos(c *gin.Context) {
	db := config.GetDB().WithContext(c.Request.Context())

	q := db.Order("created_at DESC").Order("id")
	if raw, ok := query.ParseFilter(c.Request)["work_order_id"]; ok {
		workOrderID, err := uuid.Parse(raw)
		if err != nil {
			respondData(c, http.StatusOK, []models.WorkOrderPhoto{})
			return
		}
		q = q.Where("work_order_id = ?", workOrderID)
	}

	photos := make([]models.WorkOrderPhoto, 0)
	if err := q.Find(&photos).Error; err != nil {
		respondDatabaseError(c, err, "Failed to list photos")
		return
	}

	respondData(c, http.StatusOK, photos)
}

// GetWorkOrderPhoto handles GET /api/v1/work-order-photos/:id
func GetWorkOrderPhoto(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var photo models.WorkOrderPhoto
	if !findByID(c, config.GetDB().WithContext(c.Request.Context()), &photo, id, "Photo") {
		return
	}
	respondData(c, http.StatusOK, photo)
}

// UploadWorkOrderPhoto handles POST /api/v1/work-order-photos (multipart:
// work_order_id, photo, caption)
func UploadWorkOrderPhoto(c *gin.Context) {
	ctx := c.Request.Context()
	db := config.GetDB().WithContext(ctx)

	fields := utils.FieldErrors{}
	workOrderID, err := uuid.Parse(c.PostForm("work_order_id"))
	switch {
	case c.PostForm("work_order_id") == "":
		fields.Add("work_order_id", "The work_order_id field is required.")
	case err != nil:
		fields.Add("work_order_id", "The selected work_order_id is invalid.")
	default:
		if err := checkRef(db, fields, &models.WorkOrder{}, "work_order_id", workOrderID); err != nil {
			respondDatabaseError(c, err, "Failed to validate photo")
			return
		}
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		if fields.Any() {
			fields.Add("photo", "The photo field is required.")
			respondValidation(c, fields)
			return
		}
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "The photo field is required.")
		return
	}
	if fields.Any() {
		respondValidation(c, fields)
		return
	}

	storage := services.GetStorage()
	if storage == nil {
		respondError(c, http.StatusBadGateway, "STORAGE_ERROR", "Photo storage is not configured")
		return
	}
	photos := services.NewPhotoService(storage)

	stored, err := photos.Upload(ctx, fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
			return
		}
		logger.L().Error("photo upload failed",
			zap.String("work_order_id", workOrderID.String()),
			zap.Error(err))
		respondError(c, http.StatusBadGateway, "STORAGE_ERROR", "Failed to store photo")
		return
	}

	photo := models.WorkOrderPhoto{
		ID:          uuid.New(),
		WorkOrderID: workOrderID,
		PhotoURL:    stored.URL,
		PhotoPath:   stored.Key,
		UploadedAt:  time.Now().UTC(),
	}
	if caption := strings.TrimSpace(c.PostForm("caption")); caption != "" {
		photo.Caption = &caption
	}
	if userID, err := middleware.GetUserID(c); err == nil {
		photo.UploadedBy = &userID
	}

	if err := db.Create(&photo).Error; err != nil {
		// the record is the only reference to the object, so drop it
		if rmErr := photos.Remove(ctx, stored.Key); rmErr != nil {
			logger.L().Warn("failed to remove orphaned photo", zap.String("key", stored.Key), zap.Error(rmErr))
		}
		respondDatabaseError(c, err, "Failed to save photo")
		return
	}

	respondData(c, http.StatusCreated, photo)
}

// DeleteWorkOrderPhoto handles DELETE /api/v1/work-order-photos/:id. The
// record is removed even when the stored file cannot be.
func DeleteWorkOrderPhoto(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	db := config.GetDB().WithContext(ctx)

	var photo models.WorkOrderPhoto
	if !findByID(c, db, &photo, id, "Photo") {
		return
	}

	if storage := services.GetStorage(); storage != nil {
		if err := services.NewPhotoService(storage).Remove(ctx, photo.PhotoPath); err != nil {
			logger.L().Warn("failed to remove stored photo",
				zap.String("photo_id", photo.ID.String()),
				zap.String("key", photo.PhotoPath),
				zap.Error(err))
		}
	}

	if err := db.Delete(&photo).Error; err != nil {
		respondDatabaseError(c, err, "Failed to delete photo")
		return
	}

	c.Status(http.StatusNoContent)
}
