// Package controllers holds the gin handlers for the REST API.
package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bluebay-mechanical/field-service-api/logger"
	"github.com/bluebay-mechanical/field-service-api/query"
	"github.com/bluebay-mechanical/field-service-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// respondError writes the error envelope and aborts the chain
func respondError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondValidation writes a VALIDATION_ERROR with per-field messages
func respondValidation(c *gin.Context, fields utils.FieldErrors) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "The given data was invalid.",
			"fields":  fields,
		},
	})
}

// respondDatabaseError logs err and writes a DATABASE_ERROR
func respondDatabaseError(c *gin.Context, err error, message string) {
	logger.L().Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", message)
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondPage(c *gin.Context, data interface{}, meta query.Meta) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"meta":    meta,
	})
}

// parseID reads the :id path parameter
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "The id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON binds the request body into obj, responding with a validation
// error on failure
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		if fields, ok := utils.TranslateBindError(err); ok {
			respondValidation(c, fields)
			return false
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return false
	}
	return true
}

// findByID loads the record with id into dest. It responds 404 or 500 and
// returns false when the record cannot be loaded.
func findByID(c *gin.Context, db *gorm.DB, dest interface{}, id uuid.UUID, resource string) bool {
	if err := db.First(dest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", resource+" not found")
			return false
		}
		respondDatabaseError(c, err, fmt.Sprintf("Failed to load %s", resource))
		return false
	}
	return true
}

// checkUnique adds "has already been taken" when another row of model
// already uses value in column. excludeID skips the record being updated.
func checkUnique(db *gorm.DB, fields utils.FieldErrors, model interface{}, column, value string, excludeID *uuid.UUID) error {
	q := db.Model(model).Where(column+" = ?", value)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		fields.Add(column, fmt.Sprintf("The %s has already been taken.", column))
	}
	return nil
}

// checkRequiredRef validates a mandatory foreign key
func checkRequiredRef(db *gorm.DB, fields utils.FieldErrors, model interface{}, field string, id uuid.UUID) error {
	if id == uuid.Nil {
		fields.Add(field, fmt.Sprintf("The %s field is required.", field))
		return nil
	}
	return checkRef(db, fields, model, field, id)
}

// checkOptionalRef validates a nullable foreign key when it is set
func checkOptionalRef(db *gorm.DB, fields utils.FieldErrors, model interface{}, field string, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	return checkRef(db, fields, model, field, *id)
}

func checkRef(db *gorm.DB, fields utils.FieldErrors, model interface{}, field string, id uuid.UUID) error {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		fields.Add(field, fmt.Sprintf("The selected %s is invalid.", field))
	}
	return nil
}

// listResource serves a paginated, filtered index for T
func listResource[T any](c *gin.Context, db *gorm.DB, spec query.Spec, resource string) {
	items, meta, err := query.List[T](db.WithContext(c.Request.Context()), spec, query.ParseParams(c.Request))
	if err != nil {
		respondDatabaseError(c, err, fmt.Sprintf("Failed to list %s", resource))
		return
	}
	respondPage(c, items, meta)
}

// showResource serves one T, honouring ?include= from the resource's allow-list
func showResource[T any](c *gin.Context, db *gorm.DB, spec query.Spec, resource string) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var item T
	q := spec.ApplyIncludes(db.WithContext(c.Request.Context()), query.ParseInclude(c.Request))
	if !findByID(c, q, &item, id, resource) {
		return
	}
	respondData(c, http.StatusOK, item)
}

// deleteResource removes one T by id and responds 204
func deleteResource[T any](c *gin.Context, db *gorm.DB, resource string) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	result := db.WithContext(c.Request.Context()).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		respondDatabaseError(c, result.Error, fmt.Sprintf("Failed to delete %s", resource))
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "NOT_FOUND", resource+" not found")
		return
	}

	c.Status(http.StatusNoContent)
}

// runChecks runs the database backed validations in order. It responds
// with the collected field errors, or a database error, and returns false
// when the request must stop.
func runChecks(c *gin.Context, resource string, fields utils.FieldErrors, checks ...func() error) bool {
	for _, check := range checks {
		if err := check(); err != nil {
			respondDatabaseError(c, err, fmt.Sprintf("Failed to validate %s", resource))
			return false
		}
	}
	if fields.Any() {
		respondValidation(c, fields)
		return false
	}
	return true
}
