package controllers

import (
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/bluebay-mechanical/field-service-api/config"
	"github.com/bluebay-mechanical/field-service-api/logger"
	"github.com/bluebay-mechanical/field-service-api/models"
	"github.com/bluebay-mechanical/field-service-api/query"
	"github.com/bluebay-mechanical/field-service-api/services"
	"github.com/bluebay-mechanical/field-service-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var billingSpec = query.Spec{
	Filters: map[string]query.Filter{
		"invoice_number": {Column: "invoice_number", Mode: query.Partial},
		"status":         {Column: "status", Mode: query.Partial},
		"client_id":      {Column: "client_id", Mode: query.ExactUUID},
		"work_order_id":  {Column: "work_order_id", Mode: query.ExactUUID},
		"job_id":         {Column: "job_id", Mode: query.ExactUUID},
	},
	Sorts: map[string]string{
		"invoice_number": "invoice_number",
		"issue_date":     "issue_date",
		"due_date":       "due_date",
		"total_amount":   "total_amount",
		"created_at":     "created_at",
	},
	Includes: map[string]string{
		"client":    "Client",
		"workOrder": "WorkOrder",
		"job":       "Job",
		"lineItems": "LineItems",
	},
	DefaultSort: "-created_at",
}

// ListBilling handles GET /api/v1/billing
func ListBilling(c *gin.Context) {
	listResource[models.Billing](c, config.GetDB(), billingSpec, "billing documents")
}

// GetBilling handles GET /api/v1/billing/:id. Client, work order, job and
// line items are always loaded.
func GetBilling(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	b, ok := loadBilling(c, id)
	if !ok {
		return
	}
	respondData(c, http.StatusOK, b)
}

// CreateBilling handles POST /api/v1/billing. Nested line_items are written
// in the same transaction as the invoice.
func CreateBilling(c *gin.Context) {
	db := config.GetDB().WithContext(c.Request.Context())

	b := models.NewBilling()
	id := b.ID
	if !bindJSON(c, &b) {
		return
	}
	b.ID = id

	if !validateBilling(c, db, &b, nil) {
		return
	}

	for i := range b.LineItems {
		b.LineItems[i].ID = uuid.New()
		b.LineItems[i].BillingID = b.ID
	}
	services.CalculateBillingTotals(&b)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&b).Error; err != nil {
			return err
		}
		if len(b.LineItems) > 0 {
			if err := tx.Omit(clause.Associations).Create(&b.LineItems).Error; err != nil {
				return fmt.Errorf("line items: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		respondDatabaseError(c, err, "Failed to create billing document")
		return
	}

	logger.L().Info("billing document created",
		zap.String("billing_id", b.ID.String()),
		zap.String("invoice_number", b.InvoiceNumber),
		zap.Float64("total_amount", b.TotalAmount))

	respondData(c, http.StatusCreated, b)
}

// UpdateBilling handles PUT /api/v1/billing/:id. Amounts are stored as
// given. When line_items is present it replaces the existing lines.
func UpdateBilling(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	db := config.GetDB().WithContext(c.Request.Context())

	var b models.Billing
	if !findByID(c, db, &b, id, "Billing document") {
		return
	}
	createdAt := b.CreatedAt

	if !bindJSON(c, &b) {
		return
	}
	b.ID, b.CreatedAt = id, createdAt

	if !validateBilling(c, db, &b, &id) {
		return
	}

	if b.TaxRate == nil {
		zero := 0.0
		b.TaxRate = &zero
	}

	replaceLines := b.LineItems != nil
	for i := range b.LineItems {
		b.LineItems[i].ID = uuid.New()
		b.LineItems[i].BillingID = b.ID
		services.ApplyLineItemDefaults(&b.LineItems[i])
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&b).Error; err != nil {
			return err
		}
		if !replaceLines {
			return nil
		}
		if err := tx.Where("billing_id = ?", b.ID).Delete(&models.BillingLineItem{}).Error; err != nil {
			return fmt.Errorf("remove line items: %w", err)
		}
		if len(b.LineItems) > 0 {
			if err := tx.Omit(clause.Associations).Create(&b.LineItems).Error; err != nil {
				return fmt.Errorf("line items: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		respondDatabaseError(c, err, "Failed to update billing document")
		return
	}

	respondData(c, http.StatusOK, b)
}

// DeleteBilling handles DELETE /api/v1/billing/:id
func DeleteBilling(c *gin.Context) {
	deleteResource[models.Billing](c, config.GetDB(), "Billing document")
}

// GetBillingStats handles GET /api/v1/billing/stats
func GetBillingStats(c *gin.Context) {
	stats, err := services.ComputeBillingStats(c.Request.Context(), config.GetDB())
	if err != nil {
		respondDatabaseError(c, err, "Failed to compute billing stats")
		return
	}
	respondData(c, http.StatusOK, stats)
}

// DownloadBillingPDF handles GET /api/v1/billing/:id/pdf
func DownloadBillingPDF(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	converter := services.GetPDFConverter()
	if converter == nil {
		respondError(c, http.StatusServiceUnavailable, "PDF_RENDERER_UNAVAILABLE", "PDF rendering is not configured")
		return
	}

	b, ok := loadBilling(c, id)
	if !ok {
		return
	}

	html, err := services.GetInvoiceRenderer().RenderHTML(b)
	if err != nil {
		logger.L().Error("failed to render invoice", zap.String("billing_id", id.String()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "RENDER_ERROR", "Failed to render invoice")
		return
	}

	pdf, err := converter.Convert(c.Request.Context(), html)
	if err != nil {
		if errors.Is(err, services.ErrRendererUnavailable) {
			logger.L().Warn("pdf renderer unreachable", zap.String("billing_id", id.String()), zap.Error(err))
			respondError(c, http.StatusServiceUnavailable, "PDF_RENDERER_UNAVAILABLE", "PDF renderer is unavailable")
			return
		}
		logger.L().Error("pdf conversion failed", zap.String("billing_id", id.String()), zap.Error(err))
		respondError(c, http.StatusBadGateway, "RENDER_ERROR", "Failed to generate invoice PDF")
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": "invoice-" + b.InvoiceNumber + ".pdf",
	}))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// PreviewBilling handles GET /api/v1/billing/:id/preview and returns the
// invoice as HTML
func PreviewBilling(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	b, ok := loadBilling(c, id)
	if !ok {
		return
	}

	html, err := services.GetInvoiceRenderer().RenderHTML(b)
	if err != nil {
		logger.L().Error("failed to render invoice", zap.String("billing_id", id.String()), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "RENDER_ERROR", "Failed to render invoice")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

// loadBilling fetches an invoice with everything the detail view and the
// rendered invoice need
func loadBilling(c *gin.Context, id uuid.UUID) (*models.Billing, bool) {
	db := config.GetDB().WithContext(c.Request.Context()).
		Preload("Client").
		Preload("WorkOrder").
		Preload("Job").
		Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("created_at") })

	var b models.Billing
	if !findByID(c, db, &b, id, "Billing document") {
		return nil, false
	}
	return &b, true
}

func validateBilling(c *gin.Context, db *gorm.DB, b *models.Billing, excludeID *uuid.UUID) bool {
	fields := utils.FieldErrors{}
	return runChecks(c, "billing document", fields,
		func() error {
			return checkUnique(db, fields, &models.Billing{}, "invoice_number", b.InvoiceNumber, excludeID)
		},
		func() error { return checkRequiredRef(db, fields, &models.Client{}, "client_id", b.ClientID) },
		func() error { return checkOptionalRef(db, fields, &models.WorkOrder{}, "work_order_id", b.WorkOrderID) },
		func() error { return checkOptionalRef(db, fields, &models.Scheduling{}, "job_id", b.JobID) },
	)
}
