package services

import (
	"context"
	"fmt"

	"github.com/bluebay-mechanical/field-service-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// LineTotal is quantity x unit price rounded to cents
func LineTotal(quantity, unitPrice float64) float64 {
	return round2(decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(unitPrice)))
}

// ApplyLineItemDefaults fills a zero total_price from quantity and unit price
func ApplyLineItemDefaults(item *models.BillingLineItem) {
	if item.TotalPrice == 0 {
		item.TotalPrice = LineTotal(item.Quantity, item.UnitPrice)
	}
}

// CalculateBillingTotals fills in the derived amounts of a new invoice when
// no total_amount was supplied:
//
//	subtotal = sum of line totals (only when subtotal is zero)
//	tax      = subtotal x tax_rate / 100 (whenever tax_rate is present, zero included)
//	total    = subtotal + tax - discount
//	balance  = total - amount_paid
//
// Line item totals are defaulted first. An explicit total is left untouched.
// A missing tax_rate is stored as zero.
func CalculateBillingTotals(b *models.Billing) {
	for i := range b.LineItems {
		ApplyLineItemDefaults(&b.LineItems[i])
	}

	rate := b.TaxRate
	if rate == nil {
		zero := 0.0
		b.TaxRate = &zero
	}

	if b.TotalAmount != 0 {
		return
	}

	subtotal := decimal.NewFromFloat(b.Subtotal)
	if subtotal.IsZero() && len(b.LineItems) > 0 {
		for _, item := range b.LineItems {
			subtotal = subtotal.Add(decimal.NewFromFloat(item.TotalPrice))
		}
	}

	tax := decimal.NewFromFloat(b.TaxAmount)
	if rate != nil {
		tax = subtotal.Mul(decimal.NewFromFloat(*rate)).Div(hundred).Round(2)
	}

	total := subtotal.Add(tax).Sub(decimal.NewFromFloat(b.DiscountAmount)).Round(2)

	b.Subtotal = round2(subtotal)
	b.TaxAmount = round2(tax)
	b.TotalAmount = total.InexactFloat64()
	b.BalanceDue = round2(total.Sub(decimal.NewFromFloat(b.AmountPaid)))
}

// ApplyTransactionDefaults computes total_cost from quantity and unit price
// when the caller did not provide one
func ApplyTransactionDefaults(t *models.InventoryTransaction) {
	if t.TotalCost != nil || t.UnitPrice == nil || t.Quantity == nil {
		return
	}
	total := LineTotal(float64(*t.Quantity), *t.UnitPrice)
	t.TotalCost = &total
}

// ApplyWorkOrderDefaults sums labor and parts into total_cost when the
// caller did not provide one
func ApplyWorkOrderDefaults(w *models.WorkOrder) {
	if w.TotalCost != nil || (w.LaborCost == nil && w.PartsCost == nil) {
		return
	}
	sum := decimal.Zero
	if w.LaborCost != nil {
		sum = sum.Add(decimal.NewFromFloat(*w.LaborCost))
	}
	if w.PartsCost != nil {
		sum = sum.Add(decimal.NewFromFloat(*w.PartsCost))
	}
	total := round2(sum)
	w.TotalCost = &total
}

// BillingStats summarises invoicing across all documents
type BillingStats struct {
	TotalRevenue    float64 `json:"total_revenue"`
	PendingAmount   float64 `json:"pending_amount"`
	TotalDocuments  int64   `json:"total_documents"`
	PaidInvoices    int64   `json:"paid_invoices"`
	OverdueInvoices int64   `json:"overdue_invoices"`
}

// ComputeBillingStats reads the billing summary from db
func ComputeBillingStats(ctx context.Context, db *gorm.DB) (*BillingStats, error) {
	db = db.WithContext(ctx)
	stats := &BillingStats{}

	var revenue, pending float64
	if err := db.Model(&models.Billing{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("status IN ?", []string{models.BillingStatusPaid, models.BillingStatusIssued}).
		Scan(&revenue).Error; err != nil {
		return nil, fmt.Errorf("total revenue: %w", err)
	}
	if err := db.Model(&models.Billing{}).
		Select("COALESCE(SUM(balance_due), 0)").
		Where("status IN ?", []string{models.BillingStatusIssued, models.BillingStatusOverdue}).
		Scan(&pending).Error; err != nil {
		return nil, fmt.Errorf("pending amount: %w", err)
	}
	stats.TotalRevenue = round2(decimal.NewFromFloat(revenue))
	stats.PendingAmount = round2(decimal.NewFromFloat(pending))

	if err := db.Model(&models.Billing{}).Count(&stats.TotalDocuments).Error; err != nil {
		return nil, fmt.Errorf("document count: %w", err)
	}
	if err := db.Model(&models.Billing{}).Where("status = ?", models.BillingStatusPaid).
		Count(&stats.PaidInvoices).Error; err != nil {
		return nil, fmt.Errorf("paid count: %w", err)
	}
	if err := db.Model(&models.Billing{}).Where("status = ?", models.BillingStatusOverdue).
		Count(&stats.OverdueInvoices).Error; err != nil {
		return nil, fmt.Errorf("overdue count: %w", err)
	}

	return stats, nil
}
