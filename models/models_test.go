package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		name  string
		model interface{ TableName() string }
		want  string
	}{
		{"client", Client{}, "clients"},
		{"technician", Technician{}, "technicians"},
		{"scheduling", Scheduling{}, "scheduling"},
		{"work order", WorkOrder{}, "work_orders"},
		{"work order photo", WorkOrderPhoto{}, "work_order_photos"},
		{"inventory", Inventory{}, "inventories"},
		{"inventory transaction", InventoryTransaction{}, "inventory_transactions"},
		{"billing", Billing{}, "billing"},
		{"billing line item", BillingLineItem{}, "billing_line_items"},
		{"service history", ServiceHistory{}, "service_history"},
		{"notification", Notification{}, "notifications"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.model.TableName())
		})
	}
}

func TestConstructorsApplyDefaults(t *testing.T) {
	client := NewClient()
	assert.NotEqual(t, client.ID, NewClient().ID, "each client gets its own id")
	assert.Equal(t, "US", client.Country)
	assert.Equal(t, "en", client.PreferredLanguage)
	assert.True(t, client.IsActive)

	job := NewScheduling()
	assert.Equal(t, JobStatusScheduled, job.Status)
	assert.Equal(t, PriorityNormal, job.Priority)

	wo := NewWorkOrder()
	assert.Equal(t, WorkOrderStatusPending, wo.Status)

	bill := NewBilling()
	assert.Equal(t, BillingStatusDraft, bill.Status)
	assert.Equal(t, InvoiceTypeInvoice, bill.InvoiceType)

	assert.True(t, NewTechnician().IsAvailable)
	assert.True(t, NewInventory().IsActive)
	assert.Equal(t, NotificationStatusPending, NewNotification().Status)
}

func TestTechnicianDisplayName(t *testing.T) {
	first, last := "Maria", "Lopez"

	assert.Equal(t, "Maria Lopez", Technician{FirstName: &first, LastName: &last, EmployeeID: "EMP-1"}.DisplayName())
	assert.Equal(t, "Maria", Technician{FirstName: &first, EmployeeID: "EMP-1"}.DisplayName())
	assert.Equal(t, "EMP-1", Technician{EmployeeID: "EMP-1"}.DisplayName())
}

func TestInventoryLowStock(t *testing.T) {
	assert.True(t, Inventory{Stock: 2, MinStock: 5}.LowStock())
	assert.True(t, Inventory{Stock: 5, MinStock: 5}.LowStock())
	assert.False(t, Inventory{Stock: 6, MinStock: 5}.LowStock())
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2025, time.March, 7)

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-07"`, string(out))

	var zero Date
	out, err = json.Marshal(zero)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	var parsed Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-03-07"`), &parsed))
	assert.Equal(t, d, parsed)

	require.NoError(t, json.Unmarshal([]byte(`"2025-03-07T15:04:05Z"`), &parsed))
	assert.Equal(t, d, parsed)

	assert.Error(t, json.Unmarshal([]byte(`"07/03/2025"`), &parsed))
	assert.Error(t, json.Unmarshal([]byte(`12`), &parsed))
}

func TestDateScanAndValue(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-01-15", d.String())

	require.NoError(t, d.Scan("2025-02-01 00:00:00+00:00"))
	assert.Equal(t, "2025-02-01", d.String())

	require.NoError(t, d.Scan([]byte("2025-02-02")))
	assert.Equal(t, "2025-02-02", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan("not a date"))

	v, err := NewDate(2025, time.June, 30).Value()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC), v)
}

func TestDateOfUsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("PST", -8*3600)
	late := time.Date(2025, 4, 10, 23, 30, 0, 0, loc)

	assert.Equal(t, "2025-04-10", DateOf(late).String())
}
