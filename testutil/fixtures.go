package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bluebay-mechanical/field-service-api/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var seq int64

func next() int64 {
	return atomic.AddInt64(&seq, 1)
}

func create(t *testing.T, db *gorm.DB, v interface{}) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("Failed to create fixture %T: %v", v, err)
	}
}

// CreateClient inserts a client; opts may adjust it before insert
func CreateClient(t *testing.T, db *gorm.DB, opts ...func(*models.Client)) models.Client {
	t.Helper()
	n := next()
	c := models.NewClient()
	c.ClientCode = fmt.Sprintf("CL-%05d", n)
	c.Name = fmt.Sprintf("Client %d", n)
	c.Phone = "+16195550100"
	c.Address = "100 Harbor Dr, San Diego"
	for _, opt := range opts {
		opt(&c)
	}
	create(t, db, &c)
	return c
}

// CreateTechnician inserts a technician
func CreateTechnician(t *testing.T, db *gorm.DB, opts ...func(*models.Technician)) models.Technician {
	t.Helper()
	tech := models.NewTechnician()
	tech.EmployeeID = fmt.Sprintf("EMP-%05d", next())
	for _, opt := range opts {
		opt(&tech)
	}
	create(t, db, &tech)
	return tech
}

// CreateJob inserts a scheduled job for clientID
func CreateJob(t *testing.T, db *gorm.DB, clientID uuid.UUID, opts ...func(*models.Scheduling)) models.Scheduling {
	t.Helper()
	job := models.NewScheduling()
	job.JobNumber = fmt.Sprintf("JOB-%05d", next())
	job.ClientID = clientID
	job.Title = "AC maintenance"
	job.ServiceType = "maintenance"
	job.ScheduledDate = models.DateOf(time.Now().UTC())
	job.ScheduledTime = "09:00"
	job.LocationAddress = "100 Harbor Dr, San Diego"
	for _, opt := range opts {
		opt(&job)
	}
	create(t, db, &job)
	return job
}

// CreateWorkOrder inserts a work order against job
func CreateWorkOrder(t *testing.T, db *gorm.DB, job models.Scheduling, opts ...func(*models.WorkOrder)) models.WorkOrder {
	t.Helper()
	wo := models.NewWorkOrder()
	wo.WorkOrderNumber = fmt.Sprintf("WO-%05d", next())
	wo.JobID = job.ID
	wo.ClientID = job.ClientID
	wo.TechnicianID = job.TechnicianID
	wo.Title = job.Title
	wo.Description = "Inspect and service unit"
	for _, opt := range opts {
		opt(&wo)
	}
	create(t, db, &wo)
	return wo
}

// CreateBilling inserts an invoice for clientID
func CreateBilling(t *testing.T, db *gorm.DB, clientID uuid.UUID, opts ...func(*models.Billing)) models.Billing {
	t.Helper()
	today := models.DateOf(time.Now().UTC())
	b := models.NewBilling()
	b.InvoiceNumber = fmt.Sprintf("INV-%05d", next())
	b.ClientID = clientID
	b.IssueDate = today
	b.DueDate = models.DateOf(today.Time().AddDate(0, 0, 30))
	for _, opt := range opts {
		opt(&b)
	}
	create(t, db, &b)
	return b
}

// CreateInventory inserts a stocked part
func CreateInventory(t *testing.T, db *gorm.DB, opts ...func(*models.Inventory)) models.Inventory {
	t.Helper()
	n := next()
	inv := models.NewInventory()
	inv.InventoryCode = fmt.Sprintf("INV-PART-%05d", n)
	inv.PartName = "Capacitor 45/5 MFD"
	inv.PartNumber = fmt.Sprintf("CAP-%d", n)
	inv.Category = "hvac"
	inv.Stock = 10
	inv.MinStock = 2
	inv.UnitPrice = 12.5
	for _, opt := range opts {
		opt(&inv)
	}
	create(t, db, &inv)
	return inv
}
