// Package seeds generates development fixtures for every entity.
package seeds

import (
	"context"
	"fmt"
	"time"

	"github.com/bluebay-mechanical/field-service-api/logger"
	"github.com/bluebay-mechanical/field-service-api/models"
	"github.com/bluebay-mechanical/field-service-api/services"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options controls a seed run. A zero Seed picks a random one.
type Options struct {
	Clients int
	Seed    uint64
	Now     time.Time
}

// Result counts the records created by Run
type Result struct {
	Clients        int `json:"clients"`
	Technicians    int `json:"technicians"`
	Jobs           int `json:"jobs"`
	WorkOrders     int `json:"work_orders"`
	Inventory      int `json:"inventory"`
	Transactions   int `json:"transactions"`
	Billing        int `json:"billing"`
	LineItems      int `json:"line_items"`
	ServiceHistory int `json:"service_history"`
	Notifications  int `json:"notifications"`
}

var (
	serviceTypes = []string{"installation", "repair", "maintenance", "inspection", "emergency"}
	priorities   = []string{"low", "normal", "high", "urgent"}
	locations    = []string{models.LocationSanDiego, models.LocationTijuana, models.LocationBoth}
	categories   = []string{"hvac", "electrical", "plumbing", "tools", "filters", "other"}
	specialties  = []string{"Residential HVAC", "Commercial refrigeration", "Heat pumps", "Ductwork", "Controls"}
	certLevels   = []string{"EPA 608 Type I", "EPA 608 Type II", "EPA 608 Universal", "NATE Certified"}
	parts        = []string{
		"Capacitor 45/5 MFD", "Condenser fan motor", "Contactor 30A", "Thermostat", "Blower wheel",
		"Igniter", "Flame sensor", "Pleated filter 16x25x1", "Refrigerant R-410A", "Condensate pump",
		"Expansion valve", "Pressure switch",
	}
)

// seeder carries the faker and running code counters through a run
type seeder struct {
	tx     *gorm.DB
	fake   *gofakeit.Faker
	now    time.Time
	result Result
	offset map[string]int64
}

// Run inserts a coherent data set in a single transaction. Codes continue
// after any rows already present so repeated runs do not collide.
func Run(ctx context.Context, db *gorm.DB, opts Options) (*Result, error) {
	if opts.Clients <= 0 {
		return nil, fmt.Errorf("clients must be positive, got %d", opts.Clients)
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}

	s := &seeder{
		fake:   gofakeit.New(opts.Seed),
		now:    opts.Now,
		offset: map[string]int64{},
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s.tx = tx
		return s.run(opts.Clients)
	})
	if err != nil {
		return nil, err
	}

	logger.L().Info("seed completed",
		zap.Int("clients", s.result.Clients),
		zap.Int("jobs", s.result.Jobs),
		zap.Int("billing", s.result.Billing),
	)
	return &s.result, nil
}

func (s *seeder) run(clientCount int) error {
	for _, m := range []struct {
		key   string
		model interface{}
	}{
		{"clients", &models.Client{}},
		{"technicians", &models.Technician{}},
		{"jobs", &models.Scheduling{}},
		{"work_orders", &models.WorkOrder{}},
		{"inventory", &models.Inventory{}},
		{"billing", &models.Billing{}},
	} {
		var n int64
		if err := s.tx.Model(m.model).Count(&n).Error; err != nil {
			return fmt.Errorf("count %s: %w", m.key, err)
		}
		s.offset[m.key] = n
	}

	techs, err := s.technicians(max(2, clientCount/3))
	if err != nil {
		return err
	}
	stock, err := s.inventory(len(parts))
	if err != nil {
		return err
	}

	for i := 0; i < clientCount; i++ {
		client, err := s.client()
		if err != nil {
			return err
		}
		for j := s.fake.IntRange(1, 3); j > 0; j-- {
			tech := techs[s.fake.IntRange(0, len(techs)-1)]
			if err := s.job(client, tech, stock); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *seeder) code(key, prefix string) string {
	s.offset[key]++
	return fmt.Sprintf("%s-%05d", prefix, s.offset[key])
}

func (s *seeder) create(v interface{}) error {
	if err := s.tx.Create(v).Error; err != nil {
		return fmt.Errorf("seed %T: %w", v, err)
	}
	return nil
}

func (s *seeder) technicians(n int) ([]models.Technician, error) {
	techs := make([]models.Technician, 0, n)
	for i := 0; i < n; i++ {
		t := models.NewTechnician()
		t.EmployeeID = s.code("technicians", "EMP")
		t.FirstName = ptr(s.fake.FirstName())
		t.LastName = ptr(s.fake.LastName())
		t.Specialization = ptr(s.fake.RandomString(specialties))
		t.CertificationLevel = ptr(s.fake.RandomString(certLevels))
		t.Location = ptr(s.fake.RandomString(locations))
		t.HourlyRate = ptr(float64(s.fake.IntRange(45, 95)))
		t.IsAvailable = s.fake.Float64Range(0, 1) < 0.8
		if err := s.create(&t); err != nil {
			return nil, err
		}
		techs = append(techs, t)
	}
	s.result.Technicians = len(techs)
	return techs, nil
}

func (s *seeder) inventory(n int) ([]models.Inventory, error) {
	items := make([]models.Inventory, 0, n)
	for i := 0; i < n; i++ {
		item := models.NewInventory()
		item.InventoryCode = s.code("inventory", "PART")
		item.PartName = parts[i%len(parts)]
		item.PartNumber = s.fake.Numerify("PN-####-###")
		item.Category = s.fake.RandomString(categories)
		item.Stock = s.fake.IntRange(0, 60)
		item.MinStock = s.fake.IntRange(2, 10)
		item.UnitPrice = float64(s.fake.IntRange(500, 45000)) / 100
		item.Location = ptr(s.fake.RandomString(locations))
		item.Supplier = ptr(s.fake.Company())
		item.SupplierContact = ptr(s.fake.Email())
		restocked := models.DateOf(s.now.AddDate(0, 0, -s.fake.IntRange(1, 90)))
		item.LastRestocked = &restocked
		if err := s.create(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	s.result.Inventory = len(items)
	return items, nil
}

func (s *seeder) client() (models.Client, error) {
	c := models.NewClient()
	c.ClientCode = s.code("clients", "CL")
	c.Name = s.fake.Company()
	c.Email = ptr(s.fake.Email())
	c.Phone = "+1" + s.fake.Numerify("619#######")
	c.Address = s.fake.Street()
	c.City = ptr(s.fake.City())
	c.State = ptr(s.fake.StateAbr())
	c.PostalCode = ptr(s.fake.Zip())
	c.PreferredContact = ptr(s.fake.RandomString([]string{"email", "phone", "sms"}))
	c.PreferredLanguage = s.fake.RandomString([]string{"en", "es"})
	if err := s.create(&c); err != nil {
		return c, err
	}
	s.result.Clients++
	return c, nil
}

// job creates a job and, for jobs in the past, the work order, parts usage,
// invoice and service history that follow it.
func (s *seeder) job(client models.Client, tech models.Technician, stock []models.Inventory) error {
	day := s.now.AddDate(0, 0, s.fake.IntRange(-60, 30))

	job := models.NewScheduling()
	job.JobNumber = s.code("jobs", "JOB")
	job.ClientID = client.ID
	job.TechnicianID = &tech.ID
	job.ServiceType = s.fake.RandomString(serviceTypes)
	job.Title = fmt.Sprintf("%s - %s", job.ServiceType, s.fake.RandomString(parts))
	job.Description = ptr(s.fake.Sentence(10))
	job.Priority = s.fake.RandomString(priorities)
	job.ScheduledDate = models.DateOf(day)
	job.ScheduledTime = fmt.Sprintf("%02d:%02d", s.fake.IntRange(7, 17), s.fake.RandomInt([]int{0, 15, 30, 45}))
	job.EstimatedDuration = ptr(s.fake.IntRange(1, 8) * 30)
	job.LocationAddress = client.Address
	job.LocationLat = ptr(s.fake.Float64Range(32.53, 32.85))
	job.LocationLng = ptr(s.fake.Float64Range(-117.28, -116.90))

	past := day.Before(s.now)
	if past {
		job.Status = models.JobStatusCompleted
	}
	if err := s.create(&job); err != nil {
		return err
	}
	s.result.Jobs++

	if err := s.reminder(client, job); err != nil {
		return err
	}
	if !past {
		return nil
	}

	part := stock[s.fake.IntRange(0, len(stock)-1)]
	hours := float64(s.fake.IntRange(2, 16)) / 2
	laborCost := hours * 95
	quantity := s.fake.IntRange(1, 3)

	wo := models.NewWorkOrder()
	wo.WorkOrderNumber = s.code("work_orders", "WO")
	wo.JobID = job.ID
	wo.ClientID = client.ID
	wo.TechnicianID = &tech.ID
	wo.Title = job.Title
	wo.Description = *job.Description
	wo.Status = models.WorkOrderStatusCompleted
	wo.Priority = job.Priority
	wo.ScheduledDate = &job.ScheduledDate
	completed := day.Add(time.Duration(hours * float64(time.Hour)))
	wo.CompletedDate = &completed
	wo.LaborHours = &hours
	wo.LaborCost = &laborCost
	wo.PartsCost = ptr(services.LineTotal(float64(quantity), part.UnitPrice))
	services.ApplyWorkOrderDefaults(&wo)
	if err := s.create(&wo); err != nil {
		return err
	}
	s.result.WorkOrders++

	usage := models.InventoryTransaction{
		ID:              uuid.New(),
		InventoryID:     part.ID,
		WorkOrderID:     &wo.ID,
		TransactionType: models.TransactionDeduction,
		Quantity:        ptr(quantity),
		UnitPrice:       &part.UnitPrice,
		CreatedBy:       ptr("seed"),
	}
	services.ApplyTransactionDefaults(&usage)
	if err := s.create(&usage); err != nil {
		return err
	}
	s.result.Transactions++

	if err := s.invoice(client, job, wo, part, quantity); err != nil {
		return err
	}

	history := models.ServiceHistory{
		ID:            uuid.New(),
		ClientID:      client.ID,
		JobID:         &job.ID,
		WorkOrderID:   &wo.ID,
		TechnicianID:  &tech.ID,
		ServiceDate:   job.ScheduledDate,
		ServiceType:   &job.ServiceType,
		Description:   &wo.Title,
		AmountCharged: wo.TotalCost,
	}
	if err := s.create(&history); err != nil {
		return err
	}
	s.result.ServiceHistory++

	return s.tx.Model(&models.Client{}).Where("id = ?", client.ID).Updates(map[string]interface{}{
		"service_history_count": gorm.Expr("service_history_count + 1"),
		"last_service_date":     job.ScheduledDate,
	}).Error
}

func (s *seeder) invoice(client models.Client, job models.Scheduling, wo models.WorkOrder, part models.Inventory, quantity int) error {
	bill := models.NewBilling()
	bill.InvoiceNumber = s.code("billing", fmt.Sprintf("INV-%d", job.ScheduledDate.Time().Year()))
	bill.ClientID = client.ID
	bill.WorkOrderID = &wo.ID
	bill.JobID = &job.ID
	bill.IssueDate = job.ScheduledDate
	bill.DueDate = models.DateOf(job.ScheduledDate.Time().AddDate(0, 0, 30))
	bill.TaxRate = ptr(7.75)
	bill.Status = s.fake.RandomString([]string{
		models.BillingStatusIssued, models.BillingStatusPaid, models.BillingStatusPaid, models.BillingStatusOverdue,
	})
	bill.LineItems = []models.BillingLineItem{
		{ID: uuid.New(), Description: "Labor", Quantity: *wo.LaborHours, UnitPrice: 95, ItemType: ptr("labor")},
		{ID: uuid.New(), Description: part.PartName, Quantity: float64(quantity), UnitPrice: part.UnitPrice, ItemType: ptr("parts")},
	}
	services.CalculateBillingTotals(&bill)
	if bill.Status == models.BillingStatusPaid {
		bill.AmountPaid = bill.TotalAmount
		bill.BalanceDue = 0
		bill.PaymentMethod = ptr(s.fake.RandomString([]string{"card", "check", "ach"}))
		bill.PaymentDate = &bill.DueDate
	}
	if err := s.create(&bill); err != nil {
		return err
	}
	s.result.Billing++
	s.result.LineItems += len(bill.LineItems)
	return nil
}

func (s *seeder) reminder(client models.Client, job models.Scheduling) error {
	n := models.NewNotification()
	n.ClientID = &client.ID
	n.RelatedJobID = &job.ID
	n.NotificationType = models.NotificationSMS
	n.Message = fmt.Sprintf("Blue Bay Mechanical: your %s visit is booked for %s at %s.",
		job.ServiceType, job.ScheduledDate, job.ScheduledTime)

	remindAt := job.ScheduledDate.Time().AddDate(0, 0, -1).Add(17 * time.Hour)
	if remindAt.Before(s.now) {
		n.Status = models.NotificationStatusSent
		n.SentAt = &remindAt
	} else {
		n.Status = models.NotificationStatusScheduled
		n.ScheduledFor = &remindAt
	}
	if err := s.create(&n); err != nil {
		return err
	}
	s.result.Notifications++
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
