package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bluebay-mechanical/field-service-api/models"
	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	dashboardListLimit      = 10
	dashboardTopTechnicians = 5
	revenueMonths           = 6
)

// DashboardStats are the headline numbers
type DashboardStats struct {
	TodaysJobs        int64   `json:"todaysJobs"`
	ActiveTechnicians int64   `json:"activeTechnicians"`
	Revenue           float64 `json:"revenue"`
	CompletionRate    float64 `json:"completionRate"`
}

// DashboardJob is an open work order
type DashboardJob struct {
	ID              uuid.UUID `json:"id"`
	WorkOrderNumber string    `json:"work_order_number"`
	Title           string    `json:"title"`
	ClientName      string    `json:"client_name"`
	TechnicianName  string    `json:"technician_name"`
	Status          string    `json:"status"`
	Priority        string    `json:"priority"`
	ScheduledDate   *string   `json:"scheduled_date"`
}

// DashboardCompletion is a recently completed work order
type DashboardCompletion struct {
	ID              uuid.UUID `json:"id"`
	WorkOrderNumber string    `json:"work_order_number"`
	Title           string    `json:"title"`
	ClientName      string    `json:"client_name"`
	TechnicianName  string    `json:"technician_name"`
	CompletedDate   *string   `json:"completed_date"`
	TotalCost       *float64  `json:"total_cost"`
}

type MonthlyRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type TechnicianCount struct {
	Name          string `json:"name"`
	CompletedJobs int64  `json:"completed_jobs"`
}

type DashboardCharts struct {
	RevenueOverTime       []MonthlyRevenue  `json:"revenueOverTime"`
	JobStatusDistribution []StatusCount     `json:"jobStatusDistribution"`
	TopTechnicians        []TechnicianCount `json:"topTechnicians"`
}

type DashboardRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Dashboard is the full dashboard payload
type Dashboard struct {
	Stats             DashboardStats        `json:"stats"`
	ActiveJobs        []DashboardJob        `json:"activeJobs"`
	RecentCompletions []DashboardCompletion `json:"recentCompletions"`
	Charts            DashboardCharts       `json:"charts"`
	Range             DashboardRange        `json:"range"`
}

// DashboardService aggregates operational metrics. Nothing is cached; every
// call reads the current state of the database.
type DashboardService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewDashboardService creates a dashboard service reading from db
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the service clock
func (s *DashboardService) WithClock(clock func() time.Time) *DashboardService {
	s.now = clock
	return s
}

// Range resolves the reporting window. Empty bounds default to the current
// month; given bounds are widened to the start and end of their days.
func (s *DashboardService) Range(startParam, endParam string) (time.Time, time.Time, error) {
	today := now.With(s.now())

	start := today.BeginningOfMonth()
	if startParam != "" {
		d, err := models.ParseDate(startParam)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("start_date: %w", err)
		}
		start = now.With(d.Time()).BeginningOfDay()
	}

	end := today.EndOfMonth()
	if endParam != "" {
		d, err := models.ParseDate(endParam)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("end_date: %w", err)
		}
		end = now.With(d.Time()).EndOfDay()
	}

	return start, end, nil
}

// Build computes the dashboard for the window [start, end]
func (s *DashboardService) Build(ctx context.Context, start, end time.Time) (*Dashboard, error) {
	db := s.db.WithContext(ctx)
	d := &Dashboard{
		Range: DashboardRange{
			StartDate: start.Format(models.DateLayout),
			EndDate:   end.Format(models.DateLayout),
		},
	}

	var err error
	if d.Stats, err = s.stats(db, start, end); err != nil {
		return nil, err
	}
	if d.ActiveJobs, err = s.activeJobs(db); err != nil {
		return nil, err
	}
	if d.RecentCompletions, err = s.recentCompletions(db); err != nil {
		return nil, err
	}
	if d.Charts.RevenueOverTime, err = s.revenueOverTime(db); err != nil {
		return nil, err
	}
	if d.Charts.JobStatusDistribution, err = s.statusDistribution(db, start, end); err != nil {
		return nil, err
	}
	if d.Charts.TopTechnicians, err = s.topTechnicians(db, start, end); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DashboardService) stats(db *gorm.DB, start, end time.Time) (DashboardStats, error) {
	var st DashboardStats

	today := models.DateOf(s.now())
	if err := db.Model(&models.Scheduling{}).
		Where("scheduled_date = ?", today).
		Where("status IN ?", []string{models.JobStatusScheduled, models.JobStatusInProgress}).
		Count(&st.TodaysJobs).Error; err != nil {
		return st, fmt.Errorf("todays jobs: %w", err)
	}

	if err := db.Model(&models.Technician{}).
		Where("is_available = ?", true).
		Count(&st.ActiveTechnicians).Error; err != nil {
		return st, fmt.Errorf("active technicians: %w", err)
	}

	revenue, err := sumPaidRevenue(db, start, end)
	if err != nil {
		return st, err
	}
	st.Revenue = revenue

	var total, completed int64
	if err := db.Model(&models.WorkOrder{}).
		Where("created_at BETWEEN ? AND ?", start, end).
		Count(&total).Error; err != nil {
		return st, fmt.Errorf("work order count: %w", err)
	}
	if err := db.Model(&models.WorkOrder{}).
		Where("created_at BETWEEN ? AND ?", start, end).
		Where("status = ?", models.WorkOrderStatusCompleted).
		Count(&completed).Error; err != nil {
		return st, fmt.Errorf("completed work order count: %w", err)
	}
	st.CompletionRate = CompletionRate(completed, total)

	return st, nil
}

// CompletionRate is completed/total as a percentage rounded to 2 places,
// zero when there is nothing to complete
func CompletionRate(completed, total int64) float64 {
	if total == 0 {
		return 0
	}
	return round2(decimal.NewFromInt(completed).Mul(hundred).Div(decimal.NewFromInt(total)))
}

func sumPaidRevenue(db *gorm.DB, start, end time.Time) (float64, error) {
	var revenue float64
	err := db.Model(&models.Billing{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("status = ?", models.BillingStatusPaid).
		Where("issue_date BETWEEN ? AND ?", models.DateOf(start), models.DateOf(end)).
		Scan(&revenue).Error
	if err != nil {
		return 0, fmt.Errorf("revenue: %w", err)
	}
	return round2(decimal.NewFromFloat(revenue)), nil
}

func (s *DashboardService) activeJobs(db *gorm.DB) ([]DashboardJob, error) {
	var orders []models.WorkOrder
	err := db.Preload("Client").Preload("Technician").
		Where("status IN ?", []string{models.WorkOrderStatusPending, models.WorkOrderStatusInProgress}).
		Order("scheduled_date ASC").
		Limit(dashboardListLimit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("active jobs: %w", err)
	}

	jobs := make([]DashboardJob, 0, len(orders))
	for _, o := range orders {
		job := DashboardJob{
			ID:              o.ID,
			WorkOrderNumber: o.WorkOrderNumber,
			Title:           o.Title,
			ClientName:      clientName(o.Client),
			TechnicianName:  technicianName(o.Technician),
			Status:          o.Status,
			Priority:        o.Priority,
		}
		if o.ScheduledDate != nil && !o.ScheduledDate.IsZero() {
			date := o.ScheduledDate.String()
			job.ScheduledDate = &date
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (s *DashboardService) recentCompletions(db *gorm.DB) ([]DashboardCompletion, error) {
	var orders []models.WorkOrder
	err := db.Preload("Client").Preload("Technician").
		Where("status = ?", models.WorkOrderStatusCompleted).
		Order("completed_date DESC").
		Limit(dashboardListLimit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("recent completions: %w", err)
	}

	out := make([]DashboardCompletion, 0, len(orders))
	for _, o := range orders {
		c := DashboardCompletion{
			ID:              o.ID,
			WorkOrderNumber: o.WorkOrderNumber,
			Title:           o.Title,
			ClientName:      clientName(o.Client),
			TechnicianName:  technicianName(o.Technician),
			TotalCost:       o.TotalCost,
		}
		if o.CompletedDate != nil {
			date := o.CompletedDate.UTC().Format(models.DateLayout)
			c.CompletedDate = &date
		}
		out = append(out, c)
	}
	return out, nil
}

// revenueOverTime buckets paid revenue into the last six calendar months,
// oldest first. Bucketing happens here rather than in SQL so the query is
// the same on every driver.
func (s *DashboardService) revenueOverTime(db *gorm.DB) ([]MonthlyRevenue, error) {
	current := now.With(s.now()).BeginningOfMonth()
	first := current.AddDate(0, -(revenueMonths - 1), 0)

	var rows []struct {
		IssueDate   models.Date
		TotalAmount float64
	}
	err := db.Model(&models.Billing{}).
		Select("issue_date, total_amount").
		Where("status = ?", models.BillingStatusPaid).
		Where("issue_date BETWEEN ? AND ?", models.DateOf(first), models.DateOf(now.With(current).EndOfMonth())).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("revenue over time: %w", err)
	}

	sums := make(map[string]decimal.Decimal, revenueMonths)
	for _, r := range rows {
		key := r.IssueDate.Time().Format("2006-01")
		sums[key] = sums[key].Add(decimal.NewFromFloat(r.TotalAmount))
	}

	out := make([]MonthlyRevenue, 0, revenueMonths)
	for i := 0; i < revenueMonths; i++ {
		month := first.AddDate(0, i, 0)
		out = append(out, MonthlyRevenue{
			Month:   month.Format("Jan 2006"),
			Revenue: round2(sums[month.Format("2006-01")]),
		})
	}
	return out, nil
}

func (s *DashboardService) statusDistribution(db *gorm.DB, start, end time.Time) ([]StatusCount, error) {
	var rows []StatusCount
	err := db.Model(&models.WorkOrder{}).
		Select("status, COUNT(*) AS count").
		Where("created_at BETWEEN ? AND ?", start, end).
		Group("status").
		Order("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("status distribution: %w", err)
	}

	out := make([]StatusCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, StatusCount{Status: capitalize(r.Status), Count: r.Count})
	}
	return out, nil
}

func (s *DashboardService) topTechnicians(db *gorm.DB, start, end time.Time) ([]TechnicianCount, error) {
	var rows []struct {
		TechnicianID  *uuid.UUID
		CompletedJobs int64
	}
	err := db.Model(&models.WorkOrder{}).
		Select("technician_id, COUNT(*) AS completed_jobs").
		Where("status = ?", models.WorkOrderStatusCompleted).
		Where("completed_date BETWEEN ? AND ?", start, end).
		Group("technician_id").
		Order("completed_jobs DESC").
		Limit(dashboardTopTechnicians).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("top technicians: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		if r.TechnicianID != nil {
			ids = append(ids, *r.TechnicianID)
		}
	}
	names := map[uuid.UUID]string{}
	if len(ids) > 0 {
		var techs []models.Technician
		if err := db.Where("id IN ?", ids).Find(&techs).Error; err != nil {
			return nil, fmt.Errorf("top technician names: %w", err)
		}
		for _, t := range techs {
			names[t.ID] = t.DisplayName()
		}
	}

	out := make([]TechnicianCount, 0, len(rows))
	for _, r := range rows {
		name := "Unknown"
		if r.TechnicianID != nil {
			if n, ok := names[*r.TechnicianID]; ok {
				name = n
			}
		}
		out = append(out, TechnicianCount{Name: name, CompletedJobs: r.CompletedJobs})
	}
	return out, nil
}

func clientName(c *models.Client) string {
	if c == nil || c.Name == "" {
		return "N/A"
	}
	return c.Name
}

func technicianName(t *models.Technician) string {
	if t == nil {
		return "Unassigned"
	}
	return t.DisplayName()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
