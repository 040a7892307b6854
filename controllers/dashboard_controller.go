package controllers

import (
	"net/http"
	"time"

	"github.com/bluebay-mechanical/field-service-api/config"
	"github.com/bluebay-mechanical/field-service-api/models"
	"github.com/bluebay-mechanical/field-service-api/services"
	"github.com/bluebay-mechanical/field-service-api/utils"
	"github.com/gin-gonic/gin"
)

// dashboardClock lets tests pin "now"; nil uses the service default
var dashboardClock func() time.Time

// GetDashboard handles GET /api/v1/dashboard?start_date=&end_date=
func GetDashboard(c *gin.Context) {
	svc := services.NewDashboardService(config.GetDB())
	if dashboardClock != nil {
		svc.WithClock(dashboardClock)
	}

	start, end, err := svc.Range(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		fields := utils.FieldErrors{}
		for _, key := range []string{"start_date", "end_date"} {
			if v := c.Query(key); v != "" {
				if _, perr := models.ParseDate(v); perr == nil {
					continue
				}
				fields.Add(key, "The "+key+" is not a valid date.")
			}
		}
		respondValidation(c, fields)
		return
	}
	if end.Before(start) {
		respondValidation(c, utils.FieldErrors{
			"end_date": {"The end_date must be a date after or equal to start_date."},
		})
		return
	}

	dashboard, err := svc.Build(c.Request.Context(), start, end)
	if err != nil {
		respondDatabaseError(c, err, "Failed to build dashboard")
		return
	}

	respondData(c, http.StatusOK, dashboard)
}
