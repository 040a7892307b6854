package controllers

import (
	"net/http"
	"testing"

	"github.com/bluebay-mechanical/field-service-api/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serviceHistoryRouter() *gin.Engine {
	router := setupTestRouter()
	router.GET("/service-history", ListServiceHistory)
	router.POST("/service-history", CreateServiceHistory)
	router.GET("/service-history/:id", GetServiceHistory)
	router.PUT("/service-history/:id", UpdateServiceHistory)
	router.DELETE("/service-history/:id", DeleteServiceHistory)
	return router
}

func TestServiceHistoryLifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	router := serviceHistoryRouter()
	client := testutil.CreateClient(t, db)
	tech := testutil.CreateTechnician(t, db)
	job := testutil.CreateJob(t, db, client.ID)
	wo := testutil.CreateWorkOrder(t, db, job)

	w := performRequest(t, router, http.MethodPost, "/service-history", map[string]interface{}{
		"client_id":      client.ID.String(),
		"job_id":         job.ID.String(),
		"work_order_id":  wo.ID.String(),
		"technician_id":  tech.ID.String(),
		"service_date":   "2025-02-11",
		"service_type":   "repair",
		"amount_charged": 385.5,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	data := responseData(t, w)
	id := data["id"].(string)
	assert.Equal(t, "2025-02-11", data["service_date"])

	w = performRequest(t, router, http.MethodPut, "/service-history/"+id, map[string]interface{}{"notes": "Follow up in spring"})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	assert.Equal(t, "Follow up in spring", responseData(t, w)["notes"])
	assert.Equal(t, 385.5, responseData(t, w)["amount_charged"])

	w = performRequest(t, router, http.MethodGet, "/service-history/"+id+"?include=client,technician,workOrder", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data = responseData(t, w)
	assert.Equal(t, client.Name, data["client"].(map[string]interface{})["name"])
	assert.NotNil(t, data["technician"])
	assert.NotNil(t, data["work_order"])

	w = performRequest(t, router, http.MethodGet, "/service-history?filter[client_id]="+client.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, responseList(t, w), 1)

	w = performRequest(t, router, http.MethodDelete, "/service-history/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCreateServiceHistory_Validation(t *testing.T) {
	testutil.NewTestDB(t)
	router := serviceHistoryRouter()

	w := performRequest(t, router, http.MethodPost, "/service-history", map[string]interface{}{"service_type": "repair"})
	fields := assertError(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
	assert.Contains(t, fields, "service_date")

	w = performRequest(t, router, http.MethodPost, "/service-history", map[string]interface{}{
		"service_date":  "2025-02-11",
		"technician_id": uuid.NewString(),
	})
	fields = assertError(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
	assert.Equal(t, []interface{}{"The client_id field is required."}, fields["client_id"])
	assert.Equal(t, []interface{}{"The selected technician_id is invalid."}, fields["technician_id"])

	w = performRequest(t, router, http.MethodPost, "/service-history", map[string]interface{}{"service_date": "02/11/2025"})
	assertError(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
}
