package controllers

import (
	"net/http"
	"testing"

	"github.com/bluebay-mechanical/field-service-api/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	router := gin.New()
	router.GET("/health", HealthCheck)

	w := performRequest(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	response := decodeResponse(t, w)
	assert.Equal(t, true, response["success"])
	assert.Equal(t, "Field Service API is running", response["message"])
}

func TestDatabaseStatus(t *testing.T) {
	testutil.NewTestDB(t)
	router := gin.New()
	router.GET("/database/status", DatabaseStatus)

	w := performRequest(t, router, http.MethodGet, "/database/status", nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	response := decodeResponse(t, w)
	assert.Equal(t, true, response["success"])
	tables := response["tables"].([]interface{})
	for _, name := range []string{"billing", "billing_line_items", "clients", "scheduling", "technicians", "work_order_photos", "work_orders"} {
		assert.Contains(t, tables, name)
	}
}

func TestDatabaseStatus_NotConnected(t *testing.T) {
	router := gin.New()
	router.GET("/database/status", DatabaseStatus)

	w := performRequest(t, router, http.MethodGet, "/database/status", nil)
	assertError(t, w, http.StatusInternalServerError, "DATABASE_ERROR")
}
