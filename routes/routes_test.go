package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bluebay-mechanical/field-service-api/config"
	"github.com/bluebay-mechanical/field-service-api/middleware"
	"github.com/bluebay-mechanical/field-service-api/services"
	"github.com/bluebay-mechanical/field-service-api/testutil"
	"github.com/bluebay-mechanical/field-service-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// APITestSuite drives the full router over a real HTTP server
type APITestSuite struct {
	suite.Suite
	server *httptest.Server
	db     *gorm.DB
	cfg    *config.Config
}

func (suite *APITestSuite) SetupSuite() {
	testutil.RequireTestEnvironment(suite.T())
	gin.SetMode(gin.TestMode)
	utils.RegisterValidators()

	suite.cfg = &config.Config{
		GoEnv:          "test",
		DatabaseDriver: "sqlite",
		AuthDisabled:   true,
		StorageDriver:  "s3",
		CompanyName:    "Blue Bay Mechanical",
	}
	config.SetConfig(suite.cfg)
}

func (suite *APITestSuite) SetupTest() {
	suite.db = testutil.NewTestDB(suite.T())
	services.NewMockStorage().SetAsMockForTesting()
	services.SetPDFConverter(nil)

	suite.server = httptest.NewServer(SetupRouter(suite.cfg, middleware.NewRateLimiter(1000, 1000)))
}

func (suite *APITestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *APITestSuite) TearDownSuite() {
	config.SetConfig(nil)
	services.SetStorage(nil)
}

func (suite *APITestSuite) request(method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, suite.server.URL+path, reader)
	suite.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)

	var decoded map[string]interface{}
	if len(raw) > 0 && resp.Header.Get("Content-Type") == "application/json; charset=utf-8" {
		suite.Require().NoError(json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}

func (suite *APITestSuite) create(path string, body map[string]interface{}) map[string]interface{} {
	resp, decoded := suite.request(http.MethodPost, path, body)
	suite.Require().Equal(http.StatusCreated, resp.StatusCode, "POST %s: %v", path, decoded)
	return decoded["data"].(map[string]interface{})
}

func (suite *APITestSuite) TestHealthAndMetrics() {
	resp, body := suite.request(http.MethodGet, "/health", nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Equal("Field Service API is running", body["message"])
	suite.NotEmpty(resp.Header.Get("X-Request-ID"))

	resp, _ = suite.request(http.MethodGet, "/metrics", nil)
	suite.Equal(http.StatusOK, resp.StatusCode)

	raw, err := http.Get(suite.server.URL + "/metrics")
	suite.Require().NoError(err)
	defer raw.Body.Close()
	text, _ := io.ReadAll(raw.Body)
	suite.Contains(string(text), "field_service_http_requests_total")
}

func (suite *APITestSuite) TestDatabaseStatus() {
	resp, body := suite.request(http.MethodGet, "/api/v1/database/status", nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(body["tables"], "clients")
}

func (suite *APITestSuite) TestServiceWorkflow() {
	client := suite.create("/api/v1/clients", map[string]interface{}{
		"client_code": "CL-9001",
		"name":        "Point Loma Brewing",
		"phone":       "+16195550199",
		"address":     "3200 Rosecrans St",
	})
	tech := suite.create("/api/v1/technicians", map[string]interface{}{
		"employee_id": "EMP-9001",
		"first_name":  "Luis",
		"last_name":   "Ortega",
	})
	job := suite.create("/api/v1/scheduling", map[string]interface{}{
		"job_number":       "JOB-9001",
		"client_id":        client["id"],
		"technician_id":    tech["id"],
		"title":            "Walk-in cooler not holding temp",
		"service_type":     "repair",
		"scheduled_date":   "2025-08-04",
		"scheduled_time":   "08:00",
		"location_address": "3200 Rosecrans St",
	})
	wo := suite.create("/api/v1/work-orders", map[string]interface{}{
		"work_order_number": "WO-9001",
		"job_id":            job["id"],
		"client_id":         client["id"],
		"technician_id":     tech["id"],
		"title":             "Replace evaporator fan motor",
		"description":       "Fan motor failed",
		"labor_cost":        240,
		"parts_cost":        185.5,
	})
	suite.Equal(425.5, wo["total_cost"])

	part := suite.create("/api/v1/inventories", map[string]interface{}{
		"inventory_code": "PART-9001",
		"part_name":      "Evaporator fan motor",
		"part_number":    "EFM-115",
		"category":       "hvac",
		"stock":          3,
		"unit_price":     185.5,
	})
	tx := suite.create("/api/v1/inventory-transactions", map[string]interface{}{
		"inventory_id":     part["id"],
		"work_order_id":    wo["id"],
		"transaction_type": "deduction",
		"quantity":         1,
		"unit_price":       185.5,
	})
	suite.Equal(middleware.DevUserID, tx["created_by"])

	bill := suite.create("/api/v1/billing", map[string]interface{}{
		"invoice_number": "INV-9001",
		"client_id":      client["id"],
		"work_order_id":  wo["id"],
		"issue_date":     "2025-08-04",
		"due_date":       "2025-09-03",
		"tax_rate":       7.75,
		"line_items": []map[string]interface{}{
			{"description": "Labor", "quantity": 2, "unit_price": 120, "item_type": "labor"},
			{"description": "Evaporator fan motor", "quantity": 1, "unit_price": 185.5, "item_type": "parts"},
		},
	})
	suite.Equal(425.5, bill["subtotal"])
	suite.Equal(32.98, bill["tax_amount"])
	suite.Equal(458.48, bill["total_amount"])

	resp, body := suite.request(http.MethodGet, "/api/v1/billing/stats", nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Equal(1.0, body["data"].(map[string]interface{})["total_documents"])

	resp, body = suite.request(http.MethodGet, fmt.Sprintf("/api/v1/billing/%s/pdf", bill["id"]), nil)
	suite.Equal(http.StatusServiceUnavailable, resp.StatusCode)
	suite.Equal("PDF_RENDERER_UNAVAILABLE", body["error"].(map[string]interface{})["code"])

	resp, _ = suite.request(http.MethodGet, fmt.Sprintf("/api/v1/billing/%s/preview", bill["id"]), nil)
	suite.Equal(http.StatusOK, resp.StatusCode)

	resp, body = suite.request(http.MethodGet, fmt.Sprintf("/api/v1/clients/%s?include=jobs", client["id"]), nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Len(body["data"].(map[string]interface{})["jobs"], 1)

	resp, body = suite.request(http.MethodGet, "/api/v1/dashboard", nil)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(body["data"], "stats")

	resp, _ = suite.request(http.MethodDelete, fmt.Sprintf("/api/v1/clients/%s", client["id"]), nil)
	suite.Equal(http.StatusNoContent, resp.StatusCode)

	resp, _ = suite.request(http.MethodGet, fmt.Sprintf("/api/v1/billing/%s", bill["id"]), nil)
	suite.Equal(http.StatusNotFound, resp.StatusCode)
}

func (suite *APITestSuite) TestPatchIsPartialUpdate() {
	client := suite.create("/api/v1/clients", map[string]interface{}{
		"client_code": "CL-9100",
		"name":        "Ocean Beach Deli",
		"phone":       "+16195550150",
		"address":     "4900 Newport Ave",
	})

	resp, body := suite.request(http.MethodPatch, fmt.Sprintf("/api/v1/clients/%s", client["id"]), map[string]interface{}{
		"city": "San Diego",
	})
	suite.Equal(http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	suite.Equal("San Diego", data["city"])
	suite.Equal("Ocean Beach Deli", data["name"])
}

func (suite *APITestSuite) TestUnknownRoute() {
	resp, _ := suite.request(http.MethodGet, "/api/v1/invoices", nil)
	suite.Equal(http.StatusNotFound, resp.StatusCode)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func TestSetupRouter_WriteScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	testutil.NewTestDB(t)

	cfg := &config.Config{AuthDisabled: true, StorageDriver: "s3", Auth0WriteScope: "write:records"}
	router := SetupRouter(cfg, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil))
	assert.Equal(t, http.StatusOK, w.Code, "reads do not need the write scope")

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "INSUFFICIENT_SCOPE")
}

func TestSetupRouter_RequiresToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	testutil.NewTestDB(t)

	cfg := &config.Config{Auth0Domain: "bluebay.test.auth0.com", Auth0Audience: "https://api.bluebay.test", StorageDriver: "s3"}
	router := SetupRouter(cfg, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code, "health is public")
}
