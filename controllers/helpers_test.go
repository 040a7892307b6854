package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/bluebay-mechanical/field-service-api/testutil"
	"github.com/bluebay-mechanical/field-service-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = "auth0|dispatcher1"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	utils.RegisterValidators()
	os.Exit(m.Run())
}

// setupTestRouter returns a router whose requests are authenticated as testUserID
func setupTestRouter() *gin.Engine {
	router := gin.New()
	router.Use(testutil.MockAuth(testUserID, ""))
	return router
}

func performRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "body: %s", w.Body.String())
	return response
}

func responseData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	response := decodeResponse(t, w)
	require.True(t, response["success"].(bool), "body: %s", w.Body.String())
	return response["data"].(map[string]interface{})
}

func responseList(t *testing.T, w *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	response := decodeResponse(t, w)
	require.True(t, response["success"].(bool), "body: %s", w.Body.String())
	return response["data"].([]interface{})
}

// assertError checks the error envelope and returns its field errors, if any
func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) map[string]interface{} {
	t.Helper()
	require.Equal(t, status, w.Code, "body: %s", w.Body.String())

	response := decodeResponse(t, w)
	assert.False(t, response["success"].(bool))
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, code, errorData["code"])

	fields, _ := errorData["fields"].(map[string]interface{})
	return fields
}

func TestParseID(t *testing.T) {
	router := setupTestRouter()
	router.GET("/clients/:id", GetClient)
	testutil.NewTestDB(t)

	w := performRequest(t, router, http.MethodGet, "/clients/not-a-uuid", nil)
	assertError(t, w, http.StatusBadRequest, "INVALID_ID")
}

func TestBindJSON_MalformedBody(t *testing.T) {
	testutil.NewTestDB(t)
	router := setupTestRouter()
	router.POST("/clients", CreateClient)

	req := httptest.NewRequest(http.MethodPost, "/clients", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assertError(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
}
