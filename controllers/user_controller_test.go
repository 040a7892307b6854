package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bluebay-mechanical/field-service-api/config"
	"github.com/bluebay-mechanical/field-service-api/models"
	"github.com/bluebay-mechanical/field-service-api/services"
	"github.com/bluebay-mechanical/field-service-api/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockUserInfoServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer valid-token":
		case "Bearer upstream-down":
			w.WriteHeader(http.StatusInternalServerError)
			return
		default:
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(services.Auth0UserInfo{
			Sub:           testUserID,
			Email:         "dispatch@bluebay.test",
			EmailVerified: true,
			Name:          "Dana Dispatcher",
			Nickname:      "dana",
		})
	}))
	t.Cleanup(server.Close)

	original := config.GetConfig()
	config.SetConfig(&config.Config{Auth0Domain: server.URL})
	t.Cleanup(func() { config.SetConfig(original) })
	return server
}

func userRouter(accessToken string) *gin.Engine {
	router := gin.New()
	router.Use(testutil.MockAuth(testUserID, accessToken))
	router.GET("/user", GetCurrentUser)
	return router
}

func TestGetCurrentUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	mockUserInfoServer(t)

	subject := testUserID
	tech := testutil.CreateTechnician(t, db, func(tc *models.Technician) { tc.UserID = &subject })

	w := performRequest(t, userRouter("valid-token"), http.MethodGet, "/user", nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	data := responseData(t, w)
	assert.Equal(t, testUserID, data["sub"])
	assert.Equal(t, "dispatch@bluebay.test", data["email"])
	assert.Equal(t, true, data["email_verified"])
	assert.Equal(t, "Dana Dispatcher", data["name"])
	assert.Equal(t, tech.ID.String(), data["technician"].(map[string]interface{})["id"])
}

func TestGetCurrentUser_NoLinkedTechnician(t *testing.T) {
	testutil.NewTestDB(t)
	mockUserInfoServer(t)

	w := performRequest(t, userRouter("valid-token"), http.MethodGet, "/user", nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	assert.Nil(t, responseData(t, w)["technician"])
}

func TestGetCurrentUser_Auth0Failure(t *testing.T) {
	testutil.NewTestDB(t)
	mockUserInfoServer(t)

	w := performRequest(t, userRouter("expired-token"), http.MethodGet, "/user", nil)
	assertError(t, w, http.StatusUnauthorized, "INVALID_TOKEN")

	w = performRequest(t, userRouter("upstream-down"), http.MethodGet, "/user", nil)
	assertError(t, w, http.StatusBadGateway, "AUTH0_ERROR")
}

func TestGetCurrentUser_WithoutToken(t *testing.T) {
	testutil.NewTestDB(t)

	w := performRequest(t, userRouter(""), http.MethodGet, "/user", nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	data := responseData(t, w)
	assert.Equal(t, testUserID, data["sub"])
	assert.NotContains(t, data, "email")
}

func TestGetCurrentUser_Unauthenticated(t *testing.T) {
	testutil.NewTestDB(t)
	router := gin.New()
	router.GET("/user", GetCurrentUser)

	w := performRequest(t, router, http.MethodGet, "/user", nil)
	assertError(t, w, http.StatusUnauthorized, "UNAUTHORIZED")
}
