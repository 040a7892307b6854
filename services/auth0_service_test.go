package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bluebay-mechanical/field-service-api/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth0Service_GetUserInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer good-token":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(Auth0UserInfo{Sub: "auth0|dispatcher", Email: "dispatch@bluebay.test", Name: "Dispatch Desk"})
		case "Bearer anonymous":
			w.Write([]byte(`{"email":"nobody@bluebay.test"}`))
		case "Bearer broken":
			http.Error(w, "upstream unavailable", http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer server.Close()

	svc := NewAuth0Service(&config.Config{Auth0Domain: server.URL + "/"})

	info, err := svc.GetUserInfo(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "auth0|dispatcher", info.Sub)
	assert.Equal(t, "Dispatch Desk", info.Name)

	_, err = svc.GetUserInfo(context.Background(), "bad-token")
	assert.ErrorIs(t, err, ErrUserInfoRejected)

	_, err = svc.GetUserInfo(context.Background(), "broken")
	assert.ErrorContains(t, err, "status 502: upstream unavailable")

	_, err = svc.GetUserInfo(context.Background(), "anonymous")
	assert.ErrorContains(t, err, "no subject")
}

func TestTenantURL(t *testing.T) {
	assert.Equal(t, "https://bluebay.us.auth0.com/", tenantURL("bluebay.us.auth0.com"))
	assert.Equal(t, "http://127.0.0.1:4000/", tenantURL("http://127.0.0.1:4000/"))
}
