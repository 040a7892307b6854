package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/bluebay-mechanical/field-service-api/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomClaims_HasScope(t *testing.T) {
	tests := []struct {
		name          string
		scope         string
		expectedScope string
		want          bool
	}{
		{
			name:          "has exact scope",
			scope:         "read:work-orders",
			expectedScope: "read:work-orders",
			want:          true,
		},
		{
			name:          "has scope in multiple scopes",
			scope:         "read:work-orders write:work-orders delete:work-orders",
			expectedScope: "write:work-orders",
			want:          true,
		},
		{
			name:          "does not have scope",
			scope:         "read:work-orders",
			expectedScope: "write:work-orders",
			want:          false,
		},
		{
			name:          "empty scope",
			scope:         "",
			expectedScope: "read:work-orders",
			want:          false,
		},
		{
			name:          "partial match should not work",
			scope:         "read:work-orders",
			expectedScope: "read",
			want:          false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := CustomClaims{Scope: tt.scope}
			got := claims.HasScope(tt.expectedScope)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		value    interface{}
		set      bool
		wantID   string
		wantCode string
	}{
		{name: "token subject", value: "auth0|tech-0042", set: true, wantID: "auth0|tech-0042"},
		{name: "not authenticated", wantCode: "MISSING_USER_ID"},
		{name: "wrong type", value: 12345, set: true, wantCode: "INVALID_USER_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			if tt.set {
				c.Set(ContextUserID, tt.value)
			}

			gotID, err := GetUserID(c)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, gotID)
				return
			}

			var authErr *AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.wantCode, authErr.Code)
			assert.Empty(t, gotID)
		})
	}
}

func TestGetClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		setupFunc func(*gin.Context)
		wantErr   bool
	}{
		{
			name: "successfully extracts claims",
			setupFunc: func(c *gin.Context) {
				claims := &validator.ValidatedClaims{
					RegisteredClaims: validator.RegisteredClaims{
						Issuer:  "https://bluebay.test.auth0.com/",
						Subject: "auth0|tech-0042",
					},
					CustomClaims: &CustomClaims{
						Scope: "read:work-orders",
					},
				}
				c.Set("validated_claims", claims)
			},
			wantErr: false,
		},
		{
			name: "claims not found in context",
			setupFunc: func(c *gin.Context) {
				// Don't set validated_claims
			},
			wantErr: true,
		},
		{
			name: "claims are not the expected type",
			setupFunc: func(c *gin.Context) {
				c.Set("validated_claims", "invalid")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.setupFunc(c)

			claims, err := GetClaims(c)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, claims)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, claims)
			}
		})
	}
}

func TestRequireScope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		requiredScope  string
		setupFunc      func(*gin.Context)
		wantStatusCode int
		wantAborted    bool
	}{
		{
			name:          "has required scope",
			requiredScope: "read:work-orders",
			setupFunc: func(c *gin.Context) {
				claims := &validator.ValidatedClaims{
					CustomClaims: &CustomClaims{
						Scope: "read:work-orders write:work-orders",
					},
				}
				c.Set("validated_claims", claims)
			},
			wantStatusCode: 0, // Should not write status, continues to next handler
			wantAborted:    false,
		},
		{
			name:          "missing required scope",
			requiredScope: "delete:work-orders",
			setupFunc: func(c *gin.Context) {
				claims := &validator.ValidatedClaims{
					CustomClaims: &CustomClaims{
						Scope: "read:work-orders write:work-orders",
					},
				}
				c.Set("validated_claims", claims)
			},
			wantStatusCode: http.StatusForbidden,
			wantAborted:    true,
		},
		{
			name:          "claims not in context",
			requiredScope: "read:work-orders",
			setupFunc: func(c *gin.Context) {
				// Don't set validated_claims
			},
			wantStatusCode: http.StatusUnauthorized,
			wantAborted:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)

			tt.setupFunc(c)

			handler := RequireScope(tt.requiredScope)
			handler(c)

			if tt.wantAborted {
				assert.True(t, c.IsAborted())
				assert.Equal(t, tt.wantStatusCode, w.Code)
			} else {
				assert.False(t, c.IsAborted())
			}
		})
	}
}

func TestAuthError(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := GetClaims(c)
	assert.EqualError(t, err, "claims not found in context")

	c.Set(ContextAccessToken, 42)
	_, err = GetAccessToken(c)
	assert.EqualError(t, err, "access token has an unexpected type")
}

func TestGetAccessToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	_, err := GetAccessToken(c)
	assert.Error(t, err)

	c.Set(ContextAccessToken, "")
	_, err = GetAccessToken(c)
	assert.Error(t, err)

	c.Set(ContextAccessToken, "eyJhbGciOi")
	token, err := GetAccessToken(c)
	assert.NoError(t, err)
	assert.Equal(t, "eyJhbGciOi", token)
}

func TestEnsureValidToken_RejectsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		header   string
		wantCode string
	}{
		{name: "missing header", header: "", wantCode: "UNAUTHORIZED"},
		{name: "malformed token", header: "Bearer not-a-jwt", wantCode: "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			router := gin.New()
			router.Use(EnsureValidToken(&config.Config{Auth0Domain: "bluebay.test.auth0.com", Auth0Audience: "https://api.bluebay.test"}))
			router.GET("/private", func(c *gin.Context) {
				reached = true
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)
			assert.False(t, reached)
		})
	}
}

func TestAuthenticate_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(Authenticate(&config.Config{AuthDisabled: true}))
	router.GET("/whoami", func(c *gin.Context) {
		id, err := GetUserID(c)
		assert.NoError(t, err)
		_, err = GetClaims(c)
		assert.NoError(t, err)
		c.String(http.StatusOK, id)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, DevUserID, w.Body.String())
}

func TestRequireScopeForWrites(t *testing.T) {
	gin.SetMode(gin.TestMode)

	withScope := func(scope string) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set(ContextClaims, &validator.ValidatedClaims{CustomClaims: &CustomClaims{Scope: scope}})
		}
	}

	tests := []struct {
		name     string
		required string
		granted  string
		method   string
		want     int
	}{
		{"reads pass without scope", "write:service", "read:service", http.MethodGet, http.StatusOK},
		{"write needs scope", "write:service", "read:service", http.MethodPost, http.StatusForbidden},
		{"write with scope", "write:service", "read:service write:service", http.MethodDelete, http.StatusOK},
		{"disabled when empty", "", "", http.MethodPut, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(withScope(tt.granted), RequireScopeForWrites(tt.required))
			router.Handle(tt.method, "/clients", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, "/clients", nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
