package testutil

import (
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/bluebay-mechanical/field-service-api/middleware"
	"github.com/gin-gonic/gin"
)

// MockAuth simulates the Auth0 JWT middleware. It sets the context exactly
// as EnsureValidToken does for a token with the given subject and scopes.
func MockAuth(userID, accessToken string, scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		if accessToken != "" {
			c.Set(middleware.ContextAccessToken, accessToken)
		}
		c.Set(middleware.ContextClaims, &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{Subject: userID},
			CustomClaims:     &middleware.CustomClaims{Scope: strings.Join(scopes, " ")},
		})
		c.Next()
	}
}
