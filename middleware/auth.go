package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/bluebay-mechanical/field-service-api/config"
	"github.com/bluebay-mechanical/field-service-api/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by the auth middleware
const (
	ContextUserID      = "user_id"
	ContextClaims      = "validated_claims"
	ContextAccessToken = "access_token"
)

// DevUserID is the subject used when authentication is disabled
const DevUserID = "dev|local"

// CustomClaims carries the space separated scope claim issued by Auth0
type CustomClaims struct {
	Scope string `json:"scope"`
}

// Validate satisfies validator.CustomClaims; scopes are checked per route
func (c CustomClaims) Validate(context.Context) error {
	return nil
}

// HasScope reports whether expectedScope was granted
func (c CustomClaims) HasScope(expectedScope string) bool {
	return slices.Contains(strings.Fields(c.Scope), expectedScope)
}

// Authenticate returns the token middleware for cfg: Auth0 validation, or a
// pass-through that signs every request in as DevUserID when AUTH_DISABLED
// is set.
func Authenticate(cfg *config.Config) gin.HandlerFunc {
	if cfg.AuthDisabled {
		logger.L().Warn("authentication is disabled; all requests run as " + DevUserID)
		return DevAuth()
	}
	return EnsureValidToken(cfg)
}

// EnsureValidToken is a middleware that will check the validity of our JWT.
func EnsureValidToken(cfg *config.Config) gin.HandlerFunc {
	issuerURL, err := url.Parse("https://" + cfg.Auth0Domain + "/")
	if err != nil {
		logger.L().Fatal("failed to parse the issuer url", zap.Error(err))
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{cfg.Auth0Audience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		logger.L().Fatal("failed to set up the jwt validator", zap.Error(err))
	}

	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		logger.L().Info("rejected request token",
			zap.String("path", r.URL.Path),
			zap.Error(err))

		code, message := "INVALID_TOKEN", "Failed to validate JWT."
		if errors.Is(err, jwtmiddleware.ErrJWTMissing) {
			code, message = "UNAUTHORIZED", "Authorization header with a bearer token is required."
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		body := `{"success":false,"error":{"code":"` + code + `","message":"` + message + `"}}`
		if _, writeErr := w.Write([]byte(body)); writeErr != nil {
			logger.L().Warn("failed to write error response", zap.Error(writeErr))
		}
	}

	middleware := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		passed := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			passed = true
			token := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)

			c.Set(ContextUserID, token.RegisteredClaims.Subject)
			c.Set(ContextClaims, token)

			// kept so handlers can call the userinfo endpoint on the caller's behalf
			if raw, err := jwtmiddleware.AuthHeaderTokenExtractor(r); err == nil {
				c.Set(ContextAccessToken, raw)
			}

			c.Request = r
			c.Next()
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}

// DevAuth authenticates every request as DevUserID
func DevAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextUserID, DevUserID)
		c.Set(ContextClaims, &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{Subject: DevUserID},
			CustomClaims:     &CustomClaims{},
		})
		c.Next()
	}
}

// fromContext reads key from c as a T, reporting which of the two failure
// modes occurred with the given error code suffix
func fromContext[T any](c *gin.Context, key, what string) (T, error) {
	var zero T
	v, exists := c.Get(key)
	if !exists {
		return zero, &AuthError{Code: "MISSING_" + what, Message: strings.ToLower(strings.ReplaceAll(what, "_", " ")) + " not found in context"}
	}
	typed, ok := v.(T)
	if !ok {
		return zero, &AuthError{Code: "INVALID_" + what, Message: strings.ToLower(strings.ReplaceAll(what, "_", " ")) + " has an unexpected type"}
	}
	return typed, nil
}

// GetUserID returns the token subject of the current request
func GetUserID(c *gin.Context) (string, error) {
	return fromContext[string](c, ContextUserID, "USER_ID")
}

// GetAccessToken returns the raw bearer token of the current request. It is
// absent when authentication is disabled.
func GetAccessToken(c *gin.Context) (string, error) {
	token, err := fromContext[string](c, ContextAccessToken, "ACCESS_TOKEN")
	if err == nil && token == "" {
		return "", &AuthError{Code: "INVALID_ACCESS_TOKEN", Message: "access token is empty"}
	}
	return token, err
}

// GetClaims returns the validated token claims of the current request
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	return fromContext[*validator.ValidatedClaims](c, ContextClaims, "CLAIMS")
}

// RequireScope rejects requests whose token lacks scope with 403
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := GetClaims(c)
		if err != nil {
			abortAuth(c, http.StatusUnauthorized, "MISSING_CLAIMS", "Could not retrieve token claims")
			return
		}

		if custom, ok := claims.CustomClaims.(*CustomClaims); !ok || !custom.HasScope(scope) {
			abortAuth(c, http.StatusForbidden, "INSUFFICIENT_SCOPE", "The "+scope+" scope is required for this request")
			return
		}
		c.Next()
	}
}

func abortAuth(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message},
	})
}

// RequireScopeForWrites applies RequireScope to every request except GET,
// HEAD and OPTIONS. An empty scope disables the check.
func RequireScopeForWrites(scope string) gin.HandlerFunc {
	if scope == "" {
		return func(c *gin.Context) { c.Next() }
	}
	check := RequireScope(scope)
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
		default:
			check(c)
		}
	}
}

// AuthError is returned by the context accessors
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
