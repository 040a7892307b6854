package controllers

import (
	"errors"
	"net/http"

	"github.com/bluebay-mechanical/field-service-api/config"
	"github.com/bluebay-mechanical/field-service-api/logger"
	"github.com/bluebay-mechanical/field-service-api/middleware"
	"github.com/bluebay-mechanical/field-service-api/models"
	"github.com/bluebay-mechanical/field-service-api/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetCurrentUser handles GET /api/v1/user - returns the caller's profile
// from Auth0 /userinfo and the technician record linked to the same subject
func GetCurrentUser(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user ID from token")
		return
	}

	var technician *models.Technician
	var linked models.Technician
	db := config.GetDB().WithContext(c.Request.Context())
	result := db.Where("user_id = ?", userID).Limit(1).Find(&linked)
	if result.Error != nil {
		respondDatabaseError(c, result.Error, "Failed to load technician profile")
		return
	}
	if result.RowsAffected > 0 {
		technician = &linked
	}

	// without a bearer token (auth disabled) there is nothing to ask Auth0
	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		respondData(c, http.StatusOK, gin.H{
			"sub":        userID,
			"technician": technician,
		})
		return
	}

	userInfo, err := services.NewAuth0Service(config.GetConfig()).GetUserInfo(c.Request.Context(), accessToken)
	switch {
	case errors.Is(err, services.ErrUserInfoRejected):
		respondError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Auth0 rejected the access token")
		return
	case err != nil:
		logger.L().Warn("auth0 userinfo request failed", zap.String("user_id", userID), zap.Error(err))
		respondError(c, http.StatusBadGateway, "AUTH0_ERROR", "Failed to fetch user information from Auth0")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"sub":            userInfo.Sub,
		"email":          userInfo.Email,
		"email_verified": userInfo.EmailVerified,
		"name":           userInfo.Name,
		"nickname":       userInfo.Nickname,
		"picture":        userInfo.Picture,
		"technician":     technician,
	})
}
