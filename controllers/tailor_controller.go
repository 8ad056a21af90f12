package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tailorbook/tailorbook-api/config"
	"github.com/tailorbook/tailorbook-api/middleware"
	"github.com/tailorbook/tailorbook-api/models"
	"github.com/tailorbook/tailorbook-api/services"
)

// CreateTailorRequest carries the optional shop assignment for a new tailor
type CreateTailorRequest struct {
	ShopID uint `json:"shop_id"`
}

// UpdateTailorRequest represents the request body for updating a tailor profile
type UpdateTailorRequest struct {
	Name   string `json:"name" binding:"omitempty"`
	Email  string `json:"email" binding:"omitempty,email"`
	ShopID *uint  `json:"shop_id"`
}

func isUniqueViolation(err error) bool {
	// works with both PostgreSQL and SQLite
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

// CreateTailor handles POST /api/v1/tailors - registers the caller using Auth0 /userinfo
func CreateTailor(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user ID from token")
		return
	}

	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "MISSING_TOKEN", "Access token not found")
		return
	}

	// body is optional
	var req CreateTailorRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidation(c, err)
			return
		}
	}

	auth0Service := services.NewAuth0Service(config.GetConfig())
	userInfo, err := auth0Service.GetUserInfo(c.Request.Context(), accessToken)
	if err != nil {
		config.GetLogger().Warn("auth0 userinfo failed", "auth0_id", auth0ID, "error", err)
		respondError(c, http.StatusInternalServerError, "AUTH0_ERROR", "Failed to fetch user information from Auth0")
		return
	}

	if userInfo.Email == "" {
		respondError(c, http.StatusBadRequest, "MISSING_EMAIL", "Email not provided by Auth0")
		return
	}
	if userInfo.Name == "" {
		respondError(c, http.StatusBadRequest, "MISSING_NAME", "Name not provided by Auth0")
		return
	}

	tailor := models.Tailor{
		Auth0ID: auth0ID,
		Name:    userInfo.Name,
		Email:   userInfo.Email,
		ShopID:  req.ShopID,
	}

	if err := config.GetDB().WithContext(c.Request.Context()).Create(&tailor).Error; err != nil {
		if isUniqueViolation(err) {
			respondError(c, http.StatusConflict, "TAILOR_EXISTS", "A tailor with this Auth0 ID or email already exists")
			return
		}
		config.GetLogger().Error("failed to create tailor", "auth0_id", auth0ID, "error", err)
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create tailor")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    tailor,
	})
}

// GetMyProfile handles GET /api/v1/tailors/me
func GetMyProfile(c *gin.Context) {
	tailor, ok := currentTailor(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tailor,
	})
}

// UpdateMyProfile handles PUT /api/v1/tailors/me
func UpdateMyProfile(c *gin.Context) {
	var req UpdateTailorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	tailor, ok := currentTailor(c)
	if !ok {
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}
	if req.ShopID != nil {
		updates["shop_id"] = *req.ShopID
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    tailor,
		})
		return
	}

	db := config.GetDB().WithContext(c.Request.Context())
	if err := db.Model(tailor).Updates(updates).Error; err != nil {
		if isUniqueViolation(err) {
			respondError(c, http.StatusConflict, "EMAIL_EXISTS", "A tailor with this email already exists")
			return
		}
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update tailor profile")
		return
	}

	if err := db.First(tailor, tailor.ID).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch updated profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tailor,
	})
}
