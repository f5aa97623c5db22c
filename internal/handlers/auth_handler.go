package handlers

import (
	"net/http"

	"github.com/cleanbook/scheduler-backend/internal/middleware"
	"github.com/cleanbook/scheduler-backend/internal/models"
	"github.com/cleanbook/scheduler-backend/internal/services"
	"github.com/cleanbook/scheduler-backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *services.AuthService
	logger      *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req.Email, req.Password, services.LoginContext{
		IPAddress: utils.GetRealIP(c),
		UserAgent: utils.GetUserAgent(c),
	})
	if err != nil {
		if services.KindOf(err) != services.KindInternal {
			h.logger.WithFields(logrus.Fields{
				"email": req.Email,
				"error": err.Error(),
			}).Warn("Login failed")
		}
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Refresh handles POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err)
		return
	}

	response, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	caller := middleware.MustGetCaller(c)
	c.JSON(http.StatusOK, gin.H{
		"user":     caller,
		"is_admin": caller.IsAdmin(),
	})
}
