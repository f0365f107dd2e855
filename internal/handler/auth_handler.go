package handler

import (
	"errors"
	"net/http"

	"github.com/bkoyuncu/campus-tickets/internal/models"
	"github.com/bkoyuncu/campus-tickets/internal/service"
	"github.com/bkoyuncu/campus-tickets/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Surname  string `json:"surname" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type LoginRequest struct {
	// Identifier may be an email address or a username; the older
	// "email"/"username" keys are accepted as aliases.
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.Warn("Registration request parsing failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	logger.Log.Info("User registration attempt",
		zap.String("username", req.Username),
		zap.String("email", req.Email),
		zap.String("ip", c.ClientIP()),
	)

	user, err := h.authService.Register(req.Name, req.Surname, req.Email, req.Username, req.Password, models.Role(req.Role))
	if err != nil {
		logger.Log.Warn("Registration failed",
			zap.String("username", req.Username),
			zap.String("email", req.Email),
			zap.Error(err),
		)

		statusCode := http.StatusBadRequest
		if errors.Is(err, service.ErrEmailAlreadyExists) || errors.Is(err, service.ErrUsernameAlreadyExists) {
			statusCode = http.StatusConflict
		}

		c.JSON(statusCode, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    publicUser(user),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.Warn("Login request parsing failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Email
	}
	if identifier == "" {
		identifier = req.Username
	}
	if identifier == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Email or username is required",
		})
		return
	}

	logger.Log.Info("User login attempt",
		zap.String("identifier", identifier),
		zap.String("ip", c.ClientIP()),
	)

	user, token, err := h.authService.Login(identifier, req.Password)
	if err != nil {
		logger.Log.Warn("Login failed",
			zap.String("identifier", identifier),
			zap.Error(err),
		)

		statusCode := http.StatusUnauthorized
		if !errors.Is(err, service.ErrInvalidCredentials) {
			statusCode = http.StatusInternalServerError
		}

		c.JSON(statusCode, gin.H{
			"error": "invalid credentials",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  publicUser(user),
	})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	userID := c.GetUint("user_id")

	if err := h.authService.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		statusCode := http.StatusBadRequest
		if errors.Is(err, service.ErrWrongPassword) {
			statusCode = http.StatusUnauthorized
		}

		c.JSON(statusCode, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password changed successfully",
	})
}

// Logout always succeeds from the caller's perspective.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := c.GetUint("user_id")

	if err := h.authService.Logout(userID); err != nil {
		logger.Log.Error("Logout failed",
			zap.Uint("user_id", userID),
			zap.Error(err),
		)
	}

	c.Status(http.StatusNoContent)
}

// publicUser strips credentials from the serialized user.
func publicUser(user *models.User) gin.H {
	return gin.H{
		"id":           user.ID,
		"name":         user.Name,
		"surname":      user.Surname,
		"username":     user.Username,
		"email":        user.Email,
		"role":         user.Role,
		"is_organizer": user.IsOrganizer,
	}
}
