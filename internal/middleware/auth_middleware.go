package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bkoyuncu/campus-tickets/internal/models"
	"github.com/bkoyuncu/campus-tickets/internal/repository"
	"github.com/bkoyuncu/campus-tickets/internal/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware verifies the bearer token's signature and expiry. The
// persisted session row is not consulted per request; logout and
// change-password mutate that row, new logins replace it.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			c.Abort()
			return
		}

		// 2. Extract token from "Bearer <token>"
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization format. Use: Bearer <token>",
			})
			c.Abort()
			return
		}

		// 3. Validate token
		claims, err := utils.ValidateToken(tokenString, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		// 4. Add claims to context (handlers can access)
		c.Set("user_id", claims.UserID)
		c.Set("session_id", claims.SessionID)
		c.Set("user_email", claims.Email)
		c.Set("username", claims.Username)
		c.Set("user_name", claims.Name)
		c.Set("user_surname", claims.Surname)
		c.Set("claims", claims)

		// 5. Continue to handler
		c.Next()
	}
}

// RequireAdmin re-fetches the role from storage instead of trusting the
// token's embedded claim; an admin-driven role change takes effect
// immediately, not at token expiry.
func RequireAdmin(userRepo *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c, userRepo)
		if user == nil {
			return
		}

		if user.Role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireOrganizer re-fetches the role/organizer flag from storage.
func RequireOrganizer(userRepo *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c, userRepo)
		if user == nil {
			return
		}

		if !user.CanOrganize() {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Organizer access required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireSelfOrAdmin permits the token's own subject id (matched
// against the :id path parameter) or an admin.
func RequireSelfOrAdmin(userRepo *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")

		pathID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid id parameter",
			})
			c.Abort()
			return
		}

		if uint(pathID) == userID {
			c.Next()
			return
		}

		user := currentUser(c, userRepo)
		if user == nil {
			return
		}
		if user.Role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Access denied",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// currentUser loads the authenticated user from storage. Aborts the
// request (and returns nil) when the account is missing, which also
// locks out soft-deleted users holding a still-signed token.
func currentUser(c *gin.Context, userRepo *repository.UserRepository) *models.User {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Unauthorized",
		})
		c.Abort()
		return nil
	}

	user, err := userRepo.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to verify user",
		})
		c.Abort()
		return nil
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Unauthorized",
		})
		c.Abort()
		return nil
	}

	return user
}
