package handler

import (
	"errors"
	"net/http"

	"github.com/bkoyuncu/campus-tickets/internal/service"
	"github.com/bkoyuncu/campus-tickets/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminHandler struct {
	adminService       *service.AdminService
	reservationService *service.ReservationService
}

func NewAdminHandler(adminService *service.AdminService, reservationService *service.ReservationService) *AdminHandler {
	return &AdminHandler{
		adminService:       adminService,
		reservationService: reservationService,
	}
}

// GetDashboard handles GET /admin/dashboard
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.adminService.GetDashboard()
	if err != nil {
		logger.Log.Error("Failed to build dashboard",
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to build dashboard",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"dashboard": dashboard})
}

// GetAllUsers returns all active users
// GET /admin/users
func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	logger.Log.Info("Admin fetching all users",
		zap.Uint("admin_id", c.GetUint("user_id")),
	)

	users, err := h.adminService.GetAllUsers()
	if err != nil {
		logger.Log.Error("Failed to fetch users",
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch users",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
	})
}

// GetDeletedUsers returns soft-deleted users awaiting restore
// GET /admin/users/deleted
func (h *AdminHandler) GetDeletedUsers(c *gin.Context) {
	users, err := h.adminService.GetDeletedUsers()
	if err != nil {
		logger.Log.Error("Failed to fetch deleted users",
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch deleted users",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
	})
}

// DeleteUser soft deletes a user
// DELETE /admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	adminID := c.GetUint("user_id")
	logger.Log.Info("Admin deleting user",
		zap.Uint("admin_id", adminID),
		zap.Uint("target_user_id", id),
	)

	if err := h.adminService.SoftDeleteUser(adminID, id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to delete user",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully",
	})
}

// RestoreUser clears a user's soft delete
// POST /admin/users/:id/restore
func (h *AdminHandler) RestoreUser(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	adminID := c.GetUint("user_id")

	if err := h.adminService.RestoreUser(adminID, id); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to restore user",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User restored successfully",
	})
}

// ReconcileEvent handles GET /admin/events/:id/reconcile and compares
// the journal's net admitted tickets with the stored aggregate.
func (h *AdminHandler) ReconcileEvent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	journalTotal, storedTotal, err := h.reservationService.Reconcile(id)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to reconcile event",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event_id":      id,
		"journal_total": journalTotal,
		"stored_total":  storedTotal,
		"consistent":    journalTotal == storedTotal,
	})
}
