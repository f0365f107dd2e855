package handler

import (
	"errors"
	"net/http"

	"github.com/bkoyuncu/campus-tickets/internal/service"
	"github.com/gin-gonic/gin"
)

type RoleRequestHandler struct {
	roleRequestService *service.RoleRequestService
}

func NewRoleRequestHandler(roleRequestService *service.RoleRequestService) *RoleRequestHandler {
	return &RoleRequestHandler{
		roleRequestService: roleRequestService,
	}
}

// CreateRequest handles POST /role-requests (student files a petition).
func (h *RoleRequestHandler) CreateRequest(c *gin.Context) {
	userID := c.GetUint("user_id")

	request, err := h.roleRequestService.CreateRequest(userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPendingRequestExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrStudentsOnly):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrUserNotFound):
			// Token outlived the account (soft delete)
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create role request"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Role request filed",
		"request": request,
	})
}

// ListOwnRequests handles GET /role-requests/mine
func (h *RoleRequestHandler) ListOwnRequests(c *gin.Context) {
	userID := c.GetUint("user_id")

	requests, err := h.roleRequestService.ListOwnRequests(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch role requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"count":    len(requests),
	})
}

// ListPending handles GET /admin/role-requests
func (h *RoleRequestHandler) ListPending(c *gin.Context) {
	requests, err := h.roleRequestService.ListPending()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch role requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requests": requests,
		"count":    len(requests),
	})
}

// Approve handles PUT /admin/role-requests/:id/approve
func (h *RoleRequestHandler) Approve(c *gin.Context) {
	h.decide(c, true)
}

// Reject handles PUT /admin/role-requests/:id/reject
func (h *RoleRequestHandler) Reject(c *gin.Context) {
	h.decide(c, false)
}

func (h *RoleRequestHandler) decide(c *gin.Context, approve bool) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	adminID := c.GetUint("user_id")

	request, err := h.roleRequestService.Decide(adminID, id, approve)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrRequestAlreadyDecided):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decide role request"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Role request decided",
		"request": request,
	})
}
