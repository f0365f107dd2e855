package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bkoyuncu/campus-tickets/internal/service"
	"github.com/bkoyuncu/campus-tickets/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/yeqown/go-qrcode"
	"go.uber.org/zap"
)

type ReservationHandler struct {
	reservationService *service.ReservationService
}

func NewReservationHandler(reservationService *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{
		reservationService: reservationService,
	}
}

type CreateReservationRequest struct {
	NumberOfTickets uint `json:"numberOfTickets"`
}

// CreateReservation handles POST /reservations/events/:eventId
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	eventID, ok := paramEventID(c)
	if !ok {
		return
	}

	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	userID := c.GetUint("user_id")
	userEmail := c.GetString("user_email")
	userName := c.GetString("user_name")

	summary, err := h.reservationService.CreateReservation(userID, userEmail, userName, eventID, req.NumberOfTickets)
	if err != nil {
		if capErr, ok := service.AsCapacityError(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":           capErr.Error(),
				"remaining_seats": capErr.Remaining,
			})
			return
		}
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrDuplicateReservation):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Log.Error("Reservation creation failed",
				zap.Uint("user_id", userID),
				zap.Uint("event_id", eventID),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reservation"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"reservationId":   summary.ReservationID,
		"reservationCode": summary.ReservationCode,
		"totalPrice":      summary.TotalPrice,
		"reservation":     summary,
	})
}

// ListOwnReservations handles GET /reservations
func (h *ReservationHandler) ListOwnReservations(c *gin.Context) {
	userID := c.GetUint("user_id")

	reservations, err := h.reservationService.ListUserReservations(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reservations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reservations": reservations,
		"count":        len(reservations),
	})
}

// GetReservation handles GET /reservations/:id, owner-scoped.
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	userID := c.GetUint("user_id")

	reservation, err := h.reservationService.GetReservation(userID, id)
	if err != nil {
		if errors.Is(err, service.ErrReservationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reservation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reservation": reservation})
}

// DeleteReservation handles DELETE /reservations/:id. A reservation
// owned by someone else is indistinguishable from a missing one.
func (h *ReservationHandler) DeleteReservation(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	userID := c.GetUint("user_id")
	userEmail := c.GetString("user_email")
	userName := c.GetString("user_name")

	if err := h.reservationService.DeleteReservation(userID, userEmail, userName, id); err != nil {
		if errors.Is(err, service.ErrReservationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete reservation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Reservation cancelled successfully",
	})
}

// GetReservationQR handles GET /reservations/:id/qrcode and renders
// the reservation code as a scannable receipt image.
func (h *ReservationHandler) GetReservationQR(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	userID := c.GetUint("user_id")

	reservation, err := h.reservationService.GetReservation(userID, id)
	if err != nil {
		if errors.Is(err, service.ErrReservationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reservation"})
		return
	}

	qrc, err := qrcode.New(reservation.Code)
	if err != nil {
		logger.Log.Error("Failed to generate QR code",
			zap.String("code", reservation.Code),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}

	c.Header("Content-Type", "image/jpeg")
	if err := qrc.SaveTo(c.Writer); err != nil {
		logger.Log.Error("Failed to write QR code",
			zap.String("code", reservation.Code),
			zap.Error(err),
		)
	}
}

// AvailableSeats handles GET /events/:id/availability
func (h *ReservationHandler) AvailableSeats(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	available, err := h.reservationService.AvailableSeats(id)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute availability"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event_id":        id,
		"available_seats": available,
	})
}

// ListEventReservations handles GET /events/organizer/:id/reservations
// for the owning organizer.
func (h *ReservationHandler) ListEventReservations(c *gin.Context) {
	eventID, ok := paramID(c)
	if !ok {
		return
	}

	organizerID := c.GetUint("user_id")

	reservations, err := h.reservationService.ListEventReservations(organizerID, eventID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotEventOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reservations"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reservations": reservations,
		"count":        len(reservations),
	})
}

func paramEventID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("eventId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event id"})
		return 0, false
	}
	return uint(id), true
}
