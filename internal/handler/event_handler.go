package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/bkoyuncu/campus-tickets/internal/service"
	"github.com/bkoyuncu/campus-tickets/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type EventHandler struct {
	eventService *service.EventService
}

func NewEventHandler(eventService *service.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

type EventRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	StartsAt    string  `json:"starts_at" binding:"required"`
	Seats       uint    `json:"seats" binding:"required"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
}

// ListEvents handles GET /events?from&to&sort
func (h *EventHandler) ListEvents(c *gin.Context) {
	var from, to *time.Time

	if v := c.Query("from"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date"})
			return
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date"})
			return
		}
		to = &t
	}

	events, err := h.eventService.ListEvents(from, to, c.Query("sort"))
	if err != nil {
		logger.Log.Error("Failed to list events",
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"count":  len(events),
	})
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	event, err := h.eventService.GetEvent(id)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"event": event})
}

// ListOwnEvents returns the calling organizer's events.
func (h *EventHandler) ListOwnEvents(c *gin.Context) {
	organizerID := c.GetUint("user_id")

	events, err := h.eventService.ListOrganizerEvents(organizerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"count":  len(events),
	})
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	organizerID := c.GetUint("user_id")

	event, err := h.eventService.CreateEvent(organizerID, input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Event created successfully",
		"event":   event,
	})
}

func (h *EventHandler) UpdateEvent(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	organizerID := c.GetUint("user_id")

	event, err := h.eventService.UpdateEvent(organizerID, id, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotEventOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event updated successfully",
		"event":   event,
	})
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	h.deleteEvent(c, false)
}

// AdminDeleteEvent skips the ownership check; admins may remove any
// event but never edit one.
func (h *EventHandler) AdminDeleteEvent(c *gin.Context) {
	h.deleteEvent(c, true)
}

func (h *EventHandler) deleteEvent(c *gin.Context, asAdmin bool) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	callerID := c.GetUint("user_id")

	if err := h.eventService.DeleteEvent(callerID, id, asAdmin); err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotEventOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event deleted successfully",
	})
}

func (r *EventRequest) toInput() (service.EventInput, error) {
	startsAt, err := parseDate(r.StartsAt)
	if err != nil {
		return service.EventInput{}, errors.New("invalid starts_at date")
	}

	return service.EventInput{
		Title:       r.Title,
		Description: r.Description,
		StartsAt:    startsAt,
		Seats:       r.Seats,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
	}, nil
}

// parseDate accepts RFC3339 timestamps or plain dates.
func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

// paramID parses the :id path parameter; writes the 400 itself.
func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id parameter"})
		return 0, false
	}
	return uint(id), true
}
