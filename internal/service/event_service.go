package service

import (
	"errors"
	"time"

	"github.com/bkoyuncu/campus-tickets/internal/models"
	"github.com/bkoyuncu/campus-tickets/internal/repository"
	"github.com/bkoyuncu/campus-tickets/pkg/logger"
	"go.uber.org/zap"
)

type EventService struct {
	eventRepo *repository.EventRepository
}

func NewEventService(eventRepo *repository.EventRepository) *EventService {
	return &EventService{eventRepo: eventRepo}
}

// EventInput carries organizer-supplied event fields.
type EventInput struct {
	Title       string
	Description string
	StartsAt    time.Time
	Seats       uint
	Price       float64
	ImageURL    string
}

// sortClauses maps the public sort parameter to a vetted order clause.
// Anything else falls back to the default ordering.
var sortClauses = map[string]string{
	"date_asc":   "starts_at ASC",
	"date_desc":  "starts_at DESC",
	"price_asc":  "price ASC",
	"price_desc": "price DESC",
}

func (s *EventService) ListEvents(from, to *time.Time, sort string) ([]models.EventWithAvailability, error) {
	filter := repository.EventFilter{
		From:    from,
		To:      to,
		OrderBy: sortClauses[sort],
	}
	events, err := s.eventRepo.ListEvents(filter)
	if err != nil {
		return nil, err
	}
	clampAvailability(events)
	return events, nil
}

func (s *EventService) GetEvent(id uint) (*models.EventWithAvailability, error) {
	event, err := s.eventRepo.GetEventWithAvailability(id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if event.AvailableSeats < 0 {
		// Clamp for display; reconciliation surfaces the divergence
		event.AvailableSeats = 0
	}
	return event, nil
}

func (s *EventService) ListOrganizerEvents(organizerID uint) ([]models.EventWithAvailability, error) {
	events, err := s.eventRepo.ListEventsByOrganizer(organizerID)
	if err != nil {
		return nil, err
	}
	clampAvailability(events)
	return events, nil
}

// clampAvailability floors derived seat counts at zero for display.
func clampAvailability(events []models.EventWithAvailability) {
	for i := range events {
		if events[i].AvailableSeats < 0 {
			events[i].AvailableSeats = 0
		}
	}
}

func (s *EventService) CreateEvent(organizerID uint, input EventInput) (*models.Event, error) {
	if err := validateEventInput(input); err != nil {
		return nil, err
	}

	event := &models.Event{
		Title:       input.Title,
		Description: input.Description,
		StartsAt:    input.StartsAt,
		Seats:       input.Seats,
		Price:       input.Price,
		ImageURL:    input.ImageURL,
		OrganizerID: organizerID,
	}

	if err := s.eventRepo.CreateEvent(event); err != nil {
		logger.Log.Error("Failed to create event",
			zap.Uint("organizer_id", organizerID),
			zap.String("title", input.Title),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Event created",
		zap.Uint("event_id", event.ID),
		zap.Uint("organizer_id", organizerID),
		zap.String("title", event.Title),
	)

	return event, nil
}

// UpdateEvent is owner-only; admins delete, they do not edit.
func (s *EventService) UpdateEvent(organizerID, eventID uint, input EventInput) (*models.Event, error) {
	event, err := s.eventRepo.GetEventByID(eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if event.OrganizerID != organizerID {
		return nil, ErrNotEventOwner
	}

	if err := validateEventInput(input); err != nil {
		return nil, err
	}

	event.Title = input.Title
	event.Description = input.Description
	event.StartsAt = input.StartsAt
	event.Seats = input.Seats
	event.Price = input.Price
	event.ImageURL = input.ImageURL

	if err := s.eventRepo.UpdateEvent(event); err != nil {
		return nil, err
	}

	logger.Log.Info("Event updated",
		zap.Uint("event_id", event.ID),
		zap.Uint("organizer_id", organizerID),
	)

	return event, nil
}

// DeleteEvent removes an event. asAdmin skips the ownership check.
func (s *EventService) DeleteEvent(callerID, eventID uint, asAdmin bool) error {
	event, err := s.eventRepo.GetEventByID(eventID)
	if err != nil {
		return err
	}
	if event == nil {
		return ErrEventNotFound
	}
	if !asAdmin && event.OrganizerID != callerID {
		return ErrNotEventOwner
	}

	if err := s.eventRepo.DeleteEvent(eventID); err != nil {
		return err
	}

	logger.Log.Info("Event deleted",
		zap.Uint("event_id", eventID),
		zap.Uint("caller_id", callerID),
		zap.Bool("as_admin", asAdmin),
	)

	return nil
}

func validateEventInput(input EventInput) error {
	if input.Title == "" {
		return errors.New("title is required")
	}
	if input.StartsAt.IsZero() {
		return errors.New("event date is required")
	}
	if input.Seats == 0 {
		return errors.New("seat count must be positive")
	}
	if input.Price < 0 {
		return errors.New("price cannot be negative")
	}
	return nil
}
