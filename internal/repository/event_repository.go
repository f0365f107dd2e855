package repository

import (
	"errors"
	"time"

	"github.com/bkoyuncu/campus-tickets/internal/models"
	"gorm.io/gorm"
)

// availableSeatsExpr derives remaining capacity from the reservation
// aggregate; capacity is never stored.
const availableSeatsExpr = "events.seats - COALESCE((SELECT SUM(number_of_tickets) FROM reservations WHERE reservations.event_id = events.id), 0)"

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// EventFilter narrows and orders the public event listing.
type EventFilter struct {
	From    *time.Time
	To      *time.Time
	OrderBy string // validated SQL order clause, e.g. "starts_at ASC"
}

func (r *EventRepository) CreateEvent(event *models.Event) error {
	return r.db.Create(event).Error
}

func (r *EventRepository) GetEventByID(id uint) (*models.Event, error) {
	var event models.Event
	err := r.db.Where("id = ?", id).First(&event).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &event, nil
}

// ListEvents returns events with their derived available_seats.
func (r *EventRepository) ListEvents(filter EventFilter) ([]models.EventWithAvailability, error) {
	query := r.db.Model(&models.Event{}).Select("events.*, " + availableSeatsExpr + " AS available_seats")

	if filter.From != nil {
		query = query.Where("starts_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("starts_at <= ?", *filter.To)
	}
	if filter.OrderBy != "" {
		query = query.Order(filter.OrderBy)
	} else {
		query = query.Order("starts_at ASC")
	}

	var events []models.EventWithAvailability
	err := query.Find(&events).Error
	return events, err
}

// GetEventWithAvailability returns one event with its derived capacity.
func (r *EventRepository) GetEventWithAvailability(id uint) (*models.EventWithAvailability, error) {
	var event models.EventWithAvailability
	err := r.db.Model(&models.Event{}).
		Select("events.*, "+availableSeatsExpr+" AS available_seats").
		Where("events.id = ?", id).
		First(&event).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &event, nil
}

func (r *EventRepository) ListEventsByOrganizer(organizerID uint) ([]models.EventWithAvailability, error) {
	var events []models.EventWithAvailability
	err := r.db.Model(&models.Event{}).
		Select("events.*, "+availableSeatsExpr+" AS available_seats").
		Where("organizer_id = ?", organizerID).
		Order("starts_at ASC").
		Find(&events).Error
	return events, err
}

func (r *EventRepository) UpdateEvent(event *models.Event) error {
	return r.db.Save(event).Error
}

func (r *EventRepository) DeleteEvent(id uint) error {
	return r.db.Delete(&models.Event{}, id).Error
}

func (r *EventRepository) CountEvents() (int64, error) {
	var count int64
	err := r.db.Model(&models.Event{}).Count(&count).Error
	return count, err
}
