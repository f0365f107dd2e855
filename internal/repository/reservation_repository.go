package repository

import (
	"errors"
	"time"

	"github.com/bkoyuncu/campus-tickets/internal/models"
	"gorm.io/gorm"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// AdmitReservation inserts the reservation only if the event still has
// capacity for it. The capacity check and the insert are a single
// conditional statement inside a transaction, so two concurrent
// admissions cannot both pass a stale availability read. Returns false
// with a nil error when the event is full.
func (r *ReservationRepository) AdmitReservation(res *models.Reservation, totalSeats uint) (bool, error) {
	admitted := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Exec(
			`INSERT INTO reservations (user_id, event_id, number_of_tickets, code, created_at, updated_at)
			 SELECT ?, ?, ?, ?, ?, ?
			 WHERE (SELECT COALESCE(SUM(number_of_tickets), 0) FROM reservations WHERE event_id = ?) + ? <= ?`,
			res.UserID, res.EventID, res.NumberOfTickets, res.Code, now, now,
			res.EventID, res.NumberOfTickets, totalSeats,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		admitted = true
		// Populate the generated id and timestamps
		return tx.Where("code = ?", res.Code).First(res).Error
	})
	return admitted, err
}

// SumTicketsForEvent returns the total tickets reserved for an event.
func (r *ReservationRepository) SumTicketsForEvent(eventID uint) (int64, error) {
	var sum int64
	err := r.db.Model(&models.Reservation{}).
		Where("event_id = ?", eventID).
		Select("COALESCE(SUM(number_of_tickets), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *ReservationRepository) GetByUserAndEvent(userID, eventID uint) (*models.Reservation, error) {
	var res models.Reservation
	err := r.db.Where("user_id = ? AND event_id = ?", userID, eventID).First(&res).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &res, nil
}

// GetByIDForUser is scoped to the owning user: a foreign reservation id
// behaves exactly like a missing one.
func (r *ReservationRepository) GetByIDForUser(id, userID uint) (*models.Reservation, error) {
	var res models.Reservation
	err := r.db.Preload("Event").Where("id = ? AND user_id = ?", id, userID).First(&res).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &res, nil
}

func (r *ReservationRepository) ListByUser(userID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.Preload("Event").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reservations).Error
	return reservations, err
}

func (r *ReservationRepository) ListByEvent(eventID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.Preload("User").
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&reservations).Error
	return reservations, err
}

// DeleteScoped deletes the reservation owned by userID and reports
// whether a row matched.
func (r *ReservationRepository) DeleteScoped(id, userID uint) (bool, error) {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Reservation{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *ReservationRepository) CountReservations() (int64, error) {
	var count int64
	err := r.db.Model(&models.Reservation{}).Count(&count).Error
	return count, err
}
