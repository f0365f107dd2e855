package service

import (
	"errors"
	"math"
	"time"

	"github.com/bkoyuncu/campus-tickets/internal/broker"
	"github.com/bkoyuncu/campus-tickets/internal/journal"
	"github.com/bkoyuncu/campus-tickets/internal/models"
	"github.com/bkoyuncu/campus-tickets/internal/repository"
	"github.com/bkoyuncu/campus-tickets/internal/utils"
	"github.com/bkoyuncu/campus-tickets/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ReservationService struct {
	reservationRepo *repository.ReservationRepository
	eventRepo       *repository.EventRepository
	eventBroker     broker.EventBroker
	journal         *journal.Journal
}

func NewReservationService(
	reservationRepo *repository.ReservationRepository,
	eventRepo *repository.EventRepository,
	eventBroker broker.EventBroker,
	resJournal *journal.Journal,
) *ReservationService {
	return &ReservationService{
		reservationRepo: reservationRepo,
		eventRepo:       eventRepo,
		eventBroker:     eventBroker,
		journal:         resJournal,
	}
}

// ReservationSummary is returned on a successful admission.
type ReservationSummary struct {
	ReservationID   uint    `json:"reservation_id"`
	ReservationCode string  `json:"reservation_code"`
	EventID         uint    `json:"event_id"`
	EventTitle      string  `json:"event_title"`
	NumberOfTickets uint    `json:"number_of_tickets"`
	TotalPrice      float64 `json:"total_price"`
}

// ReservationDetail joins a reservation with event display fields.
type ReservationDetail struct {
	ID              uint      `json:"id"`
	Code            string    `json:"code"`
	NumberOfTickets uint      `json:"number_of_tickets"`
	TotalPrice      float64   `json:"total_price"`
	CreatedAt       time.Time `json:"created_at"`
	EventID         uint      `json:"event_id"`
	EventTitle      string    `json:"event_title"`
	EventStartsAt   time.Time `json:"event_starts_at"`
	EventPrice      float64   `json:"event_price"`
}

// EventReservation is the organizer-side view: a reservation row plus
// the reserving student's identity.
type EventReservation struct {
	ID              uint      `json:"id"`
	Code            string    `json:"code"`
	NumberOfTickets uint      `json:"number_of_tickets"`
	CreatedAt       time.Time `json:"created_at"`
	StudentID       uint      `json:"student_id"`
	StudentName     string    `json:"student_name"`
	StudentSurname  string    `json:"student_surname"`
	StudentEmail    string    `json:"student_email"`
	StudentUsername string    `json:"student_username"`
}

// AvailableSeats returns the derived remaining capacity, clamped at
// zero for display.
func (s *ReservationService) AvailableSeats(eventID uint) (int64, error) {
	event, err := s.eventRepo.GetEventByID(eventID)
	if err != nil {
		return 0, err
	}
	if event == nil {
		return 0, ErrEventNotFound
	}

	reserved, err := s.reservationRepo.SumTicketsForEvent(eventID)
	if err != nil {
		return 0, err
	}

	available := int64(event.Seats) - reserved
	if available < 0 {
		available = 0
	}
	return available, nil
}

// CreateReservation admits tickets against a fixed-capacity event. The
// capacity check and the insert run as one conditional statement inside
// a transaction, so concurrent admissions cannot jointly overbook.
func (s *ReservationService) CreateReservation(userID uint, userEmail, userName string, eventID, tickets uint) (*ReservationSummary, error) {
	start := time.Now()

	if tickets == 0 {
		tickets = 1
	}

	event, err := s.eventRepo.GetEventByID(eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	existing, err := s.reservationRepo.GetByUserAndEvent(userID, eventID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateReservation
	}

	reservation := &models.Reservation{
		UserID:          userID,
		EventID:         eventID,
		NumberOfTickets: tickets,
		Code:            utils.NewReservationCode(),
	}

	admitted, err := s.reservationRepo.AdmitReservation(reservation, event.Seats)
	if err != nil {
		// A concurrent duplicate slips past the pre-check above and
		// lands on the (user, event) unique index instead.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateReservation
		}
		logger.Log.Error("Reservation admission failed",
			zap.Uint("user_id", userID),
			zap.Uint("event_id", eventID),
			zap.Error(err),
		)
		return nil, err
	}
	if !admitted {
		reserved, sumErr := s.reservationRepo.SumTicketsForEvent(eventID)
		if sumErr != nil {
			return nil, sumErr
		}
		remaining := int64(event.Seats) - reserved
		if remaining < 0 {
			remaining = 0
		}
		logger.Log.Info("Reservation rejected: insufficient capacity",
			zap.Uint("user_id", userID),
			zap.Uint("event_id", eventID),
			zap.Uint("requested", tickets),
			zap.Int64("remaining", remaining),
		)
		return nil, &CapacityError{Remaining: remaining}
	}

	if s.journal != nil {
		if err := s.journal.Append(journal.Entry{
			Code:      reservation.Code,
			EventID:   eventID,
			UserID:    userID,
			Tickets:   tickets,
			Action:    journal.ActionAdmit,
			Timestamp: reservation.CreatedAt,
		}); err != nil {
			// The row is committed; a journal gap only degrades reconciliation
			logger.Log.Error("Failed to journal admission",
				zap.String("code", reservation.Code),
				zap.Error(err),
			)
		}
	}

	s.publishAvailability(event)

	if s.eventBroker != nil {
		if err := s.eventBroker.PublishNotification(broker.Notification{
			Kind:            broker.NotifyReservationConfirmed,
			Recipient:       userEmail,
			RecipientName:   userName,
			EventTitle:      event.Title,
			ReservationCode: reservation.Code,
			Tickets:         tickets,
			TotalPrice:      roundPrice(event.Price * float64(tickets)),
		}); err != nil {
			logger.Log.Warn("Failed to publish reservation notification",
				zap.String("code", reservation.Code),
				zap.Error(err),
			)
		}
	}

	logger.Log.Info("Reservation created",
		zap.Uint("reservation_id", reservation.ID),
		zap.String("code", reservation.Code),
		zap.Uint("user_id", userID),
		zap.Uint("event_id", eventID),
		zap.Uint("tickets", tickets),
		zap.Duration("total_duration", time.Since(start)),
	)

	return &ReservationSummary{
		ReservationID:   reservation.ID,
		ReservationCode: reservation.Code,
		EventID:         event.ID,
		EventTitle:      event.Title,
		NumberOfTickets: tickets,
		TotalPrice:      roundPrice(event.Price * float64(tickets)),
	}, nil
}

// DeleteReservation cancels a reservation owned by userID. A foreign or
// missing id both yield ErrReservationNotFound; no seat is returned
// beyond the aggregate recomputation on the next read.
func (s *ReservationService) DeleteReservation(userID uint, userEmail, userName string, reservationID uint) error {
	reservation, err := s.reservationRepo.GetByIDForUser(reservationID, userID)
	if err != nil {
		return err
	}
	if reservation == nil {
		return ErrReservationNotFound
	}

	deleted, err := s.reservationRepo.DeleteScoped(reservationID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrReservationNotFound
	}

	if s.journal != nil {
		if err := s.journal.Append(journal.Entry{
			Code:      reservation.Code,
			EventID:   reservation.EventID,
			UserID:    userID,
			Tickets:   reservation.NumberOfTickets,
			Action:    journal.ActionCancel,
			Timestamp: time.Now(),
		}); err != nil {
			logger.Log.Error("Failed to journal cancellation",
				zap.String("code", reservation.Code),
				zap.Error(err),
			)
		}
	}

	if event, eventErr := s.eventRepo.GetEventByID(reservation.EventID); eventErr == nil && event != nil {
		s.publishAvailability(event)

		if s.eventBroker != nil {
			if err := s.eventBroker.PublishNotification(broker.Notification{
				Kind:            broker.NotifyReservationCancelled,
				Recipient:       userEmail,
				RecipientName:   userName,
				EventTitle:      event.Title,
				ReservationCode: reservation.Code,
				Tickets:         reservation.NumberOfTickets,
			}); err != nil {
				logger.Log.Warn("Failed to publish cancellation notification",
					zap.String("code", reservation.Code),
					zap.Error(err),
				)
			}
		}
	}

	logger.Log.Info("Reservation cancelled",
		zap.Uint("reservation_id", reservationID),
		zap.String("code", reservation.Code),
		zap.Uint("user_id", userID),
	)

	return nil
}

func (s *ReservationService) ListUserReservations(userID uint) ([]ReservationDetail, error) {
	reservations, err := s.reservationRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	details := make([]ReservationDetail, 0, len(reservations))
	for _, r := range reservations {
		details = append(details, toDetail(r))
	}
	return details, nil
}

func (s *ReservationService) GetReservation(userID, reservationID uint) (*ReservationDetail, error) {
	reservation, err := s.reservationRepo.GetByIDForUser(reservationID, userID)
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		return nil, ErrReservationNotFound
	}

	detail := toDetail(*reservation)
	return &detail, nil
}

// ListEventReservations is the organizer-side read: only the owning
// organizer may see who reserved.
func (s *ReservationService) ListEventReservations(organizerID, eventID uint) ([]EventReservation, error) {
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

	reservations, err := s.reservationRepo.ListByEvent(eventID)
	if err != nil {
		return nil, err
	}

	result := make([]EventReservation, 0, len(reservations))
	for _, r := range reservations {
		result = append(result, EventReservation{
			ID:              r.ID,
			Code:            r.Code,
			NumberOfTickets: r.NumberOfTickets,
			CreatedAt:       r.CreatedAt,
			StudentID:       r.User.ID,
			StudentName:     r.User.Name,
			StudentSurname:  r.User.Surname,
			StudentEmail:    r.User.Email,
			StudentUsername: r.User.Username,
		})
	}
	return result, nil
}

// Reconcile compares the journal's net admitted tickets for an event
// against the stored aggregate.
func (s *ReservationService) Reconcile(eventID uint) (journalTotal, storedTotal int64, err error) {
	event, err := s.eventRepo.GetEventByID(eventID)
	if err != nil {
		return 0, 0, err
	}
	if event == nil {
		return 0, 0, ErrEventNotFound
	}

	journalTotal, err = s.journal.NetTickets(eventID)
	if err != nil {
		return 0, 0, err
	}

	storedTotal, err = s.reservationRepo.SumTicketsForEvent(eventID)
	if err != nil {
		return 0, 0, err
	}

	return journalTotal, storedTotal, nil
}

func (s *ReservationService) publishAvailability(event *models.Event) {
	if s.eventBroker == nil {
		return
	}

	reserved, err := s.reservationRepo.SumTicketsForEvent(event.ID)
	if err != nil {
		logger.Log.Warn("Failed to compute availability for publish",
			zap.Uint("event_id", event.ID),
			zap.Error(err),
		)
		return
	}

	available := int64(event.Seats) - reserved
	if available < 0 {
		available = 0
	}

	if err := s.eventBroker.PublishAvailability(broker.AvailabilityUpdate{
		EventID:        event.ID,
		AvailableSeats: available,
		Timestamp:      time.Now(),
	}); err != nil {
		logger.Log.Warn("Failed to publish availability update",
			zap.Uint("event_id", event.ID),
			zap.Error(err),
		)
	}
}

func toDetail(r models.Reservation) ReservationDetail {
	return ReservationDetail{
		ID:              r.ID,
		Code:            r.Code,
		NumberOfTickets: r.NumberOfTickets,
		TotalPrice:      roundPrice(r.Event.Price * float64(r.NumberOfTickets)),
		CreatedAt:       r.CreatedAt,
		EventID:         r.EventID,
		EventTitle:      r.Event.Title,
		EventStartsAt:   r.Event.StartsAt,
		EventPrice:      r.Event.Price,
	}
}

// roundPrice rounds to two decimals for display and receipts.
func roundPrice(p float64) float64 {
	return math.Round(p*100) / 100
}
