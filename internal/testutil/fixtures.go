package testutil

import (
	"time"

	"github.com/bkoyuncu/campus-tickets/internal/models"
	"github.com/bkoyuncu/campus-tickets/internal/utils"
)

// CreateTestUser builds an unsaved user with a real bcrypt hash so login
// paths work against fixtures.
func CreateTestUser(username, email, password string, role models.Role) (*models.User, error) {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return &models.User{
		Name:         "Test",
		Surname:      "User",
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
		IsOrganizer:  role == models.RoleOrganizer,
	}, nil
}

// DefaultStudent returns a default student account.
func DefaultStudent() (*models.User, error) {
	return CreateTestUser("student", "student@example.com", "Test123456", models.RoleStudent)
}

// DefaultOrganizer returns a default organizer account.
func DefaultOrganizer() (*models.User, error) {
	return CreateTestUser("organizer", "organizer@example.com", "Test123456", models.RoleOrganizer)
}

// DefaultAdmin returns a default admin account.
func DefaultAdmin() (*models.User, error) {
	return CreateTestUser("admin", "admin@example.com", "Admin123456", models.RoleAdmin)
}

// CreateTestEvent builds an unsaved event one week out.
func CreateTestEvent(organizerID uint, title string, seats uint, price float64) *models.Event {
	return &models.Event{
		Title:       title,
		Description: "A test event",
		StartsAt:    time.Now().Add(7 * 24 * time.Hour),
		Seats:       seats,
		Price:       price,
		OrganizerID: organizerID,
	}
}

// CreateTestReservation builds an unsaved reservation with a fresh code.
func CreateTestReservation(userID, eventID uint, tickets uint) *models.Reservation {
	return &models.Reservation{
		UserID:          userID,
		EventID:         eventID,
		NumberOfTickets: tickets,
		Code:            utils.NewReservationCode(),
	}
}

// CreateTestReview builds an unsaved review.
func CreateTestReview(userID, eventID uint, rating int, text string) *models.Review {
	return &models.Review{
		UserID:  userID,
		EventID: eventID,
		Rating:  rating,
		Text:    text,
	}
}
