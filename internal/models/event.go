package models

import "time"

type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	StartsAt    time.Time `gorm:"not null;index" json:"starts_at"`
	Seats       uint      `gorm:"not null" json:"seats"`
	Price       float64   `gorm:"not null" json:"price"`
	ImageURL    string    `gorm:"type:varchar(500)" json:"image_url"`
	OrganizerID uint      `gorm:"not null;index" json:"organizer_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Organizer User `gorm:"foreignKey:OrganizerID" json:"-"`
}

// EventWithAvailability carries an event row plus its derived
// remaining capacity, computed from the reservation aggregate.
type EventWithAvailability struct {
	Event
	AvailableSeats int64 `json:"available_seats"`
}
