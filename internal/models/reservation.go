package models

import "time"

type Reservation struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;uniqueIndex:idx_reservations_user_event" json:"user_id"`
	EventID         uint      `gorm:"not null;uniqueIndex:idx_reservations_user_event;index" json:"event_id"`
	NumberOfTickets uint      `gorm:"not null;default:1" json:"number_of_tickets"`
	Code            string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"code"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	User  User  `gorm:"foreignKey:UserID" json:"-"`
	Event Event `gorm:"foreignKey:EventID" json:"-"`
}
