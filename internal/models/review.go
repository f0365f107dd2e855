package models

import "time"

// Review is a student's rating of an event. One review per (user, event);
// only the author may edit or delete it.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_reviews_user_event" json:"user_id"`
	EventID   uint      `gorm:"not null;uniqueIndex:idx_reviews_user_event;index" json:"event_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Rating    int       `gorm:"not null" json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User  User  `gorm:"foreignKey:UserID" json:"-"`
	Event Event `gorm:"foreignKey:EventID" json:"-"`
}
