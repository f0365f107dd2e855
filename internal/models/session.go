package models

import "time"

// Session is the server-side half of a bearer token. At most one row
// exists per user: login deletes prior rows before inserting, so a new
// login supersedes any earlier session.
type Session struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Valid     bool      `gorm:"not null;default:true" json:"valid"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
