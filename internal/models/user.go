package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent   Role = "student"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

// ValidRegistrationRole reports whether a role may be chosen at signup.
// Admin accounts are seeded, never self-registered.
func ValidRegistrationRole(r Role) bool {
	return r == RoleStudent || r == RoleOrganizer
}

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"type:varchar(100);not null" json:"name"`
	Surname      string         `gorm:"type:varchar(100);not null" json:"surname"`
	Username     string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email        string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"` // Never expose password hash in JSON
	Role         Role           `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	IsOrganizer  bool           `gorm:"not null;default:false" json:"is_organizer"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// CanOrganize reports organizer privileges. The flag is tracked
// independently of the role string so an approved student keeps
// organizing rights even if the role is later edited.
func (u *User) CanOrganize() bool {
	return u.Role == RoleOrganizer || u.Role == RoleAdmin || u.IsOrganizer
}
