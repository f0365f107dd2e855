package models

import "time"

type RoleRequestStatus string

const (
	RoleRequestPending  RoleRequestStatus = "pending"
	RoleRequestApproved RoleRequestStatus = "approved"
	RoleRequestRejected RoleRequestStatus = "rejected"
)

// RoleRequest is a student's petition for organizer privileges,
// adjudicated by an admin. At most one pending request per user.
type RoleRequest struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	UserID     uint              `gorm:"not null;index" json:"user_id"`
	Status     RoleRequestStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ReviewedBy *uint             `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time        `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
