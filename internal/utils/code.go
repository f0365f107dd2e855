package utils

import "github.com/google/uuid"

// NewReservationCode returns the opaque receipt reference stamped on a
// reservation row.
func NewReservationCode() string {
	return uuid.New().String()
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return uuid.New().String()
}
