package service

import (
	"errors"
	"fmt"
)

var (
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrWrongPassword         = errors.New("current password is incorrect")

	ErrUserNotFound        = errors.New("user not found")
	ErrEventNotFound       = errors.New("event not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrReviewNotFound      = errors.New("review not found")
	ErrRequestNotFound     = errors.New("role request not found")

	ErrDuplicateReservation = errors.New("you already have a reservation for this event")
	ErrDuplicateReview      = errors.New("you already reviewed this event")
	ErrPendingRequestExists = errors.New("a pending role request already exists")
	ErrRequestAlreadyDecided = errors.New("role request already decided")

	ErrNotEventOwner  = errors.New("event is not owned by you")
	ErrNotReviewAuthor = errors.New("review can only be changed by its author")
	ErrOwnEventReview  = errors.New("organizers cannot review their own event")
	ErrStudentsOnly    = errors.New("only students can perform this action")
)

// CapacityError reports a rejected admission together with the exact
// number of seats still available.
type CapacityError struct {
	Remaining int64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("not enough seats available: %d seats remaining", e.Remaining)
}

// AsCapacityError unwraps err into a CapacityError if it is one.
func AsCapacityError(err error) (*CapacityError, bool) {
	var capErr *CapacityError
	if errors.As(err, &capErr) {
		return capErr, true
	}
	return nil, false
}
