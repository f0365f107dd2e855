package broker

import "time"

// AvailabilityUpdate is published whenever a reservation is admitted or
// cancelled; WebSocket subscribers receive the new derived capacity.
type AvailabilityUpdate struct {
	EventID        uint      `json:"event_id"`
	AvailableSeats int64     `json:"available_seats"`
	Timestamp      time.Time `json:"timestamp"`
}

// NotificationKind selects the mail template used by the notifier.
type NotificationKind string

const (
	NotifyReservationConfirmed NotificationKind = "reservation.confirmed"
	NotifyReservationCancelled NotificationKind = "reservation.cancelled"
	NotifyRoleRequestDecided   NotificationKind = "role_request.decided"
)

// Notification is an asynchronous email request. Handlers publish and
// return; the notifier goroutine consumes and talks SMTP.
type Notification struct {
	Kind            NotificationKind `json:"kind"`
	Recipient       string           `json:"recipient"`
	RecipientName   string           `json:"recipient_name"`
	EventTitle      string           `json:"event_title,omitempty"`
	ReservationCode string           `json:"reservation_code,omitempty"`
	Tickets         uint             `json:"tickets,omitempty"`
	TotalPrice      float64          `json:"total_price,omitempty"`
	Approved        bool             `json:"approved,omitempty"`
}

// EventBroker fans availability updates and notification requests out
// across nodes.
type EventBroker interface {
	PublishAvailability(update AvailabilityUpdate) error
	SubscribeAvailability() (<-chan AvailabilityUpdate, error)

	PublishNotification(n Notification) error
	SubscribeNotifications() (<-chan Notification, error)

	Close() error
}
