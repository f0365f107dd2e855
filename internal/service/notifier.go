package service

import (
	"fmt"

	"github.com/bkoyuncu/campus-tickets/internal/broker"
	"github.com/bkoyuncu/campus-tickets/internal/mailer"
	"github.com/bkoyuncu/campus-tickets/pkg/logger"
	"go.uber.org/zap"
)

// Notifier consumes notification events from the broker and delivers
// them over SMTP. Handlers never block on mail delivery.
type Notifier struct {
	eventBroker broker.EventBroker
	mail        *mailer.Mailer
}

func NewNotifier(eventBroker broker.EventBroker, mail *mailer.Mailer) *Notifier {
	return &Notifier{
		eventBroker: eventBroker,
		mail:        mail,
	}
}

// Start launches the consumption loop. Returns after subscribing; the
// loop runs until the broker closes.
func (n *Notifier) Start() error {
	notifications, err := n.eventBroker.SubscribeNotifications()
	if err != nil {
		return err
	}

	go func() {
		for notification := range notifications {
			n.deliver(notification)
		}
	}()

	return nil
}

func (n *Notifier) deliver(notification broker.Notification) {
	subject, body := renderNotification(notification)

	if err := n.mail.Send(notification.Recipient, subject, body); err != nil {
		logger.Log.Error("Failed to send notification mail",
			zap.String("kind", string(notification.Kind)),
			zap.String("recipient", notification.Recipient),
			zap.Error(err),
		)
		return
	}

	logger.Log.Info("Notification mail sent",
		zap.String("kind", string(notification.Kind)),
		zap.String("recipient", notification.Recipient),
	)
}

func renderNotification(n broker.Notification) (subject, body string) {
	switch n.Kind {
	case broker.NotifyReservationConfirmed:
		subject = fmt.Sprintf("Reservation confirmed: %s", n.EventTitle)
		body = fmt.Sprintf(
			"Hi %s,\n\nYour reservation for %q is confirmed.\nTickets: %d\nTotal: %.2f\nReservation code: %s\n",
			n.RecipientName, n.EventTitle, n.Tickets, n.TotalPrice, n.ReservationCode,
		)
	case broker.NotifyReservationCancelled:
		subject = fmt.Sprintf("Reservation cancelled: %s", n.EventTitle)
		body = fmt.Sprintf(
			"Hi %s,\n\nYour reservation %s for %q has been cancelled.\n",
			n.RecipientName, n.ReservationCode, n.EventTitle,
		)
	case broker.NotifyRoleRequestDecided:
		decision := "rejected"
		if n.Approved {
			decision = "approved"
		}
		subject = fmt.Sprintf("Your organizer request was %s", decision)
		body = fmt.Sprintf(
			"Hi %s,\n\nYour request for organizer privileges has been %s.\n",
			n.RecipientName, decision,
		)
	default:
		subject = "Campus Tickets notification"
		body = fmt.Sprintf("Hi %s,\n\nYou have a new notification.\n", n.RecipientName)
	}
	return subject, body
}
