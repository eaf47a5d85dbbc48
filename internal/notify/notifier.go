package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/arcticshore/pickups/internal/kafka"
)

// Notifier delivers pickup-board changes to the affected guide. Delivery is
// a log line for now; the transport behind it is an operational choice.
type Notifier struct{}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Notify(ctx context.Context, event kafka.PickupEvent) error {
	logrus.WithFields(logrus.Fields{
		"type":       event.Type,
		"booking_id": event.BookingID,
		"date_key":   event.DateKey,
		"guide_id":   event.GuideID,
	}).Info("notifying guide of pickup change")
	return nil
}
