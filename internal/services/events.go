package services

import (
	"context"
	"time"

	"github.com/sharearide/sharearide-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// Event is the message published to external consumers on every committed
// state change.
type Event struct {
	Type        string    `json:"type"`
	RequestID   uint      `json:"requestId,omitempty"`
	BookingID   uint      `json:"bookingId,omitempty"`
	RideOfferID uint      `json:"rideOfferId,omitempty"`
	RideID      uint      `json:"rideId,omitempty"`
	PersonID    uint      `json:"personId,omitempty"`
	Status      string    `json:"status"`
	Payment     string    `json:"paymentStatus,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// RoutingKey is the topic the event is published under, e.g. "booking.booking_confirmed".
func (e Event) RoutingKey() string {
	if e.BookingID != 0 {
		return "booking." + e.Type
	}
	return "riderequest." + e.Type
}

// Publisher sends events to a broker.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// EventNotifier turns notifications into published events.
type EventNotifier struct {
	publisher Publisher
	log       *logrus.Logger
	now       func() time.Time
}

func NewEventNotifier(p Publisher, log *logrus.Logger) *EventNotifier {
	return &EventNotifier{publisher: p, log: log, now: time.Now}
}

func (n *EventNotifier) RideRequestDecided(ctx context.Context, req *models.RideRequest) {
	ev := Event{
		Type:        EventRideRequestDecided,
		RequestID:   req.ID,
		RideOfferID: req.RideOfferID,
		PersonID:    req.PersonID,
		Status:      string(req.Status),
		Timestamp:   n.now().UTC(),
	}
	if req.RideID != nil {
		ev.RideID = *req.RideID
	}
	n.publish(ctx, ev)
}

func (n *EventNotifier) BookingUpdated(ctx context.Context, event string, b *models.Booking) {
	ev := Event{
		Type:        event,
		BookingID:   b.ID,
		RideOfferID: b.RideOfferID,
		PersonID:    b.PassengerID,
		Status:      string(b.Status),
		Payment:     string(b.PaymentStatus),
		Timestamp:   n.now().UTC(),
	}
	if b.RideID != nil {
		ev.RideID = *b.RideID
	}
	n.publish(ctx, ev)
}

func (n *EventNotifier) publish(ctx context.Context, ev Event) {
	if err := n.publisher.Publish(ctx, ev); err != nil {
		n.log.WithError(err).WithFields(logrus.Fields{
			"type":        ev.Type,
			"routing_key": ev.RoutingKey(),
		}).Warn("Failed to publish event")
	}
}
