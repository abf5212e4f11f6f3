package services

import (
	"context"

	"github.com/sharearide/sharearide-backend/internal/models"
)

// Booking event names shared by every notification channel.
const (
	EventBookingCreated     = "booking_created"
	EventPaymentInitiated   = "payment_initiated"
	EventBookingConfirmed   = "booking_confirmed"
	EventBookingCancelled   = "booking_cancelled"
	EventBookingRefunded    = "booking_refunded"
	EventRideRequestDecided = "ride_request_decided"
)

// Notifier is told about state changes after they are committed. Delivery is
// best effort: implementations log failures instead of returning them.
type Notifier interface {
	RideRequestDecided(ctx context.Context, req *models.RideRequest)
	BookingUpdated(ctx context.Context, event string, booking *models.Booking)
}

// Notifiers fans every call out to each member in order.
type Notifiers []Notifier

func (n Notifiers) RideRequestDecided(ctx context.Context, req *models.RideRequest) {
	for _, notifier := range n {
		notifier.RideRequestDecided(ctx, req)
	}
}

func (n Notifiers) BookingUpdated(ctx context.Context, event string, booking *models.Booking) {
	for _, notifier := range n {
		notifier.BookingUpdated(ctx, event, booking)
	}
}
