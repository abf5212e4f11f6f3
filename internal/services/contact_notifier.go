package services

import (
	"context"

	"github.com/sharearide/sharearide-backend/internal/models"
	"github.com/sharearide/sharearide-backend/internal/store"
	"github.com/sharearide/sharearide-backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

// ContactNotifier texts request decisions and emails booking confirmations
// to the person's stored contact details.
type ContactNotifier struct {
	store  store.Store
	sms    *utils.SMSClient
	mailer *utils.Mailer
	log    *logrus.Logger
}

func NewContactNotifier(st store.Store, sms *utils.SMSClient, mailer *utils.Mailer, log *logrus.Logger) *ContactNotifier {
	return &ContactNotifier{store: st, sms: sms, mailer: mailer, log: log}
}

func (n *ContactNotifier) RideRequestDecided(ctx context.Context, req *models.RideRequest) {
	if !n.sms.Configured() {
		return
	}
	person, err := n.store.FindPerson(ctx, req.PersonID)
	if err != nil || person.PhoneNumber == "" {
		return
	}
	offer, err := n.store.FindOffer(ctx, req.RideOfferID)
	if err != nil {
		return
	}
	accepted := req.Status == models.RideRequestStatusAccepted
	if err := n.sms.SendRideRequestDecisionSMS(ctx, person.PhoneNumber, offer.DepartureCity, offer.DestinationCity, accepted); err != nil {
		n.log.WithError(err).WithField("request_id", req.ID).Warn("Failed to text ride request decision")
	}
}

func (n *ContactNotifier) BookingUpdated(ctx context.Context, event string, b *models.Booking) {
	if event != EventBookingConfirmed || !n.mailer.Configured() {
		return
	}
	person, err := n.store.FindPerson(ctx, b.PassengerID)
	if err != nil || person.Email == "" {
		return
	}
	if err := n.mailer.SendBookingConfirmedEmail(person.Email, b.DepartureCity, b.DestinationCity, b.ReceiptURL); err != nil {
		n.log.WithError(err).WithField("booking_id", b.ID).Warn("Failed to email booking confirmation")
	}
}
