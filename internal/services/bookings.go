package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sharearide/sharearide-backend/internal/domain"
	"github.com/sharearide/sharearide-backend/internal/models"
	"github.com/sharearide/sharearide-backend/internal/store"
	"github.com/sirupsen/logrus"
)

type CreateBookingInput struct {
	RideOfferID     uint                 `json:"rideOfferId" binding:"required"`
	PickupLocation  string               `json:"pickupLocation"`
	DropoffLocation string               `json:"dropoffLocation"`
	LuggageCount    int                  `json:"luggageCount"`
	Pet             bool                 `json:"pet"`
	Kid             bool                 `json:"kid"`
	PaymentMethod   models.PaymentMethod `json:"paymentMethod"`
}

// Receipts renders and stores a receipt for a confirmed booking.
type Receipts interface {
	Issue(ctx context.Context, booking *models.Booking) (string, error)
}

// BookingService drives bookings through reservation, payment and
// cancellation. It never touches offer capacity.
type BookingService struct {
	store    store.Store
	codes    CodeStore
	sender   CodeSender
	notifier Notifier
	receipts Receipts
	log      *logrus.Logger
	now      func() time.Time
}

func NewBookingService(st store.Store, codes CodeStore, sender CodeSender, notifier Notifier, receipts Receipts, log *logrus.Logger) *BookingService {
	if notifier == nil {
		notifier = Notifiers{}
	}
	return &BookingService{
		store:    st,
		codes:    codes,
		sender:   sender,
		notifier: notifier,
		receipts: receipts,
		log:      log,
		now:      time.Now,
	}
}

// Create reserves a booking on an offer, copying driver, car and price as
// they are right now.
func (s *BookingService) Create(ctx context.Context, passengerID uint, in CreateBookingInput) (*models.Booking, error) {
	method, ok := models.ParsePaymentMethod(string(in.PaymentMethod))
	if !ok {
		return nil, domain.Invalid("paymentMethod", fmt.Sprintf("unsupported payment method %q", in.PaymentMethod))
	}
	if in.LuggageCount < 0 {
		return nil, domain.Invalid("luggageCount", "must not be negative")
	}
	offer, err := s.store.FindOffer(ctx, in.RideOfferID)
	if err != nil {
		return nil, err
	}

	b := &models.Booking{
		RideOfferID:     offer.ID,
		PassengerID:     passengerID,
		DepartureCity:   offer.DepartureCity,
		DestinationCity: offer.DestinationCity,
		DepartureTime:   offer.DepartureTime,
		PickupLocation:  in.PickupLocation,
		DropoffLocation: in.DropoffLocation,
		LuggageCount:    in.LuggageCount,
		Pet:             in.Pet,
		Kid:             in.Kid,
		PricePerPerson:  offer.PricePerPerson,
		TotalPrice:      offer.PricePerPerson,
		PaymentMethod:   method,
		PaymentStatus:   models.PaymentStatusPending,
		Status:          models.BookingStatusPending,
	}
	if ride, err := s.store.FindRideByOffer(ctx, offer.ID); err == nil {
		b.RideID = &ride.ID
	}

	if offer.DriverPersonID != 0 {
		if driver, err := s.store.FindPerson(ctx, offer.DriverPersonID); err == nil {
			b.DriverID = driver.ID
			b.DriverName = driver.Name
			b.DriverPhone = driver.PhoneNumber
			if driver.CarID != 0 {
				if car, err := s.store.FindCar(ctx, driver.CarID); err == nil {
					b.CarMake = car.Make
					b.CarModel = car.ModelName
					b.CarPlate = car.Plate
				}
			}
		}
	}

	if err := s.store.CreateBooking(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"offer_id":   b.RideOfferID,
		"passenger":  b.PassengerID,
	}).Info("Booking created")
	s.notifier.BookingUpdated(ctx, EventBookingCreated, b)
	return b, nil
}

func (s *BookingService) Get(ctx context.Context, id uint) (*models.Booking, error) {
	return s.store.FindBooking(ctx, id)
}

// ListForPassenger filters by "upcoming", "past", a single status name, or
// nothing. Unknown filters list every booking of the passenger.
func (s *BookingService) ListForPassenger(ctx context.Context, passengerID uint, filter string) ([]models.Booking, error) {
	q := store.BookingQuery{PassengerID: passengerID}
	switch f := strings.ToLower(strings.TrimSpace(filter)); f {
	case "":
	case "upcoming":
		q.Statuses = []models.BookingStatus{models.BookingStatusConfirmed, models.BookingStatusUpcoming, models.BookingStatusPending}
	case "past":
		q.Statuses = []models.BookingStatus{models.BookingStatusCompleted, models.BookingStatusCancelled}
	default:
		if st, ok := models.ParseBookingStatus(f); ok {
			q.Statuses = []models.BookingStatus{st}
		}
	}
	return s.store.ListBookings(ctx, q)
}

func (s *BookingService) ListForDriver(ctx context.Context, driverID uint) ([]models.Booking, error) {
	return s.store.ListBookings(ctx, store.BookingQuery{DriverID: driverID})
}

// Cancel marks the booking CANCELLED whatever its payment state.
func (s *BookingService) Cancel(ctx context.Context, id uint) (*models.Booking, error) {
	return s.transition(ctx, id, EventBookingCancelled, func(b *models.Booking) {
		b.Status = models.BookingStatusCancelled
	})
}

// Confirm sets CONFIRMED and COMPLETED without code verification.
func (s *BookingService) Confirm(ctx context.Context, id uint) (*models.Booking, error) {
	return s.transition(ctx, id, EventBookingConfirmed, func(b *models.Booking) {
		b.Status = models.BookingStatusConfirmed
		b.PaymentStatus = models.PaymentStatusCompleted
	})
}

// transition applies mutate to the locked booking row, then notifies.
// Confirmed bookings get their receipt before anyone is told.
func (s *BookingService) transition(ctx context.Context, id uint, event string, mutate func(*models.Booking)) (*models.Booking, error) {
	b, err := s.update(ctx, id, func(b *models.Booking) error {
		mutate(b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"booking_id":     b.ID,
		"event":          event,
		"status":         b.Status,
		"payment_status": b.PaymentStatus,
	}).Info("Booking updated")
	if event == EventBookingConfirmed {
		s.issueReceipt(ctx, b)
	}
	s.notifier.BookingUpdated(ctx, event, b)
	return b, nil
}

// update runs read-modify-write of one booking under its row lock, so
// concurrent transitions each see the other's committed columns. An error
// from mutate aborts without writing.
func (s *BookingService) update(ctx context.Context, id uint, mutate func(*models.Booking) error) (*models.Booking, error) {
	var out *models.Booking
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		b, err := tx.LockBooking(ctx, id)
		if err != nil {
			return err
		}
		if err := mutate(b); err != nil {
			return err
		}
		if err := tx.SaveBooking(ctx, b); err != nil {
			return fmt.Errorf("failed to update booking %d: %w", id, err)
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// issueReceipt attaches a receipt URL to a confirmed booking. Failures are
// logged; the confirmation itself already happened.
func (s *BookingService) issueReceipt(ctx context.Context, b *models.Booking) {
	if s.receipts == nil {
		return
	}
	url, err := s.receipts.Issue(ctx, b)
	if err != nil {
		s.log.WithError(err).WithField("booking_id", b.ID).Warn("Failed to issue receipt")
		return
	}
	b.ReceiptURL = url
	if _, err := s.update(ctx, b.ID, func(locked *models.Booking) error {
		locked.ReceiptURL = url
		return nil
	}); err != nil {
		s.log.WithError(err).WithField("booking_id", b.ID).Warn("Failed to store receipt url")
	}
}
