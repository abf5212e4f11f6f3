package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sharearide/sharearide-backend/internal/domain"
	"github.com/sharearide/sharearide-backend/internal/models"
	"github.com/sharearide/sharearide-backend/internal/store"
	"github.com/sirupsen/logrus"
)

// DelayScheduler arms one-shot tasks.
type DelayScheduler interface {
	RunAfter(d time.Duration, task Task) error
}

type RideRequestInput struct {
	RideOfferID     uint                 `json:"rideOfferId"`
	PersonID        uint                 `json:"personId"`
	PickupLocation  string               `json:"pickupLocation"`
	DropoffLocation string               `json:"dropoffLocation"`
	LuggageCount    *int                 `json:"luggageCount"`
	Pet             *bool                `json:"pet"`
	Kid             *bool                `json:"kid"`
	PaymentMethod   models.PaymentMethod `json:"paymentMethod"`
}

// RideFlow owns the ride request lifecycle: a request is stored as PENDING
// and decided once, after a delay, against the offer's capacity.
type RideFlow struct {
	store     store.Store
	ledger    CapacityLedger
	scheduler DelayScheduler
	notifier  Notifier
	locks     *KeyedMutex
	delay     time.Duration
	log       *logrus.Logger
	now       func() time.Time
}

func NewRideFlow(st store.Store, scheduler DelayScheduler, notifier Notifier, locks *KeyedMutex, delay time.Duration, log *logrus.Logger) *RideFlow {
	if notifier == nil {
		notifier = Notifiers{}
	}
	if locks == nil {
		locks = NewKeyedMutex()
	}
	return &RideFlow{
		store:     st,
		scheduler: scheduler,
		notifier:  notifier,
		locks:     locks,
		delay:     delay,
		log:       log,
		now:       time.Now,
	}
}

// Submit stores a PENDING request and arms its decision. It does not wait for it.
func (f *RideFlow) Submit(ctx context.Context, in RideRequestInput) (*models.RideRequest, error) {
	if in.RideOfferID == 0 {
		return nil, domain.Invalid("rideOfferId", "is required")
	}
	if in.PersonID == 0 {
		return nil, domain.Invalid("personId", "is required")
	}

	req := &models.RideRequest{
		RideOfferID:     in.RideOfferID,
		PersonID:        in.PersonID,
		PickupLocation:  in.PickupLocation,
		DropoffLocation: in.DropoffLocation,
		PaymentMethod:   in.PaymentMethod,
		Timestamp:       f.now(),
		Status:          models.RideRequestStatusPending,
	}
	if in.LuggageCount != nil {
		if *in.LuggageCount < 0 {
			return nil, domain.Invalid("luggageCount", "must not be negative")
		}
		req.LuggageCount = *in.LuggageCount
	}
	if in.Pet != nil {
		req.Pet = *in.Pet
	}
	if in.Kid != nil {
		req.Kid = *in.Kid
	}

	if err := f.store.CreateRideRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create ride request: %w", err)
	}
	f.arm(req.ID)

	f.log.WithFields(logrus.Fields{
		"request_id": req.ID,
		"offer_id":   req.RideOfferID,
		"person_id":  req.PersonID,
		"seats":      req.SeatsNeeded(),
		"luggage":    req.LuggageCount,
	}).Info("Ride request submitted")
	return req, nil
}

func (f *RideFlow) arm(requestID uint) {
	err := f.scheduler.RunAfter(f.delay, func(ctx context.Context) {
		if _, err := f.Decide(ctx, requestID); err != nil {
			f.log.WithError(err).WithField("request_id", requestID).Error("Ride request decision failed")
		}
	})
	if err != nil {
		// The request stays PENDING and is re-armed by ResumePending on the next start.
		f.log.WithError(err).WithField("request_id", requestID).Warn("Could not arm ride request decision")
	}
}

// Decide accepts or rejects a PENDING request. Requests in any other state are
// returned untouched, so repeated calls are harmless.
func (f *RideFlow) Decide(ctx context.Context, requestID uint) (*models.RideRequest, error) {
	req, err := f.store.FindRideRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !req.IsPending() {
		return req, nil
	}

	unlock := f.locks.Lock(req.RideOfferID)
	defer unlock()

	var decided *models.RideRequest
	changed := false
	err = f.store.Transaction(ctx, func(tx store.Store) error {
		current, err := tx.LockRideRequest(ctx, requestID)
		if err != nil {
			return err
		}
		decided = current
		if !current.IsPending() {
			return nil
		}
		changed = true
		return f.apply(ctx, tx, current)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decide ride request %d: %w", requestID, err)
	}

	if changed {
		f.log.WithFields(logrus.Fields{
			"request_id": decided.ID,
			"offer_id":   decided.RideOfferID,
			"status":     decided.Status,
		}).Info("Ride request decided")
		f.notifier.RideRequestDecided(ctx, decided)
	}
	return decided, nil
}

// apply runs inside the decision transaction and mutates req in place.
func (f *RideFlow) apply(ctx context.Context, tx store.Store, req *models.RideRequest) error {
	now := f.now()
	req.DecidedAt = &now

	offer, err := f.ledger.TryReserve(ctx, tx, req.RideOfferID, req.SeatsNeeded(), req.LuggageCount)
	if err != nil {
		// A vanished offer is rejected like a full one.
		if errors.Is(err, domain.ErrInsufficientCapacity) || domain.IsNotFound(err) {
			req.Status = models.RideRequestStatusRejected
			return tx.SaveRideRequest(ctx, req)
		}
		return err
	}

	ride, err := f.resolveRide(ctx, tx, offer)
	if err != nil {
		return err
	}
	passenger, err := f.enroll(ctx, tx, ride, req)
	if err != nil {
		return err
	}

	ride.RefreshSnapshot(offer)
	if err := tx.SaveRide(ctx, ride); err != nil {
		return err
	}

	req.RideID = &ride.ID
	req.PassengerID = &passenger.ID
	req.Status = models.RideRequestStatusAccepted
	return tx.SaveRideRequest(ctx, req)
}

// resolveRide returns the offer's single Ride, creating it on first use.
func (f *RideFlow) resolveRide(ctx context.Context, tx store.Store, offer *models.RideOffer) (*models.Ride, error) {
	ride, err := tx.FindRideByOffer(ctx, offer.ID)
	if err == nil {
		ride.RefreshSnapshot(offer)
		return ride, nil
	}
	if !domain.IsNotFound(err) {
		return nil, err
	}

	ride = models.NewRideFromOffer(offer)
	if err := tx.CreateRide(ctx, ride); err != nil {
		return nil, fmt.Errorf("failed to create ride for offer %d: %w", offer.ID, err)
	}
	f.log.WithFields(logrus.Fields{"ride_id": ride.ID, "offer_id": offer.ID}).Info("Ride created")
	return ride, nil
}

// enroll appends the passenger entry for an accepted request.
func (f *RideFlow) enroll(ctx context.Context, tx store.Store, ride *models.Ride, req *models.RideRequest) (*models.Passenger, error) {
	p := &models.Passenger{
		RideID:             ride.ID,
		PersonID:           req.PersonID,
		LuggageCount:       req.LuggageCount,
		PaymentMethod:      req.PaymentMethod,
		PaymentOutstanding: true,
		PickupLocation:     req.PickupLocation,
		DropoffLocation:    req.DropoffLocation,
		Pet:                req.Pet,
		Kid:                req.Kid,
		SeatsConsumed:      models.SeatsFor(req.Pet, req.Kid),
	}
	if err := tx.CreatePassenger(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to enroll passenger: %w", err)
	}
	return p, nil
}

func (f *RideFlow) Get(ctx context.Context, id uint) (*models.RideRequest, error) {
	return f.store.FindRideRequest(ctx, id)
}

func (f *RideFlow) List(ctx context.Context, q store.RideRequestQuery) ([]models.RideRequest, error) {
	return f.store.ListRideRequests(ctx, q)
}

// ResumePending arms a decision for every request still PENDING, e.g. after a
// restart lost the in-memory timers. It returns how many were armed.
func (f *RideFlow) ResumePending(ctx context.Context) (int, error) {
	pending, err := f.store.ListRideRequests(ctx, store.RideRequestQuery{Status: models.RideRequestStatusPending})
	if err != nil {
		return 0, err
	}
	for _, req := range pending {
		f.arm(req.ID)
	}
	if len(pending) > 0 {
		f.log.WithField("count", len(pending)).Info("Re-armed pending ride request decisions")
	}
	return len(pending), nil
}
