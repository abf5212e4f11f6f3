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

// OfferSummary is a search result enriched with driver and car basics.
type OfferSummary struct {
	ID                     uint      `json:"id"`
	DepartureCity          string    `json:"departureCity"`
	DestinationCity        string    `json:"destinationCity"`
	DepartureTime          time.Time `json:"departureTime"`
	SeatsAvailable         int       `json:"seatsAvailable"`
	LuggageCount           int       `json:"luggageCount"`
	PricePerPerson         float64   `json:"pricePerPerson"`
	DriverName             string    `json:"driverName,omitempty"`
	DriverChatinessLevel   int       `json:"driverChatinessLevel,omitempty"`
	DriverOverallKmCovered int       `json:"driverOverallKmCovered,omitempty"`
	CarMake                string    `json:"carMake,omitempty"`
	CarModel               string    `json:"carModel,omitempty"`
}

type OfferDetail struct {
	Offer  *models.RideOffer `json:"offer"`
	Driver *models.Person    `json:"driver,omitempty"`
	Car    *models.Car       `json:"car,omitempty"`
}

type OfferService struct {
	store store.Store
	locks *KeyedMutex
	log   *logrus.Logger
}

// NewOfferService shares locks with the RideFlow so that edits never
// interleave with a capacity decision on the same offer.
func NewOfferService(st store.Store, locks *KeyedMutex, log *logrus.Logger) *OfferService {
	return &OfferService{store: st, locks: locks, log: log}
}

func validateOffer(o *models.RideOffer) error {
	if strings.TrimSpace(o.DepartureCity) == "" {
		return domain.Invalid("departureCity", "is required")
	}
	if strings.TrimSpace(o.DestinationCity) == "" {
		return domain.Invalid("destinationCity", "is required")
	}
	if o.DepartureTime.IsZero() {
		return domain.Invalid("departureTime", "is required")
	}
	if o.SeatsAvailable < 0 || o.LuggageCount < 0 {
		return domain.Invalid("capacity", "seats and luggage must not be negative")
	}
	return nil
}

func (s *OfferService) Create(ctx context.Context, offer *models.RideOffer) (*models.RideOffer, error) {
	if err := validateOffer(offer); err != nil {
		return nil, err
	}
	offer.ID = 0
	if err := s.store.CreateOffer(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to create ride offer: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"offer_id": offer.ID,
		"driver":   offer.DriverPersonID,
		"seats":    offer.SeatsAvailable,
	}).Info("Ride offer created")
	return offer, nil
}

// Update replaces the editable fields of an offer, capacity included.
func (s *OfferService) Update(ctx context.Context, id uint, in *models.RideOffer) (*models.RideOffer, error) {
	if err := validateOffer(in); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	var updated *models.RideOffer
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		existing, err := tx.LockOffer(ctx, id)
		if err != nil {
			return err
		}
		in.Model = existing.Model
		if err := tx.SaveOffer(ctx, in); err != nil {
			return err
		}
		updated = in
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *OfferService) Delete(ctx context.Context, id uint) error {
	unlock := s.locks.Lock(id)
	defer unlock()
	return s.store.DeleteOffer(ctx, id)
}

func (s *OfferService) Detail(ctx context.Context, id uint) (*OfferDetail, error) {
	offer, err := s.store.FindOffer(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &OfferDetail{Offer: offer}
	if offer.DriverPersonID != 0 {
		if driver, err := s.store.FindPerson(ctx, offer.DriverPersonID); err == nil {
			detail.Driver = driver
			if driver.CarID != 0 {
				if car, err := s.store.FindCar(ctx, driver.CarID); err == nil {
					detail.Car = car
				}
			}
		}
	}
	return detail, nil
}

func (s *OfferService) ListByDriver(ctx context.Context, driverID uint) ([]models.RideOffer, error) {
	return s.store.ListOffersByDriver(ctx, driverID)
}

// Search matches the route case-insensitively. A non-nil date narrows the
// result to departures on that UTC day.
func (s *OfferService) Search(ctx context.Context, departure, destination string, date *time.Time) ([]OfferSummary, error) {
	if strings.TrimSpace(departure) == "" || strings.TrimSpace(destination) == "" {
		return nil, domain.Invalid("route", "departureCity and destinationCity are required")
	}

	q := store.OfferQuery{DepartureCity: strings.TrimSpace(departure), DestinationCity: strings.TrimSpace(destination)}
	if date != nil {
		from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 0, 1)
		q.From, q.To = &from, &to
	}

	offers, err := s.store.SearchOffers(ctx, q)
	if err != nil {
		return nil, err
	}

	out := make([]OfferSummary, 0, len(offers))
	for i := range offers {
		out = append(out, s.summarize(ctx, &offers[i]))
	}
	return out, nil
}

func (s *OfferService) summarize(ctx context.Context, o *models.RideOffer) OfferSummary {
	sum := OfferSummary{
		ID:              o.ID,
		DepartureCity:   o.DepartureCity,
		DestinationCity: o.DestinationCity,
		DepartureTime:   o.DepartureTime,
		SeatsAvailable:  o.SeatsAvailable,
		LuggageCount:    o.LuggageCount,
		PricePerPerson:  o.PricePerPerson,
	}
	if o.DriverPersonID == 0 {
		return sum
	}
	driver, err := s.store.FindPerson(ctx, o.DriverPersonID)
	if err != nil {
		return sum
	}
	sum.DriverName = driver.Name
	sum.DriverChatinessLevel = driver.ChatinessLevel
	sum.DriverOverallKmCovered = driver.OverallKmCovered
	if driver.CarID != 0 {
		if car, err := s.store.FindCar(ctx, driver.CarID); err == nil {
			sum.CarMake = car.Make
			sum.CarModel = car.ModelName
		}
	}
	return sum
}
