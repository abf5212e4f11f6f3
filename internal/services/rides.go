package services

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/sharearide/sharearide-backend/internal/models"
	"github.com/sharearide/sharearide-backend/internal/store"
)

const (
	RoleDriver    = "DRIVER"
	RolePassenger = "PASSENGER"
)

type Participant struct {
	PersonID uint   `json:"personId"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type RideHistoryEntry struct {
	RideID          uint              `json:"rideId"`
	RideOfferID     uint              `json:"rideOfferId"`
	DepartureCity   string            `json:"departureCity"`
	DestinationCity string            `json:"destinationCity"`
	DepartureTime   time.Time         `json:"departureTime"`
	Status          models.RideStatus `json:"status"`
	Role            string            `json:"role"`
}

// RideService answers read-only questions about rides and their manifests.
type RideService struct {
	store store.Store
}

func NewRideService(st store.Store) *RideService {
	return &RideService{store: st}
}

func (s *RideService) Get(ctx context.Context, id uint) (*models.Ride, error) {
	return s.store.FindRide(ctx, id)
}

func (s *RideService) Passengers(ctx context.Context, rideID uint) ([]models.Passenger, error) {
	if _, err := s.store.FindRide(ctx, rideID); err != nil {
		return nil, err
	}
	return s.store.ListPassengersByRide(ctx, rideID)
}

// Participants lists the driver first, then passengers, once per person.
func (s *RideService) Participants(ctx context.Context, rideID uint) ([]Participant, error) {
	ride, err := s.store.FindRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	passengers, err := s.store.ListPassengersByRide(ctx, rideID)
	if err != nil {
		return nil, err
	}

	out := []Participant{}
	seen := map[uint]bool{}
	add := func(personID uint, role string) {
		if personID == 0 || seen[personID] {
			return
		}
		seen[personID] = true
		out = append(out, Participant{PersonID: personID, Name: s.personName(ctx, personID), Role: role})
	}

	add(ride.DriverPersonID, RoleDriver)
	for _, p := range passengers {
		add(p.PersonID, RolePassenger)
	}
	return out, nil
}

func (s *RideService) personName(ctx context.Context, id uint) string {
	if p, err := s.store.FindPerson(ctx, id); err == nil && p.Name != "" {
		return p.Name
	}
	return strconv.FormatUint(uint64(id), 10)
}

// History lists rides a person drove or joined, newest departure first. A ride
// the person both drove and joined is reported as driven.
func (s *RideService) History(ctx context.Context, personID uint) ([]RideHistoryEntry, error) {
	driven, err := s.store.ListRidesByDriver(ctx, personID)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.ListPassengersByPerson(ctx, personID)
	if err != nil {
		return nil, err
	}

	rideIDs := make([]uint, 0, len(entries))
	for _, p := range entries {
		rideIDs = append(rideIDs, p.RideID)
	}
	joined, err := s.store.ListRides(ctx, rideIDs)
	if err != nil {
		return nil, err
	}

	merged := map[uint]RideHistoryEntry{}
	for _, r := range joined {
		merged[r.ID] = historyEntry(r, RolePassenger)
	}
	for _, r := range driven {
		merged[r.ID] = historyEntry(r, RoleDriver)
	}

	out := make([]RideHistoryEntry, 0, len(merged))
	for _, e := range merged {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DepartureTime.Equal(out[j].DepartureTime) {
			return out[i].RideID > out[j].RideID
		}
		return out[i].DepartureTime.After(out[j].DepartureTime)
	})
	return out, nil
}

func historyEntry(r models.Ride, role string) RideHistoryEntry {
	return RideHistoryEntry{
		RideID:          r.ID,
		RideOfferID:     r.RideOfferID,
		DepartureCity:   r.DepartureCity,
		DestinationCity: r.DestinationCity,
		DepartureTime:   r.DepartureTime,
		Status:          r.Status,
		Role:            role,
	}
}
