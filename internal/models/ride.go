package models

import (
	"time"

	"gorm.io/gorm"
)

type RideStatus string

const (
	RideStatusPending    RideStatus = "PENDING"
	RideStatusInProgress RideStatus = "IN_PROGRESS"
	RideStatusCompleted  RideStatus = "COMPLETED"
	RideStatusCancelled  RideStatus = "CANCELLED"
)

// Ride is created on the first accepted request of an offer and shared by
// every later passenger of that offer.
type Ride struct {
	gorm.Model
	RideOfferID      uint       `json:"rideOfferId" gorm:"not null;uniqueIndex"`
	DepartureCity    string     `json:"departureCity"`
	DestinationCity  string     `json:"destinationCity"`
	DepartureTime    time.Time  `json:"departureTime"`
	DriverPersonID   uint       `json:"driverPersonId" gorm:"index"`
	SeatsRemaining   int        `json:"seatsRemaining"`
	LuggageRemaining int        `json:"luggageRemaining"`
	Status           RideStatus `json:"status" gorm:"not null;default:'PENDING'"`
}

// NewRideFromOffer copies route, time and driver from the offer.
func NewRideFromOffer(o *RideOffer) *Ride {
	r := &Ride{
		RideOfferID:     o.ID,
		DepartureCity:   o.DepartureCity,
		DestinationCity: o.DestinationCity,
		DepartureTime:   o.DepartureTime,
		DriverPersonID:  o.DriverPersonID,
		Status:          RideStatusPending,
	}
	r.RefreshSnapshot(o)
	return r
}

// RefreshSnapshot overwrites the cached remaining capacity with the offer's counters.
func (r *Ride) RefreshSnapshot(o *RideOffer) {
	r.SeatsRemaining = o.SeatsAvailable
	r.LuggageRemaining = o.LuggageCount
}
