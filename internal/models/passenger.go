package models

import "gorm.io/gorm"

// Passenger is an append-only manifest entry of a Ride.
type Passenger struct {
	gorm.Model
	RideID             uint          `json:"rideId" gorm:"not null;index"`
	PersonID           uint          `json:"personId" gorm:"not null;index"`
	LuggageCount       int           `json:"luggageCount"`
	PaymentMethod      PaymentMethod `json:"paymentMethod"`
	PaymentOutstanding bool          `json:"paymentOutstanding"`
	PickupLocation     string        `json:"pickupLocation"`
	DropoffLocation    string        `json:"dropoffLocation"`
	Pet                bool          `json:"pet"`
	Kid                bool          `json:"kid"`
	SeatsConsumed      int           `json:"seatsConsumed"`
}

// SeatsFor returns the seats taken by one rider: the rider, plus one each for a pet and a kid.
func SeatsFor(pet, kid bool) int {
	seats := 1
	if pet {
		seats++
	}
	if kid {
		seats++
	}
	return seats
}
