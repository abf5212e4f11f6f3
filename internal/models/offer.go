package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodPayPal PaymentMethod = "PAYPAL"
	PaymentMethodCard   PaymentMethod = "CARD"
)

// ParsePaymentMethod accepts any casing; an empty string yields an empty method.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case "", PaymentMethodCash, PaymentMethodPayPal, PaymentMethodCard:
		return m, true
	}
	return "", false
}

// RideOffer is the single source of truth for seat and luggage capacity.
type RideOffer struct {
	gorm.Model
	DepartureCity          string    `json:"departureCity" gorm:"not null;index:idx_offer_route"`
	DestinationCity        string    `json:"destinationCity" gorm:"not null;index:idx_offer_route"`
	DepartureTime          time.Time `json:"departureTime" gorm:"not null;index"`
	SeatsAvailable         int       `json:"seatsAvailable" gorm:"not null;default:0"`
	LuggageCount           int       `json:"luggageCount" gorm:"not null;default:0"`
	PricePerPerson         float64   `json:"pricePerPerson"`
	DriverPersonID         uint      `json:"driverPersonId" gorm:"index"`
	CarID                  uint      `json:"carId"`
	SmokingAllowed         bool      `json:"smokingAllowed"`
	PetsAllowed            bool      `json:"petsAllowed"`
	MusicAllowed           bool      `json:"musicAllowed"`
	ChatLevel              int       `json:"chatLevel"`
	AdditionalNotes        string    `json:"additionalNotes"`
	FlexibleTime           bool      `json:"flexibleTime"`
	FlexibilityMinutes     int       `json:"flexibilityMinutes"`
	Stops                  string    `json:"stops"`
	AcceptedPaymentMethods string    `json:"acceptedPaymentMethods"`
}

func (o *RideOffer) HasCapacity(seats, luggage int) bool {
	return o.SeatsAvailable >= seats && o.LuggageCount >= luggage
}
