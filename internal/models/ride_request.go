package models

import (
	"time"

	"gorm.io/gorm"
)

type RideRequestStatus string

const (
	RideRequestStatusPending  RideRequestStatus = "PENDING"
	RideRequestStatusAccepted RideRequestStatus = "ACCEPTED"
	RideRequestStatusRejected RideRequestStatus = "REJECTED"
)

type RideRequest struct {
	gorm.Model
	RideOfferID     uint              `json:"rideOfferId" gorm:"not null;index"`
	PersonID        uint              `json:"personId" gorm:"not null;index"`
	PickupLocation  string            `json:"pickupLocation"`
	DropoffLocation string            `json:"dropoffLocation"`
	Timestamp       time.Time         `json:"timestamp"`
	LuggageCount    int               `json:"luggageCount"`
	Pet             bool              `json:"pet"`
	Kid             bool              `json:"kid"`
	PaymentMethod   PaymentMethod     `json:"paymentMethod"`
	Status          RideRequestStatus `json:"status" gorm:"not null;default:'PENDING';index"`
	RideID          *uint             `json:"rideId" gorm:"index"`
	PassengerID     *uint             `json:"passengerId"`
	DecidedAt       *time.Time        `json:"decidedAt,omitempty"`
}

func (r *RideRequest) IsPending() bool {
	return r.Status == RideRequestStatusPending
}

func (r *RideRequest) SeatsNeeded() int {
	return SeatsFor(r.Pet, r.Kid)
}
