package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "PENDING"
	BookingStatusConfirmed  BookingStatus = "CONFIRMED"
	BookingStatusUpcoming   BookingStatus = "UPCOMING"
	BookingStatusInProgress BookingStatus = "IN_PROGRESS"
	BookingStatusCompleted  BookingStatus = "COMPLETED"
	BookingStatusCancelled  BookingStatus = "CANCELLED"
)

var bookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusUpcoming,
	BookingStatusInProgress,
	BookingStatusCompleted,
	BookingStatusCancelled,
}

func ParseBookingStatus(s string) (BookingStatus, bool) {
	want := BookingStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, st := range bookingStatuses {
		if st == want {
			return st, true
		}
	}
	return "", false
}

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusCompleted  PaymentStatus = "COMPLETED"
	PaymentStatusRefunded   PaymentStatus = "REFUNDED"
)

// Booking is a reservation and payment record. Driver, car and price fields
// are copied at creation and never re-synced.
type Booking struct {
	gorm.Model
	RideOfferID     uint          `json:"rideOfferId" gorm:"not null;index"`
	RideID          *uint         `json:"rideId" gorm:"index"`
	PassengerID     uint          `json:"passengerId" gorm:"not null;index"`
	DepartureCity   string        `json:"departureCity"`
	DestinationCity string        `json:"destinationCity"`
	DepartureTime   time.Time     `json:"departureTime"`
	PickupLocation  string        `json:"pickupLocation"`
	DropoffLocation string        `json:"dropoffLocation"`
	LuggageCount    int           `json:"luggageCount"`
	Pet             bool          `json:"pet"`
	Kid             bool          `json:"kid"`
	PricePerPerson  float64       `json:"pricePerPerson"`
	TotalPrice      float64       `json:"totalPrice"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	PaymentStatus   PaymentStatus `json:"paymentStatus" gorm:"not null;default:'PENDING'"`
	Status          BookingStatus `json:"status" gorm:"not null;default:'PENDING';index"`
	DriverID        uint          `json:"driverId" gorm:"index"`
	DriverName      string        `json:"driverName"`
	DriverPhone     string        `json:"driverPhone"`
	CarMake         string        `json:"carMake"`
	CarModel        string        `json:"carModel"`
	CarPlate        string        `json:"carPlate"`
	ReceiptURL      string        `json:"receiptUrl,omitempty"`
}
