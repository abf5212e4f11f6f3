// Package store is the persistence boundary of the service. Implementations
// return domain.NotFoundError for absent records.
package store

import (
	"context"
	"time"

	"github.com/sharearide/sharearide-backend/internal/models"
)

// OfferQuery matches offers by route, case-insensitively. From/To bound the
// departure time as a half-open window when both are set.
type OfferQuery struct {
	DepartureCity   string
	DestinationCity string
	From            *time.Time
	To              *time.Time
}

// RideRequestQuery filters on every non-zero field.
type RideRequestQuery struct {
	RideOfferID uint
	PersonID    uint
	RideID      uint
	Status      models.RideRequestStatus
}

// BookingQuery filters on every non-zero field. An empty Statuses matches all.
type BookingQuery struct {
	PassengerID uint
	DriverID    uint
	RideOfferID uint
	Statuses    []models.BookingStatus
}

type Store interface {
	// Transaction runs fn against a transactional view. Every write made through
	// tx becomes visible together when fn returns nil, and none of them otherwise.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	CreateOffer(ctx context.Context, offer *models.RideOffer) error
	SaveOffer(ctx context.Context, offer *models.RideOffer) error
	FindOffer(ctx context.Context, id uint) (*models.RideOffer, error)
	// LockOffer reads the offer and holds a row lock until the transaction ends.
	LockOffer(ctx context.Context, id uint) (*models.RideOffer, error)
	// DecrementCapacity subtracts seats and luggage only if both counters still
	// cover the amounts; otherwise it returns domain.ErrInsufficientCapacity.
	DecrementCapacity(ctx context.Context, id uint, seats, luggage int) error
	DeleteOffer(ctx context.Context, id uint) error
	SearchOffers(ctx context.Context, q OfferQuery) ([]models.RideOffer, error)
	ListOffersByDriver(ctx context.Context, driverID uint) ([]models.RideOffer, error)

	CreateRide(ctx context.Context, ride *models.Ride) error
	SaveRide(ctx context.Context, ride *models.Ride) error
	FindRide(ctx context.Context, id uint) (*models.Ride, error)
	FindRideByOffer(ctx context.Context, offerID uint) (*models.Ride, error)
	ListRidesByDriver(ctx context.Context, driverID uint) ([]models.Ride, error)
	ListRides(ctx context.Context, ids []uint) ([]models.Ride, error)

	CreatePassenger(ctx context.Context, p *models.Passenger) error
	ListPassengersByRide(ctx context.Context, rideID uint) ([]models.Passenger, error)
	ListPassengersByPerson(ctx context.Context, personID uint) ([]models.Passenger, error)

	CreateRideRequest(ctx context.Context, req *models.RideRequest) error
	SaveRideRequest(ctx context.Context, req *models.RideRequest) error
	FindRideRequest(ctx context.Context, id uint) (*models.RideRequest, error)
	LockRideRequest(ctx context.Context, id uint) (*models.RideRequest, error)
	ListRideRequests(ctx context.Context, q RideRequestQuery) ([]models.RideRequest, error)

	CreateBooking(ctx context.Context, b *models.Booking) error
	SaveBooking(ctx context.Context, b *models.Booking) error
	FindBooking(ctx context.Context, id uint) (*models.Booking, error)
	// LockBooking reads the booking and holds a row lock until the transaction ends.
	LockBooking(ctx context.Context, id uint) (*models.Booking, error)
	ListBookings(ctx context.Context, q BookingQuery) ([]models.Booking, error)

	CreatePerson(ctx context.Context, p *models.Person) error
	SavePerson(ctx context.Context, p *models.Person) error
	FindPerson(ctx context.Context, id uint) (*models.Person, error)
	CreateCar(ctx context.Context, c *models.Car) error
	FindCar(ctx context.Context, id uint) (*models.Car, error)
}
