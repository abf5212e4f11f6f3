package store

import (
	"context"
	"errors"
	"strings"

	"github.com/sharearide/sharearide-backend/internal/domain"
	"github.com/sharearide/sharearide-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists records in Postgres through gorm.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// first loads one row by primary key and maps a missing row to NotFoundError.
func first[T any](db *gorm.DB, resource string, id uint) (*T, error) {
	var out T
	if err := db.First(&out, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundError{Resource: resource, ID: id, Err: err}
		}
		return nil, err
	}
	return &out, nil
}

func (s *GormStore) CreateOffer(ctx context.Context, offer *models.RideOffer) error {
	return s.conn(ctx).Create(offer).Error
}

func (s *GormStore) SaveOffer(ctx context.Context, offer *models.RideOffer) error {
	return s.conn(ctx).Save(offer).Error
}

func (s *GormStore) FindOffer(ctx context.Context, id uint) (*models.RideOffer, error) {
	return first[models.RideOffer](s.conn(ctx), "ride offer", id)
}

func (s *GormStore) LockOffer(ctx context.Context, id uint) (*models.RideOffer, error) {
	return first[models.RideOffer](s.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "ride offer", id)
}

func (s *GormStore) DecrementCapacity(ctx context.Context, id uint, seats, luggage int) error {
	res := s.conn(ctx).Model(&models.RideOffer{}).
		Where("id = ? AND seats_available >= ? AND luggage_count >= ?", id, seats, luggage).
		Updates(map[string]interface{}{
			"seats_available": gorm.Expr("seats_available - ?", seats),
			"luggage_count":   gorm.Expr("luggage_count - ?", luggage),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInsufficientCapacity
	}
	return nil
}

func (s *GormStore) DeleteOffer(ctx context.Context, id uint) error {
	res := s.conn(ctx).Delete(&models.RideOffer{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("ride offer", id)
	}
	return nil
}

func (s *GormStore) SearchOffers(ctx context.Context, q OfferQuery) ([]models.RideOffer, error) {
	var offers []models.RideOffer
	db := s.conn(ctx).
		Where("LOWER(departure_city) = ? AND LOWER(destination_city) = ?",
			strings.ToLower(q.DepartureCity), strings.ToLower(q.DestinationCity))
	if q.From != nil {
		db = db.Where("departure_time >= ?", *q.From)
	}
	if q.To != nil {
		db = db.Where("departure_time < ?", *q.To)
	}
	err := db.Order("departure_time ASC").Order("id ASC").Find(&offers).Error
	return offers, err
}

func (s *GormStore) ListOffersByDriver(ctx context.Context, driverID uint) ([]models.RideOffer, error) {
	var offers []models.RideOffer
	err := s.conn(ctx).Where("driver_person_id = ?", driverID).Order("id ASC").Find(&offers).Error
	return offers, err
}

func (s *GormStore) CreateRide(ctx context.Context, ride *models.Ride) error {
	err := s.conn(ctx).Create(ride).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ConflictError{Resource: "ride", Msg: "offer already has a ride"}
	}
	return err
}

func (s *GormStore) SaveRide(ctx context.Context, ride *models.Ride) error {
	return s.conn(ctx).Save(ride).Error
}

func (s *GormStore) FindRide(ctx context.Context, id uint) (*models.Ride, error) {
	return first[models.Ride](s.conn(ctx), "ride", id)
}

func (s *GormStore) FindRideByOffer(ctx context.Context, offerID uint) (*models.Ride, error) {
	var ride models.Ride
	if err := s.conn(ctx).Where("ride_offer_id = ?", offerID).First(&ride).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundError{Resource: "ride for offer", ID: offerID, Err: err}
		}
		return nil, err
	}
	return &ride, nil
}

func (s *GormStore) ListRidesByDriver(ctx context.Context, driverID uint) ([]models.Ride, error) {
	var rides []models.Ride
	err := s.conn(ctx).Where("driver_person_id = ?", driverID).Order("id ASC").Find(&rides).Error
	return rides, err
}

func (s *GormStore) ListRides(ctx context.Context, ids []uint) ([]models.Ride, error) {
	rides := []models.Ride{}
	if len(ids) == 0 {
		return rides, nil
	}
	err := s.conn(ctx).Where("id IN ?", ids).Order("id ASC").Find(&rides).Error
	return rides, err
}

func (s *GormStore) CreatePassenger(ctx context.Context, p *models.Passenger) error {
	return s.conn(ctx).Create(p).Error
}

func (s *GormStore) ListPassengersByRide(ctx context.Context, rideID uint) ([]models.Passenger, error) {
	var passengers []models.Passenger
	err := s.conn(ctx).Where("ride_id = ?", rideID).Order("id ASC").Find(&passengers).Error
	return passengers, err
}

func (s *GormStore) ListPassengersByPerson(ctx context.Context, personID uint) ([]models.Passenger, error) {
	var passengers []models.Passenger
	err := s.conn(ctx).Where("person_id = ?", personID).Order("id ASC").Find(&passengers).Error
	return passengers, err
}

func (s *GormStore) CreateRideRequest(ctx context.Context, req *models.RideRequest) error {
	return s.conn(ctx).Create(req).Error
}

func (s *GormStore) SaveRideRequest(ctx context.Context, req *models.RideRequest) error {
	return s.conn(ctx).Save(req).Error
}

func (s *GormStore) FindRideRequest(ctx context.Context, id uint) (*models.RideRequest, error) {
	return first[models.RideRequest](s.conn(ctx), "ride request", id)
}

func (s *GormStore) LockRideRequest(ctx context.Context, id uint) (*models.RideRequest, error) {
	return first[models.RideRequest](s.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "ride request", id)
}

func (s *GormStore) ListRideRequests(ctx context.Context, q RideRequestQuery) ([]models.RideRequest, error) {
	var requests []models.RideRequest
	db := s.conn(ctx)
	if q.RideOfferID != 0 {
		db = db.Where("ride_offer_id = ?", q.RideOfferID)
	}
	if q.PersonID != 0 {
		db = db.Where("person_id = ?", q.PersonID)
	}
	if q.RideID != 0 {
		db = db.Where("ride_id = ?", q.RideID)
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	err := db.Order("id ASC").Find(&requests).Error
	return requests, err
}

func (s *GormStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	return s.conn(ctx).Create(b).Error
}

func (s *GormStore) SaveBooking(ctx context.Context, b *models.Booking) error {
	return s.conn(ctx).Save(b).Error
}

func (s *GormStore) FindBooking(ctx context.Context, id uint) (*models.Booking, error) {
	return first[models.Booking](s.conn(ctx), "booking", id)
}

func (s *GormStore) LockBooking(ctx context.Context, id uint) (*models.Booking, error) {
	return first[models.Booking](s.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "booking", id)
}

func (s *GormStore) ListBookings(ctx context.Context, q BookingQuery) ([]models.Booking, error) {
	var bookings []models.Booking
	db := s.conn(ctx)
	if q.PassengerID != 0 {
		db = db.Where("passenger_id = ?", q.PassengerID)
	}
	if q.DriverID != 0 {
		db = db.Where("driver_id = ?", q.DriverID)
	}
	if q.RideOfferID != 0 {
		db = db.Where("ride_offer_id = ?", q.RideOfferID)
	}
	if len(q.Statuses) > 0 {
		db = db.Where("status IN ?", q.Statuses)
	}
	err := db.Order("id ASC").Find(&bookings).Error
	return bookings, err
}

func (s *GormStore) CreatePerson(ctx context.Context, p *models.Person) error {
	return s.conn(ctx).Create(p).Error
}

func (s *GormStore) SavePerson(ctx context.Context, p *models.Person) error {
	return s.conn(ctx).Save(p).Error
}

func (s *GormStore) FindPerson(ctx context.Context, id uint) (*models.Person, error) {
	return first[models.Person](s.conn(ctx), "person", id)
}

func (s *GormStore) CreateCar(ctx context.Context, c *models.Car) error {
	return s.conn(ctx).Create(c).Error
}

func (s *GormStore) FindCar(ctx context.Context, id uint) (*models.Car, error) {
	return first[models.Car](s.conn(ctx), "car", id)
}
