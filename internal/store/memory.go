package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sharearide/sharearide-backend/internal/domain"
	"github.com/sharearide/sharearide-backend/internal/models"
	"gorm.io/gorm"
)

// table keeps value copies so callers never alias stored rows.
type table[T any] struct {
	rows  map[uint]T
	next  uint
	model func(*T) *gorm.Model
}

func newTable[T any](model func(*T) *gorm.Model) *table[T] {
	return &table[T]{rows: make(map[uint]T), model: model}
}

func (t *table[T]) clone() *table[T] {
	c := &table[T]{rows: make(map[uint]T, len(t.rows)), next: t.next, model: t.model}
	for id, row := range t.rows {
		c.rows[id] = row
	}
	return c
}

func (t *table[T]) insert(v *T, now time.Time) {
	m := t.model(v)
	t.next++
	m.ID = t.next
	m.CreatedAt = now
	m.UpdatedAt = now
	t.rows[m.ID] = *v
}

// save inserts when the ID is unset, like gorm's Save.
func (t *table[T]) save(v *T, now time.Time) bool {
	m := t.model(v)
	if m.ID == 0 {
		t.insert(v, now)
		return true
	}
	if _, ok := t.rows[m.ID]; !ok {
		return false
	}
	m.UpdatedAt = now
	t.rows[m.ID] = *v
	return true
}

func (t *table[T]) get(id uint) (*T, bool) {
	row, ok := t.rows[id]
	if !ok {
		return nil, false
	}
	return &row, true
}

func (t *table[T]) filter(match func(*T) bool) []T {
	ids := make([]uint, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := []T{}
	for _, id := range ids {
		row := t.rows[id]
		if match == nil || match(&row) {
			out = append(out, row)
		}
	}
	return out
}

type memData struct {
	offers     *table[models.RideOffer]
	rides      *table[models.Ride]
	passengers *table[models.Passenger]
	requests   *table[models.RideRequest]
	bookings   *table[models.Booking]
	persons    *table[models.Person]
	cars       *table[models.Car]
}

func newMemData() *memData {
	return &memData{
		offers:     newTable(func(o *models.RideOffer) *gorm.Model { return &o.Model }),
		rides:      newTable(func(r *models.Ride) *gorm.Model { return &r.Model }),
		passengers: newTable(func(p *models.Passenger) *gorm.Model { return &p.Model }),
		requests:   newTable(func(r *models.RideRequest) *gorm.Model { return &r.Model }),
		bookings:   newTable(func(b *models.Booking) *gorm.Model { return &b.Model }),
		persons:    newTable(func(p *models.Person) *gorm.Model { return &p.Model }),
		cars:       newTable(func(c *models.Car) *gorm.Model { return &c.Model }),
	}
}

func (d *memData) clone() *memData {
	return &memData{
		offers:     d.offers.clone(),
		rides:      d.rides.clone(),
		passengers: d.passengers.clone(),
		requests:   d.requests.clone(),
		bookings:   d.bookings.clone(),
		persons:    d.persons.clone(),
		cars:       d.cars.clone(),
	}
}

// MemoryStore is a process-local Store used in development and tests.
// Transactions run one at a time against a copy that replaces the live data
// on commit.
type MemoryStore struct {
	mu   *sync.Mutex // nil inside a transaction
	data *memData
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{mu: &sync.Mutex{}, data: newMemData(), now: time.Now}
}

func (s *MemoryStore) lock() func() {
	if s.mu == nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if s.mu == nil {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &MemoryStore{data: s.data.clone(), now: s.now}
	if err := fn(tx); err != nil {
		return err
	}
	s.data = tx.data
	return nil
}

func (s *MemoryStore) CreateOffer(ctx context.Context, offer *models.RideOffer) error {
	defer s.lock()()
	s.data.offers.insert(offer, s.now())
	return nil
}

func (s *MemoryStore) SaveOffer(ctx context.Context, offer *models.RideOffer) error {
	defer s.lock()()
	if !s.data.offers.save(offer, s.now()) {
		return domain.NotFound("ride offer", offer.ID)
	}
	return nil
}

func (s *MemoryStore) FindOffer(ctx context.Context, id uint) (*models.RideOffer, error) {
	defer s.lock()()
	if o, ok := s.data.offers.get(id); ok {
		return o, nil
	}
	return nil, domain.NotFound("ride offer", id)
}

func (s *MemoryStore) LockOffer(ctx context.Context, id uint) (*models.RideOffer, error) {
	return s.FindOffer(ctx, id)
}

func (s *MemoryStore) DecrementCapacity(ctx context.Context, id uint, seats, luggage int) error {
	defer s.lock()()
	o, ok := s.data.offers.get(id)
	if !ok {
		return domain.NotFound("ride offer", id)
	}
	if !o.HasCapacity(seats, luggage) {
		return domain.ErrInsufficientCapacity
	}
	o.SeatsAvailable -= seats
	o.LuggageCount -= luggage
	s.data.offers.save(o, s.now())
	return nil
}

func (s *MemoryStore) DeleteOffer(ctx context.Context, id uint) error {
	defer s.lock()()
	if _, ok := s.data.offers.rows[id]; !ok {
		return domain.NotFound("ride offer", id)
	}
	delete(s.data.offers.rows, id)
	return nil
}

func (s *MemoryStore) SearchOffers(ctx context.Context, q OfferQuery) ([]models.RideOffer, error) {
	defer s.lock()()
	out := s.data.offers.filter(func(o *models.RideOffer) bool {
		if !strings.EqualFold(o.DepartureCity, q.DepartureCity) || !strings.EqualFold(o.DestinationCity, q.DestinationCity) {
			return false
		}
		if q.From != nil && o.DepartureTime.Before(*q.From) {
			return false
		}
		if q.To != nil && !o.DepartureTime.Before(*q.To) {
			return false
		}
		return true
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].DepartureTime.Before(out[j].DepartureTime) })
	return out, nil
}

func (s *MemoryStore) ListOffersByDriver(ctx context.Context, driverID uint) ([]models.RideOffer, error) {
	defer s.lock()()
	return s.data.offers.filter(func(o *models.RideOffer) bool { return o.DriverPersonID == driverID }), nil
}

func (s *MemoryStore) CreateRide(ctx context.Context, ride *models.Ride) error {
	defer s.lock()()
	for _, r := range s.data.rides.rows {
		if r.RideOfferID == ride.RideOfferID {
			return domain.ConflictError{Resource: "ride", Msg: "offer already has a ride"}
		}
	}
	s.data.rides.insert(ride, s.now())
	return nil
}

func (s *MemoryStore) SaveRide(ctx context.Context, ride *models.Ride) error {
	defer s.lock()()
	if !s.data.rides.save(ride, s.now()) {
		return domain.NotFound("ride", ride.ID)
	}
	return nil
}

func (s *MemoryStore) FindRide(ctx context.Context, id uint) (*models.Ride, error) {
	defer s.lock()()
	if r, ok := s.data.rides.get(id); ok {
		return r, nil
	}
	return nil, domain.NotFound("ride", id)
}

func (s *MemoryStore) FindRideByOffer(ctx context.Context, offerID uint) (*models.Ride, error) {
	defer s.lock()()
	rides := s.data.rides.filter(func(r *models.Ride) bool { return r.RideOfferID == offerID })
	if len(rides) == 0 {
		return nil, domain.NotFoundError{Resource: "ride for offer", ID: offerID}
	}
	return &rides[0], nil
}

func (s *MemoryStore) ListRidesByDriver(ctx context.Context, driverID uint) ([]models.Ride, error) {
	defer s.lock()()
	return s.data.rides.filter(func(r *models.Ride) bool { return r.DriverPersonID == driverID }), nil
}

func (s *MemoryStore) ListRides(ctx context.Context, ids []uint) ([]models.Ride, error) {
	defer s.lock()()
	want := make(map[uint]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return s.data.rides.filter(func(r *models.Ride) bool { return want[r.ID] }), nil
}

func (s *MemoryStore) CreatePassenger(ctx context.Context, p *models.Passenger) error {
	defer s.lock()()
	s.data.passengers.insert(p, s.now())
	return nil
}

func (s *MemoryStore) ListPassengersByRide(ctx context.Context, rideID uint) ([]models.Passenger, error) {
	defer s.lock()()
	return s.data.passengers.filter(func(p *models.Passenger) bool { return p.RideID == rideID }), nil
}

func (s *MemoryStore) ListPassengersByPerson(ctx context.Context, personID uint) ([]models.Passenger, error) {
	defer s.lock()()
	return s.data.passengers.filter(func(p *models.Passenger) bool { return p.PersonID == personID }), nil
}

func (s *MemoryStore) CreateRideRequest(ctx context.Context, req *models.RideRequest) error {
	defer s.lock()()
	s.data.requests.insert(req, s.now())
	return nil
}

func (s *MemoryStore) SaveRideRequest(ctx context.Context, req *models.RideRequest) error {
	defer s.lock()()
	if !s.data.requests.save(req, s.now()) {
		return domain.NotFound("ride request", req.ID)
	}
	return nil
}

func (s *MemoryStore) FindRideRequest(ctx context.Context, id uint) (*models.RideRequest, error) {
	defer s.lock()()
	if r, ok := s.data.requests.get(id); ok {
		return r, nil
	}
	return nil, domain.NotFound("ride request", id)
}

func (s *MemoryStore) LockRideRequest(ctx context.Context, id uint) (*models.RideRequest, error) {
	return s.FindRideRequest(ctx, id)
}

func (s *MemoryStore) ListRideRequests(ctx context.Context, q RideRequestQuery) ([]models.RideRequest, error) {
	defer s.lock()()
	return s.data.requests.filter(func(r *models.RideRequest) bool {
		if q.RideOfferID != 0 && r.RideOfferID != q.RideOfferID {
			return false
		}
		if q.PersonID != 0 && r.PersonID != q.PersonID {
			return false
		}
		if q.RideID != 0 && (r.RideID == nil || *r.RideID != q.RideID) {
			return false
		}
		if q.Status != "" && r.Status != q.Status {
			return false
		}
		return true
	}), nil
}

func (s *MemoryStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	defer s.lock()()
	s.data.bookings.insert(b, s.now())
	return nil
}

func (s *MemoryStore) SaveBooking(ctx context.Context, b *models.Booking) error {
	defer s.lock()()
	if !s.data.bookings.save(b, s.now()) {
		return domain.NotFound("booking", b.ID)
	}
	return nil
}

func (s *MemoryStore) FindBooking(ctx context.Context, id uint) (*models.Booking, error) {
	defer s.lock()()
	if b, ok := s.data.bookings.get(id); ok {
		return b, nil
	}
	return nil, domain.NotFound("booking", id)
}

func (s *MemoryStore) LockBooking(ctx context.Context, id uint) (*models.Booking, error) {
	return s.FindBooking(ctx, id)
}

func (s *MemoryStore) ListBookings(ctx context.Context, q BookingQuery) ([]models.Booking, error) {
	defer s.lock()()
	return s.data.bookings.filter(func(b *models.Booking) bool {
		if q.PassengerID != 0 && b.PassengerID != q.PassengerID {
			return false
		}
		if q.DriverID != 0 && b.DriverID != q.DriverID {
			return false
		}
		if q.RideOfferID != 0 && b.RideOfferID != q.RideOfferID {
			return false
		}
		if len(q.Statuses) == 0 {
			return true
		}
		for _, st := range q.Statuses {
			if b.Status == st {
				return true
			}
		}
		return false
	}), nil
}

func (s *MemoryStore) CreatePerson(ctx context.Context, p *models.Person) error {
	defer s.lock()()
	s.data.persons.insert(p, s.now())
	return nil
}

func (s *MemoryStore) SavePerson(ctx context.Context, p *models.Person) error {
	defer s.lock()()
	if !s.data.persons.save(p, s.now()) {
		return domain.NotFound("person", p.ID)
	}
	return nil
}

func (s *MemoryStore) FindPerson(ctx context.Context, id uint) (*models.Person, error) {
	defer s.lock()()
	if p, ok := s.data.persons.get(id); ok {
		return p, nil
	}
	return nil, domain.NotFound("person", id)
}

func (s *MemoryStore) CreateCar(ctx context.Context, c *models.Car) error {
	defer s.lock()()
	s.data.cars.insert(c, s.now())
	return nil
}

func (s *MemoryStore) FindCar(ctx context.Context, id uint) (*models.Car, error) {
	defer s.lock()()
	if c, ok := s.data.cars.get(id); ok {
		return c, nil
	}
	return nil, domain.NotFound("car", id)
}
