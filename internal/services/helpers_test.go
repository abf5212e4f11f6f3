package services

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sharearide/sharearide-backend/internal/models"
	"github.com/sharearide/sharearide-backend/internal/store"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// manualScheduler records armed tasks and runs them on demand.
type manualScheduler struct {
	mu     sync.Mutex
	delays []time.Duration
	tasks  []Task
}

func (s *manualScheduler) RunAfter(d time.Duration, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	s.tasks = append(s.tasks, task)
	return nil
}

func (s *manualScheduler) runAll(ctx context.Context) {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()
	for _, task := range tasks {
		task(ctx)
	}
}

type bookingEvent struct {
	event     string
	bookingID uint
}

type recordingNotifier struct {
	mu        sync.Mutex
	decisions []models.RideRequest
	bookings  []bookingEvent
}

func (n *recordingNotifier) RideRequestDecided(ctx context.Context, req *models.RideRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.decisions = append(n.decisions, *req)
}

func (n *recordingNotifier) BookingUpdated(ctx context.Context, event string, b *models.Booking) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bookings = append(n.bookings, bookingEvent{event: event, bookingID: b.ID})
}

func (n *recordingNotifier) events() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.bookings))
	for _, b := range n.bookings {
		out = append(out, b.event)
	}
	return out
}

func createOffer(t *testing.T, st store.Store, seats, luggage int) *models.RideOffer {
	t.Helper()
	o := &models.RideOffer{
		DepartureCity:   "Nairobi",
		DestinationCity: "Mombasa",
		DepartureTime:   time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC),
		SeatsAvailable:  seats,
		LuggageCount:    luggage,
		PricePerPerson:  1500,
	}
	if err := st.CreateOffer(context.Background(), o); err != nil {
		t.Fatalf("create offer: %v", err)
	}
	return o
}

func createPerson(t *testing.T, st store.Store, name string) *models.Person {
	t.Helper()
	p := &models.Person{Name: name, PhoneNumber: "+254700000000", Email: "rider@example.com"}
	if err := st.CreatePerson(context.Background(), p); err != nil {
		t.Fatalf("create person: %v", err)
	}
	return p
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
