package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/sharearide/sharearide-backend/internal/models"
	"github.com/sharearide/sharearide-backend/internal/store"
	"github.com/sharearide/sharearide-backend/pkg/utils"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

type fakeSender struct {
	messages []*messaging.Message
}

func (s *fakeSender) Send(ctx context.Context, m *messaging.Message) (string, error) {
	s.messages = append(s.messages, m)
	return "projects/test/messages/1", nil
}

func TestEventNotifierRoutingKeys(t *testing.T) {
	pub := &fakePublisher{}
	n := NewEventNotifier(pub, testLogger())
	fixed := time.Date(2025, 7, 1, 6, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return fixed }

	rideID := uint(3)
	req := &models.RideRequest{RideOfferID: 2, PersonID: 9, Status: models.RideRequestStatusAccepted, RideID: &rideID}
	req.ID = 11
	n.RideRequestDecided(context.Background(), req)

	b := &models.Booking{RideOfferID: 2, PassengerID: 9, Status: models.BookingStatusConfirmed, PaymentStatus: models.PaymentStatusCompleted}
	b.ID = 4
	n.BookingUpdated(context.Background(), EventBookingConfirmed, b)

	if len(pub.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(pub.events))
	}
	first, second := pub.events[0], pub.events[1]
	if first.RoutingKey() != "riderequest.ride_request_decided" || first.RideID != 3 || first.Status != "ACCEPTED" {
		t.Fatalf("unexpected decision event %+v", first)
	}
	if second.RoutingKey() != "booking.booking_confirmed" || second.Payment != "COMPLETED" {
		t.Fatalf("unexpected booking event %+v", second)
	}
	if !second.Timestamp.Equal(fixed) {
		t.Fatalf("unexpected timestamp %v", second.Timestamp)
	}
}

func TestEventNotifierSwallowsPublishErrors(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	n := NewEventNotifier(pub, testLogger())
	b := &models.Booking{Status: models.BookingStatusCancelled}
	b.ID = 1
	n.BookingUpdated(context.Background(), EventBookingCancelled, b)
	if len(pub.events) != 1 {
		t.Fatalf("publish should have been attempted once")
	}
}

func TestPushNotifierSkipsPersonsWithoutToken(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	withToken := createPerson(t, st, "Njeri")
	withToken.PushToken = "device-1"
	st.SavePerson(ctx, withToken)
	without := createPerson(t, st, "Otieno")

	sender := &fakeSender{}
	n := NewPushNotifier(st, sender, testLogger())

	accepted := &models.RideRequest{PersonID: withToken.ID, RideOfferID: 1, Status: models.RideRequestStatusAccepted}
	n.RideRequestDecided(ctx, accepted)
	n.RideRequestDecided(ctx, &models.RideRequest{PersonID: without.ID, Status: models.RideRequestStatusRejected})

	if len(sender.messages) != 1 {
		t.Fatalf("expected one push, got %d", len(sender.messages))
	}
	msg := sender.messages[0]
	if msg.Token != "device-1" || msg.Notification.Title != "Ride request accepted" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if msg.Data["status"] != "ACCEPTED" {
		t.Fatalf("unexpected data %+v", msg.Data)
	}
}

func TestPushNotifierIgnoresQuietBookingEvents(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	p := createPerson(t, st, "Wafula")
	p.PushToken = "device-2"
	st.SavePerson(ctx, p)

	sender := &fakeSender{}
	n := NewPushNotifier(st, sender, testLogger())
	b := &models.Booking{PassengerID: p.ID, DepartureCity: "Kisumu", DestinationCity: "Eldoret"}

	n.BookingUpdated(ctx, EventBookingCreated, b)
	n.BookingUpdated(ctx, EventPaymentInitiated, b)
	n.BookingUpdated(ctx, EventBookingRefunded, b)

	if len(sender.messages) != 1 || sender.messages[0].Notification.Title != "Refund processed" {
		t.Fatalf("expected only the refund push, got %d", len(sender.messages))
	}
}

func TestContactNotifierTextsDecision(t *testing.T) {
	var mu sync.Mutex
	var messages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		mu.Lock()
		messages = append(messages, r.PostForm.Get("message"))
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	ctx := context.Background()
	st := store.NewMemoryStore()
	offer := createOffer(t, st, 2, 2)
	rider := createPerson(t, st, "Chebet")

	sms := utils.NewSMSClient("sandbox", "key")
	sms.BaseURL = srv.URL
	n := NewContactNotifier(st, sms, nil, testLogger())

	n.RideRequestDecided(ctx, &models.RideRequest{PersonID: rider.ID, RideOfferID: offer.ID, Status: models.RideRequestStatusRejected})
	// Unknown person: nothing to text.
	n.RideRequestDecided(ctx, &models.RideRequest{PersonID: 404, RideOfferID: offer.ID})
	// Mailer is not configured, so bookings are ignored.
	n.BookingUpdated(ctx, EventBookingConfirmed, &models.Booking{PassengerID: rider.ID})

	mu.Lock()
	defer mu.Unlock()
	if len(messages) != 1 {
		t.Fatalf("expected one SMS, got %d", len(messages))
	}
	if !strings.Contains(messages[0], "Nairobi to Mombasa could not be accepted") {
		t.Fatalf("unexpected SMS %q", messages[0])
	}
}

func TestNotifiersFanOutInOrder(t *testing.T) {
	a, b := &recordingNotifier{}, &recordingNotifier{}
	n := Notifiers{a, b}
	booking := &models.Booking{}
	n.BookingUpdated(context.Background(), EventBookingCancelled, booking)
	if len(a.events()) != 1 || len(b.events()) != 1 {
		t.Fatalf("every notifier must be called")
	}
}

func TestContactCodeSenderStatesConfiguredLifetime(t *testing.T) {
	var mu sync.Mutex
	var messages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		mu.Lock()
		messages = append(messages, r.PostForm.Get("message"))
		mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	ctx := context.Background()
	st := store.NewMemoryStore()
	rider := createPerson(t, st, "Akinyi")
	sms := utils.NewSMSClient("sandbox", "key")
	sms.BaseURL = srv.URL
	b := &models.Booking{PassengerID: rider.ID}

	if err := NewContactCodeSender(st, sms, nil, 10*time.Minute, testLogger()).SendCode(ctx, b, "246810"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := NewContactCodeSender(st, sms, nil, 0, testLogger()).SendCode(ctx, b, "135791"); err != nil {
		t.Fatalf("send: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(messages) != 2 {
		t.Fatalf("expected two SMS, got %d", len(messages))
	}
	if !strings.Contains(messages[0], "246810") || !strings.Contains(messages[0], "expires in 10 minutes") {
		t.Fatalf("unexpected SMS %q", messages[0])
	}
	if strings.Contains(messages[1], "expires") {
		t.Fatalf("a code without ttl must not promise an expiry: %q", messages[1])
	}
}
