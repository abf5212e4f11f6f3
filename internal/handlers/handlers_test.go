package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sharearide/sharearide-backend/internal/middleware"
	"github.com/sharearide/sharearide-backend/internal/models"
	"github.com/sharearide/sharearide-backend/internal/services"
	"github.com/sharearide/sharearide-backend/internal/store"
	"github.com/sharearide/sharearide-backend/pkg/utils"
	"github.com/sirupsen/logrus"
)

type queuedScheduler struct {
	mu    sync.Mutex
	tasks []services.Task
}

func (s *queuedScheduler) RunAfter(d time.Duration, task services.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
	return nil
}

func (s *queuedScheduler) fire() {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()
	for _, task := range tasks {
		task(context.Background())
	}
}

type testAPI struct {
	router *gin.Engine
	store  *store.MemoryStore
	sched  *queuedScheduler
}

func newTestAPI(t *testing.T, secret string) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)

	st := store.NewMemoryStore()
	sched := &queuedScheduler{}
	locks := services.NewKeyedMutex()
	hub := services.NewHub(log)

	r := gin.New()
	r.Use(middleware.RequestID())
	RegisterRoutes(r, Services{
		Offers:   services.NewOfferService(st, locks, log),
		Flow:     services.NewRideFlow(st, sched, hub, locks, 7*time.Second, log),
		Rides:    services.NewRideService(st),
		Bookings: services.NewBookingService(st, services.NewMemoryCodeStore(5*time.Minute), nil, hub, nil, log),
		Persons:  services.NewPersonService(st),
		Hub:      hub,
	}, secret, log)

	return &testAPI{router: r, store: st, sched: sched}
}

func (a *testAPI) do(method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func (a *testAPI) createOffer(t *testing.T, seats int) models.RideOffer {
	t.Helper()
	w := a.do("POST", "/api/rideoffers", gin.H{
		"departureCity":   "Nairobi",
		"destinationCity": "Mombasa",
		"departureTime":   "2025-07-01T08:00:00Z",
		"seatsAvailable":  seats,
		"luggageCount":    2,
		"pricePerPerson":  1500,
	}, "X-User-Id", "5")
	if w.Code != 201 {
		t.Fatalf("create offer: %d %s", w.Code, w.Body.String())
	}
	var offer models.RideOffer
	decode(t, w, &offer)
	return offer
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, "")
	w := api.do("GET", "/health", nil)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get(middleware.RequestIDHeader) == "" {
		t.Fatalf("request id header missing")
	}
}

func TestCreateOfferDefaultsDriverToCaller(t *testing.T) {
	api := newTestAPI(t, "")
	offer := api.createOffer(t, 3)
	if offer.DriverPersonID != 5 {
		t.Fatalf("expected driver 5, got %d", offer.DriverPersonID)
	}

	w := api.do("POST", "/api/rideoffers", gin.H{"departureCity": "Nairobi"})
	if w.Code != 400 {
		t.Fatalf("expected 400 for an incomplete offer, got %d", w.Code)
	}
	if w := api.do("GET", "/api/rideoffers/999", nil); w.Code != 404 {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if w := api.do("GET", "/api/rideoffers/abc", nil); w.Code != 400 {
		t.Fatalf("expected 400 for a bad id, got %d", w.Code)
	}
}

func TestSearchRejectsBadDate(t *testing.T) {
	api := newTestAPI(t, "")
	api.createOffer(t, 3)

	w := api.do("GET", "/api/rideoffers/search?departureCity=nairobi&destinationCity=mombasa&date=01-07-2025", nil)
	if w.Code != 400 {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	w = api.do("GET", "/api/rideoffers/search?departureCity=nairobi&destinationCity=mombasa&date=2025-07-01", nil)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
	}
	var results []map[string]interface{}
	decode(t, w, &results)
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}
}

func TestRideRequestLifecycle(t *testing.T) {
	api := newTestAPI(t, "")
	offer := api.createOffer(t, 1)

	w := api.do("POST", "/api/riderequests", gin.H{"rideOfferId": offer.ID}, "X-User-Id", "8")
	if w.Code != 201 {
		t.Fatalf("submit: %d %s", w.Code, w.Body.String())
	}
	var req models.RideRequest
	decode(t, w, &req)
	if req.Status != models.RideRequestStatusPending || req.PersonID != 8 {
		t.Fatalf("unexpected request %+v", req)
	}

	w = api.do("POST", "/api/riderequests", gin.H{"rideOfferId": offer.ID, "paymentMethod": "BITCOIN"})
	if w.Code != 400 {
		t.Fatalf("expected 400 for unknown payment method, got %d", w.Code)
	}

	api.sched.fire()

	w = api.do("GET", "/api/riderequests?status=accepted&rideOfferId=1", nil)
	var accepted []models.RideRequest
	decode(t, w, &accepted)
	if len(accepted) != 1 || accepted[0].RideID == nil {
		t.Fatalf("expected one accepted request, got %s", w.Body.String())
	}

	w = api.do("GET", "/api/rides/1/participants", nil)
	var participants []services.Participant
	decode(t, w, &participants)
	if len(participants) != 2 || participants[0].Role != services.RoleDriver {
		t.Fatalf("unexpected participants %s", w.Body.String())
	}

	if w := api.do("GET", "/api/riderequests?status=maybe", nil); w.Code != 400 {
		t.Fatalf("expected 400 for unknown status, got %d", w.Code)
	}
}

func TestBookingPaymentFlow(t *testing.T) {
	api := newTestAPI(t, "")
	offer := api.createOffer(t, 3)

	w := api.do("POST", "/api/bookings", gin.H{"rideOfferId": offer.ID, "paymentMethod": "CARD"}, "X-User-Id", "9")
	if w.Code != 201 {
		t.Fatalf("create booking: %d %s", w.Code, w.Body.String())
	}
	var booking models.Booking
	decode(t, w, &booking)
	if booking.PassengerID != 9 || booking.RideOfferID != offer.ID {
		t.Fatalf("unexpected booking %+v", booking)
	}

	w = api.do("POST", "/api/payments/process", gin.H{"bookingId": booking.ID, "paymentMethod": "CARD"})
	var result services.PaymentResult
	decode(t, w, &result)
	if w.Code != 200 || !result.Success || !result.RequiresOTP {
		t.Fatalf("process: %d %s", w.Code, w.Body.String())
	}

	w = api.do("POST", "/api/payments/verify-otp", gin.H{"bookingId": booking.ID, "otp": "nope"})
	decode(t, w, &result)
	if w.Code != 200 || result.Success || !result.RequiresOTP {
		t.Fatalf("wrong code should answer 200 with success=false: %d %s", w.Code, w.Body.String())
	}

	w = api.do("POST", "/api/payments/verify-otp", gin.H{"bookingId": booking.ID, "otp": services.BypassCode})
	decode(t, w, &result)
	if !result.Success {
		t.Fatalf("bypass code rejected: %s", w.Body.String())
	}

	w = api.do("POST", "/api/payments/process", gin.H{"bookingId": booking.ID})
	if w.Code != 409 {
		t.Fatalf("expected 409 for a completed payment, got %d", w.Code)
	}

	w = api.do("GET", "/api/bookings/user/9?status=upcoming", nil)
	var upcoming []models.Booking
	decode(t, w, &upcoming)
	if len(upcoming) != 1 || upcoming[0].Status != models.BookingStatusConfirmed {
		t.Fatalf("unexpected upcoming list %s", w.Body.String())
	}

	w = api.do("POST", "/api/payments/refund/"+jsonID(booking.ID), nil)
	var refund services.RefundResult
	decode(t, w, &refund)
	if w.Code != 200 || !refund.Success {
		t.Fatalf("refund: %d %s", w.Code, w.Body.String())
	}

	if w := api.do("PUT", "/api/bookings/404/cancel", nil); w.Code != 404 {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestIdentity(t *testing.T) {
	api := newTestAPI(t, "secret")

	if w := api.do("GET", "/api/rideoffers/driver/1", nil, "Authorization", "Bearer not-a-token"); w.Code != 401 {
		t.Fatalf("expected 401 for a bad token, got %d", w.Code)
	}
	if w := api.do("GET", "/api/rideoffers/driver/1", nil, "X-User-Id", "zero"); w.Code != 400 {
		t.Fatalf("expected 400 for a bad X-User-Id, got %d", w.Code)
	}

	token, err := utils.GenerateToken(42, "secret", time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	w := api.do("POST", "/api/persons", gin.H{"name": "Wanjiru Kamau"})
	if w.Code != 201 {
		t.Fatalf("create person: %d %s", w.Code, w.Body.String())
	}
	w = api.do("POST", "/api/bookings", gin.H{"rideOfferId": api.createOffer(t, 2).ID},
		"Authorization", "Bearer "+token)
	var booking models.Booking
	decode(t, w, &booking)
	if booking.PassengerID != 42 {
		t.Fatalf("expected the token's person, got %d", booking.PassengerID)
	}
}

func TestPersonsAndCars(t *testing.T) {
	api := newTestAPI(t, "")

	if w := api.do("POST", "/api/cars", gin.H{"make": "Toyota"}); w.Code != 400 {
		t.Fatalf("expected 400 for a car without plate, got %d", w.Code)
	}
	w := api.do("POST", "/api/cars", gin.H{"make": "Toyota", "model": "Probox", "plate": "KDA 123A"})
	if w.Code != 201 {
		t.Fatalf("create car: %d %s", w.Code, w.Body.String())
	}
	var car models.Car
	decode(t, w, &car)
	if car.ModelName != "Probox" || car.Make != "Toyota" {
		t.Fatalf("car fields not stored: %+v", car)
	}

	w = api.do("POST", "/api/persons", gin.H{"name": "Wanjiru Kamau", "carId": car.ID})
	var person models.Person
	decode(t, w, &person)

	w = api.do("GET", "/api/persons/"+jsonID(person.ID), nil)
	var contact services.PersonContact
	decode(t, w, &contact)
	if contact.Forename != "Wanjiru" || contact.Lastname != "Kamau" {
		t.Fatalf("unexpected contact %+v", contact)
	}

	if w := api.do("PUT", "/api/persons/"+jsonID(person.ID)+"/push-token", gin.H{}); w.Code != 400 {
		t.Fatalf("expected 400 without token, got %d", w.Code)
	}
	if w := api.do("PUT", "/api/persons/"+jsonID(person.ID)+"/push-token", gin.H{"token": "abc"}); w.Code != 200 && w.Code != 204 {
		t.Fatalf("push token: %d %s", w.Code, w.Body.String())
	}
}

func jsonID(id uint) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}
