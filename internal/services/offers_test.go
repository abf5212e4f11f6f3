package services

import (
	"context"
	"testing"
	"time"

	"github.com/sharearide/sharearide-backend/internal/domain"
	"github.com/sharearide/sharearide-backend/internal/models"
	"github.com/sharearide/sharearide-backend/internal/store"
)

func TestOfferCreateValidates(t *testing.T) {
	svc := NewOfferService(store.NewMemoryStore(), NewKeyedMutex(), testLogger())
	ctx := context.Background()

	tests := []struct {
		name  string
		offer models.RideOffer
	}{
		{"missing departure", models.RideOffer{DestinationCity: "Kisumu", DepartureTime: time.Now()}},
		{"missing destination", models.RideOffer{DepartureCity: "Nakuru", DepartureTime: time.Now()}},
		{"missing time", models.RideOffer{DepartureCity: "Nakuru", DestinationCity: "Kisumu"}},
		{"negative seats", models.RideOffer{DepartureCity: "Nakuru", DestinationCity: "Kisumu", DepartureTime: time.Now(), SeatsAvailable: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer := tt.offer
			if _, err := svc.Create(ctx, &offer); !domain.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestOfferUpdateKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewOfferService(st, NewKeyedMutex(), testLogger())
	offer := createOffer(t, st, 2, 2)

	in := *offer
	in.ID = 0
	in.SeatsAvailable = 5
	in.PricePerPerson = 1800

	updated, err := svc.Update(ctx, offer.ID, &in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != offer.ID || !updated.CreatedAt.Equal(offer.CreatedAt) {
		t.Fatalf("identity lost: %+v", updated.Model)
	}
	stored, _ := st.FindOffer(ctx, offer.ID)
	if stored.SeatsAvailable != 5 || stored.PricePerPerson != 1800 {
		t.Fatalf("update not stored: %+v", stored)
	}

	if _, err := svc.Update(ctx, 999, &in); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestOfferDeleteAndDetail(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewOfferService(st, NewKeyedMutex(), testLogger())

	car := &models.Car{Make: "Mazda", ModelName: "Demio", Plate: "KCB 1"}
	st.CreateCar(ctx, car)
	driver := &models.Person{Name: "Otieno", CarID: car.ID}
	st.CreatePerson(ctx, driver)
	offer := createOffer(t, st, 2, 2)
	offer.DriverPersonID = driver.ID
	st.SaveOffer(ctx, offer)

	detail, err := svc.Detail(ctx, offer.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.Driver == nil || detail.Driver.Name != "Otieno" || detail.Car == nil || detail.Car.Plate != "KCB 1" {
		t.Fatalf("unexpected detail %+v", detail)
	}

	if err := svc.Delete(ctx, offer.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Detail(ctx, offer.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := svc.Delete(ctx, offer.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestOfferSearch(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewOfferService(st, NewKeyedMutex(), testLogger())

	driver := &models.Person{Name: "Achieng", ChatinessLevel: 3, OverallKmCovered: 12000}
	st.CreatePerson(ctx, driver)

	morning := createOffer(t, st, 2, 2)
	morning.DriverPersonID = driver.ID
	st.SaveOffer(ctx, morning)
	later := createOffer(t, st, 1, 0)
	later.DepartureTime = later.DepartureTime.AddDate(0, 0, 1)
	st.SaveOffer(ctx, later)

	all, err := svc.Search(ctx, "nairobi", " MOMBASA ", nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(all) != 2 || all[0].ID != morning.ID {
		t.Fatalf("unexpected results %+v", all)
	}
	if all[0].DriverName != "Achieng" || all[0].DriverOverallKmCovered != 12000 {
		t.Fatalf("driver enrichment missing: %+v", all[0])
	}

	day := morning.DepartureTime
	onDay, _ := svc.Search(ctx, "Nairobi", "Mombasa", &day)
	if len(onDay) != 1 || onDay[0].ID != morning.ID {
		t.Fatalf("date filter failed: %+v", onDay)
	}

	if _, err := svc.Search(ctx, "", "Mombasa", nil); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestOfferListByDriver(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := NewOfferService(st, NewKeyedMutex(), testLogger())

	a := createOffer(t, st, 1, 1)
	a.DriverPersonID = 5
	st.SaveOffer(ctx, a)
	createOffer(t, st, 1, 1)

	list, _ := svc.ListByDriver(ctx, 5)
	if len(list) != 1 || list[0].ID != a.ID {
		t.Fatalf("unexpected list %+v", list)
	}
}
