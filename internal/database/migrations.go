package database

import (
	"github.com/sharearide/sharearide-backend/internal/models"
	"gorm.io/gorm"
)

// capacityConstraints keep offer counters from going negative even if a
// writer bypasses the guarded decrement.
var capacityConstraints = []struct {
	name  string
	check string
}{
	{"ride_offers_seats_available_check", "seats_available >= 0"},
	{"ride_offers_luggage_count_check", "luggage_count >= 0"},
}

func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Person{},
		&models.Car{},
		&models.RideOffer{},
		&models.Ride{},
		&models.Passenger{},
		&models.RideRequest{},
		&models.Booking{},
	)
	if err != nil {
		return err
	}

	for _, c := range capacityConstraints {
		if err := db.Exec(`ALTER TABLE ride_offers DROP CONSTRAINT IF EXISTS ` + c.name).Error; err != nil {
			return err
		}
		if err := db.Exec(`ALTER TABLE ride_offers ADD CONSTRAINT ` + c.name + ` CHECK (` + c.check + `)`).Error; err != nil {
			return err
		}
	}

	// One ride per offer, also for rows created before the unique index existed.
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_rides_ride_offer_id ON rides (ride_offer_id)`).Error
}
