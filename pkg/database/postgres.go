package database

import (
	"log"

	"github.com/transreserve/trip-reservations/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Trip{}, &models.Reservation{}, &models.ReservationTrip{}); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// One line item per (reservation, trip) pair.
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_reservation_trip
		ON reservation_trips (reservation_id, trip_id)
	`)

	return db
}
