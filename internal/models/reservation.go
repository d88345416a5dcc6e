package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCancelled ReservationStatus = "CANCELLED"
)

// Valid reports whether s is one of the known reservation statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Reservation is a customer's booking intent spanning one or more trips.
// After creation only the status changes; the line items are immutable.
type Reservation struct {
	ID        string            `gorm:"type:uuid;primaryKey" json:"id"`
	Status    ReservationStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`

	ReservationTrips []ReservationTrip `gorm:"foreignKey:ReservationID" json:"reservation_trips,omitempty"`
}

func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// ReservationTrip records how much capacity of a given trip a given
// reservation consumes. Created exactly once per (reservation, trip) pair.
type ReservationTrip struct {
	ID               string    `gorm:"type:uuid;primaryKey" json:"id"`
	ReservationID    string    `gorm:"type:uuid;not null;index" json:"reservation_id"`
	TripID           string    `gorm:"type:uuid;not null;index" json:"trip_id"`
	ReservedCapacity int       `gorm:"not null" json:"reserved_capacity"`
	CreatedAt        time.Time `json:"created_at"`
}

func (rt *ReservationTrip) BeforeCreate(tx *gorm.DB) error {
	if rt.ID == "" {
		rt.ID = uuid.NewString()
	}
	return nil
}
