package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Trip is a schedulable transport capacity slot. Capacity is decremented
// when reservations are created against it; trips are never deleted in
// the normal flow.
type Trip struct {
	ID                string    `gorm:"type:uuid;primaryKey" json:"id"`
	Price             float64   `gorm:"not null" json:"price"`
	AvailableCapacity int       `gorm:"not null" json:"available_capacity"`
	Date              time.Time `gorm:"not null" json:"date"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (t *Trip) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
