package repository

import (
	"context"

	"github.com/transreserve/trip-reservations/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TripRepository interface {
	Create(ctx context.Context, trip *models.Trip) error
	FindByID(ctx context.Context, id string) (*models.Trip, error)
	FindAll(ctx context.Context) ([]models.Trip, error)
	UpdateAvailableCapacity(ctx context.Context, id string, capacity int) error
	Upsert(ctx context.Context, trip *models.Trip) error
}

type tripRepository struct {
	db *gorm.DB
}

func NewTripRepository(db *gorm.DB) TripRepository {
	return &tripRepository{db: db}
}

func (r *tripRepository) Create(ctx context.Context, trip *models.Trip) error {
	return r.db.WithContext(ctx).Create(trip).Error
}

func (r *tripRepository) FindByID(ctx context.Context, id string) (*models.Trip, error) {
	var trip models.Trip
	if err := r.db.WithContext(ctx).First(&trip, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *tripRepository) FindAll(ctx context.Context) ([]models.Trip, error) {
	var trips []models.Trip
	if err := r.db.WithContext(ctx).Order("date ASC").Find(&trips).Error; err != nil {
		return nil, err
	}
	return trips, nil
}

// UpdateAvailableCapacity writes the new capacity as-is. The caller computes
// the value from its current view of the trip; there is no conditional
// server-side check, so concurrent writers can race on this field.
func (r *tripRepository) UpdateAvailableCapacity(ctx context.Context, id string, capacity int) error {
	return r.db.WithContext(ctx).
		Model(&models.Trip{}).
		Where("id = ?", id).
		Update("available_capacity", capacity).Error
}

// Upsert inserts or updates a trip by ID. Used by the feed consumer to sync
// trip messages into the local table.
func (r *tripRepository) Upsert(ctx context.Context, trip *models.Trip) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "available_capacity", "date", "updated_at"}),
	}).Create(trip).Error
}
