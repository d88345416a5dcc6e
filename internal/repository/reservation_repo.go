package repository

import (
	"context"

	"github.com/transreserve/trip-reservations/internal/models"
	"gorm.io/gorm"
)

type ReservationRepository interface {
	Create(ctx context.Context, reservation *models.Reservation) error
	FindByID(ctx context.Context, id string) (*models.Reservation, error)
	FindAll(ctx context.Context) ([]models.Reservation, error)
	UpdateStatus(ctx context.Context, id string, status models.ReservationStatus) error
	CreateReservationTrip(ctx context.Context, rt *models.ReservationTrip) error
	FindTripsByReservationID(ctx context.Context, reservationID string) ([]models.ReservationTrip, error)
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

func (r *reservationRepository) FindByID(ctx context.Context, id string) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).First(&reservation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) FindAll(ctx context.Context) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := r.db.WithContext(ctx).Find(&reservations).Error; err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id string, status models.ReservationStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *reservationRepository) CreateReservationTrip(ctx context.Context, rt *models.ReservationTrip) error {
	return r.db.WithContext(ctx).Create(rt).Error
}

func (r *reservationRepository) FindTripsByReservationID(ctx context.Context, reservationID string) ([]models.ReservationTrip, error) {
	var rts []models.ReservationTrip
	if err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Find(&rts).Error; err != nil {
		return nil, err
	}
	return rts, nil
}
