package dto

import (
	"time"

	"github.com/transreserve/trip-reservations/internal/models"
	"github.com/transreserve/trip-reservations/internal/service"
	"github.com/transreserve/trip-reservations/internal/utils"
)

type TripResponse struct {
	ID                string    `json:"id"`
	Price             float64   `json:"price"`
	AvailableCapacity int       `json:"available_capacity"`
	Date              time.Time `json:"date"`
	Week              int       `json:"week"`
}

type TripListResponse struct {
	Trips   []TripResponse `json:"trips"`
	Loading bool           `json:"loading"`
}

type ReservationResponse struct {
	ID        string                      `json:"id"`
	Status    models.ReservationStatus    `json:"status"`
	Badge     string                      `json:"badge"`
	CreatedAt time.Time                   `json:"created_at"`
	Details   *service.ReservationDetails `json:"details,omitempty"`
}

type CreateReservationResponse struct {
	ReservationID string `json:"reservation_id"`
	Message       string `json:"message"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToTripResponse(t *models.Trip) TripResponse {
	return TripResponse{
		ID:                t.ID,
		Price:             t.Price,
		AvailableCapacity: t.AvailableCapacity,
		Date:              t.Date,
		Week:              utils.WeekNumber(t.Date),
	}
}

func ToTripListResponse(trips []models.Trip, loading bool) TripListResponse {
	resp := TripListResponse{Trips: make([]TripResponse, len(trips)), Loading: loading}
	for i := range trips {
		resp.Trips[i] = ToTripResponse(&trips[i])
	}
	return resp
}

func ToReservationResponse(r *models.Reservation, details *service.ReservationDetails) ReservationResponse {
	return ReservationResponse{
		ID:        r.ID,
		Status:    r.Status,
		Badge:     utils.StatusBadgeVariation(r.Status),
		CreatedAt: r.CreatedAt,
		Details:   details,
	}
}
