package service

import (
	"context"
	"errors"
	"log"

	"github.com/transreserve/trip-reservations/internal/models"
	"github.com/transreserve/trip-reservations/internal/repository"
	"github.com/transreserve/trip-reservations/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrReservationFailed   = errors.New("failed to create reservation")
	ErrReservationNotFound = errors.New("reservation not found")
)

// TripSource resolves trips from an already-loaded in-memory view. The
// availability service implements it; the reservation workflow must not
// issue fresh fetches for trips it decrements.
type TripSource interface {
	TripByID(id string) (*models.Trip, bool)
}

// TripDetail is a trip enriched with the capacity a reservation holds on it.
type TripDetail struct {
	models.Trip
	ReservedCapacity int     `json:"reserved_capacity"`
	Subtotal         float64 `json:"subtotal"`
}

// ReservationDetails carries the resolved line items of one reservation and
// the totals recomputed from them. Totals are never stored; they are always
// derived from the persisted line items.
type ReservationDetails struct {
	Trips         []TripDetail `json:"trips"`
	TotalCapacity int          `json:"total_capacity"`
	TotalPrice    float64      `json:"total_price"`
}

type ReservationService interface {
	CreateReservation(ctx context.Context, selections map[string]int) (*models.Reservation, error)
	ListReservations(ctx context.Context) ([]models.Reservation, error)
	ResolveDetails(ctx context.Context, reservations []models.Reservation) map[string]ReservationDetails
	UpdateStatus(ctx context.Context, id string, status models.ReservationStatus) (*models.Reservation, error)
}

type reservationService struct {
	reservations repository.ReservationRepository
	trips        repository.TripRepository
	availability TripSource
	publisher    Publisher
}

func NewReservationService(
	reservations repository.ReservationRepository,
	trips repository.TripRepository,
	availability TripSource,
	publisher Publisher,
) ReservationService {
	return &reservationService{
		reservations: reservations,
		trips:        trips,
		availability: availability,
		publisher:    publisher,
	}
}

// CreateReservation creates a reservation plus one line item per selected
// trip and decrements each trip's capacity by the selected amount.
//
// The writes are issued sequentially and are not wrapped in a transaction:
// a failure partway through leaves a reservation with a partial set of line
// items and partially decremented capacities. Callers see a single generic
// error regardless of which step failed.
func (s *reservationService) CreateReservation(ctx context.Context, selections map[string]int) (*models.Reservation, error) {
	if utils.TotalCapacity(selections) <= 0 {
		return nil, nil
	}

	reservation := &models.Reservation{Status: models.StatusPending}
	if err := s.reservations.Create(ctx, reservation); err != nil {
		log.Printf("[Reservations] create reservation failed: %v", err)
		return nil, ErrReservationFailed
	}
	if reservation.ID == "" {
		log.Printf("[Reservations] create reservation returned no id")
		return nil, ErrReservationFailed
	}

	for tripID, capacity := range selections {
		if capacity <= 0 {
			continue
		}
		trip, ok := s.availability.TripByID(tripID)
		if !ok {
			continue
		}

		rt := &models.ReservationTrip{
			ReservationID:    reservation.ID,
			TripID:           tripID,
			ReservedCapacity: capacity,
		}
		if err := s.reservations.CreateReservationTrip(ctx, rt); err != nil {
			log.Printf("[Reservations] create line item for trip %s failed: %v", tripID, err)
			return nil, ErrReservationFailed
		}

		remaining := trip.AvailableCapacity - capacity
		if err := s.trips.UpdateAvailableCapacity(ctx, tripID, remaining); err != nil {
			log.Printf("[Reservations] decrement capacity for trip %s failed: %v", tripID, err)
			return nil, ErrReservationFailed
		}

		if s.publisher != nil {
			updated := *trip
			updated.AvailableCapacity = remaining
			if err := s.publisher.Publish("trip.updated", &updated); err != nil {
				log.Printf("[Reservations] publish trip.updated for %s failed: %v", tripID, err)
			}
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Publish("reservation.created", reservation); err != nil {
			log.Printf("[Reservations] publish reservation.created failed: %v", err)
		}
	}

	return reservation, nil
}

func (s *reservationService) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	return s.reservations.FindAll(ctx)
}

// ResolveDetails fetches the line items of each reservation and the trips
// they reference, then recomputes subtotals and totals. Fetches run
// sequentially. A line item whose trip no longer exists is dropped from
// the details; a backend failure while resolving one reservation is logged
// and that reservation is left out of the result, without aborting the
// others.
func (s *reservationService) ResolveDetails(ctx context.Context, reservations []models.Reservation) map[string]ReservationDetails {
	details := make(map[string]ReservationDetails, len(reservations))

	for _, reservation := range reservations {
		rts, err := s.reservations.FindTripsByReservationID(ctx, reservation.ID)
		if err != nil {
			log.Printf("[Reservations] resolve details for %s failed: %v", reservation.ID, err)
			continue
		}

		detail := ReservationDetails{Trips: []TripDetail{}}
		failed := false
		for _, rt := range rts {
			trip, err := s.trips.FindByID(ctx, rt.TripID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// The trip is gone from the local table; its line item is
				// left out and totals come from the remaining ones.
				continue
			}
			if err != nil {
				log.Printf("[Reservations] resolve trip %s for %s failed: %v", rt.TripID, reservation.ID, err)
				failed = true
				break
			}
			subtotal := float64(rt.ReservedCapacity) * trip.Price
			detail.TotalCapacity += rt.ReservedCapacity
			detail.TotalPrice += subtotal
			detail.Trips = append(detail.Trips, TripDetail{
				Trip:             *trip,
				ReservedCapacity: rt.ReservedCapacity,
				Subtotal:         subtotal,
			})
		}
		if failed {
			continue
		}

		details[reservation.ID] = detail
	}

	return details
}

// UpdateStatus transitions a reservation's status. Legal-transition rules
// are not enforced here; clients decide which transitions to offer.
func (s *reservationService) UpdateStatus(ctx context.Context, id string, status models.ReservationStatus) (*models.Reservation, error) {
	if _, err := s.reservations.FindByID(ctx, id); err != nil {
		return nil, ErrReservationNotFound
	}

	if err := s.reservations.UpdateStatus(ctx, id, status); err != nil {
		log.Printf("[Reservations] update status for %s failed: %v", id, err)
		return nil, err
	}

	updated, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.Publish("reservation.updated", updated); err != nil {
			log.Printf("[Reservations] publish reservation.updated failed: %v", err)
		}
	}

	return updated, nil
}
