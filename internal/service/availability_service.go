package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/transreserve/trip-reservations/internal/models"
	"github.com/transreserve/trip-reservations/internal/repository"
)

// Seed values for development trips.
const (
	seedCapacity = 10
	seedPrice    = 25.0
)

// Publisher sends a payload to the trips exchange under a routing key.
// *rabbitmq.Publisher satisfies it.
type Publisher interface {
	Publish(routingKey string, payload any) error
}

// TripCache is an optional snapshot cache for the trip list. Services must
// work with a nil cache.
type TripCache interface {
	GetTrips(ctx context.Context) ([]models.Trip, error)
	SetTrips(ctx context.Context, trips []models.Trip) error
}

type AvailabilityService interface {
	Trips() []models.Trip
	Loading() bool
	TripByID(id string) (*models.Trip, bool)
	Subscribe(ctx context.Context) <-chan []models.Trip
	Refresh(ctx context.Context)
	SeedTrip(ctx context.Context)
}

// availabilityService maintains a live in-memory view of all trips. The
// view is refreshed from the local table whenever the feed consumer syncs
// a trip message, and every refresh is broadcast to subscribers as a full
// snapshot.
type availabilityService struct {
	repo      repository.TripRepository
	cache     TripCache
	publisher Publisher

	mu      sync.RWMutex
	trips   []models.Trip
	loading bool

	subMu sync.Mutex
	subs  map[chan []models.Trip]struct{}
}

func NewAvailabilityService(repo repository.TripRepository, cache TripCache, publisher Publisher) AvailabilityService {
	return &availabilityService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		loading:   true,
		subs:      make(map[chan []models.Trip]struct{}),
	}
}

func (s *availabilityService) Trips() []models.Trip {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trips := make([]models.Trip, len(s.trips))
	copy(trips, s.trips)
	return trips
}

func (s *availabilityService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// TripByID looks a trip up in the current snapshot. No database call is
// made; the reservation workflow depends on this reading the already-loaded
// view.
func (s *availabilityService) TripByID(id string) (*models.Trip, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.trips {
		if s.trips[i].ID == id {
			trip := s.trips[i]
			return &trip, true
		}
	}
	return nil, false
}

// Subscribe registers a snapshot channel. The current snapshot is delivered
// first (when already loaded), then every refresh. The channel is removed
// and closed when ctx is cancelled, so tearing down a consumer releases the
// subscription.
func (s *availabilityService) Subscribe(ctx context.Context) <-chan []models.Trip {
	ch := make(chan []models.Trip, 1)

	s.mu.RLock()
	loaded := !s.loading
	snapshot := make([]models.Trip, len(s.trips))
	copy(snapshot, s.trips)
	s.mu.RUnlock()

	// Register and deliver under the same lock broadcast sends under: the
	// channel is fresh and buffered, so this send cannot block, and no
	// broadcast can slip in between registration and the first snapshot.
	s.subMu.Lock()
	s.subs[ch] = struct{}{}
	if loaded {
		ch <- snapshot
	}
	s.subMu.Unlock()

	go func() {
		<-ctx.Done()
		s.subMu.Lock()
		delete(s.subs, ch)
		s.subMu.Unlock()
		close(ch)
	}()

	return ch
}

// Refresh reloads the trip list from the local table and broadcasts it.
// On failure the previous snapshot is kept and the error is only logged;
// subscribers never see feed errors.
func (s *availabilityService) Refresh(ctx context.Context) {
	trips, err := s.repo.FindAll(ctx)
	if err != nil {
		log.Printf("[Availability] refresh failed, keeping stale snapshot: %v", err)
		s.mu.Lock()
		empty := len(s.trips) == 0
		s.loading = false
		s.mu.Unlock()
		// Cold start with no snapshot yet: fall back to the cached list.
		if empty && s.cache != nil {
			if cached, cerr := s.cache.GetTrips(ctx); cerr == nil && cached != nil {
				s.mu.Lock()
				s.trips = cached
				s.mu.Unlock()
				s.broadcast(cached)
			}
		}
		return
	}

	s.mu.Lock()
	s.trips = trips
	s.loading = false
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.SetTrips(ctx, trips); err != nil {
			log.Printf("[Availability] cache update failed: %v", err)
		}
	}

	s.broadcast(trips)
}

func (s *availabilityService) broadcast(trips []models.Trip) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		snapshot := make([]models.Trip, len(trips))
		copy(snapshot, trips)
		select {
		case ch <- snapshot:
		default:
			// Slow subscriber: drop its pending snapshot for the newer one.
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

// SeedTrip creates a development trip with fixed capacity and price at the
// current time. Errors are logged and never surfaced to the caller.
func (s *availabilityService) SeedTrip(ctx context.Context) {
	trip := &models.Trip{
		Price:             seedPrice,
		AvailableCapacity: seedCapacity,
		Date:              time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, trip); err != nil {
		log.Printf("[Availability] seed trip failed: %v", err)
		return
	}

	if s.publisher != nil {
		if err := s.publisher.Publish("trip.created", trip); err != nil {
			log.Printf("[Availability] publish trip.created failed: %v", err)
		}
	}

	s.Refresh(ctx)
}
