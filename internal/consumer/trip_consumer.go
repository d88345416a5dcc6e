package consumer

import (
	"context"
	"encoding/json"
	"log"

	"github.com/transreserve/trip-reservations/internal/models"
	"github.com/transreserve/trip-reservations/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Refresher is notified after each synced trip so the live view can be
// rebroadcast. The availability service implements it.
type Refresher interface {
	Refresh(ctx context.Context)
}

type TripConsumer struct {
	trips        repository.TripRepository
	availability Refresher
}

func NewTripConsumer(trips repository.TripRepository, availability Refresher) *TripConsumer {
	return &TripConsumer{trips: trips, availability: availability}
}

// Start listens for trip.* messages and upserts them into the local trips
// table, then refreshes the availability snapshot.
func (tc *TripConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			tc.handleMessage(msg)
		}
		log.Println("[TripConsumer] channel closed, stopping consumer")
	}()
}

func (tc *TripConsumer) handleMessage(msg amqp.Delivery) {
	var trip models.Trip
	if err := json.Unmarshal(msg.Body, &trip); err != nil {
		log.Printf("[TripConsumer] failed to unmarshal: %v", err)
		msg.Nack(false, false)
		return
	}

	ctx := context.Background()
	if err := tc.trips.Upsert(ctx, &trip); err != nil {
		log.Printf("[TripConsumer] failed to upsert trip %s: %v", trip.ID, err)
		msg.Nack(false, true) // requeue
		return
	}

	log.Printf("[TripConsumer] synced trip %s (capacity %d)", trip.ID, trip.AvailableCapacity)
	msg.Ack(false)

	tc.availability.Refresh(ctx)
}
