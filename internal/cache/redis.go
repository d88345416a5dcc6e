package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/transreserve/trip-reservations/internal/models"
)

const tripsKey = "cache:trips"

// RedisCache holds a snapshot of the trip list so cold starts can serve a
// list before the first feed refresh lands.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr, password string, db int, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		ttl:    ttl,
	}
}

func (c *RedisCache) GetTrips(ctx context.Context) ([]models.Trip, error) {
	data, err := c.client.Get(ctx, tripsKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var trips []models.Trip
	if err := json.Unmarshal(data, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

func (c *RedisCache) SetTrips(ctx context.Context, trips []models.Trip) error {
	payload, err := json.Marshal(trips)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, tripsKey, payload, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
