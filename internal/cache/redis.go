package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arcticshore/pickups/config"
	"github.com/arcticshore/pickups/internal/domain"
)

// BookingCache keeps normalized bookings per date key. It backs the
// retention-window path (dates too old for the upstream API) and the
// terminal fallback strategy for past dates.
type BookingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewBookingCache(cfg config.RedisConfig, ttl time.Duration) *BookingCache {
	return &BookingCache{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		ttl:    ttl,
	}
}

func (c *BookingCache) GetBookings(ctx context.Context, dateKey string) ([]domain.Booking, error) {
	data, err := c.client.Get(ctx, bookingsKey(dateKey)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var bookings []domain.Booking
	if err := json.Unmarshal(data, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *BookingCache) SetBookings(ctx context.Context, dateKey string, bookings []domain.Booking) error {
	payload, err := json.Marshal(bookings)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, bookingsKey(dateKey), payload, c.ttl).Err()
}

func bookingsKey(dateKey string) string {
	return "pickups:bookings:" + dateKey
}
