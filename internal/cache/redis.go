package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache keeps flight search results for a short TTL. Seat counters are
// never served from here; availability is always decided inside the
// database transaction.
type RedisCache struct {
	client    *redis.Client
	searchTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, searchTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		searchTTL: searchTTL,
	}
}

func (c *RedisCache) GetSearch(ctx context.Context, departureAirportID, arrivalAirportID int64, from, to time.Time) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, searchKey(departureAirportID, arrivalAirportID, from, to)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetSearch(ctx context.Context, departureAirportID, arrivalAirportID int64, from, to time.Time, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, searchKey(departureAirportID, arrivalAirportID, from, to), payload, c.searchTTL).Err()
}

func searchKey(departureAirportID, arrivalAirportID int64, from, to time.Time) string {
	return fmt.Sprintf("cache:flights:%d:%d:%d:%d", departureAirportID, arrivalAirportID, from.Unix(), to.Unix())
}
