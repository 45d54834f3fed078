package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/siddardh-293001/Flight-Booker-Simulator/config"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/domain"
)

// RedisCache keeps short-lived copies of flight search results and seat
// snapshots. A miss is reported as (nil, nil).
type RedisCache struct {
	client     redis.Cmdable
	flightsTTL time.Duration
	seatsTTL   time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL, seatsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL,
		seatsTTL,
	)
}

func NewRedisCacheWithClient(client redis.Cmdable, flightsTTL, seatsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, flightsTTL: flightsTTL, seatsTTL: seatsTTL}
}

func (c *RedisCache) GetFlights(ctx context.Context, criteria domain.SearchCriteria) ([]domain.Flight, error) {
	var flights []domain.Flight
	found, err := c.get(ctx, flightsKey(criteria), &flights)
	if err != nil || !found {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, criteria domain.SearchCriteria, flights []domain.Flight) error {
	return c.set(ctx, flightsKey(criteria), flights, c.flightsTTL)
}

func (c *RedisCache) GetSeats(ctx context.Context, flightID int64) ([]domain.Seat, error) {
	var seats []domain.Seat
	found, err := c.get(ctx, seatsKey(flightID), &seats)
	if err != nil || !found {
		return nil, err
	}
	return seats, nil
}

func (c *RedisCache) SetSeats(ctx context.Context, flightID int64, seats []domain.Seat) error {
	return c.set(ctx, seatsKey(flightID), seats, c.seatsTTL)
}

func (c *RedisCache) InvalidateSeats(ctx context.Context, flightID int64) error {
	return c.client.Del(ctx, seatsKey(flightID)).Err()
}

func (c *RedisCache) get(ctx context.Context, key string, out interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func flightsKey(criteria domain.SearchCriteria) string {
	return fmt.Sprintf("cache:flights:%s:%s:%s:%s:%s",
		strings.ToUpper(criteria.Origin),
		strings.ToUpper(criteria.Destination),
		criteria.Date,
		strings.ToUpper(criteria.Airline),
		criteria.SortBy,
	)
}

func seatsKey(flightID int64) string {
	return fmt.Sprintf("cache:flight:%d:seats", flightID)
}
