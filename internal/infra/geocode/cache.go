package geocode

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"agriconnect/config"
	"agriconnect/internal/domain/geo"
	"agriconnect/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 24 * time.Hour

// cachedPoint is the Redis cache payload. Resolved distinguishes a cached
// miss from an absent key so unresolvable addresses are not re-queried.
type cachedPoint struct {
	Resolved  bool    `json:"resolved"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// cachedGeocoder wraps another Geocoder with a Redis read-through cache
type cachedGeocoder struct {
	inner  service.Geocoder
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedGeocoder creates a read-through cache in front of a geocoder
func NewCachedGeocoder(
	inner service.Geocoder,
	cfg *config.RedisConfig,
	ttl time.Duration,
	logger *slog.Logger,
) service.Geocoder {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &cachedGeocoder{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *cachedGeocoder) Geocode(ctx context.Context, city, state, postalCode string) (*geo.Point, error) {
	key := cacheKey(city, state, postalCode)

	raw, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var cached cachedPoint
		if unmarshalErr := json.Unmarshal([]byte(raw), &cached); unmarshalErr == nil {
			if !cached.Resolved {
				return nil, nil
			}

			return &geo.Point{Latitude: cached.Latitude, Longitude: cached.Longitude}, nil
		}
		// Corrupted entry, fall through to the geocoder and overwrite it
	} else if !errors.Is(err, redis.Nil) {
		// Cache unavailable, degrade to uncached lookups
		c.logger.Warn("Geocode cache read failed",
			slog.String("key", key),
			slog.Any("error", err),
		)
	}

	point, err := c.inner.Geocode(ctx, city, state, postalCode)
	if err != nil {
		return nil, err
	}

	cached := cachedPoint{Resolved: point != nil}
	if point != nil {
		cached.Latitude = point.Latitude
		cached.Longitude = point.Longitude
	}

	payload, err := json.Marshal(cached)
	if err == nil {
		if setErr := c.client.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
			c.logger.Warn("Geocode cache write failed",
				slog.String("key", key),
				slog.Any("error", setErr),
			)
		}
	}

	return point, nil
}

// cacheKey normalizes the address parts into a stable Redis key
func cacheKey(city, state, postalCode string) string {
	parts := []string{
		strings.ToLower(strings.TrimSpace(city)),
		strings.ToLower(strings.TrimSpace(state)),
		strings.ToLower(strings.TrimSpace(postalCode)),
	}

	return "geocode:" + strings.Join(parts, "|")
}
