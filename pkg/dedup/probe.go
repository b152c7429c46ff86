// Package dedup tracks duplicate webhook deliveries in Redis. The probe is
// observational: the platform delivers at least once and the activity log
// tolerates duplicates, so a hit is logged for operators, never rejected.
package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/hooklinehq/hookline/pkg/models"
)

// DefaultTTL bounds how long a delivery key is remembered.
const DefaultTTL = 24 * time.Hour

type Probe struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewProbe connects to Redis at redisURL (redis://...).
func NewProbe(redisURL string, ttl time.Duration, logger *slog.Logger) (*Probe, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Probe{
		client: redis.NewClient(opts),
		ttl:    ttl,
		logger: logger.With("module", "dedup_probe"),
	}, nil
}

// Seen records the event's delivery key and reports whether it was already
// present, meaning this is a redelivery.
func (p *Probe) Seen(ctx context.Context, event *models.SyncEvent) (bool, error) {
	stored, err := p.client.SetNX(ctx, Key(event), 1, p.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to probe delivery key: %w", err)
	}

	return !stored, nil
}

func (p *Probe) Close() error {
	return p.client.Close()
}

// Key builds the Redis key for an event's delivery identity.
func Key(event *models.SyncEvent) string {
	return "hookline:dedup:" + event.DeliveryKey()
}
