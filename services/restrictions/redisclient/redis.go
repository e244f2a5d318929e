package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zacharyclement/feature-restrictions/services/restrictions/config"
)

// Clients bundles the three logically-isolated Redis connections used by
// the service: one for user aggregates, one for the durable event stream,
// and one for tripwire state. Isolation by logical DB index keeps
// UserStore.Count() and tripwire state free of each other's keys.
type Clients struct {
	User     *redis.Client
	Stream   *redis.Client
	Tripwire *redis.Client
}

// New builds the three Redis clients from config.
func New(cfg *config.Config) (*Clients, error) {
	addr := fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort)

	return &Clients{
		User:     redis.NewClient(&redis.Options{Addr: addr, DB: cfg.RedisDBUser}),
		Stream:   redis.NewClient(&redis.Options{Addr: addr, DB: cfg.RedisDBStream}),
		Tripwire: redis.NewClient(&redis.Options{Addr: addr, DB: cfg.RedisDBTripwire}),
	}, nil
}

// Ping verifies all three connections are reachable.
func (c *Clients) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.User.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("user redis db: %w", err)
	}
	if err := c.Stream.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("stream redis db: %w", err)
	}
	if err := c.Tripwire.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("tripwire redis db: %w", err)
	}
	return nil
}

// Close releases all three connections.
func (c *Clients) Close() error {
	var firstErr error
	for _, client := range []*redis.Client{c.User, c.Stream, c.Tripwire} {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
