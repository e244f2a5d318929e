package tripwire

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	statesKey        = "tripwire:states"
	affectedKeyPrefix = "tripwire:affected_users:"
)

// RedisController is the Redis-backed Controller implementation.
//
// Example keys:
//
//	tripwire:states                        hash {rule_name: "0"|"1"}
//	tripwire:affected_users:{rule_name}    hash {user_id: unix_seconds}
type RedisController struct {
	client    *redis.Client
	logger    zerolog.Logger
	window    time.Duration
	threshold float64

	// nowFunc is overridable in tests to simulate the passage of time
	// across the sliding window without a real sleep.
	nowFunc func() time.Time
}

// NewRedisController builds a controller with the given window and threshold.
func NewRedisController(client *redis.Client, logger zerolog.Logger, window time.Duration, threshold float64) *RedisController {
	return &RedisController{
		client:    client,
		logger:    logger.With().Str("component", "tripwire").Logger(),
		window:    window,
		threshold: threshold,
		nowFunc:   time.Now,
	}
}

// SetNowFunc overrides the controller's clock. Used by tests to simulate
// the passage of time across the sliding window without a real sleep.
func (c *RedisController) SetNowFunc(fn func() time.Time) {
	c.nowFunc = fn
}

func (c *RedisController) IsDisabled(ctx context.Context, ruleName string) (bool, error) {
	val, err := c.client.HGet(ctx, statesKey, ruleName).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read tripwire state for %q: %w", ruleName, err)
	}
	return val == "1", nil
}

func (c *RedisController) RecordAndRecompute(ctx context.Context, ruleName, userID string, totalUsers int) error {
	now := c.nowFunc().Unix()
	affectedKey := affectedKeyPrefix + ruleName

	entries, err := c.client.HGetAll(ctx, affectedKey).Result()
	if err != nil {
		return fmt.Errorf("read affected users for %q: %w", ruleName, err)
	}

	var expired []string
	for uid, tsRaw := range entries {
		ts, err := strconv.ParseInt(tsRaw, 10, 64)
		if err != nil {
			continue
		}
		if ts <= now-int64(c.window/time.Second) {
			expired = append(expired, uid)
		}
	}
	if len(expired) > 0 {
		if err := c.client.HDel(ctx, affectedKey, expired...).Err(); err != nil {
			return fmt.Errorf("expire affected users for %q: %w", ruleName, err)
		}
	}

	if err := c.client.HSet(ctx, affectedKey, userID, now).Err(); err != nil {
		return fmt.Errorf("record affected user %q for %q: %w", userID, ruleName, err)
	}

	affectedCount, err := c.client.HLen(ctx, affectedKey).Result()
	if err != nil {
		return fmt.Errorf("count affected users for %q: %w", ruleName, err)
	}

	pct := 0.0
	if totalUsers > 0 {
		pct = float64(affectedCount) / float64(totalUsers)
	}

	wasDisabled, err := c.IsDisabled(ctx, ruleName)
	if err != nil {
		return err
	}

	nowDisabled := pct >= c.threshold
	stateVal := "0"
	if nowDisabled {
		stateVal = "1"
	}
	if err := c.client.HSet(ctx, statesKey, ruleName, stateVal).Err(); err != nil {
		return fmt.Errorf("write tripwire state for %q: %w", ruleName, err)
	}

	if nowDisabled && !wasDisabled {
		c.logger.Info().Str("rule", ruleName).Int64("affected", affectedCount).
			Int("total_users", totalUsers).Float64("pct", pct).Msg("tripwire thrown: rule disabled")
	} else if !nowDisabled && wasDisabled {
		c.logger.Info().Str("rule", ruleName).Int64("affected", affectedCount).
			Int("total_users", totalUsers).Float64("pct", pct).Msg("tripwire disengaged: rule re-enabled")
	}

	return nil
}

func (c *RedisController) DisabledRules(ctx context.Context) (map[string]bool, error) {
	raw, err := c.client.HGetAll(ctx, statesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("read tripwire states: %w", err)
	}
	out := make(map[string]bool, len(raw))
	for rule, val := range raw {
		out[rule] = val == "1"
	}
	return out, nil
}

func (c *RedisController) Clear(ctx context.Context) error {
	if err := c.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("clear tripwire state: %w", err)
	}
	return nil
}
