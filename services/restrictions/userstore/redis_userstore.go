package userstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/zacharyclement/feature-restrictions/services/restrictions/model"
)

// RedisUserStore persists user aggregates whole-object (read-modify-write)
// in a Redis DB dedicated to user keys, keyed bare by user_id. Dedicating
// a DB index lets Count use DBSize instead of an O(n) KEYS scan.
type RedisUserStore struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisUserStore wraps a Redis client already pointed at the user DB.
func NewRedisUserStore(client *redis.Client, logger zerolog.Logger) *RedisUserStore {
	return &RedisUserStore{
		client: client,
		logger: logger.With().Str("component", "userstore").Logger(),
	}
}

func (s *RedisUserStore) Get(ctx context.Context, userID string) (*model.UserAggregate, error) {
	raw, err := s.client.Get(ctx, userID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("user %q: %w", userID, model.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", userID, model.ErrBackingStoreTransient)
	}

	var agg model.UserAggregate
	if err := json.Unmarshal([]byte(raw), &agg); err != nil {
		return nil, fmt.Errorf("unmarshal user %q: %w", userID, err)
	}
	return &agg, nil
}

func (s *RedisUserStore) Create(ctx context.Context, userID string) (*model.UserAggregate, error) {
	agg := model.NewUserAggregate(userID)
	if err := s.Save(ctx, agg); err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", userID).Msg("created new user")
	return agg, nil
}

func (s *RedisUserStore) Save(ctx context.Context, agg *model.UserAggregate) error {
	raw, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("marshal user %q: %w", agg.UserID, err)
	}
	if err := s.client.Set(ctx, agg.UserID, raw, 0).Err(); err != nil {
		return fmt.Errorf("save user %q: %w", agg.UserID, model.ErrBackingStoreTransient)
	}
	return nil
}

func (s *RedisUserStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, userID).Err(); err != nil {
		return fmt.Errorf("delete user %q: %w", userID, model.ErrBackingStoreTransient)
	}
	return nil
}

func (s *RedisUserStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.DBSize(ctx).Result()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get user count")
		return 0, fmt.Errorf("count users: %w", model.ErrBackingStoreTransient)
	}
	return int(n), nil
}

func (s *RedisUserStore) Clear(ctx context.Context) error {
	if err := s.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("clear users: %w", model.ErrBackingStoreTransient)
	}
	return nil
}
