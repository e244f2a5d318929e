package streamlog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/zacharyclement/feature-restrictions/services/restrictions/model"
)

// RedisLog implements Log on top of Redis Streams / consumer groups.
type RedisLog struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewRedisLog wraps a Redis client already pointed at the stream DB.
func NewRedisLog(client *redis.Client, logger zerolog.Logger) *RedisLog {
	return &RedisLog{client: client, logger: logger.With().Str("component", "streamlog").Logger()}
}

func (l *RedisLog) CreateGroup(ctx context.Context, stream, group string) error {
	err := l.client.XGroupCreateMkStream(ctx, stream, group, "$").Err()
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "BUSYGROUP") {
		return nil
	}
	return fmt.Errorf("create consumer group %q on stream %q: %w", group, stream, model.ErrFatal)
}

func (l *RedisLog) Append(ctx context.Context, stream string, fields map[string]string) (string, error) {
	values := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		values[k] = v
	}
	id, err := l.client.XAdd(ctx, &redis.XAddArgs{Stream: stream, Values: values}).Result()
	if err != nil {
		return "", fmt.Errorf("append to stream %q: %w", stream, model.ErrBackingStoreTransient)
	}
	return id, nil
}

func (l *RedisLog) ReadGroup(ctx context.Context, group, consumer, stream string, count int64, block time.Duration) ([]Entry, error) {
	res, err := l.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read group %q on stream %q: %w", group, stream, model.ErrBackingStoreTransient)
	}

	var entries []Entry
	for _, streamResult := range res {
		for _, msg := range streamResult.Messages {
			fields := make(map[string]string, len(msg.Values))
			for k, v := range msg.Values {
				if s, ok := v.(string); ok {
					fields[k] = s
				} else {
					fields[k] = fmt.Sprintf("%v", v)
				}
			}
			entries = append(entries, Entry{ID: msg.ID, Fields: fields})
		}
	}
	return entries, nil
}

func (l *RedisLog) Ack(ctx context.Context, stream, group, id string) error {
	if err := l.client.XAck(ctx, stream, group, id).Err(); err != nil {
		return fmt.Errorf("ack %q on stream %q group %q: %w", id, stream, group, model.ErrBackingStoreTransient)
	}
	return nil
}
