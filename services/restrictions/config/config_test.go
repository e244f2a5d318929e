package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/zacharyclement/feature-restrictions/services/restrictions/config"
)

func TestLoadConfigFromEnv(t *testing.T) {
	os.Setenv("REDIS_HOST", "redis.internal")
	os.Setenv("REDIS_PORT", "6380")
	os.Setenv("ENV", "test")
	os.Setenv("TRIPWIRE_THRESHOLD", "0.1")
	os.Setenv("TRIPWIRE_WINDOW_SECONDS", "60")
	defer func() {
		os.Unsetenv("REDIS_HOST")
		os.Unsetenv("REDIS_PORT")
		os.Unsetenv("ENV")
		os.Unsetenv("TRIPWIRE_THRESHOLD")
		os.Unsetenv("TRIPWIRE_WINDOW_SECONDS")
	}()

	cfg := config.Load()

	if cfg.RedisHost != "redis.internal" {
		t.Fatalf("expected REDIS_HOST to be loaded, got %s", cfg.RedisHost)
	}
	if cfg.RedisPort != 6380 {
		t.Fatalf("expected REDIS_PORT=6380, got %d", cfg.RedisPort)
	}
	if cfg.Env != "test" {
		t.Fatalf("expected ENV=test, got %s", cfg.Env)
	}
	if cfg.TripwireThreshold != 0.1 {
		t.Fatalf("expected TRIPWIRE_THRESHOLD=0.1, got %v", cfg.TripwireThreshold)
	}
	if cfg.TripwireWindow != 60*time.Second {
		t.Fatalf("expected TRIPWIRE_WINDOW_SECONDS=60s, got %v", cfg.TripwireWindow)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	os.Unsetenv("EVENT_STREAM_KEY")
	os.Unsetenv("CONSUMER_GROUP")

	cfg := config.Load()

	if cfg.EventStreamKey != "event_stream" {
		t.Fatalf("expected default EVENT_STREAM_KEY, got %s", cfg.EventStreamKey)
	}
	if cfg.ConsumerGroup != "group1" {
		t.Fatalf("expected default CONSUMER_GROUP, got %s", cfg.ConsumerGroup)
	}
	if cfg.ConsumerWorkers != 1 {
		t.Fatalf("expected default CONSUMER_WORKERS=1, got %d", cfg.ConsumerWorkers)
	}
}
