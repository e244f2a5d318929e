package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration values.
type Config struct {
	Env             string
	HTTPAddr        string
	GracefulTimeout time.Duration
	LogLevel        string

	RedisHost       string
	RedisPort       int
	RedisDBUser     int
	RedisDBStream   int
	RedisDBTripwire int

	EventStreamKey  string
	ConsumerGroup   string
	ConsumerName    string
	ReadCount       int64
	BlockDuration   time.Duration
	ConsumerWorkers int

	TripwireWindow    time.Duration
	TripwireThreshold float64

	RateLimitEnabled bool
	RateLimitRPM     int
	RateLimitBurst   int
	MaxBodyBytes     int64
	RequestTimeout   time.Duration
}

// Load reads configuration from environment variables and optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:             getEnv("ENV", "development"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8000"),
		GracefulTimeout: getDurationSeconds("GRACEFUL_TIMEOUT_SECONDS", 10*time.Second),
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		RedisHost:       getEnv("REDIS_HOST", "localhost"),
		RedisPort:       getInt("REDIS_PORT", 6379),
		RedisDBUser:     getInt("REDIS_DB_USER", 0),
		RedisDBStream:   getInt("REDIS_DB_STREAM", 1),
		RedisDBTripwire: getInt("REDIS_DB_TRIPWIRE", 2),

		EventStreamKey:  getEnv("EVENT_STREAM_KEY", "event_stream"),
		ConsumerGroup:   getEnv("CONSUMER_GROUP", "group1"),
		ConsumerName:    getEnv("CONSUMER_NAME", "consumer1"),
		ReadCount:       int64(getInt("CONSUMER_READ_COUNT", 10)),
		BlockDuration:   getDuration("CONSUMER_BLOCK_MS", 1000*time.Millisecond),
		ConsumerWorkers: getInt("CONSUMER_WORKERS", 1),

		TripwireWindow:    getDurationSeconds("TRIPWIRE_WINDOW_SECONDS", 300*time.Second),
		TripwireThreshold: getFloat("TRIPWIRE_THRESHOLD", 0.05),

		RateLimitEnabled: getBool("RATE_LIMIT_ENABLED", true),
		RateLimitRPM:     getInt("RATE_LIMIT_RPM", 600),
		RateLimitBurst:   getInt("RATE_LIMIT_BURST", 50),
		MaxBodyBytes:     int64(getInt("MAX_BODY_BYTES", 1<<20)),
		RequestTimeout:   getDurationSeconds("HTTP_REQUEST_TIMEOUT_SECONDS", 10*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// getDuration reads a duration given in milliseconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			return time.Duration(parsed) * time.Millisecond
		}
	}
	return fallback
}

// getDurationSeconds reads a duration given in seconds.
func getDurationSeconds(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			return time.Duration(parsed) * time.Second
		}
	}
	return fallback
}
