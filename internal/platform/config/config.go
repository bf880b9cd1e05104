package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the server needs from the environment.
type Config struct {
	Addr          string
	JWTSigningKey string

	LookupBaseURL          string
	AttachmentStoreBaseURL string
	ClientTimeout          time.Duration

	KafkaBrokers []string

	Redis    RedisConfig
	DraftTTL time.Duration
}

// RedisConfig configures the draft storage connection.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Addr:                   envOr("CAREDAYS_ADDR", ":8080"),
		JWTSigningKey:          envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		LookupBaseURL:          envOr("LOOKUP_BASE_URL", "http://k9-selvbetjening-oppslag"),
		AttachmentStoreBaseURL: envOr("ATTACHMENT_STORE_BASE_URL", "http://k9-mellomlagring/v1/dokument"),
		ClientTimeout:          envDurationOr("CLIENT_TIMEOUT", 20*time.Second),
		KafkaBrokers:           strings.Split(envOr("KAFKA_BROKERS", "localhost:9092"), ","),
		Redis: RedisConfig{
			URL:          envOr("REDIS_URL", "redis://localhost:6379/0"),
			PoolSize:     envIntOr("REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		DraftTTL: envDurationOr("DRAFT_TTL", 72*time.Hour),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
