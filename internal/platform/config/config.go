package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr string

	// Identity is the collaborator identity used for per-identity profile
	// mirroring. Empty means anonymous: personal settings stay local only.
	Identity string

	// LockWindow is the echo-suppression window for settings writes. It must
	// exceed the slowest observed round trip of the remote store.
	LockWindow time.Duration

	// CachePath is the file holding the personal settings tier.
	CachePath string

	Redis RedisConfig

	// PostgresURL configures the timesheet record source. Empty disables it
	// (an in-memory source is used instead, useful for local development).
	PostgresURL string

	// KafkaBrokers configures the audit publisher. Empty disables auditing.
	KafkaBrokers []string
	KafkaTopic   string
}

// RedisConfig holds connection settings for the remote settings store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("OKKSTATS_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	lockWindow := 5 * time.Second
	if raw := os.Getenv("OKKSTATS_LOCK_WINDOW"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			lockWindow = d
		}
	}

	var brokers []string
	if raw := os.Getenv("OKKSTATS_KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}
	topic := os.Getenv("OKKSTATS_KAFKA_TOPIC")
	if topic == "" {
		topic = "okkstats.audit"
	}

	cachePath := os.Getenv("OKKSTATS_CACHE_PATH")
	if cachePath == "" {
		cachePath = "okkstats-personal.json"
	}

	return Server{
		Addr:       addr,
		Identity:   os.Getenv("OKKSTATS_IDENTITY"),
		LockWindow: lockWindow,
		CachePath:  cachePath,
		Redis: RedisConfig{
			URL:          os.Getenv("OKKSTATS_REDIS_URL"),
			PoolSize:     envInt("OKKSTATS_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("OKKSTATS_REDIS_MIN_IDLE", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		PostgresURL:  os.Getenv("OKKSTATS_POSTGRES_URL"),
		KafkaBrokers: brokers,
		KafkaTopic:   topic,
	}
}

func envInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
