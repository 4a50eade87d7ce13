package config

import (
	"fmt"
	"strings"
)

// StoreBackend selects the durable dispatch record store.
type StoreBackend string

const (
	// StoreBackendRedis keeps one JSON record per DID under a key prefix.
	StoreBackendRedis StoreBackend = "redis"
	// StoreBackendPostgres keeps records in the welcome_dispatches table.
	StoreBackendPostgres StoreBackend = "postgres"
)

// StoreConfig selects and tunes the dispatch record store.
type StoreConfig struct {
	Backend StoreBackend `env:"BACKEND" envDefault:"redis"`

	// KeyPrefix namespaces Redis keys, e.g. "welcome:did:plc:abc".
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"welcome:"`
}

// Sanitize applies guardrails to store configuration values.
func (s *StoreConfig) Sanitize() {
	s.Backend = StoreBackend(strings.ToLower(strings.TrimSpace(string(s.Backend))))
	if s.Backend == "" {
		s.Backend = StoreBackendRedis
	}
	s.KeyPrefix = strings.TrimSpace(s.KeyPrefix)
}

// Validate rejects unknown store backends.
func (s *StoreConfig) Validate() error {
	switch s.Backend {
	case StoreBackendRedis, StoreBackendPostgres:
		return nil
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q (valid options: redis, postgres)", s.Backend)
	}
}

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"welcomer"`
	Password string `env:"PASSWORD" envDefault:"welcomer"`
	Name     string `env:"NAME"     envDefault:"welcomer"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}
