package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/redis/go-redis/v9"

	"github.com/tophhie/pds-welcomer/config"
	"github.com/tophhie/pds-welcomer/internal/migrate"
)

// DatabaseConfig contains configuration for database connections.
type DatabaseConfig struct {
	DBConfig    config.DBConfig
	RedisConfig config.RedisConfig
	Logger      *slog.Logger
}

// ConnectDB establishes a connection to the PostgreSQL database.
func ConnectDB(cfg DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", postgresDSN(cfg.DBConfig))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One run at a time keeps the pool small.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close database connection: %w", closeErr))
		}
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("database connected",
			"host", cfg.DBConfig.Host,
			"port", cfg.DBConfig.Port,
			"database", cfg.DBConfig.Name,
		)
	}

	return db, nil
}

// postgresDSN builds a pgx URL; url.URL escapes reserved characters in credentials.
func postgresDSN(cfg config.DBConfig) string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Name,
	}
	q := u.Query()
	q.Set("sslmode", cfg.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// ConnectRedis opens a client for the configured topology and pings it.
//
//nolint:ireturn // the concrete client type depends on the topology.
func ConnectRedis(cfg DatabaseConfig) (redis.UniversalClient, error) {
	opts, err := redisOptions(cfg.RedisConfig)
	if err != nil {
		return nil, err
	}
	client := redis.NewUniversalClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis (%s): %w", redisTopology(opts), pingErr)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("redis connected",
			"topology", redisTopology(opts),
			"addrs", opts.Addrs,
			"tls", opts.TLSConfig != nil,
		)
	}

	return client, nil
}

// redisOptions maps RedisConfig onto go-redis universal options.
// Cluster takes precedence over sentinel; otherwise REDIS_URI names a single node.
func redisOptions(cfg config.RedisConfig) (*redis.UniversalOptions, error) {
	opts := &redis.UniversalOptions{Password: cfg.Password}

	switch {
	case cfg.UseCluster:
		opts.IsClusterMode = true
		opts.Addrs = trimAddrs(cfg.ClusterNodes)
		if len(opts.Addrs) == 0 {
			// A single configuration endpoint is enough for managed clusters.
			if err := applyRedisURI(opts, cfg.URI); err != nil {
				return nil, err
			}
		}
		if len(opts.Addrs) == 0 {
			return nil, errors.New("redis cluster requires REDIS_CLUSTER_NODES or REDIS_URI")
		}
	case cfg.UseSentinel:
		opts.Addrs = trimAddrs(cfg.SentinelNodes)
		opts.MasterName = strings.TrimSpace(cfg.SentinelMasterName)
		opts.SentinelPassword = cfg.SentinelPassword
		if len(opts.Addrs) == 0 {
			return nil, errors.New("redis sentinel requires REDIS_SENTINEL_NODES")
		}
		if opts.MasterName == "" {
			return nil, errors.New("redis sentinel requires REDIS_SENTINEL_MASTER_NAME")
		}
	default:
		if err := applyRedisURI(opts, cfg.URI); err != nil {
			return nil, err
		}
		if len(opts.Addrs) == 0 {
			return nil, errors.New("redis requires REDIS_URI")
		}
	}

	return opts, nil
}

// applyRedisURI accepts either a redis:// or rediss:// URL or a bare host:port.
// Credentials in the URL override REDIS_PASSWORD.
func applyRedisURI(opts *redis.UniversalOptions, uri string) error {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil
	}
	if !strings.HasPrefix(uri, "redis://") && !strings.HasPrefix(uri, "rediss://") {
		opts.Addrs = []string{uri}
		return nil
	}

	parsed, err := redis.ParseURL(uri)
	if err != nil {
		return fmt.Errorf("parse REDIS_URI: %w", err)
	}
	opts.Addrs = []string{parsed.Addr}
	opts.Username = parsed.Username
	if parsed.Password != "" {
		opts.Password = parsed.Password
	}
	opts.TLSConfig = parsed.TLSConfig
	opts.DB = parsed.DB
	return nil
}

func redisTopology(opts *redis.UniversalOptions) string {
	switch {
	case opts.MasterName != "":
		return "sentinel"
	case opts.IsClusterMode:
		return "cluster"
	default:
		return "direct"
	}
}

func trimAddrs(raw []string) []string {
	addrs := make([]string, 0, len(raw))
	for _, addr := range raw {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			addrs = append(addrs, trimmed)
		}
	}
	return addrs
}

// RunMigrations applies pending migrations and returns the versions it applied.
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) ([]string, error) {
	applied, err := migrate.Apply(ctx, db, logger)
	if err != nil {
		return applied, fmt.Errorf("run migrations: %w", err)
	}

	if logger != nil {
		logger.InfoContext(ctx, "database migrations completed", "applied", len(applied))
	}

	return applied, nil
}
