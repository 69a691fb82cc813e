package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

const (
	defaultMaxConns          = 10
	defaultMaxConnIdleTime   = 5 * time.Minute
	defaultHealthCheckPeriod = 30 * time.Second
	pingTimeout              = 2 * time.Second
)

// DB wraps the pgx pool shared by repositories and units of work
type DB struct {
	*pgxpool.Pool
}

// NewConnection opens a pool against databaseURL and verifies it with a ping.
// Pool settings given in the URL (pool_max_conns etc.) take precedence over the defaults.
func NewConnection(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := parsePoolConfig(databaseURL)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.WithFields(log.Fields{
		"host":      config.ConnConfig.Host,
		"database":  config.ConnConfig.Database,
		"max_conns": config.MaxConns,
	}).Debug("Database pool ready")

	return &DB{Pool: pool}, nil
}

// parsePoolConfig parses databaseURL and fills in pool defaults for the
// settings the URL leaves unset.
func parsePoolConfig(databaseURL string) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Day windows and execute_at comparisons are done in UTC
	config.ConnConfig.RuntimeParams["timezone"] = "UTC"
	config.ConnConfig.RuntimeParams["application_name"] = "rewarder"

	if !hasPoolSetting(databaseURL, "pool_max_conns") {
		config.MaxConns = defaultMaxConns
	}
	if !hasPoolSetting(databaseURL, "pool_max_conn_idle_time") {
		config.MaxConnIdleTime = defaultMaxConnIdleTime
	}
	if !hasPoolSetting(databaseURL, "pool_health_check_period") {
		config.HealthCheckPeriod = defaultHealthCheckPeriod
	}

	return config, nil
}

func hasPoolSetting(databaseURL, key string) bool {
	return strings.Contains(databaseURL, key+"=")
}

// HealthCheck reports whether the database answers within a short timeout
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool.Close()
}
