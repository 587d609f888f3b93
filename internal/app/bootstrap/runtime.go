package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/leadgate/internal/config"
	"github.com/wolfman30/leadgate/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// StorePools holds one pool per store credential. Restricted serves public
// writes, Elevated serves admin reads; they are never interchanged.
type StorePools struct {
	Restricted *pgxpool.Pool
	Elevated   *pgxpool.Pool
}

// Close releases both pools.
func (p *StorePools) Close() {
	if p == nil {
		return
	}
	if p.Restricted != nil {
		p.Restricted.Close()
	}
	if p.Elevated != nil {
		p.Elevated.Close()
	}
}

// BuildStorePools connects to STORE_URL twice, once per role credential, and
// pings both.
func BuildStorePools(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*StorePools, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	restricted, err := connectPool(ctx, cfg.StoreURL, cfg.StoreRestrictedRole, cfg.StoreRestrictedKey, cfg.StoreConnectTimeout)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: restricted store: %w", err)
	}
	elevated, err := connectPool(ctx, cfg.StoreURL, cfg.StoreElevatedRole, cfg.StoreElevatedKey, cfg.StoreConnectTimeout)
	if err != nil {
		restricted.Close()
		return nil, fmt.Errorf("bootstrap: elevated store: %w", err)
	}
	logger.Info("lead store connected", "restricted_role", cfg.StoreRestrictedRole, "elevated_role", cfg.StoreElevatedRole)
	return &StorePools{Restricted: restricted, Elevated: elevated}, nil
}

func connectPool(ctx context.Context, url, role, key string, timeout time.Duration) (*pgxpool.Pool, error) {
	poolCfg, err := poolConfig(url, role, key)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping as %s: %w", role, err)
	}
	return pool, nil
}

// poolConfig overrides whatever user/password STORE_URL carries with the
// role credential, so one URL can serve both pools.
func poolConfig(url, role, key string) (*pgxpool.Config, error) {
	if strings.TrimSpace(url) == "" {
		return nil, &appconfig.ConfigError{Missing: []string{"STORE_URL"}}
	}
	if strings.TrimSpace(role) == "" || key == "" {
		return nil, &appconfig.ConfigError{Reason: "store role and key are required"}
	}
	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, &appconfig.ConfigError{Reason: "invalid STORE_URL: " + err.Error()}
	}
	poolCfg.ConnConfig.User = role
	poolCfg.ConnConfig.Password = key
	poolCfg.ConnConfig.RuntimeParams["application_name"] = "leadgate:" + role
	return poolCfg, nil
}
