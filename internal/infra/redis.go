package infra

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to the configured Redis instance and verifies the
// connection with a ping. Returns nil when no address is configured; callers
// treat a nil client as "cache tier disabled" and fall back to process memory.
func NewRedisClient(cfg *Config, logger Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	var tlsConfig *tls.Config
	if cfg.RedisUseTLS {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Username:     cfg.RedisUsername,
		Password:     cfg.RedisPassword,
		TLSConfig:    tlsConfig,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis: ping failed, cache tier disabled")
		_ = rdb.Close()
		return nil
	}
	logger.Info().Str("addr", cfg.RedisAddr).Msg("redis: connected")
	return rdb
}
