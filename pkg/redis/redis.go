package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/smartcart/smartcart-backend/config"
	"github.com/smartcart/smartcart-backend/pkg/logger"
)

const (
	pingTimeout    = 5 * time.Second
	blacklistValue = "revoked"
)

var (
	client *redis.Client

	ErrNotConnected = errors.New("redis client is not connected")
)

// Init connects to Redis and verifies the connection with a ping. The
// rest of the app treats Redis as optional, so callers should check
// GetClient for nil before relying on it.
func Init(cfg *config.RedisConfig) error {
	logger.Info("Connecting to Redis", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	c := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	client = c
	logger.Info("Redis connection established")
	return nil
}

// GetClient returns the connected client, or nil when Init failed or
// was never called.
func GetClient() *redis.Client {
	return client
}

// Close shuts down the connection. Safe to call when never connected.
func Close() error {
	if client == nil {
		return nil
	}
	logger.Info("Closing Redis connection")
	err := client.Close()
	client = nil
	return err
}

func blacklistKey(token string) string {
	return "blacklist:" + token
}

// BlacklistToken marks an access token as revoked until it would have
// expired on its own.
func BlacklistToken(ctx context.Context, token string, expiry time.Duration) error {
	if client == nil {
		return ErrNotConnected
	}
	return client.Set(ctx, blacklistKey(token), blacklistValue, expiry).Err()
}

// IsTokenBlacklisted reports whether the token has been revoked. A
// missing key means the token was never blacklisted.
func IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	if client == nil {
		return false, ErrNotConnected
	}

	val, err := client.Get(ctx, blacklistKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == blacklistValue, nil
}
