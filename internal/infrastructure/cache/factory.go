package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stores bundles the Redis-backed stores used by the server. Client is nil
// when the in-memory fallbacks are in use.
type Stores struct {
	Client    *redis.Client
	Stats     StatsCache
	Blacklist auth.TokenBlacklist
}

// Close releases the Redis client, if any
func (s *Stores) Close() error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Close()
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// NewStores builds the stats cache and token blacklist. Without a Redis
// host, or when Redis cannot be reached, both fall back to process memory;
// stats stay correct through event-driven invalidation, but revocations are
// not shared between instances.
func NewStores(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) *Stores {
	if log == nil {
		log = zap.NewNop()
	}

	if cfg.Host != "" {
		client, err := NewRedisClient(ctx, cfg)
		if err == nil {
			log.Info("Using Redis for stats cache and token blacklist", zap.String("addr", cfg.Addr()))
			return &Stores{
				Client:    client,
				Stats:     NewRedisStatsCache(client, cfg.StatsTTL),
				Blacklist: auth.NewRedisTokenBlacklist(client),
			}
		}
		log.Warn("Redis unavailable, falling back to in-memory stores", zap.Error(err))
	}

	return &Stores{
		Stats:     NewInMemoryStatsCache(cfg.StatsTTL),
		Blacklist: auth.NewInMemoryTokenBlacklist(),
	}
}
