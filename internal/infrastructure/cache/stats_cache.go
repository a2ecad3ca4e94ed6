package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Names of the cached summaries
const (
	StatsInvoices  = "invoices"
	StatsQuotes    = "quotes"
	StatsClients   = "clients"
	StatsCompanies = "companies"
)

// StatsCache stores per-owner summary payloads as JSON
type StatsCache interface {
	// Get decodes the cached value into dest and reports whether it was found
	Get(ctx context.Context, ownerID uuid.UUID, name string, dest any) (bool, error)
	Set(ctx context.Context, ownerID uuid.UUID, name string, value any) error
	Invalidate(ctx context.Context, ownerID uuid.UUID, names ...string) error
}

func statsKey(ownerID uuid.UUID, name string) string {
	return "crm:stats:" + ownerID.String() + ":" + name
}

// RedisStatsCache keeps summaries in Redis with a fixed TTL
type RedisStatsCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStatsCache uses an existing client; the caller owns it
func NewRedisStatsCache(client redis.UniversalClient, ttl time.Duration) *RedisStatsCache {
	return &RedisStatsCache{client: client, ttl: ttl}
}

// Get implements StatsCache
func (c *RedisStatsCache) Get(ctx context.Context, ownerID uuid.UUID, name string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, statsKey(ownerID, name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s stats: %w", name, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decode %s stats: %w", name, err)
	}
	return true, nil
}

// Set implements StatsCache
func (c *RedisStatsCache) Set(ctx context.Context, ownerID uuid.UUID, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s stats: %w", name, err)
	}
	if err := c.client.Set(ctx, statsKey(ownerID, name), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s stats: %w", name, err)
	}
	return nil
}

// Invalidate implements StatsCache
func (c *RedisStatsCache) Invalidate(ctx context.Context, ownerID uuid.UUID, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = statsKey(ownerID, n)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate stats: %w", err)
	}
	return nil
}

var _ StatsCache = (*RedisStatsCache)(nil)

type statsEntry struct {
	data    []byte
	expires time.Time
}

// InMemoryStatsCache is the single-instance fallback. Values are stored
// encoded so callers never share mutable state with the cache.
type InMemoryStatsCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]statsEntry
	now     func() time.Time
}

// NewInMemoryStatsCache creates an empty in-memory cache
func NewInMemoryStatsCache(ttl time.Duration) *InMemoryStatsCache {
	return &InMemoryStatsCache{
		ttl:     ttl,
		entries: make(map[string]statsEntry),
		now:     time.Now,
	}
}

// Get implements StatsCache
func (c *InMemoryStatsCache) Get(_ context.Context, ownerID uuid.UUID, name string, dest any) (bool, error) {
	key := statsKey(ownerID, name)

	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && !c.now().Before(e.expires) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(e.data, dest); err != nil {
		return false, fmt.Errorf("decode %s stats: %w", name, err)
	}
	return true, nil
}

// Set implements StatsCache
func (c *InMemoryStatsCache) Set(_ context.Context, ownerID uuid.UUID, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s stats: %w", name, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[statsKey(ownerID, name)] = statsEntry{data: data, expires: c.now().Add(c.ttl)}
	return nil
}

// Invalidate implements StatsCache
func (c *InMemoryStatsCache) Invalidate(_ context.Context, ownerID uuid.UUID, names ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range names {
		delete(c.entries, statsKey(ownerID, n))
	}
	return nil
}

var _ StatsCache = (*InMemoryStatsCache)(nil)
