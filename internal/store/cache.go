package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"fjacquet/doc-recognizer/internal/logging"
	"fjacquet/doc-recognizer/internal/models"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores opaque values with a time to live.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CatalogCacheKey is the key the catalog is cached under.
const CatalogCacheKey = "doc-recognizer:categories"

// CachedCatalog serves the catalog from a cache and refills it from the inner
// provider on a miss. Cache errors are logged and bypassed.
type CachedCatalog struct {
	inner  CatalogProvider
	cache  Cache
	ttl    time.Duration
	logger logging.Logger
}

// NewCachedCatalog wraps inner.
func NewCachedCatalog(inner CatalogProvider, cache Cache, ttl time.Duration, logger logging.Logger) *CachedCatalog {
	return &CachedCatalog{inner: inner, cache: cache, ttl: ttl, logger: logging.OrDefault(logger)}
}

// ListCategories implements CatalogProvider.
func (c *CachedCatalog) ListCategories(ctx context.Context) (models.CategoryCatalog, error) {
	data, err := c.cache.Get(ctx, CatalogCacheKey)
	switch {
	case err == nil:
		catalog, decodeErr := decodeCatalog(data)
		if decodeErr == nil {
			c.logger.Debug("Categories served from cache", logging.F(logging.FieldCount, len(catalog)))
			return catalog, nil
		}
		c.logger.WithError(decodeErr).Warn("Discarding unreadable cached categories")
	case !errors.Is(err, ErrCacheMiss):
		c.logger.WithError(err).Warn("Category cache unavailable")
	}

	catalog, err := c.inner.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if len(catalog) == 0 {
		return catalog, nil
	}

	if data, err := encodeCatalog(catalog); err == nil {
		if err := c.cache.Set(ctx, CatalogCacheKey, data, c.ttl); err != nil {
			c.logger.WithError(err).Warn("Failed to cache categories")
		}
	}
	return catalog, nil
}

// JSON object keys must be strings, so ids are encoded as decimal strings.
func encodeCatalog(catalog models.CategoryCatalog) ([]byte, error) {
	m := make(map[string]string, len(catalog))
	for id, name := range catalog {
		m[strconv.Itoa(id)] = name
	}
	return json.Marshal(m)
}

func decodeCatalog(data []byte) (models.CategoryCatalog, error) {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	catalog := make(models.CategoryCatalog, len(m))
	for key, name := range m {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("invalid category id %q: %w", key, err)
		}
		catalog[id] = name
	}
	return catalog, nil
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// OpenRedis connects to Redis. Both "redis://host:port/db" and a bare
// "host:port" are accepted.
func OpenRedis(ctx context.Context, redisURL string, timeout time.Duration) (*redis.Client, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis URL is not configured")
	}
	if !strings.Contains(redisURL, "://") {
		redisURL = "redis://" + redisURL
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Get implements Cache.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return data, err
}

// Set implements Cache.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// MemoryCache is an in-process Cache. Expired entries are dropped on read.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]memoryEntry{}, now: time.Now}
}

// Get implements Cache.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.entries, key)
		return nil, ErrCacheMiss
	}
	return e.value, nil
}

// Set implements Cache. A non-positive ttl never expires.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}
