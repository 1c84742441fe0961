package campus

import (
	"context"
	"log"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// Cache stores raw campus API responses keyed by request URL.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// MemoryCache is a per-process cache.
type MemoryCache struct {
	c *cache.Cache
}

func NewMemoryCache(defaultTTL time.Duration) *MemoryCache {
	return &MemoryCache{c: cache.New(defaultTTL, 2*defaultTTL)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	if v, ok := m.c.Get(key); ok {
		return v.([]byte), true
	}
	return nil, false
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	m.c.Set(key, value, ttl)
}

// RedisCache shares responses across instances.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb, prefix: "campus:"}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[WARN] [CAMPUS] cache: redis get %s: %v", key, err)
		}
		return nil, false
	}
	return b, true
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.rdb.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		log.Printf("[WARN] [CAMPUS] cache: redis set %s: %v", key, err)
	}
}

// TieredCache checks the local cache first and backfills it from the shared one.
type TieredCache struct {
	local  Cache
	shared Cache
}

func NewTieredCache(local, shared Cache) *TieredCache {
	return &TieredCache{local: local, shared: shared}
}

func (t *TieredCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if v, ok := t.local.Get(ctx, key); ok {
		return v, true
	}
	if t.shared == nil {
		return nil, false
	}
	v, ok := t.shared.Get(ctx, key)
	if ok {
		t.local.Set(ctx, key, v, cache.DefaultExpiration)
	}
	return v, ok
}

func (t *TieredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	t.local.Set(ctx, key, value, ttl)
	if t.shared != nil {
		t.shared.Set(ctx, key, value, ttl)
	}
}
