package config

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/tromp/pkg/cache"
)

// Open connects the configured cache backend. The file backend falls back
// to cache.DefaultDir when Dir is empty. A positive TTL caps the lifetime
// of every entry the pipeline writes.
func (c CacheConfig) Open(ctx context.Context) (cache.Cache, error) {
	var (
		backend cache.Cache
		err     error
	)
	switch c.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendFile, "":
		dir := c.Dir
		if dir == "" {
			if dir, err = cache.DefaultDir(); err != nil {
				return nil, err
			}
		}
		backend, err = cache.NewFileCache(dir)
	case BackendRedis:
		backend, err = cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
	case BackendMemory:
		backend = cache.NewBoundedMemoryCache(c.MemoryEntries)
	case BackendMongo:
		backend, err = cache.NewMongoCache(ctx, cache.MongoOptions{
			URI:        c.MongoURI,
			Database:   c.MongoDatabase,
			Collection: c.MongoCollection,
		})
	default:
		return nil, fmt.Errorf("unknown cache backend %q", c.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", c.Backend, err)
	}
	if c.TTL.Duration > 0 {
		return &cappedCache{Cache: backend, max: c.TTL.Duration}, nil
	}
	return backend, nil
}

// cappedCache shortens entry lifetimes to at most max.
type cappedCache struct {
	cache.Cache
	max time.Duration
}

func (c *cappedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 || ttl > c.max {
		ttl = c.max
	}
	return c.Cache.Set(ctx, key, data, ttl)
}
