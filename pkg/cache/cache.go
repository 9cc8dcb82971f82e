// Package cache stores rendered layouts and artifacts between runs.
//
// The pipeline caches two things: the diagram computed for a term (keyed by
// the term's canonical de Bruijn form plus layout options) and each output
// artifact (keyed by the layout hash plus format options). Both go through
// the [Cache] interface, so the CLI can use a [FileCache] while the server
// shares a [RedisCache] or [MongoCache] between instances.
//
// Keys come from a [Keyer]. [DefaultKeyer] hashes every option that affects
// the output; [ScopedKeyer] adds a namespace prefix.
package cache

import (
	"context"
	"time"
)

// Cache TTLs. Layouts are a pure function of the term, so they live long.
const (
	TTLLayout   = 30 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry. Implementations must be safe
// for concurrent use. A miss is (nil, false, nil); errors are reserved for
// backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
