package config

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/tromp/pkg/cache"
)

type recordingCache struct {
	cache.NullCache
	ttl time.Duration
}

func (r *recordingCache) Set(_ context.Context, _ string, _ []byte, ttl time.Duration) error {
	r.ttl = ttl
	return nil
}

func TestCappedCache(t *testing.T) {
	tests := []struct {
		name string
		ttl  time.Duration
		want time.Duration
	}{
		{"longer is capped", 48 * time.Hour, time.Hour},
		{"shorter is kept", time.Minute, time.Minute},
		{"no expiry is capped", 0, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingCache{}
			c := &cappedCache{Cache: rec, max: time.Hour}
			if err := c.Set(context.Background(), "k", nil, tt.ttl); err != nil {
				t.Fatal(err)
			}
			if rec.ttl != tt.want {
				t.Errorf("ttl = %v, want %v", rec.ttl, tt.want)
			}
		})
	}
}

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()

	none, err := CacheConfig{Backend: BackendNone}.Open(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := none.(cache.NullCache); !ok {
		t.Errorf("none backend = %T, want cache.NullCache", none)
	}

	dir := t.TempDir()
	file, err := CacheConfig{Backend: BackendFile, Dir: dir, TTL: Duration{time.Hour}}.Open(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	if _, ok := file.(*cappedCache); !ok {
		t.Errorf("file backend with ttl = %T, want *cappedCache", file)
	}
	if err := file.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	data, hit, err := file.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}

	mem, err := CacheConfig{Backend: BackendMemory, MemoryEntries: 2}.Open(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer mem.Close()
	bounded, ok := mem.(*cache.MemoryCache)
	if !ok {
		t.Fatalf("memory backend = %T, want *cache.MemoryCache", mem)
	}
	for _, k := range []string{"a", "b", "c"} {
		_ = mem.Set(ctx, k, []byte(k), 0)
	}
	if bounded.Len() != 2 {
		t.Errorf("memory backend holds %d entries, want 2", bounded.Len())
	}

	if _, err := (CacheConfig{Backend: "memcached"}).Open(ctx); err == nil {
		t.Error("unknown backend should fail")
	}
}
