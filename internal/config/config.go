// Package config loads the optional TOML configuration file shared by the
// CLI and the HTTP server.
//
// The file lives at $XDG_CONFIG_HOME/tromp/config.toml (falling back to
// ~/.config/tromp/config.toml). A missing file is not an error: every field
// has a default, and command-line flags override whatever the file sets.
//
//	[render]
//	notation  = "debruijn"
//	formats   = ["txt", "svg"]
//	placement = "traced"
//
//	[cache]
//	backend    = "redis"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/tromp/pkg/cache"
	"github.com/matzehuels/tromp/pkg/pipeline"
)

// Cache backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// Config is the parsed configuration file.
type Config struct {
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// RenderConfig holds defaults for render flags.
type RenderConfig struct {
	Notation  string   `toml:"notation"`
	VizType   string   `toml:"viz_type"`
	Formats   []string `toml:"formats"`
	Placement string   `toml:"placement"`
	Reach     string   `toml:"reach"`
	CellSize  float64  `toml:"cell_size"`
	Scale     float64  `toml:"scale"`
	Color     string   `toml:"color"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend string   `toml:"backend"`
	Dir     string   `toml:"dir"`
	TTL     Duration `toml:"ttl"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`

	// MemoryEntries bounds the memory backend; 0 uses the cache default.
	MemoryEntries int `toml:"memory_entries"`
}

// ServerConfig configures `tromp serve`.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	// RenderTimeout bounds a single pipeline run.
	RenderTimeout Duration `toml:"render_timeout"`
}

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Render: RenderConfig{
			Notation:  pipeline.DefaultNotation,
			VizType:   pipeline.DefaultVizType,
			Placement: pipeline.DefaultPlacement,
			Reach:     pipeline.DefaultReach,
			CellSize:  pipeline.DefaultCellSize,
			Scale:     pipeline.DefaultScale,
		},
		Cache: CacheConfig{
			Backend:         BackendFile,
			TTL:             Duration{cache.TTLArtifact},
			MongoDatabase:   cache.DefaultMongoDatabase,
			MongoCollection: cache.DefaultMongoCollection,
		},
		Server: ServerConfig{
			Addr:          ":8080",
			ReadTimeout:   Duration{10 * time.Second},
			WriteTimeout:  Duration{60 * time.Second},
			RenderTimeout: Duration{30 * time.Second},
		},
	}
}

// DefaultPath returns the config file location, honoring XDG_CONFIG_HOME.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "tromp", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate config: %w", err)
	}
	return filepath.Join(home, ".config", "tromp", "config.toml"), nil
}

// Load reads the config file at the default path.
func Load() (Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadFrom(path)
}

// LoadFrom reads path on top of DefaultConfig. A missing file yields the
// defaults; unknown keys are rejected so typos surface early.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return DefaultConfig(), fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendMongo, BackendMemory, BackendNone:
	default:
		return fmt.Errorf("cache.backend must be one of file, redis, mongo, memory, none (got %q)", c.Cache.Backend)
	}
	if c.Cache.MemoryEntries < 0 {
		return fmt.Errorf("cache.memory_entries must not be negative (got %d)", c.Cache.MemoryEntries)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache.redis_addr is required for the redis backend")
	}
	if c.Cache.Backend == BackendMongo && c.Cache.MongoURI == "" {
		return fmt.Errorf("cache.mongo_uri is required for the mongo backend")
	}
	if err := pipeline.ValidateVizType(c.Render.VizType); err != nil {
		return err
	}
	return pipeline.ValidateFormats(c.Render.Formats)
}

// PipelineOptions returns render defaults as pipeline options. The caller
// fills in the expression.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Notation:  c.Render.Notation,
		VizType:   c.Render.VizType,
		Formats:   append([]string(nil), c.Render.Formats...),
		Placement: c.Render.Placement,
		Reach:     c.Render.Reach,
		CellSize:  c.Render.CellSize,
		Scale:     c.Render.Scale,
		Color:     c.Render.Color,
	}
}
