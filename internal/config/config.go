// Package config loads aura's configuration from an aura.toml file.
//
// Every field has a working default, so a missing file is not an error:
// Load returns the defaults when the path does not exist. The config file
// location follows XDG conventions (~/.config/aura/aura.toml).
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/th3gh0s8/aura/pkg/errors"
)

const appName = "aura"

// Config is the full aura configuration.
type Config struct {
	// CloneRoot is the directory AUR source trees are cloned under.
	// Defaults to ~/.cache/aura/clones.
	CloneRoot string `toml:"clone_root"`

	// AURBaseURL is the metadata server queried for package info.
	AURBaseURL string `toml:"aur_base_url"`

	// PoolSize bounds the number of concurrently open database handles.
	PoolSize int `toml:"pool_size"`

	// LeaseTimeout caps how long a resolution branch waits for a free
	// database handle.
	LeaseTimeout duration `toml:"lease_timeout"`

	// RefreshClones pulls existing source trees before reading their
	// manifests. Off by default; stale manifests beat a network
	// round-trip per package.
	RefreshClones bool `toml:"refresh_clones"`

	Cache CacheConfig `toml:"cache"`
}

// CacheConfig selects and tunes the metadata cache backend.
type CacheConfig struct {
	// Backend is one of "file" (default), "redis", or "none".
	Backend string `toml:"backend"`

	// Dir is the file backend's directory. Defaults to ~/.cache/aura/http.
	Dir string `toml:"dir"`

	// TTL is how long fetched metadata stays fresh.
	TTL duration `toml:"ttl"`

	Redis RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// duration wraps time.Duration so TOML values can be written as "30s".
type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d duration) Std() time.Duration { return time.Duration(d) }

// Default returns the configuration used when no file overrides anything.
func Default() Config {
	cacheBase := cacheHome()
	return Config{
		CloneRoot:    filepath.Join(cacheBase, "clones"),
		AURBaseURL:   "https://faur.fosskers.ca",
		PoolSize:     4,
		LeaseTimeout: duration(30 * time.Second),
		Cache: CacheConfig{
			Backend: "file",
			Dir:     filepath.Join(cacheBase, "http"),
			TTL:     duration(time.Hour),
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: appName,
			},
		},
	}
}

// DefaultPath returns the standard config file location
// (~/.config/aura/aura.toml, honoring XDG_CONFIG_HOME).
func DefaultPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "aura.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, "aura.toml")
}

// Load reads the config file at path, layering it over the defaults. A
// missing file yields the defaults; a malformed one is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parsing config %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidInput,
			"unknown config key %q in %s", undecoded[0].String(), path)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.PoolSize < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "pool_size must be at least 1, got %d", c.PoolSize)
	}
	switch c.Cache.Backend {
	case "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"cache.backend must be file, redis, or none, got %q", c.Cache.Backend)
	}
	return nil
}

func cacheHome() string {
	if env := os.Getenv("XDG_CACHE_HOME"); env != "" {
		return filepath.Join(env, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, ".cache", appName)
}
