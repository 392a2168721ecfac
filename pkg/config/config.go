// Package config loads devflow settings.
//
// Settings are layered, later layers winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file, by default $XDG_CONFIG_HOME/devflow/config.toml
//  3. environment variables, with a .env file in the working directory
//     filling in variables the process environment does not set
//
// Example config.toml:
//
//	[http]
//	timeout = "10s"
//	retries = 3
//
//	[cache]
//	backend = "redis"
//	ttl = "24h"
//
//	[cache.redis]
//	addr = "localhost:6379"
//
//	[search]
//	requests_per_minute = 10
//
//	[history]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	dferrors "github.com/matzehuels/devflow/pkg/errors"
	"github.com/matzehuels/devflow/pkg/evidence"
	"github.com/matzehuels/devflow/pkg/integrations/search"
)

const appName = "devflow"

// Environment variables read by [Load].
const (
	EnvSearchAPIKey   = "GOOGLE_SEARCH_API_KEY"
	EnvSearchEngineID = "GOOGLE_SEARCH_ENGINE_ID"
	EnvCacheBackend   = "DEVFLOW_CACHE_BACKEND"
	EnvRedisAddr      = "DEVFLOW_REDIS_ADDR"
	EnvMongoURI       = "DEVFLOW_MONGO_URI"
	EnvHTTPAddr       = "DEVFLOW_HTTP_ADDR"
)

// Cache backends.
const (
	CacheFile   = "file"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// History backends.
const (
	HistoryMemory = "memory"
	HistoryMongo  = "mongo"
	HistoryNone   = "none"
)

// Duration is a time.Duration written as a Go duration string ("10s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the complete devflow configuration.
type Config struct {
	HTTP    HTTPConfig    `toml:"http"`
	Cache   CacheConfig   `toml:"cache"`
	Search  SearchConfig  `toml:"search"`
	History HistoryConfig `toml:"history"`
	Server  ServerConfig  `toml:"server"`
}

// HTTPConfig controls outbound registry requests.
type HTTPConfig struct {
	Timeout Duration `toml:"timeout"`
	Retries int      `toml:"retries"`
}

// CacheConfig selects and tunes the registry response cache.
type CacheConfig struct {
	Backend       string      `toml:"backend"`
	TTL           Duration    `toml:"ttl"`
	Dir           string      `toml:"dir"` // File backend; empty uses the XDG cache dir
	MemoryEntries int         `toml:"memory_entries"`
	Redis         RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// SearchConfig holds web search credentials and query caps.
type SearchConfig struct {
	APIKey            string `toml:"api_key"`
	EngineID          string `toml:"engine_id"`
	Endpoint          string `toml:"endpoint"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	Limits            Limits `toml:"limits"`
}

// Limits caps the results requested per evidence query.
type Limits struct {
	Compatibility int `toml:"compatibility"`
	Vulnerability int `toml:"vulnerability"`
	Latest        int `toml:"latest"`
	Fallback      int `toml:"fallback"`
}

// HistoryConfig selects the check history backend.
type HistoryConfig struct {
	Backend    string `toml:"backend"`
	Size       int    `toml:"size"`
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig controls `devflow serve` and per-operation deadlines.
type ServerConfig struct {
	Addr             string   `toml:"addr"`
	OperationTimeout Duration `toml:"operation_timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	l := evidence.DefaultLimits()
	return &Config{
		HTTP: HTTPConfig{
			Timeout: Duration{10 * time.Second},
			Retries: 3,
		},
		Cache: CacheConfig{
			Backend:       CacheFile,
			TTL:           Duration{24 * time.Hour},
			MemoryEntries: 1024,
			Redis:         RedisConfig{Addr: "localhost:6379", Prefix: appName + ":"},
		},
		Search: SearchConfig{
			RequestsPerMinute: search.DefaultRequestsPerMinute,
			Limits: Limits{
				Compatibility: l.Compatibility,
				Vulnerability: l.Vulnerability,
				Latest:        l.Latest,
				Fallback:      l.Fallback,
			},
		},
		History: HistoryConfig{
			Backend: HistoryMemory,
			Size:    500,
		},
		Server: ServerConfig{
			Addr:             ":8080",
			OperationTimeout: Duration{30 * time.Second},
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/devflow/config.toml, falling back to
// ~/.config/devflow/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load builds the configuration from defaults, the TOML file at path and the
// environment. An empty path means [DefaultPath], which may be absent; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}
	return load(path, explicit, ".env", os.LookupEnv)
}

func load(path string, explicit bool, dotenv string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) || explicit {
				return nil, err
			}
		}
	}

	env, err := readDotEnv(dotenv)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv(func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := env[key]
		return v, ok
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return dferrors.Wrap(dferrors.ErrCodeConfiguration, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return dferrors.New(dferrors.ErrCodeConfiguration, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// readDotEnv parses the .env file at path. A missing file yields no values.
func readDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	env, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, dferrors.Wrap(dferrors.ErrCodeConfiguration, err, "read %s", path)
	}
	return env, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvSearchAPIKey, &c.Search.APIKey)
	set(EnvSearchEngineID, &c.Search.EngineID)
	set(EnvCacheBackend, &c.Cache.Backend)
	set(EnvRedisAddr, &c.Cache.Redis.Addr)
	set(EnvHTTPAddr, &c.Server.Addr)

	var mongoURI string
	set(EnvMongoURI, &mongoURI)
	if mongoURI != "" {
		c.History.MongoURI = mongoURI
		if c.History.Backend == HistoryMemory {
			c.History.Backend = HistoryMongo
		}
	}
}

// Validate checks backend names and numeric ranges.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheFile, CacheMemory, CacheRedis, CacheNone:
	default:
		return dferrors.New(dferrors.ErrCodeConfiguration, "unknown cache backend %q", c.Cache.Backend)
	}
	switch c.History.Backend {
	case HistoryMemory, HistoryMongo, HistoryNone:
	default:
		return dferrors.New(dferrors.ErrCodeConfiguration, "unknown history backend %q", c.History.Backend)
	}
	if c.History.Backend == HistoryMongo && c.History.MongoURI == "" {
		return dferrors.New(dferrors.ErrCodeConfiguration, "history backend mongo requires mongo_uri or %s", EnvMongoURI)
	}
	if c.Search.Endpoint != "" {
		if err := dferrors.ValidateURL(c.Search.Endpoint); err != nil {
			return dferrors.Wrap(dferrors.ErrCodeConfiguration, err, "search endpoint")
		}
	}
	if c.HTTP.Timeout.Duration <= 0 {
		return dferrors.New(dferrors.ErrCodeConfiguration, "http timeout must be positive")
	}
	if c.HTTP.Retries < 1 {
		return dferrors.New(dferrors.ErrCodeConfiguration, "http retries must be at least 1, got %d", c.HTTP.Retries)
	}
	for name, n := range map[string]int{
		"compatibility": c.Search.Limits.Compatibility,
		"vulnerability": c.Search.Limits.Vulnerability,
		"latest":        c.Search.Limits.Latest,
		"fallback":      c.Search.Limits.Fallback,
	} {
		if n < search.MinResults || n > search.MaxResults {
			return dferrors.New(dferrors.ErrCodeConfiguration,
				"search limit %s must be between %d and %d, got %d", name, search.MinResults, search.MaxResults, n)
		}
	}
	return nil
}

// SearchCredentials returns the search client configuration, or a
// CONFIGURATION error when the API key or engine id is missing.
func (c *Config) SearchCredentials() (search.Config, error) {
	if c.Search.APIKey == "" || c.Search.EngineID == "" {
		return search.Config{}, dferrors.Wrap(dferrors.ErrCodeConfiguration, search.ErrMissingCredentials,
			"set %s and %s (environment, .env file or config)", EnvSearchAPIKey, EnvSearchEngineID)
	}
	return search.Config{
		APIKey:   c.Search.APIKey,
		EngineID: c.Search.EngineID,
		Endpoint: c.Search.Endpoint,
		Timeout:  c.HTTP.Timeout.Duration,
	}, nil
}

// EvidenceLimits converts the configured caps for the evidence checker.
func (c *Config) EvidenceLimits() evidence.Limits {
	return evidence.Limits{
		Compatibility: c.Search.Limits.Compatibility,
		Vulnerability: c.Search.Limits.Vulnerability,
		Latest:        c.Search.Limits.Latest,
		Fallback:      c.Search.Limits.Fallback,
	}
}

// String renders the configuration as TOML with secrets masked.
func (c *Config) String() string {
	masked := *c
	if masked.Search.APIKey != "" {
		masked.Search.APIKey = "****"
	}
	if masked.Cache.Redis.Password != "" {
		masked.Cache.Redis.Password = "****"
	}
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(masked); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}
