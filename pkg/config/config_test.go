package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	dferrors "github.com/matzehuels/devflow/pkg/errors"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}
	if cfg.HTTP.Timeout.Duration != 10*time.Second {
		t.Errorf("timeout = %v", cfg.HTTP.Timeout)
	}
	if cfg.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("ttl = %v", cfg.Cache.TTL)
	}
	l := cfg.EvidenceLimits()
	if l.Compatibility != 5 || l.Vulnerability != 5 || l.Latest != 3 || l.Fallback != 5 {
		t.Errorf("limits = %+v", l)
	}
	if cfg.Search.RequestsPerMinute != 10 {
		t.Errorf("rpm = %d", cfg.Search.RequestsPerMinute)
	}
	if cfg.Server.OperationTimeout.Duration != 30*time.Second {
		t.Errorf("operation timeout = %v", cfg.Server.OperationTimeout)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", `
[http]
timeout = "3s"
retries = 5

[cache]
backend = "memory"

[search.limits]
latest = 7
`)

	cfg, err := load(path, true, "", noEnv)
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}
	if cfg.HTTP.Timeout.Duration != 3*time.Second || cfg.HTTP.Retries != 5 {
		t.Errorf("http = %+v", cfg.HTTP)
	}
	if cfg.Cache.Backend != CacheMemory {
		t.Errorf("backend = %q", cfg.Cache.Backend)
	}
	if cfg.Search.Limits.Latest != 7 || cfg.Search.Limits.Compatibility != 5 {
		t.Errorf("limits = %+v", cfg.Search.Limits)
	}
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	if _, err := load(missing, false, "", noEnv); err != nil {
		t.Errorf("implicit missing file should be ignored: %v", err)
	}
	if _, err := load(missing, true, "", noEnv); err == nil {
		t.Error("explicit missing file should fail")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", "[cache]\nbackend = \"file\"\ncolour = \"blue\"\n")
	_, err := load(path, true, "", noEnv)
	if !dferrors.Is(err, dferrors.ErrCodeConfiguration) {
		t.Fatalf("err = %v, want CONFIGURATION", err)
	}
	if !strings.Contains(err.Error(), "cache.colour") {
		t.Errorf("error should name the key: %v", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"bad duration":  "[http]\ntimeout = \"soon\"\n",
		"bad backend":   "[cache]\nbackend = \"disk\"\n",
		"zero retries":  "[http]\nretries = 0\n",
		"limit too big": "[search.limits]\ncompatibility = 11\n",
		"mongo no uri":  "[history]\nbackend = \"mongo\"\n",
		"ftp endpoint":  "[search]\nendpoint = \"ftp://example.com\"\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.toml", content)
			if _, err := load(path, true, "", noEnv); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	cfg, err := load("", false, "", envMap(map[string]string{
		EnvSearchAPIKey:   " key ",
		EnvSearchEngineID: "cx",
		EnvCacheBackend:   "redis",
		EnvRedisAddr:      "redis:6379",
		EnvMongoURI:       "mongodb://db:27017",
		EnvHTTPAddr:       ":9090",
	}))
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}
	if cfg.Search.APIKey != "key" || cfg.Search.EngineID != "cx" {
		t.Errorf("search = %+v", cfg.Search)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.Redis.Addr != "redis:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.History.Backend != HistoryMongo || cfg.History.MongoURI != "mongodb://db:27017" {
		t.Errorf("history = %+v", cfg.History)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
}

func TestDotEnv(t *testing.T) {
	dotenv := writeFile(t, t.TempDir(), ".env",
		"GOOGLE_SEARCH_API_KEY=from-file\nGOOGLE_SEARCH_ENGINE_ID=engine\n")

	cfg, err := load("", false, dotenv, envMap(map[string]string{EnvSearchAPIKey: "from-env"}))
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}
	// The process environment wins over the .env file.
	if cfg.Search.APIKey != "from-env" {
		t.Errorf("api key = %q, want from-env", cfg.Search.APIKey)
	}
	if cfg.Search.EngineID != "engine" {
		t.Errorf("engine id = %q, want engine", cfg.Search.EngineID)
	}
}

func TestSearchCredentials(t *testing.T) {
	cfg := Default()
	if _, err := cfg.SearchCredentials(); !dferrors.Is(err, dferrors.ErrCodeConfiguration) {
		t.Fatalf("err = %v, want CONFIGURATION", err)
	}

	cfg.Search.APIKey, cfg.Search.EngineID = "k", "cx"
	sc, err := cfg.SearchCredentials()
	if err != nil {
		t.Fatalf("SearchCredentials() error: %v", err)
	}
	if sc.APIKey != "k" || sc.EngineID != "cx" || sc.Timeout != 10*time.Second {
		t.Errorf("search config = %+v", sc)
	}
}

func TestStringMasksSecrets(t *testing.T) {
	cfg := Default()
	cfg.Search.APIKey = "super-secret"
	out := cfg.String()
	if strings.Contains(out, "super-secret") {
		t.Error("api key leaked")
	}
	if !strings.Contains(out, `timeout = "10s"`) {
		t.Errorf("missing timeout in:\n%s", out)
	}
	if cfg.Search.APIKey != "super-secret" {
		t.Error("String() must not modify the receiver")
	}
}
