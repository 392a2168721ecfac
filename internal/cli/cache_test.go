package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/devflow/pkg/config"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir(nil)
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", "devflow")
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	dir, err := cacheDir(nil)
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != filepath.Join(xdg, "devflow") {
		t.Errorf("cacheDir() = %q, want under %q", dir, xdg)
	}
}

func TestCacheDirConfigured(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Dir = "/var/cache/devflow-test"

	dir, err := cacheDir(cfg)
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != cfg.Cache.Dir {
		t.Errorf("cacheDir() = %q, want %q", dir, cfg.Cache.Dir)
	}
}

func TestCachePathCommand(t *testing.T) {
	dir := t.TempDir()
	c := New(&bytes.Buffer{}, log.InfoLevel)
	c.loadConfig = func(string) (*config.Config, error) {
		cfg := config.Default()
		cfg.Cache.Dir = dir
		return cfg, nil
	}

	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"cache", "path"})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != dir {
		t.Errorf("cache path = %q, want %q", got, dir)
	}
}
