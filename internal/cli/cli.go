package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/devflow/pkg/buildinfo"
	"github.com/matzehuels/devflow/pkg/cache"
	"github.com/matzehuels/devflow/pkg/config"
	"github.com/matzehuels/devflow/pkg/evidence"
	"github.com/matzehuels/devflow/pkg/integrations"
	"github.com/matzehuels/devflow/pkg/integrations/maven"
	"github.com/matzehuels/devflow/pkg/integrations/nuget"
	"github.com/matzehuels/devflow/pkg/integrations/search"
	"github.com/matzehuels/devflow/pkg/resolver"
	"github.com/matzehuels/devflow/pkg/service"
	"github.com/matzehuels/devflow/pkg/store"
	"github.com/matzehuels/devflow/pkg/vuln"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "devflow"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	jsonOutput bool
	noCache    bool

	// loadConfig is swapped in tests.
	loadConfig func(path string) (*config.Config, error)
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:     newLogger(w, level),
		loadConfig: config.Load,
	}
}

// SetLogLevel updates the logger's level and enables request logging at
// debug level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		installLogHooks(c.Logger)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "devflow answers which package versions run on your framework",
		Long: `devflow resolves which published versions of a package are compatible with a
target framework or runtime, using registry metadata first and web search
evidence as a fallback.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/devflow/config.toml)")
	flags.BoolVar(&c.jsonOutput, "json", false, "print results as JSON")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the registry response cache")

	root.AddCommand(c.versionsCommand())
	root.AddCommand(c.compatibleCommand())
	root.AddCommand(c.depsCommand())
	root.AddCommand(c.vulnsCommand())
	root.AddCommand(c.metadataCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.checkMavenCommand())
	root.AddCommand(c.fallbackCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Service Factory
// =============================================================================

// app bundles what a command needs and releases it on close.
type app struct {
	cfg     *config.Config
	svc     *service.Service
	closers []io.Closer
}

func (a *app) close() {
	for _, cl := range a.closers {
		_ = cl.Close()
	}
}

// serviceOptions control which optional parts newApp wires.
type serviceOptions struct {
	// requireSearch fails construction when search credentials are missing.
	requireSearch bool
}

// newApp loads configuration and wires the cache, registry clients, search
// client, history store and service.
func (c *CLI) newApp(ctx context.Context, opts serviceOptions) (*app, error) {
	cfg, err := c.loadConfig(c.configPath)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg}

	backend, err := c.newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, backend)

	httpOpts := []integrations.Option{
		integrations.WithTimeout(cfg.HTTP.Timeout.Duration),
		integrations.WithRetry(cfg.HTTP.Retries, time.Second),
		integrations.WithKeyer(cache.SchemaKeyer()),
	}
	ttl := cfg.Cache.TTL.Duration
	res := resolver.New(nuget.NewClient(backend, ttl, httpOpts...), vuln.NewPlaceholderProvider(), c.Logger)

	checker, err := c.newChecker(cfg, backend, httpOpts)
	if err != nil {
		if opts.requireSearch {
			a.close()
			return nil, err
		}
		c.Logger.Debug("search checks disabled", "reason", err)
	}

	history, err := newHistory(ctx, cfg)
	if err != nil {
		a.close()
		return nil, err
	}
	a.closers = append(a.closers, history)

	a.svc = service.New(res, checker, history, c.Logger)
	a.svc.Timeout = cfg.Server.OperationTimeout.Duration
	return a, nil
}

func (c *CLI) newChecker(cfg *config.Config, backend cache.Cache, httpOpts []integrations.Option) (*evidence.Checker, error) {
	creds, err := cfg.SearchCredentials()
	if err != nil {
		return nil, err
	}
	client, err := search.NewClient(creds)
	if err != nil {
		return nil, err
	}
	checker := evidence.NewChecker(search.RateLimited(client, cfg.Search.RequestsPerMinute), c.Logger)
	checker.Limits = cfg.EvidenceLimits()
	checker.Latest = maven.NewClient(backend, cfg.Cache.TTL.Duration, httpOpts...)
	return checker, nil
}

func (c *CLI) newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheMemory:
		return cache.NewMemoryCache(cfg.Cache.MemoryEntries)
	case config.CacheRedis:
		r := cfg.Cache.Redis
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr: r.Addr, Password: r.Password, DB: r.DB, Prefix: r.Prefix,
		})
	default:
		dir, err := cacheDir(cfg)
		if err != nil {
			c.Logger.Warn("cache directory unavailable, caching disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

func newHistory(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.History.Backend {
	case config.HistoryNone:
		return store.NullStore{}, nil
	case config.HistoryMongo:
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        cfg.History.MongoURI,
			Database:   cfg.History.Database,
			Collection: cfg.History.Collection,
		})
	default:
		return store.NewMemoryStore(cfg.History.Size), nil
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory or the XDG default
// (~/.cache/devflow/).
func cacheDir(cfg *config.Config) (string, error) {
	if cfg != nil && cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".cache", appName), nil
}
