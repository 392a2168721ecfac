package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/devflow/pkg/cache"
	"github.com/matzehuels/devflow/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the registry response cache",
		Long: `Manage the on-disk registry response cache. Memory and Redis caches are
managed by their own lifetimes and are not affected.`,
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached registry responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.resolveCacheDir()
			if err != nil {
				return err
			}

			if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
				printInfo("Cache is empty")
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			count, _ := fc.Len()
			if err := fc.Clear(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.resolveCacheDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

// resolveCacheDir honors a configured cache directory. An unreadable config
// falls back to the default location so the cache can always be cleared.
func (c *CLI) resolveCacheDir() (string, error) {
	var cfg *config.Config
	if loaded, err := c.loadConfig(c.configPath); err == nil {
		cfg = loaded
	} else {
		c.Logger.Debug("config unavailable, using default cache dir", "error", err)
	}
	dir, err := cacheDir(cfg)
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return dir, nil
}
