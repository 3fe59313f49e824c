package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/techradar/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layout and render cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand. It clears the
// configured backend: the cache directory, or every key under the Redis
// prefix.
func (c *CLI) cacheClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached layouts, artifacts and item lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := bindFlags(c.config, cmd.Flags(), map[string]string{
				"cache.backend": "cache",
				"redis.addr":    "redis-addr",
			})
			if err != nil {
				return err
			}
			s, err := loadSettings(c.config)
			if err != nil {
				return err
			}

			switch s.Cache.Backend {
			case cacheNone:
				printInfo("Caching is disabled")
				return nil
			case cacheRedis:
				rc, err := cache.NewRedisCache(cmd.Context(), s.Redis)
				if err != nil {
					return err
				}
				defer rc.Close()
				n, err := rc.Clear(cmd.Context())
				if err != nil {
					return err
				}
				printSuccess("Cleared %d cached entries", n)
				printDetail("Redis: %s (prefix %q)", s.Redis.Addr, s.Redis.Prefix)
				return nil
			}

			dir, err := fileCacheDir(s)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			n, err := fc.Clear()
			if err != nil {
				return err
			}
			printSuccess("Cleared %d cached entries", n)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
	cmd.Flags().String("cache", cacheFile, "cache backend: file or redis")
	_ = cmd.RegisterFlagCompletionFunc("cache", completeBackends)
	cmd.Flags().String("redis-addr", "localhost:6379", "redis address for --cache redis")
	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(c.config)
			if err != nil {
				return err
			}
			dir, err := fileCacheDir(s)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}

// fileCacheDir returns the configured cache directory, or the default.
func fileCacheDir(s Settings) (string, error) {
	if s.Cache.Dir != "" {
		return s.Cache.Dir, nil
	}
	return cacheDir()
}
