package cmd

import (
	"errors"
	"fmt"

	"github.com/huangsam/repoquality/internal/contract"
	"github.com/huangsam/repoquality/internal/iocache"
	"github.com/huangsam/repoquality/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// No analysis tracking for cache commands
	if err := iocache.InitCaching(backend, connStr, "", ""); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr

	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheDBFilePath returns the SQLite file to delete on clear.
func cacheDBFilePath() string {
	if cfg.CacheDBConnect != "" {
		return cfg.CacheDBConnect
	}
	return contract.GetCacheDBFilePath()
}

// cacheCmd focused on result cache management.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the per-repository result cache used by --resume",
	Long: `Manage the cache of per-repository records that lets an interrupted batch
resume without re-cloning and re-measuring finished repositories.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached records

Examples:
  # Check cache status
  repoquality cache status

  # Force a full re-analysis on the next run
  repoquality cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached repository records",
	Long: `Delete all cached repository records from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear SQLite cache (default)
  repoquality cache clear

  # Clear MySQL cache (set connection string via env variable)
  REPOQUALITY_CACHE_BACKEND=mysql REPOQUALITY_CACHE_DB_CONNECT="..." repoquality cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release the SQLite handle before deleting its file
		iocache.CloseCaching()
		if err := iocache.ClearCache(cfg.CacheBackend, cacheDBFilePath(), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show the backend, entry count, entry timestamps and size of the result cache.

Examples:
  # Check cache status
  repoquality cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetResultStore()
		if store == nil {
			contract.LogFatal("Failed to get cache status", errors.New("result cache is disabled"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(status)
	},
}
