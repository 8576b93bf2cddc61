package cmd

import (
	"fmt"
	"strings"

	"github.com/huangsam/sqlscope/internal/contract"
	"github.com/huangsam/sqlscope/internal/iocache"
	"github.com/huangsam/sqlscope/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("cache-backend")))
	if backend == "" {
		backend = schema.SQLiteBackend
	}
	connStr := viper.GetString("cache-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Initialize caching with the loaded config (no analysis tracking for cache commands)
	if err := iocache.InitStores(backend, connStr, "", ""); err != nil {
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

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup used by analysis commands. This avoids inventory
// validation and threshold processing for simple cache operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the analyzed report cache (improves performance)",
	Long: `Manage the cache of analyzed reports that speeds up repeated analyses.

SQLScope caches the score, fingerprint and tables of each query, keyed by its SQL
text and the active weights, so unchanged reports are not re-tokenized on every run.
Entries older than 7 days are recomputed.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached data

Examples:
  # Check cache status
  sqlscope cache status

  # Clear cache after changing the tokenizer or weights
  sqlscope cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached report analyses",
	Long: `Delete all cached report analyses from the configured backend.

Use this when:
- Cache may be stale or corrupted
- Testing performance without cache
- Reclaiming disk space

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear SQLite cache (default)
  sqlscope cache clear

  # Clear MySQL cache (set connection string via env variable)
  SQLSCOPE_CACHE_BACKEND=mysql SQLSCOPE_CACHE_DB_CONNECT="..." sqlscope cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		iocache.CloseStores()
		if err := iocache.ClearCache(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the report cache.

Displays:
- Backend type and connection status
- Total number of cached reports
- Last and oldest cache entry timestamps
- Cache database size

Examples:
  # Check cache status
  sqlscope cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetReportStore()
		if store == nil {
			iocache.PrintCacheStatus(schema.CacheStatus{Backend: string(cfg.CacheBackend)})
			return
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(status)
	},
}
