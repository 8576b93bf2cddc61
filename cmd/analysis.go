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

// analysisBackendFromConfig reads the analysis backend settings. An empty backend means none.
func analysisBackendFromConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("analysis-backend")))
	if backend == "" {
		backend = schema.NoneBackend
	}
	connStr := viper.GetString("analysis-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// analysisSetup loads minimal configuration needed for analysis operations.
// This is used by commands that need analysis access without full shared setup.
func analysisSetup() error {
	backend, connStr, err := analysisBackendFromConfig()
	if err != nil {
		return err
	}

	// Initialize stores with the loaded config (no report cache for analysis commands)
	if err := iocache.InitStores(schema.NoneBackend, "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize analysis: %w", err)
	}

	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")

	return nil
}

// analysisSetupWrapper wraps analysisSetup to provide PreRunE for analysis commands.
func analysisSetupWrapper(_ *cobra.Command, _ []string) error {
	return analysisSetup()
}

// analysisMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func analysisMigrateSetup() error {
	backend, connStr, err := analysisBackendFromConfig()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetAnalysisDBFilePath()
	}

	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = connStr

	return nil
}

// analysisMigrateSetupWrapper wraps analysisMigrateSetup to provide PreRunE for migrate command.
func analysisMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return analysisMigrateSetup()
}

// analysisCmd focused on analysis data management.
//
// Note: Analysis subcommands use minimal initialization (analysisSetup) instead of
// the full sharedSetup. This avoids inventory validation and threshold processing
// for simple data management.
var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Manage historical analysis tracking and exports",
	Long: `Manage historical analysis data used for migration progress tracking and reporting.

When --analysis-backend is set, SQLScope tracks every analyze run, storing:
- Run metadata (uuid, timestamps, configuration, duration, totals)
- Per-report scores, categories, fingerprints and estimated hours
- Exact and near-duplicate groups with their recommendations

This enables trend tracking across inventory snapshots and data export for BI tools.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Subcommands:
  status  - Show analysis tracking statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Track runs in the default SQLite file
  sqlscope analyze reports.csv --analysis-backend sqlite

  # Check tracking status
  sqlscope analysis status --analysis-backend sqlite

  # Export for analysis in pandas/DuckDB
  sqlscope analysis export --analysis-backend sqlite --output-file sqlscope`,
}

// analysisClearCmd clears the analysis data.
var analysisClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all historical analysis tracking data",
	Long: `Delete all stored analysis runs, report scores and duplicate groups.

WARNING: This action cannot be undone. Consider exporting data first.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the analysis tables and migration bookkeeping

Examples:
  # Export before clearing
  sqlscope analysis export --analysis-backend sqlite --output-file backup
  sqlscope analysis clear --analysis-backend sqlite`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		iocache.CloseStores()
		if err := iocache.ClearAnalysis(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
			contract.LogFatal("Failed to clear analysis data", err)
		}
		fmt.Println("Analysis data cleared successfully.")
	},
}

// analysisStatusCmd shows analysis status.
var analysisStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display analysis tracking statistics and connection details",
	Long: `Show detailed information about historical analysis tracking.

Displays:
- Backend type and connection status
- Total number of analysis runs stored
- Last and oldest analysis run timestamps
- Total reports analyzed across all runs
- Row counts per table

Examples:
  # Check analysis tracking status
  sqlscope analysis status --analysis-backend sqlite`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetAnalysisStore()
		if store == nil {
			iocache.PrintAnalysisStatus(schema.AnalysisStatus{Backend: string(cfg.AnalysisBackend)})
			return
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get analysis status", err)
		}
		iocache.PrintAnalysisStatus(status)
	},
}

// analysisExportCmd exports analysis data to Parquet files.
var analysisExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export historical data to Parquet for BI tools and analytics",
	Long: `Export all stored analysis data to Parquet format for use with analytics tools.

Writes three files next to --output-file:
- <output>.analysis_runs.parquet    - metadata about each analysis run
- <output>.report_scores.parquet    - per-report scores of every run
- <output>.duplicate_groups.parquet - duplicate groups of every run

Requires: --output-file parameter

Examples:
  # Export all data
  sqlscope analysis export --analysis-backend sqlite --output-file sqlscope

  # Use with DuckDB for analysis
  duckdb -c "SELECT complexity_category, count(*) FROM read_parquet('sqlscope.report_scores.parquet') GROUP BY 1"`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteAnalysisExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export analysis data", err)
		}
	},
}

// analysisMigrateCmd runs database migrations for the analysis store.
var analysisMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the analysis tracking store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  sqlscope analysis migrate --analysis-backend sqlite

  # Migrate to specific version
  sqlscope analysis migrate --analysis-backend sqlite --target-version 2

  # Rollback to initial state
  sqlscope analysis migrate --analysis-backend sqlite --target-version 0`,
	PreRunE: analysisMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateAnalysis(cfg.AnalysisBackend, cfg.AnalysisDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
