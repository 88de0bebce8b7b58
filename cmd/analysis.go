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

// analysisBackendConfig reads and validates the analysis backend settings.
// An empty backend means tracking is disabled.
func analysisBackendConfig() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend := schema.NoneBackend
	if b := viper.GetString("analysis-backend"); b != "" {
		backend = schema.DatabaseBackend(b)
	}
	connStr := viper.GetString("analysis-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// analysisSetup loads minimal configuration needed for analysis operations.
func analysisSetup() error {
	backend, connStr, err := analysisBackendConfig()
	if err != nil {
		return err
	}

	// No result cache for analysis commands
	if err := iocache.InitCaching("", "", backend, connStr); err != nil {
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

// analysisMigrateSetupWrapper loads configuration for migrations without creating any table,
// allowing migrations to run on a fresh database.
func analysisMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	backend, connStr, err := analysisBackendConfig()
	if err != nil {
		return err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetAnalysisDBFilePath()
	}
	cfg.AnalysisBackend = backend
	cfg.AnalysisDBConnect = connStr
	return nil
}

// analysisDBFilePath returns the SQLite file to delete on clear.
func analysisDBFilePath() string {
	if cfg.AnalysisDBConnect != "" {
		return cfg.AnalysisDBConnect
	}
	return contract.GetAnalysisDBFilePath()
}

// analysisCmd focused on analysis data management.
var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Manage tracked batch runs and their repository records",
	Long: `Manage the history of batch runs stored by the analysis tracker.

When enabled with --analysis-backend, every 'analyze' run stores:
- Run metadata (timestamps, configuration, duration, outcome counts)
- One row per repository record with its process attributes and class-level means

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show analysis tracking statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  repoquality analysis status --analysis-backend sqlite

  # Export for analysis in pandas/DuckDB
  repoquality analysis export --analysis-backend sqlite --output-file runs`,
}

// analysisClearCmd clears the analysis data.
var analysisClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all tracked runs and repository records",
	Long: `Delete all stored analysis runs and repository records.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  repoquality analysis export --output-file backup
  repoquality analysis clear`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release the SQLite handle before deleting its file
		iocache.CloseCaching()
		if err := iocache.ClearAnalysis(cfg.AnalysisBackend, analysisDBFilePath(), cfg.AnalysisDBConnect); err != nil {
			contract.LogFatal("Failed to clear analysis data", err)
		}
		fmt.Println("Analysis data cleared successfully.")
	},
}

// analysisStatusCmd shows analysis status.
var analysisStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display analysis tracking statistics and connection details",
	Long: `Show the backend, run count, run timestamps, repositories analyzed and
table row counts of the analysis store.

Examples:
  # Check analysis tracking status
  repoquality analysis status`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetAnalysisStore()
		if store == nil {
			contract.LogFatal("Failed to get analysis status", errors.New("analysis tracking is disabled"))
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
	Short: "Export tracked runs and repository records to Parquet",
	Long: `Export all stored analysis data to Parquet files named after --output-file:

  <output-file>.analysis_runs.parquet       one row per batch run
  <output-file>.repository_records.parquet  one row per repository record

Requires: --output-file parameter

Examples:
  # Export all data
  repoquality analysis export --output-file quality

  # Query with DuckDB
  duckdb -c "SELECT metrics_source, avg(cbo_mean) FROM read_parquet('quality.repository_records.parquet') GROUP BY 1"`,
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
  repoquality analysis migrate --analysis-backend sqlite

  # Migrate to specific version
  repoquality analysis migrate --target-version 1

  # Rollback everything
  repoquality analysis migrate --target-version 0`,
	PreRunE: analysisMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateAnalysis(cfg.AnalysisBackend, cfg.AnalysisDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
