// Package cmd defines the command-line interface for repoquality.
package cmd

import (
	"github.com/huangsam/repoquality/internal/contract"
	"github.com/huangsam/repoquality/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(analysisCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the analysis subcommands to the parent analysis command
	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().StringP("output", "o", contract.DefaultOutputDir, "Directory for the dataset, per-repository records, report and charts")
	rootCmd.PersistentFlags().String("format", string(schema.TextOut), "Console format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write console output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().StringP("repos", "r", contract.DefaultReposFile, "Repository listing CSV (read by analyze, written by fetch)")
	rootCmd.PersistentFlags().IntP("workers", "w", contract.DefaultWorkers, "Number of repositories analyzed concurrently")
	rootCmd.PersistentFlags().String("token", "", "GitHub token for metadata and search (prefer GITHUB_TOKEN)")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Result cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("analysis-backend", "", "Analysis tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("analysis-db-connect", "", "Database connection string for analysis tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("emoji", "no", "Enable emojis in progress lines (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of analyzeCmd to Viper
	analyzeCmd.Flags().String("extractor-jar", contract.DefaultExtractorJar, "Path to the class-metrics extractor jar")
	analyzeCmd.Flags().String("java", contract.DefaultJavaPath, "Java launcher used to run the extractor")
	analyzeCmd.Flags().Int("extractor-workers", 0, "Concurrent extractor processes (0 = same as --workers)")
	analyzeCmd.Flags().String("extractor-timeout", contract.DefaultExtractorTimeout.String(), "Time limit for one extractor invocation")
	analyzeCmd.Flags().Int("max-repos", 0, "Analyze at most this many repositories from the listing (0 = all)")
	analyzeCmd.Flags().String("metadata", "yes", "Refresh process attributes from the GitHub API (yes/no)")
	analyzeCmd.Flags().Bool("resume", false, "Reuse cached records from earlier runs")
	analyzeCmd.Flags().Bool("progress-bar", false, "Show a progress bar instead of per-repository lines")
	analyzeCmd.Flags().String("metrics-file", "", "Write Prometheus text metrics for the run to this file")
	if err := viper.BindPFlags(analyzeCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analyze flags", err)
	}

	// Bind all flags of reportCmd to Viper
	reportCmd.Flags().String("outliers", "", "Comma-separated columns used for IQR outlier removal")
	if err := viper.BindPFlags(reportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding report flags", err)
	}

	// Bind all flags of fetchCmd to Viper
	fetchCmd.Flags().String("query", contract.DefaultFetchQuery, "GitHub search query")
	fetchCmd.Flags().Int("pages", contract.DefaultFetchPages, "Number of search result pages to read")
	if err := viper.BindPFlags(fetchCmd.Flags()); err != nil {
		contract.LogFatal("Error binding fetch flags", err)
	}

	// Bind all flags of analysisMigrateCmd to Viper
	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(analysisMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analysis migrate flags", err)
	}
}
