package cmd

import (
	"github.com/huangsam/repoquality/core"
	"github.com/huangsam/repoquality/internal/contract"
	"github.com/spf13/cobra"
)

// analyzeCmd runs the batch over the repository listing.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Clone each listed repository and extract its quality metrics.",
	Long: `Run the analysis batch over every repository in the listing.

For each repository the batch:
- Shallow clones it into a private temporary workspace
- Runs the class-metrics extractor, trying each invocation strategy in turn
- Falls back to a heuristic line/class scan when every strategy fails
- Aggregates count, mean, median, std, min and max per metric
- Appends one row to the consolidated dataset and writes a per-repository record

A failing repository never stops the batch. Cached records are reused with --resume.

Examples:
  # Analyze the default listing with 8 workers
  repoquality analyze --workers 8

  # Limit the JVM pool and give slow repositories more time
  repoquality analyze --extractor-workers 2 --extractor-timeout 5m

  # Retry a partially completed batch without re-analyzing finished repositories
  repoquality analyze --resume --progress-bar`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAnalyze(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run repository analysis", err)
		}
	},
}
