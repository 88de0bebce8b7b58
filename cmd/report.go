package cmd

import (
	"github.com/huangsam/repoquality/core"
	"github.com/huangsam/repoquality/internal/contract"
	"github.com/spf13/cobra"
)

// reportCmd correlates the dataset and renders the final report.
var reportCmd = &cobra.Command{
	Use:   "report [dataset]",
	Short: "Correlate process attributes with quality metrics and write the report.",
	Long: `Load the consolidated dataset, trim IQR outliers and test every pairing of
process attribute and quality metric with Pearson and Spearman coefficients.

Writes a Markdown report with descriptive statistics and one section per research
question, plus HTML charts (correlation heatmap, scatter plots and distributions).

Examples:
  # Report on the dataset inside the output directory
  repoquality report

  # Report on a specific dataset, trimming outliers on stars only
  repoquality report results/complete_analysis.csv --outliers stars

  # Print the correlation table as JSON
  repoquality report --format json --output-file correlations.json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteReport(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot build report", err)
		}
	},
}
