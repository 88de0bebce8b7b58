package cmd

import (
	"github.com/huangsam/repoquality/core"
	"github.com/huangsam/repoquality/internal/contract"
	"github.com/spf13/cobra"
)

// fetchCmd builds the repository listing from a GitHub search.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Search GitHub for the most starred Java repositories and write the listing.",
	Long: `Query the GitHub search API sorted by stars and write the results as the
repository listing consumed by 'analyze'.

Set GITHUB_TOKEN (or --token) to raise the search rate limit.

Examples:
  # Top 1000 Java repositories
  repoquality fetch --pages 10 --repos repositories.csv

  # Narrow the search
  repoquality fetch --query "language:Java stars:>5000"`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteFetch(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot fetch repository listing", err)
		}
	},
}
