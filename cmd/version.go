package cmd

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/huangsam/repoquality/internal/contract"
	"github.com/huangsam/repoquality/schema"
	"github.com/spf13/cobra"
)

// versionCmd prints build details alongside the toolchain the analysis depends on.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print repoquality build and environment details.",
	Long: `Print the repoquality release together with the details needed to reproduce a run.

The commit falls back to the VCS revision embedded by the Go toolchain when the
binary was built without release ldflags. The default JVM launcher is the one
analyze uses to run the metrics extractor unless --java overrides it.`,
	Run: func(cmd *cobra.Command, _ []string) {
		writeBuildInfo(cmd.OutOrStdout())
	},
}

// buildCommit returns the release commit, or the embedded VCS revision for local builds.
func buildCommit() string {
	if commit != "none" {
		return commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				return s.Value
			}
		}
	}
	return commit
}

func writeBuildInfo(w io.Writer) {
	fields := [][2]string{
		{"Version", version},
		{"Commit", buildCommit()},
		{"Built", date},
		{"Go", runtime.Version()},
		{"Platform", runtime.GOOS + "/" + runtime.GOARCH},
		{"Java", contract.DefaultJavaPath},
		{"Variables", fmt.Sprintf("%d process x %d quality", len(schema.ProcessVariables), len(schema.QualityVariables))},
	}
	_, _ = fmt.Fprintln(w, "repoquality")
	for _, f := range fields {
		_, _ = fmt.Fprintf(w, "  %-10s %s\n", f[0]+":", f[1])
	}
}
