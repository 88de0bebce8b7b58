// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"time"

	"github.com/huangsam/repoquality/internal/contract"
	"github.com/huangsam/repoquality/schema"
	"golang.org/x/term"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteBatch prints per-repository results and the batch summary using the configured output format.
func (ow *OutWriter) WriteBatch(results []schema.RepositoryResult, summary schema.BatchSummary, cfg *contract.Config) error {
	return WriteBatchResults(results, summary, cfg)
}

// WriteCorrelations prints correlation results using the configured output format.
func (ow *OutWriter) WriteCorrelations(report *schema.CorrelationReport, cfg *contract.Config, duration time.Duration) error {
	return WriteCorrelationResults(report, cfg, duration)
}

// WriteDescriptions prints descriptive statistics using the configured output format.
func (ow *OutWriter) WriteDescriptions(descs []schema.ColumnDescription, cfg *contract.Config) error {
	return WriteDescriptionResults(descs, cfg)
}

// terminalWidth returns the width override, the detected terminal width, or 80.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// GetMaxTableNameWidth calculates the maximum width for repository names in table output
// based on terminal width and the fixed columns of the batch table.
func GetMaxTableNameWidth(cfg *contract.Config) int {
	// Rank + Outcome + Source + Strategy + LOC + Files + Time with borders/padding
	const baseWidth = 80
	available := terminalWidth(cfg) - baseWidth
	if available < 20 {
		return 20
	}
	if available > 60 {
		return 60
	}
	return available
}
