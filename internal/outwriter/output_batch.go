package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/huangsam/repoquality/internal/contract"
	"github.com/huangsam/repoquality/schema"
)

// batchOutput is the JSON shape of a finished batch.
type batchOutput struct {
	Summary schema.BatchSummary       `json:"summary"`
	Results []schema.RepositoryResult `json:"results"`
}

// WriteBatchResults outputs the batch results, dispatching based on the output format configured.
func WriteBatchResults(results []schema.RepositoryResult, summary schema.BatchSummary, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, batchOutput{Summary: summary, Results: results})
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForBatch(w, results)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchTable(results, summary, cfg, w)
		}, "Wrote table")
	}
	return nil
}

// writeBatchTable generates and writes the human-readable table.
func writeBatchTable(results []schema.RepositoryResult, summary schema.BatchSummary, cfg *contract.Config, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"#", "Repository", "Outcome", "Source", "Strategy", "LOC", "Files", "Time"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	for i, r := range results {
		outcome := string(r.Outcome)
		if cfg.UseColors {
			outcome = contract.GetColorOutcome(r.Outcome)
		}
		row := []string{
			strconv.Itoa(i + 1),
			contract.TruncateName(r.FullName, nameWidth),
			outcome,
		}
		if r.Record != nil {
			row = append(row,
				string(r.Record.Source),
				r.Record.Strategy,
				humanize.Comma(int64(r.Record.LOC)),
				humanize.Comma(int64(r.Record.JavaFiles)),
			)
		} else {
			row = append(row, "", "", "", "")
		}
		row = append(row, r.Duration.Round(time.Millisecond).String())
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Records: %s of %s repositories (extractor %d, fallback %d, skipped %d, failed %d, resumed %d)\n",
		humanize.Comma(int64(summary.Records())), humanize.Comma(int64(summary.Total)),
		summary.Succeeded, summary.Fallback, summary.Skipped, summary.Failed, summary.Resumed); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Analysis completed in %v with %d workers. Cache backend: %s\n",
		summary.Duration.Round(time.Millisecond), cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForBatch writes one line per repository.
func writeCSVResultsForBatch(w io.Writer, results []schema.RepositoryResult) error {
	header := []string{"repository", "outcome", "metrics_source", "strategy", "loc", "comments", "java_files", "duration_ms", "error"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range results {
			row := []string{r.FullName, string(r.Outcome), "", "", "", "", ""}
			if r.Record != nil {
				row = []string{
					r.FullName,
					string(r.Outcome),
					string(r.Record.Source),
					r.Record.Strategy,
					strconv.Itoa(r.Record.LOC),
					strconv.Itoa(r.Record.Comments),
					strconv.Itoa(r.Record.JavaFiles),
				}
			}
			row = append(row, strconv.FormatInt(r.Duration.Milliseconds(), 10), r.Error)
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}
