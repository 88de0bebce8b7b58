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

// WriteCorrelationResults outputs correlation results, dispatching based on the output format configured.
func WriteCorrelationResults(report *schema.CorrelationReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForCorrelations(w, report.Results, fmtFloat, intFmt)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCorrelationTable(report, fmtFloat, intFmt, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeCorrelationTable generates and writes the human-readable table.
func writeCorrelationTable(report *schema.CorrelationReport, fmtFloat func(float64) string, intFmt string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Process", "Quality", "Pearson", "p", "Spearman", "p", "N", "Interpretation"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, r := range report.Results {
		data = append(data, []string{
			r.ProcessVar,
			r.QualityVar,
			fmtFloat(r.Pearson),
			fmtFloat(r.PearsonP),
			fmtFloat(r.Spearman),
			fmtFloat(r.SpearmanP),
			fmt.Sprintf(intFmt, r.N),
			Interpretation(r),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Correlated %s of %s repositories after outlier trim (%d pairs)\n",
		humanize.Comma(int64(report.CleanedRows)), humanize.Comma(int64(report.TotalRows)), len(report.Results)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Report completed in %v\n", duration.Round(time.Millisecond)); err != nil {
		return err
	}
	return nil
}

// Interpretation renders a result as "strong positive, significant".
func Interpretation(r schema.CorrelationResult) string {
	significance := "not significant"
	if r.Significant {
		significance = "significant"
	}
	return fmt.Sprintf("%s %s, %s", r.Strength, r.Direction, significance)
}

// writeCSVResultsForCorrelations writes one line per variable pair.
func writeCSVResultsForCorrelations(w io.Writer, results []schema.CorrelationResult, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"process_var", "quality_var", "pearson_r", "pearson_p", "spearman_rho", "spearman_p", "n", "strength", "direction", "significant"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range results {
			row := []string{
				r.ProcessVar,
				r.QualityVar,
				fmtFloat(r.Pearson),
				fmtFloat(r.PearsonP),
				fmtFloat(r.Spearman),
				fmtFloat(r.SpearmanP),
				fmt.Sprintf(intFmt, r.N),
				r.Strength,
				r.Direction,
				strconv.FormatBool(r.Significant),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}
