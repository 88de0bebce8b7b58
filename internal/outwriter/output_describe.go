package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/huangsam/repoquality/internal/contract"
	"github.com/huangsam/repoquality/schema"
)

// DescriptionHeader is the column header of descriptive statistics.
var DescriptionHeader = []string{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// WriteDescriptionResults outputs descriptive statistics, dispatching based on the output format configured.
func WriteDescriptionResults(descs []schema.ColumnDescription, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, descs)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, DescriptionHeader, func(cw *csv.Writer) error {
				for _, d := range descs {
					if err := cw.Write(DescriptionRow(d, fmtFloat, intFmt)); err != nil {
						return fmt.Errorf("failed to write CSV row: %w", err)
					}
				}
				return nil
			})
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return WriteDescriptionTable(w, descs, fmtFloat, intFmt)
		}, "Wrote table")
	}
}

// WriteDescriptionTable renders descriptive statistics as a table.
func WriteDescriptionTable(w io.Writer, descs []schema.ColumnDescription, fmtFloat func(float64) string, intFmt string) error {
	table := tablewriter.NewWriter(w)
	table.Header(DescriptionHeader)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, d := range descs {
		data = append(data, DescriptionRow(d, fmtFloat, intFmt))
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// DescriptionRow formats one column description.
func DescriptionRow(d schema.ColumnDescription, fmtFloat func(float64) string, intFmt string) []string {
	return []string{
		d.Column,
		fmt.Sprintf(intFmt, d.Count),
		fmtFloat(d.Mean),
		fmtFloat(d.Std),
		fmtFloat(d.Min),
		fmtFloat(d.P25),
		fmtFloat(d.P50),
		fmtFloat(d.P75),
		fmtFloat(d.Max),
	}
}

// Formatters exposes the precision-aware number formatters to other renderers.
func Formatters(precision int) (fmtFloat func(float64) string, intFmt string) {
	return createFormatters(precision)
}
