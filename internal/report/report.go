// Package report renders the final markdown report and its HTML charts.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/repoquality/core/agg"
	"github.com/huangsam/repoquality/internal/outwriter"
	"github.com/huangsam/repoquality/schema"
)

// Options tune rendering.
type Options struct {
	Precision  int
	Now        time.Time
	ReportFile string // file name inside the output directory
	ChartsDir  string // directory name inside the output directory
}

// Files lists what Write produced.
type Files struct {
	Report string
	Charts []string
}

// Write renders the report and the charts under outDir.
// cleaned is the outlier-trimmed dataset the correlations were computed on.
func Write(outDir string, rep *schema.CorrelationReport, cleaned *agg.Dataset, opts Options) (*Files, error) {
	if rep == nil || rep.TotalRows == 0 {
		return nil, agg.ErrEmptyDataset
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := RenderMarkdown(&buf, rep, opts); err != nil {
		return nil, err
	}
	files := &Files{Report: filepath.Join(outDir, opts.ReportFile)}
	if err := os.WriteFile(files.Report, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	charts, err := WriteCharts(filepath.Join(outDir, opts.ChartsDir), cleaned)
	if err != nil {
		return files, fmt.Errorf("failed to write charts: %w", err)
	}
	files.Charts = charts
	return files, nil
}

// RenderMarkdown writes the report sections in order.
func RenderMarkdown(w io.Writer, rep *schema.CorrelationReport, opts Options) error {
	fmtFloat, intFmt := outwriter.Formatters(opts.Precision)
	md := &mdWriter{w: w}

	md.line("# Process and Quality of Java Repositories")
	md.line("")
	md.line("**Generated:** %s", opts.Now.Format("2006-01-02 15:04:05"))
	md.line("")
	md.line("**Repositories analyzed:** %d", rep.TotalRows)
	md.line("")
	md.line("**Repositories after outlier removal:** %d", rep.CleanedRows)
	md.line("")

	md.line("## 1. Introduction")
	md.line("")
	md.line("This report relates development process indicators of popular Java repositories to")
	md.line("object-oriented quality metrics. Coupling (CBO), inheritance depth (DIT), lack of cohesion")
	md.line("(LCOM) and weighted methods per class (WMC) are compared against popularity, maturity,")
	md.line("release activity and size.")
	md.line("")

	md.line("## 2. Hypotheses")
	md.line("")
	for _, rq := range schema.ResearchQuestions {
		md.line("### %s: %s (%s)", rq.ID, titleCase(rq.Dimension), rq.Variable)
		md.line("%s", rq.Hypothesis)
		md.line("")
	}

	md.line("## 3. Methodology")
	md.line("")
	md.line("### 3.1 Data collection")
	md.line("- Repositories come from the listing file, ranked by stars.")
	md.line("- Quality metrics are class-level metrics from the CK extractor, summarized per repository.")
	md.line("- When the extractor yields nothing, metrics are approximated from source text and tagged `fallback`.")
	md.line("")
	md.line("### 3.2 Analysis")
	md.line("- Rows with values outside [Q1 - 1.5 IQR, Q3 + 1.5 IQR] on a monitored column are removed.")
	md.line("- Pearson and Spearman coefficients with two-sided p-values, for pairs with at least 4 observations.")
	md.line("- Strength is strong above |r| = 0.7, moderate above 0.3, weak otherwise; significance at p < 0.05.")
	md.line("")

	md.line("## 4. Results")
	md.line("")
	md.line("### 4.1 Descriptive statistics")
	md.line("")
	if len(rep.Descriptions) > 0 {
		md.line("```")
		if md.err == nil {
			md.err = outwriter.WriteDescriptionTable(w, rep.Descriptions, fmtFloat, intFmt)
		}
		md.line("```")
	} else {
		md.line("No numeric columns available.")
	}
	md.line("")

	md.line("### 4.2 Correlations")
	md.line("")
	for _, section := range correlationSections() {
		results := rep.ResultsFor(section.variable)
		if len(results) == 0 {
			continue
		}
		md.line("#### %s", section.title)
		md.line("")
		for _, r := range results {
			md.line("**%s:**", r.QualityVar)
			md.line("- Pearson r = %s (p = %s)", fmtFloat(r.Pearson), fmtFloat(r.PearsonP))
			md.line("- Spearman rho = %s (p = %s)", fmtFloat(r.Spearman), fmtFloat(r.SpearmanP))
			md.line("- N = %d", r.N)
			md.line("- %s", outwriter.Interpretation(r))
			md.line("")
		}
	}
	if len(rep.Results) == 0 {
		md.line("No variable pair had enough observations.")
		md.line("")
	}

	md.line("## 5. Discussion")
	md.line("")
	md.line("### 5.1 Findings")
	significant := significantResults(rep.Results)
	if len(significant) == 0 {
		md.line("No pair reached significance at p < 0.05.")
	}
	for _, r := range significant {
		md.line("- %s and %s: %s (r = %s)", r.ProcessVar, r.QualityVar, outwriter.Interpretation(r), fmtFloat(r.Pearson))
	}
	md.line("")
	md.line("### 5.2 Limitations")
	md.line("- The sample is limited to the most starred repositories and is not representative of all Java code.")
	md.line("- Fallback metrics are text heuristics and only approximate the extractor's values.")
	md.line("- Correlation does not imply causation; the data is a single snapshot in time.")
	md.line("")

	md.line("## 6. Conclusions")
	md.line("")
	for _, rq := range schema.ResearchQuestions {
		results := rep.ResultsFor(rq.Variable)
		if len(results) == 0 {
			md.line("- %s (%s): not enough data.", rq.ID, rq.Dimension)
			continue
		}
		md.line("- %s (%s): %d of %d quality metrics correlate significantly.",
			rq.ID, rq.Dimension, len(significantResults(results)), len(results))
	}
	return md.err
}

type correlationSection struct {
	title    string
	variable string
}

func correlationSections() []correlationSection {
	var out []correlationSection
	for _, rq := range schema.ResearchQuestions {
		out = append(out, correlationSection{title: fmt.Sprintf("%s: %s vs quality", rq.ID, rq.Variable), variable: rq.Variable})
	}
	return append(out, correlationSection{title: "Lines of code vs quality", variable: "loc"})
}

func significantResults(results []schema.CorrelationResult) []schema.CorrelationResult {
	var out []schema.CorrelationResult
	for _, r := range results {
		if r.Significant {
			out = append(out, r)
		}
	}
	return out
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// mdWriter keeps the first write error so section code stays linear.
type mdWriter struct {
	w   io.Writer
	err error
}

func (m *mdWriter) line(format string, args ...any) {
	if m.err != nil {
		return
	}
	_, m.err = fmt.Fprintf(m.w, format+"\n", args...)
}
