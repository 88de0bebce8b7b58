package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/huangsam/repoquality/core/agg"
	"github.com/huangsam/repoquality/internal/stats"
	"github.com/huangsam/repoquality/schema"
)

const (
	histogramBins = 30
	chartHeight   = "500px"
	matrixHeight  = "700px"
)

// Chart file names inside the charts directory.
const (
	MatrixFile        = "correlation_matrix.html"
	DistributionsFile = "distributions.html"
)

// scatterQualityVars are plotted against each research variable.
var scatterQualityVars = []string{"cbo_mean", "dit_mean", "lcom_mean"}

// WriteCharts renders the correlation matrix, one scatter page per research question
// and the quality metric distributions. Charts without data are not written.
func WriteCharts(dir string, d *agg.Dataset) ([]string, error) {
	if d == nil || d.Len() == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var written []string
	render := func(name string, page *components.Page) error {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		if err := page.Render(f); err != nil {
			return fmt.Errorf("render %s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}

	if hm := correlationMatrix(d); hm != nil {
		if err := render(MatrixFile, components.NewPage().AddCharts(hm)); err != nil {
			return written, err
		}
	}
	for _, rq := range schema.ResearchQuestions {
		scatters := scatterCharts(d, rq)
		if len(scatters) == 0 {
			continue
		}
		page := components.NewPage()
		for _, s := range scatters {
			page.AddCharts(s)
		}
		if err := render(ScatterFile(rq.ID), page); err != nil {
			return written, err
		}
	}
	if bars := distributionCharts(d); len(bars) > 0 {
		page := components.NewPage()
		for _, b := range bars {
			page.AddCharts(b)
		}
		if err := render(DistributionsFile, page); err != nil {
			return written, err
		}
	}
	return written, nil
}

// ScatterFile names the scatter page of a research question.
func ScatterFile(rqID string) string {
	return "scatter_" + strings.ToLower(rqID) + ".html"
}

// matrixVariables lists the process and quality columns present in d.
func matrixVariables(d *agg.Dataset) []string {
	var vars []string
	for _, v := range append(append([]string{}, schema.ProcessVariables...), schema.QualityVariables...) {
		if d.Has(v) {
			vars = append(vars, v)
		}
	}
	return vars
}

// CorrelationMatrix returns the pairwise Pearson coefficients as heat map cells.
// Undefined pairs are left out.
func CorrelationMatrix(d *agg.Dataset, vars []string) []opts.HeatMapData {
	var data []opts.HeatMapData
	for i, a := range vars {
		for j, b := range vars {
			x, y := pairwise(d.Float(a), d.Float(b))
			if len(x) < 2 {
				continue
			}
			r, _, err := stats.Pearson(x, y)
			if err != nil {
				continue
			}
			data = append(data, opts.HeatMapData{Value: []any{i, j, math.Round(r*100) / 100}})
		}
	}
	return data
}

func correlationMatrix(d *agg.Dataset) *charts.HeatMap {
	vars := matrixVariables(d)
	if len(vars) < 3 {
		return nil
	}
	data := CorrelationMatrix(d, vars)
	if len(data) == 0 {
		return nil
	}
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Correlation matrix", Subtitle: "Process vs quality metrics (Pearson)", Left: "center"}),
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: matrixHeight}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "category", Data: vars,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
			AxisLabel: &opts.AxisLabel{Rotate: 45, Interval: "0"},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "category", Data: vars,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true), Min: -1, Max: 1,
			InRange: &opts.VisualMapInRange{Color: []string{"#3b4cc0", "#f7f7f7", "#b40426"}},
			Orient:  "horizontal", Left: "center", Bottom: "2%",
		}),
	)
	hm.AddSeries("Pearson r", data, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "inside"}))
	return hm
}

func scatterCharts(d *agg.Dataset, rq schema.ResearchQuestion) []*charts.Scatter {
	if !d.Has(rq.Variable) {
		return nil
	}
	var out []*charts.Scatter
	for _, qv := range scatterQualityVars {
		if !d.Has(qv) {
			continue
		}
		x, y := pairwise(d.Float(rq.Variable), d.Float(qv))
		if len(x) == 0 {
			continue
		}
		subtitle := fmt.Sprintf("n = %d", len(x))
		if r, _, err := stats.Pearson(x, y); err == nil {
			subtitle = fmt.Sprintf("r = %.3f, n = %d", r, len(x))
		}
		points := make([]opts.ScatterData, len(x))
		for i := range x {
			points[i] = opts.ScatterData{Value: []any{x[i], y[i]}}
		}
		sc := charts.NewScatter()
		sc.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s: %s vs %s", rq.ID, rq.Variable, qv), Subtitle: subtitle}),
			charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: chartHeight}),
			charts.WithXAxisOpts(opts.XAxis{Name: rq.Variable, Type: "value"}),
			charts.WithYAxisOpts(opts.YAxis{Name: qv, Type: "value"}),
		)
		sc.AddSeries(qv, points)
		out = append(out, sc)
	}
	return out
}

func distributionCharts(d *agg.Dataset) []*charts.Bar {
	var out []*charts.Bar
	for _, qv := range schema.QualityVariables {
		values := stats.DropNaN(d.Float(qv))
		if len(values) == 0 {
			continue
		}
		labels, counts := Histogram(values, histogramBins)
		data := make([]opts.BarData, len(counts))
		for i, c := range counts {
			data[i] = opts.BarData{Value: c}
		}
		bar := charts.NewBar()
		bar.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{
				Title:    "Distribution of " + qv,
				Subtitle: fmt.Sprintf("mean %.2f, median %.2f", stats.Mean(values), stats.Median(values)),
			}),
			charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: chartHeight}),
			charts.WithXAxisOpts(opts.XAxis{Name: qv, AxisLabel: &opts.AxisLabel{Rotate: 45}}),
			charts.WithYAxisOpts(opts.YAxis{Name: "repositories"}),
		)
		bar.SetXAxis(labels).AddSeries("Frequency", data)
		out = append(out, bar)
	}
	return out
}

// Histogram splits values into equal-width bins between their min and max.
// Labels are the lower bin edges. A constant sample lands in a single bin.
func Histogram(values []float64, bins int) ([]string, []int) {
	lo, hi := stats.Min(values), stats.Max(values)
	if lo == hi || bins < 1 {
		return []string{fmt.Sprintf("%.2f", lo)}, []int{len(values)}
	}
	width := (hi - lo) / float64(bins)
	labels := make([]string, bins)
	counts := make([]int, bins)
	for i := range labels {
		labels[i] = fmt.Sprintf("%.2f", lo+float64(i)*width)
	}
	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}
	return labels, counts
}

// pairwise keeps the positions where both values are present.
func pairwise(a, b []float64) ([]float64, []float64) {
	var x, y []float64
	for i := range a {
		if i >= len(b) || math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		x = append(x, a[i])
		y = append(y, b[i])
	}
	return x, y
}
