package agg

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/huangsam/repoquality/schema"
)

// ErrEmptyDataset is returned when a dataset file holds no rows.
var ErrEmptyDataset = errors.New("dataset has no rows")

// BaseColumns are the leading columns of every record row.
var BaseColumns = []string{
	"repository", "stars", "forks", "age_years", "releases", "size_kb", "open_issues",
	"created_at", "updated_at", "analysis_date", "loc", "comments", "java_files",
	"metrics_source", "strategy", "commit",
}

// DatasetColumns is the fixed header of the consolidated dataset.
func DatasetColumns(metrics MetricSet) []string {
	return append(append([]string{}, BaseColumns...), metrics.Columns()...)
}

// RecordColumns is the header of a single record: the base columns plus the metrics it carries.
func RecordColumns(rec schema.RepositoryAnalysisRecord) []string {
	return append(append([]string{}, BaseColumns...), rec.MetricOrder...)
}

// RecordRow renders rec under the given header. Unknown or absent columns are empty.
func RecordRow(rec schema.RepositoryAnalysisRecord, columns []string) []string {
	row := make([]string, len(columns))
	for i, col := range columns {
		row[i] = recordCell(rec, strings.TrimSpace(col))
	}
	return row
}

func recordCell(rec schema.RepositoryAnalysisRecord, col string) string {
	switch col {
	case "repository":
		return rec.Repository
	case "stars":
		return strconv.Itoa(rec.Stars)
	case "forks":
		return strconv.Itoa(rec.Forks)
	case "age_years":
		return formatFloat(rec.AgeYears)
	case "releases":
		return strconv.Itoa(rec.Releases)
	case "size_kb":
		return strconv.Itoa(rec.SizeKB)
	case "open_issues":
		return strconv.Itoa(rec.OpenIssues)
	case "created_at":
		return formatTime(rec.CreatedAt)
	case "updated_at":
		return formatTime(rec.UpdatedAt)
	case "analysis_date":
		return formatTime(rec.AnalysisDate)
	case "loc":
		return strconv.Itoa(rec.LOC)
	case "comments":
		return strconv.Itoa(rec.Comments)
	case "java_files":
		return strconv.Itoa(rec.JavaFiles)
	case "metrics_source":
		return string(rec.Source)
	case "strategy":
		return rec.Strategy
	case "commit":
		return rec.Commit
	}
	if v, ok := rec.Metrics[col]; ok {
		return formatFloat(v)
	}
	return ""
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// DatasetWriter appends records to the consolidated dataset file.
// It is safe for concurrent use; the header is written only when the file is empty.
type DatasetWriter struct {
	mu      sync.Mutex
	path    string
	columns []string
	header  []string // header in effect for the file, resolved on first append
}

// NewDatasetWriter writes to path with columns as the header for a new file.
func NewDatasetWriter(path string, columns []string) *DatasetWriter {
	return &DatasetWriter{path: path, columns: columns}
}

// Path returns the dataset location.
func (w *DatasetWriter) Path() string {
	return w.path
}

// Append writes rec as one row.
func (w *DatasetWriter) Append(rec schema.RepositoryAnalysisRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("failed to create dataset directory: %w", err)
	}
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	cw := csv.NewWriter(f)
	if info.Size() == 0 {
		w.header = w.columns
		if err := cw.Write(w.header); err != nil {
			return err
		}
	} else if w.header == nil {
		header, err := readHeader(w.path)
		if err != nil {
			return err
		}
		w.header = header
	}
	if err := cw.Write(RecordRow(rec, w.header)); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func readHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header, nil
}

// RecordFileName is the per-repository file name for a record.
func RecordFileName(fullName string) string {
	return "analysis_" + strings.ReplaceAll(fullName, "/", "_") + ".csv"
}

// WriteRecordFile writes rec alone with its own columns to dir.
func WriteRecordFile(dir string, rec schema.RepositoryAnalysisRecord) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, RecordFileName(rec.Repository))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	cols := RecordColumns(rec)
	cw := csv.NewWriter(f)
	if err := cw.WriteAll([][]string{cols, RecordRow(rec, cols)}); err != nil {
		return "", err
	}
	return path, nil
}

// Dataset is a consolidated dataset loaded for analysis.
type Dataset struct {
	Path    string
	Columns []string
	Rows    [][]string
}

// ReadDataset loads the dataset at path.
func ReadDataset(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	d, err := ParseDataset(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	d.Path = path
	return d, nil
}

// ParseDataset loads a dataset from r. A dataset without rows returns ErrEmptyDataset.
func ParseDataset(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, ErrEmptyDataset
	}
	header := records[0]
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	return &Dataset{Columns: header, Rows: records[1:]}, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Index returns the column position of name, or -1.
func (d *Dataset) Index(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Has reports whether the dataset has the column.
func (d *Dataset) Has(name string) bool {
	return d.Index(name) >= 0
}

// Float returns the column as numbers with NaN for empty or non-numeric cells.
// A missing column yields nil.
func (d *Dataset) Float(name string) []float64 {
	idx := d.Index(name)
	if idx < 0 {
		return nil
	}
	out := make([]float64, len(d.Rows))
	for i, row := range d.Rows {
		out[i] = math.NaN()
		if idx >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[idx])
		if cell == "" {
			continue
		}
		if v, err := strconv.ParseFloat(cell, 64); err == nil && !math.IsInf(v, 0) {
			out[i] = v
		}
	}
	return out
}

// NumericColumns lists the columns holding at least one number and nothing but numbers or blanks.
func (d *Dataset) NumericColumns() []string {
	var cols []string
	for i, name := range d.Columns {
		numeric, seen := true, false
		for _, row := range d.Rows {
			if i >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[i])
			if cell == "" {
				continue
			}
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				numeric = false
				break
			}
			seen = true
		}
		if numeric && seen {
			cols = append(cols, name)
		}
	}
	return cols
}

// Filter returns a dataset with only the rows where keep is true.
func (d *Dataset) Filter(keep []bool) *Dataset {
	out := &Dataset{Path: d.Path, Columns: d.Columns}
	for i, row := range d.Rows {
		if i < len(keep) && keep[i] {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}
