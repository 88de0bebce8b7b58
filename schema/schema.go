// Package schema has the models shared by every part of repoquality.
package schema

import (
	"strings"
	"time"
)

// RepositoryDescriptor identifies one repository from the listing along with
// the process attributes captured when the listing was produced.
type RepositoryDescriptor struct {
	FullName      string    `json:"full_name"`
	HTMLURL       string    `json:"html_url"`
	CloneURL      string    `json:"clone_url"`
	Stars         int       `json:"stargazers_count"`
	Forks         int       `json:"forks_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	SizeKB        int       `json:"size"`
	Language      string    `json:"language"`
	OpenIssues    int       `json:"open_issues_count"`
	DefaultBranch string    `json:"default_branch"`
}

// Owner returns the owner part of the full name.
func (d RepositoryDescriptor) Owner() string {
	owner, _, _ := strings.Cut(d.FullName, "/")
	return owner
}

// Name returns the repository part of the full name.
func (d RepositoryDescriptor) Name() string {
	_, name, found := strings.Cut(d.FullName, "/")
	if !found {
		return d.FullName
	}
	return name
}

// SafeName turns owner/name into owner_name for use in file names.
func (d RepositoryDescriptor) SafeName() string {
	return strings.ReplaceAll(d.FullName, "/", "_")
}

// ProcessMetadata holds the process attributes of a repository at analysis time.
// It starts from the descriptor and may be refreshed from the hosting API.
type ProcessMetadata struct {
	Stars      int       `json:"stars"`
	Forks      int       `json:"forks"`
	SizeKB     int       `json:"size_kb"`
	OpenIssues int       `json:"open_issues"`
	Releases   int       `json:"releases"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MetadataFromDescriptor copies the listing attributes into a ProcessMetadata.
func MetadataFromDescriptor(d RepositoryDescriptor) ProcessMetadata {
	return ProcessMetadata{
		Stars:      d.Stars,
		Forks:      d.Forks,
		SizeKB:     d.SizeKB,
		OpenIssues: d.OpenIssues,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

// MetricsTable is a row-per-class table of raw metric values as text.
// Column presence varies by producer.
type MetricsTable struct {
	Columns []string
	Rows    [][]string
	Path    string // file the table was read from, empty when synthesized
}

// ColumnIndex returns the index of the column matching name case-insensitively, or -1.
func (t *MetricsTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if strings.EqualFold(strings.TrimSpace(c), name) {
			return i
		}
	}
	return -1
}

// Len returns the number of rows.
func (t *MetricsTable) Len() int {
	return len(t.Rows)
}

// Value returns the cell at row i and column j, or "" when the row is short.
func (t *MetricsTable) Value(i, j int) string {
	if j < 0 || j >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][j]
}

// MetricSummary holds the statistics of one metric over one repository.
type MetricSummary struct {
	Metric string
	Stats  map[Statistic]float64
}

// MetricsSummary is the ordered list of summarized metrics for one repository.
// Metrics with no valid values are absent.
type MetricsSummary []MetricSummary

// Get returns the summary for metric, if present.
func (s MetricsSummary) Get(metric string) (MetricSummary, bool) {
	for _, m := range s {
		if m.Metric == metric {
			return m, true
		}
	}
	return MetricSummary{}, false
}

// MetricColumn names the flattened {metric}_{stat} column.
func MetricColumn(metric string, stat Statistic) string {
	return metric + "_" + string(stat)
}

// RepositoryAnalysisRecord is one row of the consolidated dataset.
type RepositoryAnalysisRecord struct {
	Repository   string             `json:"repository"`
	Stars        int                `json:"stars"`
	Forks        int                `json:"forks"`
	AgeYears     float64            `json:"age_years"`
	Releases     int                `json:"releases"`
	SizeKB       int                `json:"size_kb"`
	OpenIssues   int                `json:"open_issues"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
	AnalysisDate time.Time          `json:"analysis_date"`
	LOC          int                `json:"loc"`
	Comments     int                `json:"comments"`
	JavaFiles    int                `json:"java_files"`
	Source       MetricsSource      `json:"metrics_source"`
	Strategy     string             `json:"strategy,omitempty"`
	Commit       string             `json:"commit,omitempty"`
	Metrics      map[string]float64 `json:"metrics"`      // keyed by {metric}_{stat}
	MetricOrder  []string           `json:"metric_order"` // column order of Metrics
}

// RepositoryResult is what the coordinator reports for one descriptor.
type RepositoryResult struct {
	FullName string                    `json:"full_name"`
	Outcome  Outcome                   `json:"outcome"`
	Record   *RepositoryAnalysisRecord `json:"record,omitempty"`
	Err      error                     `json:"-"`
	Error    string                    `json:"error,omitempty"`
	Duration time.Duration             `json:"duration"`
}

// BatchSummary counts the outcomes of a run.
type BatchSummary struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Fallback  int           `json:"fallback"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Resumed   int           `json:"resumed"`
	Duration  time.Duration `json:"duration"`
}

// Records returns the number of records produced, extractor and fallback combined.
func (s BatchSummary) Records() int {
	return s.Succeeded + s.Fallback
}
