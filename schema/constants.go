package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string

	// MetricsSource tells where a repository's metrics table came from.
	MetricsSource string

	// Outcome represents how a single repository analysis ended.
	Outcome string

	// Statistic is one of the summary statistics computed per metric.
	Statistic string
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Metrics sources recorded on every repository record.
const (
	ExtractorSource MetricsSource = "extractor"
	FallbackSource  MetricsSource = "fallback"
)

// Repository outcomes reported by the coordinator.
const (
	SucceededOutcome Outcome = "succeeded"
	FallbackOutcome  Outcome = "fallback"
	SkippedOutcome   Outcome = "skipped"
	FailedOutcome    Outcome = "failed"
	ResumedOutcome   Outcome = "resumed"
)

// Summary statistics, in column order.
const (
	StatCount  Statistic = "count"
	StatMean   Statistic = "mean"
	StatMedian Statistic = "median"
	StatStd    Statistic = "std"
	StatMin    Statistic = "min"
	StatMax    Statistic = "max"
)

// AllStatistics lists the summary statistics in the order they appear in records.
var AllStatistics = []Statistic{StatCount, StatMean, StatMedian, StatStd, StatMin, StatMax}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid cache backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
