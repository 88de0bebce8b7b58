package contract

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/repoquality/schema"
	"github.com/mitchellh/go-homedir"
)

// Default values for configuration.
const (
	DefaultWorkers          = 4
	DefaultExtractorTimeout = 120 * time.Second
	DefaultPrecision        = 3
	MaxPrecision            = 6
	DefaultReposFile        = "repositories.csv"
	DefaultExtractorJar     = "ck.jar"
	DefaultJavaPath         = "java"
	DefaultOutputDir        = "results"
	DefaultFetchPages       = 10
	DefaultFetchQuery       = "language:Java"
)

// File names written inside the output directory.
const (
	DatasetFileName = "complete_analysis.csv"
	ReportFileName  = "final_report.md"
	ChartsDirName   = "visualizations"
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a run.
// This struct remains the "final, validated" config.
type Config struct {
	ReposFile        string
	ExtractorJar     string
	JavaPath         string
	OutputDir        string
	Workers          int
	ExtractorWorkers int
	ExtractorTimeout time.Duration
	MaxRepos         int
	Token            string // Please use env var as this is plaintext
	Metadata         bool
	Resume           bool
	ProgressBar      bool
	MetricsFile      string

	DatasetPath    string // report input, defaults to the dataset inside OutputDir
	OutlierColumns []string

	FetchQuery string
	FetchPages int

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext

	UseEmojis bool // Enable emojis in progress lines and headers
	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	DatasetPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Output            string `mapstructure:"output"`
	Workers           int    `mapstructure:"workers"`
	Token             string `mapstructure:"token"`
	Format            string `mapstructure:"format"`
	OutputFile        string `mapstructure:"output-file"`
	Precision         int    `mapstructure:"precision"`
	Width             int    `mapstructure:"width"`
	CacheBackend      string `mapstructure:"cache-backend"`
	CacheDBConnect    string `mapstructure:"cache-db-connect"`
	AnalysisBackend   string `mapstructure:"analysis-backend"`
	AnalysisDBConnect string `mapstructure:"analysis-db-connect"`
	Emoji             string `mapstructure:"emoji"`
	Color             string `mapstructure:"color"`

	// --- Fields from analyzeCmd.Flags() ---
	Repos            string `mapstructure:"repos"`
	ExtractorJar     string `mapstructure:"extractor-jar"`
	Java             string `mapstructure:"java"`
	ExtractorWorkers int    `mapstructure:"extractor-workers"`
	ExtractorTimeout string `mapstructure:"extractor-timeout"`
	MaxRepos         int    `mapstructure:"max-repos"`
	Metadata         string `mapstructure:"metadata"`
	Resume           bool   `mapstructure:"resume"`
	ProgressBar      bool   `mapstructure:"progress-bar"`
	MetricsFile      string `mapstructure:"metrics-file"`

	// --- Fields from reportCmd.Flags() ---
	Outliers string `mapstructure:"outliers"`

	// --- Fields from fetchCmd.Flags() ---
	Query string `mapstructure:"query"`
	Pages int    `mapstructure:"pages"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.OutlierColumns = slices.Clone(c.OutlierColumns)
	return &clone
}

// EffectiveExtractorWorkers returns the extractor pool size, defaulting to Workers.
func (c *Config) EffectiveExtractorWorkers() int {
	if c.ExtractorWorkers > 0 {
		return c.ExtractorWorkers
	}
	return c.Workers
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processPaths(cfg, input); err != nil {
		return err
	}
	if err := processExtractorSettings(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateAnalyzeInputs checks the inputs that must exist before a batch starts.
// A failure here aborts the whole run before any repository is touched.
func ValidateAnalyzeInputs(cfg *Config) error {
	if err := requireFile(cfg.ReposFile, "repository listing"); err != nil {
		return err
	}
	return ValidateExtractorInputs(cfg)
}

// ValidateExtractorInputs checks that the extractor jar exists and the JVM launcher resolves.
func ValidateExtractorInputs(cfg *Config) error {
	if err := requireFile(cfg.ExtractorJar, "extractor jar"); err != nil {
		return err
	}
	javaPath := cfg.JavaPath
	if javaPath == "" {
		javaPath = DefaultJavaPath
	}
	if _, err := exec.LookPath(javaPath); err != nil {
		return fmt.Errorf("java launcher %q not found: %w", javaPath, err)
	}
	return nil
}

// requireFile returns an error unless path names an existing regular file.
func requireFile(path, what string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s not found at %q", what, path)
	}
	if err != nil {
		return fmt.Errorf("cannot access %s %q: %w", what, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s %q is a directory", what, path)
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = expandSQLitePath(cfg.CacheBackend, input.CacheDBConnect)
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- Analysis Backend Validation ---
	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend != "" {
		if _, ok := schema.ValidDatabaseBackends[cfg.AnalysisBackend]; !ok {
			return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
		}
		cfg.AnalysisDBConnect = expandSQLitePath(cfg.AnalysisBackend, input.AnalysisDBConnect)
		if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
			return fmt.Errorf("analysis-db-connect: %w", err)
		}

		// Validate that cache and analysis use different databases
		if cfg.CacheBackend == cfg.AnalysisBackend && cfg.CacheBackend == schema.SQLiteBackend {
			cacheDBPath := cfg.CacheDBConnect
			if cacheDBPath == "" {
				cacheDBPath = GetCacheDBFilePath()
			}
			analysisDBPath := cfg.AnalysisDBConnect
			if analysisDBPath == "" {
				analysisDBPath = GetAnalysisDBFilePath()
			}
			if cacheDBPath == analysisDBPath {
				return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
			}
		}
	}

	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.Token = strings.TrimSpace(input.Token)
	cfg.Resume = input.Resume
	cfg.ProgressBar = input.ProgressBar
	cfg.Width = input.Width
	cfg.MaxRepos = input.MaxRepos
	cfg.FetchQuery = strings.TrimSpace(input.Query)
	if cfg.FetchQuery == "" {
		cfg.FetchQuery = DefaultFetchQuery
	}

	emojis, err := ParseBoolString(input.Emoji)
	if err != nil {
		return fmt.Errorf("invalid --emoji value: %w", err)
	}
	cfg.UseEmojis = emojis

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	metadata, err := ParseBoolString(input.Metadata)
	if err != nil {
		return fmt.Errorf("invalid --metadata value: %w", err)
	}
	cfg.Metadata = metadata

	// --- 1. Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.ExtractorWorkers < 0 {
		return fmt.Errorf("extractor-workers cannot be negative (received %d)", input.ExtractorWorkers)
	}
	cfg.ExtractorWorkers = input.ExtractorWorkers

	// --- 2. Limits Validation ---
	if input.MaxRepos < 0 {
		return fmt.Errorf("max-repos cannot be negative (received %d)", input.MaxRepos)
	}
	if input.Pages < 0 {
		return fmt.Errorf("pages cannot be negative (received %d)", input.Pages)
	}
	cfg.FetchPages = input.Pages
	if cfg.FetchPages == 0 {
		cfg.FetchPages = DefaultFetchPages
	}

	// --- 3. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Format))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Format)
	}

	// --- 4. Outlier Columns ---
	cfg.OutlierColumns = slices.Clone(schema.OutlierColumns)
	if input.Outliers != "" {
		cfg.OutlierColumns = SplitList(input.Outliers)
	}

	return nil
}

// processPaths expands and cleans every user-supplied path.
func processPaths(cfg *Config, input *ConfigRawInput) error {
	paths := []struct {
		dst *string
		src string
		def string
	}{
		{&cfg.ReposFile, input.Repos, DefaultReposFile},
		{&cfg.ExtractorJar, input.ExtractorJar, DefaultExtractorJar},
		{&cfg.OutputDir, input.Output, DefaultOutputDir},
		{&cfg.OutputFile, input.OutputFile, ""},
		{&cfg.MetricsFile, input.MetricsFile, ""},
		{&cfg.DatasetPath, input.DatasetPathStr, ""},
	}
	for _, p := range paths {
		value := strings.TrimSpace(p.src)
		if value == "" {
			value = p.def
		}
		if value == "" {
			*p.dst = ""
			continue
		}
		expanded, err := ExpandPath(value)
		if err != nil {
			return err
		}
		*p.dst = expanded
	}
	if cfg.DatasetPath == "" {
		cfg.DatasetPath = filepath.Join(cfg.OutputDir, DatasetFileName)
	}
	return nil
}

// processExtractorSettings handles the JVM launcher and the per-attempt timeout.
func processExtractorSettings(cfg *Config, input *ConfigRawInput) error {
	cfg.JavaPath = strings.TrimSpace(input.Java)
	if cfg.JavaPath == "" {
		cfg.JavaPath = DefaultJavaPath
	}

	cfg.ExtractorTimeout = DefaultExtractorTimeout
	if input.ExtractorTimeout != "" {
		timeout, err := time.ParseDuration(input.ExtractorTimeout)
		if err != nil {
			return fmt.Errorf("invalid extractor-timeout '%s': %w", input.ExtractorTimeout, err)
		}
		if timeout <= 0 {
			return fmt.Errorf("extractor-timeout must be positive (received %s)", timeout)
		}
		cfg.ExtractorTimeout = timeout
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// ExpandPath resolves a leading ~ and returns a cleaned path.
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("cannot expand path %q: %w", path, err)
	}
	return filepath.Clean(expanded), nil
}

// expandSQLitePath expands ~ in SQLite file paths and leaves other DSNs untouched.
func expandSQLitePath(backend schema.DatabaseBackend, conn string) string {
	if backend != schema.SQLiteBackend || conn == "" || conn == ":memory:" {
		return conn
	}
	expanded, err := ExpandPath(conn)
	if err != nil {
		return conn
	}
	return expanded
}
