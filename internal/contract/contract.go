// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/repoquality/schema"
)

// CloneOptions tunes a single clone attempt.
type CloneOptions struct {
	Depth      int    // 0 means full history
	Filter     string // partial clone filter, e.g. "blob:none"
	NoCheckout bool
	LongPaths  bool // sets core.longpaths for the clone
}

// GitClient defines the git operations needed to acquire a repository.
// This allows the acquisition logic to be tested without needing a real git executable.
type GitClient interface {
	// Run executes a git command inside repoPath and returns its output.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// Clone clones url into dest.
	Clone(ctx context.Context, url string, dest string, opts CloneOptions) error

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)
}

// Invocation describes one external process launch.
type Invocation struct {
	Name string   // executable
	Args []string // arguments after the executable
	Dir  string   // working directory, empty for the current one
}

// CommandResult is what a finished process left behind.
type CommandResult struct {
	ExitCode int
	Output   []byte // combined stdout and stderr, truncated
}

// CommandRunner launches external processes.
// Implementations must stop the process when ctx is done.
type CommandRunner interface {
	RunCommand(ctx context.Context, inv Invocation) (CommandResult, error)
}

// MetadataClient fetches live process attributes for a repository.
type MetadataClient interface {
	FetchMetadata(ctx context.Context, fullName string) (schema.ProcessMetadata, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetResultStore() CacheStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// AnalysisStore defines the interface for tracking analysis runs and their records.
type AnalysisStore interface {
	// BeginAnalysis creates a new analysis run and returns its unique ID
	BeginAnalysis(startTime time.Time, configParams map[string]any) (int64, error)

	// EndAnalysis updates the analysis run with completion data
	EndAnalysis(analysisID int64, endTime time.Time, totalRepositories int, succeeded int) error

	// RecordRepository stores one repository record for the run
	RecordRepository(analysisID int64, record schema.RepositoryAnalysisRecord) error

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// GetAllAnalysisRuns returns every tracked run, oldest first
	GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error)

	// GetAllRepositoryRecords returns every stored repository record
	GetAllRepositoryRecords() ([]schema.RepositoryRecordRow, error)

	// Close closes the underlying connection
	Close() error
}
