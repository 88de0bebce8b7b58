package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/repoquality/core/agg"
	"github.com/huangsam/repoquality/internal/acquire"
	"github.com/huangsam/repoquality/internal/contract"
	"github.com/huangsam/repoquality/internal/extractor"
	"github.com/huangsam/repoquality/internal/fallback"
	"github.com/huangsam/repoquality/internal/workspace"
	"github.com/huangsam/repoquality/schema"
)

// ErrNoSourceFiles is returned when an acquired repository holds no Java sources.
var ErrNoSourceFiles = errors.New("no Java source files")

// Pipeline runs acquire, extract and aggregate for a single repository.
// It holds no per-repository state, so one Pipeline serves every worker.
type Pipeline struct {
	Workspaces *workspace.Manager
	Acquirer   *acquire.Acquirer
	Git        contract.GitClient
	Extractor  *extractor.Adapter
	Metadata   contract.MetadataClient // nil keeps the descriptor attributes
	Metrics    agg.MetricSet
	Now        func() time.Time
}

// NewPipeline wires a pipeline around a git client and an extractor adapter.
func NewPipeline(git contract.GitClient, adapter *extractor.Adapter, metadata contract.MetadataClient) *Pipeline {
	return &Pipeline{
		Workspaces: workspace.NewManager(""),
		Acquirer:   acquire.NewAcquirer(git),
		Git:        git,
		Extractor:  adapter,
		Metadata:   metadata,
		Metrics:    agg.DefaultMetrics,
		Now:        time.Now,
	}
}

// CloneURL returns the descriptor's clone URL, or the GitHub HTTPS URL for its full name.
func CloneURL(desc schema.RepositoryDescriptor) string {
	if desc.CloneURL != "" {
		return desc.CloneURL
	}
	return "https://github.com/" + desc.FullName + ".git"
}

// Analyze produces the record for one repository. The workspace is removed on every path.
func (p *Pipeline) Analyze(ctx context.Context, desc schema.RepositoryDescriptor) (*schema.RepositoryAnalysisRecord, error) {
	var record *schema.RepositoryAnalysisRecord
	err := p.Workspaces.With(desc.SafeName(), func(ws *workspace.Workspace) error {
		rec, err := p.analyzeIn(ctx, ws, desc)
		if err != nil {
			return err
		}
		record = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (p *Pipeline) analyzeIn(ctx context.Context, ws *workspace.Workspace, desc schema.RepositoryDescriptor) (*schema.RepositoryAnalysisRecord, error) {
	src := ws.SourceDir()

	// --- 1. Acquisition ---
	if _, err := p.Acquirer.Fetch(ctx, CloneURL(desc), src); err != nil {
		return nil, fmt.Errorf("acquire %s: %w", desc.FullName, err)
	}

	files, err := fallback.CountSources(src)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", desc.FullName, err)
	}
	if files == 0 {
		return nil, ErrNoSourceFiles
	}

	counts, err := fallback.CountLines(src)
	if err != nil {
		return nil, fmt.Errorf("count lines of %s: %w", desc.FullName, err)
	}
	commit, err := p.Git.GetRepoHash(ctx, src)
	if err != nil {
		commit = ""
	}

	// --- 2. Extraction with fallback ---
	source := schema.ExtractorSource
	extraction := p.Extractor.Extract(ctx, src, ws.OutputDir())
	table := extraction.Table
	if !extraction.Found() {
		source = schema.FallbackSource
		table, err = fallback.Synthesize(src)
		if err != nil {
			return nil, fmt.Errorf("extractor exhausted %d strategies and fallback failed: %w", len(extraction.Attempts), err)
		}
	}

	// --- 3. Aggregation ---
	record := agg.BuildRecord(agg.RecordInput{
		Descriptor: desc,
		Metadata:   p.metadataFor(ctx, desc),
		Counts:     counts,
		Summary:    agg.Summarize(table, p.Metrics),
		Source:     source,
		Strategy:   extraction.Strategy,
		Commit:     commit,
		Now:        p.Now(),
	})
	return &record, nil
}

// metadataFor refreshes the process attributes, keeping the descriptor values on failure.
func (p *Pipeline) metadataFor(ctx context.Context, desc schema.RepositoryDescriptor) schema.ProcessMetadata {
	base := schema.MetadataFromDescriptor(desc)
	if p.Metadata == nil {
		return base
	}
	live, err := p.Metadata.FetchMetadata(ctx, desc.FullName)
	if err != nil {
		contract.LogWarn("Metadata unavailable for "+desc.FullName, err)
		return base
	}
	if live.CreatedAt.IsZero() {
		live.CreatedAt = base.CreatedAt
	}
	if live.UpdatedAt.IsZero() {
		live.UpdatedAt = base.UpdatedAt
	}
	return live
}
