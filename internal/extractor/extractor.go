// Package extractor runs the external metrics tool and finds the tables it leaves behind.
package extractor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/repoquality/schema"
)

// Env is what one strategy attempt gets to work with.
type Env struct {
	SourceTree string    // absolute path of the cloned repository
	OutputDir  string    // fresh, absolute, attempt-specific output directory
	Started    time.Time // when the attempt began
}

// Strategy is one way of invoking the tool paired with where to look for its output.
// Invoke and Locate are kept apart so each can be tested on its own.
type Strategy struct {
	Name   string
	Invoke func(ctx context.Context, env Env) error
	Locate func(env Env) (string, bool)
}

// Attempt records what happened for one strategy.
type Attempt struct {
	Strategy string
	Err      error  // invocation or table read failure
	Table    string // path of the located table, if any
}

// Extraction is the outcome of running strategies until one yields a table.
type Extraction struct {
	Table    *schema.MetricsTable
	Strategy string
	Attempts []Attempt
}

// Found reports whether any strategy located a table.
func (e Extraction) Found() bool {
	return e.Table != nil
}

// Adapter evaluates strategies in order and stops at the first located table.
type Adapter struct {
	strategies []Strategy
	onAttempt  func(Attempt)
}

// NewAdapter creates an adapter over an ordered strategy list.
func NewAdapter(strategies []Strategy) *Adapter {
	return &Adapter{strategies: strategies}
}

// OnAttempt registers a callback invoked after every attempt.
func (a *Adapter) OnAttempt(fn func(Attempt)) *Adapter {
	a.onAttempt = fn
	return a
}

// Strategies returns the names of the strategies in evaluation order.
func (a *Adapter) Strategies() []string {
	names := make([]string, len(a.strategies))
	for i, s := range a.strategies {
		names[i] = s.Name
	}
	return names
}

// Extract runs each strategy with its own attempt_N directory under workDir.
// The search for output happens once after each invocation, whether or not the
// process exited cleanly. Exhausting every strategy is not an error; the
// returned Extraction simply has no table.
func (a *Adapter) Extract(ctx context.Context, sourceTree string, workDir string) Extraction {
	var result Extraction
	absSource, err := filepath.Abs(sourceTree)
	if err != nil {
		absSource = sourceTree
	}

	for i, s := range a.strategies {
		if ctx.Err() != nil {
			break
		}
		attempt := Attempt{Strategy: s.Name}
		dir, err := filepath.Abs(filepath.Join(workDir, fmt.Sprintf("attempt_%d", i+1)))
		if err == nil {
			err = os.MkdirAll(dir, 0o755)
		}
		if err != nil {
			attempt.Err = fmt.Errorf("prepare output directory: %w", err)
			a.record(&result, attempt)
			continue
		}

		env := Env{SourceTree: absSource, OutputDir: dir, Started: time.Now()}
		attempt.Err = s.Invoke(ctx, env)

		if path, ok := s.Locate(env); ok {
			attempt.Table = path
			table, readErr := readLocated(path, env)
			if readErr == nil {
				a.record(&result, attempt)
				result.Table = table
				result.Strategy = s.Name
				return result
			}
			attempt.Err = readErr
		}
		a.record(&result, attempt)
	}
	return result
}

func (a *Adapter) record(result *Extraction, attempt Attempt) {
	result.Attempts = append(result.Attempts, attempt)
	if a.onAttempt != nil {
		a.onAttempt(attempt)
	}
}

// readLocated reads the table and removes it when it lives outside the attempt directory,
// so later attempts or other repositories cannot pick it up again.
func readLocated(path string, env Env) (*schema.MetricsTable, error) {
	table, err := ReadTable(path)
	if !withinDir(path, env.OutputDir) {
		_ = os.Remove(path)
	}
	return table, err
}
