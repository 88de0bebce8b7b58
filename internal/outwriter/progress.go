package outwriter

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
	progress "gopkg.in/cheggaaa/pb.v1"

	"github.com/huangsam/repoquality/internal/contract"
	"github.com/huangsam/repoquality/schema"
)

// maxDetailWidth caps the error text shown on a progress line.
const maxDetailWidth = 120

// Progress receives one call per finished repository.
type Progress interface {
	Report(completed, total int, result schema.RepositoryResult)
	Finish()
}

// NewProgress returns a progress bar when requested and stderr is a terminal, else progress lines.
func NewProgress(cfg *contract.Config, total int) Progress {
	if cfg.ProgressBar && term.IsTerminal(int(os.Stderr.Fd())) {
		return NewProgressBar(total)
	}
	return NewProgressLines(os.Stderr, cfg.UseEmojis, cfg.UseColors)
}

// ProgressLines prints "[completed/total] status owner/name (detail)" per repository.
type ProgressLines struct {
	mu        sync.Mutex
	w         io.Writer
	useEmojis bool
	useColors bool
}

// NewProgressLines writes progress lines to w.
func NewProgressLines(w io.Writer, useEmojis, useColors bool) *ProgressLines {
	return &ProgressLines{w: w, useEmojis: useEmojis, useColors: useColors}
}

// Report prints one line.
func (p *ProgressLines) Report(completed, total int, r schema.RepositoryResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	status := string(r.Outcome)
	if p.useColors {
		status = contract.GetColorOutcome(r.Outcome)
	}
	if p.useEmojis {
		status = contract.GetOutcomeEmoji(r.Outcome) + " " + status
	}
	_, _ = fmt.Fprintf(p.w, "[%d/%d] %s %s (%s)\n", completed, total, status, r.FullName, ProgressDetail(r))
}

// Finish does nothing for plain lines.
func (p *ProgressLines) Finish() {}

// ProgressDetail summarizes a result in a few words.
func ProgressDetail(r schema.RepositoryResult) string {
	if r.Record != nil {
		detail := fmt.Sprintf("%s, %s LOC", r.Record.Source, humanize.Comma(int64(r.Record.LOC)))
		if r.Record.Strategy != "" {
			detail += ", " + r.Record.Strategy
		}
		return detail
	}
	if r.Error != "" {
		return contract.TruncateName(r.Error, maxDetailWidth)
	}
	return r.Duration.String()
}

// ProgressBar renders a single-line bar on stderr. Failures are still logged as warnings.
type ProgressBar struct {
	mu  sync.Mutex
	bar *progress.ProgressBar
}

// NewProgressBar starts a bar for total repositories.
func NewProgressBar(total int) *ProgressBar {
	bar := progress.New(total)
	bar.Callback = func(msg string) {
		_, _ = os.Stderr.WriteString("\033[2K\r" + msg)
	}
	bar.NotPrint = true
	bar.ShowPercent = false
	bar.ShowSpeed = false
	bar.SetMaxWidth(80).Start()
	return &ProgressBar{bar: bar}
}

// Report advances the bar.
func (p *ProgressBar) Report(completed, _ int, r schema.RepositoryResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if r.Outcome == schema.FailedOutcome {
		_, _ = os.Stderr.WriteString("\033[2K\r")
		contract.LogWarn("Analysis failed for "+r.FullName, r.Err)
	}
	p.bar.Set(completed).Postfix(" " + r.FullName)
}

// Finish completes the bar.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bar.Finish()
	_, _ = os.Stderr.WriteString("\n")
}
