package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Jeffail/tunny"
	"github.com/huangsam/repoquality/internal/contract"
)

// ErrAttemptTimeout is returned when a tool process outlives its per-attempt limit.
var ErrAttemptTimeout = errors.New("extractor attempt timed out")

// Launcher runs tool processes through a fixed-size pool, each with its own timeout.
// The timeout starts when a pool slot picks the job up, not when it is queued.
type Launcher struct {
	runner  contract.CommandRunner
	timeout time.Duration
	pool    *tunny.Pool
}

type launchJob struct {
	ctx context.Context
	inv contract.Invocation
}

type launchResult struct {
	res contract.CommandResult
	err error
}

// NewLauncher creates a launcher allowing at most workers concurrent processes.
func NewLauncher(runner contract.CommandRunner, timeout time.Duration, workers int) *Launcher {
	if workers < 1 {
		workers = 1
	}
	l := &Launcher{runner: runner, timeout: timeout}
	l.pool = tunny.NewFunc(workers, func(payload interface{}) interface{} {
		job := payload.(launchJob)
		res, err := l.runWithTimeout(job.ctx, job.inv)
		return launchResult{res: res, err: err}
	})
	return l
}

// Launch runs inv and turns a non-zero exit into an error.
func (l *Launcher) Launch(ctx context.Context, inv contract.Invocation) error {
	out := l.pool.Process(launchJob{ctx: ctx, inv: inv}).(launchResult)
	if out.err != nil {
		return out.err
	}
	if out.res.ExitCode != 0 {
		return fmt.Errorf("exit status %d: %s", out.res.ExitCode, tail(out.res.Output, 300))
	}
	return nil
}

// Close releases the pool workers.
func (l *Launcher) Close() {
	l.pool.Close()
}

func (l *Launcher) runWithTimeout(ctx context.Context, inv contract.Invocation) (contract.CommandResult, error) {
	if ctx.Err() != nil {
		return contract.CommandResult{ExitCode: -1}, ctx.Err()
	}
	if l.timeout <= 0 {
		return l.runner.RunCommand(ctx, inv)
	}
	tctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	res, err := l.runner.RunCommand(tctx, inv)
	if err != nil && ctx.Err() == nil && errors.Is(tctx.Err(), context.DeadlineExceeded) {
		return res, fmt.Errorf("%w after %s", ErrAttemptTimeout, l.timeout)
	}
	return res, err
}

// tail returns the last n bytes of output as a single line, one trimmed segment per
// non-empty output line.
func tail(output []byte, n int) string {
	s := strings.TrimSpace(string(output))
	if len(s) > n {
		s = s[len(s)-n:]
	}
	var lines []string
	for line := range strings.SplitSeq(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, " | ")
}
