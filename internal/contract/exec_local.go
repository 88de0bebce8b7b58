package contract

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// maxCapturedOutput bounds how much process output is kept for diagnostics.
const maxCapturedOutput = 64 * 1024

// LocalCommandRunner implements CommandRunner with os/exec.
type LocalCommandRunner struct {
	// WaitDelay bounds how long to wait for output pipes after the process is killed.
	WaitDelay time.Duration
}

var _ CommandRunner = &LocalCommandRunner{} // Compile-time check

// NewLocalCommandRunner creates a runner that kills processes when their context ends.
func NewLocalCommandRunner() *LocalCommandRunner {
	return &LocalCommandRunner{WaitDelay: 5 * time.Second}
}

// RunCommand runs inv to completion. A non-zero exit is reported through
// CommandResult.ExitCode, not as an error; errors mean the process could not
// start or was stopped by ctx.
func (r *LocalCommandRunner) RunCommand(ctx context.Context, inv Invocation) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, inv.Name, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.WaitDelay = r.WaitDelay

	buf := &limitedBuffer{limit: maxCapturedOutput}
	cmd.Stdout = buf
	cmd.Stderr = buf

	err := cmd.Run()
	result := CommandResult{Output: buf.Bytes()}
	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = -1
		return result, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if err != nil {
		result.ExitCode = -1
		return result, err
	}
	return result, nil
}

// limitedBuffer keeps the first limit bytes written and discards the rest.
type limitedBuffer struct {
	bytes.Buffer
	limit int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.Len(); room > 0 {
		if len(p) > room {
			b.Buffer.Write(p[:room])
		} else {
			b.Buffer.Write(p)
		}
	}
	return len(p), nil
}
