package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout output.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	return c.exec(ctx, repoPath, fullArgs)
}

// Clone implements the GitClient interface.
func (c *LocalGitClient) Clone(ctx context.Context, url string, dest string, opts CloneOptions) error {
	_, err := c.exec(ctx, dest, BuildCloneArgs(url, dest, opts))
	return err
}

// GetRepoHash implements the GitClient interface.
func (c *LocalGitClient) GetRepoHash(ctx context.Context, repoPath string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// BuildCloneArgs returns the git arguments for a clone of url into dest.
func BuildCloneArgs(url string, dest string, opts CloneOptions) []string {
	var args []string
	if opts.LongPaths {
		args = append(args, "-c", "core.longpaths=true")
	}
	args = append(args, "clone", "--quiet")
	if opts.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(opts.Depth))
	}
	if opts.Filter != "" {
		args = append(args, "--filter="+opts.Filter)
	}
	if opts.NoCheckout {
		args = append(args, "--no-checkout")
	}
	return append(args, url, dest)
}

func (c *LocalGitClient) exec(ctx context.Context, where string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Env = append(cmd.Environ(), "GIT_TERMINAL_PROMPT=0")
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git command failed in %q: %s", where, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}
