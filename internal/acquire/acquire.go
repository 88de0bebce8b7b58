// Package acquire clones repositories with a shallow, then sparse, then full strategy.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/repoquality/internal/contract"
)

// ErrPathTooLong marks a clone that failed because the filesystem rejected a path.
var ErrPathTooLong = errors.New("path too long")

// SparsePatterns are checked out when the shallow clone hits path-length limits.
// Only source files are needed for analysis, so deep resource trees are skipped.
var SparsePatterns = []string{"*.java"}

var pathLengthMarkers = []string{
	"filename too long",
	"file name too long",
	"path too long",
	"name too long",
}

// Stage names one step of the fallback chain.
type Stage string

// Stages in the order they are tried.
const (
	ShallowStage Stage = "shallow"
	SparseStage  Stage = "sparse"
	FullStage    Stage = "full"
)

// Acquirer fetches a repository into a destination directory.
type Acquirer struct {
	git contract.GitClient
}

// NewAcquirer creates an acquirer backed by git.
func NewAcquirer(git contract.GitClient) *Acquirer {
	return &Acquirer{git: git}
}

// Fetch clones url into dest and reports which stage succeeded.
// Only path-length failures of the shallow clone trigger the sparse and full retries;
// any other failure is returned immediately.
func (a *Acquirer) Fetch(ctx context.Context, url string, dest string) (Stage, error) {
	err := a.git.Clone(ctx, url, dest, contract.CloneOptions{Depth: 1})
	if err == nil {
		return ShallowStage, nil
	}
	if !IsPathLengthFailure(err) {
		return "", fmt.Errorf("clone %s: %w", url, err)
	}

	resetDestination(dest)
	sparseErr := a.sparseClone(ctx, url, dest)
	if sparseErr == nil {
		return SparseStage, nil
	}

	resetDestination(dest)
	fullErr := a.git.Clone(ctx, url, dest, contract.CloneOptions{LongPaths: true})
	if fullErr == nil {
		return FullStage, nil
	}
	resetDestination(dest)
	return "", fmt.Errorf("clone %s: %w: shallow: %v; sparse: %v; full: %v", url, ErrPathTooLong, err, sparseErr, fullErr)
}

// sparseClone fetches the tree without blobs, then checks out source files only.
func (a *Acquirer) sparseClone(ctx context.Context, url string, dest string) error {
	opts := contract.CloneOptions{Depth: 1, Filter: "blob:none", NoCheckout: true, LongPaths: true}
	if err := a.git.Clone(ctx, url, dest, opts); err != nil {
		return err
	}
	args := append([]string{"sparse-checkout", "set", "--no-cone"}, SparsePatterns...)
	if _, err := a.git.Run(ctx, dest, args...); err != nil {
		return err
	}
	// A bare checkout would leave the empty index of a --no-checkout clone untouched.
	_, err := a.git.Run(ctx, dest, "-c", "core.longpaths=true", "read-tree", "-mu", "HEAD")
	return err
}

// IsPathLengthFailure reports whether err comes from a filesystem path-length limit.
func IsPathLengthFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrPathTooLong) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range pathLengthMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func resetDestination(dest string) {
	_ = os.RemoveAll(dest)
}
