// Package workspace hands out scratch directories for one repository analysis at a time.
package workspace

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"
)

var unsafeLabelChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Workspace is a scratch directory owned by one pipeline run.
type Workspace struct {
	Root string
}

// SourceDir is where the repository is cloned.
func (w *Workspace) SourceDir() string {
	return filepath.Join(w.Root, "source")
}

// OutputDir is where extractor attempts write their tables.
func (w *Workspace) OutputDir() string {
	return filepath.Join(w.Root, "output")
}

// Manager creates and removes workspaces under a base directory.
type Manager struct {
	BaseDir string
}

// NewManager returns a manager rooted at baseDir, or the system temp dir when empty.
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{BaseDir: baseDir}
}

// Acquire creates a fresh workspace whose name embeds label and a random UUID.
func (m *Manager) Acquire(label string) (*Workspace, error) {
	name := "repoquality-" + uuid.NewString()
	if clean := unsafeLabelChars.ReplaceAllString(label, "_"); clean != "" {
		name = "repoquality-" + clean + "-" + uuid.NewString()
	}
	root := filepath.Join(m.BaseDir, name)
	if err := os.MkdirAll(filepath.Join(root, "output"), 0o755); err != nil {
		return nil, fmt.Errorf("cannot create workspace %q: %w", root, err)
	}
	return &Workspace{Root: root}, nil
}

// Release removes the workspace recursively. Errors are swallowed.
func (m *Manager) Release(ws *Workspace) {
	if ws == nil || ws.Root == "" {
		return
	}
	if err := os.RemoveAll(ws.Root); err == nil {
		return
	}
	// Git marks pack files read-only, which blocks removal on some platforms.
	_ = filepath.WalkDir(ws.Root, func(path string, _ fs.DirEntry, err error) error {
		if err == nil {
			_ = os.Chmod(path, 0o700)
		}
		return nil
	})
	_ = os.RemoveAll(ws.Root)
}

// With acquires a workspace, runs fn with it, and always releases it,
// including when fn fails or panics.
func (m *Manager) With(label string, fn func(*Workspace) error) error {
	ws, err := m.Acquire(label)
	if err != nil {
		return err
	}
	defer m.Release(ws)
	return fn(ws)
}
