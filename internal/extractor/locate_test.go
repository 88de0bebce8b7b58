package extractor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newEnv(t *testing.T) Env {
	t.Helper()
	root := t.TempDir()
	out := filepath.Join(root, "output", "attempt_1")
	require.NoError(t, os.MkdirAll(out, 0o755))
	src := filepath.Join(root, "source")
	require.NoError(t, os.MkdirAll(src, 0o755))
	return Env{SourceTree: src, OutputDir: out, Started: time.Now()}
}

func TestLocatePrefersClassTable(t *testing.T) {
	env := newEnv(t)
	writeFile(t, filepath.Join(env.OutputDir, "field.csv"), "x\n")
	writeFile(t, filepath.Join(env.OutputDir, "method.csv"), "x\n")
	writeFile(t, filepath.Join(env.OutputDir, "class.csv"), "x\n")

	got, ok := LocateTable(env, "")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(env.OutputDir, "class.csv"), got)
}

func TestLocateFallsBackToFirstTable(t *testing.T) {
	env := newEnv(t)
	writeFile(t, filepath.Join(env.OutputDir, "variable.csv"), "x\n")
	writeFile(t, filepath.Join(env.OutputDir, "method.csv"), "x\n")

	got, ok := LocateTable(env, "")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(env.OutputDir, "method.csv"), got, "sorted directory listing puts method first")
}

func TestLocateFindsPrefixedSibling(t *testing.T) {
	env := newEnv(t)
	writeFile(t, env.OutputDir+"class.csv", "x\n")

	got, ok := LocateTable(env, "")
	require.True(t, ok)
	assert.Equal(t, env.OutputDir+"class.csv", got)
}

func TestLocateHiddenImplicitOutput(t *testing.T) {
	env := newEnv(t)
	writeFile(t, filepath.Join(env.OutputDir, ".class.csv"), "x\n")

	got, ok := LocateTable(env, env.OutputDir)
	require.True(t, ok)
	assert.Equal(t, ".class.csv", filepath.Base(got))
}

func TestLocateSearchesOrderedCandidates(t *testing.T) {
	env := newEnv(t)
	cwd := t.TempDir()
	writeFile(t, filepath.Join(env.SourceTree, "class.csv"), "x\n")
	writeFile(t, filepath.Join(cwd, "ck_outputclass.csv"), "x\n")

	got, ok := LocateTable(env, cwd)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(cwd, "ck_outputclass.csv"), got, "working directory comes before the source root")
}

func TestLocateIgnoresStaleFilesOutsideAttemptDir(t *testing.T) {
	env := newEnv(t)
	stale := filepath.Join(env.SourceTree, "class.csv")
	writeFile(t, stale, "x\n")
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))
	writeFile(t, filepath.Join(env.SourceTree, "notes.csv"), "x\n")

	_, ok := LocateTable(env, env.SourceTree)
	assert.False(t, ok)
}

func TestCandidateDirsDeduplicates(t *testing.T) {
	env := newEnv(t)
	dirs := CandidateDirs(env, env.SourceTree)
	assert.Equal(t, []string{env.OutputDir, env.SourceTree}, dirs)
	assert.NotContains(t, CandidateDirs(env, ""), filepath.Clean(os.TempDir()))
}

func TestPreferClassTable(t *testing.T) {
	_, ok := PreferClassTable(nil)
	assert.False(t, ok)

	got, ok := PreferClassTable([]string{"/a/method.csv", "/a/ck_outputclass.csv"})
	assert.True(t, ok)
	assert.Equal(t, "/a/ck_outputclass.csv", got)
}

func TestWithinDir(t *testing.T) {
	assert.True(t, withinDir("/w/out/attempt_1/class.csv", "/w/out/attempt_1"))
	assert.False(t, withinDir("/w/out/attempt_1class.csv", "/w/out/attempt_1"))
	assert.False(t, withinDir("/w/source/class.csv", "/w/out/attempt_1"))
}
