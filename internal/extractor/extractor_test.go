package extractor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const classTable = "file,class,type,cbo,wmc,dit,lcom\nA.java,a.A,class,3,5,1,0\nB.java,a.B,class,1,2,2,4\n"

// fakeStrategy fails unless writeTable is set, and counts invocations.
func fakeStrategy(name string, calls *[]string, writeTable bool) Strategy {
	return Strategy{
		Name: name,
		Invoke: func(_ context.Context, env Env) error {
			*calls = append(*calls, name)
			if !writeTable {
				return errors.New("exit status 1")
			}
			return os.WriteFile(filepath.Join(env.OutputDir, "class.csv"), []byte(classTable), 0o644)
		},
		Locate: func(env Env) (string, bool) { return LocateTable(env, env.OutputDir) },
	}
}

func TestExtractStopsAtFirstLocatedTable(t *testing.T) {
	var calls []string
	adapter := NewAdapter([]Strategy{
		fakeStrategy("one", &calls, false),
		fakeStrategy("two", &calls, false),
		fakeStrategy("three", &calls, true),
		fakeStrategy("four", &calls, true),
	})
	var seen []Attempt
	adapter.OnAttempt(func(a Attempt) { seen = append(seen, a) })

	work := t.TempDir()
	result := adapter.Extract(context.Background(), t.TempDir(), work)

	require.True(t, result.Found())
	assert.Equal(t, []string{"one", "two", "three"}, calls, "strategy four must not run")
	assert.Equal(t, "three", result.Strategy)
	assert.Equal(t, filepath.Join(work, "attempt_3", "class.csv"), result.Table.Path)
	assert.Equal(t, 2, result.Table.Len())
	require.Len(t, result.Attempts, 3)
	assert.Error(t, result.Attempts[0].Err)
	assert.NoError(t, result.Attempts[2].Err)
	assert.Equal(t, result.Attempts, seen)
	assert.Equal(t, []string{"one", "two", "three", "four"}, adapter.Strategies())
}

func TestExtractEachAttemptGetsFreshDirectory(t *testing.T) {
	var dirs []string
	record := Strategy{
		Name: "record",
		Invoke: func(_ context.Context, env Env) error {
			entries, err := os.ReadDir(env.OutputDir)
			require.NoError(t, err)
			assert.Empty(t, entries)
			dirs = append(dirs, env.OutputDir)
			return os.WriteFile(filepath.Join(env.OutputDir, "junk.txt"), []byte("x"), 0o644)
		},
		Locate: func(Env) (string, bool) { return "", false },
	}
	result := NewAdapter([]Strategy{record, record}).Extract(context.Background(), t.TempDir(), t.TempDir())

	assert.False(t, result.Found())
	require.Len(t, dirs, 2)
	assert.NotEqual(t, dirs[0], dirs[1])
	assert.Equal(t, "attempt_2", filepath.Base(dirs[1]))
}

func TestExtractNotFoundIsNotAnError(t *testing.T) {
	var calls []string
	adapter := NewAdapter([]Strategy{fakeStrategy("a", &calls, false), fakeStrategy("b", &calls, false)})
	result := adapter.Extract(context.Background(), t.TempDir(), t.TempDir())

	assert.False(t, result.Found())
	assert.Empty(t, result.Strategy)
	assert.Len(t, result.Attempts, 2)
}

func TestExtractEmptyTableStillCountsAsFound(t *testing.T) {
	empty := Strategy{
		Name: "empty",
		Invoke: func(_ context.Context, env Env) error {
			return os.WriteFile(filepath.Join(env.OutputDir, "class.csv"), []byte("file,class,cbo\n"), 0o644)
		},
		Locate: func(env Env) (string, bool) { return LocateTable(env, env.OutputDir) },
	}
	result := NewAdapter([]Strategy{empty}).Extract(context.Background(), t.TempDir(), t.TempDir())

	require.True(t, result.Found())
	assert.Equal(t, 0, result.Table.Len())
	assert.Equal(t, []string{"file", "class", "cbo"}, result.Table.Columns)
}

func TestExtractLocatesOutputOutsideAttemptDir(t *testing.T) {
	source := t.TempDir()
	inSource := Strategy{
		Name: "source-root",
		Invoke: func(_ context.Context, env Env) error {
			return os.WriteFile(filepath.Join(env.SourceTree, "class.csv"), []byte(classTable), 0o644)
		},
		Locate: func(env Env) (string, bool) { return LocateTable(env, env.SourceTree) },
	}
	result := NewAdapter([]Strategy{inSource}).Extract(context.Background(), source, t.TempDir())

	require.True(t, result.Found())
	assert.NoFileExists(t, filepath.Join(source, "class.csv"), "tables outside the attempt dir are consumed")
}

func TestExtractStopsWhenContextDone(t *testing.T) {
	var calls []string
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := NewAdapter([]Strategy{fakeStrategy("a", &calls, true)}).Extract(ctx, t.TempDir(), t.TempDir())
	assert.False(t, result.Found())
	assert.Empty(t, calls)
}
