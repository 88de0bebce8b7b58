package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/repoquality/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetColorOutcome(t *testing.T) {
	outcomes := []schema.Outcome{
		schema.SucceededOutcome,
		schema.FallbackOutcome,
		schema.SkippedOutcome,
		schema.ResumedOutcome,
		schema.FailedOutcome,
	}
	for _, outcome := range outcomes {
		t.Run(string(outcome), func(t *testing.T) {
			assert.Contains(t, GetColorOutcome(outcome), string(outcome))
			assert.NotEmpty(t, GetOutcomeEmoji(outcome))
		})
	}
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestGetDBFilePaths(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	cachePath := GetCacheDBFilePath()
	assert.Contains(t, cachePath, ".repoquality_cache.db")
	assert.True(t, strings.HasPrefix(cachePath, homeDir), "path %s should start with home dir %s", cachePath, homeDir)

	analysisPath := GetAnalysisDBFilePath()
	assert.Contains(t, analysisPath, ".repoquality_analysis.db")
	assert.NotEqual(t, cachePath, analysisPath)
}

func TestTruncateName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		expected string
	}{
		{"fits", "apache/commons", 20, "apache/commons"},
		{"truncated", "spring-projects/spring-boot", 10, "...ng-boot"},
		{"tiny width untouched", "apache/commons", 3, "apache/commons"},
		{"unicode safe", "ñandú/ñandú-core", 8, "...-core"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateName(tt.input, tt.maxWidth))
		})
	}
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		got, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, got, s)
	}
	for _, s := range []string{"no", "False", "0"} {
		got, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, got, s)
	}
	_, err := ParseBoolString("perhaps")
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/data/../out")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "out"), got)

	got, err = ExpandPath("relative/./dir")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("relative", "dir"), got)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"stars", "wmc_mean"}, SplitList("stars, wmc_mean ,"))
	assert.Nil(t, SplitList(" , "))
	assert.Nil(t, SplitList(""))
}
