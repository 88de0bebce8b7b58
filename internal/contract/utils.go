package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/repoquality/schema"
)

// Color variables for console output.
var (
	SuccessColor  = color.New(color.FgGreen, color.Bold) // extractor metrics
	FallbackColor = color.New(color.FgYellow)            // heuristic metrics
	SkipColor     = color.New(color.FgCyan)              // nothing to analyze
	FailureColor  = color.New(color.FgRed, color.Bold)   // repository-fatal error
)

// GetOutcomeEmoji returns the progress-line prefix for an outcome.
func GetOutcomeEmoji(outcome schema.Outcome) string {
	switch outcome {
	case schema.SucceededOutcome:
		return "✅"
	case schema.FallbackOutcome:
		return "🟡"
	case schema.SkippedOutcome:
		return "⏭️"
	case schema.ResumedOutcome:
		return "♻️"
	default:
		return "❌"
	}
}

// GetColorOutcome returns a colored outcome label for console output.
func GetColorOutcome(outcome schema.Outcome) string {
	text := string(outcome)
	switch outcome {
	case schema.SucceededOutcome:
		return SuccessColor.Sprint(text)
	case schema.FallbackOutcome:
		return FallbackColor.Sprint(text)
	case schema.SkippedOutcome, schema.ResumedOutcome:
		return SkipColor.Sprint(text)
	default:
		return FailureColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when the path is empty.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// LogInfo logs an informational message to stderr.
func LogInfo(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for result cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".repoquality_cache.db"
	}
	return filepath.Join(homeDir, ".repoquality_cache.db")
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for analysis storage.
func GetAnalysisDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".repoquality_analysis.db"
	}
	return filepath.Join(homeDir, ".repoquality_analysis.db")
}

// TruncateName truncates a name to a maximum width with an ellipsis prefix.
// Requires maxWidth > 3 to leave room for the "..." prefix and one character.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return name
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

// SplitList splits a comma separated list, dropping blank entries.
func SplitList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
