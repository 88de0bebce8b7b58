package fallback

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/huangsam/repoquality/schema"
)

// ErrNoSources is returned when there is nothing to synthesize from.
var ErrNoSources = errors.New("no Java sources found")

// Heuristic limits.
const (
	maxCoupling         = 20
	packageSearchLines  = 20
	visibilityPerMethod = 2
)

// SynthesizedColumns is the column layout of a synthesized table.
var SynthesizedColumns = []string{"class", "file", "loc", "wmc", "cbo", "dit", "noc", "rfc", "lcom", "fanin", "fanout"}

// Synthesize builds a coarse per-file metrics table from source text.
// Method count is visibility keyword occurrences halved (at least 1) and coupling
// is the import count capped at 20. Inheritance depth, children and cohesion
// cannot be known without parsing and get fixed defaults.
func Synthesize(root string) (*schema.MetricsTable, error) {
	table := &schema.MetricsTable{Columns: SynthesizedColumns}
	err := WalkSources(root, func(path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		table.Rows = append(table.Rows, synthesizeRow(path, string(data)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	if table.Len() == 0 {
		return nil, ErrNoSources
	}
	return table, nil
}

func synthesizeRow(path string, content string) []string {
	lines := strings.Split(content, "\n")
	loc := 0
	for _, l := range lines {
		trimmed := strings.TrimSpace(l)
		if trimmed != "" && !strings.HasPrefix(trimmed, "//") {
			loc++
		}
	}

	visibility := strings.Count(content, "public ") + strings.Count(content, "private ") + strings.Count(content, "protected ")
	methods := max(1, visibility/visibilityPerMethod)
	imports := strings.Count(content, "import ")

	return []string{
		qualifiedName(path, lines),
		path,
		strconv.Itoa(loc),
		strconv.Itoa(methods),
		strconv.Itoa(min(imports, maxCoupling)),
		"1",
		"0",
		strconv.Itoa(methods + imports),
		"0",
		"0",
		strconv.Itoa(imports),
	}
}

// qualifiedName prefixes the file's class name with the package declared near the top.
func qualifiedName(path string, lines []string) string {
	className := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for i, l := range lines {
		if i >= packageSearchLines {
			break
		}
		trimmed := strings.TrimSpace(l)
		if pkg, ok := strings.CutPrefix(trimmed, "package "); ok {
			pkg = strings.TrimSpace(strings.ReplaceAll(pkg, ";", ""))
			if pkg != "" {
				return pkg + "." + className
			}
			break
		}
	}
	return className
}
