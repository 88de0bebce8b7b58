// Package listing reads and writes the repository listing file.
package listing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/repoquality/schema"
)

// Columns is the listing header, in file order.
var Columns = []string{
	"full_name", "html_url", "clone_url", "stargazers_count", "forks_count",
	"created_at", "updated_at", "size", "language", "open_issues_count", "default_branch",
}

// ErrMissingFullName is returned when the listing has no full_name column.
var ErrMissingFullName = errors.New("listing has no full_name column")

// Read loads at most limit descriptors from path; limit <= 0 reads them all.
func Read(path string, limit int) ([]schema.RepositoryDescriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	descs, err := Parse(f, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read listing %s: %w", path, err)
	}
	return descs, nil
}

// Parse reads descriptors from r. Rows without a full name are skipped;
// unparsable numbers and timestamps become zero values.
func Parse(r io.Reader, limit int) ([]schema.RepositoryDescriptor, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := index["full_name"]; !ok {
		return nil, ErrMissingFullName
	}

	var out []schema.RepositoryDescriptor
	for limit <= 0 || len(out) < limit {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return out, err
		}
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		if get("full_name") == "" {
			continue
		}
		out = append(out, schema.RepositoryDescriptor{
			FullName:      get("full_name"),
			HTMLURL:       get("html_url"),
			CloneURL:      get("clone_url"),
			Stars:         parseInt(get("stargazers_count")),
			Forks:         parseInt(get("forks_count")),
			CreatedAt:     parseTime(get("created_at")),
			UpdatedAt:     parseTime(get("updated_at")),
			SizeKB:        parseInt(get("size")),
			Language:      get("language"),
			OpenIssues:    parseInt(get("open_issues_count")),
			DefaultBranch: get("default_branch"),
		})
	}
	return out, nil
}

// Write stores descriptors at path with the listing header.
func Write(path string, descs []schema.RepositoryDescriptor) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return Format(f, descs)
}

// Format writes the listing to w.
func Format(w io.Writer, descs []schema.RepositoryDescriptor) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, d := range descs {
		if err := cw.Write([]string{
			d.FullName, d.HTMLURL, d.CloneURL,
			strconv.Itoa(d.Stars), strconv.Itoa(d.Forks),
			formatTime(d.CreatedAt), formatTime(d.UpdatedAt),
			strconv.Itoa(d.SizeKB), d.Language, strconv.Itoa(d.OpenIssues), d.DefaultBranch,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseInt(s string) int {
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
