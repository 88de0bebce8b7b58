// Package fallback approximates metrics straight from Java source text.
package fallback

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/src-d/enry/v2"
)

// skippedDirs are build output directories never walked into. Hidden directories
// (including .git) are skipped as well.
var skippedDirs = map[string]struct{}{
	"target": {},
	"build":  {},
}

// IsJavaSource reports whether the file name denotes Java source.
func IsJavaSource(path string) bool {
	return enry.GetLanguage(filepath.Base(path), nil) == "Java"
}

// WalkSources calls fn for every Java source file under root, in lexical order.
// Unreadable subtrees are skipped.
func WalkSources(root string, fn func(path string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			name := d.Name()
			if _, skip := skippedDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !IsJavaSource(path) {
			return nil
		}
		return fn(path)
	})
}

// CountSources returns the number of Java source files under root.
func CountSources(root string) (int, error) {
	n := 0
	err := WalkSources(root, func(string) error {
		n++
		return nil
	})
	return n, err
}
