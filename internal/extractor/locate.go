package extractor

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// KnownTables are the file names the tool is known to produce, class granularity first.
var KnownTables = []string{
	"class.csv",
	"ck_outputclass.csv",
	"method.csv",
	"ck_outputmethod.csv",
	"field.csv",
	"ck_outputfield.csv",
	"variable.csv",
	"ck_outputvariable.csv",
}

// mtimeSlack absorbs coarse filesystem timestamps when comparing against the attempt start.
const mtimeSlack = 2 * time.Second

// CandidateDirs lists where to look after an attempt, in priority order:
// the explicit output directory, the process working directory and the source
// tree root. Duplicates are dropped. Directories shared between repositories,
// such as the platform temp directory, are never searched.
func CandidateDirs(env Env, workingDir string) []string {
	var dirs []string
	for _, d := range []string{env.OutputDir, workingDir, env.SourceTree} {
		if d == "" {
			continue
		}
		if abs, err := filepath.Abs(d); err == nil {
			d = abs
		}
		if !slices.Contains(dirs, d) {
			dirs = append(dirs, d)
		}
	}
	return dirs
}

// LocateTable searches the candidate directories once and returns the best table.
// Inside the attempt's own output directory any CSV counts; elsewhere only known
// table names written after the attempt started are accepted.
func LocateTable(env Env, workingDir string) (string, bool) {
	for _, dir := range CandidateDirs(env, workingDir) {
		var found []string
		if dir == env.OutputDir {
			found = append(found, csvFiles(dir)...)
			found = append(found, prefixedTables(dir, env.Started)...)
		} else {
			found = knownTables(dir, env.Started)
		}
		if best, ok := PreferClassTable(found); ok {
			return best, true
		}
	}
	return "", false
}

// PreferClassTable picks the first table whose name indicates class granularity,
// falling back to the first table.
func PreferClassTable(paths []string) (string, bool) {
	if len(paths) == 0 {
		return "", false
	}
	for _, p := range paths {
		if strings.Contains(strings.ToLower(filepath.Base(p)), "class") {
			return p, true
		}
	}
	return paths[0], true
}

// csvFiles lists every CSV file directly inside dir, sorted by name.
func csvFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out
}

// prefixedTables finds tables written next to dir when the tool concatenates
// the output path and the table name without a separator.
func prefixedTables(dir string, since time.Time) []string {
	var out []string
	for _, name := range KnownTables {
		if strings.HasPrefix(name, "ck_output") {
			continue
		}
		if p := dir + name; freshFile(p, since) {
			out = append(out, p)
		}
	}
	return out
}

// knownTables lists known table names in dir modified after since.
func knownTables(dir string, since time.Time) []string {
	var out []string
	for _, name := range KnownTables {
		if p := filepath.Join(dir, name); freshFile(p, since) {
			out = append(out, p)
		}
	}
	return out
}

func freshFile(path string, since time.Time) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return !info.ModTime().Before(since.Add(-mtimeSlack))
}

func withinDir(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
