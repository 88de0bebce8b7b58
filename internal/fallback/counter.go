package fallback

import (
	"bufio"
	"bytes"
	"os"
	"strings"
)

// LineCounts is the loc and comment tally over a source tree.
type LineCounts struct {
	Files    int
	LOC      int // non-blank lines
	Comments int
}

// CountLines tallies every Java file under root. Files that cannot be read are skipped.
func CountLines(root string) (LineCounts, error) {
	var total LineCounts
	err := WalkSources(root, func(path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		loc, comments := CountContent(data)
		total.Files++
		total.LOC += loc
		total.Comments += comments
		return nil
	})
	return total, err
}

// CountContent counts non-blank lines and comment lines in one file.
// A comment line starts with //, opens a block comment, sits inside one, or closes it.
func CountContent(data []byte) (loc int, comments int) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	inBlock := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		loc++
		switch {
		case strings.HasPrefix(line, "//"):
			comments++
		case strings.HasPrefix(line, "/*"):
			comments++
			inBlock = !strings.Contains(line[2:], "*/")
		case strings.Contains(line, "*/"):
			if inBlock {
				comments++
			}
			inBlock = false
		case inBlock:
			comments++
		}
	}
	return loc, comments
}
