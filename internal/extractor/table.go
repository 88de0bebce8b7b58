package extractor

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huangsam/repoquality/schema"
)

// ReadTable parses a CSV metrics table. An empty file yields an empty table.
func ReadTable(path string) (*schema.MetricsTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open metrics table: %w", err)
	}
	defer func() { _ = f.Close() }()

	table, err := ParseTable(f)
	if err != nil {
		return nil, fmt.Errorf("parse metrics table %s: %w", path, err)
	}
	table.Path = path
	return table, nil
}

// ParseTable reads a header row followed by data rows.
// Ragged rows are kept as-is; missing cells read as empty.
func ParseTable(r io.Reader) (*schema.MetricsTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	table := &schema.MetricsTable{}
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return table, nil
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	table.Columns = header

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
