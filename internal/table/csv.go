// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package table reads and writes the pipeline's tabular files: CSVs with a
// per-file delimiter and the XLSX workbooks kept alongside them.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	// Comma separates files written by the passes themselves.
	Comma = ','

	// Semicolon separates files that went through a spreadsheet round trip.
	Semicolon = ';'
)

const utf8BOM = "\ufeff"

// Row is one CSV record keyed by header column.
type Row map[string]string

// Table is a parsed CSV file.
type Table struct {
	Header []string
	Rows   []Row
}

// Column returns the values of name in row order. Rows without the column
// contribute an empty string.
func (t *Table) Column(name string) []string {
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[name]
	}
	return out
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Header {
		if h == name {
			return true
		}
	}
	return false
}

// ReadCSV parses the file at path. Ragged rows are accepted: missing
// trailing cells are absent from the Row, extra cells are dropped. A UTF-8
// byte order mark on the first header cell is removed.
func ReadCSV(path string, delim rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	t, err := parseCSV(f, delim)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return t, nil
}

func parseCSV(r io.Reader, delim rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	t := &Table{Header: header, Rows: make([]Row, 0, len(records)-1)}
	for _, rec := range records[1:] {
		row := make(Row, len(header))
		for i, v := range rec {
			if i >= len(header) {
				break
			}
			row[header[i]] = v
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// AppendCSV appends rows to path. The header is written only when the file
// does not exist yet; parent directories are created as needed.
func AppendCSV(path string, delim rune, header []string, rows ...[]string) error {
	_, statErr := os.Stat(path)
	exists := statErr == nil

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = delim
	if !exists {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("writing header to %s: %w", path, err)
		}
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing rows to %s: %w", path, err)
	}
	return f.Close()
}

// WriteCSV replaces path with a header and rows.
func WriteCSV(path string, delim rune, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = delim
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header to %s: %w", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("writing rows to %s: %w", path, err)
	}
	return f.Close()
}

// IsYes reports whether v equals "yes", ignoring case.
func IsYes(v string) bool {
	return strings.EqualFold(v, "yes")
}

// Included returns the rows whose column equals "yes" case-insensitively.
// Rows with the column missing, empty, or any other value are excluded.
func Included(rows []Row, column string) []Row {
	var out []Row
	for _, r := range rows {
		if IsYes(r[column]) {
			out = append(out, r)
		}
	}
	return out
}
