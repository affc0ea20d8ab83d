// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package table

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// ReadSheet returns the cell values of the workbook's first sheet. Trailing
// empty cells of a row are omitted, as excelize reports them.
func ReadSheet(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q of %s: %w", sheets[0], path, err)
	}
	return rows, nil
}

// HeaderedSheet reads a workbook whose first row is a banner and whose
// second row holds the real column names. Data rows are padded to the
// header width.
func HeaderedSheet(path string) (*Table, error) {
	rows, err := ReadSheet(path)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("workbook %s: expected a banner row and a header row, found %d rows", path, len(rows))
	}

	header := rows[1]
	t := &Table{Header: header}
	for _, rec := range rows[2:] {
		row := make(Row, len(header))
		for i, name := range header {
			if i < len(rec) {
				row[name] = rec[i]
			} else {
				row[name] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ConvertXLSX rewrites a banner+header workbook as a semicolon-separated
// CSV with a leading zero-based index column, the layout the report pass reads.
func ConvertXLSX(xlsxPath, csvPath string) (int, error) {
	t, err := HeaderedSheet(xlsxPath)
	if err != nil {
		return 0, err
	}

	header := append([]string{""}, t.Header...)
	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rec := make([]string, 0, len(header))
		rec = append(rec, strconv.Itoa(i))
		for _, name := range t.Header {
			rec = append(rec, r[name])
		}
		rows[i] = rec
	}

	if err := WriteCSV(csvPath, Semicolon, header, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}
