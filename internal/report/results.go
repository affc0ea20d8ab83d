// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/litreview/internal/table"
)

// ResultColumns are the names given, by position, to the first five
// columns of the extracted-results workbook.
var ResultColumns = []string{"Study", "Test", "Metric", "Effect Size", "p-value"}

// Result is one row of extracted quantitative data. Non-numeric cells
// leave the matching Has flag false.
type Result struct {
	Study  string
	Test   string
	Metric string

	EffectSize    float64
	HasEffectSize bool

	PValue    float64
	HasPValue bool
}

// LoadResults reads the extracted-results workbook: the first row is a
// banner, the second the header, and the first five columns are renamed
// positionally.
func LoadResults(path string) ([]Result, error) {
	rows, err := table.ReadSheet(path)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("results workbook %s: expected a banner row and a header row, found %d rows", path, len(rows))
	}
	if len(rows[1]) < len(ResultColumns) {
		return nil, fmt.Errorf("results workbook %s: expected %d columns, found %d", path, len(ResultColumns), len(rows[1]))
	}

	results := make([]Result, 0, len(rows)-2)
	for _, rec := range rows[2:] {
		cell := func(i int) string {
			if i < len(rec) {
				return rec[i]
			}
			return ""
		}

		r := Result{Study: cell(0), Test: cell(1), Metric: cell(2)}
		r.EffectSize, r.HasEffectSize = number(cell(3))
		r.PValue, r.HasPValue = number(cell(4))
		results = append(results, r)
	}
	return results, nil
}

func number(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// PValues returns the numeric p-values in row order.
func PValues(results []Result) []float64 {
	var out []float64
	for _, r := range results {
		if r.HasPValue {
			out = append(out, r.PValue)
		}
	}
	return out
}

// EffectSizes returns the numeric effect sizes in row order.
func EffectSizes(results []Result) []float64 {
	var out []float64
	for _, r := range results {
		if r.HasEffectSize {
			out = append(out, r.EffectSize)
		}
	}
	return out
}
