// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/litreview/internal/schema"
	"github.com/pdiddy/litreview/internal/table"
	"github.com/pdiddy/litreview/pkg/types"
)

// Accumulator is the state carried from one paper's prompt to the next:
// the studies included so far and the latest reflection memo.
type Accumulator struct {
	Included   []types.StudySummary
	Reflection string
}

// NewAccumulator returns an empty accumulator with the default memo.
func NewAccumulator() Accumulator {
	return Accumulator{Reflection: noPriorReflection}
}

// LoadAccumulator seeds an accumulator from an existing review CSV. The
// memo is the last non-empty GlobalReflection; included rows become study
// summaries. A missing file yields NewAccumulator().
func LoadAccumulator(path string) (Accumulator, error) {
	acc := NewAccumulator()

	t, err := table.ReadCSV(path, table.Comma)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return acc, nil
		}
		return acc, fmt.Errorf("loading prior reviews: %w", err)
	}

	var unknown []string
	for _, col := range t.Header {
		if !Schema.Has(col) {
			unknown = append(unknown, col)
		}
	}
	if len(unknown) > 0 {
		log.Warn().Str("path", path).Strs("columns", unknown).Msg("review CSV has columns outside the record schema")
	}

	for _, row := range t.Rows {
		acc = acc.Advance(Schema.FromRow(row))
	}
	return acc, nil
}

// Prompt renders the extraction prompt for paperText from the current state.
func (a Accumulator) Prompt(paperText string) string {
	return BuildPrompt(SummarizeStudies(a.Included), a.Reflection, paperText)
}

// Advance folds one parsed record into the state. Included records add a
// study summary; a non-empty GlobalReflection replaces the memo.
func (a Accumulator) Advance(r schema.Record) Accumulator {
	next := Accumulator{
		Included:   append([]types.StudySummary(nil), a.Included...),
		Reflection: a.Reflection,
	}
	if Included(r) {
		next.Included = append(next.Included, Summarize(r))
	}
	if v := strings.TrimSpace(r[ColGlobalReflection]); v != "" {
		next.Reflection = v
	}
	return next
}
