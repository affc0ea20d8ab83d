// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litreview/internal/llm"
	"github.com/pdiddy/litreview/internal/schema"
	"github.com/pdiddy/litreview/internal/table"
	"github.com/pdiddy/litreview/pkg/types"
)

// mockCompleter returns queued responses in order and records requests.
type mockCompleter struct {
	responses []string
	err       error
	requests  []llm.Request
}

func (m *mockCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	if len(m.requests) > len(m.responses) {
		return "", fmt.Errorf("unexpected call %d", len(m.requests))
	}
	return m.responses[len(m.requests)-1], nil
}

// fakeExtractor returns canned text keyed by base filename.
type fakeExtractor struct {
	text map[string]string
	errs map[string]error
}

func (f fakeExtractor) Extract(path string, _ int) (string, error) {
	name := filepath.Base(path)
	if err := f.errs[name]; err != nil {
		return "", err
	}
	return f.text[name], nil
}

func response(title, include, reflection string) string {
	return strings.Join([]string{
		"ID: model-chosen",
		"Title: " + title,
		"Authors: Doe, J.",
		"Year: 2024",
		"Models: GPT-4",
		"TaskTypes: False belief",
		"QuantitativeMetrics: accuracy 0.8",
		"AddToFinalSet: " + include,
		"Justification: Relevant to the review.",
		"GlobalReflection: " + reflection,
	}, "\n")
}

type fixture struct {
	cfg types.ReviewConfig
}

func newFixture(t *testing.T, pdfs []string, screened string) fixture {
	t.Helper()
	root := t.TempDir()
	pdfDir := filepath.Join(root, "articles")
	require.NoError(t, os.MkdirAll(pdfDir, 0o755))
	for _, name := range pdfs {
		require.NoError(t, os.WriteFile(filepath.Join(pdfDir, name), []byte("%PDF-1.4"), 0o644))
	}

	cfg := types.ReviewConfig{
		PDFDir:    pdfDir,
		OutputCSV: filepath.Join(root, "csv", "final_review.csv"),
		JSONDir:   filepath.Join(root, "json"),
	}
	cfg.Temperature = DefaultTemperature
	if screened != "" {
		cfg.ScreenedCSV = filepath.Join(root, "csv", "reviewed_papers_checked.csv")
		require.NoError(t, os.MkdirAll(filepath.Dir(cfg.ScreenedCSV), 0o755))
		require.NoError(t, os.WriteFile(cfg.ScreenedCSV, []byte(screened), 0o644))
	}
	ApplyDefaults(&cfg)
	return fixture{cfg: cfg}
}

func TestRunThreadsAccumulator(t *testing.T) {
	fx := newFixture(t, []string{"b.pdf", "A.pdf", "c.pdf", "notes.txt"},
		"PDF;Include\na.pdf;yes\nB.PDF;YES\nc.pdf;no\n")

	model := &mockCompleter{responses: []string{
		response("Paper A", "yes", "memo after A"),
		response("Paper B", "no", ""),
	}}
	ext := fakeExtractor{text: map[string]string{"A.pdf": "text of A", "b.pdf": "text of B"}}

	var out strings.Builder
	summary, err := Run(context.Background(), model, ext, fx.cfg, &out)
	require.NoError(t, err)
	assert.Equal(t, BatchSummary{Reviewed: 2}, summary)
	assert.False(t, summary.HasFailures())

	require.Len(t, model.requests, 2)
	first, second := model.requests[0], model.requests[1]

	assert.Equal(t, SystemPrompt, first.System)
	assert.Equal(t, DefaultModel, first.Model)
	assert.Equal(t, DefaultTemperature, first.Temperature)
	assert.Contains(t, first.Prompt, noPriorStudies)
	assert.Contains(t, first.Prompt, noPriorReflection)
	assert.Contains(t, first.Prompt, "text of A")

	assert.Contains(t, second.Prompt, "- Title: Paper A")
	assert.Contains(t, second.Prompt, "memo after A")
	assert.Contains(t, second.Prompt, "text of B")

	tbl, err := table.ReadCSV(fx.cfg.OutputCSV, table.Comma)
	require.NoError(t, err)
	assert.Equal(t, Schema.Columns(), tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, "Paper A", tbl.Rows[0][ColTitle])
	assert.Len(t, tbl.Rows[0][ColID], 8)
	assert.NotEqual(t, "model-chosen", tbl.Rows[0][ColID])

	a, err := ReadArtifact(filepath.Join(fx.cfg.JSONDir, "A.json"))
	require.NoError(t, err)
	assert.Equal(t, "A.pdf", a.PDF)
	assert.NotContains(t, a.Prompt, "text of A")
	assert.Contains(t, a.Prompt, "Full Paper Text:")
	assert.Equal(t, "Paper A", a.Parsed[ColTitle])
	assert.Contains(t, a.Missing, "PublicationType")

	assert.Contains(t, out.String(), "reviewing A.pdf")
	assert.NotContains(t, out.String(), "c.pdf")
}

func TestRunIsIdempotent(t *testing.T) {
	fx := newFixture(t, []string{"a.pdf", "b.pdf"}, "")

	model := &mockCompleter{responses: []string{
		response("Paper A", "yes", "m1"),
		response("Paper B", "yes", "m2"),
	}}
	ext := fakeExtractor{}

	_, err := Run(context.Background(), model, ext, fx.cfg, &strings.Builder{})
	require.NoError(t, err)
	require.Len(t, model.requests, 2)

	rerun := &mockCompleter{}
	summary, err := Run(context.Background(), rerun, ext, fx.cfg, &strings.Builder{})
	require.NoError(t, err)
	assert.Empty(t, rerun.requests)
	assert.Equal(t, BatchSummary{Skipped: 2}, summary)

	tbl, err := table.ReadCSV(fx.cfg.OutputCSV, table.Comma)
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 2)
}

func TestRunResumesFromCSV(t *testing.T) {
	fx := newFixture(t, []string{"a.pdf", "b.pdf"}, "")

	model := &mockCompleter{responses: []string{response("Paper A", "yes", "memo one")}}
	_, err := Run(context.Background(), model, fakeExtractor{}, fx.cfg, &strings.Builder{})
	require.Error(t, err)

	// b.pdf failed on the exhausted mock before anything was written for it.
	_, statErr := os.Stat(filepath.Join(fx.cfg.JSONDir, "b.json"))
	require.ErrorIs(t, statErr, os.ErrNotExist)

	resume := &mockCompleter{responses: []string{response("Paper B", "no", "")}}
	summary, err := Run(context.Background(), resume, fakeExtractor{}, fx.cfg, &strings.Builder{})
	require.NoError(t, err)
	assert.Equal(t, BatchSummary{Reviewed: 1, Skipped: 1}, summary)
	require.Len(t, resume.requests, 1)
	assert.Contains(t, resume.requests[0].Prompt, "memo one")
	assert.Contains(t, resume.requests[0].Prompt, "- Title: Paper A")
}

func TestRunAbortsOnFirstError(t *testing.T) {
	fx := newFixture(t, []string{"a.pdf", "b.pdf"}, "")

	model := &mockCompleter{responses: []string{response("Paper B", "yes", "")}}
	ext := fakeExtractor{errs: map[string]error{"a.pdf": errors.New("corrupt xref")}}

	var out strings.Builder
	summary, err := Run(context.Background(), model, ext, fx.cfg, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.pdf")
	assert.Contains(t, err.Error(), "corrupt xref")
	assert.Equal(t, BatchSummary{Failed: 1}, summary)
	assert.True(t, summary.HasFailures())
	assert.Empty(t, model.requests)

	_, statErr := os.Stat(fx.cfg.OutputCSV)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestRunModelError(t *testing.T) {
	fx := newFixture(t, []string{"a.pdf"}, "")
	model := &mockCompleter{err: errors.New("429 exhausted")}

	_, err := Run(context.Background(), model, fakeExtractor{}, fx.cfg, &strings.Builder{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429 exhausted")

	processed, err := Processed(fx.cfg.JSONDir)
	require.NoError(t, err)
	assert.Empty(t, processed)
}

func TestRunCancelled(t *testing.T) {
	fx := newFixture(t, []string{"a.pdf"}, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	model := &mockCompleter{}
	_, err := Run(ctx, model, fakeExtractor{}, fx.cfg, &strings.Builder{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, model.requests)
}

func TestEligible(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checked.csv")
	require.NoError(t, os.WriteFile(path, []byte("ID;PDF;Include\n1;Smith2023.pdf;Yes\n2;jones.pdf;no\n3;lee.pdf;\n"), 0o644))

	got, err := Eligible(path, table.Semicolon)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"smith2023.pdf": true}, got)

	none, err := Eligible(filepath.Join(dir, "missing.csv"), table.Semicolon)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProcessed(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"Smith2023.json", "notes.txt", "jones.JSON"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	got, err := Processed(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"smith2023": true, "jones": true}, got)
}

func TestParseResponseAssignsID(t *testing.T) {
	a := ParseResponse(response("T", "yes", ""))
	b := ParseResponse(response("T", "yes", ""))
	assert.Len(t, a.Record[ColID], 8)
	assert.NotEqual(t, a.Record[ColID], b.Record[ColID])
	assert.Empty(t, a.MissingRequired())
}

func TestParseResponseMissingRequired(t *testing.T) {
	res := ParseResponse("Title: Only a title")
	assert.Equal(t, []string{"Authors", ColAddToFinalSet, ColJustification}, res.MissingRequired())
	assert.NotContains(t, res.Missing, ColID)
}

func TestAccumulatorAdvance(t *testing.T) {
	tests := []struct {
		name           string
		record         schema.Record
		wantIncluded   int
		wantReflection string
	}{
		{
			name:           "included with memo",
			record:         schema.Record{ColTitle: "X", ColAddToFinalSet: "YES", ColGlobalReflection: "new memo"},
			wantIncluded:   1,
			wantReflection: "new memo",
		},
		{
			name:           "excluded keeps state",
			record:         schema.Record{ColTitle: "Y", ColAddToFinalSet: "no"},
			wantIncluded:   0,
			wantReflection: noPriorReflection,
		},
		{
			name:           "blank memo ignored",
			record:         schema.Record{ColTitle: "Z", ColAddToFinalSet: "yes", ColGlobalReflection: "  \n"},
			wantIncluded:   1,
			wantReflection: noPriorReflection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := NewAccumulator()
			next := start.Advance(tt.record)
			assert.Len(t, next.Included, tt.wantIncluded)
			assert.Equal(t, tt.wantReflection, next.Reflection)
			assert.Empty(t, start.Included, "Advance must not mutate the receiver")
		})
	}
}

func TestLoadAccumulator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "final_review.csv")
	rows := []schema.Record{
		{ColTitle: "One", ColAddToFinalSet: "yes", ColGlobalReflection: "first"},
		{ColTitle: "Two", ColAddToFinalSet: "no", ColGlobalReflection: "second"},
		{ColTitle: "Three", ColAddToFinalSet: "Yes"},
	}
	for _, r := range rows {
		require.NoError(t, table.AppendCSV(path, table.Comma, Schema.Columns(), Schema.Row(r)))
	}

	acc, err := LoadAccumulator(path)
	require.NoError(t, err)
	assert.Equal(t, "second", acc.Reflection)
	require.Len(t, acc.Included, 2)
	assert.Equal(t, "One", acc.Included[0].Title)
	assert.Equal(t, "Three", acc.Included[1].Title)

	adjusted := filepath.Join(t.TempDir(), "adjusted.csv")
	require.NoError(t, os.WriteFile(adjusted, []byte(
		"Title,AddToFinalSet,Reviewer,GlobalReflection\n"+
			"Four,YES,ana,\n"+
			"Five,no,ana,  kept memo  \n"), 0o644))
	acc, err = LoadAccumulator(adjusted)
	require.NoError(t, err)
	assert.Equal(t, "kept memo", acc.Reflection)
	assert.Equal(t, []types.StudySummary{{Title: "Four"}}, acc.Included)

	empty, err := LoadAccumulator(filepath.Join(t.TempDir(), "none.csv"))
	require.NoError(t, err)
	assert.Equal(t, NewAccumulator(), empty)
}

func TestApplyDefaultsKeepsZeroTemperature(t *testing.T) {
	var cfg types.ReviewConfig
	ApplyDefaults(&cfg)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, table.Semicolon, cfg.ScreenedDelimiter)
	assert.Zero(t, cfg.Temperature)
}
