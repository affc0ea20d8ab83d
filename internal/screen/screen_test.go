// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package screen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/litreview/internal/llm"
	"github.com/pdiddy/litreview/internal/table"
	"github.com/pdiddy/litreview/pkg/types"
)

// scriptedCompleter answers by matching a marker in the prompt.
type scriptedCompleter struct {
	answers  map[string]string
	requests []llm.Request
}

func (s *scriptedCompleter) Complete(_ context.Context, req llm.Request) (string, error) {
	s.requests = append(s.requests, req)
	for marker, answer := range s.answers {
		if strings.Contains(req.Prompt, marker) {
			return answer, nil
		}
	}
	return "", errors.New("rate limited")
}

type fakeExtractor struct {
	text   map[string]string
	budget []int
}

func (f *fakeExtractor) Extract(path string, maxChars int) (string, error) {
	f.budget = append(f.budget, maxChars)
	t, ok := f.text[filepath.Base(path)]
	if !ok {
		return "", errors.New("no text layer")
	}
	return t, nil
}

func setup(t *testing.T, names ...string) types.ScreeningConfig {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "articles")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("not really a pdf"), 0o644))
	}
	cfg := types.ScreeningConfig{
		PDFDir:    dir,
		OutputCSV: filepath.Join(root, "csv", "reviewed_papers.csv"),
	}
	cfg.Temperature = DefaultTemperature
	ApplyDefaults(&cfg)
	return cfg
}

func TestRunGuardsEachPaper(t *testing.T) {
	cfg := setup(t, "c.pdf", "a.pdf", "b.pdf")

	model := &scriptedCompleter{answers: map[string]string{
		"alpha": "Title: Alpha\nAuthors: Kim et al.\nInclude: yes\nTask type: false belief\nModel type: GPT-4\nNotes: human baseline",
		"gamma": "Title: Gamma\nInclude: no\nReason: no LLMs tested",
	}}
	ext := &fakeExtractor{text: map[string]string{
		"a.pdf": "alpha paper",
		"b.pdf": "beta paper",
		"c.pdf": "gamma paper",
	}}

	var out strings.Builder
	summary, decisions, err := Run(context.Background(), model, ext, cfg, &out)
	require.NoError(t, err)
	assert.Equal(t, BatchSummary{Screened: 2, Included: 1, Failed: 1}, summary)
	assert.True(t, summary.HasFailures())
	assert.Equal(t, 3, summary.Total())
	assert.Contains(t, out.String(), "failed  b.pdf: rate limited")

	require.Len(t, decisions, 2)
	assert.Equal(t, "a.pdf", decisions[0].PDF)
	assert.Equal(t, "false belief", decisions[0].TaskType)
	assert.Equal(t, "GPT-4", decisions[0].ModelType)
	assert.Equal(t, "c.pdf", decisions[1].PDF)

	for _, req := range model.requests {
		assert.Equal(t, SystemPrompt, req.System)
		assert.Equal(t, DefaultModel, req.Model)
		assert.Equal(t, DefaultTemperature, req.Temperature)
	}
	assert.Equal(t, []int{DefaultPageBudget, DefaultPageBudget, DefaultPageBudget}, ext.budget)

	tbl, err := table.ReadCSV(cfg.OutputCSV, table.Comma)
	require.NoError(t, err)
	assert.Equal(t, types.ScreeningColumns, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, DecisionID("a.pdf"), tbl.Rows[0]["ID"])
	assert.Equal(t, "no LLMs tested", tbl.Rows[1]["Reason"])
}

func TestRunOverwritesOutput(t *testing.T) {
	cfg := setup(t, "a.pdf")
	require.NoError(t, table.WriteCSV(cfg.OutputCSV, table.Comma, []string{"stale"}, [][]string{{"row"}}))

	model := &scriptedCompleter{answers: map[string]string{"": "Title: Fresh\nInclude: yes"}}
	ext := &fakeExtractor{text: map[string]string{"a.pdf": "text"}}

	_, _, err := Run(context.Background(), model, ext, cfg, &strings.Builder{})
	require.NoError(t, err)

	tbl, err := table.ReadCSV(cfg.OutputCSV, table.Comma)
	require.NoError(t, err)
	assert.Equal(t, types.ScreeningColumns, tbl.Header)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "Fresh", tbl.Rows[0]["Title"])
}

func TestRunEmptyDirectoryWritesHeader(t *testing.T) {
	cfg := setup(t)
	summary, decisions, err := Run(context.Background(), &scriptedCompleter{}, &fakeExtractor{}, cfg, &strings.Builder{})
	require.NoError(t, err)
	assert.Zero(t, summary.Total())
	assert.Empty(t, decisions)

	data, err := os.ReadFile(cfg.OutputCSV)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(types.ScreeningColumns, ",")+"\n", string(data))
}

func TestPaperTruncatesExcerpt(t *testing.T) {
	cfg := setup(t, "long.pdf")
	cfg.ExcerptLimit = 10

	model := &scriptedCompleter{answers: map[string]string{"": "Include: yes"}}
	ext := &fakeExtractor{text: map[string]string{"long.pdf": strings.Repeat("ü", 50)}}

	_, err := Paper(context.Background(), model, ext, cfg, cfg.PDFDir, "long.pdf")
	require.NoError(t, err)
	require.Len(t, model.requests, 1)
	assert.Equal(t, strings.Repeat("ü", 10), model.requests[0].Prompt)
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     types.ScreeningDecision
	}{
		{
			name:     "loose labels",
			response: "**Title**: ToM in LLMs\nAuthor(s): Lee\nInclude?: Yes\nTask Type: recursive belief\nModel Type: PaLM",
			want: types.ScreeningDecision{
				Title: "ToM in LLMs", Authors: "Lee", Include: "Yes",
				TaskType: "recursive belief", ModelType: "PaLM",
			},
		},
		{
			name:     "value containing colons",
			response: "Title: Minds: A Study\nNotes: ratio 3:1",
			want:     types.ScreeningDecision{Title: "Minds: A Study", Notes: "ratio 3:1"},
		},
		{
			name:     "later line overwrites",
			response: "Include: no\nInclude: yes",
			want:     types.ScreeningDecision{Include: "yes"},
		},
		{
			name:     "no labeled lines",
			response: "I cannot determine this.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Decide("paper.pdf", tt.response)
			tt.want.ID = DecisionID("paper.pdf")
			tt.want.PDF = "paper.pdf"
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecisionID(t *testing.T) {
	id := DecisionID("smith2023.pdf")
	assert.Equal(t, "98d8fdcf", id)
	assert.NotEqual(t, id, DecisionID("Smith2023.pdf"))
}

func TestApplyDefaultsKeepsOverrides(t *testing.T) {
	cfg := types.ScreeningConfig{PageBudget: 500}
	cfg.Model = "gpt-4o-mini"
	ApplyDefaults(&cfg)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 500, cfg.PageBudget)
	assert.Equal(t, DefaultExcerptLimit, cfg.ExcerptLimit)
}

func TestApplyDefaultsKeepsZeroTemperature(t *testing.T) {
	var cfg types.ScreeningConfig
	ApplyDefaults(&cfg)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Zero(t, cfg.Temperature)
}
