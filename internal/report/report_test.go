// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litreview/pkg/types"
)

func TestCountTokens(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []Count
	}{
		{
			name:   "no per-row dedup",
			values: []string{"GPT-4, GPT-4"},
			want:   []Count{{"GPT-4", 2}},
		},
		{
			name:   "first appearance order",
			values: []string{"Claude, GPT-4", "GPT-4,  PaLM ", ""},
			want:   []Count{{"Claude", 1}, {"GPT-4", 2}, {"PaLM", 1}},
		},
		{
			name:   "empty tokens ignored",
			values: []string{",, ,GPT-3.5,"},
			want:   []Count{{"GPT-3.5", 1}},
		},
		{
			name:   "case sensitive",
			values: []string{"gpt-4", "GPT-4"},
			want:   []Count{{"gpt-4", 1}, {"GPT-4", 1}},
		},
		{
			name: "nothing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountTokens(tt.values))
		})
	}
}

func TestMostCommon(t *testing.T) {
	counts := []Count{{"a", 1}, {"b", 3}, {"c", 1}, {"d", 3}, {"e", 2}}
	assert.Equal(t, []Count{{"b", 3}, {"d", 3}, {"e", 2}}, MostCommon(counts, 3))
	assert.Len(t, MostCommon(counts, 10), 5)
	assert.Equal(t, []Count{{"a", 1}, {"b", 3}, {"c", 1}, {"d", 3}, {"e", 2}}, counts, "input must not be reordered")
}

func TestStandardError(t *testing.T) {
	assert.InDelta(t, 0.1, StandardError(100), 1e-12)
	assert.InDelta(t, 0.1, StandardError(0), 1e-12)
	assert.InDelta(t, 0.5, StandardError(4), 1e-12)
}

func TestSturges(t *testing.T) {
	assert.Equal(t, 1, sturges(1))
	assert.Equal(t, 2, sturges(2))
	assert.Equal(t, 5, sturges(10))
}

func writeResults(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := r
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "extracted_data.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadResults(t *testing.T) {
	path := writeResults(t, [][]any{
		{"Extracted data"},
		{"Paper", "Task", "Measure", "d", "p"},
		{"Kosinski", "False belief", "accuracy", 0.8, 0.01},
		{"Ullman", "Perturbed", "accuracy", "n/a", "<.001"},
		{"Strachan", "Irony", "accuracy", " 0.35 "},
	})

	results, err := LoadResults(path)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, Result{Study: "Kosinski", Test: "False belief", Metric: "accuracy",
		EffectSize: 0.8, HasEffectSize: true, PValue: 0.01, HasPValue: true}, results[0])
	assert.False(t, results[1].HasEffectSize)
	assert.False(t, results[1].HasPValue)
	assert.True(t, results[2].HasEffectSize)
	assert.False(t, results[2].HasPValue)

	assert.Equal(t, []float64{0.01}, PValues(results))
	assert.Equal(t, []float64{0.8, 0.35}, EffectSizes(results))
}

func TestLoadResultsTooFewColumns(t *testing.T) {
	path := writeResults(t, [][]any{{"banner"}, {"Study", "Test"}})
	_, err := LoadResults(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 5 columns")
}

func TestCharts(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, BarChart(filepath.Join(dir, ModelChartFile), "Models", []Count{{"GPT-4", 3}, {"Claude", 1}}))
	require.NoError(t, PCurve(filepath.Join(dir, PCurveChartFile), []float64{0.01, 0.02, 0.04, 0.049}))
	require.NoError(t, Funnel(filepath.Join(dir, FunnelChartFile), []float64{0.2, 0.5, -0.1}, StandardError(100)))

	for _, name := range []string{ModelChartFile, PCurveChartFile, FunnelChartFile} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}

	assert.Error(t, BarChart(filepath.Join(dir, "empty.png"), "Empty", nil))
	assert.Error(t, PCurve(filepath.Join(dir, "empty.png"), nil))
	assert.Error(t, Funnel(filepath.Join(dir, "empty.png"), nil, 0.1))
}

func TestRun(t *testing.T) {
	root := t.TempDir()
	csvPath := filepath.Join(root, "final_review_processed.csv")
	csv := ";Title;Models;TaskTypes;AddToFinalSet\n" +
		"0;A;GPT-4, GPT-3.5;False belief;yes\n" +
		"1;B;GPT-4;Faux pas, False belief;YES\n" +
		"2;C;PaLM;Irony;no\n" +
		"3;D;;;Yes\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csv), 0o644))

	xlsx := writeResults(t, [][]any{
		{"banner"},
		{"Study", "Test", "Metric", "Effect Size", "p-value"},
		{"A", "False belief", "accuracy", 0.4, 0.03},
	})

	cfg := types.ReportConfig{
		ReviewCSV:   csvPath,
		ResultsXLSX: xlsx,
		FiguresDir:  filepath.Join(root, "figures"),
	}

	var out strings.Builder
	s, err := Run(cfg, &out)
	require.NoError(t, err)

	assert.Equal(t, 3, s.Included)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, []Count{{"GPT-4", 2}, {"GPT-3.5", 1}}, s.MostCommonModels)
	assert.Equal(t, []Count{{"False belief", 2}, {"Faux pas", 1}}, s.MostCommonTasks)
	assert.Equal(t, filepath.Join(cfg.FiguresDir, FunnelChartFile), s.FunnelChart)
	assert.Contains(t, out.String(), "included 3 of 4 studies")

	data, err := os.ReadFile(filepath.Join(cfg.FiguresDir, SummaryFile))
	require.NoError(t, err)
	var back Summary
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, s, back)
}

func TestRunSkipsEmptySeries(t *testing.T) {
	root := t.TempDir()
	csvPath := filepath.Join(root, "processed.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Title;Models;TaskTypes;AddToFinalSet\nA;GPT-4;;no\n"), 0o644))

	cfg := types.ReportConfig{
		ReviewCSV:   csvPath,
		ResultsXLSX: filepath.Join(root, "missing.xlsx"),
		FiguresDir:  filepath.Join(root, "figures"),
	}

	s, err := Run(cfg, &strings.Builder{})
	require.NoError(t, err)
	assert.Zero(t, s.Included)
	assert.Empty(t, s.ModelChart)
	assert.Empty(t, s.TaskChart)
	assert.Empty(t, s.PCurveChart)
	assert.Empty(t, s.FunnelChart)

	_, err = os.Stat(filepath.Join(cfg.FiguresDir, ModelChartFile))
	assert.True(t, os.IsNotExist(err))
}

func TestRunRequiresIncludeColumn(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Title;Models\nA;GPT-4\n"), 0o644))

	_, err := Run(types.ReportConfig{ReviewCSV: csvPath, FiguresDir: t.TempDir()}, &strings.Builder{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AddToFinalSet")
}
