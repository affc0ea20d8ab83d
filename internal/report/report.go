// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report summarizes the reviewed studies: model and task
// frequencies, a p-curve, and a funnel plot.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litreview/internal/table"
	"github.com/pdiddy/litreview/pkg/types"
)

// DefaultSampleSize is the per-study N behind the placeholder standard error.
const DefaultSampleSize = 100

// SummaryFile is written to the figures directory.
const SummaryFile = "summary.yaml"

const (
	colInclude = "AddToFinalSet"
	colModels  = "Models"
	colTasks   = "TaskTypes"

	topN = 3
)

// Summary describes one report run.
type Summary struct {
	Included int `json:"num_included" yaml:"num_included"`
	Total    int `json:"num_total" yaml:"num_total"`

	MostCommonModels []Count `json:"most_common_models" yaml:"most_common_models"`
	MostCommonTasks  []Count `json:"most_common_tasks" yaml:"most_common_tasks"`

	ModelChart  string `json:"model_chart_path,omitempty" yaml:"model_chart_path,omitempty"`
	TaskChart   string `json:"task_chart_path,omitempty" yaml:"task_chart_path,omitempty"`
	PCurveChart string `json:"pcurve_path,omitempty" yaml:"pcurve_path,omitempty"`
	FunnelChart string `json:"funnel_path,omitempty" yaml:"funnel_path,omitempty"`
}

// Run reads the processed review CSV and the results workbook, renders the
// charts into cfg.FiguresDir, and writes the summary there. A chart whose
// series is empty is skipped with a warning. A missing results workbook
// skips the p-curve and funnel plot.
func Run(cfg types.ReportConfig, w io.Writer) (Summary, error) {
	var s Summary

	t, err := table.ReadCSV(cfg.ReviewCSV, table.Semicolon)
	if err != nil {
		return s, err
	}
	if !t.HasColumn(colInclude) {
		return s, fmt.Errorf("%s has no %s column", cfg.ReviewCSV, colInclude)
	}

	if err := os.MkdirAll(cfg.FiguresDir, 0o755); err != nil {
		return s, fmt.Errorf("creating figures directory: %w", err)
	}

	included := &table.Table{Header: t.Header, Rows: table.Included(t.Rows, colInclude)}
	s.Total = len(t.Rows)
	s.Included = len(included.Rows)

	models := CountTokens(included.Column(colModels))
	tasks := CountTokens(included.Column(colTasks))
	s.MostCommonModels = MostCommon(models, topN)
	s.MostCommonTasks = MostCommon(tasks, topN)

	s.ModelChart, err = render(cfg.FiguresDir, ModelChartFile, len(models), func(path string) error {
		return BarChart(path, "Model Usage in Included Studies", models)
	})
	if err != nil {
		return s, err
	}
	s.TaskChart, err = render(cfg.FiguresDir, TaskChartFile, len(tasks), func(path string) error {
		return BarChart(path, "Task Types in Included Studies", tasks)
	})
	if err != nil {
		return s, err
	}

	results, err := loadResults(cfg.ResultsXLSX)
	if err != nil {
		return s, err
	}
	pvalues := PValues(results)
	effects := EffectSizes(results)

	s.PCurveChart, err = render(cfg.FiguresDir, PCurveChartFile, len(pvalues), func(path string) error {
		return PCurve(path, pvalues)
	})
	if err != nil {
		return s, err
	}
	s.FunnelChart, err = render(cfg.FiguresDir, FunnelChartFile, len(effects), func(path string) error {
		return Funnel(path, effects, StandardError(cfg.SampleSize))
	})
	if err != nil {
		return s, err
	}

	if err := WriteSummary(filepath.Join(cfg.FiguresDir, SummaryFile), s); err != nil {
		return s, err
	}
	PrintSummary(w, s)
	return s, nil
}

func loadResults(path string) ([]Result, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		log.Warn().Str("path", path).Msg("results workbook not found; skipping p-curve and funnel plot")
		return nil, nil
	}
	return LoadResults(path)
}

// render draws one chart unless its series is empty. It returns the path
// written, or "" when skipped.
func render(dir, name string, n int, draw func(path string) error) (string, error) {
	if n == 0 {
		log.Warn().Str("chart", name).Msg("no data; chart skipped")
		return "", nil
	}
	path := filepath.Join(dir, name)
	if err := draw(path); err != nil {
		return "", err
	}
	return path, nil
}

// WriteSummary writes s as YAML.
func WriteSummary(path string, s Summary) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// PrintSummary writes a human-readable summary.
func PrintSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "included %d of %d studies\n", s.Included, s.Total)
	printTop(w, "models", s.MostCommonModels)
	printTop(w, "tasks", s.MostCommonTasks)
	for _, p := range []string{s.ModelChart, s.TaskChart, s.PCurveChart, s.FunnelChart} {
		if p != "" {
			fmt.Fprintf(w, "wrote %s\n", p)
		}
	}
}

func printTop(w io.Writer, label string, counts []Count) {
	fmt.Fprintf(w, "top %s:", label)
	if len(counts) == 0 {
		fmt.Fprint(w, " none")
	}
	for _, c := range counts {
		fmt.Fprintf(w, " %s (%d)", c.Label, c.N)
	}
	fmt.Fprintln(w)
}
