// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package review runs the detailed extraction pass. Each eligible paper is
// sent to the model together with the studies included so far and the
// running reflection memo; the parsed record is appended to the review CSV
// and a JSON artifact is written so later runs skip the paper.
package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/litreview/internal/llm"
	"github.com/pdiddy/litreview/internal/pdftext"
	"github.com/pdiddy/litreview/internal/schema"
	"github.com/pdiddy/litreview/internal/table"
	"github.com/pdiddy/litreview/pkg/types"
)

// Default settings applied by ApplyDefaults.
const (
	DefaultModel       = "gpt-4o"
	DefaultTemperature = 0.3
)

// Screening CSV columns that gate eligibility.
const (
	screenPDFColumn     = "PDF"
	screenIncludeColumn = "Include"
)

// BatchSummary holds counts from a review run.
type BatchSummary struct {
	Reviewed int
	Skipped  int
	Failed   int
}

// Total returns the number of papers considered.
func (s BatchSummary) Total() int {
	return s.Reviewed + s.Skipped + s.Failed
}

// HasFailures reports whether a paper failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ApplyDefaults fills zero-valued settings. Temperature is left alone since
// zero is a valid sampling setting; callers start from DefaultTemperature.
func ApplyDefaults(cfg *types.ReviewConfig) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.ScreenedDelimiter == 0 {
		cfg.ScreenedDelimiter = table.Semicolon
	}
}

// Eligible returns the lowercased filenames marked Include=yes in the
// checked screening CSV. A missing file yields an empty set.
func Eligible(path string, delim rune) (map[string]bool, error) {
	t, err := table.ReadCSV(path, delim)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("loading screening decisions: %w", err)
	}

	set := make(map[string]bool)
	for _, row := range table.Included(t.Rows, screenIncludeColumn) {
		set[strings.ToLower(row[screenPDFColumn])] = true
	}
	return set, nil
}

// Processed returns the lowercased stems of the JSON artifacts in dir.
func Processed(dir string) (map[string]bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("reading artifact directory %s: %w", dir, err)
	}

	set := make(map[string]bool)
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		set[strings.ToLower(stem(e.Name()))] = true
	}
	return set, nil
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Run reviews every eligible, unprocessed PDF in cfg.PDFDir in filename
// order. The first per-paper error stops the batch; records already
// written stay in place, so a rerun resumes after the last artifact.
func Run(ctx context.Context, model llm.Completer, extractor pdftext.Extractor, cfg types.ReviewConfig, w io.Writer) (BatchSummary, error) {
	var summary BatchSummary

	names, err := pdftext.List(cfg.PDFDir)
	if err != nil {
		return summary, err
	}

	var eligible map[string]bool
	if cfg.ScreenedCSV != "" {
		eligible, err = Eligible(cfg.ScreenedCSV, cfg.ScreenedDelimiter)
		if err != nil {
			return summary, err
		}
	}

	processed, err := Processed(cfg.JSONDir)
	if err != nil {
		return summary, err
	}

	acc, err := LoadAccumulator(cfg.OutputCSV)
	if err != nil {
		return summary, err
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if eligible != nil && !eligible[strings.ToLower(name)] {
			continue
		}
		if processed[strings.ToLower(stem(name))] {
			fmt.Fprintf(w, "skipped %s\n", name)
			summary.Skipped++
			continue
		}

		fmt.Fprintf(w, "reviewing %s\n", name)

		next, rec, err := reviewPaper(ctx, model, extractor, cfg, acc, name)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			return summary, fmt.Errorf("reviewing %s: %w", name, err)
		}
		acc = next

		fmt.Fprintf(w, "reviewed %s: %s\n", name, rec[ColTitle])
		summary.Reviewed++
	}

	fmt.Fprintf(w, "\nBatch summary: %d reviewed, %d skipped, %d failed (total: %d)\n",
		summary.Reviewed, summary.Skipped, summary.Failed, summary.Total())
	return summary, nil
}

// reviewPaper runs one paper through extract, prompt, model, parse, and
// persist, and returns the advanced accumulator.
func reviewPaper(ctx context.Context, model llm.Completer, extractor pdftext.Extractor, cfg types.ReviewConfig, acc Accumulator, name string) (Accumulator, schema.Record, error) {
	path := filepath.Join(cfg.PDFDir, name)

	text, err := extractor.Extract(path, cfg.MaxChars)
	if err != nil {
		return acc, nil, err
	}

	response, err := model.Complete(ctx, llm.Request{
		System:      SystemPrompt,
		Prompt:      acc.Prompt(text),
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		return acc, nil, err
	}

	res := ParseResponse(response)
	if missing := res.MissingRequired(); len(missing) > 0 {
		log.Warn().Str("pdf", name).Strs("fields", missing).Msg("response is missing required fields")
	} else if !res.Complete() {
		log.Debug().Str("pdf", name).Strs("fields", res.Missing).Msg("response is missing optional fields")
	}

	if err := table.AppendCSV(cfg.OutputCSV, table.Comma, Schema.Columns(), Schema.Row(res.Record)); err != nil {
		return acc, nil, err
	}

	artifact := types.Artifact{
		PDF:      name,
		Prompt:   acc.Prompt(""),
		Response: response,
		Parsed:   res.Record,
		Missing:  res.Missing,
	}
	if err := WriteArtifact(filepath.Join(cfg.JSONDir, stem(name)+".json"), artifact); err != nil {
		return acc, nil, err
	}

	return acc.Advance(res.Record), res.Record, nil
}

// WriteArtifact writes a as indented JSON, leaving non-ASCII text unescaped.
func WriteArtifact(path string, a types.Artifact) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating artifact %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("writing artifact %s: %w", path, err)
	}
	return f.Close()
}

// ReadArtifact loads a JSON artifact.
func ReadArtifact(path string) (types.Artifact, error) {
	var a types.Artifact
	data, err := os.ReadFile(path)
	if err != nil {
		return a, fmt.Errorf("reading artifact %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return a, fmt.Errorf("parsing artifact %s: %w", path, err)
	}
	return a, nil
}
