// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package screen runs the coarse screening pass: a short excerpt of each
// paper is judged against the inclusion rubric and the decisions are
// written to a CSV for human checking.
package screen

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/litreview/internal/llm"
	"github.com/pdiddy/litreview/internal/pdftext"
	"github.com/pdiddy/litreview/internal/schema"
	"github.com/pdiddy/litreview/internal/table"
	"github.com/pdiddy/litreview/pkg/types"
)

// Default settings applied by ApplyDefaults.
const (
	DefaultModel        = "gpt-3.5-turbo"
	DefaultTemperature  = 0.2
	DefaultPageBudget   = 3000
	DefaultExcerptLimit = 6000
)

// SystemPrompt is the inclusion rubric sent as the system role.
const SystemPrompt = "You are assisting with a systematic review titled " +
	"'Theory of Mind in Large Language Models: A Systematic Review of Evaluation Paradigms and Cognitive Claims'.\n\n" +
	"Your task is to assess whether a given scientific paper is suitable for inclusion in this review. " +
	"The review only includes *empirical studies* that evaluate Theory of Mind (ToM) abilities in Large Language Models (LLMs).\n\n" +
	"To be included, the study must:\n" +
	"- Be an empirical paper published in a journal, conference, or on a preprint server (e.g., arXiv)\n" +
	"- Evaluate general-purpose LLMs (e.g., GPT-3.5, GPT-4, PaLM), not only fine-tuned or specialized models\n" +
	"- Use clearly defined ToM tasks (e.g., false-belief, recursive belief modeling, second-order inference)\n" +
	"- Provide quantitative performance outcomes (e.g., accuracy, pass/fail rate)\n" +
	"- Go beyond purely narrative comprehension or vague social reasoning claims\n" +
	"- Not be a thesis (e.g., bachelor's or master's thesis) or unpublished coursework\n" +
	"- Not be purely conceptual, benchmark-proposing, or theoretical\n\n" +
	"Important: You may only see part of the paper (e.g., abstract or early sections). " +
	"If the paper clearly describes an empirical setup and is likely to include quantitative results later, mark it as 'Include: yes'. " +
	"From the given text (typically an abstract or full-text excerpt), extract the following fields:\n" +
	"- Title: e.g., Emergent Theory of Mind in Large Language Models\n" +
	"- Authors: e.g., Terentev et al.\n" +
	"- Include: write 'yes' if the study meets all the criteria or likely does; write 'no' only if clearly not suitable\n" +
	"- Reason: short explanation (only if excluded; e.g., no LLMs tested, vague ToM concept, thesis, no results)\n" +
	"- Task type: e.g., false belief, recursive belief modeling, narrative inference, interaction-based\n" +
	"- Model type: e.g., GPT-3.5, GPT-4, PaLM, custom fine-tuned model\n" +
	"- Notes: any additional relevant details (e.g., task complexity, human baseline, prompt sensitivity)\n\n" +
	"Return only clean, labeled lines for each field. If a field is not available, write 'Not reported'. " +
	"Always include ':' between the field name and the value (e.g., 'Title: Example Title')."

// Schema matches loosely labeled lines ("Task type:", "Model type:") by
// keyword. Token order matters: "include" is tested before "task" and "model".
var Schema = schema.Schema{
	Name: "screening",
	Fields: []schema.Field{
		{Name: "Title", Token: "title", Required: true},
		{Name: "Authors", Token: "author"},
		{Name: "Include", Token: "include", Required: true},
		{Name: "Reason", Token: "reason"},
		{Name: "TaskType", Token: "task"},
		{Name: "ModelType", Token: "model"},
		{Name: "Notes", Token: "notes"},
	},
	Match: schema.MatchContains,
}

// BatchSummary holds counts from a screening run.
type BatchSummary struct {
	Screened int
	Included int
	Failed   int
}

// Total returns the number of papers attempted.
func (s BatchSummary) Total() int {
	return s.Screened + s.Failed
}

// HasFailures reports whether any paper failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ApplyDefaults fills zero-valued settings. Temperature is left alone since
// zero is a valid sampling setting; callers start from DefaultTemperature.
func ApplyDefaults(cfg *types.ScreeningConfig) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.PageBudget == 0 {
		cfg.PageBudget = DefaultPageBudget
	}
	if cfg.ExcerptLimit == 0 {
		cfg.ExcerptLimit = DefaultExcerptLimit
	}
}

// DecisionID returns the first 8 hex characters of MD5(name).
func DecisionID(name string) string {
	sum := md5.Sum([]byte(name))
	return hex.EncodeToString(sum[:])[:8]
}

// Decide parses a screening response into a decision for the named PDF.
func Decide(name, response string) (types.ScreeningDecision, schema.Result) {
	res := schema.Parse(Schema, response)
	r := res.Record
	return types.ScreeningDecision{
		ID:        DecisionID(name),
		PDF:       name,
		Title:     r["Title"],
		Authors:   r["Authors"],
		Include:   r["Include"],
		Reason:    r["Reason"],
		TaskType:  r["TaskType"],
		ModelType: r["ModelType"],
		Notes:     r["Notes"],
	}, res
}

// Paper screens a single PDF.
func Paper(ctx context.Context, model llm.Completer, extractor pdftext.Extractor, cfg types.ScreeningConfig, dir, name string) (types.ScreeningDecision, error) {
	text, err := extractor.Extract(filepath.Join(dir, name), cfg.PageBudget)
	if err != nil {
		return types.ScreeningDecision{}, err
	}

	response, err := model.Complete(ctx, llm.Request{
		System:      SystemPrompt,
		Prompt:      pdftext.Truncate(text, cfg.ExcerptLimit),
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		return types.ScreeningDecision{}, err
	}

	d, res := Decide(name, response)
	if missing := res.MissingRequired(); len(missing) > 0 {
		log.Warn().Str("pdf", name).Strs("fields", missing).Msg("screening response is missing fields")
	}
	return d, nil
}

// Run screens every PDF in cfg.PDFDir in filename order. A failure on one
// paper is reported and the paper left out; the rest still run. The
// successful decisions replace cfg.OutputCSV.
func Run(ctx context.Context, model llm.Completer, extractor pdftext.Extractor, cfg types.ScreeningConfig, w io.Writer) (BatchSummary, []types.ScreeningDecision, error) {
	var summary BatchSummary

	names, err := pdftext.List(cfg.PDFDir)
	if err != nil {
		return summary, nil, err
	}

	var decisions []types.ScreeningDecision
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return summary, decisions, err
		}

		path := filepath.Join(cfg.PDFDir, name)
		if n, err := pdftext.PageCount(path); err == nil {
			fmt.Fprintf(w, "screening %s (%d pages)\n", name, n)
		} else {
			log.Debug().Str("pdf", name).Err(err).Msg("page count unavailable")
			fmt.Fprintf(w, "screening %s\n", name)
		}

		d, err := Paper(ctx, model, extractor, cfg, cfg.PDFDir, name)
		if err != nil {
			log.Error().Str("pdf", name).Err(err).Msg("screening failed")
			fmt.Fprintf(w, "failed  %s: %v\n", name, err)
			summary.Failed++
			continue
		}

		decisions = append(decisions, d)
		summary.Screened++
		if table.IsYes(d.Include) {
			summary.Included++
		}
	}

	rows := make([][]string, len(decisions))
	for i, d := range decisions {
		rows[i] = d.Row()
	}
	if err := table.WriteCSV(cfg.OutputCSV, table.Comma, types.ScreeningColumns, rows); err != nil {
		return summary, decisions, err
	}

	fmt.Fprintf(w, "wrote %d decisions to %s\n", len(decisions), cfg.OutputCSV)
	fmt.Fprintf(w, "\nBatch summary: %d screened, %d included, %d failed (total: %d)\n",
		summary.Screened, summary.Included, summary.Failed, summary.Total())
	return summary, decisions, nil
}
