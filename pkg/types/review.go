// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the litreview pipeline:
// screening decisions, review artifacts, and per-pass configuration.
package types

// ScreeningDecision is one row of the screening CSV, keyed by source filename.
type ScreeningDecision struct {
	// ID is the first 8 hex characters of MD5(PDF).
	ID string `json:"id" yaml:"id"`

	// PDF is the source filename (e.g. "smith2023.pdf").
	PDF string `json:"pdf" yaml:"pdf"`

	Title     string `json:"title" yaml:"title"`
	Authors   string `json:"authors" yaml:"authors"`
	Include   string `json:"include" yaml:"include"`
	Reason    string `json:"reason" yaml:"reason"`
	TaskType  string `json:"task_type" yaml:"task_type"`
	ModelType string `json:"model_type" yaml:"model_type"`
	Notes     string `json:"notes" yaml:"notes"`
}

// ScreeningColumns is the header of the screening CSV.
var ScreeningColumns = []string{"ID", "PDF", "Title", "Authors", "Include", "Reason", "TaskType", "ModelType", "Notes"}

// Row returns the decision's values in ScreeningColumns order.
func (d ScreeningDecision) Row() []string {
	return []string{d.ID, d.PDF, d.Title, d.Authors, d.Include, d.Reason, d.TaskType, d.ModelType, d.Notes}
}

// Artifact is the per-paper JSON record of a review call. Prompt is
// regenerated with an empty paper body so the file stays small and
// the accumulated context stays inspectable.
type Artifact struct {
	PDF      string            `json:"pdf" yaml:"pdf"`
	Prompt   string            `json:"prompt" yaml:"prompt"`
	Response string            `json:"response" yaml:"response"`
	Parsed   map[string]string `json:"parsed" yaml:"parsed"`

	// Missing lists the schema fields the response did not contain.
	Missing []string `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// StudySummary is the slice of an included record forwarded into later prompts.
type StudySummary struct {
	Title         string `json:"title" yaml:"title"`
	Models        string `json:"models" yaml:"models"`
	TaskTypes     string `json:"task_types" yaml:"task_types"`
	Metrics       string `json:"metrics" yaml:"metrics"`
	Justification string `json:"justification" yaml:"justification"`
}
