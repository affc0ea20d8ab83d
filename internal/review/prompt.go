// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/litreview/pkg/types"
)

// SystemPrompt is the fixed role instruction sent with every review request.
const SystemPrompt = "You are an expert assistant helping build a systematic review dataset for meta-analysis."

const (
	noPriorStudies    = "No prior included studies."
	noPriorReflection = "No prior reflection."

	// justificationPreview is how much of a prior justification is forwarded.
	justificationPreview = 200
)

var promptTemplate = template.Must(template.New("review").Parse(`{{.Prior}}

Previous GlobalReflection:
{{.Reflection}}

Full Paper Text:
{{.Text}}

Now extract and fill the following fields (in plain text, no markdown). Please normalize the names for Tasks and Models for consistency:

ID:
Title:
Authors:
Year:
PublicationType: (e.g., journal, preprint, conference, thesis)
Models:
ModelAccessDetails: (e.g., API use, fine-tuned, open-source)
ComparedToHumans: yes / no / not reported
TaskTypes:
TaskOrder: (e.g., first-order, second-order, mixed)
ToMTaskDescriptions:
QuantitativeMetrics: (e.g., accuracy, pass rate, p-values. Extract values explicitly in structured form. If multiple p-values or results are present, list them all in a structured JSON-like format, such as:
  {
    "model": "GPT-3",
    "task": "False Belief",
    "ToM-order": "2",
    "accuracy": 0.82,
    "pass_rate": "85%",
    "p_values": "p=0.03"
  }
These values will be used in forest and funnel plots. You may adapt this format if it improves clarity or completeness, for instance if there are other important values such as t-values, different effect sizes or confidence intervals, but if you do so, document the change in GlobalReflection so future iterations know which format is being used and why.)
SampleSize:
StatisticalSignificance: yes / no / not reported

Summary:
(3-5 sentence summary of the study's goal, methods, and conclusions)

Findings:
(Summarize the most important experimental findings, clearly and concisely)

AddToFinalSet: yes / no

Justification:
(2-4 sentences explaining the inclusion/exclusion decision, especially in relation to existing included work)

GlobalReflection:
(This is an evolving, cumulative reflection across all included papers. Pass on the reflection you received and add to it when you consider this useful for the review process. Use this field to pass on learned generalizations, standardizations, or coding heuristics to future iterations, e.g. how to interpret recurring task types, model labels, or inclusion patterns. It should provide guidance, not summary, like a memory thread between reasoning agents. Do not describe particular studies; include only knowledge that matters for reviewing the following papers.)
`))

// BuildPrompt renders the extraction prompt. It is pure: the same inputs
// always produce the same text.
func BuildPrompt(prior, reflection, paperText string) string {
	var buf bytes.Buffer
	data := struct{ Prior, Reflection, Text string }{prior, reflection, paperText}
	if err := promptTemplate.Execute(&buf, data); err != nil {
		// The template only reads string fields; execution cannot fail.
		panic(fmt.Sprintf("rendering review prompt: %v", err))
	}
	return buf.String()
}

// SummarizeStudies renders the included studies forwarded into the next prompt.
func SummarizeStudies(studies []types.StudySummary) string {
	if len(studies) == 0 {
		return noPriorStudies
	}

	var sb strings.Builder
	sb.WriteString("Previously Included Studies:")
	for _, s := range studies {
		fmt.Fprintf(&sb, "\n- Title: %s\n  Models: %s\n  TaskTypes: %s\n  Metrics: %s\n  Justification: %s...",
			s.Title, s.Models, s.TaskTypes, s.Metrics, preview(s.Justification, justificationPreview))
	}
	return sb.String()
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
