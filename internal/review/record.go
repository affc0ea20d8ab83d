// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"github.com/google/uuid"

	"github.com/pdiddy/litreview/internal/schema"
	"github.com/pdiddy/litreview/internal/table"
	"github.com/pdiddy/litreview/pkg/types"
)

// Column names referenced outside the schema definition.
const (
	ColID               = "ID"
	ColTitle            = "Title"
	ColModels           = "Models"
	ColTaskTypes        = "TaskTypes"
	ColMetrics          = "QuantitativeMetrics"
	ColAddToFinalSet    = "AddToFinalSet"
	ColJustification    = "Justification"
	ColGlobalReflection = "GlobalReflection"
)

// Schema is the ordered field list of the review CSV.
var Schema = schema.Schema{
	Name: "review",
	Fields: []schema.Field{
		{Name: ColID, Generated: true},
		{Name: ColTitle, Required: true},
		{Name: "Authors", Required: true},
		{Name: "Year"},
		{Name: "PublicationType"},
		{Name: ColModels},
		{Name: "ModelAccessDetails"},
		{Name: "ComparedToHumans"},
		{Name: ColTaskTypes},
		{Name: "TaskOrder"},
		{Name: "ToMTaskDescriptions"},
		{Name: ColMetrics},
		{Name: "SampleSize"},
		{Name: "StatisticalSignificance"},
		{Name: "Summary"},
		{Name: "Findings"},
		{Name: ColAddToFinalSet, Required: true},
		{Name: ColJustification, Required: true},
		{Name: ColGlobalReflection},
	},
	Match:        schema.MatchPrefix,
	Continuation: true,
}

// ParseResponse parses a model response against Schema and assigns a fresh
// short identifier, replacing any ID the model emitted.
func ParseResponse(text string) schema.Result {
	res := schema.Parse(Schema, text)
	res.Record[ColID] = newID()
	return res
}

func newID() string {
	return uuid.NewString()[:8]
}

// Included reports whether the record was added to the final set.
func Included(r schema.Record) bool {
	return table.IsYes(r[ColAddToFinalSet])
}

// Summarize extracts the fields forwarded into later prompts.
func Summarize(r schema.Record) types.StudySummary {
	return types.StudySummary{
		Title:         r[ColTitle],
		Models:        r[ColModels],
		TaskTypes:     r[ColTaskTypes],
		Metrics:       r[ColMetrics],
		Justification: r[ColJustification],
	}
}
