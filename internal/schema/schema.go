// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schema turns line-oriented "Key: value" model output into records
// constrained by an explicit, ordered field list.
package schema

import "strings"

// MatchMode selects how a line is recognized as opening a field.
type MatchMode int

const (
	// MatchPrefix opens a field when the line starts with "<Field>:"
	// (case-insensitive).
	MatchPrefix MatchMode = iota

	// MatchContains opens a field when the text before the first colon
	// contains the field's token (case-insensitive). Fields are tried in
	// schema order and the first hit wins.
	MatchContains
)

// Field is one named text field of a schema.
type Field struct {
	// Name is the column name, also the key emitted by the model.
	Name string

	// Token is the lowercase substring used by MatchContains. Empty
	// defaults to the lowercased Name.
	Token string

	// Required fields are reported by Result.MissingRequired.
	Required bool

	// Generated fields are filled in after parsing and never count as missing.
	Generated bool
}

func (f Field) token() string {
	if f.Token != "" {
		return f.Token
	}
	return strings.ToLower(f.Name)
}

// Schema is an ordered set of string fields plus the parsing policy.
type Schema struct {
	Name   string
	Fields []Field
	Match  MatchMode

	// Continuation appends unrecognized lines to the currently open field.
	Continuation bool
}

// Columns returns the field names in schema order.
func (s Schema) Columns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.Name
	}
	return cols
}

// Has reports whether name is a field of the schema.
func (s Schema) Has(name string) bool {
	for _, f := range s.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Record maps field names to their text values.
type Record map[string]string

// NewRecord returns a record with every schema field present and empty.
func (s Schema) NewRecord() Record {
	r := make(Record, len(s.Fields))
	for _, f := range s.Fields {
		r[f.Name] = ""
	}
	return r
}

// Row returns the record's values in schema order.
func (s Schema) Row(r Record) []string {
	row := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		row[i] = r[f.Name]
	}
	return row
}

// FromRow builds a record from a header-keyed row, keeping only schema
// fields. Columns absent from the row stay empty.
func (s Schema) FromRow(row map[string]string) Record {
	r := s.NewRecord()
	for _, f := range s.Fields {
		if v, ok := row[f.Name]; ok {
			r[f.Name] = v
		}
	}
	return r
}
