// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package schema

import "strings"

// Result is a parsed record plus the fields that could not be located.
type Result struct {
	Record Record

	// Missing lists non-generated fields never opened, in schema order.
	Missing []string

	required map[string]bool
}

// MissingRequired returns the subset of Missing marked Required.
func (r Result) MissingRequired() []string {
	var out []string
	for _, name := range r.Missing {
		if r.required[name] {
			out = append(out, name)
		}
	}
	return out
}

// Complete reports whether every non-generated field was located.
func (r Result) Complete() bool {
	return len(r.Missing) == 0
}

// Parse scans text line by line and fills a record for s. Text before the
// first recognized field is dropped. Values are stored as opaque text; no
// shape validation happens here. A field name that appears at the start of
// a prose line will be taken as a field.
func Parse(s Schema, text string) Result {
	values := make(map[string][]string, len(s.Fields))
	seen := make(map[string]bool, len(s.Fields))
	current := ""

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")

		name, value, ok := s.match(line)
		if ok {
			current = name
			seen[name] = true
			values[name] = []string{value}
			continue
		}
		if s.Continuation && current != "" {
			values[current] = append(values[current], line)
		}
	}

	res := Result{
		Record:   s.NewRecord(),
		required: make(map[string]bool),
	}
	for _, f := range s.Fields {
		if f.Required {
			res.required[f.Name] = true
		}
		if lines, ok := values[f.Name]; ok {
			res.Record[f.Name] = strings.TrimSpace(strings.Join(lines, "\n"))
		}
		if !seen[f.Name] && !f.Generated {
			res.Missing = append(res.Missing, f.Name)
		}
	}
	return res
}

// match reports which field, if any, the line opens and the value after the colon.
func (s Schema) match(line string) (string, string, bool) {
	switch s.Match {
	case MatchContains:
		key, value, found := strings.Cut(line, ":")
		if !found {
			return "", "", false
		}
		key = strings.ToLower(strings.TrimSpace(key))
		for _, f := range s.Fields {
			if strings.Contains(key, f.token()) {
				return f.Name, strings.TrimSpace(value), true
			}
		}
	default:
		for _, f := range s.Fields {
			prefix := f.Name + ":"
			if len(line) >= len(prefix) && strings.EqualFold(line[:len(prefix)], prefix) {
				return f.Name, strings.TrimSpace(line[len(prefix):]), true
			}
		}
	}
	return "", "", false
}
