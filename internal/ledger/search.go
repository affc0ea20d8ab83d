// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// QueryOptions holds parameters for index queries.
type QueryOptions struct {
	// Query is the full-text search string over title, models, task types,
	// summary, findings and justification. Every whitespace-separated term
	// must match.
	Query string

	// Included restricts results to studies added to the final set.
	Included bool

	// Model filters by a case-insensitive substring of Models.
	Model string

	// Task filters by a case-insensitive substring of TaskTypes.
	Task string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// Entry is one indexed study.
type Entry struct {
	PDF           string   `json:"pdf" yaml:"pdf"`
	ID            string   `json:"id" yaml:"id"`
	Title         string   `json:"title" yaml:"title"`
	Authors       string   `json:"authors" yaml:"authors"`
	Year          string   `json:"year" yaml:"year"`
	Models        string   `json:"models" yaml:"models"`
	TaskTypes     string   `json:"task_types" yaml:"task_types"`
	Summary       string   `json:"summary" yaml:"summary"`
	Findings      string   `json:"findings" yaml:"findings"`
	Justification string   `json:"justification" yaml:"justification"`
	Included      bool     `json:"included" yaml:"included"`
	Missing       []string `json:"missing,omitempty" yaml:"missing,omitempty"`
}

const entryColumns = `r.pdf, r.record_id, r.title, r.authors, r.year, r.models, r.task_types,
	r.summary, r.findings, r.justification, r.included, r.missing`

// Search queries the index. Full-text queries are ranked by relevance;
// filter-only queries are ordered by artifact name.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		query  = strings.TrimSpace(opts.Query)
		useFTS = query != "" && s.fts
	)

	switch {
	case useFTS:
		qb.WriteString(`SELECT ` + entryColumns + `
			FROM records_fts
			JOIN records r ON r.rowid = records_fts.rowid
			WHERE records_fts MATCH ?`)
		args = append(args, ftsQuery(query))
	case query != "":
		qb.WriteString(`SELECT ` + entryColumns + `
			FROM records r
			WHERE 1=1`)
		for _, term := range strings.Fields(query) {
			like := "%" + term + "%"
			qb.WriteString(` AND (r.title LIKE ? OR r.models LIKE ? OR r.task_types LIKE ?
				OR r.summary LIKE ? OR r.findings LIKE ? OR r.justification LIKE ?)`)
			args = append(args, like, like, like, like, like, like)
		}
	default:
		qb.WriteString(`SELECT ` + entryColumns + `
			FROM records r
			WHERE 1=1`)
	}

	if opts.Included {
		qb.WriteString(` AND r.included = 1`)
	}
	if opts.Model != "" {
		qb.WriteString(` AND r.models LIKE ?`)
		args = append(args, "%"+opts.Model+"%")
	}
	if opts.Task != "" {
		qb.WriteString(` AND r.task_types LIKE ?`)
		args = append(args, "%"+opts.Task+"%")
	}

	if useFTS {
		qb.WriteString(` ORDER BY records_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY r.stem`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying review index: %w", err)
	}
	defer rows.Close()

	var results []Entry
	for rows.Next() {
		var (
			e           Entry
			included    int
			missingJSON string
		)
		if err := rows.Scan(
			&e.PDF, &e.ID, &e.Title, &e.Authors, &e.Year, &e.Models, &e.TaskTypes,
			&e.Summary, &e.Findings, &e.Justification, &included, &missingJSON,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.Included = included == 1
		if missingJSON != "" {
			json.Unmarshal([]byte(missingJSON), &e.Missing)
		}
		results = append(results, e)
	}

	return results, rows.Err()
}

// ftsQuery quotes each term as an FTS5 string so model names such as
// GPT-3.5 are matched as phrases instead of parsed as query syntax.
func ftsQuery(q string) string {
	terms := strings.Fields(q)
	for i, term := range terms {
		terms[i] = `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}

// Reflection is the memo carried out of one reviewed paper.
type Reflection struct {
	PDF  string `json:"pdf" yaml:"pdf"`
	Text string `json:"text" yaml:"text"`
}

// Reflections returns the non-empty memos in the order their artifacts
// were written.
func (s *Store) Reflections(ctx context.Context) ([]Reflection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pdf, reflection FROM records
		 WHERE reflection IS NOT NULL AND trim(reflection) != ''
		 ORDER BY artifact_mod_time, stem`)
	if err != nil {
		return nil, fmt.Errorf("querying reflections: %w", err)
	}
	defer rows.Close()

	var out []Reflection
	for rows.Next() {
		var r Reflection
		if err := rows.Scan(&r.PDF, &r.Text); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
