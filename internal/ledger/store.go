// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger indexes review artifacts in SQLite so reviewed studies and
// the history of the reflection memo can be searched and exported.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/pdiddy/litreview/pkg/types"
)

const (
	dbFile = "review.db"

	defaultMaxResults = 20

	// modTimeLayout is fixed-width so stored times sort lexically.
	modTimeLayout = "2006-01-02T15:04:05.000000000Z"
)

// Store manages the review index database.
type Store struct {
	db         *sql.DB
	jsonDir    string
	indexDir   string
	maxResults int

	// fts is false when the SQLite build lacks FTS5; search then falls
	// back to substring matching.
	fts bool
}

// NewStore opens or creates indexDir/review.db and its schema.
func NewStore(cfg types.LedgerConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{
		db:         db,
		jsonDir:    cfg.JSONDir,
		indexDir:   cfg.IndexDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			stem TEXT NOT NULL UNIQUE,
			pdf TEXT NOT NULL,
			record_id TEXT,
			title TEXT,
			authors TEXT,
			year TEXT,
			models TEXT,
			task_types TEXT,
			summary TEXT,
			findings TEXT,
			justification TEXT,
			included INTEGER NOT NULL DEFAULT 0,
			reflection TEXT,
			parsed TEXT,
			missing TEXT,
			artifact_mod_time TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_included ON records(included)`,
		`CREATE TABLE IF NOT EXISTS indexing_status (
			stem TEXT PRIMARY KEY,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='records_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}
	if ftsExists > 0 {
		s.fts = true
		return nil
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE records_fts USING fts5(
			title, models, task_types, summary, findings, justification,
			content=records, content_rowid=rowid)`,
		`CREATE TRIGGER records_ai AFTER INSERT ON records BEGIN
			INSERT INTO records_fts(rowid, title, models, task_types, summary, findings, justification)
			VALUES (new.rowid, new.title, new.models, new.task_types, new.summary, new.findings, new.justification);
		END`,
		`CREATE TRIGGER records_ad AFTER DELETE ON records BEGIN
			INSERT INTO records_fts(records_fts, rowid, title, models, task_types, summary, findings, justification)
			VALUES ('delete', old.rowid, old.title, old.models, old.task_types, old.summary, old.findings, old.justification);
		END`,
		`CREATE TRIGGER records_au AFTER UPDATE ON records BEGIN
			INSERT INTO records_fts(records_fts, rowid, title, models, task_types, summary, findings, justification)
			VALUES ('delete', old.rowid, old.title, old.models, old.task_types, old.summary, old.findings, old.justification);
			INSERT INTO records_fts(rowid, title, models, task_types, summary, findings, justification)
			VALUES (new.rowid, new.title, new.models, new.task_types, new.summary, new.findings, new.justification);
		END`,
	}

	if _, err := s.db.Exec(ftsStatements[0]); err != nil {
		if strings.Contains(err.Error(), "no such module") {
			log.Debug().Err(err).Msg("FTS5 unavailable; search uses substring matching")
			return nil
		}
		return fmt.Errorf("creating FTS table: %w", err)
	}
	for _, stmt := range ftsStatements[1:] {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS triggers: %w", err)
		}
	}
	s.fts = true
	return nil
}

// IngestSummary holds counts from an indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of artifacts considered.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest reads the JSON artifacts in the artifact directory and indexes new
// or modified ones. Unchanged artifacts (same mod time) are skipped. After
// any change the full index is exported to export.yaml.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(s.jsonDir)
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading artifact directory %s: %w", s.jsonDir, err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", stem, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format(modTimeLayout)

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT file_mod_time FROM indexing_status WHERE stem = ?`, stem,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", stem)
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		data, err := os.ReadFile(filepath.Join(s.jsonDir, entry.Name()))
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", stem, err)
			summary.Failed++
			continue
		}

		var a types.Artifact
		if err := json.Unmarshal(data, &a); err != nil {
			fmt.Fprintf(w, "failed  %s: parse error: %v\n", stem, err)
			summary.Failed++
			continue
		}

		if err := s.ingestArtifact(ctx, stem, a, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", stem, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s\n", stem)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s\n", stem)
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if _, err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			log.Warn().Err(err).Msg("export.yaml write failed")
		}
	}

	return summary, nil
}

func (s *Store) ingestArtifact(ctx context.Context, stem string, a types.Artifact, modTime string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	p := a.Parsed
	parsedJSON, _ := json.Marshal(p)
	missingJSON, _ := json.Marshal(a.Missing)

	included := 0
	if strings.EqualFold(p["AddToFinalSet"], "yes") {
		included = 1
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO records (stem, pdf, record_id, title, authors, year, models, task_types,
			summary, findings, justification, included, reflection, parsed, missing, artifact_mod_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(stem) DO UPDATE SET
			pdf=excluded.pdf, record_id=excluded.record_id, title=excluded.title,
			authors=excluded.authors, year=excluded.year, models=excluded.models,
			task_types=excluded.task_types, summary=excluded.summary, findings=excluded.findings,
			justification=excluded.justification, included=excluded.included,
			reflection=excluded.reflection, parsed=excluded.parsed, missing=excluded.missing,
			artifact_mod_time=excluded.artifact_mod_time`,
		stem, a.PDF, p["ID"], p["Title"], p["Authors"], p["Year"], p["Models"], p["TaskTypes"],
		p["Summary"], p["Findings"], p["Justification"], included, p["GlobalReflection"],
		string(parsedJSON), string(missingJSON), modTime,
	)
	if err != nil {
		return fmt.Errorf("upserting record: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO indexing_status (stem, file_mod_time) VALUES (?, ?)
		 ON CONFLICT(stem) DO UPDATE SET file_mod_time=excluded.file_mod_time`,
		stem, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating indexing status: %w", err)
	}

	return tx.Commit()
}
