// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

const exportLimit = 100000

// Export is the document written by ExportYAML and ExportJSON.
type Export struct {
	Studies     []Entry      `json:"studies" yaml:"studies"`
	Reflections []Reflection `json:"reflections" yaml:"reflections"`
}

// ExportYAML writes the matching studies and the memo history to
// indexDir/export.yaml and returns the path.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) (string, error) {
	doc, err := s.export(ctx, opts)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.indexDir, "export.yaml")
	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the same document as ExportYAML to indexDir/export.json.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) (string, error) {
	doc, err := s.export(ctx, opts)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.indexDir, "export.json")
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

func (s *Store) export(ctx context.Context, opts QueryOptions) (Export, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = exportLimit
	}
	studies, err := s.Search(ctx, opts)
	if err != nil {
		return Export{}, fmt.Errorf("querying for export: %w", err)
	}
	reflections, err := s.Reflections(ctx)
	if err != nil {
		return Export{}, err
	}
	return Export{Studies: studies, Reflections: reflections}, nil
}
