// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext reads the text layer of PDF papers.
package pdftext

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Extractor returns the text of a PDF. Passes depend on this interface so
// tests can substitute canned text for real files.
type Extractor interface {
	// Extract reads pages in order and stops once maxChars characters have
	// been collected. maxChars <= 0 reads the whole document.
	Extract(path string, maxChars int) (string, error)
}

// Native extracts text in-process with github.com/ledongthuc/pdf.
type Native struct{}

// Extract concatenates page text with newlines. The page that crosses the
// budget is kept whole; no further pages are read. The result is trimmed.
func (Native) Extract(path string, maxChars int) (text string, err error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	// The reader panics on some malformed content streams.
	defer func() {
		if p := recover(); p != nil {
			text, err = "", fmt.Errorf("reading PDF %s: %v", path, p)
		}
	}()

	var pages []string
	total := 0
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("reading page %d of %s: %w", i, path, err)
		}
		pages = append(pages, content)
		total += len([]rune(content))
		if maxChars > 0 && total >= maxChars {
			break
		}
	}

	return strings.TrimSpace(strings.Join(pages, "\n")), nil
}

// PageCount validates the file in relaxed mode and returns its page count.
func PageCount(path string) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(path, conf); err != nil {
		return 0, fmt.Errorf("validating PDF %s: %w", path, err)
	}
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("counting pages of %s: %w", path, err)
	}
	return n, nil
}

// Truncate returns at most limit runes of s. limit <= 0 returns s unchanged.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// List returns the names of the *.pdf files in dir, sorted.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading PDF directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
