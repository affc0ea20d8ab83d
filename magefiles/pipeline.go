//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

func litreview(args ...string) error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Screen asks the model to screen every PDF in data/articles.
func Screen() error {
	return litreview("screen")
}

// Review runs the detailed extraction pass over the papers kept at screening.
func Review() error {
	return litreview("review")
}

// Debug runs screen and review against the canned responses in data/debugging.
func Debug() error {
	if err := litreview("screen", "--debug"); err != nil {
		return err
	}
	return litreview("review", "--debug")
}

// Convert rewrites data/xlsx/final_review.xlsx as the report CSV.
func Convert() error {
	return litreview("convert-xlsx")
}

// Report renders the summary and figures.
func Report() error {
	return litreview("report")
}

// Index ingests the review artifacts into the SQLite index.
func Index() error {
	return litreview("index", "store")
}

// Postprocess converts the hand-edited review workbook, renders the report
// and refreshes the index.
func Postprocess() {
	mg.SerialDeps(Convert, Report, Index)
}
