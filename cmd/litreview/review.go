// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/litreview/internal/llm"
	"github.com/pdiddy/litreview/internal/pdftext"
	"github.com/pdiddy/litreview/internal/review"
	"github.com/pdiddy/litreview/pkg/types"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Extract structured records from the papers kept at screening",
	Long: `Review sends each eligible paper to the model together with the studies
included so far and the running reflection memo. Every record is appended
to the review CSV and a JSON artifact is written per paper, so a rerun
skips papers that were already reviewed. The first failure stops the batch.

Eligibility comes from the human-checked screening CSV (Include = yes).
Pass --screened "" to review every PDF in the directory.`,
	RunE: runReview,
}

func runReview(cmd *cobra.Command, args []string) error {
	ai, err := aiConfig("review")
	if err != nil {
		return err
	}

	cfg := types.ReviewConfig{
		AIConfig:    ai,
		PDFDir:      dataPath(viper.GetString("review.pdf_dir")),
		OutputCSV:   dataPath(viper.GetString("review.output")),
		ScreenedCSV: dataPath(viper.GetString("review.screened")),
		JSONDir:     dataPath(viper.GetString("review.json_dir")),
		MaxChars:    viper.GetInt("review.max_chars"),
	}
	review.ApplyDefaults(&cfg)

	model, err := llm.New(cfg.AIConfig)
	if err != nil {
		return err
	}

	_, err = review.Run(cmd.Context(), model, pdftext.Native{}, cfg, os.Stdout)
	return err
}

func init() {
	reviewCmd.Flags().String("pdf-dir", "data/articles", "directory of candidate PDFs")
	reviewCmd.Flags().String("output", "data/csv/final_review.csv", "review CSV to append to")
	reviewCmd.Flags().String("screened", "data/csv/reviewed_papers_checked.csv", "human-checked screening CSV (semicolon-separated)")
	reviewCmd.Flags().String("json-dir", "data/json", "directory for per-paper JSON artifacts")
	reviewCmd.Flags().Int("max-chars", 0, "truncate paper text to this many characters (0 = whole paper)")
	reviewCmd.Flags().String("model", review.DefaultModel, "model identifier")
	reviewCmd.Flags().Float64("temperature", review.DefaultTemperature, "sampling temperature")
	reviewCmd.Flags().Bool("debug", false, "replay the fixture response instead of calling the model")
	reviewCmd.Flags().String("fixture", "data/debugging/mock_response.txt", "canned response used with --debug")

	viper.BindPFlag("review.pdf_dir", reviewCmd.Flags().Lookup("pdf-dir"))
	viper.BindPFlag("review.output", reviewCmd.Flags().Lookup("output"))
	viper.BindPFlag("review.screened", reviewCmd.Flags().Lookup("screened"))
	viper.BindPFlag("review.json_dir", reviewCmd.Flags().Lookup("json-dir"))
	viper.BindPFlag("review.max_chars", reviewCmd.Flags().Lookup("max-chars"))
	viper.BindPFlag("review.model", reviewCmd.Flags().Lookup("model"))
	viper.BindPFlag("review.temperature", reviewCmd.Flags().Lookup("temperature"))
	viper.BindPFlag("review.debug", reviewCmd.Flags().Lookup("debug"))
	viper.BindPFlag("review.fixture", reviewCmd.Flags().Lookup("fixture"))

	rootCmd.AddCommand(reviewCmd)
}
