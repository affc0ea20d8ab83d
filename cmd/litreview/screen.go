// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/litreview/internal/llm"
	"github.com/pdiddy/litreview/internal/pdftext"
	"github.com/pdiddy/litreview/internal/screen"
	"github.com/pdiddy/litreview/pkg/types"
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Screen candidate PDFs for inclusion",
	Long: `Screen reads the first pages of every PDF in the articles directory, asks
the model whether the paper belongs in the review, and writes one decision
per paper to the screening CSV. A paper that fails is reported and left out;
the command exits non-zero when any paper failed.`,
	RunE: runScreen,
}

func runScreen(cmd *cobra.Command, args []string) error {
	ai, err := aiConfig("screen")
	if err != nil {
		return err
	}

	cfg := types.ScreeningConfig{
		AIConfig:     ai,
		PDFDir:       dataPath(viper.GetString("screen.pdf_dir")),
		OutputCSV:    dataPath(viper.GetString("screen.output")),
		PageBudget:   viper.GetInt("screen.page_budget"),
		ExcerptLimit: viper.GetInt("screen.excerpt_limit"),
	}
	screen.ApplyDefaults(&cfg)

	model, err := llm.New(cfg.AIConfig)
	if err != nil {
		return err
	}

	summary, _, err := screen.Run(cmd.Context(), model, pdftext.Native{}, cfg, os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d paper(s) failed screening", summary.Failed)
	}
	return nil
}

func init() {
	screenCmd.Flags().String("pdf-dir", "data/articles", "directory of candidate PDFs")
	screenCmd.Flags().String("output", "data/csv/reviewed_papers.csv", "screening CSV to write")
	screenCmd.Flags().String("model", screen.DefaultModel, "model identifier")
	screenCmd.Flags().Float64("temperature", screen.DefaultTemperature, "sampling temperature")
	screenCmd.Flags().Bool("debug", false, "replay the fixture response instead of calling the model")
	screenCmd.Flags().String("fixture", "data/debugging/mock_gpt_text.txt", "canned response used with --debug")

	viper.BindPFlag("screen.pdf_dir", screenCmd.Flags().Lookup("pdf-dir"))
	viper.BindPFlag("screen.output", screenCmd.Flags().Lookup("output"))
	viper.BindPFlag("screen.model", screenCmd.Flags().Lookup("model"))
	viper.BindPFlag("screen.temperature", screenCmd.Flags().Lookup("temperature"))
	viper.BindPFlag("screen.debug", screenCmd.Flags().Lookup("debug"))
	viper.BindPFlag("screen.fixture", screenCmd.Flags().Lookup("fixture"))

	rootCmd.AddCommand(screenCmd)
}
