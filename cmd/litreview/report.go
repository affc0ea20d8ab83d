// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/litreview/internal/report"
	"github.com/pdiddy/litreview/pkg/types"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize the processed review and render figures",
	Long: `Report reads the processed review CSV, counts the models and task types of
the included studies, and renders bar charts. When the results workbook is
present it also renders a p-curve and a funnel plot. A summary.yaml is
written next to the figures.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := types.ReportConfig{
			ReviewCSV:   dataPath(viper.GetString("report.review_csv")),
			ResultsXLSX: dataPath(viper.GetString("report.results_xlsx")),
			FiguresDir:  dataPath(viper.GetString("report.figures_dir")),
			SampleSize:  viper.GetInt("report.sample_size"),
		}
		_, err := report.Run(cfg, os.Stdout)
		return err
	},
}

func init() {
	reportCmd.Flags().String("review-csv", "data/csv/final_review_processed.csv", "processed review CSV (semicolon-separated)")
	reportCmd.Flags().String("results-xlsx", "data/xlsx/extracted_data.xlsx", "workbook of extracted effect sizes and p-values")
	reportCmd.Flags().String("figures-dir", "figures", "output directory for charts")
	reportCmd.Flags().Int("sample-size", report.DefaultSampleSize, "assumed per-study sample size for the funnel plot")

	viper.BindPFlag("report.review_csv", reportCmd.Flags().Lookup("review-csv"))
	viper.BindPFlag("report.results_xlsx", reportCmd.Flags().Lookup("results-xlsx"))
	viper.BindPFlag("report.figures_dir", reportCmd.Flags().Lookup("figures-dir"))
	viper.BindPFlag("report.sample_size", reportCmd.Flags().Lookup("sample-size"))

	rootCmd.AddCommand(reportCmd)
}
