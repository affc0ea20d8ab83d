// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/litreview/internal/table"
)

var convertCmd = &cobra.Command{
	Use:   "convert-xlsx",
	Short: "Convert the hand-edited review workbook to the report CSV",
	Long: `Convert-xlsx reads the first sheet of the review workbook, where row 1 is a
banner and row 2 the header, and writes a semicolon-separated CSV with a
leading index column for the report pass.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := dataPath(viper.GetString("convert.input"))
		out := dataPath(viper.GetString("convert.output"))

		n, err := table.ConvertXLSX(in, out)
		if err != nil {
			return err
		}
		fmt.Printf("converted %d rows: %s -> %s\n", n, in, out)
		return nil
	},
}

func init() {
	convertCmd.Flags().String("input", "data/xlsx/final_review.xlsx", "review workbook")
	convertCmd.Flags().String("output", "data/csv/final_review_processed.csv", "CSV to write")

	viper.BindPFlag("convert.input", convertCmd.Flags().Lookup("input"))
	viper.BindPFlag("convert.output", convertCmd.Flags().Lookup("output"))

	rootCmd.AddCommand(convertCmd)
}
