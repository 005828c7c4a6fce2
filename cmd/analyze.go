package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/salesloom-cli/internal/analysis"
	"github.com/KaramelBytes/salesloom-cli/internal/cleaning"
	"github.com/KaramelBytes/salesloom-cli/internal/pipeline"
	"github.com/KaramelBytes/salesloom-cli/internal/utils"
)

var (
	anaOutputPath string
	anaSampleRows int
	anaClean      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Summarize the sales table as Markdown",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadInput(args)
		if err != nil {
			return err
		}
		var notes *analysis.CleaningNotes
		var corr *analysis.CorrMatrix
		if anaClean {
			cr, err := pipeline.Clean(t, cleaning.DedupOptions{}, nil)
			if err != nil {
				return err
			}
			notes = cr.Notes()
			if corr, err = analysis.Correlate(t, analysis.SalesCorrelationColumns); err != nil {
				return err
			}
		}
		rep := analysis.Describe(t, anaSampleRows)
		rep.Cleaning = notes
		rep.Corr = corr
		md := rep.Markdown()

		if anaOutputPath == "" {
			fmt.Fprintln(cmd.OutOrStdout(), md)
			return nil
		}
		if err := utils.SafeWriteFile(anaOutputPath, []byte(md)); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		newConsole(cmd.OutOrStdout()).Success("Wrote analysis to %s", anaOutputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write analysis (Markdown)")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 5, "number of sample rows to include")
	analyzeCmd.Flags().BoolVar(&anaClean, "clean", false, "clean the table first and include cleaning and correlation sections")
}
