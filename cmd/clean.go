package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/salesloom-cli/internal/charts"
	"github.com/KaramelBytes/salesloom-cli/internal/cleaning"
	"github.com/KaramelBytes/salesloom-cli/internal/dataset"
	"github.com/KaramelBytes/salesloom-cli/internal/export"
	"github.com/KaramelBytes/salesloom-cli/internal/pipeline"
)

var (
	cleanOutputPath string
	cleanXLSXPath   string
	cleanHeatmaps   bool
	cleanDedupIndex bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean [file]",
	Short: "Drop duplicates, impute missing values and write the cleaned table",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		t, err := loadInput(args)
		if err != nil {
			return err
		}
		console := newConsole(cmd.OutOrStdout())
		console.Success("Loaded %s: %d rows", t.Name, t.Len())

		var renderer *charts.Renderer
		if cleanHeatmaps {
			renderer, err = charts.NewRenderer(filepath.Join(c.OutputDir, pipeline.ChartsDir), c.ChartFormat, c.ChartWidthIn, c.ChartHeightIn, c.HistogramBins)
			if err != nil {
				return err
			}
		}
		cr, err := pipeline.Clean(t, cleaning.DedupOptions{IncludeIndex: cleanDedupIndex}, renderer)
		if err != nil {
			return err
		}
		if cr.Duplicates > 0 {
			console.Warn("Dropped %d duplicate rows", cr.Duplicates)
		} else {
			console.Success("No duplicate rows")
		}
		console.MissingTable(cr.MissingBefore)
		console.FillTable(cr.Imputed)
		for _, p := range cr.Charts {
			console.Info("chart: %s", p)
		}

		out := cleanOutputPath
		if out == "" {
			out = filepath.Join(c.OutputDir, pipeline.CleanedCSV)
		}
		if err := dataset.WriteCSV(t, out); err != nil {
			return err
		}
		console.Success("Wrote %d rows to %s", t.Len(), out)
		if cleanXLSXPath != "" {
			if err := export.WriteWorkbook(cleanXLSXPath, export.Workbook{Table: t, Missing: cr.MissingBefore}); err != nil {
				return fmt.Errorf("write workbook: %w", err)
			}
			console.Success("Wrote workbook to %s", cleanXLSXPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVarP(&cleanOutputPath, "output", "o", "", "cleaned CSV path (default <output_dir>/cleaned.csv)")
	cleanCmd.Flags().StringVar(&cleanXLSXPath, "xlsx", "", "optional path for an xlsx export of the cleaned table")
	cleanCmd.Flags().BoolVar(&cleanHeatmaps, "heatmaps", false, "render missing-value heatmaps before and after imputation")
	cleanCmd.Flags().BoolVar(&cleanDedupIndex, "dedup-include-date", false, "compare the Date index when detecting duplicates")
}

// loadInput loads the file named by args, or data_path when args is empty.
func loadInput(args []string) (*dataset.Table, error) {
	c := currentConfig()
	path := c.DataPath
	if len(args) > 0 {
		path = args[0]
	}
	t, err := dataset.Load(path, c.DatasetOptions())
	if err != nil {
		return nil, err
	}
	newLogger().Debug("loaded", "path", path, "rows", t.Len(), "columns", len(t.Columns()))
	return t, nil
}
