package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/salesloom-cli/internal/analysis"
	"github.com/KaramelBytes/salesloom-cli/internal/charts"
	"github.com/KaramelBytes/salesloom-cli/internal/cleaning"
	"github.com/KaramelBytes/salesloom-cli/internal/pipeline"
)

var (
	corrHeatmap bool
	corrTop     int
)

var corrCmd = &cobra.Command{
	Use:   "corr [file]",
	Short: "Clean the table and print the Pearson correlation matrix",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		t, err := loadInput(args)
		if err != nil {
			return err
		}
		if _, err := pipeline.Clean(t, cleaning.DedupOptions{}, nil); err != nil {
			return err
		}
		m, err := analysis.Correlate(t, analysis.SalesCorrelationColumns)
		if err != nil {
			return err
		}
		console := newConsole(cmd.OutOrStdout())
		console.CorrelationTable(m)
		if corrTop > 0 {
			for _, p := range m.TopPairs(corrTop) {
				console.Info("%s ~ %s: %.2f", p.A, p.B, p.R)
			}
		}
		if corrHeatmap {
			r, err := charts.NewRenderer(filepath.Join(c.OutputDir, pipeline.ChartsDir), c.ChartFormat, c.ChartWidthIn, c.ChartHeightIn, c.HistogramBins)
			if err != nil {
				return err
			}
			p, err := r.CorrelationMap(m)
			if err != nil {
				return err
			}
			console.Success("Wrote heatmap to %s", p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(corrCmd)
	corrCmd.Flags().BoolVar(&corrHeatmap, "heatmap", false, "also render the annotated correlation heatmap")
	corrCmd.Flags().IntVar(&corrTop, "top", 0, "list the N strongest pairs")
}
