package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/salesloom-cli/internal/charts"
	"github.com/KaramelBytes/salesloom-cli/internal/pipeline"
)

var (
	chartsOutDir string
	chartsFormat string
)

var chartsCmd = &cobra.Command{
	Use:   "charts [file]",
	Short: "Render the descriptive charts of the raw table",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		t, err := loadInput(args)
		if err != nil {
			return err
		}
		dir := chartsOutDir
		if dir == "" {
			dir = filepath.Join(c.OutputDir, pipeline.ChartsDir)
		}
		format := c.ChartFormat
		if chartsFormat != "" {
			format = chartsFormat
		}
		r, err := charts.NewRenderer(dir, format, c.ChartWidthIn, c.ChartHeightIn, c.HistogramBins)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		console := newConsole(cmd.OutOrStdout())
		paths, err := r.Descriptive(ctx, t)
		for _, p := range paths {
			console.Info("%s", p)
		}
		if err != nil {
			return err
		}
		console.Success("Rendered %d charts to %s", len(paths), dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartsCmd)
	chartsCmd.Flags().StringVarP(&chartsOutDir, "out", "o", "", "chart directory (default <output_dir>/charts)")
	chartsCmd.Flags().StringVar(&chartsFormat, "format", "", "chart format: png|svg|pdf (overrides chart_format)")
}
