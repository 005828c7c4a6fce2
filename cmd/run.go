package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/salesloom-cli/internal/cleaning"
	"github.com/KaramelBytes/salesloom-cli/internal/pipeline"
	"github.com/KaramelBytes/salesloom-cli/internal/profile"
)

var (
	runOutDir        string
	runProfileSource string
	runFormat        string
	runSkipCharts    bool
	runSkipProfile   bool
	runXLSX          bool
	runDedupIndex    bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run the full analysis: charts, cleaning, profile and correlations",
	Long: `Run loads the sales file (argument or data_path config) and executes every
stage in order, writing charts, report.html, summary.md, cleaned.csv and a
run.json manifest to the output directory. The first failing stage stops
the run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		opts, err := pipeline.OptionsFromConfig(c)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			opts.DataPath = args[0]
		}
		f := cmd.Flags()
		if f.Changed("out") {
			opts.OutputDir = runOutDir
		}
		if f.Changed("profile-source") {
			src, err := profile.ParseSource(runProfileSource)
			if err != nil {
				return err
			}
			opts.ProfileSource = src
		}
		if f.Changed("format") {
			opts.ChartFormat = runFormat
		}
		if f.Changed("xlsx") {
			opts.ExportXLSX = runXLSX
		}
		opts.SkipCharts = runSkipCharts
		opts.SkipProfile = runSkipProfile
		opts.Dedup = cleaning.DedupOptions{IncludeIndex: runDedupIndex}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		console := newConsole(cmd.OutOrStdout())
		res, err := pipeline.New(opts, newLogger(), console).Run(ctx)
		if err != nil {
			console.Info("manifest: %s", filepath.Join(opts.OutputDir, "run.json"))
			return err
		}
		console.Success("Run %s complete: %d artifacts in %s", res.Manifest.RunID, len(res.Manifest.Artifacts), opts.OutputDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runOutDir, "out", "o", "", "output directory (overrides output_dir)")
	runCmd.Flags().StringVar(&runProfileSource, "profile-source", "", "profile input: raw|cleaned (overrides profile_source)")
	runCmd.Flags().StringVar(&runFormat, "format", "", "chart format: png|svg|pdf (overrides chart_format)")
	runCmd.Flags().BoolVar(&runSkipCharts, "skip-charts", false, "do not render charts")
	runCmd.Flags().BoolVar(&runSkipProfile, "skip-profile", false, "do not build the profiling report")
	runCmd.Flags().BoolVar(&runXLSX, "xlsx", false, "also write cleaned.xlsx (overrides export_xlsx)")
	runCmd.Flags().BoolVar(&runDedupIndex, "dedup-include-date", false, "compare the Date index when detecting duplicates")
}
