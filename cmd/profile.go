package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/salesloom-cli/internal/cleaning"
	"github.com/KaramelBytes/salesloom-cli/internal/pipeline"
	"github.com/KaramelBytes/salesloom-cli/internal/profile"
)

var (
	profSource     string
	profOutputPath string
)

var profileCmd = &cobra.Command{
	Use:   "profile [file]",
	Short: "Build the HTML profiling report of the raw file or the cleaned table",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		srcName := c.ProfileSource
		if cmd.Flags().Changed("source") {
			srcName = profSource
		}
		src, err := profile.ParseSource(srcName)
		if err != nil {
			return err
		}
		path := c.DataPath
		if len(args) > 0 {
			path = args[0]
		}

		var f *profile.Frame
		if src == profile.SourceCleaned {
			t, err := loadInput(args)
			if err != nil {
				return err
			}
			if _, err := pipeline.Clean(t, cleaning.DedupOptions{}, nil); err != nil {
				return err
			}
			f, err = profile.FromTable(t)
			if err != nil {
				return err
			}
		} else {
			f, err = profile.Load(path, c.DatasetOptions())
			if err != nil {
				return err
			}
		}

		p, err := profile.Build(f)
		if err != nil {
			return err
		}
		out := profOutputPath
		if out == "" {
			out = filepath.Join(c.OutputDir, c.ReportFile)
		}
		if err := p.WriteHTML(out); err != nil {
			return err
		}
		console := newConsole(cmd.OutOrStdout())
		console.Success("Profiled %s (%s): %d rows, %d variables, %d alerts", f.Name, f.Source, p.Rows, p.Columns, len(p.Alerts))
		for _, kind := range profile.AlertKinds {
			alerts := p.AlertsOf(kind)
			if len(alerts) == 0 {
				continue
			}
			console.Warn("%s (%d)", kind, len(alerts))
			for _, a := range alerts {
				console.Info("  %s", a.Message)
			}
		}
		console.Success("Wrote report to %s", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVar(&profSource, "source", "raw", "profile input: raw|cleaned (overrides profile_source)")
	profileCmd.Flags().StringVarP(&profOutputPath, "output", "o", "", "report path (default <output_dir>/<report_file>)")
}
