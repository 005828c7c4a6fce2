package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/salesloom-cli/internal/config"
	"github.com/KaramelBytes/salesloom-cli/internal/observability"
	"github.com/KaramelBytes/salesloom-cli/internal/ui"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string

	// Input parsing flags (override config if set)
	flagDelimiter  string
	flagDecimal    string
	flagThousands  string
	flagDateLayout string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "salesloom",
	Short: "Salesloom CLI: exploratory data analysis of supermarket sales",
	Long: `Salesloom loads the supermarket sales dataset, renders descriptive charts,
cleans it (duplicates, missing values), builds a profiling report and
computes the correlation matrix of the numeric columns.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Assigned here rather than in the literal to avoid an initialization
	// cycle (applyInputFlags reads rootCmd's flags).
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return applyInputFlags(currentConfig())
	}
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.salesloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text|json (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDateLayout, "date-layout", "", "Go time layout of the Date column (auto-detect if omitted)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so read-only commands still work
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c
}

// currentConfig returns the loaded config, loading it when a command runs
// outside of Execute.
func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		loadConfig()
	}
	return cfg
}

// applyInputFlags copies the parsing flags onto the loaded config.
func applyInputFlags(c *cfgpkg.Global) error {
	f := rootCmd.PersistentFlags()
	if f.Changed("delimiter") {
		switch strings.ToLower(flagDelimiter) {
		case ",", ";", "|":
			c.Delimiter = flagDelimiter
		case "tab", `\t`, "\t":
			c.Delimiter = "\t"
		default:
			return fmt.Errorf("unsupported --delimiter: %s", flagDelimiter)
		}
	}
	if f.Changed("decimal") {
		switch strings.ToLower(strings.TrimSpace(flagDecimal)) {
		case ",", "comma":
			c.DecimalSeparator = ","
		case ".", "dot":
			c.DecimalSeparator = "."
		default:
			return fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", flagDecimal)
		}
	}
	if f.Changed("thousands") {
		switch strings.ToLower(flagThousands) {
		case ",", ".":
			c.ThousandsSeparator = flagThousands
		case "space", " ":
			c.ThousandsSeparator = " "
		default:
			return fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", flagThousands)
		}
	}
	if f.Changed("date-layout") {
		c.DateLayout = flagDateLayout
	}
	return c.Validate()
}

func newLogger() *slog.Logger {
	c := currentConfig()
	lc := observability.LoggerConfig{Level: c.LogLevel, Format: c.LogFormat}
	if debug {
		lc.Level = "debug"
	}
	if logFormat != "" {
		lc.Format = logFormat
	}
	return observability.NewLogger(os.Stderr, lc)
}

func newConsole(w io.Writer) *ui.Console {
	return ui.NewConsole(w, !color.NoColor)
}
