package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/salesloom-cli/internal/dataset"
)

// Global configuration structure.
type Global struct {
	DataPath      string `mapstructure:"data_path" yaml:"data_path" validate:"required"`
	OutputDir     string `mapstructure:"output_dir" yaml:"output_dir" validate:"required"`
	ReportFile    string `mapstructure:"report_file" yaml:"report_file" validate:"required"`
	ProfileSource string `mapstructure:"profile_source" yaml:"profile_source" validate:"oneof=raw cleaned"`

	// Input parsing
	DateLayout         string `mapstructure:"date_layout" yaml:"date_layout"`
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter" validate:"max=1"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator" validate:"max=1"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator" validate:"max=1,nefield=DecimalSeparator|eq="`

	// Charts
	ChartFormat   string  `mapstructure:"chart_format" yaml:"chart_format" validate:"oneof=png svg pdf"`
	ChartWidthIn  float64 `mapstructure:"chart_width_in" yaml:"chart_width_in" validate:"gt=0,lte=40"`
	ChartHeightIn float64 `mapstructure:"chart_height_in" yaml:"chart_height_in" validate:"gt=0,lte=40"`
	HistogramBins int     `mapstructure:"histogram_bins" yaml:"histogram_bins" validate:"gte=0,lte=500"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`

	ExportXLSX bool `mapstructure:"export_xlsx" yaml:"export_xlsx"`
}

// Keys lists the configuration keys in display order.
var Keys = []string{
	"data_path", "output_dir", "report_file", "profile_source",
	"date_layout", "delimiter", "decimal_separator", "thousands_separator",
	"chart_format", "chart_width_in", "chart_height_in", "histogram_bins",
	"log_level", "log_format", "export_xlsx",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_path", "supermarket_sales.csv")
	v.SetDefault("output_dir", "eda_output")
	v.SetDefault("report_file", "report.html")
	v.SetDefault("profile_source", "raw")
	v.SetDefault("date_layout", "")
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("chart_format", "png")
	v.SetDefault("chart_width_in", 8.0)
	v.SetDefault("chart_height_in", 5.0)
	v.SetDefault("histogram_bins", 20)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("export_xlsx", false)
}

// Default returns the configuration with only defaults applied.
func Default() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

// DefaultPath returns ~/.salesloom/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".salesloom", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.salesloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SALESLOOM")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".salesloom"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.ProfileSource = strings.ToLower(strings.TrimSpace(c.ProfileSource))
	c.ChartFormat = strings.ToLower(strings.TrimSpace(c.ChartFormat))
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report yaml key names in errors.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field constraints and returns one error listing every
// offending key.
func (c *Global) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Field(), fe.ActualTag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Get returns the value of key formatted for display.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "data_path":
		return c.DataPath, nil
	case "output_dir":
		return c.OutputDir, nil
	case "report_file":
		return c.ReportFile, nil
	case "profile_source":
		return c.ProfileSource, nil
	case "date_layout":
		return c.DateLayout, nil
	case "delimiter":
		return c.Delimiter, nil
	case "decimal_separator":
		return c.DecimalSeparator, nil
	case "thousands_separator":
		return c.ThousandsSeparator, nil
	case "chart_format":
		return c.ChartFormat, nil
	case "chart_width_in":
		return strconv.FormatFloat(c.ChartWidthIn, 'f', -1, 64), nil
	case "chart_height_in":
		return strconv.FormatFloat(c.ChartHeightIn, 'f', -1, 64), nil
	case "histogram_bins":
		return strconv.Itoa(c.HistogramBins), nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	case "export_xlsx":
		return strconv.FormatBool(c.ExportXLSX), nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Set parses val into key and validates the result. On error c is unchanged.
func (c *Global) Set(key, val string) error {
	next := *c
	switch key {
	case "data_path":
		next.DataPath = val
	case "output_dir":
		next.OutputDir = val
	case "report_file":
		next.ReportFile = val
	case "profile_source":
		next.ProfileSource = strings.ToLower(val)
	case "date_layout":
		next.DateLayout = val
	case "delimiter":
		if val == `\t` || val == "tab" {
			val = "\t"
		}
		next.Delimiter = val
	case "decimal_separator":
		next.DecimalSeparator = val
	case "thousands_separator":
		next.ThousandsSeparator = val
	case "chart_format":
		next.ChartFormat = strings.ToLower(val)
	case "chart_width_in", "chart_height_in":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid float for %s: %w", key, err)
		}
		if key == "chart_width_in" {
			next.ChartWidthIn = f
		} else {
			next.ChartHeightIn = f
		}
	case "histogram_bins":
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for histogram_bins: %w", err)
		}
		next.HistogramBins = i
	case "log_level":
		next.LogLevel = strings.ToLower(val)
	case "log_format":
		next.LogFormat = strings.ToLower(val)
	case "export_xlsx":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for export_xlsx: %w", err)
		}
		next.ExportXLSX = b
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// DatasetOptions converts the parsing keys into loader options.
func (c *Global) DatasetOptions() dataset.Options {
	opt := dataset.DefaultOptions()
	opt.DateLayout = c.DateLayout
	opt.Delimiter = firstRune(c.Delimiter)
	opt.DecimalSeparator = firstRune(c.DecimalSeparator)
	opt.ThousandsSeparator = firstRune(c.ThousandsSeparator)
	return opt
}

func firstRune(s string) rune {
	if s == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
