package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "supermarket_sales.csv", c.DataPath)
	assert.Equal(t, "eda_output", c.OutputDir)
	assert.Equal(t, "report.html", c.ReportFile)
	assert.Equal(t, "raw", c.ProfileSource)
	assert.Equal(t, "png", c.ChartFormat)
	assert.Equal(t, 20, c.HistogramBins)
	assert.Equal(t, "info", c.LogLevel)
	assert.False(t, c.ExportXLSX)
	assert.Equal(t, Default(), c)
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "salesloom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output_dir: out\nchart_format: SVG\nprofile_source: cleaned\n"), 0o644))
	t.Setenv("SALESLOOM_HISTOGRAM_BINS", "12")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "out", c.OutputDir)
	assert.Equal(t, "svg", c.ChartFormat)
	assert.Equal(t, "cleaned", c.ProfileSource)
	assert.Equal(t, 12, c.HistogramBins)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profile_source: both\nchart_format: gif\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile_source")
	assert.Contains(t, err.Error(), "chart_format")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSetAndSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c := Default()
	require.NoError(t, c.Set("chart_width_in", "10.5"))
	require.NoError(t, c.Set("export_xlsx", "true"))
	require.NoError(t, c.Set("delimiter", `\t`))
	require.NoError(t, c.Set("decimal_separator", ","))
	require.NoError(t, c.Set("thousands_separator", "."))

	assert.Error(t, c.Set("histogram_bins", "many"))
	assert.Error(t, c.Set("log_format", "xml"))
	assert.Error(t, c.Set("thousands_separator", ","), "separators must differ")
	assert.Error(t, c.Set("nope", "1"))
	assert.Equal(t, "text", c.LogFormat, "failed Set must not change the config")

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, Save(c, path))
	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, back)

	v, err := back.Get("chart_width_in")
	require.NoError(t, err)
	assert.Equal(t, "10.5", v)
	for _, k := range Keys {
		_, err := back.Get(k)
		assert.NoError(t, err, k)
	}
}

func TestDatasetOptions(t *testing.T) {
	c := Default()
	c.Delimiter = ";"
	c.DecimalSeparator = ","
	c.DateLayout = "2006-01-02"
	opt := c.DatasetOptions()
	assert.Equal(t, ';', opt.Delimiter)
	assert.Equal(t, ',', opt.DecimalSeparator)
	assert.Equal(t, rune(0), opt.ThousandsSeparator)
	assert.Equal(t, "2006-01-02", opt.DateLayout)
	assert.NotEmpty(t, opt.NAValues)
}
