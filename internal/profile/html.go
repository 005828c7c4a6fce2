package profile

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"strconv"

	"github.com/KaramelBytes/salesloom-cli/internal/dataset"
	"github.com/KaramelBytes/salesloom-cli/internal/utils"
)

var funcs = template.FuncMap{
	"num":       formatNum,
	"pct":       func(x float64) string { return strconv.FormatFloat(x, 'f', 1, 64) + "%" },
	"r2":        corrText,
	"date":      dateText,
	"isNumeric": func(v Variable) bool { return v.Kind == dataset.KindNumeric },
	"isDate":    func(v Variable) bool { return v.Kind == dataset.KindDate && !v.From.IsZero() },
	"cellStyle": corrStyle,
}

func formatNum(x float64) string {
	if math.IsNaN(x) {
		return "NaN"
	}
	return strconv.FormatFloat(x, 'g', 6, 64)
}

func corrText(x float64) string {
	if math.IsNaN(x) {
		return "NaN"
	}
	return strconv.FormatFloat(x, 'f', 2, 64)
}

func dateText(v Variable) string {
	return v.From.Format(dataset.IndexLayout) + " to " + v.To.Format(dataset.IndexLayout)
}

// corrStyle shades a cell blue for negative and red for positive r.
func corrStyle(x float64) template.CSS {
	if math.IsNaN(x) {
		return "background:#ddd"
	}
	a := math.Abs(x)
	if x < 0 {
		return template.CSS(fmt.Sprintf("background:rgba(59,76,192,%.2f)", a))
	}
	return template.CSS(fmt.Sprintf("background:rgba(180,4,38,%.2f)", a))
}

var reportTmpl = template.Must(template.New("report").Funcs(funcs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{font-family:-apple-system,Segoe UI,Helvetica,Arial,sans-serif;margin:2rem;color:#222}
h1{margin-bottom:0}
.meta{color:#666;margin-top:.2rem}
table{border-collapse:collapse;margin:.5rem 0 1.5rem}
td,th{border:1px solid #ccc;padding:.25rem .5rem;text-align:left;font-size:.9rem}
th{background:#f4f4f4}
.var{border:1px solid #ddd;border-radius:4px;padding:.5rem 1rem;margin-bottom:1rem}
.alert{font-family:monospace;font-weight:bold;margin-right:.5rem}
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">{{.Name}} · source: {{.Source}} · generated {{.GeneratedAt.Format "2006-01-02 15:04:05 UTC"}}</p>

<h2 id="overview">Overview</h2>
<table>
<tr><th>Number of variables</th><td>{{.Columns}}</td></tr>
<tr><th>Number of observations</th><td>{{.Rows}}</td></tr>
<tr><th>Missing cells</th><td>{{.MissingCells}} ({{pct .MissingPct}})</td></tr>
<tr><th>Duplicate rows</th><td>{{.DuplicateRows}}</td></tr>
{{range $k, $n := .KindCounts}}<tr><th>{{$k}} variables</th><td>{{$n}}</td></tr>
{{end}}</table>

<h2 id="alerts">Alerts</h2>
{{if .Alerts}}<ul>
{{range .Alerts}}<li><span class="alert">{{.Kind}}</span>{{.Message}}</li>
{{end}}</ul>{{else}}<p>No alerts.</p>{{end}}

<h2 id="variables">Variables</h2>
{{range .Variables}}<div class="var" id="var-{{.Name}}">
<h3>{{.Name}} <small>({{.Kind}})</small></h3>
<table>
<tr><th>Count</th><td>{{.Count}}</td><th>Missing</th><td>{{.Missing}} ({{pct .MissingPct}})</td><th>Distinct</th><td>{{.Distinct}}</td></tr>
</table>
{{if isNumeric .}}{{with .Numeric}}<table>
<tr><th>Mean</th><td>{{num .Mean}}</td><th>Std</th><td>{{num .Std}}</td><th>Skewness</th><td>{{num .Skewness}}</td></tr>
<tr><th>Min</th><td>{{num .Min}}</td><th>25%</th><td>{{num .P25}}</td><th>Median</th><td>{{num .Median}}</td></tr>
<tr><th>75%</th><td>{{num .P75}}</td><th>Max</th><td>{{num .Max}}</td><th>Zeros</th><td>{{.Zeros}}</td></tr>
<tr><th>Outliers (|z|&gt;{{num .OutlierThreshold}})</th><td colspan="5">{{.Outliers}}</td></tr>
</table>{{end}}{{else}}{{if isDate .}}<p>Range: {{date .}}</p>{{end}}{{if .Top}}<table>
<tr><th>Value</th><th>Count</th></tr>
{{range .Top}}<tr><td>{{.Value}}</td><td>{{.Count}}</td></tr>
{{end}}</table>{{end}}{{end}}
</div>
{{end}}

{{with .Correlations}}<h2 id="correlations">Correlations (Pearson)</h2>
<table>
<tr><th></th>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{range $i, $row := .Values}}<tr><th>{{index $.Correlations.Columns $i}}</th>{{range $row}}<td style="{{cellStyle .}}">{{r2 .}}</td>{{end}}</tr>
{{end}}</table>{{end}}

<h2 id="sample">Sample</h2>
<table>
<tr>{{range .SampleHeader}}<th>{{.}}</th>{{end}}</tr>
{{range .Sample}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
</body>
</html>
`))

// HTML renders the profile as a standalone page.
func (p *Profile) HTML() ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("render profile: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteHTML renders the profile to path.
func (p *Profile) WriteHTML(path string) error {
	b, err := p.HTML()
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return &dataset.LoadError{Kind: dataset.ErrFileAccess, Op: "write report", Path: path, Err: err}
	}
	return nil
}
