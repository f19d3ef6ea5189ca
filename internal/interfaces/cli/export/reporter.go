package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	reportapp "github.com/dealer/reporting/internal/application/report"
)

// Format selects how rendered reports are written.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat accepts "table" (the default for "") and "json".
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported output format %q (want table or json)", s)
}

type TableConfig struct {
	LabelWidth    int
	MinValueWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		LabelWidth:    32,
		MinValueWidth: 10,
	}
}

type Reporter struct {
	writer io.Writer
	format Format
	config TableConfig
}

func NewReporter(writer io.Writer, format Format) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	if format == "" {
		format = FormatTable
	}
	return &Reporter{
		writer: writer,
		format: format,
		config: DefaultTableConfig(),
	}
}

// SetFormat switches the output format after construction.
func (r *Reporter) SetFormat(format Format) {
	r.format = format
}

// table is the template model for one grid.
type table struct {
	Title   string
	Caption string
	Widths  []int
	Header  []string
	Rows    [][]string
}

const tableTemplate = `{{.Title}}{{if .Caption}} ({{.Caption}}){{end}}
{{separator .Widths}}
{{row .Widths .Header}}
{{separator .Widths}}
{{range .Rows}}{{row $.Widths .}}
{{end}}{{separator .Widths}}
`

// Detail writes a rendered report grid and its summaries.
func (r *Reporter) Detail(detail *reportapp.ReportDetailResponse) error {
	if r.format == FormatJSON {
		return r.writeJSON(detail)
	}
	caption := string(detail.Path)
	if err := r.writeTable(r.gridTable(detail.ReportConfig, detail.ReportLines, caption)); err != nil {
		return err
	}
	for i := range detail.ReportSummaries {
		s := &detail.ReportSummaries[i]
		if err := r.writeTable(r.gridTable(s.ReportConfig, s.ReportLines, "summary")); err != nil {
			return err
		}
	}
	return nil
}

// Summary writes a single KPI widget.
func (r *Reporter) Summary(summary *reportapp.ReportSummaryResponse) error {
	if r.format == FormatJSON {
		return r.writeJSON(summary)
	}
	return r.writeTable(r.gridTable(summary.ReportConfig, summary.ReportLines, summary.ReportConfig.SummaryStyle))
}

// List writes the visible reports of a sub-section.
func (r *Reporter) List(items []reportapp.ReportListItem) error {
	if r.format == FormatJSON {
		if items == nil {
			items = []reportapp.ReportListItem{}
		}
		return r.writeJSON(items)
	}
	t := table{
		Title:  "Reports",
		Header: []string{"ID", "Name", "Kind", "Summary"},
	}
	for _, item := range items {
		summary := "-"
		if item.Summary != nil {
			summary = item.Summary.ReportConfig.SummaryStyle
		}
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", item.ReportConfig.ID),
			item.ReportConfig.Name,
			item.ReportConfig.Kind,
			summary,
		})
	}
	t.Widths = columnWidths(t.Header, t.Rows, 0, 0)
	return r.writeTable(t)
}

func (r *Reporter) gridTable(cfg reportapp.ReportConfigResponse, lines []reportapp.ReportLineResponse, caption string) table {
	t := table{
		Title:   cfg.Name,
		Caption: caption,
		Header:  append([]string{""}, cfg.Columns...),
	}
	for _, line := range lines {
		if !line.Visible {
			continue
		}
		t.Rows = append(t.Rows, append([]string{lineLabel(line)}, line.Values...))
	}
	t.Widths = columnWidths(t.Header, t.Rows, r.config.LabelWidth, r.config.MinValueWidth)
	return t
}

func (r *Reporter) writeTable(t table) error {
	funcMap := template.FuncMap{
		"separator": func(widths []int) string {
			parts := make([]string, len(widths))
			for i, w := range widths {
				parts[i] = strings.Repeat("-", w+2)
			}
			return "+" + strings.Join(parts, "+") + "+"
		},
		"row": func(widths []int, cells []string) string {
			var b strings.Builder
			b.WriteString("|")
			for i, w := range widths {
				cell := ""
				if i < len(cells) {
					cell = cells[i]
				}
				if i == 0 {
					fmt.Fprintf(&b, " %-*s |", w, truncate(cell, w))
				} else {
					fmt.Fprintf(&b, " %*s |", w, truncate(cell, w))
				}
			}
			return b.String()
		},
	}

	tmpl, err := template.New("table").Funcs(funcMap).Parse(tableTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return tmpl.Execute(r.writer, t)
}

func (r *Reporter) writeJSON(v any) error {
	enc := json.NewEncoder(r.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// lineLabel names a row by its line name, falling back to the store or
// period a by-store/by-month row stands for.
func lineLabel(line reportapp.ReportLineResponse) string {
	switch {
	case line.Name != "":
		return line.Name
	case line.StoreID != nil && line.Period != "":
		return fmt.Sprintf("store %d %s", *line.StoreID, line.Period)
	case line.StoreID != nil:
		return fmt.Sprintf("store %d", *line.StoreID)
	default:
		return line.Period
	}
}

// columnWidths sizes every column to its widest cell. The label column is
// capped at maxLabel (0 means uncapped); value columns are at least minValue wide.
func columnWidths(header []string, rows [][]string, maxLabel, minValue int) []int {
	n := len(header)
	for _, row := range rows {
		if len(row) > n {
			n = len(row)
		}
	}
	widths := make([]int, n)
	measure := func(cells []string) {
		for i, c := range cells {
			if l := len([]rune(c)); l > widths[i] {
				widths[i] = l
			}
		}
	}
	measure(header)
	for _, row := range rows {
		measure(row)
	}
	for i := range widths {
		if i == 0 {
			if maxLabel > 0 && widths[i] > maxLabel {
				widths[i] = maxLabel
			}
			continue
		}
		if widths[i] < minValue {
			widths[i] = minValue
		}
	}
	return widths
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "~"
}
