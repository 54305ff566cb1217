package report

import (
	"bytes"
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"jprofile/domain/profiling"
)

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

// renderMarkdown builds the markdown report: a summary table, then one metric
// table per column
func renderMarkdown(set *profiling.ProfileSet) []byte {
	var buf bytes.Buffer
	ew := &errWriter{w: &buf}

	ew.printf("# Profile: %s\n\n", escapeCell(set.Source))
	ew.printf("%d rows, %d columns, computed %s\n\n", set.RowCount, len(set.Columns), set.ComputedAt)

	ew.printf("| Column | Type | Count | Nulls | Null %% | Unique |\n")
	ew.printf("|---|---|---:|---:|---:|---:|\n")
	for _, cp := range set.Ordered() {
		p := cp.Profile
		ew.printf("| %s | %s | %d | %d | %s | %d |\n",
			escapeCell(cp.Name), cp.Category, p.Count, p.NullCount, formatValue(p.NullPercentage), p.UniqueCount)
	}

	for _, cp := range set.Ordered() {
		ew.printf("\n## %s (%s)\n\n", escapeCell(cp.Name), cp.Category)
		ew.printf("| Metric | Value |\n")
		ew.printf("|---|---|\n")

		var top []profiling.ValueCount
		for _, m := range cp.Profile.Metrics() {
			if vc, ok := m.Value.([]profiling.ValueCount); ok {
				top = vc
				continue
			}
			ew.printf("| %s | %s |\n", m.Name, escapeCell(formatValue(m.Value)))
		}

		if len(top) > 0 {
			ew.printf("\n### Top frequencies\n\n")
			ew.printf("| Value | Count |\n")
			ew.printf("|---|---:|\n")
			for _, vc := range top {
				ew.printf("| %s | %d |\n", escapeCell(vc.Value), vc.Count)
			}
		}
	}

	if len(set.Errors) > 0 {
		ew.printf("\n## Errors\n\n")
		for _, name := range set.Columns {
			if msg, ok := set.Errors[name]; ok {
				ew.printf("- **%s**: %s\n", escapeCell(name), escapeCell(msg))
			}
		}
	}

	return buf.Bytes()
}

func writeMarkdown(w io.Writer, set *profiling.ProfileSet) error {
	_, err := w.Write(renderMarkdown(set))
	return err
}

// writeHTML renders the markdown report as a complete HTML page
func writeHTML(w io.Writer, set *profiling.ProfileSet) error {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage | html.SkipHTML,
		Title: "Profile: " + set.Source,
	})

	_, err := w.Write(markdown.ToHTML(renderMarkdown(set), p, renderer))
	return err
}

func escapeCell(s string) string {
	if s == "" {
		return `""`
	}
	return cellEscaper.Replace(s)
}
