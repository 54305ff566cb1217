package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"jprofile/domain/profiling"
	"jprofile/internal/errors"
)

func sampleSet(t *testing.T) *profiling.ProfileSet {
	t.Helper()

	computer := profiling.NewComputer(profiling.DefaultConfig())
	columns := []profiling.Column{
		profiling.NewColumn("age", profiling.KindInteger, 30, 40, nil, 40),
		profiling.NewColumn("name", profiling.KindString, "Ann", "Bo|b", "Ann", nil),
		profiling.NewColumn("active", profiling.KindBoolean, true, false, true, true),
		profiling.NewColumn("seen", profiling.KindDate,
			time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), nil,
			time.Date(2023, 1, 2, 12, 0, 0, 0, time.UTC), nil),
	}

	set := profiling.NewProfileSet("people.csv", 4)
	for _, col := range columns {
		set.Columns = append(set.Columns, col.Name)
		cat, err := profiling.Classify(col)
		require.NoError(t, err)
		p, err := computer.Compute(col, cat)
		require.NoError(t, err)
		set.Profiles[col.Name] = profiling.ColumnProfile{Name: col.Name, Category: cat, Profile: p}
	}

	set.Columns = append(set.Columns, "blob")
	set.Errors["blob"] = "unsupported storage kind"
	return set
}

func render(t *testing.T, set *profiling.ProfileSet, format Format) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, set, format))
	return buf.String()
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tcs := map[string]Format{
		"text": FormatText, "TXT": FormatText, "json": FormatJSON, "yml": FormatYAML,
		" md ": FormatMarkdown, "html": FormatHTML, "excel": FormatXLSX,
	}
	for input, want := range tcs {
		got, err := ParseFormat(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseFormat("pdf")
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnsupportedFormat, errors.GetCode(err))

	for _, name := range Formats() {
		_, err := ParseFormat(name)
		assert.NoError(t, err, name)
	}
}

func TestFormatMetadata(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "application/json", FormatJSON.ContentType())
	assert.Equal(t, ".md", FormatMarkdown.Extension())
	assert.Equal(t, ".xlsx", FormatXLSX.Extension())
	assert.True(t, FormatXLSX.Binary())
	assert.False(t, FormatText.Binary())
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	out := render(t, sampleSet(t), FormatText)

	banner := strings.Repeat("=", 50)
	assert.Contains(t, out, "\n"+banner+"\nColumn: age (Type: numeric)\n"+banner+"\n")
	assert.Contains(t, out, "  count: 3\n  null_count: 1\n  null_percentage: 25\n")
	assert.Contains(t, out, "  mean: 36.67\n")
	assert.Contains(t, out, "  std: 5.77\n")
	assert.Contains(t, out, "  top_frequencies:\n    Ann: 2\n    Bo|b: 1\n")
	assert.Contains(t, out, "  min: 2023-01-01 00:00:00\n")
	assert.Contains(t, out, "  range: 36h0m0s\n")
	assert.Contains(t, out, "  blob: unsupported storage kind\n")

	assert.Less(t, strings.Index(out, "Column: age"), strings.Index(out, "Column: name"))
	assert.Less(t, strings.Index(out, "Column: active"), strings.Index(out, "Column: seen"))
}

func TestWriteJSONKeepsOrder(t *testing.T) {
	t.Parallel()

	out := render(t, sampleSet(t), FormatJSON)

	var doc struct {
		Source   string                    `json:"source"`
		RowCount int                       `json:"row_count"`
		Profiles map[string]map[string]any `json:"profiles"`
		Errors   map[string]string         `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.Equal(t, "people.csv", doc.Source)
	assert.Equal(t, 4, doc.RowCount)
	assert.Len(t, doc.Profiles, 4)
	assert.Equal(t, "numeric", doc.Profiles["age"]["type"])
	assert.InDelta(t, 36.6667, doc.Profiles["age"]["mean"], 1e-3)
	assert.Equal(t, "2023-01-01T00:00:00Z", doc.Profiles["seen"]["min"])
	assert.Equal(t, map[string]any{"Ann": 2.0, "Bo|b": 1.0}, doc.Profiles["name"]["top_frequencies"])
	assert.Equal(t, "unsupported storage kind", doc.Errors["blob"])

	assert.Less(t, strings.Index(out, `"age"`), strings.Index(out, `"name"`))
	assert.Less(t, strings.Index(out, `"name"`), strings.Index(out, `"active"`))
	assert.Less(t, strings.Index(out, `"min"`), strings.Index(out, `"max"`))
}

func TestWriteJSONNullMetrics(t *testing.T) {
	t.Parallel()

	set := profiling.NewProfileSet("empty.csv", 1)
	p, err := profiling.NewComputer(profiling.DefaultConfig()).
		Compute(profiling.NewColumn("x", profiling.KindFloat, nil), profiling.CategoryNumeric)
	require.NoError(t, err)
	set.Columns = []string{"x"}
	set.Profiles["x"] = profiling.ColumnProfile{Name: "x", Category: profiling.CategoryNumeric, Profile: p}

	out := render(t, set, FormatJSON)
	assert.Contains(t, out, `"mean": null`)
	assert.Contains(t, out, `"null_percentage": 100`)
	assert.NotContains(t, out, `"errors"`)
}

func TestWriteYAML(t *testing.T) {
	t.Parallel()

	out := render(t, sampleSet(t), FormatYAML)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "people.csv", doc["source"])

	profiles, ok := doc["profiles"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, profiles, 4)

	assert.Less(t, strings.Index(out, "\n  age:"), strings.Index(out, "\n  name:"))
	assert.Less(t, strings.Index(out, "\n  active:"), strings.Index(out, "\n  seen:"))
}

func TestWriteMarkdownAndHTML(t *testing.T) {
	t.Parallel()

	set := sampleSet(t)

	md := render(t, set, FormatMarkdown)
	assert.Contains(t, md, "# Profile: people.csv\n")
	assert.Contains(t, md, "| age | numeric | 3 | 1 | 25 | 2 |\n")
	assert.Contains(t, md, "## name (text)\n")
	assert.Contains(t, md, `| Bo\|b | 1 |`)
	assert.Contains(t, md, "- **blob**: unsupported storage kind\n")

	page := render(t, set, FormatHTML)
	assert.Contains(t, page, "<html")
	assert.Contains(t, page, "<title>Profile: people.csv</title>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<td>numeric</td>")
}

func TestWriteXLSX(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleSet(t), FormatXLSX))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Metrics", "Errors"}, f.GetSheetList())

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, summary, 5)
	assert.Equal(t, []string{"Column", "Type", "Count", "Null Count", "Null %", "Unique", "Duplicates"}, summary[0])
	assert.Equal(t, []string{"age", "numeric", "3", "1", "25", "2", "1"}, summary[1])

	metrics, err := f.GetRows("Metrics")
	require.NoError(t, err)
	assert.Contains(t, metrics, []string{"name", "top_frequencies", "Ann", "2"})
	assert.Contains(t, metrics, []string{"seen", "range", "", "36h0m0s"})

	errs, err := f.GetRows("Errors")
	require.NoError(t, err)
	assert.Equal(t, []string{"blob", "unsupported storage kind"}, errs[1])
}

func TestWriteRejectsBadInput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(Write(&buf, nil, FormatJSON)))
	assert.Equal(t, errors.CodeUnsupportedFormat, errors.GetCode(Write(&buf, sampleSet(t), Format("pdf"))))
}
