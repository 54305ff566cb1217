package report

import (
	"strings"

	"jprofile/internal/errors"
)

// Format names an output rendering of a profile set
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatXLSX     Format = "xlsx"
)

var formatAliases = map[string]Format{
	"text":     FormatText,
	"txt":      FormatText,
	"json":     FormatJSON,
	"yaml":     FormatYAML,
	"yml":      FormatYAML,
	"markdown": FormatMarkdown,
	"md":       FormatMarkdown,
	"html":     FormatHTML,
	"xlsx":     FormatXLSX,
	"excel":    FormatXLSX,
}

// Formats returns the canonical format names
func Formats() []string {
	return []string{
		string(FormatText), string(FormatJSON), string(FormatYAML),
		string(FormatMarkdown), string(FormatHTML), string(FormatXLSX),
	}
}

// ParseFormat resolves a format name or alias, ignoring case
func ParseFormat(s string) (Format, error) {
	if f, ok := formatAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return f, nil
	}
	return "", errors.UnsupportedFormat(s)
}

// ContentType returns the MIME type served for the format
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Extension returns the file extension used when saving the format
func (f Format) Extension() string {
	switch f {
	case FormatText:
		return ".txt"
	case FormatMarkdown:
		return ".md"
	default:
		return "." + string(f)
	}
}

// Binary reports whether the format is unsuitable for a terminal
func (f Format) Binary() bool {
	return f == FormatXLSX
}
