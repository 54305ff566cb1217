// Package report renders profile sets for people and for other programs.
package report

import (
	"encoding/json"
	"io"

	"github.com/goccy/go-yaml"

	"jprofile/domain/profiling"
	"jprofile/internal/errors"
)

// Write renders set to w in the given format
func Write(w io.Writer, set *profiling.ProfileSet, format Format) error {
	if set == nil {
		return errors.InvalidInput("profile set is nil")
	}

	switch format {
	case FormatText:
		return writeText(w, set)
	case FormatJSON:
		return writeJSON(w, set)
	case FormatYAML:
		return writeYAML(w, set)
	case FormatMarkdown:
		return writeMarkdown(w, set)
	case FormatHTML:
		return writeHTML(w, set)
	case FormatXLSX:
		return writeXLSX(w, set)
	}
	return errors.UnsupportedFormat(string(format))
}

func writeJSON(w io.Writer, set *profiling.ProfileSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(buildDocument(set)); err != nil {
		return errors.Wrap(err, "failed to encode JSON report")
	}
	return nil
}

func writeYAML(w io.Writer, set *profiling.ProfileSet) error {
	out, err := yaml.Marshal(buildDocument(set))
	if err != nil {
		return errors.Wrap(err, "failed to encode YAML report")
	}
	_, err = w.Write(out)
	return err
}
