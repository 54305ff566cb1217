package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"

	"jprofile/domain/profiling"
)

// field is one key of an orderedMap
type field struct {
	Key   string
	Value any
}

// orderedMap keeps keys in insertion order when encoded as JSON or YAML
type orderedMap []field

func (m orderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m orderedMap) MarshalYAML() (any, error) {
	slice := make(yaml.MapSlice, len(m))
	for i, f := range m {
		slice[i] = yaml.MapItem{Key: f.Key, Value: f.Value}
	}
	return slice, nil
}

// buildDocument shapes a profile set for the structured formats. Columns keep
// dataset order and every profile carries its category's full key set.
func buildDocument(set *profiling.ProfileSet) orderedMap {
	profiles := make(orderedMap, 0, len(set.Columns))
	for _, cp := range set.Ordered() {
		profiles = append(profiles, field{cp.Name, profileDocument(cp.Profile)})
	}

	doc := orderedMap{
		{"id", set.ID.String()},
		{"source", set.Source},
		{"row_count", set.RowCount},
		{"computed_at", set.ComputedAt.String()},
		{"duration_ms", set.DurationMs},
		{"profiles", profiles},
	}

	if len(set.Errors) > 0 {
		errs := make(orderedMap, 0, len(set.Errors))
		for _, name := range set.Columns {
			if msg, ok := set.Errors[name]; ok {
				errs = append(errs, field{name, msg})
			}
		}
		doc = append(doc, field{"errors", errs})
	}

	return doc
}

func profileDocument(p *profiling.Profile) orderedMap {
	metrics := p.Metrics()
	out := make(orderedMap, 0, len(metrics)+1)
	out = append(out, field{"type", p.Category.String()})
	for _, m := range metrics {
		out = append(out, field{m.Name, documentValue(m.Value)})
	}
	return out
}

// documentValue converts metric values to JSON and YAML friendly scalars
func documentValue(v any) any {
	switch v := v.(type) {
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case time.Duration:
		return v.String()
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return strconv.FormatFloat(v, 'g', -1, 64)
		}
		return v
	case []profiling.ValueCount:
		table := make(orderedMap, len(v))
		for i, vc := range v {
			table[i] = field{vc.Value, vc.Count}
		}
		return table
	}
	return v
}

// formatValue renders a metric value for human readable formats. Floats are
// rounded to two decimals.
func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case float64:
		return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case time.Time:
		if v.Location() == time.UTC {
			return v.Format(time.DateTime)
		}
		return v.Format(time.DateTime + " -07:00")
	case time.Duration:
		return v.String()
	case string:
		return v
	}
	return fmt.Sprint(v)
}
