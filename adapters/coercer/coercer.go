package coercer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"jprofile/domain/profiling"
)

var (
	dateFormats = []string{
		"2006-01-02",
		"2006/01/02",
		"01/02/2006",
		"01-02-2006",
		"01-02-06",
		"01/02/06",
		"1/2/06",
		"1/2/2006",
		"02-Jan-2006",
	}

	dateTimeFormats = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05Z07:00",
		"01/02/2006 15:04",
		"01/02/2006 15:04:05",
	}
)

// TypeCoercer decides the declared storage kind of raw text columns and
// converts their cells to typed values. It runs once at load time so the
// classifier never has to look at values.
type TypeCoercer struct {
	config  CoercionConfig
	missing map[string]struct{}
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	MissingValues []string `json:"missing_values"` // Cell tokens read as missing
	KindThreshold float64  `json:"kind_threshold"` // Share of present cells that must parse as a kind
	TrimSpace     bool     `json:"trim_space"`     // Trim cells before parsing
}

// DefaultCoercionConfig returns strict defaults: every present cell must parse
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		MissingValues: []string{"", "NA", "N/A", "null", "NULL", "NaN", "nan", "None"},
		KindThreshold: 1.0,
		TrimSpace:     true,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	if config.KindThreshold <= 0 || config.KindThreshold > 1 {
		config.KindThreshold = 1.0
	}

	missing := make(map[string]struct{}, len(config.MissingValues))
	for _, token := range config.MissingValues {
		missing[token] = struct{}{}
	}

	return &TypeCoercer{config: config, missing: missing}
}

// IsMissing reports whether a raw cell is a missing-value token
func (c *TypeCoercer) IsMissing(raw string) bool {
	_, ok := c.missing[c.clean(raw)]
	return ok
}

// TypeAnalysis contains the results of type distribution analysis
type TypeAnalysis struct {
	TotalCount    int     `json:"total_count"`
	ValidCount    int     `json:"valid_count"`
	IntegerCount  int     `json:"integer_count"`
	FloatCount    int     `json:"float_count"` // includes integers
	BooleanCount  int     `json:"boolean_count"`
	DateCount     int     `json:"date_count"`
	DateTimeCount int     `json:"datetime_count"` // includes dates
	LeadingZeros  bool    `json:"leading_zeros"`
	IntegerRatio  float64 `json:"integer_ratio"`
	FloatRatio    float64 `json:"float_ratio"`
	BooleanRatio  float64 `json:"boolean_ratio"`
	DateRatio     float64 `json:"date_ratio"`
	DateTimeRatio float64 `json:"datetime_ratio"`

	RecommendedKind profiling.StorageKind `json:"recommended_kind"`
}

// AnalyzeTypeDistribution counts how many present cells parse as each kind
// and recommends a storage kind
func (c *TypeCoercer) AnalyzeTypeDistribution(raw []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(raw)}

	for _, cell := range raw {
		if c.IsMissing(cell) {
			continue
		}
		s := c.clean(cell)
		analysis.ValidCount++

		if _, ok := ParseInt(s); ok {
			analysis.IntegerCount++
			analysis.FloatCount++
			if hasLeadingZeros(s) {
				analysis.LeadingZeros = true
			}
		} else if _, ok := ParseFloat(s); ok {
			analysis.FloatCount++
		}

		if _, ok := ParseBool(s); ok {
			analysis.BooleanCount++
		}

		if _, ok := ParseDate(s); ok {
			analysis.DateCount++
			analysis.DateTimeCount++
		} else if _, ok := ParseDateTime(s); ok {
			analysis.DateTimeCount++
		}
	}

	if analysis.ValidCount > 0 {
		n := float64(analysis.ValidCount)
		analysis.IntegerRatio = float64(analysis.IntegerCount) / n
		analysis.FloatRatio = float64(analysis.FloatCount) / n
		analysis.BooleanRatio = float64(analysis.BooleanCount) / n
		analysis.DateRatio = float64(analysis.DateCount) / n
		analysis.DateTimeRatio = float64(analysis.DateTimeCount) / n
	}

	analysis.RecommendedKind = c.determineRecommendedKind(analysis)

	return analysis
}

// InferKind returns the storage kind for a raw column
func (c *TypeCoercer) InferKind(raw []string) profiling.StorageKind {
	return c.AnalyzeTypeDistribution(raw).RecommendedKind
}

// determineRecommendedKind chooses the narrowest kind meeting the threshold.
// Integers written with leading zeros are identifiers, not numbers.
func (c *TypeCoercer) determineRecommendedKind(analysis TypeAnalysis) profiling.StorageKind {
	if analysis.ValidCount == 0 {
		return profiling.KindNull
	}

	t := c.config.KindThreshold
	switch {
	case analysis.LeadingZeros:
		return profiling.KindString
	case analysis.IntegerRatio >= t:
		return profiling.KindInteger
	case analysis.FloatRatio >= t:
		return profiling.KindFloat
	case analysis.BooleanRatio >= t:
		return profiling.KindBoolean
	case analysis.DateRatio >= t:
		return profiling.KindDate
	case analysis.DateTimeRatio >= t:
		return profiling.KindDateTime
	}

	return profiling.KindString
}

// Materialize converts raw cells to values of the given kind. Missing tokens,
// and cells that do not parse as the kind, become nil.
func (c *TypeCoercer) Materialize(raw []string, kind profiling.StorageKind) []any {
	values := make([]any, len(raw))

	for i, cell := range raw {
		if c.IsMissing(cell) {
			continue
		}
		values[i] = c.CoerceValue(cell, kind)
	}

	return values
}

// CoerceValue converts a single present cell. It returns nil when the cell
// does not parse as kind.
func (c *TypeCoercer) CoerceValue(cell string, kind profiling.StorageKind) any {
	s := c.clean(cell)

	switch kind {
	case profiling.KindInteger:
		if v, ok := ParseInt(s); ok {
			return v
		}
	case profiling.KindFloat:
		if v, ok := ParseFloat(s); ok {
			return v
		}
	case profiling.KindBoolean:
		if v, ok := ParseBool(s); ok {
			return v
		}
	case profiling.KindDate, profiling.KindDateTime:
		if v, ok := ParseDate(s); ok {
			return v
		}
		if v, ok := ParseDateTime(s); ok {
			return v
		}
	case profiling.KindNull:
		return nil
	default:
		return s
	}

	return nil
}

// Column builds a typed column from raw cells, inferring the kind
func (c *TypeCoercer) Column(name string, raw []string) profiling.Column {
	kind := c.InferKind(raw)
	return profiling.Column{Name: name, Kind: kind, Values: c.Materialize(raw, kind)}
}

func (c *TypeCoercer) clean(s string) string {
	if c.config.TrimSpace {
		return strings.TrimSpace(s)
	}
	return s
}

// hasLeadingZeros checks if a valid integer value contains leading zeros.
// This is often an indicator that this is not an integer, but an identifier.
func hasLeadingZeros(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0'
}

// ParseInt parses a base-10 integer
func ParseInt(s string) (int64, bool) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

// ParseFloat parses a finite decimal number
func ParseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ParseBool accepts true and false in any letter case
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// ParseDate parses a calendar date without a time of day
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateFormats {
		if v, err := time.Parse(layout, s); err == nil {
			return v, true
		}
	}
	return time.Time{}, false
}

// ParseDateTime parses a date with a time of day
func ParseDateTime(s string) (time.Time, bool) {
	for _, layout := range dateTimeFormats {
		if v, err := time.Parse(layout, s); err == nil {
			return v, true
		}
	}
	return time.Time{}, false
}
