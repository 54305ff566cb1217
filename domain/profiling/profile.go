package profiling

import (
	"time"
)

// Profile is the metric set computed for one column. Exactly one of the
// category-specific blocks is set, matching Category.
type Profile struct {
	Category       Category `json:"type"`
	Count          int      `json:"count"`
	NullCount      int      `json:"null_count"`
	NullPercentage float64  `json:"null_percentage"`
	UniqueCount    int      `json:"unique_count"`
	DuplicateCount int      `json:"duplicate_count"`

	Numeric  *NumericMetrics  `json:"numeric,omitempty"`
	Boolean  *BooleanMetrics  `json:"boolean,omitempty"`
	Text     *TextMetrics     `json:"text,omitempty"`
	Temporal *TemporalMetrics `json:"temporal,omitempty"`
}

// NumericMetrics holds the numeric family. Nil fields are undefined for the
// sample (empty sample, or fewer than two values for Std and Variance).
type NumericMetrics struct {
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
	Sum      *float64 `json:"sum"`
	Range    *float64 `json:"range"`
	Mean     *float64 `json:"mean"`
	Median   *float64 `json:"median"`
	Std      *float64 `json:"std"`
	Variance *float64 `json:"variance"`
	Q1       *float64 `json:"q1"`
	Q3       *float64 `json:"q3"`
	IQR      *float64 `json:"iqr"`
}

// BooleanMetrics holds the boolean family. Percentages are relative to the
// present values and are 0 when there are none.
type BooleanMetrics struct {
	TrueCount       int     `json:"true_count"`
	FalseCount      int     `json:"false_count"`
	TruePercentage  float64 `json:"true_percentage"`
	FalsePercentage float64 `json:"false_percentage"`
}

// TextMetrics holds the text family. Lengths count Unicode code points.
type TextMetrics struct {
	EmptyCount     int          `json:"empty_count"`
	MinLength      *int         `json:"min_length"`
	MaxLength      *int         `json:"max_length"`
	MeanLength     *float64     `json:"mean_length"`
	TopFrequencies []ValueCount `json:"top_frequencies"`
}

// ValueCount is one entry of a frequency table.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// TemporalMetrics holds the temporal family. Range is nil when the span does
// not fit a time.Duration (about 292 years).
type TemporalMetrics struct {
	Min   *time.Time     `json:"min"`
	Max   *time.Time     `json:"max"`
	Range *time.Duration `json:"range"`
}

// Metric is a single named metric value.
type Metric struct {
	Name  string
	Value any
}

// Metric names.
const (
	MetricCount          = "count"
	MetricNullCount      = "null_count"
	MetricNullPercentage = "null_percentage"
	MetricUniqueCount    = "unique_count"
	MetricDuplicateCount = "duplicate_count"

	MetricMin      = "min"
	MetricMax      = "max"
	MetricSum      = "sum"
	MetricRange    = "range"
	MetricMean     = "mean"
	MetricMedian   = "median"
	MetricStd      = "std"
	MetricVariance = "variance"
	MetricQ1       = "q1"
	MetricQ3       = "q3"
	MetricIQR      = "iqr"

	MetricTrueCount       = "true_count"
	MetricFalseCount      = "false_count"
	MetricTruePercentage  = "true_percentage"
	MetricFalsePercentage = "false_percentage"

	MetricEmptyCount     = "empty_count"
	MetricMinLength      = "min_length"
	MetricMaxLength      = "max_length"
	MetricMeanLength     = "mean_length"
	MetricTopFrequencies = "top_frequencies"
)

// MetricNames returns the fixed, ordered key set of a category's profile.
func MetricNames(cat Category) []string {
	names := []string{MetricCount, MetricNullCount, MetricNullPercentage, MetricUniqueCount, MetricDuplicateCount}

	switch cat {
	case CategoryNumeric:
		names = append(names, MetricMin, MetricMax, MetricSum, MetricRange, MetricMean, MetricMedian,
			MetricStd, MetricVariance, MetricQ1, MetricQ3, MetricIQR)
	case CategoryBoolean:
		names = append(names, MetricTrueCount, MetricFalseCount, MetricTruePercentage, MetricFalsePercentage)
	case CategoryText:
		names = append(names, MetricEmptyCount, MetricMinLength, MetricMaxLength, MetricMeanLength, MetricTopFrequencies)
	case CategoryTemporal:
		names = append(names, MetricMin, MetricMax, MetricRange)
	}

	return names
}

// Metrics returns the profile's metrics in key-set order. Undefined values
// are untyped nil.
func (p *Profile) Metrics() []Metric {
	metrics := []Metric{
		{MetricCount, p.Count},
		{MetricNullCount, p.NullCount},
		{MetricNullPercentage, p.NullPercentage},
		{MetricUniqueCount, p.UniqueCount},
		{MetricDuplicateCount, p.DuplicateCount},
	}

	switch p.Category {
	case CategoryNumeric:
		m := p.Numeric
		if m == nil {
			m = &NumericMetrics{}
		}
		metrics = append(metrics,
			Metric{MetricMin, deref(m.Min)},
			Metric{MetricMax, deref(m.Max)},
			Metric{MetricSum, deref(m.Sum)},
			Metric{MetricRange, deref(m.Range)},
			Metric{MetricMean, deref(m.Mean)},
			Metric{MetricMedian, deref(m.Median)},
			Metric{MetricStd, deref(m.Std)},
			Metric{MetricVariance, deref(m.Variance)},
			Metric{MetricQ1, deref(m.Q1)},
			Metric{MetricQ3, deref(m.Q3)},
			Metric{MetricIQR, deref(m.IQR)},
		)
	case CategoryBoolean:
		m := p.Boolean
		if m == nil {
			m = &BooleanMetrics{}
		}
		metrics = append(metrics,
			Metric{MetricTrueCount, m.TrueCount},
			Metric{MetricFalseCount, m.FalseCount},
			Metric{MetricTruePercentage, m.TruePercentage},
			Metric{MetricFalsePercentage, m.FalsePercentage},
		)
	case CategoryText:
		m := p.Text
		if m == nil {
			m = &TextMetrics{}
		}
		top := make([]ValueCount, len(m.TopFrequencies))
		copy(top, m.TopFrequencies)
		metrics = append(metrics,
			Metric{MetricEmptyCount, m.EmptyCount},
			Metric{MetricMinLength, deref(m.MinLength)},
			Metric{MetricMaxLength, deref(m.MaxLength)},
			Metric{MetricMeanLength, deref(m.MeanLength)},
			Metric{MetricTopFrequencies, top},
		)
	case CategoryTemporal:
		m := p.Temporal
		if m == nil {
			m = &TemporalMetrics{}
		}
		metrics = append(metrics,
			Metric{MetricMin, deref(m.Min)},
			Metric{MetricMax, deref(m.Max)},
			Metric{MetricRange, deref(m.Range)},
		)
	}

	return metrics
}

// ToMap returns the dictionary-shaped export of the profile: "type" plus every
// metric key. Frequency tables become map[string]int.
func (p *Profile) ToMap() map[string]any {
	out := map[string]any{"type": p.Category.String()}
	for _, m := range p.Metrics() {
		if top, ok := m.Value.([]ValueCount); ok {
			table := make(map[string]int, len(top))
			for _, vc := range top {
				table[vc.Value] = vc.Count
			}
			out[m.Name] = table
			continue
		}
		out[m.Name] = m.Value
	}
	return out
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func ptr[T any](v T) *T {
	return &v
}
