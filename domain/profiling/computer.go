package profiling

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// DefaultTopFrequencyLimit is the number of entries kept in a text column's
// frequency table when no limit is configured.
const DefaultTopFrequencyLimit = 5

// Config controls the Profile Computer.
type Config struct {
	// TopFrequencyLimit caps the text frequency table. Values < 1 use
	// DefaultTopFrequencyLimit.
	TopFrequencyLimit int `json:"top_frequency_limit"`
}

// DefaultConfig returns the default computer configuration.
func DefaultConfig() Config {
	return Config{TopFrequencyLimit: DefaultTopFrequencyLimit}
}

// Computer computes category profiles. It holds no state besides its
// configuration and is safe for concurrent use.
type Computer struct {
	config Config
}

// NewComputer creates a computer with the given configuration.
func NewComputer(config Config) *Computer {
	if config.TopFrequencyLimit < 1 {
		config.TopFrequencyLimit = DefaultTopFrequencyLimit
	}
	return &Computer{config: config}
}

// Config returns the effective configuration.
func (c *Computer) Config() Config {
	return c.config
}

// Compute returns the profile of col for category cat. Missing values only
// feed the null metrics. Empty samples yield default metric values rather than
// errors; the only failures are a category the column cannot satisfy and an
// unsupported storage kind. col is never modified.
func (c *Computer) Compute(col Column, cat Category) (*Profile, error) {
	if err := checkCategory(col, cat); err != nil {
		return nil, err
	}

	total := col.Len()
	present := col.Present()

	p := &Profile{
		Category:  cat,
		Count:     len(present),
		NullCount: total - len(present),
	}
	if total > 0 {
		p.NullPercentage = float64(p.NullCount) / float64(total) * 100
	}

	var err error
	switch cat {
	case CategoryNumeric:
		p.Numeric, p.UniqueCount, err = c.numeric(col, cat, present)
	case CategoryBoolean:
		p.Boolean, p.UniqueCount, err = c.boolean(col, cat, present)
	case CategoryText:
		p.Text, p.UniqueCount = c.text(present)
	case CategoryTemporal:
		p.Temporal, p.UniqueCount, err = c.temporal(col, cat, present)
	default:
		return nil, categoryMismatch(col, cat, "invalid category")
	}
	if err != nil {
		return nil, err
	}

	p.DuplicateCount = p.Count - p.UniqueCount

	return p, nil
}

// checkCategory verifies cat agrees with the category of the declared kind.
// Kinds that carry no type information accept any category.
func checkCategory(col Column, cat Category) error {
	if !cat.Valid() {
		return categoryMismatch(col, cat, "invalid category")
	}

	expected, ok := categoryForKind(col.Kind)
	if !ok {
		return unsupportedKind(col)
	}

	if expected != cat && !kindCarriesNoType(col.Kind) {
		return categoryMismatch(col, cat, fmt.Sprintf("kind classifies as %s", expected))
	}

	return nil
}

func (c *Computer) numeric(col Column, cat Category, present []any) (*NumericMetrics, int, error) {
	sample := make([]float64, 0, len(present))
	distinct := make(map[any]struct{}, len(present))

	for i, v := range present {
		f, ok := toFloat(v)
		if !ok {
			return nil, 0, categoryMismatch(col, cat, fmt.Sprintf("present value %d is %T", i, v))
		}
		sample = append(sample, f)
		distinct[distinctKey(v, f)] = struct{}{}
	}

	m := &NumericMetrics{}
	if len(sample) == 0 {
		return m, 0, nil
	}

	minV, err := stats.Min(sample)
	if err != nil {
		return nil, 0, err
	}
	maxV, err := stats.Max(sample)
	if err != nil {
		return nil, 0, err
	}
	sum, err := stats.Sum(sample)
	if err != nil {
		return nil, 0, err
	}

	sorted := slices.Clone(sample)
	slices.Sort(sorted)

	q1 := percentile(sorted, 0.25)
	median := percentile(sorted, 0.5)
	q3 := percentile(sorted, 0.75)

	m.Min = ptr(minV)
	m.Max = ptr(maxV)
	m.Sum = ptr(sum)
	m.Range = ptr(maxV - minV)
	m.Mean = ptr(stat.Mean(sample, nil))
	m.Median = ptr(median)
	m.Q1 = ptr(q1)
	m.Q3 = ptr(q3)
	m.IQR = ptr(q3 - q1)

	if len(sample) >= 2 {
		_, variance := stat.MeanVariance(sample, nil)
		m.Variance = ptr(variance)
		m.Std = ptr(math.Sqrt(variance))
	}

	return m, len(distinct), nil
}

func (c *Computer) boolean(col Column, cat Category, present []any) (*BooleanMetrics, int, error) {
	m := &BooleanMetrics{}

	for i, v := range present {
		b, ok := v.(bool)
		if !ok {
			return nil, 0, categoryMismatch(col, cat, fmt.Sprintf("present value %d is %T", i, v))
		}
		if b {
			m.TrueCount++
		} else {
			m.FalseCount++
		}
	}

	unique := 0
	if m.TrueCount > 0 {
		unique++
	}
	if m.FalseCount > 0 {
		unique++
	}

	if n := len(present); n > 0 {
		m.TruePercentage = float64(m.TrueCount) / float64(n) * 100
		m.FalsePercentage = float64(m.FalseCount) / float64(n) * 100
	}

	return m, unique, nil
}

func (c *Computer) text(present []any) (*TextMetrics, int) {
	m := &TextMetrics{TopFrequencies: []ValueCount{}}

	counts := make(map[string]int, len(present))
	var order []string
	totalLength := 0

	for _, v := range present {
		s := toText(v)
		n := utf8.RuneCountInString(s)

		if n == 0 {
			m.EmptyCount++
		}
		if m.MinLength == nil || n < *m.MinLength {
			m.MinLength = ptr(n)
		}
		if m.MaxLength == nil || n > *m.MaxLength {
			m.MaxLength = ptr(n)
		}
		totalLength += n

		if _, seen := counts[s]; !seen {
			order = append(order, s)
		}
		counts[s]++
	}

	if len(present) > 0 {
		m.MeanLength = ptr(float64(totalLength) / float64(len(present)))
	}

	// order is first-seen order; a stable sort keeps it for equal counts.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > c.config.TopFrequencyLimit {
		order = order[:c.config.TopFrequencyLimit]
	}
	for _, s := range order {
		m.TopFrequencies = append(m.TopFrequencies, ValueCount{Value: s, Count: counts[s]})
	}

	return m, len(counts)
}

type instant struct {
	sec  int64
	nsec int
}

func (c *Computer) temporal(col Column, cat Category, present []any) (*TemporalMetrics, int, error) {
	m := &TemporalMetrics{}
	distinct := make(map[instant]struct{}, len(present))

	var minT, maxT time.Time
	for i, v := range present {
		t, ok := v.(time.Time)
		if !ok {
			return nil, 0, categoryMismatch(col, cat, fmt.Sprintf("present value %d is %T", i, v))
		}
		distinct[instant{t.Unix(), t.Nanosecond()}] = struct{}{}

		if i == 0 || t.Before(minT) {
			minT = t
		}
		if i == 0 || t.After(maxT) {
			maxT = t
		}
	}

	if len(present) > 0 {
		m.Min = ptr(minT)
		m.Max = ptr(maxT)
		// Sub saturates for spans near 292 years; such a range is undefined.
		if d := maxT.Sub(minT); minT.Add(d).Equal(maxT) {
			m.Range = ptr(d)
		}
	}

	return m, len(distinct), nil
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}

// distinctKey returns the value distinct counting compares. Integers keep
// their exact value so wide IDs stay apart after the float64 conversion;
// integral floats share the integer key when the conversion is exact.
func distinctKey(v any, f float64) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint:
		return unsignedKey(uint64(x))
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return unsignedKey(x)
	}

	switch {
	case f != math.Trunc(f):
	case f >= -(1<<63) && f < 1<<63:
		return int64(f)
	case f >= 0 && f < 1<<64:
		return uint64(f)
	}
	return f
}

func unsignedKey(u uint64) any {
	if u <= math.MaxInt64 {
		return int64(u)
	}
	return u
}

func toText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
