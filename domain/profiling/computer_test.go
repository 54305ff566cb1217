package profiling

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compute(t *testing.T, col Column) *Profile {
	t.Helper()

	cat, err := Classify(col)
	require.NoError(t, err)

	p, err := NewComputer(DefaultConfig()).Compute(col, cat)
	require.NoError(t, err)
	require.Equal(t, cat, p.Category)

	return p
}

func TestComputeNumericAges(t *testing.T) {
	t.Parallel()

	col := NewColumn("age", KindInteger, 25, 34, 28, 45, 52, 19, 31, 25, 39, nil)
	p := compute(t, col)

	assert.Equal(t, 9, p.Count)
	assert.Equal(t, 1, p.NullCount)
	assert.InDelta(t, 10.0, p.NullPercentage, 1e-12)
	assert.Equal(t, 8, p.UniqueCount)
	assert.Equal(t, 1, p.DuplicateCount)

	m := p.Numeric
	require.NotNil(t, m)
	assert.Equal(t, 19.0, *m.Min)
	assert.Equal(t, 52.0, *m.Max)
	assert.Equal(t, 31.0, *m.Median)
	assert.Equal(t, 298.0, *m.Sum)
	assert.Equal(t, 33.0, *m.Range)
	assert.Equal(t, 25.0, *m.Q1)
	assert.Equal(t, 39.0, *m.Q3)
	assert.Equal(t, 14.0, *m.IQR)
	assert.InDelta(t, 298.0/9, *m.Mean, 1e-12)
	require.NotNil(t, m.Std)
	assert.InDelta(t, math.Sqrt(*m.Variance), *m.Std, 1e-12)
}

func TestComputeNumericSampleVariance(t *testing.T) {
	t.Parallel()

	p := compute(t, NewColumn("x", KindFloat, 2.0, 4.0, 4.0, 4.0, 5.0, 5.0, 7.0, 9.0))

	assert.InDelta(t, 5.0, *p.Numeric.Mean, 1e-12)
	assert.InDelta(t, 32.0/7, *p.Numeric.Variance, 1e-12)
	assert.InDelta(t, math.Sqrt(32.0/7), *p.Numeric.Std, 1e-12)
	assert.Equal(t, 4, p.UniqueCount)
	assert.Equal(t, 4, p.DuplicateCount)
}

func TestComputeNumericInterpolatedQuartiles(t *testing.T) {
	t.Parallel()

	p := compute(t, NewColumn("x", KindInteger, 4, 1, 3, 2))

	assert.Equal(t, 1.75, *p.Numeric.Q1)
	assert.Equal(t, 2.5, *p.Numeric.Median)
	assert.Equal(t, 3.25, *p.Numeric.Q3)
	assert.Equal(t, 1.5, *p.Numeric.IQR)
}

func TestComputeNumericSingleValue(t *testing.T) {
	t.Parallel()

	p := compute(t, NewColumn("x", KindInteger, nil, 7))

	m := p.Numeric
	assert.Equal(t, 1, p.Count)
	assert.Nil(t, m.Std)
	assert.Nil(t, m.Variance)
	assert.Equal(t, 7.0, *m.Mean)
	assert.Equal(t, 7.0, *m.Median)
	assert.Equal(t, 0.0, *m.Range)
}

func TestComputeNumericAllMissing(t *testing.T) {
	t.Parallel()

	p := compute(t, NewColumn("x", KindInteger, nil, nil))

	assert.Equal(t, 0, p.Count)
	assert.Equal(t, 2, p.NullCount)
	assert.Equal(t, 100.0, p.NullPercentage)
	assert.Equal(t, 0, p.UniqueCount)
	assert.Equal(t, 0, p.DuplicateCount)

	m := p.Numeric
	require.NotNil(t, m)
	assert.Nil(t, m.Min)
	assert.Nil(t, m.Max)
	assert.Nil(t, m.Mean)
	assert.Nil(t, m.Std)
	assert.Nil(t, m.Median)
	assert.Nil(t, m.Sum)
}

func TestComputeNumericNaNIsMissing(t *testing.T) {
	t.Parallel()

	p := compute(t, NewColumn("value", KindFloat, 10.5, math.NaN(), 10.5, float32(2)))

	assert.Equal(t, 3, p.Count)
	assert.Equal(t, 1, p.NullCount)
	assert.Equal(t, 2, p.UniqueCount)
	assert.Equal(t, 2.0, *p.Numeric.Min)
}

func TestComputeNumericMixedWidthsCompareNumerically(t *testing.T) {
	t.Parallel()

	p := compute(t, NewColumn("x", KindFloat, int64(1), 1.0, uint8(1), int32(2)))

	assert.Equal(t, 2, p.UniqueCount)
	assert.Equal(t, 2, p.DuplicateCount)
}

func TestComputeNumericWideIntegersStayDistinct(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		col    Column
		unique int
	}{
		"int64 above 2^53": {
			col:    NewColumn("id", KindInteger, int64(1<<53), int64(1<<53+1)),
			unique: 2,
		},
		"uint64 above MaxInt64": {
			col:    NewColumn("id", KindInteger, uint64(math.MaxUint64), uint64(math.MaxUint64-1)),
			unique: 2,
		},
		"exact float matches integer": {
			col:    NewColumn("id", KindFloat, int64(1<<53), float64(1<<53)),
			unique: 1,
		},
		"rounded float stays apart": {
			col:    NewColumn("id", KindFloat, int64(1<<53+1), float64(1<<53+1)),
			unique: 2,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p := compute(t, tc.col)
			assert.Equal(t, 2, p.Count)
			assert.Equal(t, tc.unique, p.UniqueCount)
			assert.Equal(t, 2-tc.unique, p.DuplicateCount)
		})
	}
}

func TestComputeNumericOrderingProperty(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	computer := NewComputer(DefaultConfig())

	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(40)
		values := make([]any, n)
		for j := range values {
			if rng.Float64() < 0.1 {
				continue
			}
			values[j] = rng.NormFloat64() * 100
		}

		col := NewColumn("x", KindFloat, values...)
		p, err := computer.Compute(col, CategoryNumeric)
		require.NoError(t, err)
		require.Equal(t, n, p.Count+p.NullCount)
		require.GreaterOrEqual(t, p.DuplicateCount, 0)

		if p.Count == 0 {
			continue
		}

		m := p.Numeric
		assert.LessOrEqual(t, *m.Min, *m.Q1)
		assert.LessOrEqual(t, *m.Q1, *m.Median)
		assert.LessOrEqual(t, *m.Median, *m.Q3)
		assert.LessOrEqual(t, *m.Q3, *m.Max)
		assert.Equal(t, *m.Max-*m.Min, *m.Range)
	}
}

func TestComputeBoolean(t *testing.T) {
	t.Parallel()

	p := compute(t, NewColumn("is_valid", KindBoolean, true, false, true, nil, false))

	assert.Equal(t, 4, p.Count)
	assert.Equal(t, 1, p.NullCount)
	assert.Equal(t, 2, p.UniqueCount)
	assert.Equal(t, 2, p.DuplicateCount)

	m := p.Boolean
	require.NotNil(t, m)
	assert.Equal(t, 2, m.TrueCount)
	assert.Equal(t, 2, m.FalseCount)
	assert.Equal(t, 50.0, m.TruePercentage)
	assert.Equal(t, 50.0, m.FalsePercentage)
}

func TestComputeBooleanPercentagesSumToHundred(t *testing.T) {
	t.Parallel()

	p := compute(t, NewColumn("flag", KindBoolean, true, true, false))

	m := p.Boolean
	assert.Equal(t, p.Count, m.TrueCount+m.FalseCount)
	assert.InDelta(t, 100.0, m.TruePercentage+m.FalsePercentage, 1e-9)
	assert.Equal(t, 1, p.DuplicateCount)
}

func TestComputeBooleanAllMissing(t *testing.T) {
	t.Parallel()

	p := compute(t, NewColumn("flag", KindBoolean, nil))

	assert.Equal(t, 0, p.Count)
	assert.Equal(t, 0.0, p.Boolean.TruePercentage)
	assert.Equal(t, 0.0, p.Boolean.FalsePercentage)
}

func TestComputeText(t *testing.T) {
	t.Parallel()

	p := compute(t, NewColumn("name", KindString, "", nil, "Alice", "Alice"))

	assert.Equal(t, 3, p.Count)
	assert.Equal(t, 1, p.NullCount)
	assert.Equal(t, 2, p.UniqueCount)
	assert.Equal(t, 1, p.DuplicateCount)

	m := p.Text
	require.NotNil(t, m)
	assert.Equal(t, 1, m.EmptyCount)
	assert.Equal(t, 0, *m.MinLength)
	assert.Equal(t, 5, *m.MaxLength)
	assert.InDelta(t, 10.0/3, *m.MeanLength, 1e-12)
	assert.Equal(t, []ValueCount{{"Alice", 2}, {"", 1}}, m.TopFrequencies)
}

func TestComputeTextLengthCountsCodePoints(t *testing.T) {
	t.Parallel()

	p := compute(t, NewColumn("city", KindString, "Zürich", "東京"))

	assert.Equal(t, 2, *p.Text.MinLength)
	assert.Equal(t, 6, *p.Text.MaxLength)
}

func TestComputeTextTopFrequencies(t *testing.T) {
	t.Parallel()

	col := NewColumn("letters", KindString, "a", "b", "c", "d", "e", "f", "g", "b", "g", "g")
	p := compute(t, col)

	assert.Equal(t, []ValueCount{
		{"g", 3},
		{"b", 2},
		{"a", 1},
		{"c", 1},
		{"d", 1},
	}, p.Text.TopFrequencies)

	for _, vc := range p.Text.TopFrequencies {
		assert.LessOrEqual(t, vc.Count, p.Count)
	}
}

func TestComputeTextTopFrequencyLimit(t *testing.T) {
	t.Parallel()

	col := NewColumn("letters", KindString, "x", "y", "y", "z")

	p, err := NewComputer(Config{TopFrequencyLimit: 2}).Compute(col, CategoryText)
	require.NoError(t, err)
	assert.Equal(t, []ValueCount{{"y", 2}, {"x", 1}}, p.Text.TopFrequencies)

	p, err = NewComputer(Config{}).Compute(col, CategoryText)
	require.NoError(t, err)
	assert.Len(t, p.Text.TopFrequencies, 3)
}

func TestComputeTextAllMissing(t *testing.T) {
	t.Parallel()

	p := compute(t, NewColumn("empty", KindNull, nil, nil, nil))

	assert.Equal(t, CategoryText, p.Category)
	assert.Equal(t, 0, p.Count)
	assert.Equal(t, 0, p.Text.EmptyCount)
	assert.Nil(t, p.Text.MinLength)
	assert.Nil(t, p.Text.MaxLength)
	assert.Nil(t, p.Text.MeanLength)
	assert.Empty(t, p.Text.TopFrequencies)
}

func TestComputeTemporal(t *testing.T) {
	t.Parallel()

	jan := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	apr := time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC)
	jul := time.Date(2023, time.July, 12, 0, 0, 0, 0, time.UTC)

	p := compute(t, NewColumn("date", KindDate, apr, jan, nil, jul, apr))

	assert.Equal(t, 4, p.Count)
	assert.Equal(t, 1, p.NullCount)
	assert.Equal(t, 3, p.UniqueCount)
	assert.Equal(t, 1, p.DuplicateCount)

	m := p.Temporal
	require.NotNil(t, m)
	assert.True(t, m.Min.Equal(jan))
	assert.True(t, m.Max.Equal(jul))
	assert.Equal(t, m.Max.Sub(*m.Min), *m.Range)
	assert.GreaterOrEqual(t, *m.Range, time.Duration(0))
}

func TestComputeTemporalRangeTooWide(t *testing.T) {
	t.Parallel()

	first := time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

	p := compute(t, NewColumn("date", KindDate, last, first))

	m := p.Temporal
	assert.True(t, m.Min.Equal(first))
	assert.True(t, m.Max.Equal(last))
	assert.Nil(t, m.Range)

	near := time.Date(2200, time.January, 1, 0, 0, 0, 0, time.UTC)
	p = compute(t, NewColumn("date", KindDate, last, near))
	require.NotNil(t, p.Temporal.Range)
	assert.True(t, last.Add(*p.Temporal.Range).Equal(near))
}

func TestComputeTemporalSameInstantAcrossZones(t *testing.T) {
	t.Parallel()

	utc := time.Date(2023, time.May, 1, 12, 0, 0, 0, time.UTC)
	local := utc.In(time.FixedZone("UTC+2", 2*60*60))

	p := compute(t, NewColumn("at", KindDateTime, utc, local))

	assert.Equal(t, 1, p.UniqueCount)
	assert.Equal(t, time.Duration(0), *p.Temporal.Range)
}

func TestComputeTemporalEmpty(t *testing.T) {
	t.Parallel()

	p := compute(t, NewColumn("at", KindDateTime))

	assert.Equal(t, 0, p.Count)
	assert.Equal(t, 0.0, p.NullPercentage)
	assert.Nil(t, p.Temporal.Min)
	assert.Nil(t, p.Temporal.Max)
	assert.Nil(t, p.Temporal.Range)
}

func TestComputeCategoryMismatch(t *testing.T) {
	t.Parallel()

	computer := NewComputer(DefaultConfig())

	tcs := map[string]struct {
		column   Column
		category Category
	}{
		"numeric column as text": {
			column:   NewColumn("age", KindInteger, 1, 2),
			category: CategoryText,
		},
		"text column as numeric": {
			column:   NewColumn("name", KindString, "a"),
			category: CategoryNumeric,
		},
		"value of wrong type": {
			column:   NewColumn("age", KindInteger, 1, "two"),
			category: CategoryNumeric,
		},
		"non bool in boolean column": {
			column:   NewColumn("flag", KindBoolean, true, 1),
			category: CategoryBoolean,
		},
		"non time in temporal column": {
			column:   NewColumn("at", KindDate, "2023-01-01"),
			category: CategoryTemporal,
		},
		"invalid category": {
			column:   NewColumn("age", KindInteger, 1),
			category: Category(42),
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := computer.Compute(tc.column, tc.category)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCategoryMismatch)
		})
	}
}

func TestComputeUnsupportedKind(t *testing.T) {
	t.Parallel()

	_, err := NewComputer(DefaultConfig()).Compute(NewColumn("blob", KindBinary, []byte("x")), CategoryText)
	assert.ErrorIs(t, err, ErrUnsupportedStorageKind)
}

func TestComputeUntypedColumnAcceptsAnyCategory(t *testing.T) {
	t.Parallel()

	computer := NewComputer(DefaultConfig())
	col := NewColumn("empty", KindNull, nil, nil)

	for _, cat := range Categories {
		p, err := computer.Compute(col, cat)
		require.NoError(t, err)
		assert.Equal(t, 2, p.NullCount)
		assert.Len(t, p.Metrics(), len(MetricNames(cat)))
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	t.Parallel()

	computer := NewComputer(DefaultConfig())
	col := NewColumn("value", KindFloat, 10.5, 20.3, nil, 40.1, 50.2, 60.7, 35.8, 42.0, 10.5, 30.6)
	before := append([]any(nil), col.Values...)

	first, err := computer.Compute(col, CategoryNumeric)
	require.NoError(t, err)
	second, err := computer.Compute(col, CategoryNumeric)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, before, col.Values)
}
