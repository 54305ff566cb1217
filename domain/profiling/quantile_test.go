package profiling

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		sorted   []float64
		p        float64
		expected float64
	}{
		"single value":          {[]float64{7}, 0.25, 7},
		"exact order statistic": {[]float64{1, 2, 3, 4, 5}, 0.5, 3},
		"lower quartile blend":  {[]float64{1, 2, 3, 4}, 0.25, 1.75},
		"median blend":          {[]float64{1, 2, 3, 4}, 0.5, 2.5},
		"upper quartile blend":  {[]float64{1, 2, 3, 4}, 0.75, 3.25},
		"minimum":               {[]float64{-3, 0, 10}, 0, -3},
		"maximum":               {[]float64{-3, 0, 10}, 1, 10},
		"repeated values":       {[]float64{25, 25, 25}, 0.6, 25},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tc.expected, percentile(tc.sorted, tc.p), 1e-12)
		})
	}
}

func TestPercentileEmpty(t *testing.T) {
	t.Parallel()
	assert.True(t, math.IsNaN(percentile(nil, 0.5)))
}

func TestLerpIsExactAtEndpoints(t *testing.T) {
	t.Parallel()

	a, b := 0.1, 0.7
	assert.Equal(t, a, lerp(a, b, 0))
	assert.Equal(t, b, lerp(a, b, 1))
}
