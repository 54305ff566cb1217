package profiling

import "math"

// percentile returns the p-th quantile (0 <= p <= 1) of an ascending sample
// using linear interpolation at rank p*(n-1).
//
// The blend is evaluated from whichever neighbour is closer, which is the
// formula NumPy's "linear" method uses, so results agree bit for bit on the
// same inputs.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}

	rank := p * float64(n-1)
	lo := math.Floor(rank)
	hi := math.Ceil(rank)
	t := rank - lo

	a := sorted[int(lo)]
	b := sorted[int(hi)]

	return lerp(a, b, t)
}

func lerp(a, b, t float64) float64 {
	diff := b - a
	if t >= 0.5 {
		return b - diff*(1-t)
	}
	return a + diff*t
}
