package dudect

import "math"

// runningStats accumulates mean and variance online via Welford's
// algorithm, avoiding the numerical instability of a naive
// sum-of-squares approach over potentially hundreds of thousands of
// samples. Grounded on original_source/src/dudect.rs's Stats<f64>,
// generalized from its two-field mean/std_dev snapshot into the
// incremental form needed to keep accepting samples indefinitely.
type runningStats struct {
	count  uint64
	mean   float64
	m2     float64
}

func (s *runningStats) push(x float64) {
	s.count++
	delta := x - s.mean
	s.mean += delta / float64(s.count)
	delta2 := x - s.mean
	s.m2 += delta * delta2
}

func (s *runningStats) variance() float64 {
	if s.count < 2 {
		return 0
	}
	return s.m2 / float64(s.count-1)
}

func (s *runningStats) stdDev() float64 {
	return math.Sqrt(s.variance())
}

// welchT computes the Welch's t-statistic between two independent
// samples of unequal variance. Each side uses its own mean and standard
// deviation; see the package doc for why that matters.
func welchT(a, b *runningStats) float64 {
	if a.count == 0 || b.count == 0 {
		return 0
	}
	varA := a.variance() / float64(a.count)
	varB := b.variance() / float64(b.count)
	denom := math.Sqrt(varA + varB)
	if denom == 0 {
		// Neither side varies (the interpreter is deterministic), so any
		// difference in means is exact: report it as an infinite t.
		switch {
		case a.mean > b.mean:
			return math.Inf(1)
		case a.mean < b.mean:
			return math.Inf(-1)
		}
		return 0
	}
	return (a.mean - b.mean) / denom
}
