package analysis

import "math"

// accumulator tracks count, mean, variance and bounds in one pass (Welford).
type accumulator struct {
	n    int
	mean float64
	m2   float64
	min  float64
	max  float64
}

func (a *accumulator) add(x float64) {
	a.n++
	if a.n == 1 {
		a.min, a.max = x, x
	} else {
		a.min = math.Min(a.min, x)
		a.max = math.Max(a.max, x)
	}
	delta := x - a.mean
	a.mean += delta / float64(a.n)
	a.m2 += delta * (x - a.mean)
}

// summary uses the sample standard deviation, matching pandas' describe().
func (a *accumulator) summary() Summary {
	s := Summary{Count: a.n, Mean: a.mean, Min: a.min, Max: a.max}
	if a.n > 1 {
		s.Std = math.Sqrt(a.m2 / float64(a.n-1))
	}
	return s
}
