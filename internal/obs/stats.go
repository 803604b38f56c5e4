package obs

import "math"

// KahanSum is compensated summation; long simulations accumulate millions
// of small float terms and naive summation drifts.
type KahanSum struct {
	sum float64
	c   float64
}

func (k *KahanSum) Add(v float64) {
	y := v - k.c
	t := k.sum + y
	k.c = (t - k.sum) - y
	k.sum = t
}

func (k *KahanSum) Sum() float64 { return k.sum }

// SumStats keeps running summary statistics without retaining samples.
// NaN and infinite values are skipped so undefined spreads don't poison
// the aggregates.
type SumStats struct {
	sum   KahanSum
	sumsq KahanSum
	n     int64
	min   float64
	max   float64
}

func (s *SumStats) Add(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	if s.n == 0 {
		s.min, s.max = v, v
	} else {
		s.min = math.Min(s.min, v)
		s.max = math.Max(s.max, v)
	}
	s.sum.Add(v)
	s.sumsq.Add(v * v)
	s.n++
}

func (s *SumStats) N() int64 { return s.n }

func (s *SumStats) Mean() float64 {
	if s.n == 0 {
		return math.NaN()
	}
	return s.sum.Sum() / float64(s.n)
}

// Variance is the population variance of the added samples.
func (s *SumStats) Variance() float64 {
	if s.n == 0 {
		return math.NaN()
	}
	mean := s.Mean()
	v := s.sumsq.Sum()/float64(s.n) - mean*mean
	if v < 0 { // float cancellation
		return 0
	}
	return v
}

func (s *SumStats) Stddev() float64 { return math.Sqrt(s.Variance()) }

func (s *SumStats) Min() float64 {
	if s.n == 0 {
		return math.NaN()
	}
	return s.min
}

func (s *SumStats) Max() float64 {
	if s.n == 0 {
		return math.NaN()
	}
	return s.max
}
