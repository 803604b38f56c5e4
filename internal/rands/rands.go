// Package rands has the few random draws the simulator needs, all taking an
// explicit seeded source so runs stay reproducible.
package rands

import (
	"math"
	"math/rand"
)

// Gaussian draws from N(mean, variance).
func Gaussian(r *rand.Rand, mean, variance float64) float64 {
	return mean + r.NormFloat64()*math.Sqrt(variance)
}

// Exponential draws an interarrival from an exponential distribution with
// the given rate. Rate 0 means "never": +Inf.
func Exponential(r *rand.Rand, rate float64) float64 {
	if rate == 0 {
		return math.Inf(1)
	}
	return r.ExpFloat64() / rate
}

// Uniform draws uniformly from [a, b).
func Uniform(r *rand.Rand, a, b float64) float64 {
	return r.Float64()*(b-a) + a
}
