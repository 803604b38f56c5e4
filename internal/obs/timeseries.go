// Package obs collects observations from a simulation run: per-market time
// series, summary statistics, and the recorders that persist them.
package obs

import "github.com/egtaonline/market-sim/internal/event"

// Point is one observation of a step function of simulated time.
type Point struct {
	Time  event.TimeStamp
	Value float64
}

// TimeSeries records a step function observed at event times. Points must
// arrive in non-decreasing time order; a later point at the same tick
// supersedes the earlier one.
type TimeSeries struct {
	points []Point
}

func (ts *TimeSeries) Add(t event.TimeStamp, v float64) {
	if n := len(ts.points); n > 0 && ts.points[n-1].Time == t {
		ts.points[n-1].Value = v
		return
	}
	ts.points = append(ts.points, Point{Time: t, Value: v})
}

func (ts *TimeSeries) Len() int { return len(ts.points) }

func (ts *TimeSeries) Points() []Point {
	out := make([]Point, len(ts.points))
	copy(out, ts.points)
	return out
}

// Last returns the most recent value, or false if nothing was recorded.
func (ts *TimeSeries) Last() (float64, bool) {
	if len(ts.points) == 0 {
		return 0, false
	}
	return ts.points[len(ts.points)-1].Value, true
}

// Sample evaluates the step function every interval ticks from interval up
// to and including horizon. Ticks before the first observation report the
// first observed value.
func (ts *TimeSeries) Sample(interval, horizon event.TimeStamp) []float64 {
	if interval <= 0 || horizon < interval || len(ts.points) == 0 {
		return nil
	}
	var out []float64
	idx := 0
	for t := interval; t <= horizon; t += interval {
		for idx+1 < len(ts.points) && !ts.points[idx+1].Time.After(t) {
			idx++
		}
		out = append(out, ts.points[idx].Value)
	}
	return out
}
