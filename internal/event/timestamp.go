// Package event implements simulated time and the discrete-event scheduler
// that drives it.
package event

import "strconv"

// TimeStamp is a simulated-time tick. It carries no wall-clock meaning; the
// scheduler is the only thing that advances it.
type TimeStamp int64

// Immediate means "now, before simulated time advances". It sorts before
// every real tick.
const Immediate TimeStamp = -1

func (t TimeStamp) IsImmediate() bool { return t == Immediate }

func (t TimeStamp) Before(o TimeStamp) bool { return t < o }

func (t TimeStamp) After(o TimeStamp) bool { return t > o }

// Plus adds a delay to t. A negative result collapses to Immediate.
func (t TimeStamp) Plus(d TimeStamp) TimeStamp {
	if t+d < 0 {
		return Immediate
	}
	return t + d
}

func (t TimeStamp) String() string {
	if t.IsImmediate() {
		return "immediate"
	}
	return strconv.FormatInt(int64(t), 10)
}
