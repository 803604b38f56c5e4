package event

import (
	"fmt"
	"log/slog"
)

// Scheduler owns the event queue and is the sole driver of simulated time.
// Everything that mutates simulation state runs as an activity popped off
// this queue, which is what makes a run a single deterministic batch
// computation.
//
// Activities scheduled for the same tick execute in FIFO enqueue order,
// including activities enqueued during that tick by already-executing
// activities. That guarantee is load-bearing for price-time fairness and
// deterministic NBBO computation, so don't weaken it.
type Scheduler struct {
	queue *timedQueue
	now   TimeStamp
	log   *slog.Logger
}

func NewScheduler(log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{queue: newTimedQueue(), now: 0, log: log}
}

// Now returns the current simulated time.
func (s *Scheduler) Now() TimeStamp { return s.now }

// ScheduleActivity enqueues act for execution at t. Scheduling in the past is
// a programming error and panics; the simulation is fail-fast by design.
func (s *Scheduler) ScheduleActivity(t TimeStamp, act Activity) {
	if !t.IsImmediate() && t.Before(s.now) {
		panic(fmt.Sprintf("event: scheduling %q at %s before current time %s", act.Name, t, s.now))
	}
	s.queue.push(t, act)
}

// ExecuteActivity runs act synchronously "now", then drains any zero-delay
// work it cascades, so the caller observes a fully settled state. The
// activity and its cascades run ahead of anything else queued for the
// current tick.
func (s *Scheduler) ExecuteActivity(act Activity) {
	s.queue.push(Immediate, act)
	s.ExecuteUntil(Immediate)
}

// ExecuteUntil advances simulated time, executing every pending activity
// scheduled at or before t in non-decreasing time order.
func (s *Scheduler) ExecuteUntil(t TimeStamp) {
	for {
		next, ok := s.queue.peek()
		if !ok || next.After(t) {
			return
		}
		s.executeNext()
	}
}

func (s *Scheduler) executeNext() {
	t, act := s.queue.pop()
	if !t.IsImmediate() && t.After(s.now) {
		s.now = t
	}
	s.log.Debug("executing activity", "name", act.Name, "time", s.now, "pending", s.queue.len())
	act.Run(s.now)
}

// Peek reports the tick of the next pending activity without executing it.
func (s *Scheduler) Peek() (TimeStamp, bool) {
	return s.queue.peek()
}

// IsEmpty reports whether any activity is still pending.
func (s *Scheduler) IsEmpty() bool { return s.queue.len() == 0 }

// Len reports the number of pending activities.
func (s *Scheduler) Len() int { return s.queue.len() }
