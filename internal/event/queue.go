package event

import "container/heap"

// Activity is a unit of simulated work captured at scheduling time. Name is
// used only for logging.
type Activity struct {
	Name string
	Run  func(now TimeStamp)
}

// timedQueue orders activities by tick and, within one tick, by enqueue
// order. The FIFO guarantee covers activities enqueued for a tick while that
// tick is already executing.
type timedQueue struct {
	ticks tickHeap
	fifo  map[TimeStamp][]Activity
	size  int
}

func newTimedQueue() *timedQueue {
	return &timedQueue{fifo: make(map[TimeStamp][]Activity)}
}

func (q *timedQueue) push(t TimeStamp, act Activity) {
	if _, ok := q.fifo[t]; !ok {
		heap.Push(&q.ticks, t)
	}
	q.fifo[t] = append(q.fifo[t], act)
	q.size++
}

func (q *timedQueue) peek() (TimeStamp, bool) {
	if q.size == 0 {
		return 0, false
	}
	return q.ticks[0], true
}

func (q *timedQueue) pop() (TimeStamp, Activity) {
	t := q.ticks[0]
	pending := q.fifo[t]
	act := pending[0]
	if len(pending) == 1 {
		delete(q.fifo, t)
		heap.Pop(&q.ticks)
	} else {
		q.fifo[t] = pending[1:]
	}
	q.size--
	return t, act
}

func (q *timedQueue) len() int { return q.size }

// tickHeap is a min-heap over the distinct ticks that have pending work.
type tickHeap []TimeStamp

func (h tickHeap) Len() int            { return len(h) }
func (h tickHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h tickHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *tickHeap) Push(x interface{}) { *h = append(*h, x.(TimeStamp)) }

func (h *tickHeap) Pop() interface{} {
	old := *h
	n := len(old)
	t := old[n-1]
	*h = old[:n-1]
	return t
}
