package core

import (
	"container/heap"
	"time"
)

// Clock supplies the current time for arming and firing delayed transitions.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type timer struct {
	token     uint64
	deadline  time.Time
	actor     *Actor
	node      int
	event     string
	cancelled bool
	index     int
}

// timerQueue is a min-heap ordered by (deadline, token). Cancelled entries stay
// in the heap until they surface.
type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].deadline.Equal(q[j].deadline) {
		return q[i].token < q[j].token
	}
	return q[i].deadline.Before(q[j].deadline)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

// peek drops cancelled entries from the top and returns the earliest live timer.
func (q *timerQueue) peek() *timer {
	for q.Len() > 0 {
		t := (*q)[0]
		if !t.cancelled {
			return t
		}
		heap.Pop(q)
	}
	return nil
}

// popDue removes and returns the earliest live timer due at or before now.
func (q *timerQueue) popDue(now time.Time) *timer {
	t := q.peek()
	if t == nil || t.deadline.After(now) {
		return nil
	}
	return heap.Pop(q).(*timer)
}
