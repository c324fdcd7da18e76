package core

import (
	"sync"
	"time"

	"github.com/comalice/riskbox/internal/primitives"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func ev(t string) Event { return primitives.NewEvent(t, nil) }

type recorder struct {
	NopObserver
	mu          sync.Mutex
	transitions []TransitionInfo
	unhandled   []UnhandledEvent
	spawned     []string
	stopped     []string
}

func (r *recorder) OnTransition(i TransitionInfo) {
	r.mu.Lock()
	r.transitions = append(r.transitions, i)
	r.mu.Unlock()
}

func (r *recorder) OnUnhandled(u UnhandledEvent) {
	r.mu.Lock()
	r.unhandled = append(r.unhandled, u)
	r.mu.Unlock()
}

func (r *recorder) OnSpawn(i ActorInfo) {
	r.mu.Lock()
	r.spawned = append(r.spawned, i.ID)
	r.mu.Unlock()
}

func (r *recorder) OnStop(i ActorInfo) {
	r.mu.Lock()
	r.stopped = append(r.stopped, i.ID)
	r.mu.Unlock()
}

// trace collects entry/exit markers in the order actions ran.
type trace struct {
	steps []string
}

func (tr *trace) mark(name string) *Action {
	return Effect(name, func(_ any, _ Event) error {
		tr.steps = append(tr.steps, name)
		return nil
	})
}
