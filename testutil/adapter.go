package testutil

import (
	"context"
	"time"

	"github.com/comalice/riskbox/internal/core"
	"github.com/comalice/riskbox/internal/primitives"
	"github.com/comalice/riskbox/realtime"
)

// RuntimeAdapter provides a common interface over a bare System and a tick
// runtime, so the same scenario can run on both.
type RuntimeAdapter interface {
	SendEvent(ctx context.Context, event primitives.Event) error
	Advance(ctx context.Context, d time.Duration) error
	Snapshot() core.Snapshot
	IsInState(path string) bool
}

// DirectAdapter dispatches straight into the System.
type DirectAdapter struct {
	sys   *core.System
	clock *ManualClock
}

// NewDirectAdapter wraps sys, which must have been built WithClock(clock).
func NewDirectAdapter(sys *core.System, clock *ManualClock) *DirectAdapter {
	return &DirectAdapter{sys: sys, clock: clock}
}

func (a *DirectAdapter) SendEvent(ctx context.Context, event primitives.Event) error {
	return a.sys.Send(ctx, event)
}

func (a *DirectAdapter) Advance(ctx context.Context, d time.Duration) error {
	a.clock.Advance(d)
	_, err := a.sys.Tick(ctx)
	return err
}

func (a *DirectAdapter) Snapshot() core.Snapshot { return a.sys.Snapshot() }

func (a *DirectAdapter) IsInState(path string) bool { return a.sys.Snapshot().Matches(path) }

// TickBasedAdapter queues events on a realtime.Runtime and steps it by hand.
type TickBasedAdapter struct {
	rt    *realtime.Runtime
	clock *ManualClock
	errs  []error
}

// NewTickBasedAdapter wraps sys, which must have been built WithClock(clock).
func NewTickBasedAdapter(sys *core.System, clock *ManualClock) *TickBasedAdapter {
	a := &TickBasedAdapter{clock: clock}
	a.rt = realtime.NewRuntime(sys, realtime.Config{
		OnError: func(err error) { a.errs = append(a.errs, err) },
	})
	return a
}

func (a *TickBasedAdapter) SendEvent(ctx context.Context, event primitives.Event) error {
	if err := a.rt.SendEvent(event); err != nil {
		return err
	}
	return a.step(ctx)
}

func (a *TickBasedAdapter) Advance(ctx context.Context, d time.Duration) error {
	a.clock.Advance(d)
	return a.step(ctx)
}

func (a *TickBasedAdapter) step(ctx context.Context) error {
	a.errs = nil
	a.rt.Step(ctx)
	if len(a.errs) > 0 {
		return a.errs[0]
	}
	return nil
}

func (a *TickBasedAdapter) Snapshot() core.Snapshot { return a.rt.System().Snapshot() }

func (a *TickBasedAdapter) IsInState(path string) bool { return a.Snapshot().Matches(path) }
