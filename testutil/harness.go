package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comalice/riskbox/internal/core"
	"github.com/comalice/riskbox/internal/primitives"
)

// Harness runs a System on a ManualClock and fails the test on any error.
type Harness struct {
	T     testing.TB
	Sys   *core.System
	Clock *ManualClock
}

// NewHarness starts def on a fresh ManualClock. The system is stopped on cleanup.
func NewHarness(t testing.TB, def *core.Definition, opts ...core.Option) *Harness {
	t.Helper()
	clock := NewManualClock(time.Time{})
	sys, err := core.NewSystem(def, append([]core.Option{core.WithClock(clock)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(sys.Stop)
	return &Harness{T: t, Sys: sys, Clock: clock}
}

// Send dispatches an event and requires it to succeed.
func (h *Harness) Send(eventType string, data any) core.Snapshot {
	h.T.Helper()
	require.NoError(h.T, h.Sys.Send(context.Background(), primitives.NewEvent(eventType, data)))
	return h.Sys.Snapshot()
}

// Advance moves the clock by d, fires due timers and returns how many fired.
func (h *Harness) Advance(d time.Duration) int {
	h.T.Helper()
	h.Clock.Advance(d)
	n, err := h.Sys.Tick(context.Background())
	require.NoError(h.T, err)
	return n
}

// Snapshot returns the root snapshot.
func (h *Harness) Snapshot() core.Snapshot {
	return h.Sys.Snapshot()
}

// Child returns the snapshot of a direct child of the root, failing if absent.
func (h *Harness) Child(name string) core.Snapshot {
	h.T.Helper()
	c, ok := h.Sys.Snapshot().Child(name)
	require.True(h.T, ok, "child %q not running", name)
	return c
}

// RequireState fails unless the root is in the state at the dotted path.
func (h *Harness) RequireState(path string) {
	h.T.Helper()
	snap := h.Sys.Snapshot()
	require.True(h.T, snap.Matches(path), "want state %q, have %q", path, snap.Value)
}
