package realtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/riskbox/internal/core"
	"github.com/comalice/riskbox/internal/primitives"
	"github.com/comalice/riskbox/realtime"
	"github.com/comalice/riskbox/testutil"
)

type history struct{ Seen []string }

func recorderDefinition(t *testing.T) *core.Definition {
	t.Helper()
	record := core.Assign("record", func(l history, e core.Event) history {
		l.Seen = append(append([]string(nil), l.Seen...), e.Type)
		return l
	})
	cfg, err := primitives.NewMachineBuilder("rec", "idle").
		Context(history{}).
		On("A", primitives.Do(record)).
		On("B", primitives.Do(record)).
		On("C", primitives.Do(record)).
		Atomic("idle").
		After(50*time.Millisecond, primitives.To("waited", core.Assign("timer", func(l history, _ core.Event) history {
			l.Seen = append(append([]string(nil), l.Seen...), "timer")
			return l
		}))).
		Machine().
		Atomic("waited").
		Machine().
		Build()
	require.NoError(t, err)
	return core.MustDefinition(cfg, core.Implementations{})
}

func TestStep_DeterministicOrdering(t *testing.T) {
	clock := testutil.NewManualClock(time.Time{})
	sys, err := core.NewSystem(recorderDefinition(t), core.WithClock(clock))
	require.NoError(t, err)
	rt := realtime.NewRuntime(sys, realtime.Config{})

	require.NoError(t, rt.SendEvent(primitives.NewEvent("A", nil)))
	require.NoError(t, rt.SendEventWithPriority(primitives.NewEvent("B", nil), 5))
	require.NoError(t, rt.SendEvent(primitives.NewEvent("C", nil)))
	assert.Equal(t, 3, rt.Pending())

	clock.Advance(50 * time.Millisecond)
	rt.Step(context.Background())

	assert.Equal(t, history{Seen: []string{"timer", "B", "A", "C"}}, sys.Snapshot().Context)
	assert.Equal(t, uint64(1), rt.GetTickNumber())
	assert.Zero(t, rt.Pending())
}

func TestSendEvent_QueueFull(t *testing.T) {
	sys, err := core.NewSystem(recorderDefinition(t))
	require.NoError(t, err)
	rt := realtime.NewRuntime(sys, realtime.Config{MaxEventsPerTick: 1})

	require.NoError(t, rt.SendEvent(primitives.NewEvent("A", nil)))
	assert.ErrorIs(t, rt.SendEvent(primitives.NewEvent("B", nil)), realtime.ErrQueueFull)
}

func TestStep_ReportsErrors(t *testing.T) {
	sys, err := core.NewSystem(recorderDefinition(t))
	require.NoError(t, err)
	var errs []error
	rt := realtime.NewRuntime(sys, realtime.Config{OnError: func(err error) { errs = append(errs, err) }})
	sys.Stop()

	require.NoError(t, rt.Send(context.Background(), primitives.NewEvent("A", nil)))
	rt.Step(context.Background())
	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], core.ErrStopped)
	assert.ErrorIs(t, errs[1], core.ErrStopped)
}

func TestStartStop_TickLoop(t *testing.T) {
	sys, err := core.NewSystem(recorderDefinition(t))
	require.NoError(t, err)
	rt := realtime.NewRuntime(sys, realtime.Config{TickRate: 5 * time.Millisecond})

	require.NoError(t, rt.Start(context.Background()))
	assert.Error(t, rt.Start(context.Background()))
	require.NoError(t, rt.SendEvent(primitives.NewEvent("A", nil)))

	assert.Eventually(t, func() bool {
		l := sys.Snapshot().Context.(history)
		for _, s := range l.Seen {
			if s == "A" {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	rt.Stop()
	<-rt.Done()
	assert.Positive(t, rt.GetTickNumber())
}
