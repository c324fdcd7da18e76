package production

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/riskbox/internal/core"
	"github.com/comalice/riskbox/internal/primitives"
)

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time { return c.now }

func TestMetrics_Observer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	clock := &stepClock{now: time.Unix(0, 0)}
	sys, err := core.NewSystem(toggleDefinition(t), core.WithObserver(m), core.WithClock(clock))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sys.Send(ctx, primitives.NewEvent("FLIP", nil)))
	require.NoError(t, sys.Send(ctx, primitives.NewEvent("NOPE", nil)))
	clock.now = clock.now.Add(time.Second)
	n, err := sys.Tick(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("toggle", "on.low")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("toggle", "off")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.unhandled.WithLabelValues("toggle", "NOPE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.spawned.WithLabelValues("toggle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.active.WithLabelValues("toggle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.timers))
	assert.Equal(t, 1, testutil.CollectAndCount(m.dispatch))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.errors.WithLabelValues("toggle")))

	sys.Stop()
	assert.Equal(t, 0.0, testutil.ToFloat64(m.active.WithLabelValues("toggle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stopped.WithLabelValues("toggle")))
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetrics(reg)
	require.NoError(t, err)
	_, err = NewMetrics(reg)
	assert.Error(t, err)
}
