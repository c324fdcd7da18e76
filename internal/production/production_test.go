package production

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comalice/riskbox/internal/core"
	"github.com/comalice/riskbox/internal/primitives"
)

// toggle: off <-> on, on is compound {low, high} with an after back to off.
func toggleDefinition(t *testing.T) *core.Definition {
	t.Helper()
	cfg, err := primitives.NewMachineBuilder("toggle", "off").
		Atomic("off").On("FLIP", primitives.To("on")).
		Machine().
		Compound("on", "low").
		On("FLIP", primitives.To("off")).
		After(time.Second, primitives.To("off")).
		Atomic("low").On("UP", primitives.When(core.NewGuard[any]("ok", func(any, core.Event) bool { return true }), "high")).
		Up().
		Final("high").
		Machine().
		Build()
	require.NoError(t, err)
	return core.MustDefinition(cfg, core.Implementations{})
}
