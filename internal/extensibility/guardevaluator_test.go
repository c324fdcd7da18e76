package extensibility

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/riskbox/internal/core"
	"github.com/comalice/riskbox/internal/primitives"
)

type player struct {
	Lives int    `mapstructure:"lives"`
	Name  string `mapstructure:"name"`
	Armed bool   `mapstructure:"armed"`
	Boss  *player
}

func TestExpr_Eval(t *testing.T) {
	ctx := player{Lives: 2, Name: "ann", Armed: true}
	tests := []struct {
		expr string
		ctx  any
		evt  core.Event
		want bool
	}{
		{"lives < 1", ctx, core.Event{}, false},
		{"lives <= 2", ctx, core.Event{}, true},
		{"lives == 2", &ctx, core.Event{}, true},
		{"lives != 2", ctx, core.Event{}, false},
		{"lives > 1.5", ctx, core.Event{}, true},
		{"lives >= 3", ctx, core.Event{}, false},
		{"armed == true", ctx, core.Event{}, true},
		{"armed != false", ctx, core.Event{}, true},
		{`name == "ann"`, ctx, core.Event{}, true},
		{`name < "bob"`, ctx, core.Event{}, true},
		{"Boss == nil", ctx, core.Event{}, true},
		{"score > 10", map[string]any{"score": 11.0}, core.Event{}, true},
		{"event.total >= 10", ctx, primitives.NewEvent("AWARD", map[string]any{"total": 10}), true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			g, err := Expr("g", tt.expr)
			require.NoError(t, err)
			got, err := g.Eval(tt.ctx, tt.evt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpr_ParseErrors(t *testing.T) {
	for _, expr := range []string{
		"lives",
		"lives ~ 1",
		"lives < one",
		"armed < true",
		"x > nil",
		`name == "unterminated`,
	} {
		_, err := Expr("bad", expr)
		assert.Error(t, err, expr)
	}
	assert.Panics(t, func() { MustExpr("bad", "nope") })
}

func TestExpr_EvalErrors(t *testing.T) {
	g := MustExpr("g", "missing > 1")
	_, err := g.Eval(player{}, core.Event{})
	assert.ErrorContains(t, err, `field "missing" not found`)

	g = MustExpr("g", "name > 1")
	_, err = g.Eval(player{Name: "x"}, core.Event{})
	assert.ErrorContains(t, err, "want number")
}

func TestExpr_AsTransitionGuard(t *testing.T) {
	cfg, err := primitives.NewMachineBuilder("p", "alive").
		Context(player{Lives: 1}).
		Atomic("alive").
		Always(primitives.When("noLivesLeft", "dead")).
		On("HIT", primitives.Do(core.Assign("hit", func(p player, _ core.Event) player { p.Lives--; return p }))).
		Machine().
		Atomic("dead").
		Machine().
		Build()
	require.NoError(t, err)

	def, err := core.NewDefinition(cfg, core.Implementations{
		Guards: map[string]*core.Guard{"noLivesLeft": MustExpr("noLivesLeft", "lives < 1")},
	})
	require.NoError(t, err)
	sys, err := core.NewSystem(def)
	require.NoError(t, err)
	assert.Equal(t, "alive", sys.Snapshot().Value)

	require.NoError(t, sys.Send(context.Background(), primitives.NewEvent("HIT", nil)))
	assert.Equal(t, "dead", sys.Snapshot().Value)
}
