package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/riskbox/internal/primitives"
)

func TestNewDefinition_ResolvesNamedRefs(t *testing.T) {
	inc := Assign("inc", func(n int, _ Event) int { return n + 1 })
	positive := NewGuard("positive", func(n int, _ Event) bool { return n > 0 })

	cfg, err := primitives.NewMachineBuilder("counter", "idle").
		Context(0).
		Atomic("idle").
		On("INC", primitives.To("", "inc")).
		On("GO", primitives.When("positive", "busy")).
		Machine().
		Atomic("busy").
		Machine().
		Build()
	require.NoError(t, err)

	def, err := NewDefinition(cfg, Implementations{
		Actions: map[string]*Action{"inc": inc},
		Guards:  map[string]*Guard{"positive": positive},
	})
	require.NoError(t, err)
	assert.Equal(t, "counter", def.ID())
	assert.Equal(t, []string{"idle", "busy"}, def.States())
	assert.Equal(t, 0, def.Context())
	assert.Len(t, def.Version(), 16)

	edges := def.Edges()
	require.Len(t, edges, 1)
	assert.Equal(t, Edge{From: "idle", To: "busy", Event: "GO", Guard: "positive", Kind: "event"}, edges[0])
}

func TestNewDefinition_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func() primitives.MachineConfig
		impl  Implementations
		want  string
	}{
		{
			name: "unknown target",
			build: func() primitives.MachineConfig {
				return primitives.MachineConfig{
					ID: "m", Initial: "a",
					States: []*primitives.StateConfig{
						primitives.NewStateConfig("a", primitives.Atomic).Transition("GO", "nowhere"),
					},
				}
			},
			want: "nowhere",
		},
		{
			name: "unknown after target",
			build: func() primitives.MachineConfig {
				return primitives.MachineConfig{
					ID: "m", Initial: "a",
					States: []*primitives.StateConfig{
						primitives.NewStateConfig("a", primitives.Atomic).AddAfter(1, primitives.To("gone")),
					},
				}
			},
			want: "gone",
		},
		{
			name: "empty candidate list",
			build: func() primitives.MachineConfig {
				return primitives.MachineConfig{
					ID: "m", Initial: "a",
					States: []*primitives.StateConfig{
						primitives.NewStateConfig("a", primitives.Atomic).
							WithOn(map[string][]primitives.TransitionConfig{"GO": nil}),
					},
				}
			},
			want: "no transition candidates",
		},
		{
			name: "unimplemented action",
			build: func() primitives.MachineConfig {
				return primitives.MachineConfig{
					ID: "m", Initial: "a",
					States: []*primitives.StateConfig{
						primitives.NewStateConfig("a", primitives.Atomic).AddEntry("missing"),
					},
				}
			},
			want: `action "missing" is not implemented`,
		},
		{
			name: "unimplemented guard",
			build: func() primitives.MachineConfig {
				return primitives.MachineConfig{
					ID: "m", Initial: "a",
					States: []*primitives.StateConfig{
						primitives.NewStateConfig("a", primitives.Atomic).
							AddAlways(primitives.When("nope", "a")),
					},
				}
			},
			want: `guard "nope" is not implemented`,
		},
		{
			name: "unsupported action ref",
			build: func() primitives.MachineConfig {
				return primitives.MachineConfig{
					ID: "m", Initial: "a",
					States: []*primitives.StateConfig{
						primitives.NewStateConfig("a", primitives.Atomic).AddEntry(42),
					},
				}
			},
			want: "unsupported action reference int",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDefinition(tt.build(), tt.impl)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDefinition))
			var de *DefinitionError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, "m", de.Machine)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMustDefinition_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustDefinition(primitives.MachineConfig{ID: "m"}, Implementations{})
	})
}

func TestDefinition_AfterEdges(t *testing.T) {
	cfg, err := primitives.NewMachineBuilder("m", "a").
		Atomic("a").After(1500000000, primitives.To("b")).
		Machine().
		Atomic("b").Always(primitives.To("a")).
		Machine().
		Build()
	require.NoError(t, err)
	def := MustDefinition(cfg, Implementations{})

	edges := def.Edges()
	require.Len(t, edges, 2)
	assert.Equal(t, Edge{From: "a", To: "b", Event: "after 1.5s", Kind: "after"}, edges[0])
	assert.Equal(t, Edge{From: "b", To: "a", Event: "always", Kind: "always"}, edges[1])
}
