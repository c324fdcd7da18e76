// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/comalice/riskbox/internal/core"
	"github.com/comalice/riskbox/internal/logging"
	"github.com/comalice/riskbox/internal/primitives"
)

var tick = primitives.NewEvent("tick", nil)

// GenFlatConfig creates a flat machine with n atomic states cycling via "tick" events.
func GenFlatConfig(n int) primitives.MachineConfig {
	n = max(n, 1)
	mb := primitives.NewMachineBuilder(fmt.Sprintf("flat_%d", n), "s0")
	for i := 0; i < n; i++ {
		mb.Atomic(fmt.Sprintf("s%d", i)).On("tick", primitives.To(fmt.Sprintf("s%d", (i+1)%n)))
	}
	return mustBuild(mb)
}

// GenDeepConfig creates a chain of depth nested compounds whose leaf pair
// flips at the bottom, so every tick exits and enters the full depth.
func GenDeepConfig(depth int) primitives.MachineConfig {
	depth = max(depth, 1)
	mb := primitives.NewMachineBuilder(fmt.Sprintf("deep_%d", depth), "c0")
	var sb *primitives.StateBuilder
	for i := 0; i < depth; i++ {
		name := fmt.Sprintf("c%d", i)
		next := fmt.Sprintf("c%d", i+1)
		if i == depth-1 {
			next = "leaf1"
		}
		if sb == nil {
			sb = mb.Compound(name, next)
		} else {
			sb = sb.Compound(name, next)
		}
	}
	sb.Atomic("leaf1").On("tick", primitives.To("#outside"))
	mb.Atomic("outside").On("tick", primitives.To("c0"))
	return mustBuild(mb)
}

// GenWideTransitions creates one state with many guarded "tick" candidates of
// which only the last passes.
func GenWideTransitions(numTransitions int) primitives.MachineConfig {
	numTransitions = max(numTransitions, 1)
	mb := primitives.NewMachineBuilder(fmt.Sprintf("wide_%d", numTransitions), "main")
	main := mb.Atomic("main")
	for i := 0; i < numTransitions; i++ {
		last := i == numTransitions-1
		g := core.NewGuard(fmt.Sprintf("g%d", i), func(any, core.Event) bool { return last })
		main.On("tick", primitives.When(g, "main"))
	}
	return mustBuild(mb)
}

// GenSnapshotYAML returns the YAML encoding of a started machine's snapshot.
func GenSnapshotYAML(numStates int, hierarchical bool) []byte {
	config := GenFlatConfig(numStates)
	if hierarchical {
		config = GenDeepConfig(5)
	}
	sys := newSystem(config)
	defer sys.Stop()
	if err := sys.Send(context.Background(), tick); err != nil {
		panic(err)
	}
	data, err := yaml.Marshal(sys.Snapshot())
	if err != nil {
		panic(err)
	}
	return data
}

func mustBuild(mb *primitives.MachineBuilder) primitives.MachineConfig {
	config, err := mb.Build()
	if err != nil {
		panic(err)
	}
	return config
}

func newSystem(config primitives.MachineConfig, opts ...core.Option) *core.System {
	def := core.MustDefinition(config, core.Implementations{})
	sys, err := core.NewSystem(def, append([]core.Option{core.WithLogger(logging.NewNop())}, opts...)...)
	if err != nil {
		panic(err)
	}
	return sys
}

func sendN(b *testing.B, sys *core.System, evt core.Event) {
	b.Helper()
	ctx := context.Background()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := sys.Send(ctx, evt); err != nil {
			b.Fatal(err)
		}
	}
}
