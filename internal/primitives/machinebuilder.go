// Builder helpers for MachineConfig.
package primitives

import "time"

// MachineBuilder builds hierarchical MachineConfig fluently.
type MachineBuilder struct {
	config *MachineConfig
}

// NewMachineBuilder creates a new MachineBuilder.
func NewMachineBuilder(id, initial string) *MachineBuilder {
	return &MachineBuilder{
		config: &MachineConfig{ID: id, Initial: initial},
	}
}

// Context sets the initial context value.
func (b *MachineBuilder) Context(ctx any) *MachineBuilder {
	b.config.Context = ctx
	return b
}

// On adds machine-level transition candidates, handled in every state.
func (b *MachineBuilder) On(event string, trans ...TransitionConfig) *MachineBuilder {
	if b.config.On == nil {
		b.config.On = make(map[string][]TransitionConfig)
	}
	b.config.On[event] = append(b.config.On[event], trans...)
	return b
}

// Compound starts a top-level compound state.
func (b *MachineBuilder) Compound(id, initial string) *StateBuilder {
	return b.top(NewStateConfig(id, Compound).WithInitial(initial))
}

// Atomic starts a top-level atomic state.
func (b *MachineBuilder) Atomic(id string) *StateBuilder {
	return b.top(NewStateConfig(id, Atomic))
}

// Final starts a top-level final state.
func (b *MachineBuilder) Final(id string) *StateBuilder {
	return b.top(NewStateConfig(id, Final))
}

// State sugar for Atomic.
func (b *MachineBuilder) State(id string) *StateBuilder {
	return b.Atomic(id)
}

func (b *MachineBuilder) top(s *StateConfig) *StateBuilder {
	b.config.States = append(b.config.States, s)
	return &StateBuilder{state: s, mb: b}
}

// Build validates and returns the finished config.
func (b *MachineBuilder) Build() (MachineConfig, error) {
	if err := b.config.Validate(); err != nil {
		return MachineConfig{}, err
	}
	return *b.config, nil
}

// StateBuilder for fluent transitions/nesting.
type StateBuilder struct {
	state  *StateConfig
	parent *StateBuilder
	mb     *MachineBuilder
}

// Config returns the state being built.
func (sb *StateBuilder) Config() *StateConfig {
	return sb.state
}

// On adds transition candidates for event, in evaluation order.
func (sb *StateBuilder) On(event string, trans ...TransitionConfig) *StateBuilder {
	if len(trans) == 0 {
		// Keep the empty list so validation reports it.
		if sb.state.On == nil {
			sb.state.On = make(map[string][]TransitionConfig)
		}
		sb.state.On[event] = nil
	}
	for _, t := range trans {
		sb.state.AddTransition(event, t)
	}
	return sb
}

// Always adds automatic transition candidates.
func (sb *StateBuilder) Always(trans ...TransitionConfig) *StateBuilder {
	for _, t := range trans {
		sb.state.AddAlways(t)
	}
	return sb
}

// After adds delayed transition candidates armed on entry.
func (sb *StateBuilder) After(d time.Duration, trans ...TransitionConfig) *StateBuilder {
	sb.state.AddAfter(d, trans...)
	return sb
}

// Entry adds entry actions.
func (sb *StateBuilder) Entry(actions ...ActionRef) *StateBuilder {
	sb.state.AddEntry(actions...)
	return sb
}

// Exit adds exit actions.
func (sb *StateBuilder) Exit(actions ...ActionRef) *StateBuilder {
	sb.state.AddExit(actions...)
	return sb
}

// Compound nests a compound child.
func (sb *StateBuilder) Compound(id, initial string) *StateBuilder {
	child := sb.state.State(id, Compound).WithInitial(initial)
	sb.promote()
	return &StateBuilder{state: child, parent: sb, mb: sb.mb}
}

// Atomic nests an atomic child.
func (sb *StateBuilder) Atomic(id string) *StateBuilder {
	child := sb.state.State(id)
	sb.promote()
	return &StateBuilder{state: child, parent: sb, mb: sb.mb}
}

// Final nests a final child.
func (sb *StateBuilder) Final(id string) *StateBuilder {
	child := sb.state.State(id, Final)
	sb.promote()
	return &StateBuilder{state: child, parent: sb, mb: sb.mb}
}

// Up returns the builder of the enclosing state. At top level it returns sb.
func (sb *StateBuilder) Up() *StateBuilder {
	if sb.parent == nil {
		return sb
	}
	return sb.parent
}

// Machine returns the owning MachineBuilder.
func (sb *StateBuilder) Machine() *MachineBuilder {
	return sb.mb
}

// WithInitial sets initial for current (compound).
func (sb *StateBuilder) WithInitial(initial string) *StateBuilder {
	sb.state.WithInitial(initial)
	return sb
}

// promote turns an atomic state into a compound one once it gains children.
func (sb *StateBuilder) promote() {
	if sb.state.Type == Atomic {
		sb.state.Type = Compound
	}
}
