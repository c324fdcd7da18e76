// MachineConfig represents the top-level configuration of a machine: its ID,
// initial state, initial context, machine-level transitions and the ordered
// list of top-level states. Validation checks the tree shape and that every
// transition target resolves to a state in it.
package primitives

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// MachineConfig defines the complete statechart configuration.
type MachineConfig struct {
	ID      string                        `json:"id" yaml:"id"`
	Initial string                        `json:"initial" yaml:"initial"`
	Context any                           `json:"-" yaml:"-"`
	On      map[string][]TransitionConfig `json:"on,omitempty" yaml:"on,omitempty"`
	States  []*StateConfig                `json:"states" yaml:"states"`
}

// Validate validates the entire machine configuration:
// - Non-empty ID and Initial
// - Initial exists among the top-level states
// - All individual states validate (recursive)
// - All transition, automatic and delayed targets resolve
func (m *MachineConfig) Validate() error {
	if m.ID == "" {
		return errors.New("machine ID is required")
	}
	if m.Initial == "" {
		return errors.New("initial state ID is required")
	}
	if len(m.States) == 0 {
		return errors.New("states are required and cannot be empty")
	}
	if m.state(m.Initial) == nil {
		return fmt.Errorf("initial state %q not found in states", m.Initial)
	}

	seen := make(map[string]struct{}, len(m.States))
	for _, state := range m.States {
		if state == nil {
			return errors.New("nil state")
		}
		if _, dup := seen[state.ID]; dup {
			return fmt.Errorf("duplicate state %q", state.ID)
		}
		seen[state.ID] = struct{}{}
		if err := state.Validate(); err != nil {
			return fmt.Errorf("state %q validation failed: %w", state.ID, err)
		}
	}
	if err := validateOn(m.ID, m.On); err != nil {
		return err
	}

	if err := m.checkTargets("", "machine-level", m.On, nil, nil); err != nil {
		return err
	}
	return m.Walk(func(path string, s *StateConfig) error {
		return m.checkTargets(path, path, s.On, s.Always, s.After)
	})
}

func (m *MachineConfig) checkTargets(source, label string, on map[string][]TransitionConfig, always []TransitionConfig, after []DelayedTransition) error {
	check := func(kind string, i int, trans TransitionConfig) error {
		target, err := ResolveTarget(source, trans.Target)
		if err != nil {
			return fmt.Errorf("state %s, %s transition %d: %w", label, kind, i, err)
		}
		if target == "" {
			return nil
		}
		if _, err := m.FindState(target); err != nil {
			return fmt.Errorf("invalid transition target %q (state %s, %s, transition %d): %w", trans.Target, label, kind, i, err)
		}
		return nil
	}

	events := make([]string, 0, len(on))
	for event := range on {
		events = append(events, event)
	}
	sort.Strings(events)
	for _, event := range events {
		for i, trans := range on[event] {
			if err := check("event "+event, i, trans); err != nil {
				return err
			}
		}
	}
	for i, trans := range always {
		if err := check("always", i, trans); err != nil {
			return err
		}
	}
	for _, d := range after {
		for i, trans := range d.Transitions {
			if err := check("after "+d.Delay.String(), i, trans); err != nil {
				return err
			}
		}
	}
	return nil
}

// Walk visits every state depth-first in declaration order with its dotted path.
func (m *MachineConfig) Walk(fn func(path string, s *StateConfig) error) error {
	var walk func(prefix string, s *StateConfig) error
	walk = func(prefix string, s *StateConfig) error {
		path := joinPath(prefix, s.ID)
		if err := fn(path, s); err != nil {
			return err
		}
		for _, child := range s.Children {
			if err := walk(path, child); err != nil {
				return err
			}
		}
		return nil
	}
	for _, s := range m.States {
		if err := walk("", s); err != nil {
			return err
		}
	}
	return nil
}

// FindState resolves a state by hierarchical path (e.g. "parent.child.grandchild").
func (m *MachineConfig) FindState(path string) (*StateConfig, error) {
	if path == "" {
		return nil, errors.New("path cannot be empty")
	}
	segments := strings.Split(path, ".")
	current := m.state(segments[0])
	if current == nil {
		return nil, fmt.Errorf("state %q not found", segments[0])
	}
	for i := 1; i < len(segments); i++ {
		next := current.Child(segments[i])
		if next == nil {
			prefix := strings.Join(segments[:i], ".")
			return nil, fmt.Errorf("child %q not found in %q", segments[i], prefix)
		}
		current = next
	}
	return current, nil
}

func (m *MachineConfig) state(id string) *StateConfig {
	for _, s := range m.States {
		if s != nil && s.ID == id {
			return s
		}
	}
	return nil
}
