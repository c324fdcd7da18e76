// StateConfig represents one node of the state tree: atomic, compound or final,
// with event transitions, automatic transitions, delayed transitions and
// entry/exit actions.
package primitives

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// StateType defines the possible types of states in the statechart.
type StateType string

const (
	Atomic   StateType = "atomic"
	Compound StateType = "compound"
	Final    StateType = "final"
)

// StateConfig defines a state configuration, supporting hierarchical nesting.
type StateConfig struct {
	ID       string                        `json:"id" yaml:"id"`
	Type     StateType                     `json:"type" yaml:"type"`
	Initial  string                        `json:"initial,omitempty" yaml:"initial,omitempty"` // Initial child for compound
	On       map[string][]TransitionConfig `json:"on,omitempty" yaml:"on,omitempty"`
	Always   []TransitionConfig            `json:"always,omitempty" yaml:"always,omitempty"`
	After    []DelayedTransition           `json:"after,omitempty" yaml:"after,omitempty"`
	Entry    []ActionRef                   `json:"-" yaml:"-"`
	Exit     []ActionRef                   `json:"-" yaml:"-"`
	Children []*StateConfig                `json:"children,omitempty" yaml:"children,omitempty"`
}

// NewStateConfig creates a new StateConfig with ID and Type.
func NewStateConfig(id string, typ StateType) *StateConfig {
	return &StateConfig{
		ID:   id,
		Type: typ,
	}
}

// WithInitial sets the initial child state ID (for compound).
func (s *StateConfig) WithInitial(initial string) *StateConfig {
	s.Initial = initial
	return s
}

// WithOn sets the event-to-transition map.
func (s *StateConfig) WithOn(on map[string][]TransitionConfig) *StateConfig {
	s.On = make(map[string][]TransitionConfig)
	for k, v := range on {
		s.On[k] = v
	}
	return s
}

// AddTransition adds a transition candidate for an event.
func (s *StateConfig) AddTransition(event string, trans TransitionConfig) *StateConfig {
	if s.On == nil {
		s.On = make(map[string][]TransitionConfig)
	}
	s.On[event] = append(s.On[event], trans)
	return s
}

// AddAlways adds an automatic transition candidate.
func (s *StateConfig) AddAlways(trans TransitionConfig) *StateConfig {
	s.Always = append(s.Always, trans)
	return s
}

// AddAfter adds delayed transition candidates for delay d.
// Candidates for an already declared delay are appended to it.
func (s *StateConfig) AddAfter(d time.Duration, trans ...TransitionConfig) *StateConfig {
	for i := range s.After {
		if s.After[i].Delay == d {
			s.After[i].Transitions = append(s.After[i].Transitions, trans...)
			return s
		}
	}
	s.After = append(s.After, DelayedTransition{Delay: d, Transitions: trans})
	return s
}

// AddEntry adds entry actions.
func (s *StateConfig) AddEntry(actions ...ActionRef) *StateConfig {
	s.Entry = append(s.Entry, actions...)
	return s
}

// AddExit adds exit actions.
func (s *StateConfig) AddExit(actions ...ActionRef) *StateConfig {
	s.Exit = append(s.Exit, actions...)
	return s
}

// WithChildren sets child states.
func (s *StateConfig) WithChildren(children []*StateConfig) *StateConfig {
	s.Children = children
	return s
}

// AddChild adds a child state.
func (s *StateConfig) AddChild(child *StateConfig) *StateConfig {
	s.Children = append(s.Children, child)
	return s
}

// State creates and adds a child state (atomic by default, or specified type).
// Returns the child for fluent chaining: parent.State("child").Transition("evt", "target").
func (s *StateConfig) State(id string, typ ...StateType) *StateConfig {
	t := Atomic
	if len(typ) > 0 {
		t = typ[0]
	}
	child := NewStateConfig(id, t)
	s.AddChild(child)
	return child
}

// Transition adds a simple transition from event to target.
func (s *StateConfig) Transition(event, target string, actions ...ActionRef) *StateConfig {
	return s.AddTransition(event, To(target, actions...))
}

// Child returns the direct child with the given ID, or nil.
func (s *StateConfig) Child(id string) *StateConfig {
	for _, c := range s.Children {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Validate performs recursive validation of the StateConfig tree.
func (s *StateConfig) Validate() error {
	if s.ID == "" {
		return errors.New("state ID is required")
	}
	if err := validateSegment(s.ID); err != nil {
		return fmt.Errorf("state ID %q: %w", s.ID, err)
	}

	switch s.Type {
	case Atomic, Final:
		if s.Initial != "" {
			return fmt.Errorf("%s state %s cannot have Initial", s.Type, s.ID)
		}
		if len(s.Children) > 0 {
			return fmt.Errorf("%s state %s cannot have Children", s.Type, s.ID)
		}
		if s.Type == Final && (len(s.Always) > 0 || len(s.After) > 0) {
			return fmt.Errorf("final state %s cannot have automatic or delayed transitions", s.ID)
		}
	case Compound:
		if len(s.Children) == 0 {
			return fmt.Errorf("%s state %s requires Children", s.Type, s.ID)
		}
		if s.Initial == "" {
			return fmt.Errorf("%s state %s requires Initial child", s.Type, s.ID)
		}
		if s.Child(s.Initial) == nil {
			return fmt.Errorf("initial child %q not found in children of %s", s.Initial, s.ID)
		}
	default:
		return fmt.Errorf("invalid state type %q for state %s", s.Type, s.ID)
	}

	if err := validateOn(s.ID, s.On); err != nil {
		return err
	}
	for i, d := range s.After {
		if d.Delay <= 0 {
			return fmt.Errorf("delayed transition %d of %s must have a positive delay", i, s.ID)
		}
		if len(d.Transitions) == 0 {
			return fmt.Errorf("delayed transition %s of %s has no candidates", d.Delay, s.ID)
		}
	}

	seen := make(map[string]struct{}, len(s.Children))
	for i, child := range s.Children {
		if child == nil {
			return fmt.Errorf("child %d of %s is nil", i, s.ID)
		}
		if _, dup := seen[child.ID]; dup {
			return fmt.Errorf("duplicate child %q in %s", child.ID, s.ID)
		}
		seen[child.ID] = struct{}{}
		if err := child.Validate(); err != nil {
			return fmt.Errorf("child %d (%s) of %s failed validation: %w", i, child.ID, s.ID, err)
		}
	}

	return nil
}

func validateOn(owner string, on map[string][]TransitionConfig) error {
	for event, candidates := range on {
		if strings.TrimSpace(event) == "" {
			return fmt.Errorf("empty event name in On map for state %s", owner)
		}
		if len(candidates) == 0 {
			return fmt.Errorf("event %q of state %s has no transition candidates", event, owner)
		}
	}
	return nil
}
