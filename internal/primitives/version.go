// Fingerprinting for MachineConfig.
package primitives

import (
	"crypto/sha256"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// shape is the behavior-free projection of a state used for fingerprinting.
// Action and guard values are reduced to their names.
type shape struct {
	ID       string            `yaml:"id"`
	Type     StateType         `yaml:"type"`
	Initial  string            `yaml:"initial,omitempty"`
	On       []eventShape      `yaml:"on,omitempty"`
	Always   []transitionShape `yaml:"always,omitempty"`
	After    []delayShape      `yaml:"after,omitempty"`
	Entry    []string          `yaml:"entry,omitempty"`
	Exit     []string          `yaml:"exit,omitempty"`
	Children []shape           `yaml:"children,omitempty"`
}

type eventShape struct {
	Event       string            `yaml:"event"`
	Transitions []transitionShape `yaml:"transitions"`
}

type delayShape struct {
	Delay       string            `yaml:"delay"`
	Transitions []transitionShape `yaml:"transitions"`
}

type transitionShape struct {
	Target  string   `yaml:"target,omitempty"`
	Guard   string   `yaml:"guard,omitempty"`
	Actions []string `yaml:"actions,omitempty"`
}

// Namer is implemented by action and guard values that carry a name.
type Namer interface {
	RefName() string
}

// RefName returns a printable name for an action or guard reference.
func RefName(ref any) string {
	switch r := ref.(type) {
	case nil:
		return ""
	case string:
		return r
	case Namer:
		return r.RefName()
	default:
		return fmt.Sprintf("%T", ref)
	}
}

// Fingerprint computes a deterministic short hash of the machine structure.
// Two configs with the same states, targets and action/guard names share a
// fingerprint regardless of map iteration order.
func Fingerprint(config *MachineConfig) string {
	doc := struct {
		ID      string       `yaml:"id"`
		Initial string       `yaml:"initial"`
		On      []eventShape `yaml:"on,omitempty"`
		States  []shape      `yaml:"states"`
	}{
		ID:      config.ID,
		Initial: config.Initial,
		On:      onShape(config.On),
	}
	for _, s := range config.States {
		doc.States = append(doc.States, stateShape(s))
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		// Shapes only hold strings; this cannot fail for a well-formed config.
		return "invalid"
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash[:8])
}

func stateShape(s *StateConfig) shape {
	out := shape{
		ID:      s.ID,
		Type:    s.Type,
		Initial: s.Initial,
		On:      onShape(s.On),
		Always:  transitionsShape(s.Always),
		Entry:   refNames(s.Entry),
		Exit:    refNames(s.Exit),
	}
	for _, d := range s.After {
		out.After = append(out.After, delayShape{Delay: d.Delay.String(), Transitions: transitionsShape(d.Transitions)})
	}
	for _, c := range s.Children {
		out.Children = append(out.Children, stateShape(c))
	}
	return out
}

func onShape(on map[string][]TransitionConfig) []eventShape {
	events := make([]string, 0, len(on))
	for e := range on {
		events = append(events, e)
	}
	sort.Strings(events)
	out := make([]eventShape, 0, len(events))
	for _, e := range events {
		out = append(out, eventShape{Event: e, Transitions: transitionsShape(on[e])})
	}
	return out
}

func transitionsShape(ts []TransitionConfig) []transitionShape {
	out := make([]transitionShape, 0, len(ts))
	for _, t := range ts {
		out = append(out, transitionShape{Target: t.Target, Guard: RefName(t.Guard), Actions: refNames(t.Actions)})
	}
	return out
}

func refNames(refs []ActionRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, RefName(r))
	}
	return out
}
