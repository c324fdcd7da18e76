package core

import (
	"sort"
	"strings"

	"github.com/comalice/riskbox/internal/primitives"
)

// Actor status values reported in snapshots.
const (
	StatusActive  = "active"
	StatusDone    = "done"
	StatusStopped = "stopped"
)

// Snapshot is a point-in-time copy of an actor and its subtree. Context is
// the actor's context value as of the snapshot; contexts are expected to be
// plain values so the copy cannot reach back into the actor.
type Snapshot struct {
	ID         string              `json:"id" yaml:"id"`
	Machine    string              `json:"machine" yaml:"machine"`
	Version    string              `json:"version" yaml:"version"`
	Value      string              `json:"value" yaml:"value"`
	Path       []string            `json:"path" yaml:"path"`
	Context    any                 `json:"context" yaml:"context"`
	Status     string              `json:"status" yaml:"status"`
	NextEvents []string            `json:"nextEvents" yaml:"nextEvents"`
	Children   map[string]Snapshot `json:"children,omitempty" yaml:"children,omitempty"`
}

// Matches reports whether the state at the dotted path is active.
func (s Snapshot) Matches(path string) bool {
	return s.Value == path || strings.HasPrefix(s.Value, path+".")
}

// Child returns the snapshot of the named child.
func (s Snapshot) Child(name string) (Snapshot, bool) {
	c, ok := s.Children[name]
	return c, ok
}

// Can reports whether event is among NextEvents.
func (s Snapshot) Can(event string) bool {
	i := sort.SearchStrings(s.NextEvents, event)
	return i < len(s.NextEvents) && s.NextEvents[i] == event
}

func (a *Actor) snapshot() Snapshot {
	n := a.def.nodes[a.leaf]
	s := Snapshot{
		ID:         a.id,
		Machine:    a.def.id,
		Version:    a.def.version,
		Value:      n.path,
		Path:       a.def.statePath(a.leaf),
		Context:    a.context,
		Status:     a.status(),
		NextEvents: a.nextEvents(),
	}
	if len(a.children) > 0 {
		s.Children = make(map[string]Snapshot, len(a.children))
		for name, c := range a.children {
			s.Children[name] = c.snapshot()
		}
	}
	return s
}

func (a *Actor) status() string {
	if a.stopped {
		return StatusStopped
	}
	n := a.def.nodes[a.leaf]
	if n.kind == primitives.Final && n.parent == rootIndex {
		return StatusDone
	}
	return StatusActive
}

// nextEvents lists external event names with at least one enabled candidate.
func (a *Actor) nextEvents() []string {
	if a.stopped {
		return []string{}
	}
	seen := make(map[string]bool)
	out := []string{}
	for _, n := range a.def.ancestry(a.leaf) {
		for _, e := range a.def.nodes[n].events {
			if seen[e] || strings.HasPrefix(e, "$") {
				continue
			}
			if a.enabled(e) {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	sort.Strings(out)
	return out
}

// enabled evaluates guards with a payload-less event; guard errors count as disabled.
func (a *Actor) enabled(event string) bool {
	t, err := a.sys.selectTransition(a, Event{Type: event})
	return err == nil && t != nil
}
