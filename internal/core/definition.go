// Definition compilation: a validated MachineConfig is flattened into an arena of
// nodes indexed by int, with targets, guards and actions resolved up front so the
// interpreter never looks anything up by name at dispatch time.
package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/comalice/riskbox/internal/primitives"
)

const rootIndex = 0

// Synthetic event types produced by the interpreter.
const (
	EventInit   = "$init"
	EventAlways = "$always"
)

// Definition is an immutable compiled machine, shared by every actor spawned from it.
type Definition struct {
	id      string
	version string
	config  primitives.MachineConfig
	context any
	nodes   []*node
	byPath  map[string]int
}

type node struct {
	index    int
	name     string
	path     string
	parent   int
	depth    int
	kind     primitives.StateType
	initial  int
	children []int
	entry    []*Action
	exit     []*Action
	on       map[string][]*transition
	events   []string
	always   []*transition
	after    []delay
}

type transition struct {
	source   int
	target   int // -1 for targetless
	internal bool
	event    string
	guard    *Guard
	actions  []*Action
}

type delay struct {
	d     time.Duration
	event string
}

// NewDefinition validates config and compiles it against impl.
func NewDefinition(config primitives.MachineConfig, impl Implementations) (*Definition, error) {
	if err := config.Validate(); err != nil {
		return nil, &DefinitionError{Machine: config.ID, Reason: "invalid config", Err: err}
	}

	d := &Definition{
		id:      config.ID,
		version: primitives.Fingerprint(&config),
		config:  config,
		context: config.Context,
		byPath:  make(map[string]int),
	}
	root := &node{index: rootIndex, name: config.ID, parent: -1, kind: primitives.Compound, initial: -1}
	d.nodes = append(d.nodes, root)
	d.byPath[""] = rootIndex

	for _, s := range config.States {
		d.add(rootIndex, s)
	}
	root.initial = d.byPath[config.Initial]

	c := &compiler{def: d, impl: impl}
	if err := c.compileOn(root, config.On); err != nil {
		return nil, err
	}
	err := config.Walk(func(path string, s *primitives.StateConfig) error {
		return c.compileState(d.nodes[d.byPath[path]], s)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// MustDefinition is like NewDefinition but panics on error. For package-level machines.
func MustDefinition(config primitives.MachineConfig, impl Implementations) *Definition {
	d, err := NewDefinition(config, impl)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Definition) add(parent int, s *primitives.StateConfig) {
	p := d.nodes[parent]
	n := &node{
		index:   len(d.nodes),
		name:    s.ID,
		path:    joinPath(p.path, s.ID),
		parent:  parent,
		depth:   p.depth + 1,
		kind:    s.Type,
		initial: -1,
	}
	d.nodes = append(d.nodes, n)
	d.byPath[n.path] = n.index
	p.children = append(p.children, n.index)
	for _, c := range s.Children {
		d.add(n.index, c)
	}
	if s.Initial != "" {
		n.initial = d.byPath[joinPath(n.path, s.Initial)]
	}
}

type compiler struct {
	def  *Definition
	impl Implementations
}

func (c *compiler) fail(reason string, err error) error {
	return &DefinitionError{Machine: c.def.id, Reason: reason, Err: err}
}

func (c *compiler) compileState(n *node, s *primitives.StateConfig) error {
	var err error
	if n.entry, err = c.actions(s.Entry); err != nil {
		return c.fail("state "+n.path+" entry", err)
	}
	if n.exit, err = c.actions(s.Exit); err != nil {
		return c.fail("state "+n.path+" exit", err)
	}
	if err := c.compileOn(n, s.On); err != nil {
		return err
	}
	for i, tc := range s.Always {
		t, err := c.transition(n, EventAlways, tc)
		if err != nil {
			return c.fail(fmt.Sprintf("state %s always %d", n.path, i), err)
		}
		n.always = append(n.always, t)
	}
	for _, dt := range s.After {
		name := fmt.Sprintf("$after(%s)#%s", dt.Delay, n.path)
		for i, tc := range dt.Transitions {
			t, err := c.transition(n, name, tc)
			if err != nil {
				return c.fail(fmt.Sprintf("state %s after %s %d", n.path, dt.Delay, i), err)
			}
			n.addOn(name, t)
		}
		n.after = append(n.after, delay{d: dt.Delay, event: name})
	}
	return nil
}

func (c *compiler) compileOn(n *node, on map[string][]primitives.TransitionConfig) error {
	events := make([]string, 0, len(on))
	for e := range on {
		events = append(events, e)
	}
	sort.Strings(events)
	for _, e := range events {
		for i, tc := range on[e] {
			t, err := c.transition(n, e, tc)
			if err != nil {
				return c.fail(fmt.Sprintf("state %s event %s candidate %d", n.label(), e, i), err)
			}
			n.addOn(e, t)
		}
		n.events = append(n.events, e)
	}
	return nil
}

func (c *compiler) transition(n *node, event string, tc primitives.TransitionConfig) (*transition, error) {
	t := &transition{source: n.index, target: -1, event: event}
	kind, _, err := primitives.ParseTarget(tc.Target)
	if err != nil {
		return nil, err
	}
	if kind != primitives.TargetNone {
		abs, err := primitives.ResolveTarget(n.path, tc.Target)
		if err != nil {
			return nil, err
		}
		idx, ok := c.def.byPath[abs]
		if !ok {
			return nil, fmt.Errorf("target %q does not resolve to a state", tc.Target)
		}
		t.target = idx
		t.internal = kind == primitives.TargetChild
	}
	if tc.Guard != nil {
		if t.guard, err = c.guard(tc.Guard); err != nil {
			return nil, err
		}
	}
	if t.actions, err = c.actions(tc.Actions); err != nil {
		return nil, err
	}
	return t, nil
}

func (c *compiler) actions(refs []primitives.ActionRef) ([]*Action, error) {
	out := make([]*Action, 0, len(refs))
	for _, ref := range refs {
		switch r := ref.(type) {
		case *Action:
			if r == nil {
				return nil, fmt.Errorf("nil action")
			}
			out = append(out, r)
		case string:
			a, ok := c.impl.Actions[r]
			if !ok || a == nil {
				return nil, fmt.Errorf("action %q is not implemented", r)
			}
			out = append(out, a)
		default:
			return nil, fmt.Errorf("unsupported action reference %T", ref)
		}
	}
	return out, nil
}

func (c *compiler) guard(ref primitives.GuardRef) (*Guard, error) {
	switch r := ref.(type) {
	case *Guard:
		if r == nil {
			return nil, fmt.Errorf("nil guard")
		}
		return r, nil
	case string:
		g, ok := c.impl.Guards[r]
		if !ok || g == nil {
			return nil, fmt.Errorf("guard %q is not implemented", r)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unsupported guard reference %T", ref)
	}
}

func (n *node) addOn(event string, t *transition) {
	if n.on == nil {
		n.on = make(map[string][]*transition)
	}
	n.on[event] = append(n.on[event], t)
}

func (n *node) label() string {
	if n.path == "" {
		return "(machine)"
	}
	return n.path
}

// ID returns the machine ID.
func (d *Definition) ID() string { return d.id }

// Version returns the structural fingerprint of the definition.
func (d *Definition) Version() string { return d.version }

// Config returns the source config.
func (d *Definition) Config() primitives.MachineConfig { return d.config }

// Context returns the default initial context.
func (d *Definition) Context() any { return d.context }

// States returns every state path in declaration order.
func (d *Definition) States() []string {
	out := make([]string, 0, len(d.nodes)-1)
	for _, n := range d.nodes[1:] {
		out = append(out, n.path)
	}
	return out
}

// InitialPath returns the dotted path of the leaf entered on start.
func (d *Definition) InitialPath() string {
	path := d.initialPath(rootIndex)
	return d.nodes[path[len(path)-1]].path
}

// Edge is one resolved transition, for visualization.
type Edge struct {
	From  string
	To    string
	Event string
	Guard string
	Kind  string // "event", "always" or "after"
}

// Edges lists every targeted transition in a stable order.
func (d *Definition) Edges() []Edge {
	var out []Edge
	for _, n := range d.nodes {
		for _, e := range n.events {
			for _, t := range n.on[e] {
				out = append(out, d.edge(t, "event", e))
			}
		}
		for _, t := range n.always {
			out = append(out, d.edge(t, "always", "always"))
		}
		for _, dl := range n.after {
			for _, t := range n.on[dl.event] {
				out = append(out, d.edge(t, "after", "after "+dl.d.String()))
			}
		}
	}
	filtered := out[:0]
	for _, e := range out {
		if e.To != "" {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func (d *Definition) edge(t *transition, kind, label string) Edge {
	e := Edge{From: d.nodes[t.source].path, Event: label, Kind: kind}
	if t.guard != nil {
		e.Guard = t.guard.name
	}
	if t.target >= 0 {
		e.To = d.nodes[t.target].path
		if e.To == "" {
			e.To = d.id
		}
	}
	if e.From == "" {
		e.From = d.id
	}
	return e
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

func (d *Definition) describeTarget(t *transition) string {
	if t.target < 0 {
		return "(targetless)"
	}
	return d.nodes[t.target].path
}
