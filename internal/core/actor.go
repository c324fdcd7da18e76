package core

import (
	"container/heap"
	"sort"
	"time"
)

// Actor is a live instance of a Definition. All fields are guarded by the owning
// System's turn lock.
type Actor struct {
	sys      *System
	id       string
	name     string
	def      *Definition
	context  any
	leaf     int
	parent   *Actor
	children map[string]*Actor
	timers   map[uint64]*timer
	stopped  bool
	journal  *journal
}

// journal records reversible effects while automatic transitions are settling.
type journal struct {
	context   any
	leaf      int
	outbox    int
	armed     []*timer
	cancelled []*timer
	spawned   []*Actor
}

func newActor(sys *System, parent *Actor, name string, def *Definition, ctx any) *Actor {
	id := name
	if parent != nil {
		id = parent.id + "/" + name
	}
	return &Actor{
		sys:      sys,
		id:       id,
		name:     name,
		def:      def,
		context:  ctx,
		leaf:     rootIndex,
		parent:   parent,
		children: make(map[string]*Actor),
		timers:   make(map[uint64]*timer),
	}
}

// ID returns the slash-joined path of actor names from the root.
func (a *Actor) ID() string { return a.id }

// Name returns the name the actor was spawned under.
func (a *Actor) Name() string { return a.name }

// Definition returns the machine the actor runs.
func (a *Actor) Definition() *Definition { return a.def }

// Snapshot returns the actor's current state and context.
func (a *Actor) Snapshot() Snapshot {
	a.sys.mu.Lock()
	defer a.sys.mu.Unlock()
	return a.snapshot()
}

func (a *Actor) arm(n int, now time.Time) {
	for _, dl := range a.def.nodes[n].after {
		a.sys.seq++
		t := &timer{
			token:    a.sys.seq,
			deadline: now.Add(dl.d),
			actor:    a,
			node:     n,
			event:    dl.event,
		}
		heap.Push(&a.sys.timers, t)
		a.timers[t.token] = t
		if a.journal != nil {
			a.journal.armed = append(a.journal.armed, t)
		}
	}
}

// disarm cancels every pending timer owned by node n.
func (a *Actor) disarm(n int) {
	for tok, t := range a.timers {
		if t.node != n {
			continue
		}
		t.cancelled = true
		delete(a.timers, tok)
		if a.journal != nil {
			a.journal.cancelled = append(a.journal.cancelled, t)
		}
	}
}

func (a *Actor) disarmAll() {
	for tok, t := range a.timers {
		t.cancelled = true
		delete(a.timers, tok)
	}
}

func (a *Actor) begin(outbox int) {
	a.journal = &journal{context: a.context, leaf: a.leaf, outbox: outbox}
}

// rollback undoes everything recorded since begin and returns the outbox length
// to truncate to.
func (a *Actor) rollback() int {
	j := a.journal
	a.journal = nil
	for _, t := range j.cancelled {
		if t.index >= 0 {
			t.cancelled = false
			a.timers[t.token] = t
		}
	}
	// Timers armed inside the loop may also appear in cancelled.
	for _, t := range j.armed {
		t.cancelled = true
		delete(a.timers, t.token)
	}
	for i := len(j.spawned) - 1; i >= 0; i-- {
		a.sys.stop(j.spawned[i])
	}
	a.context = j.context
	a.leaf = j.leaf
	return j.outbox
}

func (a *Actor) sortedChildren() []*Actor {
	names := make([]string, 0, len(a.children))
	for name := range a.children {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Actor, len(names))
	for i, name := range names {
		out[i] = a.children[name]
	}
	return out
}
