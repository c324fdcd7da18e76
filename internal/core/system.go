// Package core provides the runtime tier of the statechart engine: compiled
// definitions, actors, and the System that drives an actor tree through
// run-to-completion event processing.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	DefaultMaxIterations   = 100
	DefaultMaxCascadeDepth = 256
)

// System owns one actor tree. A single turn lock serializes Send, Tick, Stop and
// every snapshot read, so one external event is fully absorbed before the next.
type System struct {
	mu       sync.Mutex
	def      *Definition
	root     *Actor
	registry *registry
	timers   timerQueue
	seq      uint64
	now      time.Time
	stopped  bool

	logger        *slog.Logger
	clock         Clock
	maxIterations int
	maxDepth      int
	observers     []Observer
	observer      Observer
	runner        ActionRunner
	unhandled     func(UnhandledEvent)
	initial       any
	hasInitial    bool
	name          string

	subMu   sync.Mutex
	subs    []subscription
	nextSub int
}

type subscription struct {
	id int
	fn func(Snapshot)
}

// step collects the deliveries produced while one actor processes one event.
type step struct {
	ctx    context.Context
	outbox []delivery
}

type delivery struct {
	from  *Actor
	to    Target
	event Event
}

// NewSystem spawns the root actor of def and settles its initial configuration,
// including every child it spawns and every notification those children send.
func NewSystem(def *Definition, opts ...Option) (*System, error) {
	if def == nil {
		return nil, errors.New("core: nil definition")
	}
	s := &System{
		def:           def,
		registry:      newRegistry(),
		logger:        slog.New(slog.DiscardHandler),
		clock:         SystemClock{},
		maxIterations: DefaultMaxIterations,
		maxDepth:      DefaultMaxCascadeDepth,
		runner:        directRunner{},
		name:          def.id,
	}
	for _, opt := range opts {
		opt(s)
	}
	switch len(s.observers) {
	case 0:
		s.observer = NopObserver{}
	case 1:
		s.observer = s.observers[0]
	default:
		s.observer = MultiObserver(s.observers)
	}

	initial := def.Context()
	if s.hasInitial {
		initial = s.initial
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.clock.Now()
	ctx := context.Background()
	st := &step{ctx: ctx}
	root, err := s.spawn(st, nil, s.name, def, initial)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", s.name, err)
	}
	s.root = root
	if err := s.flush(ctx, st, 0); err != nil {
		s.stop(root)
		return nil, fmt.Errorf("start %s: %w", s.name, err)
	}
	return s, nil
}

// Send dispatches evt to the root actor and returns once it and every event it
// caused have been processed. Events that match no transition are not errors.
func (s *System) Send(ctx context.Context, evt Event) error {
	snap, err := s.turn(func() error {
		s.now = s.clock.Now()
		return s.deliver(ctx, s.root, evt, 0)
	})
	if errors.Is(err, ErrStopped) {
		return err
	}
	s.publish(snap)
	return err
}

// Tick fires every delayed transition due at the clock's current time, in
// deadline order. Timers armed while firing are based on the deadline of the
// timer that armed them, so a late Tick catches up deterministically.
func (s *System) Tick(ctx context.Context) (int, error) {
	fired := 0
	snap, err := s.turn(func() error {
		now := s.clock.Now()
		for {
			t := s.timers.popDue(now)
			if t == nil {
				return nil
			}
			delete(t.actor.timers, t.token)
			s.now = t.deadline
			fired++
			s.observer.OnTimer(TimerInfo{Actor: t.actor.id, Event: t.event, Deadline: t.deadline})
			if err := s.deliver(ctx, t.actor, Event{Type: t.event}, 0); err != nil {
				return err
			}
		}
	})
	if errors.Is(err, ErrStopped) {
		return 0, err
	}
	if fired > 0 || err != nil {
		s.publish(snap)
	}
	return fired, err
}

// NextDeadline returns the earliest pending timer deadline.
func (s *System) NextDeadline() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.timers.peek()
	if t == nil {
		return time.Time{}, false
	}
	return t.deadline, true
}

// Snapshot returns the root actor's snapshot.
func (s *System) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root.snapshot()
}

// SnapshotOf returns the snapshot of the actor registered under id.
func (s *System) SnapshotOf(id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.registry.lookup(id)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", id, err)
	}
	return a.snapshot(), nil
}

// Actors lists the IDs of every live actor.
func (s *System) Actors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.ids()
}

// Can reports whether the root actor has an enabled transition for event.
func (s *System) Can(event string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.stopped && s.root.enabled(event)
}

// Subscribe registers fn to receive the root snapshot after every Send and every
// Tick that fired a timer. Callbacks run outside the turn lock. The returned
// func unsubscribes.
func (s *System) Subscribe(fn func(Snapshot)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Stop stops the whole actor tree. Safe to call multiple times.
func (s *System) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stop(s.root)
	s.stopped = true
}

// Root returns the root actor.
func (s *System) Root() *Actor { return s.root }

// Definition returns the root definition.
func (s *System) Definition() *Definition { return s.def }

func (s *System) turn(fn func() error) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return Snapshot{}, ErrStopped
	}
	err := fn()
	return s.root.snapshot(), err
}

func (s *System) publish(snap Snapshot) {
	s.subMu.Lock()
	subs := append([]subscription(nil), s.subs...)
	s.subMu.Unlock()
	for _, sub := range subs {
		sub.fn(snap)
	}
}

// deliver runs evt to completion on a, then delivers everything it enqueued in
// order. Each delivery nests one level deeper.
func (s *System) deliver(ctx context.Context, a *Actor, evt Event, depth int) error {
	if depth > s.maxDepth {
		return fmt.Errorf("deliver %s to %s: %w", evt.Type, a.id, ErrCascadeDepth)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	st := &step{ctx: ctx}
	start := time.Now()
	handled, err := s.process(st, a, evt)
	s.observer.OnDispatch(DispatchInfo{
		Actor:    a.id,
		Machine:  a.def.id,
		Event:    evt.Type,
		Handled:  handled,
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return err
	}
	return s.flush(ctx, st, depth)
}

func (s *System) flush(ctx context.Context, st *step, depth int) error {
	for _, d := range st.outbox {
		target := s.resolve(d)
		if target == nil {
			s.logger.Warn("dropping event for missing target",
				"from", d.from.id, "to", d.to.String(), "event", d.event.Type)
			continue
		}
		if err := s.deliver(ctx, target, d.event, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (s *System) resolve(d delivery) *Actor {
	var a *Actor
	switch d.to.kind {
	case targetSelf:
		a = d.from
	case targetParent:
		a = d.from.parent
	case targetChild:
		a = d.from.children[d.to.name]
	case targetActor:
		a, _ = s.registry.lookup(d.to.name)
	}
	if a == nil || a.stopped {
		return nil
	}
	return a
}

// process selects and applies the transition for evt, then settles automatic
// transitions. Deliveries are left in st.
func (s *System) process(st *step, a *Actor, evt Event) (bool, error) {
	if a.stopped {
		return false, nil
	}
	t, err := s.selectTransition(a, evt)
	if err != nil {
		return false, err
	}
	if t == nil {
		u := UnhandledEvent{Actor: a.id, Machine: a.def.id, State: a.def.nodes[a.leaf].path, Event: evt}
		s.logger.Debug("event not handled", "actor", a.id, "event", evt.Type, "state", u.State)
		s.observer.OnUnhandled(u)
		if s.unhandled != nil {
			s.unhandled(u)
		}
		return false, nil
	}
	if err := s.microstep(st, a, t, evt, false); err != nil {
		return true, err
	}
	return true, s.settle(st, a)
}

// selectTransition searches from the active leaf up to the root; within a node,
// candidates are tried in declaration order and the first passing guard wins.
func (s *System) selectTransition(a *Actor, evt Event) (*transition, error) {
	for _, n := range a.def.ancestry(a.leaf) {
		for _, t := range a.def.nodes[n].on[evt.Type] {
			ok, err := s.evalGuard(a, t, evt)
			if err != nil {
				return nil, err
			}
			if ok {
				return t, nil
			}
		}
	}
	return nil, nil
}

func (s *System) selectAlways(a *Actor) (*transition, error) {
	evt := Event{Type: EventAlways}
	for _, n := range a.def.ancestry(a.leaf) {
		for _, t := range a.def.nodes[n].always {
			ok, err := s.evalGuard(a, t, evt)
			if err != nil {
				return nil, err
			}
			if ok {
				return t, nil
			}
		}
	}
	return nil, nil
}

func (s *System) evalGuard(a *Actor, t *transition, evt Event) (bool, error) {
	if t.guard == nil {
		return true, nil
	}
	ok, err := t.guard.Eval(a.context, evt)
	if err != nil {
		return false, &ActionError{Actor: a.id, Action: "guard " + t.guard.name, Err: err}
	}
	return ok, nil
}

// settle fires automatic transitions until none is enabled. Exceeding the
// iteration bound restores the actor to where it was when settle began.
func (s *System) settle(st *step, a *Actor) error {
	a.begin(len(st.outbox))
	defer func() { a.journal = nil }()
	var trail []string
	for fired := 0; ; fired++ {
		t, err := s.selectAlways(a)
		if err != nil {
			return err
		}
		if t == nil {
			return nil
		}
		if fired == s.maxIterations {
			st.outbox = st.outbox[:a.rollback()]
			return &TransitionLoopError{Actor: a.id, Iterations: fired, Trail: trail}
		}
		trail = append(trail, a.def.nodes[a.leaf].path+" -> "+a.def.describeTarget(t))
		if err := s.microstep(st, a, t, Event{Type: EventAlways}, true); err != nil {
			return err
		}
	}
}

// microstep exits deepest first, runs the transition's actions, then enters
// shallowest first. Targetless transitions only run their actions.
func (s *System) microstep(st *step, a *Actor, t *transition, evt Event, automatic bool) error {
	if t.target < 0 {
		return s.runActions(st, a, t.actions, evt)
	}
	def := a.def
	from := def.nodes[a.leaf].path
	domain := def.computeDomain(t)
	for _, n := range def.getExitStates(a.leaf, domain) {
		a.disarm(n)
		if err := s.runActions(st, a, def.nodes[n].exit, evt); err != nil {
			return err
		}
		a.leaf = def.nodes[n].parent
	}
	if err := s.runActions(st, a, t.actions, evt); err != nil {
		return err
	}
	if err := s.enter(st, a, def.getEntryStates(domain, t.target), evt); err != nil {
		return err
	}
	info := TransitionInfo{
		Actor:     a.id,
		Machine:   def.id,
		Event:     evt.Type,
		From:      from,
		To:        def.nodes[a.leaf].path,
		Automatic: automatic,
	}
	s.logger.Debug("transition", "actor", a.id, "event", evt.Type, "from", info.From, "to", info.To)
	s.observer.OnTransition(info)
	return nil
}

func (s *System) enter(st *step, a *Actor, nodes []int, evt Event) error {
	for _, n := range nodes {
		a.leaf = n
		if err := s.runActions(st, a, a.def.nodes[n].entry, evt); err != nil {
			return err
		}
		a.arm(n, s.now)
	}
	return nil
}

func (s *System) runActions(st *step, a *Actor, actions []*Action, evt Event) error {
	for _, act := range actions {
		info := ActionInfo{Actor: a.id, Machine: a.def.id, Action: act.name, Kind: act.kind, Event: evt}
		err := s.runner.Run(st.ctx, info, func() error {
			return s.exec(st, a, act, evt)
		})
		if err != nil {
			return wrapActionError(a, act, err)
		}
	}
	return nil
}

func wrapActionError(a *Actor, act *Action, err error) error {
	var ae *ActionError
	if errors.As(err, &ae) || errors.Is(err, ErrTransitionLoop) || errors.Is(err, ErrCascadeDepth) {
		return err
	}
	return &ActionError{Actor: a.id, Action: act.name, Err: err}
}

func (s *System) exec(st *step, a *Actor, act *Action, evt Event) error {
	switch act.kind {
	case KindAssign:
		next, err := act.assign(a.context, evt)
		if err != nil {
			return err
		}
		a.context = next
	case KindSend:
		out, err := act.event(a.context, evt)
		if err != nil {
			return err
		}
		st.outbox = append(st.outbox, delivery{from: a, to: act.to, event: out})
	case KindSpawn:
		if c, ok := a.children[act.child]; ok && !c.stopped {
			return nil
		}
		init := act.def.Context()
		if act.init != nil {
			var err error
			if init, err = act.init(a.context, evt); err != nil {
				return err
			}
		}
		c, err := s.spawn(st, a, act.child, act.def, init)
		if err != nil {
			return err
		}
		if a.journal != nil {
			a.journal.spawned = append(a.journal.spawned, c)
		}
	case KindStop:
		if c, ok := a.children[act.child]; ok {
			s.stop(c)
		}
	case KindEffect:
		return act.effect(a.context, evt)
	case KindLog:
		msg, err := act.text(a.context, evt)
		if err != nil {
			return err
		}
		s.logger.Info(msg, "actor", a.id, "action", act.name)
	default:
		return fmt.Errorf("unknown action kind %v", act.kind)
	}
	return nil
}

// spawn creates and attaches an actor, then enters and settles its initial
// configuration. The child's deliveries are appended to st.
func (s *System) spawn(st *step, parent *Actor, name string, def *Definition, ctx any) (*Actor, error) {
	a := newActor(s, parent, name, def, ctx)
	if err := s.registry.register(a); err != nil {
		return nil, fmt.Errorf("spawn %s: %w", a.id, err)
	}
	if parent != nil {
		parent.children[name] = a
	}
	s.observer.OnSpawn(ActorInfo{ID: a.id, Machine: def.id})
	s.logger.Debug("spawned actor", "actor", a.id, "machine", def.id)

	cst := &step{ctx: st.ctx}
	err := s.enter(cst, a, def.initialPath(rootIndex), Event{Type: EventInit})
	if err == nil {
		err = s.settle(cst, a)
	}
	if err != nil {
		s.stop(a)
		return nil, err
	}
	st.outbox = append(st.outbox, cst.outbox...)
	return a, nil
}

// stop cancels timers, stops children in name order, unregisters and detaches a.
// Exit actions do not run.
func (s *System) stop(a *Actor) {
	if a.stopped {
		return
	}
	a.stopped = true
	a.disarmAll()
	for _, c := range a.sortedChildren() {
		s.stop(c)
	}
	s.registry.unregister(a)
	if p := a.parent; p != nil && p.children[a.name] == a {
		delete(p.children, a.name)
	}
	a.parent = nil
	s.observer.OnStop(ActorInfo{ID: a.id, Machine: a.def.id})
	s.logger.Debug("stopped actor", "actor", a.id)
}
