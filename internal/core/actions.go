// Actions and guards attached to transitions and state entry/exit.
//
// All constructors are generic over the context type C. The interpreter stores
// contexts as `any`; a mismatch between C and the actor's context surfaces as an
// *ActionError from Send rather than a panic.
package core

import (
	"fmt"

	"github.com/comalice/riskbox/internal/primitives"
)

type Event = primitives.Event

// ActionKind classifies what an action does to the actor.
type ActionKind int

const (
	KindAssign ActionKind = iota
	KindSend
	KindSpawn
	KindStop
	KindEffect
	KindLog
)

func (k ActionKind) String() string {
	switch k {
	case KindAssign:
		return "assign"
	case KindSend:
		return "send"
	case KindSpawn:
		return "spawn"
	case KindStop:
		return "stop"
	case KindEffect:
		return "effect"
	case KindLog:
		return "log"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Action is an immutable action value shared by every actor of a definition.
type Action struct {
	name string
	kind ActionKind

	assign func(ctx any, evt Event) (any, error)
	event  func(ctx any, evt Event) (Event, error)
	to     Target
	child  string
	def    *Definition
	init   func(ctx any, evt Event) (any, error)
	effect func(ctx any, evt Event) error
	text   func(ctx any, evt Event) (string, error)
}

func (a *Action) Name() string        { return a.name }
func (a *Action) Kind() ActionKind    { return a.kind }
func (a *Action) RefName() string     { return a.name }
func (a *Action) Target() Target      { return a.to }
func (a *Action) Child() string       { return a.child }
func (a *Action) Spawns() *Definition { return a.def }

type targetKind int

const (
	targetSelf targetKind = iota
	targetParent
	targetChild
	targetActor
)

// Target addresses the recipient of a send action, resolved at delivery time.
type Target struct {
	kind targetKind
	name string
}

var (
	Self   = Target{kind: targetSelf}
	Parent = Target{kind: targetParent}
)

// ChildTarget addresses the child spawned under name.
func ChildTarget(name string) Target { return Target{kind: targetChild, name: name} }

// ActorTarget addresses an actor by its system-wide ID.
func ActorTarget(id string) Target { return Target{kind: targetActor, name: id} }

func (t Target) String() string {
	switch t.kind {
	case targetSelf:
		return "self"
	case targetParent:
		return "parent"
	case targetChild:
		return "child:" + t.name
	default:
		return "actor:" + t.name
	}
}

func cast[C any](v any) (C, error) {
	if c, ok := v.(C); ok {
		return c, nil
	}
	var zero C
	if v == nil && any(zero) == nil {
		// C is an interface type and the actor has no context.
		return zero, nil
	}
	return zero, fmt.Errorf("context is %T, want %T", v, zero)
}

// Assign replaces the context with fn's result. Assigns on the same transition
// apply in order, each seeing the previous result.
func Assign[C any](name string, fn func(C, Event) C) *Action {
	return &Action{
		name: name,
		kind: KindAssign,
		assign: func(ctx any, evt Event) (any, error) {
			c, err := cast[C](ctx)
			if err != nil {
				return nil, err
			}
			return fn(c, evt), nil
		},
	}
}

// SendTo enqueues the event computed by fn on target.
func SendTo[C any](name string, to Target, fn func(C, Event) Event) *Action {
	return &Action{
		name: name,
		kind: KindSend,
		to:   to,
		event: func(ctx any, evt Event) (Event, error) {
			c, err := cast[C](ctx)
			if err != nil {
				return Event{}, err
			}
			return fn(c, evt), nil
		},
	}
}

// Send enqueues a payload-less event of type eventType on target.
func Send(name string, to Target, eventType string) *Action {
	return &Action{
		name: name,
		kind: KindSend,
		to:   to,
		event: func(any, Event) (Event, error) {
			return primitives.NewEvent(eventType, nil), nil
		},
	}
}

// SendParent enqueues the event computed by fn on the parent actor.
func SendParent[C any](name string, fn func(C, Event) Event) *Action {
	return SendTo(name, Parent, fn)
}

// Raise enqueues eventType on the actor itself, after the current step settles.
func Raise(name, eventType string) *Action {
	return Send(name, Self, eventType)
}

// Forward re-sends the triggering event unchanged to target.
func Forward(name string, to Target) *Action {
	return &Action{
		name:  name,
		kind:  KindSend,
		to:    to,
		event: func(_ any, evt Event) (Event, error) { return evt, nil },
	}
}

// Spawn starts def as a child named childName unless one already exists.
// init computes the child's initial context; nil uses the definition's context.
func Spawn[C any](name, childName string, def *Definition, init func(C, Event) any) *Action {
	a := &Action{name: name, kind: KindSpawn, child: childName, def: def}
	if init != nil {
		a.init = func(ctx any, evt Event) (any, error) {
			c, err := cast[C](ctx)
			if err != nil {
				return nil, err
			}
			return init(c, evt), nil
		}
	}
	return a
}

// StopChild stops and detaches the named child. Missing children are ignored.
func StopChild(name, childName string) *Action {
	return &Action{name: name, kind: KindStop, child: childName}
}

// Effect runs fn for its side effect. A returned error aborts the dispatch.
func Effect[C any](name string, fn func(C, Event) error) *Action {
	return &Action{
		name: name,
		kind: KindEffect,
		effect: func(ctx any, evt Event) error {
			c, err := cast[C](ctx)
			if err != nil {
				return err
			}
			return fn(c, evt)
		},
	}
}

// Log writes fn's message to the system logger at info level.
func Log[C any](name string, fn func(C, Event) string) *Action {
	return &Action{
		name: name,
		kind: KindLog,
		text: func(ctx any, evt Event) (string, error) {
			c, err := cast[C](ctx)
			if err != nil {
				return "", err
			}
			return fn(c, evt), nil
		},
	}
}

// Guard is a named predicate over (context, event).
type Guard struct {
	name string
	fn   func(ctx any, evt Event) (bool, error)
}

func (g *Guard) Name() string    { return g.name }
func (g *Guard) RefName() string { return g.name }

// Eval evaluates the guard.
func (g *Guard) Eval(ctx any, evt Event) (bool, error) {
	return g.fn(ctx, evt)
}

// NewGuard builds a typed guard.
func NewGuard[C any](name string, fn func(C, Event) bool) *Guard {
	return &Guard{
		name: name,
		fn: func(ctx any, evt Event) (bool, error) {
			c, err := cast[C](ctx)
			if err != nil {
				return false, err
			}
			return fn(c, evt), nil
		},
	}
}

// GuardFunc builds an untyped guard that may fail.
func GuardFunc(name string, fn func(ctx any, evt Event) (bool, error)) *Guard {
	return &Guard{name: name, fn: fn}
}

// Implementations resolves string action and guard references at compile time.
type Implementations struct {
	Actions map[string]*Action
	Guards  map[string]*Guard
}
