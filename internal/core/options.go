// Options for configuring System instances.
package core

import (
	"context"
	"log/slog"
)

// Option applies configuration to a System via the functional options pattern.
type Option func(*System)

// ActionInfo identifies the action an ActionRunner is asked to run.
type ActionInfo struct {
	Actor   string
	Machine string
	Action  string
	Kind    ActionKind
	Event   Event
}

// ActionRunner wraps the execution of every action. exec performs the action and
// must be called at most once; returning without calling it skips the action.
type ActionRunner interface {
	Run(ctx context.Context, info ActionInfo, exec func() error) error
}

type directRunner struct{}

func (directRunner) Run(_ context.Context, _ ActionInfo, exec func() error) error {
	return exec()
}

// WithLogger sets the logger used for log actions and runtime diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *System) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock used to arm and fire delayed transitions.
func WithClock(c Clock) Option {
	return func(s *System) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithMaxIterations bounds the automatic-transition loop of a single settle.
func WithMaxIterations(n int) Option {
	return func(s *System) {
		if n > 0 {
			s.maxIterations = n
		}
	}
}

// WithMaxCascadeDepth bounds the nesting of event deliveries.
func WithMaxCascadeDepth(n int) Option {
	return func(s *System) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// WithObserver adds an observer. May be given more than once.
func WithObserver(o Observer) Option {
	return func(s *System) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// WithActionRunner configures the System with a custom ActionRunner.
func WithActionRunner(r ActionRunner) Option {
	return func(s *System) {
		if r != nil {
			s.runner = r
		}
	}
}

// WithUnhandledHandler registers a callback for events that matched nothing.
func WithUnhandledHandler(fn func(UnhandledEvent)) Option {
	return func(s *System) {
		s.unhandled = fn
	}
}

// WithInitialContext overrides the root definition's context.
func WithInitialContext(ctx any) Option {
	return func(s *System) {
		s.initial = ctx
		s.hasInitial = true
	}
}

// WithName sets the root actor's name. Defaults to the definition ID.
func WithName(name string) Option {
	return func(s *System) {
		if name != "" {
			s.name = name
		}
	}
}
