// Error taxonomy for definition compilation and dispatch.
package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDefinition matches every *DefinitionError.
	ErrDefinition = errors.New("invalid machine definition")
	// ErrTransitionLoop matches every *TransitionLoopError.
	ErrTransitionLoop = errors.New("automatic transitions did not converge")
	// ErrCascadeDepth is returned when message delivery nests deeper than the configured bound.
	ErrCascadeDepth = errors.New("message cascade too deep")
	// ErrStopped is returned when sending to a stopped system.
	ErrStopped = errors.New("actor system stopped")
)

// DefinitionError reports a machine definition that cannot be compiled.
type DefinitionError struct {
	Machine string
	Reason  string
	Err     error
}

func (e *DefinitionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("machine %q: %s", e.Machine, e.Reason)
	}
	return fmt.Sprintf("machine %q: %s: %v", e.Machine, e.Reason, e.Err)
}

func (e *DefinitionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDefinition}
	}
	return []error{ErrDefinition, e.Err}
}

// TransitionLoopError reports automatic transitions that kept firing past the
// iteration bound. Trail lists the transitions taken, oldest first.
type TransitionLoopError struct {
	Actor      string
	Iterations int
	Trail      []string
}

func (e *TransitionLoopError) Error() string {
	trail := e.Trail
	if len(trail) > 6 {
		trail = append(append([]string{}, trail[:3]...), append([]string{"..."}, trail[len(trail)-3:]...)...)
	}
	return fmt.Sprintf("actor %s: automatic transitions did not settle after %d iterations [%s]",
		e.Actor, e.Iterations, strings.Join(trail, ", "))
}

func (e *TransitionLoopError) Is(target error) bool {
	return target == ErrTransitionLoop
}

// ActionError wraps a failure raised by an action or guard.
type ActionError struct {
	Actor  string
	Action string
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("actor %s: action %q: %v", e.Actor, e.Action, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}
