// TransitionConfig defines a guarded, ordered transition candidate.
//
// Target syntax:
//   - ""             targetless: actions run, no state is exited or entered
//   - "a" / "a.b"    relative to the source's parent (siblings and their children)
//   - ".a"           descendant of the source; the source itself is not exited
//   - "#a.b"         absolute path from the machine root
//
// Guards and Actions are references (value or string name) resolved at compile time.
package primitives

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ActionRef references an action: either a string name or an action value.
type ActionRef any

// GuardRef references a guard condition: either a string name or a guard value.
type GuardRef any

// TransitionConfig defines a single transition candidate.
type TransitionConfig struct {
	Target  string      `json:"target,omitempty" yaml:"target,omitempty"`
	Guard   GuardRef    `json:"-" yaml:"-"`
	Actions []ActionRef `json:"-" yaml:"-"`
}

// DelayedTransition holds the candidates armed for one delay on state entry.
type DelayedTransition struct {
	Delay       time.Duration      `json:"delay" yaml:"delay"`
	Transitions []TransitionConfig `json:"transitions" yaml:"transitions"`
}

// TargetKind classifies a target string.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetSibling
	TargetChild
	TargetAbsolute
)

// To is shorthand for an unguarded transition.
func To(target string, actions ...ActionRef) TransitionConfig {
	return TransitionConfig{Target: target, Actions: actions}
}

// When is shorthand for a guarded transition.
func When(guard GuardRef, target string, actions ...ActionRef) TransitionConfig {
	return TransitionConfig{Target: target, Guard: guard, Actions: actions}
}

// Do is shorthand for a targetless transition that only runs actions.
func Do(actions ...ActionRef) TransitionConfig {
	return TransitionConfig{Actions: actions}
}

// Validate checks target path syntax.
func (t *TransitionConfig) Validate() error {
	_, _, err := ParseTarget(t.Target)
	return err
}

// ParseTarget splits a target into its kind and dot-separated segments.
func ParseTarget(target string) (TargetKind, []string, error) {
	if target == "" {
		return TargetNone, nil, nil
	}
	kind := TargetSibling
	path := target
	switch {
	case strings.HasPrefix(target, "#"):
		kind = TargetAbsolute
		path = target[1:]
	case strings.HasPrefix(target, "."):
		kind = TargetChild
		path = target[1:]
	}
	if path == "" {
		return TargetNone, nil, fmt.Errorf("invalid target path %q: empty path", target)
	}
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		if err := validateSegment(seg); err != nil {
			return TargetNone, nil, fmt.Errorf("invalid target path %q: %w at index %d", target, err, i)
		}
	}
	return kind, segments, nil
}

func validateSegment(seg string) error {
	if strings.TrimSpace(seg) == "" {
		return errors.New("empty segment")
	}
	for _, r := range seg {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return fmt.Errorf("invalid character '%c'", r)
		}
	}
	return nil
}

// ResolveTarget resolves target against the dotted path of the declaring state
// ("" for machine-level transitions) and returns the absolute dotted path.
// Returns "" for targetless transitions.
func ResolveTarget(sourcePath, target string) (string, error) {
	kind, segments, err := ParseTarget(target)
	if err != nil {
		return "", err
	}
	rel := strings.Join(segments, ".")
	switch kind {
	case TargetNone:
		return "", nil
	case TargetAbsolute:
		return rel, nil
	case TargetChild:
		return joinPath(sourcePath, rel), nil
	default:
		return joinPath(ParentPath(sourcePath), rel), nil
	}
}

// ParentPath returns the dotted path of the parent state ("" for top-level states).
func ParentPath(path string) string {
	idx := strings.LastIndex(path, ".")
	if idx == -1 {
		return ""
	}
	return path[:idx]
}

func joinPath(prefix, rel string) string {
	if prefix == "" {
		return rel
	}
	return prefix + "." + rel
}
