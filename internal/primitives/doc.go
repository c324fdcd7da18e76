// Package primitives provides the declarative data structures for machine
// definitions: events, state and transition configs, the fluent builder and
// structural validation.
//
// Nothing in this package executes behavior. Actions and guards are carried as
// opaque references (ActionRef, GuardRef) and resolved by internal/core when a
// MachineConfig is compiled into a Definition.
//
// Core invariants:
// - Events are values and are never mutated after construction
// - A MachineConfig is a tree; every transition target must resolve to a node in it
// - Candidate lists are ordered; declaration order is evaluation order
package primitives
