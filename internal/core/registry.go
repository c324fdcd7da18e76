package core

import (
	"errors"
	"sort"
)

var (
	ErrNotFound = errors.New("actor not found")
	ErrExists   = errors.New("actor already registered")
)

// registry indexes live actors by ID. Guarded by the System turn lock.
type registry struct {
	actors map[string]*Actor
}

func newRegistry() *registry {
	return &registry{actors: make(map[string]*Actor)}
}

func (r *registry) register(a *Actor) error {
	if _, ok := r.actors[a.id]; ok {
		return ErrExists
	}
	r.actors[a.id] = a
	return nil
}

func (r *registry) unregister(a *Actor) {
	if r.actors[a.id] == a {
		delete(r.actors, a.id)
	}
}

func (r *registry) lookup(id string) (*Actor, error) {
	a, ok := r.actors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (r *registry) ids() []string {
	out := make([]string, 0, len(r.actors))
	for id := range r.actors {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
