// Package ecs provides the entity registry and typed component tables shared by
// every combat system.
//
// Entities are opaque integer handles minted from a counter and never reused.
// Each component kind lives in its own Table; a Table's write methods are only
// reachable by code that holds the *Table, while other systems receive a View.
// The package is not safe for concurrent use; an encounter owns its registry and
// serialises all access.
package ecs

// Entity is an opaque handle to a set of components.
type Entity uint64

// NilEntity is the zero value; no live entity has this handle.
const NilEntity Entity = 0

// dropper removes one entity's row from a table.
type dropper interface {
	drop(e Entity)
}

// Registry mints entity handles and tracks which handles are live.
//
// Invariant: handles are strictly increasing and never reused.
type Registry struct {
	next   Entity
	alive  map[Entity]struct{}
	tables []dropper
}

// NewRegistry creates an empty Registry.
//
// Postcondition: the first Create returns 1.
func NewRegistry() *Registry {
	return &Registry{
		next:  1,
		alive: make(map[Entity]struct{}),
	}
}

// Create mints a new live entity.
func (r *Registry) Create() Entity {
	e := r.next
	r.next++
	r.alive[e] = struct{}{}
	return e
}

// Destroy marks e dead and removes its row from every table attached to r.
// Destroying an unknown or already-dead entity is a no-op.
//
// Postcondition: Alive(e) is false and no attached table has a row for e.
func (r *Registry) Destroy(e Entity) {
	if _, ok := r.alive[e]; !ok {
		return
	}
	delete(r.alive, e)
	for _, t := range r.tables {
		t.drop(e)
	}
}

// Alive reports whether e was created and not yet destroyed.
func (r *Registry) Alive(e Entity) bool {
	_, ok := r.alive[e]
	return ok
}

// Count returns the number of live entities.
func (r *Registry) Count() int {
	return len(r.alive)
}

func (r *Registry) attach(t dropper) {
	r.tables = append(r.tables, t)
}
