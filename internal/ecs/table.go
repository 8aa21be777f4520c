package ecs

import "sort"

// View is the read-only face of a Table handed to systems that do not own the
// component kind.
type View[T any] interface {
	// Get returns a copy of e's component and whether it exists.
	Get(e Entity) (T, bool)
	// Has reports whether e carries the component.
	Has(e Entity) bool
	// Entities returns every entity carrying the component, in ascending handle order.
	Entities() []Entity
	// Len returns the number of rows.
	Len() int
}

// Table stores one component kind keyed by entity.
// Rows are stored by value; Get hands out copies, so only Set, Update and
// Delete change stored state.
type Table[T any] struct {
	name string
	reg  *Registry
	rows map[Entity]T
}

// NewTable creates a Table bound to reg. Rows are removed automatically when
// their entity is destroyed.
//
// Precondition: reg must be non-nil.
func NewTable[T any](reg *Registry, name string) *Table[T] {
	t := &Table[T]{name: name, reg: reg, rows: make(map[Entity]T)}
	reg.attach(t)
	return t
}

// Name returns the component kind's name, used in diagnostics.
func (t *Table[T]) Name() string { return t.name }

// Get returns a copy of e's component and whether it exists.
func (t *Table[T]) Get(e Entity) (T, bool) {
	v, ok := t.rows[e]
	return v, ok
}

// Has reports whether e carries the component.
func (t *Table[T]) Has(e Entity) bool {
	_, ok := t.rows[e]
	return ok
}

// Len returns the number of rows.
func (t *Table[T]) Len() int { return len(t.rows) }

// Entities returns every entity carrying the component, in ascending handle order.
func (t *Table[T]) Entities() []Entity {
	out := make([]Entity, 0, len(t.rows))
	for e := range t.rows {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Set attaches or replaces e's component. Setting a component on a dead
// entity is ignored and reported as false.
func (t *Table[T]) Set(e Entity, v T) bool {
	if !t.reg.Alive(e) {
		return false
	}
	t.rows[e] = v
	return true
}

// Update applies fn to e's component in place and reports whether the row existed.
func (t *Table[T]) Update(e Entity, fn func(v *T)) bool {
	v, ok := t.rows[e]
	if !ok {
		return false
	}
	fn(&v)
	t.rows[e] = v
	return true
}

// Delete detaches e's component. Deleting a missing row is a no-op.
func (t *Table[T]) Delete(e Entity) {
	delete(t.rows, e)
}

// View returns t as a read-only View.
func (t *Table[T]) View() View[T] { return t }

func (t *Table[T]) drop(e Entity) { delete(t.rows, e) }
