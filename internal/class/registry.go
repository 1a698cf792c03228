// Package class provides the ordered, append-only class name registry.
package class

import (
	"fmt"
	"strconv"
)

// Registry is an ordered list of class names. A class id is the name's
// position in the list. Ids are stable for the lifetime of a session:
// names are only ever appended, never removed or reordered, because ids
// already written to annotation files must keep their meaning.
type Registry struct {
	names []string
	index map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]int),
	}
}

// NewRegistryWithNames creates a registry seeded with the given names.
// Duplicate names keep their first position.
func NewRegistryWithNames(names []string) *Registry {
	r := NewRegistry()
	for _, name := range names {
		r.Add(name)
	}
	return r
}

// Len returns the number of registered classes.
func (r *Registry) Len() int {
	return len(r.names)
}

// Name returns the name for a class id, or "" if the id is out of range.
func (r *Registry) Name(id int) string {
	if id < 0 || id >= len(r.names) {
		return ""
	}
	return r.names[id]
}

// Names returns a copy of the ordered name list.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Add appends a class name and returns its id. If the name is already
// registered the existing id is returned and the registry is unchanged.
func (r *Registry) Add(name string) int {
	if id, ok := r.index[name]; ok {
		return id
	}
	id := len(r.names)
	r.names = append(r.names, name)
	r.index[name] = id
	return id
}

// Resolve maps an annotation-file token to a class id.
//
// A token that parses as a non-negative integer is treated as a numeric
// id: in-range ids resolve without mutation, out-of-range ids grow the
// registry with placeholder names up to and including the requested id.
// Any other token is a legacy name: known names resolve to their id,
// unknown names are appended as new classes.
func (r *Registry) Resolve(token string) int {
	if id, err := strconv.Atoi(token); err == nil && id >= 0 {
		for len(r.names) <= id {
			placeholder := fmt.Sprintf("class_%d", len(r.names))
			r.index[placeholder] = len(r.names)
			r.names = append(r.names, placeholder)
		}
		return id
	}
	return r.Add(token)
}

// Truncate discards classes with id >= n. It exists solely so that undo
// can revert registry growth caused by the operation being undone; it
// must never be used to remove a class that any annotation references.
func (r *Registry) Truncate(n int) {
	if n < 0 || n >= len(r.names) {
		return
	}
	for _, name := range r.names[n:] {
		delete(r.index, name)
	}
	r.names = r.names[:n]
}
