package types

import "github.com/dolthub/swiss"

// Registry interns struct types by name for a single compilation unit.
// The teacher's own runtime map type (machine.Map, see DESIGN.md) uses
// github.com/dolthub/swiss for its backing hash map; a type registry has
// the same access pattern (point lookups keyed by name, built once and
// read many times during compilation) so it is reused here instead of a
// plain Go map.
type Registry struct {
	structs *swiss.Map[string, *StructType]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{structs: swiss.NewMap[string, *StructType](8)}
}

// Declare interns a new struct type by name. It returns false if a type
// with that name is already registered (spec invariant: struct types are
// interned by name).
func (r *Registry) Declare(st *StructType) bool {
	if _, ok := r.structs.Get(st.Name); ok {
		return false
	}
	r.structs.Put(st.Name, st)
	return true
}

// Lookup returns the struct type registered under name, if any.
func (r *Registry) Lookup(name string) (*StructType, bool) {
	return r.structs.Get(name)
}

// Names returns every registered struct name. Order is made deterministic
// with golang.org/x/exp/slices for use in disassembly dumps and error
// messages, matching SPEC_FULL.md's note on deterministic debug output.
func (r *Registry) Names() []string {
	names := make([]string, 0, int(r.structs.Count()))
	r.structs.Iter(func(k string, _ *StructType) bool {
		names = append(names, k)
		return false
	})
	sortStrings(names)
	return names
}
