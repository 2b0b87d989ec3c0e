package roomtype

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEntrance is returned by [New] when no type has IsEntrance set.
	ErrNoEntrance = errors.New("catalog has no entrance type")

	// ErrMultipleEntrances is returned by [New] when more than one type has
	// IsEntrance set.
	ErrMultipleEntrances = errors.New("catalog has more than one entrance type")

	// ErrNoNone is returned by [New] when no type has IsNone set.
	ErrNoNone = errors.New("catalog has no none type")

	// ErrMultipleNone is returned by [New] when more than one type has IsNone set.
	ErrMultipleNone = errors.New("catalog has more than one none type")

	// ErrEmptyName is returned by [New] when a type has no name.
	ErrEmptyName = errors.New("type name must not be empty")

	// ErrDuplicateName is returned by [New] when two types share a name.
	ErrDuplicateName = errors.New("duplicate type name")
)

// Registry is an immutable catalog of room node types.
// It is safe for concurrent use because it is never modified after [New].
type Registry struct {
	types    []*Type
	byName   map[string]*Type
	entrance *Type
	none     *Type
}

// New validates types and builds a registry. The slice is copied; later
// changes to it do not affect the registry.
func New(types []Type) (*Registry, error) {
	r := &Registry{
		types:  make([]*Type, 0, len(types)),
		byName: make(map[string]*Type, len(types)),
	}
	for i := range types {
		t := types[i]
		if t.Name == "" {
			return nil, fmt.Errorf("type %d: %w", i, ErrEmptyName)
		}
		if _, dup := r.byName[t.Name]; dup {
			return nil, fmt.Errorf("type %q: %w", t.Name, ErrDuplicateName)
		}
		p := &t
		if p.IsEntrance {
			if r.entrance != nil {
				return nil, fmt.Errorf("type %q: %w", t.Name, ErrMultipleEntrances)
			}
			r.entrance = p
		}
		if p.IsNone {
			if r.none != nil {
				return nil, fmt.Errorf("type %q: %w", t.Name, ErrMultipleNone)
			}
			r.none = p
		}
		r.types = append(r.types, p)
		r.byName[p.Name] = p
	}
	if r.entrance == nil {
		return nil, ErrNoEntrance
	}
	if r.none == nil {
		return nil, ErrNoNone
	}
	return r, nil
}

// MustNew is like [New] but panics on an invalid catalog.
// Intended for package-level catalogs and tests.
func MustNew(types []Type) *Registry {
	r, err := New(types)
	if err != nil {
		panic(err)
	}
	return r
}

// FindFirst returns the first type, in catalog order, for which pred is true.
func (r *Registry) FindFirst(pred func(*Type) bool) (*Type, bool) {
	for _, t := range r.types {
		if pred(t) {
			return t, true
		}
	}
	return nil, false
}

// AllDisplayable returns the types an editor may offer for selection,
// in catalog order.
func (r *Registry) AllDisplayable() []*Type {
	var out []*Type
	for _, t := range r.types {
		if t.Displayable {
			out = append(out, t)
		}
	}
	return out
}

// All returns every type in catalog order.
func (r *Registry) All() []*Type {
	out := make([]*Type, len(r.types))
	copy(out, r.types)
	return out
}

// ByName returns the type with the given name.
func (r *Registry) ByName(name string) (*Type, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Contains reports whether t is one of this registry's types.
func (r *Registry) Contains(t *Type) bool {
	if t == nil {
		return false
	}
	return r.byName[t.Name] == t
}

// Entrance returns the entrance type.
func (r *Registry) Entrance() *Type { return r.entrance }

// None returns the placeholder type given to freshly created nodes.
func (r *Registry) None() *Type { return r.none }

// Len returns the number of types in the catalog.
func (r *Registry) Len() int { return len(r.types) }
