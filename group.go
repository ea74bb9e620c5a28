package crafter

import (
	"fmt"
	"iter"
	"slices"
)

// Group is an ordered collection of providers keyed by resolved product
// type. A group handed to a [Factory] is copied, so later changes to the
// group do not affect scopes that already use it.
type Group struct {
	providers map[Key]*Provider
	order     []Key
}

// NewGroup creates a group holding providers. Later providers replace
// earlier ones for the same product type.
func NewGroup(providers ...*Provider) *Group {
	g := &Group{providers: make(map[Key]*Provider, len(providers))}
	for _, p := range providers {
		g.Add(p)
	}
	return g
}

// Add inserts p, replacing any provider for the same product type.
func (g *Group) Add(p *Provider) {
	key := p.product.Resolved()
	if g.providers == nil {
		g.providers = make(map[Key]*Provider)
	}
	if _, exists := g.providers[key]; !exists {
		g.order = append(g.order, key)
	}
	g.providers[key] = p
}

// Set builds a provider for ref from fn and inserts it, replacing any
// provider for the same product type.
func (g *Group) Set(ref ProductRef, fn any, opts ...Option) error {
	p, err := Provide(fn, slices.Concat(opts, []Option{As(ref)})...)
	if err != nil {
		return err
	}
	g.Add(p)
	return nil
}

// Provide builds a provider from fn and registers it. Registering a second
// provider for the same product type returns [ErrDuplicateProvider].
func (g *Group) Provide(fn any, opts ...Option) error {
	p, err := Provide(fn, opts...)
	if err != nil {
		return err
	}
	if g.Has(p.product) {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, p.product)
	}
	g.Add(p)
	return nil
}

// Constant inserts a provider that always returns value for ref.
func (g *Group) Constant(ref ProductRef, value any) error {
	p, err := Constant(ref, value)
	if err != nil {
		return err
	}
	g.Add(p)
	return nil
}

// Get returns the provider registered for ref.
func (g *Group) Get(ref ProductRef) (*Provider, bool) {
	p, ok := g.providers[ProductOf(ref).Resolved()]
	return p, ok
}

// Has reports whether a provider is registered for ref.
func (g *Group) Has(ref ProductRef) bool {
	_, ok := g.Get(ref)
	return ok
}

// Len returns the number of product types in g.
func (g *Group) Len() int { return len(g.order) }

// Keys returns the product types of g in insertion order.
func (g *Group) Keys() []Key {
	return append([]Key(nil), g.order...)
}

// All iterates over g in insertion order.
func (g *Group) All() iter.Seq2[Key, *Provider] {
	return func(yield func(Key, *Provider) bool) {
		for _, k := range g.order {
			if !yield(k, g.providers[k]) {
				return
			}
		}
	}
}

// Clone returns a shallow copy of g.
func (g *Group) Clone() *Group {
	return Merge(g)
}

// Merge returns a new group holding g's providers overridden by those of
// others, left to right.
func (g *Group) Merge(others ...*Group) *Group {
	return Merge(append([]*Group{g}, others...)...)
}

// Merge returns a new group holding the providers of groups. For product
// types present in several groups, the rightmost group wins; the position
// of the first occurrence is kept.
func Merge(groups ...*Group) *Group {
	out := NewGroup()
	for _, g := range groups {
		if g == nil {
			continue
		}
		for _, p := range g.All() {
			out.Add(p)
		}
	}
	return out
}

func (g *Group) String() string {
	return fmt.Sprintf("Group(%v)", g.order)
}
