package crafter

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"go.uber.org/zap"
)

// ---------------------------------------------------------------------------
// Factory methods
// ---------------------------------------------------------------------------

// Resolve returns the value of ref in the innermost scope. Prefer the
// generic [Resolve] helper over calling this method directly.
func (f *Factory) Resolve(ref ProductRef) (any, error) {
	return f.resolveIn(len(f.layers)-1, ref)
}

func (f *Factory) resolveIn(depth int, ref ProductRef) (any, error) {
	if f.shutdown {
		return nil, ErrAlreadyShutdown
	}
	e, err := f.resolve(depth, ProductOf(ref))
	if err != nil {
		return nil, err
	}
	return e.value, nil
}

// ---------------------------------------------------------------------------
// Generic helpers
// ---------------------------------------------------------------------------

// Resolve is a generic helper that resolves the unnamed key of T. It is the
// recommended way to retrieve values:
//
//	name, err := crafter.Resolve[AppName](factory)
func Resolve[T any](r Resolver) (T, error) {
	return ResolveKey[T](r, KeyOf[T]())
}

// ResolveKey resolves ref and converts the result to T:
//
//	prefix, err := crafter.ResolveKey[AppName](factory, LogFilePrefix)
func ResolveKey[T any](r Resolver, ref ProductRef) (T, error) {
	var zero T

	val, err := r.Resolve(ref)
	if err != nil {
		return zero, err
	}
	if val == nil {
		return zero, nil
	}

	out, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%w: cannot convert %T to %s", ErrProductTypeMismatch, val, reflect.TypeFor[T]())
	}
	return out, nil
}

// MustResolve is the item-style lookup: like [Resolve], but it panics
// instead of returning an error.
func MustResolve[T any](r Resolver) T {
	v, err := Resolve[T](r)
	if err != nil {
		panic(err)
	}
	return v
}

// ---------------------------------------------------------------------------
// Internal
// ---------------------------------------------------------------------------

// entry is a built product and the providers it was built from, keyed by
// product type. A nil provider records an optional input that had no
// provider at all.
type entry struct {
	value any
	uses  map[Key]*Provider

	// local is set when an optional input failed for another reason than
	// a missing provider. Such entries are only reused where they were
	// built.
	local bool
}

func (e *entry) merge(dep *entry) {
	for k, p := range dep.uses {
		e.uses[k] = p
	}
	e.local = e.local || dep.local
}

// unavailable records that the optional input k could not be resolved in l.
func (e *entry) unavailable(l *layer, k Key) {
	if l.group.Has(k) {
		e.local = true
		return
	}
	e.uses[ProductOf(k).Resolved()] = nil
}

// validIn reports whether l sees the same providers e was built from.
func (e *entry) validIn(l *layer) bool {
	for k, p := range e.uses {
		if l.group.providers[k] != p {
			return false
		}
	}
	return true
}

// resolve builds product for the layer at depth. Providers are looked up in
// that layer, whose group already holds every outer provider it does not
// override.
//
// A scoped product is cached in the outermost layer that sees the same
// providers for it and for everything it was built from, so scopes that
// override none of them reuse the outer value.
func (f *Factory) resolve(depth int, product Product) (*entry, error) {
	key := product.Resolved()

	p, ok := f.layers[depth].group.providers[key]
	if !ok {
		return nil, &ResolutionError{Product: product.Declared(), Err: ErrUnknownProductType}
	}

	if p.lifetime == Scoped {
		if e := f.cached(depth, key); e != nil {
			return e, nil
		}
	}

	if f.building[key] {
		return nil, f.cycleError(key)
	}
	f.building[key] = true
	f.chain = append(f.chain, key)
	defer func() {
		delete(f.building, key)
		f.chain = f.chain[:len(f.chain)-1]
	}()

	e := &entry{uses: map[Key]*Provider{key: p}}
	args := make([]arg, len(p.deps))
	for i, d := range p.deps {
		dep, err := f.resolve(depth, ProductOf(d.Type()))
		if err == nil {
			e.merge(dep)
			args[i] = arg{value: dep.value, resolved: true}
			continue
		}
		if !d.IsOptional() || errors.Is(err, ErrCyclicDependency) {
			return nil, withRequester(err, key, i, "")
		}

		f.log.Debug("optional dependency unavailable, using fallback",
			zap.Stringer("product", key),
			zap.Int("input", i),
			zap.Stringer("dependency", d.Type()),
			zap.Error(err),
		)
		e.unavailable(f.layers[depth], d.Type())
		args[i] = arg{value: d.Fallback()}
	}

	f.log.Debug("invoking provider",
		zap.Stringer("product", key),
		zap.String("source", p.source),
		zap.Int("depth", depth),
	)
	v, err := p.call(args)
	if err != nil {
		return nil, err
	}
	if err := checkProduct(key, v); err != nil {
		return nil, fmt.Errorf("provider for %s: %w", product, err)
	}
	if len(p.fields) > 0 {
		if v, err = f.inject(depth, p, key, v, e); err != nil {
			return nil, err
		}
	}
	e.value = v

	if p.lifetime == Scoped {
		f.store(depth, key, p, e)
	}
	return e, nil
}

// cached returns the entry for key that is valid in the layer at depth.
// Entries in that layer always are; outer ones only while the layer sees
// the providers they were built from.
func (f *Factory) cached(depth int, key Key) *entry {
	for i := depth; i >= 0; i-- {
		e, ok := f.layers[i].cache[key]
		if !ok {
			continue
		}
		if i == depth || (!e.local && e.validIn(f.layers[depth])) {
			return e
		}
	}
	return nil
}

func (f *Factory) store(depth int, key Key, p *Provider, e *entry) {
	home := depth
	if !e.local {
		for i := 0; i < depth; i++ {
			if e.validIn(f.layers[i]) {
				home = i
				break
			}
		}
	}

	l := f.layers[home]
	l.cache[key] = e
	if c, ok := e.value.(io.Closer); ok && p.closeWithScope {
		l.closers = append(l.closers, c)
	}
}

func (f *Factory) cycleError(key Key) error {
	start := 0
	for i, k := range f.chain {
		if k == key {
			start = i
			break
		}
	}

	chain := append(append([]Key(nil), f.chain[start:]...), key)
	return &ResolutionError{Product: key, Chain: chain, Err: ErrCyclicDependency}
}

// withRequester records which input or field of which provider failed, on
// errors raised by the factory for it directly. Errors returned by provider
// callables are passed through untouched.
func withRequester(err error, requester Key, input int, field string) error {
	e, ok := err.(*ResolutionError)
	if !ok || !e.Requester.IsZero() {
		return err
	}
	annotated := *e
	annotated.Requester = requester
	annotated.Input = input
	annotated.Field = field
	return &annotated
}
