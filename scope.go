package crafter

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Scope is a handle on one layer of a [Factory]'s scope stack. A scope is
// active from the moment it is opened until [Scope.Close] succeeds; scopes
// must be closed in reverse order of opening.
//
//	scope, err := factory.ConstantProvider(crafter.KeyOf[AppName](), AppName("abb-crafter"))
//	if err != nil {
//	    return err
//	}
//	defer scope.Close()
type Scope struct {
	f      *Factory
	depth  int
	closed bool
}

// OpenScope pushes a new scope whose providers are those of the innermost
// scope overridden by groups, with an empty cache.
func (f *Factory) OpenScope(groups ...*Group) *Scope {
	g := f.top().group.Merge(groups...)
	l := newLayer(g)
	f.layers = append(f.layers, l)

	s := &Scope{f: f, depth: len(f.layers) - 1}
	l.scope = s
	f.log.Debug("scope opened", zap.Int("depth", s.depth), zap.Int("providers", g.Len()))
	return s
}

// WithProviders runs fn in a new scope holding g and closes the scope on
// every exit path, including panics.
func (f *Factory) WithProviders(g *Group, fn func(*Scope) error) error {
	return f.within(f.OpenScope(g), fn)
}

// ConstantProvider opens a scope in which ref always resolves to value.
func (f *Factory) ConstantProvider(ref ProductRef, value any) (*Scope, error) {
	p, err := Constant(ref, value)
	if err != nil {
		return nil, err
	}
	return f.OpenScope(NewGroup(p)), nil
}

// WithConstant runs fn in a scope in which ref always resolves to value.
// The scope is closed on every exit path, including panics.
func (f *Factory) WithConstant(ref ProductRef, value any, fn func(*Scope) error) error {
	s, err := f.ConstantProvider(ref, value)
	if err != nil {
		return err
	}
	return f.within(s, fn)
}

// Constants opens one scope with a constant provider per entry of values.
func (f *Factory) Constants(values map[Key]any) (*Scope, error) {
	g := NewGroup()
	for k, v := range values {
		if err := g.Constant(k, v); err != nil {
			return nil, err
		}
	}
	return f.OpenScope(g), nil
}

// TemporaryProvider opens a scope in which p replaces or adds the provider
// of its product type.
func (f *Factory) TemporaryProvider(p *Provider) *Scope {
	return f.OpenScope(NewGroup(p))
}

// PartialProvider opens a scope in which the provider currently visible for
// ref has the inputs listed in args fixed to the given values.
func (f *Factory) PartialProvider(ref ProductRef, args map[int]any) (*Scope, error) {
	p, ok := f.top().group.Get(ref)
	if !ok {
		return nil, &ResolutionError{Product: ProductOf(ref).Declared(), Err: ErrUnknownProductType}
	}
	bound, err := p.Bind(args)
	if err != nil {
		return nil, err
	}
	return f.OpenScope(NewGroup(bound)), nil
}

// within runs fn and then unwinds the stack down to and including s. Scopes
// fn opened and left open are closed as well; that misuse is reported with
// ErrScopeStackMismatch unless fn already failed.
func (f *Factory) within(s *Scope, fn func(*Scope) error) (err error) {
	defer func() {
		if cerr := f.unwind(s); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

func (f *Factory) unwind(s *Scope) error {
	if s.closed {
		return nil
	}

	var errs []error
	if top := len(f.layers) - 1; top > s.depth {
		errs = append(errs, fmt.Errorf("%w: %d scopes left open inside scope %d", ErrScopeStackMismatch, top-s.depth, s.depth))
	}
	for len(f.layers)-1 > s.depth {
		errs = append(errs, f.pop())
	}
	errs = append(errs, s.Close())
	return errors.Join(errs...)
}

// pop removes the innermost layer and closes its closers.
func (f *Factory) pop() error {
	top := len(f.layers) - 1
	l := f.layers[top]
	f.layers[top] = nil
	f.layers = f.layers[:top]
	if l.scope != nil {
		l.scope.closed = true
	}

	closers := make([]io.Closer, 0, len(l.closers))
	for i := len(l.closers) - 1; i >= 0; i-- {
		closers = append(closers, l.closers[i])
	}
	l.closers = nil

	f.log.Debug("scope closed", zap.Int("depth", top), zap.Int("cached", len(l.cache)))
	return closeAll(context.Background(), closers)
}

// Resolve returns the value of ref in this scope. Inner scopes opened later
// do not affect it.
func (s *Scope) Resolve(ref ProductRef) (any, error) {
	if s.closed {
		return nil, fmt.Errorf("%w: depth %d", ErrScopeClosed, s.depth)
	}
	return s.f.resolveIn(s.depth, ref)
}

// Close pops the scope, discarding its providers and cached products and
// closing products of [CloseWithScope] providers. It fails with
// [ErrScopeClosed] if the scope is already closed and with
// [ErrScopeStackMismatch], leaving the stack untouched, if a scope opened
// after it is still active.
func (s *Scope) Close() error {
	if s.closed {
		return fmt.Errorf("%w: depth %d", ErrScopeClosed, s.depth)
	}
	if top := len(s.f.layers) - 1; top != s.depth {
		return fmt.Errorf("%w: closing scope %d while scope %d is active", ErrScopeStackMismatch, s.depth, top)
	}

	return s.f.pop()
}

// Depth returns the position of the scope in the stack; the first scope
// opened on a factory has depth 1.
func (s *Scope) Depth() int { return s.depth }

// Closed reports whether the scope has been closed.
func (s *Scope) Closed() bool { return s.closed }
