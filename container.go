package crafter

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// Resolver resolves product types. It is implemented by [*Factory] and
// [*Scope].
type Resolver interface {
	// Resolve returns the value of the product type ref, building it and
	// its dependencies with the visible providers if it is not cached yet.
	Resolve(ref ProductRef) (any, error)
}

// Factory is the container. It holds a stack of layers: the base layer
// built from the groups given to [New], and one layer per open [Scope].
// Every layer carries the providers visible in it and the products cached
// in it.
//
// A Factory is not safe for concurrent use. Callers that share one across
// goroutines must serialize access themselves.
type Factory struct {
	layers []*layer

	// building marks the product types whose providers are currently
	// running; chain keeps them in call order for cycle reports.
	building map[Key]bool
	chain    []Key

	log      *zap.Logger
	shutdown bool
}

// layer is one entry of the scope stack.
type layer struct {
	group *Group
	cache map[Key]*entry

	// closers holds cached products of CloseWithScope providers in
	// creation order. They are closed in reverse.
	closers []io.Closer

	// scope is the handle that opened the layer; nil for the base layer.
	scope *Scope
}

func newLayer(g *Group) *layer {
	return &layer{group: g, cache: make(map[Key]*entry)}
}

// New creates a Factory whose base layer holds the providers of groups,
// merged left to right.
func New(groups ...*Group) *Factory {
	return &Factory{
		layers:   []*layer{newLayer(Merge(groups...))},
		building: make(map[Key]bool),
		log:      zap.NewNop(),
	}
}

// WithLogger makes f report provider invocations, optional fallbacks and
// scope changes to l at debug level. It returns f.
func (f *Factory) WithLogger(l *zap.Logger) *Factory {
	if l == nil {
		l = zap.NewNop()
	}
	f.log = l
	return f
}

// Depth returns the number of open scopes.
func (f *Factory) Depth() int { return len(f.layers) - 1 }

// Catalogue returns the product types visible in the innermost scope,
// sorted by name.
func (f *Factory) Catalogue() []Key {
	keys := f.top().group.Keys()
	slices.SortFunc(keys, func(a, b Key) int {
		return strings.Compare(a.String(), b.String())
	})
	return keys
}

// Has reports whether a provider for ref is visible in the innermost scope.
func (f *Factory) Has(ref ProductRef) bool {
	return f.top().group.Has(ref)
}

// Len returns the number of product types visible in the innermost scope.
func (f *Factory) Len() int { return f.top().group.Len() }

// Providers returns a copy of the providers visible in the innermost scope.
func (f *Factory) Providers() *Group { return f.top().group.Clone() }

func (f *Factory) top() *layer { return f.layers[len(f.layers)-1] }

// ---------------------------------------------------------------------------
// Shutdown
// ---------------------------------------------------------------------------

// Shutdown closes the cached products of [CloseWithScope] providers in every
// open layer, innermost scope first and in reverse creation order within a
// layer. The context bounds the whole operation: once it is done, remaining
// closers are skipped and the context error is included in the result.
//
// After Shutdown, resolution fails with [ErrAlreadyShutdown]; a second call
// returns [ErrAlreadyShutdown].
func (f *Factory) Shutdown(ctx context.Context) error {
	if f.shutdown {
		return ErrAlreadyShutdown
	}
	f.shutdown = true

	var closers []io.Closer
	for i := len(f.layers) - 1; i >= 0; i-- {
		l := f.layers[i]
		for j := len(l.closers) - 1; j >= 0; j-- {
			closers = append(closers, l.closers[j])
		}
		l.closers = nil
	}

	f.log.Debug("factory shutdown", zap.Int("closers", len(closers)))
	return closeAll(ctx, closers)
}

func closeAll(ctx context.Context, closers []io.Closer) error {
	var errs []error
	for _, c := range closers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
