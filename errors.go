package crafter

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownProductType is returned when no provider is visible for a
	// required product type.
	ErrUnknownProductType = errors.New("unknown product type")

	// ErrCyclicDependency is returned when resolving a product type re-enters
	// itself. The error message includes the full chain.
	ErrCyclicDependency = errors.New("cyclic dependency detected")

	// ErrMalformedProvider is returned at registration time when a callable's
	// inputs cannot be described as dependencies.
	ErrMalformedProvider = errors.New("malformed provider")

	// ErrComparisonMisuse is the panic value (wrapped) raised when a
	// [Product] is compared with anything that is not a [Product].
	ErrComparisonMisuse = errors.New("unsupported comparison")

	// ErrScopeClosed is returned when a closed [Scope] is used again.
	ErrScopeClosed = errors.New("scope already closed")

	// ErrScopeStackMismatch is returned when a [Scope] is closed while a
	// scope opened after it is still active.
	ErrScopeStackMismatch = errors.New("scope stack mismatch")

	// ErrDuplicateProvider is returned when a provider for the same product
	// type is registered twice in one [Group] via [Group.Provide].
	ErrDuplicateProvider = errors.New("duplicate provider")

	// ErrProductTypeMismatch is returned when a value cannot be used as the
	// product or argument type it was supplied for.
	ErrProductTypeMismatch = errors.New("product type mismatch")

	// ErrAlreadyShutdown is returned by [Factory.Shutdown] when called more
	// than once, and by resolution after shutdown.
	ErrAlreadyShutdown = errors.New("factory already shut down")
)

// ResolutionError is returned for failures that originate in the factory
// itself (unknown or cyclic product types). When the failing product was a
// dependency, Requester and Input name the provider input that needed it;
// Field is set instead of Input when it was needed by a tagged field.
// Chain lists the product types of a cycle, ending with the re-entered one.
type ResolutionError struct {
	Product   Key
	Requester Key
	Input     int
	Field     string
	Chain     []Key
	Err       error
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: %s", e.Err, e.Product)
	if len(e.Chain) > 0 {
		names := make([]string, len(e.Chain))
		for i, k := range e.Chain {
			names[i] = k.String()
		}
		fmt.Fprintf(&b, ": %s", strings.Join(names, " -> "))
	}
	switch {
	case e.Requester.IsZero():
	case e.Field != "":
		fmt.Fprintf(&b, " (field %s of provider for %s)", e.Field, e.Requester)
	default:
		fmt.Fprintf(&b, " (input %d of provider for %s)", e.Input, e.Requester)
	}
	return b.String()
}

func (e *ResolutionError) Unwrap() error { return e.Err }
