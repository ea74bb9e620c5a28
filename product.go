package crafter

import "fmt"

// ProductRef is anything that names a product type: a [Key] or an already
// canonicalized [Product].
type ProductRef interface {
	product() Product
}

// Product is the canonical descriptor of a requested product type. It keeps
// the key as declared, which may be an alias, next to the root key that is
// used for lookup and comparison.
type Product struct {
	declared Key
	resolved Key
}

// ProductOf canonicalizes ref. Wrapping a Product again returns it
// unchanged.
func ProductOf(ref ProductRef) Product {
	return ref.product()
}

func (k Key) product() Product     { return Product{declared: k, resolved: k.Root()} }
func (p Product) product() Product { return p }

// Declared returns the key exactly as it was supplied.
func (p Product) Declared() Key { return p.declared }

// Resolved returns the root key of the declared alias chain.
func (p Product) Resolved() Key { return p.resolved }

// Equal reports whether other is a Product with the same resolved key.
//
// Comparing a Product with any other kind of value is a bug in the caller,
// typically generic code that mixes descriptors and raw keys, so Equal
// panics with an error wrapping [ErrComparisonMisuse] instead of returning
// false.
func (p Product) Equal(other any) bool {
	switch o := other.(type) {
	case Product:
		return p.resolved == o.resolved
	case *Product:
		if o != nil {
			return p.resolved == o.resolved
		}
	}
	panic(fmt.Errorf("%w: Product and %T", ErrComparisonMisuse, other))
}

func (p Product) String() string {
	return p.declared.String()
}
