package crafter

import (
	"fmt"
	"reflect"
)

// Key identifies a product type. It is the Go type of the product plus an
// optional name, which lets several products share one Go type. A key can
// also be an alias of another key; see [Alias].
//
// Keys are comparable and can be used as map keys.
type Key struct {
	typ    reflect.Type
	name   string
	alias  bool
	target string
}

// KeyOf returns the unnamed key for T.
func KeyOf[T any]() Key {
	return Key{typ: reflect.TypeFor[T]()}
}

// NamedKey returns the key for T qualified by name.
func NamedKey[T any](name string) Key {
	return Key{typ: reflect.TypeFor[T](), name: name}
}

// TypeKey returns the unnamed key for a runtime type.
func TypeKey(t reflect.Type) Key {
	return Key{typ: t}
}

// Alias returns a new key that redirects to target. The chain is collapsed
// immediately: an alias of an alias points at the root key, so resolving an
// alias never walks more than one step.
//
// Alias panics if name is empty or equal to the name of the root key.
func Alias(name string, target Key) Key {
	root := target.Root()
	if name == "" {
		panic("crafter: alias name cannot be empty")
	}
	if name == root.name {
		panic(fmt.Sprintf("crafter: [%s] is aliased to itself", root))
	}
	return Key{typ: root.typ, name: name, alias: true, target: root.name}
}

// Type returns the Go type of values produced for k.
func (k Key) Type() reflect.Type { return k.typ }

// Name returns the name qualifier of k, or "" for unnamed keys.
func (k Key) Name() string { return k.name }

// IsAlias reports whether k redirects to another key.
func (k Key) IsAlias() bool { return k.alias }

// IsZero reports whether k is the zero Key.
func (k Key) IsZero() bool { return k.typ == nil && k.name == "" }

// Root returns the key at the end of k's alias chain, or k itself.
func (k Key) Root() Key {
	if !k.alias {
		return k
	}
	return Key{typ: k.typ, name: k.target}
}

func (k Key) String() string {
	if k.alias {
		return fmt.Sprintf("alias(%s) -> %s", Key{typ: k.typ, name: k.name}, k.Root())
	}
	if k.typ == nil {
		return "<nil>"
	}
	if k.name == "" {
		return k.typ.String()
	}
	return fmt.Sprintf("%s[%s]", k.typ, k.name)
}
