package crafter

import (
	"fmt"
	"reflect"
)

// unknownType backs the key of the [Unknown] declaration. Nothing can be
// registered for it.
type unknownType struct{}

var unknownKey = KeyOf[unknownType]()

// Declared is the type a provider input claims to accept.
type Declared struct {
	key      Key
	nullable bool
}

// Unknown declares an input whose type is not known. Such an input is
// always optional.
var Unknown = Declared{key: unknownKey}

// Required declares an input of product type k.
func Required(k Key) Declared { return Declared{key: k} }

// Nullable declares an input that is either a k or absent.
func Nullable(k Key) Declared { return Declared{key: k, nullable: true} }

// Key returns the declared product key.
func (d Declared) Key() Key { return d.key }

// IsNullable reports whether the declaration accepts absence.
func (d Declared) IsNullable() bool { return d.nullable }

// IsUnknown reports whether d is the [Unknown] sentinel.
func (d Declared) IsUnknown() bool { return d.key == unknownKey }

func (d Declared) String() string {
	switch {
	case d.IsUnknown():
		return "unknown"
	case d.nullable:
		return d.key.String() + " | absent"
	default:
		return d.key.String()
	}
}

type noDefault struct{}

func (noDefault) String() string { return "<no default>" }

// NoDefault marks a dependency without a default value. It is distinct
// from nil, which is a valid default.
var NoDefault any = noDefault{}

// Dependency describes one provider input.
type Dependency struct {
	declared Declared
	def      any
	optional bool
}

// DependencyOf builds the descriptor of an input declared as declared with
// default value def (or [NoDefault]).
func DependencyOf(declared Declared, def any) Dependency {
	return Dependency{
		declared: declared,
		def:      def,
		optional: declared.nullable || declared.IsUnknown() || def != NoDefault,
	}
}

// Needs is shorthand for a required input of k without a default.
func Needs(k Key) Dependency { return DependencyOf(Required(k), NoDefault) }

// NeedsOr is shorthand for an input of k that falls back to def.
func NeedsOr(k Key, def any) Dependency { return DependencyOf(Required(k), def) }

// Declared returns the input's declaration as supplied.
func (d Dependency) Declared() Declared { return d.declared }

// Type returns the product key resolved for this input. For nullable
// declarations it is the non-absent member.
func (d Dependency) Type() Key { return d.declared.key }

// IsOptional reports whether a failure to resolve this input is tolerated.
func (d Dependency) IsOptional() bool { return d.optional }

// Default returns the explicit default value, if any.
func (d Dependency) Default() (any, bool) {
	if d.def == NoDefault {
		return nil, false
	}
	return d.def, true
}

// Fallback returns the value used when an optional input cannot be
// resolved: the explicit default, or nil for absence.
func (d Dependency) Fallback() any {
	v, _ := d.Default()
	return v
}

func (d Dependency) String() string {
	return fmt.Sprintf("Dependency(%s, default=%v, optional=%t)", d.declared, d.def, d.optional)
}

// Maybe is a value that may be absent. A provider parameter of type
// Maybe[T] is an input declared as [Nullable] of T: it is resolved when a
// provider for T is visible and left invalid otherwise.
type Maybe[T any] struct {
	Value T
	Valid bool
}

// Some returns a valid Maybe holding v.
func Some[T any](v T) Maybe[T] {
	return Maybe[T]{Value: v, Valid: true}
}

// Get returns the value and whether it is present.
func (m Maybe[T]) Get() (T, bool) { return m.Value, m.Valid }

func (Maybe[T]) maybeElem() reflect.Type { return reflect.TypeFor[T]() }

type maybeMarker interface {
	maybeElem() reflect.Type
}

var maybeMarkerType = reflect.TypeFor[maybeMarker]()

// maybeElem returns T when t is Maybe[T].
func maybeElem(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() != reflect.Struct || !t.Implements(maybeMarkerType) {
		return nil, false
	}
	return reflect.Zero(t).Interface().(maybeMarker).maybeElem(), true
}
