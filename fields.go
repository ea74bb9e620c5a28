package crafter

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"
)

// fieldTag marks struct fields filled by the factory.
const fieldTag = "crafter"

// field is an exported field of a provider's struct product that the
// factory fills after the provider returns.
type field struct {
	name  string
	index []int
	dep   Dependency
	param param
}

// fieldsOf returns the tagged fields of t, a struct or pointer to struct.
// The tag value is "[name][,optional]": name selects a named key and
// optional tolerates a missing product. Fields of type [Maybe][T] are
// always optional.
func fieldsOf(t reflect.Type) ([]field, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, nil
	}
	if _, ok := maybeElem(t); ok {
		return nil, nil
	}

	var out []field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, ok := sf.Tag.Lookup(fieldTag)
		if !ok {
			continue
		}
		if !sf.IsExported() {
			return nil, fmt.Errorf("%w: tagged field %s of %s is not exported", ErrMalformedProvider, sf.Name, t)
		}

		name, rest, _ := strings.Cut(tag, ",")
		optional := false
		for _, opt := range strings.Split(rest, ",") {
			switch opt {
			case "":
			case "optional":
				optional = true
			default:
				return nil, fmt.Errorf("%w: field %s of %s: unknown tag option %q", ErrMalformedProvider, sf.Name, t, opt)
			}
		}

		p := newParam(sf.Type)
		if p.typ == anyType {
			return nil, fmt.Errorf("%w: field %s of %s has no resolvable type", ErrMalformedProvider, sf.Name, t)
		}
		typ := sf.Type
		if p.elem != nil {
			typ = p.elem
		}

		decl := Required(Key{typ: typ, name: name})
		if optional || p.elem != nil {
			decl = Nullable(decl.key)
		}
		out = append(out, field{
			name:  sf.Name,
			index: sf.Index,
			dep:   DependencyOf(decl, NoDefault),
			param: p,
		})
	}
	return out, nil
}

// inject fills the zero tagged fields of v, the value just built for key.
// Fields the provider already set are left alone. v is returned unchanged
// when it is a pointer; struct values are copied first.
func (f *Factory) inject(depth int, p *Provider, key Key, v any, e *entry) (any, error) {
	rv := reflect.ValueOf(v)
	var target reflect.Value
	switch {
	case !rv.IsValid(), rv.Kind() == reflect.Pointer && rv.IsNil():
		return v, nil
	case rv.Kind() == reflect.Pointer:
		target = rv.Elem()
	default:
		target = reflect.New(rv.Type()).Elem()
		target.Set(rv)
	}

	for _, fd := range p.fields {
		fv := target.FieldByIndex(fd.index)
		if !fv.IsZero() {
			continue
		}

		dep, err := f.resolve(depth, ProductOf(fd.dep.Type()))
		if err != nil {
			if !fd.dep.IsOptional() || errors.Is(err, ErrCyclicDependency) {
				return nil, withRequester(err, key, 0, fd.name)
			}
			f.log.Debug("optional field unavailable, leaving it unset",
				zap.Stringer("product", key),
				zap.String("field", fd.name),
				zap.Stringer("dependency", fd.dep.Type()),
				zap.Error(err),
			)
			e.unavailable(f.layers[depth], fd.dep.Type())
			continue
		}
		e.merge(dep)

		val, err := fd.param.value(arg{value: dep.value, resolved: true})
		if err != nil {
			return nil, fmt.Errorf("field %s of provider for %s: %w", fd.name, key, err)
		}
		fv.Set(val)
	}

	if rv.Kind() == reflect.Pointer {
		return v, nil
	}
	return target.Interface(), nil
}
