package crafter

import (
	"fmt"
	"reflect"
	"runtime"
)

var (
	errorType = reflect.TypeFor[error]()
	anyType   = reflect.TypeFor[any]()
)

// Provider associates one product type with the callable that produces it.
// Its dependencies are derived once, when the provider is built, and never
// change afterwards.
type Provider struct {
	product        Product
	deps           []Dependency
	lifetime       Lifetime
	closeWithScope bool
	source         string

	// params is set for reflective providers and is used to validate
	// values bound with Bind.
	params []param
	call   func(args []arg) (any, error)

	// fields are the tagged fields of a struct product, filled after call.
	fields []field
}

// arg is one argument handed to a provider. resolved is false when the
// value is a fallback for an optional input that could not be resolved.
type arg struct {
	value    any
	resolved bool
}

// Provide builds a provider from a constructor function with the signature
// func(deps...) T or func(deps...) (T, error). Each fixed parameter becomes
// a [Dependency]:
//
//   - a parameter of type any is declared [Unknown] and needs a default;
//   - a parameter of type [Maybe][T] is declared [Nullable] of T;
//   - any other parameter is [Required] by its type.
//
// Variadic parameters are never injected. Use [WithInputs] to depend on
// named or alias keys and [WithDefault] to make inputs optional.
//
// When T is a struct or a pointer to a struct, its exported fields tagged
// `crafter:"[name][,optional]"` are filled by the factory after fn returns,
// unless fn already set them:
//
//	type Service struct {
//		DB    *sql.DB `crafter:""`
//		Cache *Cache  `crafter:",optional"`
//	}
func Provide(fn any, opts ...Option) (*Provider, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: constructor is nil", ErrMalformedProvider)
	}

	val := reflect.ValueOf(fn)
	typ := val.Type()

	if typ.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: constructor must be a function, got %s", ErrMalformedProvider, typ)
	}
	if val.IsNil() {
		return nil, fmt.Errorf("%w: constructor is a nil %s", ErrMalformedProvider, typ)
	}
	if typ.NumOut() == 0 || typ.NumOut() > 2 {
		return nil, fmt.Errorf("%w: constructor must return (T) or (T, error), got %s", ErrMalformedProvider, typ)
	}
	if typ.NumOut() == 2 && !typ.Out(1).Implements(errorType) {
		return nil, fmt.Errorf("%w: second return value of %s must implement error", ErrMalformedProvider, typ)
	}

	o := collect(opts)
	out := typ.Out(0)

	product := ProductOf(TypeKey(out))
	if o.product != nil {
		product = ProductOf(o.product)
		if product.Resolved().Type() == nil || !out.AssignableTo(product.Resolved().Type()) {
			return nil, fmt.Errorf("%w: %s does not produce %s", ErrMalformedProvider, typ, product)
		}
	}
	if product.Resolved() == unknownKey {
		return nil, fmt.Errorf("%w: cannot provide the unknown type", ErrMalformedProvider)
	}

	fixed := typ.NumIn()
	if typ.IsVariadic() {
		fixed--
	}
	if o.inputs != nil && len(o.inputs) != fixed {
		return nil, fmt.Errorf("%w: %d inputs declared for %s with %d parameters", ErrMalformedProvider, len(o.inputs), typ, fixed)
	}
	for i := range o.defaults {
		if i < 0 || i >= fixed {
			return nil, fmt.Errorf("%w: default for parameter %d of %s out of range", ErrMalformedProvider, i, typ)
		}
	}

	params := make([]param, fixed)
	deps := make([]Dependency, fixed)
	for i := 0; i < fixed; i++ {
		p := newParam(typ.In(i))
		params[i] = p

		decl := p.declared()
		if o.inputs != nil {
			decl = o.inputs[i]
			if !decl.IsUnknown() && decl.Key().Type() == nil {
				return nil, fmt.Errorf("%w: input %d of %s is declared with the zero key", ErrMalformedProvider, i, typ)
			}
			if !decl.IsUnknown() && !p.accepts(decl.Key().Type()) {
				return nil, fmt.Errorf("%w: input %d of %s: %s cannot be passed as %s", ErrMalformedProvider, i, typ, decl, p.typ)
			}
		}

		def, ok := o.defaults[i]
		if !ok {
			def = NoDefault
		} else if def != nil && !p.accepts(reflect.TypeOf(def)) {
			return nil, fmt.Errorf("%w: default %T of parameter %d of %s is not a %s", ErrMalformedProvider, def, i, typ, p.typ)
		}

		if decl.IsUnknown() && def == NoDefault {
			return nil, fmt.Errorf("%w: parameter %d of %s has neither a resolvable type nor a default", ErrMalformedProvider, i, typ)
		}

		deps[i] = DependencyOf(decl, def)
	}

	fields, err := fieldsOf(out)
	if err != nil {
		return nil, err
	}

	return &Provider{
		product:        product,
		deps:           deps,
		lifetime:       o.lifetime,
		closeWithScope: o.closeWithScope,
		source:         funcName(val),
		params:         params,
		fields:         fields,
		call: func(args []arg) (any, error) {
			in := make([]reflect.Value, len(args))
			for i, a := range args {
				v, err := params[i].value(a)
				if err != nil {
					return nil, fmt.Errorf("input %d of provider for %s: %w", i, product, err)
				}
				in[i] = v
			}

			results := val.Call(in)
			if len(results) == 2 && !results[1].IsNil() {
				return nil, results[1].Interface().(error)
			}
			return results[0].Interface(), nil
		},
	}, nil
}

// Func builds a provider from an explicit list of dependencies. fn receives
// one argument per dependency, in order; inputs that could not be resolved
// receive their fallback value.
func Func(ref ProductRef, deps []Dependency, fn func(args ...any) (any, error), opts ...Option) (*Provider, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: function is nil", ErrMalformedProvider)
	}
	product := ProductOf(ref)
	if product.Resolved().Type() == nil || product.Resolved() == unknownKey {
		return nil, fmt.Errorf("%w: cannot provide %s", ErrMalformedProvider, product)
	}

	o := collect(opts)
	if o.inputs != nil || o.defaults != nil || o.product != nil {
		return nil, fmt.Errorf("%w: inputs of %s are declared explicitly", ErrMalformedProvider, product)
	}

	return &Provider{
		product:        product,
		deps:           append([]Dependency(nil), deps...),
		lifetime:       o.lifetime,
		closeWithScope: o.closeWithScope,
		source:         funcName(reflect.ValueOf(fn)),
		call: func(args []arg) (any, error) {
			values := make([]any, len(args))
			for i, a := range args {
				values[i] = a.value
			}
			return fn(values...)
		},
	}, nil
}

// Constant builds a provider without inputs that always returns value.
func Constant(ref ProductRef, value any, opts ...Option) (*Provider, error) {
	product := ProductOf(ref)
	if err := checkProduct(product.Resolved(), value); err != nil {
		return nil, err
	}

	p, err := Func(ref, nil, func(...any) (any, error) { return value, nil }, opts...)
	if err != nil {
		return nil, err
	}
	p.source = fmt.Sprintf("constant(%v)", value)
	return p, nil
}

// Bind returns a copy of p whose inputs listed in args are fixed to the
// given values. Bound inputs are no longer resolved; indices refer to p's
// current dependencies.
func (p *Provider) Bind(args map[int]any) (*Provider, error) {
	for i, v := range args {
		if i < 0 || i >= len(p.deps) {
			return nil, fmt.Errorf("%w: argument %d out of range for provider of %s", ErrMalformedProvider, i, p.product)
		}
		if p.params != nil && v != nil && !p.params[i].accepts(reflect.TypeOf(v)) {
			return nil, fmt.Errorf("%w: argument %d: %T is not a %s", ErrMalformedProvider, i, v, p.params[i].typ)
		}
	}

	bound := *p
	bound.deps = nil
	bound.params = nil
	var free []int
	for i, d := range p.deps {
		if _, ok := args[i]; ok {
			continue
		}
		free = append(free, i)
		bound.deps = append(bound.deps, d)
		if p.params != nil {
			bound.params = append(bound.params, p.params[i])
		}
	}

	call := p.call
	n := len(p.deps)
	bound.call = func(rest []arg) (any, error) {
		full := make([]arg, n)
		for i, v := range args {
			full[i] = arg{value: v, resolved: true}
		}
		for j, i := range free {
			full[i] = rest[j]
		}
		return call(full)
	}
	return &bound, nil
}

// Product returns the descriptor of the type p produces.
func (p *Provider) Product() Product { return p.product }

// Dependencies returns a copy of p's inputs.
func (p *Provider) Dependencies() []Dependency {
	return append([]Dependency(nil), p.deps...)
}

// Fields returns the inputs filled into tagged struct fields of p's
// product, in field order.
func (p *Provider) Fields() []Dependency {
	deps := make([]Dependency, len(p.fields))
	for i, fd := range p.fields {
		deps[i] = fd.dep
	}
	return deps
}

// Lifetime returns p's lifetime.
func (p *Provider) Lifetime() Lifetime { return p.lifetime }

func (p *Provider) String() string {
	return fmt.Sprintf("Provider(%s <- %s, %d inputs, %s)", p.product, p.source, len(p.deps), p.lifetime)
}

// ---------------------------------------------------------------------------
// Parameters
// ---------------------------------------------------------------------------

// param describes one parameter of a reflective provider.
type param struct {
	typ  reflect.Type
	elem reflect.Type // T when typ is Maybe[T]
}

func newParam(t reflect.Type) param {
	p := param{typ: t}
	if elem, ok := maybeElem(t); ok {
		p.elem = elem
	}
	return p
}

func (p param) declared() Declared {
	switch {
	case p.elem != nil:
		return Nullable(TypeKey(p.elem))
	case p.typ == anyType:
		return Unknown
	default:
		return Required(TypeKey(p.typ))
	}
}

// accepts reports whether a value of type t can be passed for p.
func (p param) accepts(t reflect.Type) bool {
	if t.AssignableTo(p.typ) {
		return true
	}
	return p.elem != nil && t.AssignableTo(p.elem)
}

func (p param) value(a arg) (reflect.Value, error) {
	if a.value == nil {
		if p.elem != nil && a.resolved {
			m := reflect.New(p.typ).Elem()
			m.Field(1).SetBool(true)
			return m, nil
		}
		return reflect.Zero(p.typ), nil
	}

	v := reflect.ValueOf(a.value)
	if v.Type().AssignableTo(p.typ) {
		return v, nil
	}
	if p.elem != nil && v.Type().AssignableTo(p.elem) {
		m := reflect.New(p.typ).Elem()
		m.Field(0).Set(v)
		m.Field(1).SetBool(true)
		return m, nil
	}
	return reflect.Value{}, fmt.Errorf("%w: cannot use %s as %s", ErrProductTypeMismatch, v.Type(), p.typ)
}

// checkProduct reports whether v may be produced for k.
func checkProduct(k Key, v any) error {
	t := k.Type()
	if t == nil {
		return fmt.Errorf("%w: zero key", ErrProductTypeMismatch)
	}
	if v == nil {
		switch t.Kind() {
		case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
			return nil
		}
		return fmt.Errorf("%w: nil is not a %s", ErrProductTypeMismatch, k)
	}
	if !reflect.TypeOf(v).AssignableTo(t) {
		return fmt.Errorf("%w: %T is not a %s", ErrProductTypeMismatch, v, k)
	}
	return nil
}

func funcName(v reflect.Value) string {
	if f := runtime.FuncForPC(v.Pointer()); f != nil {
		return f.Name()
	}
	return v.Type().String()
}
