package crafter

// options collects the registration settings of a provider.
type options struct {
	product        ProductRef
	lifetime       Lifetime
	inputs         []Declared
	defaults       map[int]any
	closeWithScope bool
}

// Option configures a provider during registration.
type Option func(*options)

// As registers the provider for ref instead of the key of the function's
// return type. The return type must be assignable to ref's type.
func As(ref ProductRef) Option {
	return func(o *options) {
		o.product = ref
	}
}

// WithLifetime sets the [Lifetime] of the provider. The default is
// [Scoped].
func WithLifetime(l Lifetime) Option {
	return func(o *options) {
		o.lifetime = l
	}
}

// WithInputs declares the inputs of a reflective provider explicitly, one
// per fixed parameter. Use it to depend on named or alias keys.
func WithInputs(inputs ...Declared) Option {
	return func(o *options) {
		o.inputs = inputs
	}
}

// WithDefault sets the default value of parameter i, which makes the input
// optional.
func WithDefault(i int, v any) Option {
	return func(o *options) {
		if o.defaults == nil {
			o.defaults = make(map[int]any)
		}
		o.defaults[i] = v
	}
}

// CloseWithScope makes the scope that cached the provider's product close
// it when the scope ends, if the product implements io.Closer.
func CloseWithScope() Option {
	return func(o *options) {
		o.closeWithScope = true
	}
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
