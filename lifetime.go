package crafter

// Lifetime controls how often a provider is invoked.
type Lifetime int

const (
	// Scoped is the default lifetime. The provider is invoked at most once
	// per scope and the result is cached in the scope that requested it.
	Scoped Lifetime = iota

	// Transient means the provider is invoked on every resolution and its
	// result is never cached.
	Transient
)

// String returns the human-readable name of the lifetime.
func (l Lifetime) String() string {
	switch l {
	case Scoped:
		return "scoped"
	case Transient:
		return "transient"
	default:
		return "unknown"
	}
}
