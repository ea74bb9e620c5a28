package crafter

import (
	"slices"
	"sync"
)

var (
	defaultMu      sync.Mutex
	defaultFactory *Factory
	defaultGroups  []*Group
)

// Default returns the process-wide Factory. On first use it is created
// with the base groups registered by [SetDefaultGroups], unless
// [SetDefault] installed one before.
func Default() *Factory {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultFactory == nil {
		defaultFactory = New(defaultGroups...)
	}
	return defaultFactory
}

// SetDefaultGroups registers the groups the process-wide Factory is built
// from. It only affects a Factory that [Default] has not created yet:
//
//	crafter.SetDefaultGroups(logging.Providers())
//	f := crafter.Default()
func SetDefaultGroups(groups ...*Group) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultGroups = slices.Clone(groups)
}

// SetDefault replaces the process-wide Factory.
func SetDefault(f *Factory) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultFactory = f
}

// ResetDefault drops the process-wide Factory; the next call to [Default]
// creates a fresh one from the registered groups. Tests use it for
// isolation.
func ResetDefault() {
	SetDefault(nil)
}
