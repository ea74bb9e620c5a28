// Package crafter provides a scoped, reflection-based inversion-of-control
// container for Go.
//
// Product types are identified by a [Key]: the Go type of the product,
// optionally qualified by a name. Providers are constructor functions whose
// parameters declare what they need; register them in a [Group], hand the
// group to a [Factory], and ask the factory for values with [Resolve].
//
// # Quick Start
//
//	type AppName string
//	type FileName string
//
//	g := crafter.NewGroup()
//	g.Provide(func() AppName { return "app-crafter" })
//	g.Provide(func(name AppName) FileName { return FileName(name + ".log") })
//
//	f := crafter.New(g)
//	file, err := crafter.Resolve[FileName](f)
//
// # Scopes
//
// Overrides live in scopes. A scope sees every provider of the scope around
// it unless it replaces it. A provider runs at most once per scope, and a
// product is cached in the outermost scope that sees the same providers for
// it and its inputs: scopes reuse outer values they override nothing of.
// Closing the scope restores the factory exactly.
//
//	scope, _ := f.ConstantProvider(crafter.KeyOf[AppName](), AppName("abb-crafter"))
//	file, _ = crafter.Resolve[FileName](f) // "abb-crafter.log"
//	scope.Close()
//	file, _ = crafter.Resolve[FileName](f) // "app-crafter.log"
//
// The callback forms [Factory.WithConstant] and [Factory.WithProviders]
// close the scope on every exit path.
//
// # Optional Inputs
//
// A parameter of type [Maybe][T] is resolved when a provider for T is
// visible and left invalid otherwise. [WithDefault] gives any parameter a
// fallback value. A parameter of type any carries no type information and
// must have a default.
//
// # Struct Fields
//
// Exported fields of a struct product tagged `crafter:""` are filled after
// its provider returns, unless the provider already set them. The tag may
// name a key and add the optional option:
//
//	type Service struct {
//		Name  AppName  `crafter:""`
//		File  FileName `crafter:"audit,optional"`
//	}
//
// # Default Factory
//
// [Default] returns a process-wide Factory built from the groups passed to
// [SetDefaultGroups].
//
// # Aliases
//
// [Alias] creates a second key for an existing product type. Both keys
// resolve to the same provider and compare equal as [Product] descriptors.
package crafter
