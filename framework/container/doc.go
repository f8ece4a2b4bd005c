// Package container provides an IoC (Inversion of Control) container keyed
// by type descriptors, plus a Service Provider system.
//
// # Overview
//
// The container maps an abstraction (usually an interface) to an
// implementation type and builds a fresh implementation instance on every
// Resolve. Bindings may be closed types or open generic templates; a
// template binding serves every instantiation of the abstraction template.
//
// Because Go has no runtime constructor reflection, construction goes
// through an activator.Catalog: structs are allocated with their zero value
// unless a constructor function is provided, in which case its parameters
// are resolved from the container (constructor injection).
//
// # Container Lifecycle
//
//  1. Create: c := container.New(container.WithCatalog(catalog), container.WithLogger(logger))
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot()   // safe to resolve everything after this
//  4. Resolve
//
// # Bindings
//
//	// Closed pair
//	container.Register[coffee.WaterService, coffee.TapWaterService](c)
//
//	// Open generic template → open generic template
//	c.Register(
//	    reflection.OpenOf[coffee.BeanService[coffee.Catimor]](),
//	    reflection.OpenOf[coffee.ArabicaBeanService[coffee.Catimor]](),
//	)
//
//	// Instantiations must be known to the catalog
//	activator.Declare[coffee.ArabicaBeanService[coffee.Catimor]](catalog)
//
// Registering the same abstraction again replaces the earlier binding.
//
// # Resolving
//
//	// Untyped
//	raw, err := c.Resolve(reflection.TypeOf[coffee.WaterService]())
//
//	// Generic (preferred, no type assertion required)
//	beans, err := container.Resolve[coffee.BeanService[coffee.Catimor]](c)
//
// Failures are *ResolutionError (nothing bound) or *ActivationError (bound
// but not constructible); both can be matched with errors.As.
//
// # Contextual Binding
//
//	c.When(reflection.TypeOf[coffee.CoffeeService]()).
//	    Needs(reflection.TypeOf[coffee.WaterService]()).
//	    Give(reflection.TypeOf[coffee.BottledWaterService]())
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) error {
//	    return container.Register[coffee.WaterService, coffee.TapWaterService](app)
//	}
//
//	registry := container.NewProviderRegistry(c)
//	_ = registry.Register(&AppServiceProvider{})
//	_ = registry.Boot()
//
// # Deferred Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool { return true }
//	func (p *HeavyProvider) Provides() []reflection.Descriptor {
//	    return []reflection.Descriptor{reflection.TypeOf[Heavy]()}
//	}
//
// The provider's Register runs the first time Heavy is resolved without a
// binding.
package container
