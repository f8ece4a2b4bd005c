// Package activator constructs instances of types described by
// reflection.Descriptor.
//
// Go has no runtime constructor reflection, so construction is driven by an
// explicit Catalog: types are declared (default construction) or provided
// through constructor functions whose parameters are injected by the caller.
//
//	catalog := activator.NewCatalog()
//	_ = activator.Declare[coffee.TapWaterService](catalog)
//	_ = catalog.Provide(coffee.NewHouseCoffeeService)
//
//	act := activator.New(catalog, logger)
//	svc, err := act.CreateInstance(reflection.TypeOf[coffee.CoffeeService](), resolveDependency)
package activator
