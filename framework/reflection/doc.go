// Package reflection describes Go types by name so they can be used as
// registry keys, including open generic templates.
//
// Go cannot instantiate a generic type at run time. A Descriptor therefore
// keeps the canonical name of a type alongside its reflect.Type when one is
// available; open templates and instantiations produced by MakeGeneric are
// name-only and are bound to real types by an activator catalog.
//
//	closed := reflection.TypeOf[coffee.BeanService[coffee.Catimor]]()
//	tmpl, _ := closed.Definition()                 // coffee.BeanService[]
//	impl := reflection.OpenOf[coffee.ArabicaBeanService[coffee.Catimor]]()
//	bound, _ := impl.MakeGeneric(closed.Args()...) // coffee.ArabicaBeanService[coffee.Catimor]
package reflection
