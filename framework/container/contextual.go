package container

import "github.com/km-arc/go-ioc/framework/reflection"

// ContextualBuilder implements the fluent contextual binding API.
//
//	c.When(reflection.TypeOf[coffee.CoffeeService]()).
//	    Needs(reflection.TypeOf[coffee.WaterService]()).
//	    Give(reflection.TypeOf[coffee.BottledWaterService]())
type ContextualBuilder struct {
	container *Container
	concrete  reflection.Descriptor
	needs     reflection.Descriptor
}

// Needs specifies which constructor parameter type the concrete type depends on.
func (b *ContextualBuilder) Needs(abstraction reflection.Descriptor) *ContextualBuilder {
	b.needs = abstraction
	return b
}

// Give sets the implementation built for that parameter when the concrete
// type is constructed. The registry binding for the parameter is bypassed.
func (b *ContextualBuilder) Give(implementation reflection.Descriptor) {
	b.container.mu.Lock()
	defer b.container.mu.Unlock()

	if _, ok := b.container.contextual[b.concrete.Key()]; !ok {
		b.container.contextual[b.concrete.Key()] = make(map[string]reflection.Descriptor)
	}
	b.container.contextual[b.concrete.Key()][b.needs.Key()] = implementation
}
