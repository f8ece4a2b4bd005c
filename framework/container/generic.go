package container

import (
	"fmt"
	"reflect"

	"github.com/km-arc/go-ioc/framework/activator"
	"github.com/km-arc/go-ioc/framework/reflection"
)

// ── Generics helpers ──────────────────────────────────────────────────────────

// Register binds the closed abstraction TAbs to TImpl.
//
//	container.Register[coffee.WaterService, coffee.TapWaterService](c)
func Register[TAbs, TImpl any](c *Container) error {
	return c.Register(reflection.TypeOf[TAbs](), reflection.TypeOf[TImpl]())
}

// Resolve is a generic helper that calls Resolve and views the result as T.
//
//	water, err := container.Resolve[coffee.WaterService](c)
func Resolve[T any](c *Container) (T, error) {
	var zero T
	d := reflection.TypeOf[T]()
	instance, err := c.Resolve(d)
	if err != nil {
		return zero, err
	}
	v, ok := activator.Coerce(reflect.ValueOf(instance), reflect.TypeFor[T]())
	if !ok {
		return zero, &ActivationError{Type: d, Err: fmt.Errorf("%w: resolved %T", ErrNotAssignable, instance)}
	}
	return v.Interface().(T), nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container) T {
	v, err := Resolve[T](c)
	if err != nil {
		panic(err)
	}
	return v
}
