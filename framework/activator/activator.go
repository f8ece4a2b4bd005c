package activator

import (
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/framework/reflection"
)

var (
	// ErrUnknownType means the descriptor names a type that was never
	// declared and carries no reflect.Type, typically a generic
	// instantiation produced by MakeGeneric.
	ErrUnknownType = errors.New("type was never declared")

	// ErrNotConstructible means the type has no constructor and its kind has
	// no usable default (interfaces, funcs, channels, open templates).
	ErrNotConstructible = errors.New("no usable constructor")

	// ErrConstructorFailed wraps an error or nil result from a constructor.
	ErrConstructorFailed = errors.New("constructor failed")

	// ErrDependency wraps a failure to supply a constructor parameter.
	ErrDependency = errors.New("dependency not satisfied")
)

// ActivationError reports that an instance of Type could not be constructed.
type ActivationError struct {
	Type reflection.Descriptor
	Err  error
}

// Error implements the error interface.
func (e *ActivationError) Error() string {
	return "activator: cannot activate " + e.Type.String() + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *ActivationError) Unwrap() error { return e.Err }

// DependencyFunc supplies a value for a constructor parameter of type t.
type DependencyFunc func(t reflect.Type) (any, error)

// ── Activator ─────────────────────────────────────────────────────────────────

// Activator builds instances of closed types. Types with a provided
// constructor are built by calling it; other types fall back to default
// construction: structs are allocated with reflect.New and returned as a
// pointer, maps are made empty, remaining value kinds get their zero value.
type Activator struct {
	catalog *Catalog
	logger  *zap.Logger
}

// New creates an activator over catalog. A nil logger disables logging.
func New(catalog *Catalog, logger *zap.Logger) *Activator {
	if catalog == nil {
		catalog = NewCatalog()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Activator{catalog: catalog, logger: logger}
}

// Catalog returns the backing type catalog.
func (a *Activator) Catalog() *Catalog { return a.catalog }

// CreateInstance constructs a new instance of d. deps resolves constructor
// parameters and may be nil when d has no parameters. Every error is an
// *ActivationError.
func (a *Activator) CreateInstance(d reflection.Descriptor, deps DependencyFunc) (any, error) {
	if d.IsZero() {
		return nil, &ActivationError{Type: d, Err: fmt.Errorf("%w: empty descriptor", ErrUnknownType)}
	}
	if d.IsOpen() {
		return nil, &ActivationError{Type: d, Err: fmt.Errorf("%w: open generic template", ErrNotConstructible)}
	}

	t := d.Type()
	info, declared := a.catalog.Lookup(d.Key())
	if declared {
		t = info.typ
	}
	if t == nil {
		return nil, &ActivationError{Type: d, Err: ErrUnknownType}
	}

	if declared && info.HasConstructor() {
		a.logger.Debug("activating via constructor",
			zap.Stringer("type", d),
			zap.Int("params", len(info.params)))
		return a.invoke(d, info, deps)
	}

	a.logger.Debug("activating via default construction", zap.Stringer("type", d))
	if !defaultConstructible(t) {
		return nil, &ActivationError{Type: d, Err: fmt.Errorf("%w for %s kind", ErrNotConstructible, t.Kind())}
	}
	if t.Kind() == reflect.Struct {
		return reflect.New(t).Interface(), nil
	}
	if t.Kind() == reflect.Map {
		return reflect.MakeMap(t).Interface(), nil
	}
	return reflect.Zero(t).Interface(), nil
}

func (a *Activator) invoke(d reflection.Descriptor, info *TypeInfo, deps DependencyFunc) (any, error) {
	args := make([]reflect.Value, len(info.params))
	for i, p := range info.params {
		if deps == nil {
			return nil, &ActivationError{Type: d, Err: fmt.Errorf("%w: parameter %d (%s): no resolver", ErrDependency, i, reflection.Of(p))}
		}
		v, err := deps(p)
		if err != nil {
			return nil, &ActivationError{Type: d, Err: fmt.Errorf("%w: parameter %d (%s): %w", ErrDependency, i, reflection.Of(p), err)}
		}
		rv, ok := Coerce(reflect.ValueOf(v), p)
		if !ok {
			return nil, &ActivationError{Type: d, Err: fmt.Errorf("%w: parameter %d: %T is not assignable to %s", ErrDependency, i, v, p)}
		}
		args[i] = rv
	}

	out := info.ctor.Call(args)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, &ActivationError{Type: d, Err: fmt.Errorf("%w: %w", ErrConstructorFailed, out[1].Interface().(error))}
	}
	if isNil(out[0]) {
		return nil, &ActivationError{Type: d, Err: fmt.Errorf("%w: returned nil", ErrConstructorFailed)}
	}
	return out[0].Interface(), nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Coerce adapts v to type to. Values assignable to to pass through; a
// non-nil pointer whose element is assignable is dereferenced.
func Coerce(v reflect.Value, to reflect.Type) (reflect.Value, bool) {
	if !v.IsValid() {
		switch to.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(to), true
		}
		return reflect.Value{}, false
	}
	if v.Type().AssignableTo(to) {
		return v, true
	}
	if v.Kind() == reflect.Pointer && !v.IsNil() && v.Elem().Type().AssignableTo(to) {
		return v.Elem(), true
	}
	return reflect.Value{}, false
}

func defaultConstructible(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Invalid, reflect.Interface, reflect.Func, reflect.Chan, reflect.Pointer, reflect.UnsafePointer:
		return false
	}
	return true
}

func isNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
