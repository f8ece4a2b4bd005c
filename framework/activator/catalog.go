package activator

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/km-arc/go-ioc/framework/reflection"
)

var (
	// ErrNotFunc is returned by Provide when the constructor is not a function.
	ErrNotFunc = errors.New("activator: constructor must be a function")

	// ErrBadConstructor is returned by Provide when the constructor does not
	// return T or (T, error).
	ErrBadConstructor = errors.New("activator: constructor must return T or (T, error)")

	// ErrNameNotFound is returned by ByName when no declared type matches.
	ErrNameNotFound = errors.New("activator: no type declared with that name")

	// ErrAmbiguousName is returned by ByName when a short name matches
	// types from more than one package.
	ErrAmbiguousName = errors.New("activator: ambiguous type name")
)

var errorType = reflect.TypeFor[error]()

// TypeInfo is a catalog entry: a declared type plus how to construct it.
type TypeInfo struct {
	Descriptor reflection.Descriptor

	typ      reflect.Type // declared (non-pointer for named structs) type
	ctor     reflect.Value
	ctorType reflect.Type
	params   []reflect.Type
}

// Type returns the declared reflect.Type.
func (i *TypeInfo) Type() reflect.Type { return i.typ }

// HasConstructor reports whether a constructor function was provided.
func (i *TypeInfo) HasConstructor() bool { return i.ctor.IsValid() }

// Parameters describes the constructor's parameters in declaration order.
func (i *TypeInfo) Parameters() []reflection.Descriptor {
	out := make([]reflection.Descriptor, 0, len(i.params))
	for _, p := range i.params {
		out = append(out, reflection.Of(p))
	}
	return out
}

// Constructible reports whether the activator can build an instance without
// a constructor.
func (i *TypeInfo) Constructible() bool {
	return i.ctor.IsValid() || defaultConstructible(i.typ)
}

// ── Catalog ───────────────────────────────────────────────────────────────────

// Catalog is the table of types known by name. Declaring a type makes it
// discoverable through Lookup and ByName; providing a constructor controls
// how the activator builds it.
//
// Generic instantiations have to be declared explicitly because Go cannot
// create them at run time; each declaration also records its open template.
type Catalog struct {
	mu        sync.RWMutex
	types     map[string]*TypeInfo
	templates map[string]reflection.Descriptor
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		types:     make(map[string]*TypeInfo),
		templates: make(map[string]reflection.Descriptor),
	}
}

// Declare adds t to the catalog using default construction. Re-declaring a
// type keeps a previously provided constructor.
func (c *Catalog) Declare(t reflect.Type) error {
	if t == nil {
		return fmt.Errorf("activator: cannot declare nil type")
	}
	d := reflection.Of(t)

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.types[d.Key()]; ok {
		return nil
	}
	c.add(&TypeInfo{Descriptor: d, typ: d.Type()})
	return nil
}

// Declare adds T to the catalog.
//
//	activator.Declare[coffee.ArabicaBeanService[coffee.Catimor]](catalog)
func Declare[T any](c *Catalog) error {
	return c.Declare(reflect.TypeFor[T]())
}

// Provide registers a constructor. fn must be a function returning T or
// (T, error); its parameters are resolved by the activator's DependencyFunc
// at construction time. The declared type is T (or *T's element type).
//
//	catalog.Provide(coffee.NewHouseCoffeeService)
func (c *Catalog) Provide(fn any) error {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return fmt.Errorf("%w, got %T", ErrNotFunc, fn)
	}
	ft := v.Type()
	switch {
	case ft.NumOut() == 1:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
	default:
		return fmt.Errorf("%w: %s", ErrBadConstructor, ft)
	}
	if ft.IsVariadic() {
		return fmt.Errorf("%w: variadic constructor %s", ErrBadConstructor, ft)
	}
	if ft.Out(0) == errorType {
		return fmt.Errorf("%w: %s", ErrBadConstructor, ft)
	}

	params := make([]reflect.Type, ft.NumIn())
	for i := range params {
		params[i] = ft.In(i)
	}

	d := reflection.Of(ft.Out(0))
	c.mu.Lock()
	defer c.mu.Unlock()
	c.add(&TypeInfo{Descriptor: d, typ: d.Type(), ctor: v, ctorType: ft, params: params})
	return nil
}

// add stores info and its template (must hold mu.Lock).
func (c *Catalog) add(info *TypeInfo) {
	c.types[info.Descriptor.Key()] = info
	if tmpl, ok := info.Descriptor.Definition(); ok {
		c.templates[tmpl.Key()] = tmpl
	}
}

// Lookup returns the entry for a canonical key.
func (c *Catalog) Lookup(key string) (*TypeInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.types[key]
	return info, ok
}

// ByName finds a declared type or template by canonical key or by its short
// form ("coffee.TapWaterService", "coffee.BeanService[]"). Short names must
// be unambiguous.
func (c *Catalog) ByName(name string) (reflection.Descriptor, error) {
	name = strings.TrimSpace(name)

	c.mu.RLock()
	defer c.mu.RUnlock()

	if info, ok := c.types[name]; ok {
		return info.Descriptor, nil
	}
	if tmpl, ok := c.templates[name]; ok {
		return tmpl, nil
	}

	var matches []reflection.Descriptor
	for _, info := range c.types {
		if info.Descriptor.String() == name {
			matches = append(matches, info.Descriptor)
		}
	}
	for _, tmpl := range c.templates {
		if tmpl.String() == name {
			matches = append(matches, tmpl)
		}
	}

	switch len(matches) {
	case 0:
		return reflection.Descriptor{}, fmt.Errorf("%w: %q", ErrNameNotFound, name)
	case 1:
		return matches[0], nil
	}
	keys := make([]string, len(matches))
	for i, m := range matches {
		keys[i] = m.Key()
	}
	sort.Strings(keys)
	return reflection.Descriptor{}, fmt.Errorf("%w: %q matches %s", ErrAmbiguousName, name, strings.Join(keys, ", "))
}

// Types lists every declared type, sorted by key.
func (c *Catalog) Types() []reflection.Descriptor {
	c.mu.RLock()
	out := make([]reflection.Descriptor, 0, len(c.types))
	for _, info := range c.types {
		out = append(out, info.Descriptor)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Templates lists the open templates of declared generic instantiations.
func (c *Catalog) Templates() []reflection.Descriptor {
	c.mu.RLock()
	out := make([]reflection.Descriptor, 0, len(c.templates))
	for _, tmpl := range c.templates {
		out = append(out, tmpl)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Len returns the number of declared types.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.types)
}
