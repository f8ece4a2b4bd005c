package reflection

import (
	"fmt"
	"reflect"
	"strings"
)

// ── Descriptor ────────────────────────────────────────────────────────────────

// Descriptor identifies a type: either a closed type (fully specified) or an
// open generic template with unbound type parameters.
//
//	reflection.TypeOf[coffee.WaterService]()                 // closed
//	reflection.TypeOf[coffee.BeanService[coffee.Catimor]]()  // closed generic
//	reflection.OpenOf[coffee.BeanService[coffee.Catimor]]()  // coffee.BeanService[]
type Descriptor struct {
	key   string       // canonical key
	base  string       // pkgpath.Base for generic types, == key otherwise
	args  []string     // type arguments of a closed generic instantiation
	arity int          // number of type parameters (open) or arguments (closed)
	open  bool
	rtype reflect.Type // nil for open templates and synthesized instantiations
}

// Of returns the closed descriptor for t. A pointer to a named non-interface
// type is described by its element type.
func Of(t reflect.Type) Descriptor {
	if t == nil {
		return Descriptor{}
	}
	if t.Kind() == reflect.Pointer && t.Name() == "" && t.Elem().Name() != "" && t.Elem().Kind() != reflect.Interface {
		t = t.Elem()
	}

	key := TypeKey(t)
	d := Descriptor{key: key, base: key, rtype: t}
	if base, args, ok := splitGeneric(key); ok {
		d.base = base
		d.args = args
		d.arity = len(args)
	}
	return d
}

// TypeOf returns the closed descriptor for T.
func TypeOf[T any]() Descriptor {
	return Of(reflect.TypeFor[T]())
}

// OpenOf returns the open template of the generic type T. Any valid
// instantiation names the template:
//
//	reflection.OpenOf[coffee.ArabicaBeanService[coffee.Catimor]]()  // coffee.ArabicaBeanService[]
//
// It panics if T is not a generic instantiation.
func OpenOf[T any]() Descriptor {
	d, ok := TypeOf[T]().Definition()
	if !ok {
		panic(fmt.Sprintf("reflection: OpenOf[%s]: not a generic type", reflect.TypeFor[T]()))
	}
	return d
}

// Open returns the open template pkgPath.name with arity type parameters.
func Open(pkgPath, name string, arity int) Descriptor {
	base := name
	if pkgPath != "" {
		base = pkgPath + "." + name
	}
	return open(base, arity)
}

func open(base string, arity int) Descriptor {
	if arity < 1 {
		arity = 1
	}
	return Descriptor{
		key:   base + "[" + strings.Repeat(",", arity-1) + "]",
		base:  base,
		arity: arity,
		open:  true,
	}
}

// Named parses a canonical key produced by Key back into a descriptor. The
// result carries no reflect.Type.
func Named(key string) (Descriptor, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Descriptor{}, fmt.Errorf("%w: empty type name", ErrMalformedName)
	}
	base, args, ok := splitGeneric(key)
	if !ok {
		return Descriptor{key: key, base: key}, nil
	}

	unbound := true
	for _, a := range args {
		if a != "" {
			unbound = false
			break
		}
	}
	if unbound {
		return open(base, len(args)), nil
	}
	for _, a := range args {
		if a == "" {
			return Descriptor{}, fmt.Errorf("%w: %q mixes bound and unbound parameters", ErrMalformedName, key)
		}
	}
	return Descriptor{key: key, base: base, args: args, arity: len(args)}, nil
}

// ── Accessors ─────────────────────────────────────────────────────────────────

// Key returns the canonical, package-qualified key.
func (d Descriptor) Key() string { return d.key }

// String returns the short form with package paths reduced to package names.
func (d Descriptor) String() string {
	if d.key == "" {
		return "<nil>"
	}
	return Shorten(d.key)
}

// IsZero reports whether d describes nothing.
func (d Descriptor) IsZero() bool { return d.key == "" }

// IsOpen reports whether d is an open generic template.
func (d Descriptor) IsOpen() bool { return d.open }

// IsGeneric reports whether d is an open template or a closed instantiation.
func (d Descriptor) IsGeneric() bool { return d.arity > 0 }

// Arity returns the number of type parameters (0 for non-generic types).
func (d Descriptor) Arity() int { return d.arity }

// Type returns the reflect.Type behind a closed descriptor, or nil.
func (d Descriptor) Type() reflect.Type { return d.rtype }

// Args returns the type arguments of a closed generic instantiation.
func (d Descriptor) Args() []Descriptor {
	if d.open || len(d.args) == 0 {
		return nil
	}
	out := make([]Descriptor, 0, len(d.args))
	for _, a := range d.args {
		arg, err := Named(a)
		if err != nil {
			arg = Descriptor{key: a, base: a}
		}
		out = append(out, arg)
	}
	return out
}

// Definition returns the open template a closed generic instantiation was
// built from. ok is false for non-generic types; an open template returns
// itself.
func (d Descriptor) Definition() (Descriptor, bool) {
	switch {
	case d.open:
		return d, true
	case d.arity == 0:
		return Descriptor{}, false
	}
	return open(d.base, d.arity), true
}

// MakeGeneric substitutes args positionally into the open template d and
// returns the closed instantiation. The result carries no reflect.Type; use
// an activator catalog to bind it to a constructible type.
func (d Descriptor) MakeGeneric(args ...Descriptor) (Descriptor, error) {
	if !d.open {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrNotOpen, d)
	}
	if len(args) != d.arity {
		return Descriptor{}, &ArityError{Template: d, Want: d.arity, Got: len(args)}
	}
	keys := make([]string, len(args))
	for i, a := range args {
		if a.IsZero() || a.open {
			return Descriptor{}, fmt.Errorf("%w: argument %d of %s", ErrNotClosed, i, d)
		}
		keys[i] = a.key
	}
	return Descriptor{
		key:   d.base + "[" + strings.Join(keys, ",") + "]",
		base:  d.base,
		args:  keys,
		arity: d.arity,
	}, nil
}

// Equal reports whether d and o describe the same type.
func (d Descriptor) Equal(o Descriptor) bool { return d.key == o.key }
