package activator_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-ioc/framework/activator"
	"github.com/km-arc/go-ioc/framework/reflection"
)

// ── fixtures ──────────────────────────────────────────────────────────────────

type Engine interface{ Start() string }

type Diesel struct{ Started bool }

func (d *Diesel) Start() string {
	d.Started = true
	return "vroom"
}

type Car struct {
	Engine Engine
	Name   string
}

func NewCar(e Engine) *Car { return &Car{Engine: e, Name: "car"} }

type Garage[T any] struct{ Items []T }

var errBroken = errors.New("broken")

func NewBroken() (*Diesel, error) { return nil, errBroken }

// ── Declare / Provide ─────────────────────────────────────────────────────────

func TestCatalog_DeclareAndLookup(t *testing.T) {
	c := activator.NewCatalog()
	require.NoError(t, activator.Declare[Diesel](c))

	info, ok := c.Lookup(reflection.TypeOf[Diesel]().Key())
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[Diesel](), info.Type())
	assert.False(t, info.HasConstructor())
	assert.True(t, info.Constructible())
}

func TestCatalog_DeclarePointerUsesElement(t *testing.T) {
	c := activator.NewCatalog()
	require.NoError(t, activator.Declare[*Diesel](c))

	_, ok := c.Lookup(reflection.TypeOf[Diesel]().Key())
	assert.True(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestCatalog_DeclareInterfaceIsNotConstructible(t *testing.T) {
	c := activator.NewCatalog()
	require.NoError(t, activator.Declare[Engine](c))

	info, ok := c.Lookup(reflection.TypeOf[Engine]().Key())
	require.True(t, ok)
	assert.False(t, info.Constructible())
}

func TestCatalog_DeclareKeepsProvidedConstructor(t *testing.T) {
	c := activator.NewCatalog()
	require.NoError(t, c.Provide(NewCar))
	require.NoError(t, activator.Declare[Car](c))

	info, _ := c.Lookup(reflection.TypeOf[Car]().Key())
	assert.True(t, info.HasConstructor())
}

func TestCatalog_ProvideRecordsParameters(t *testing.T) {
	c := activator.NewCatalog()
	require.NoError(t, c.Provide(NewCar))

	info, ok := c.Lookup(reflection.TypeOf[Car]().Key())
	require.True(t, ok)
	require.Len(t, info.Parameters(), 1)
	assert.True(t, info.Parameters()[0].Equal(reflection.TypeOf[Engine]()))
}

func TestCatalog_ProvideRejectsBadConstructors(t *testing.T) {
	tests := []struct {
		name string
		fn   any
		want error
	}{
		{"not a func", 42, activator.ErrNotFunc},
		{"nil func", (func() *Car)(nil), activator.ErrNotFunc},
		{"no result", func() {}, activator.ErrBadConstructor},
		{"second result not error", func() (*Car, int) { return nil, 0 }, activator.ErrBadConstructor},
		{"returns only error", func() error { return nil }, activator.ErrBadConstructor},
		{"variadic", func(...Engine) *Car { return nil }, activator.ErrBadConstructor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := activator.NewCatalog().Provide(tt.fn)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// ── Templates / names ─────────────────────────────────────────────────────────

func TestCatalog_GenericDeclarationRecordsTemplate(t *testing.T) {
	c := activator.NewCatalog()
	require.NoError(t, activator.Declare[Garage[Diesel]](c))

	tmpls := c.Templates()
	require.Len(t, tmpls, 1)
	assert.True(t, tmpls[0].Equal(reflection.OpenOf[Garage[int]]()))
}

func TestCatalog_ByName(t *testing.T) {
	c := activator.NewCatalog()
	require.NoError(t, activator.Declare[Diesel](c))
	require.NoError(t, activator.Declare[Garage[Diesel]](c))

	tests := []struct {
		name string
		want reflection.Descriptor
	}{
		{"activator_test.Diesel", reflection.TypeOf[Diesel]()},
		{reflection.TypeOf[Diesel]().Key(), reflection.TypeOf[Diesel]()},
		{"activator_test.Garage[]", reflection.OpenOf[Garage[int]]()},
		{" activator_test.Garage[activator_test.Diesel] ", reflection.TypeOf[Garage[Diesel]]()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ByName(tt.name)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s", got)
		})
	}
}

func TestCatalog_ByNameNotFound(t *testing.T) {
	_, err := activator.NewCatalog().ByName("nope.Missing")
	assert.ErrorIs(t, err, activator.ErrNameNotFound)
}

func TestCatalog_TypesSorted(t *testing.T) {
	c := activator.NewCatalog()
	require.NoError(t, activator.Declare[Engine](c))
	require.NoError(t, activator.Declare[Diesel](c))
	require.NoError(t, c.Provide(NewCar))

	types := c.Types()
	require.Len(t, types, 3)
	for i := 1; i < len(types); i++ {
		assert.Less(t, types[i-1].Key(), types[i].Key())
	}
}
