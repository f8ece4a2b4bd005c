package providers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/km-arc/go-ioc/examples/coffee"
	"github.com/km-arc/go-ioc/framework/activator"
	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/container"
	"github.com/km-arc/go-ioc/framework/providers"
)

func boot(t *testing.T, ps ...container.ServiceProvider) (*container.Container, error) {
	t.Helper()
	c := container.New()
	reg := container.NewProviderRegistry(c)
	for _, p := range ps {
		require.NoError(t, reg.Register(p))
	}
	return c, reg.Boot()
}

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

func TestConfigServiceProvider_SameConfigEveryTime(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Name: "Roastery"}}
	c, err := boot(t, &providers.ConfigServiceProvider{Config: cfg})
	require.NoError(t, err)

	first, err := container.Resolve[*config.Config](c)
	require.NoError(t, err)
	second := container.MustResolve[*config.Config](c)

	assert.Same(t, cfg, first)
	assert.Same(t, first, second)
}

// ── LogServiceProvider ────────────────────────────────────────────────────────

type roaster struct{ log *zap.Logger }

func newRoaster(log *zap.Logger) *roaster { return &roaster{log: log} }

func TestLogServiceProvider_InjectsLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	c, err := boot(t, &providers.LogServiceProvider{Logger: logger})
	require.NoError(t, err)
	require.NoError(t, c.Catalog().Provide(newRoaster))
	require.NoError(t, container.Register[roaster, roaster](c))

	r, err := container.Resolve[*roaster](c)
	require.NoError(t, err)
	r.log.Info("roasting")

	assert.Equal(t, 1, logs.FilterMessage("roasting").Len())
}

// ── ManifestServiceProvider ───────────────────────────────────────────────────

func TestManifestServiceProvider_OverridesCodeBindings(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	manifest := (&providers.ManifestServiceProvider{Path: "../config/testdata/bindings.yaml"}).
		WithLogger(zap.New(core))

	c, err := boot(t, &coffee.ServiceProvider{}, manifest)
	require.NoError(t, err)

	water, err := container.Resolve[coffee.WaterService](c)
	require.NoError(t, err)
	assert.IsType(t, &coffee.BottledWaterService{}, water)

	beans, err := container.Resolve[coffee.BeanService[coffee.Catimor]](c)
	require.NoError(t, err)
	assert.IsType(t, &coffee.ArabicaBeanService[coffee.Catimor]{}, beans)

	assert.Equal(t, 2, logs.FilterMessage("manifest binding").Len())
}

func TestManifestServiceProvider_InlineManifest(t *testing.T) {
	c, err := boot(t, &coffee.ServiceProvider{}, &providers.ManifestServiceProvider{
		Manifest: &config.Manifest{Bindings: []config.Binding{
			{Abstraction: "coffee.CoffeeService", Implementation: "coffee.HouseCoffeeService"},
			{Abstraction: "coffee.WaterService", Implementation: "coffee.BottledWaterService"},
		}},
	})
	require.NoError(t, err)

	svc, err := container.Resolve[coffee.CoffeeService](c)
	require.NoError(t, err)
	assert.Equal(t, "18g of ground Catimor + 250ml of spring water", svc.Brew())
}

func TestManifestServiceProvider_UnknownName(t *testing.T) {
	_, err := boot(t, &coffee.ServiceProvider{}, &providers.ManifestServiceProvider{
		Manifest: &config.Manifest{Bindings: []config.Binding{
			{Abstraction: "coffee.WaterService", Implementation: "coffee.SparklingWaterService"},
		}},
	})

	assert.ErrorIs(t, err, activator.ErrNameNotFound)
	assert.Contains(t, err.Error(), "binding 0: implementation")
}

func TestManifestServiceProvider_ShapeMismatch(t *testing.T) {
	_, err := boot(t, &coffee.ServiceProvider{}, &providers.ManifestServiceProvider{
		Manifest: &config.Manifest{Bindings: []config.Binding{
			{Abstraction: "coffee.BeanService[]", Implementation: "coffee.TapWaterService"},
		}},
	})

	assert.ErrorIs(t, err, container.ErrInvalidRegistration)
}

func TestManifestServiceProvider_NeedsSource(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())
	err := reg.Register(&providers.ManifestServiceProvider{})
	assert.Error(t, err)
}

func TestManifestServiceProvider_BootWithoutRegister(t *testing.T) {
	p := &providers.ManifestServiceProvider{Path: "../config/testdata/bindings.yaml"}

	var err error
	assert.NotPanics(t, func() { err = p.Boot(container.New()) })
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "before it was registered")
}

func TestManifestServiceProvider_BadFile(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())
	err := reg.Register(&providers.ManifestServiceProvider{Path: "testdata/missing.yaml"})
	assert.Error(t, err)
}
