package providers

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/container"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the loaded configuration into the container.
// Every resolution returns the same *config.Config.
//
// Bound abstractions:
//   - config.Config → config.Config (via constructor)
type ConfigServiceProvider struct {
	container.BaseProvider
	Config *config.Config
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	cfg := p.Config
	if cfg == nil {
		cfg = config.Load()
	}
	if err := app.Catalog().Provide(func() *config.Config { return cfg }); err != nil {
		return err
	}
	return container.Register[config.Config, config.Config](app)
}

// ── LogServiceProvider ────────────────────────────────────────────────────────

// LogServiceProvider binds the application logger so constructors can
// declare a *zap.Logger parameter.
//
// Bound abstractions:
//   - zap.Logger → zap.Logger (via constructor)
type LogServiceProvider struct {
	container.BaseProvider
	Logger *zap.Logger
}

func (p *LogServiceProvider) Register(app *container.Container) error {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := app.Catalog().Provide(func() *zap.Logger { return logger }); err != nil {
		return err
	}
	return container.Register[zap.Logger, zap.Logger](app)
}

// ── ManifestServiceProvider ───────────────────────────────────────────────────

// ManifestServiceProvider registers the bindings listed in a YAML manifest.
// Type names are looked up in the container's catalog, so the types must be
// declared by the providers registered before Boot.
//
// The manifest is read in Register and bound in Boot; manifest bindings
// therefore replace bindings made in code for the same abstraction.
type ManifestServiceProvider struct {
	container.BaseProvider
	// Path is read when Manifest is nil.
	Path     string
	Manifest *config.Manifest

	logger *zap.Logger
}

func (p *ManifestServiceProvider) Register(app *container.Container) error {
	if p.Manifest != nil {
		return nil
	}
	if p.Path == "" {
		return errors.New("providers: manifest provider needs a Path or a Manifest")
	}
	m, err := config.LoadManifest(p.Path)
	if err != nil {
		return err
	}
	p.Manifest = m
	return nil
}

func (p *ManifestServiceProvider) Boot(app *container.Container) error {
	if p.Manifest == nil {
		return errors.New("providers: manifest provider booted before it was registered")
	}
	logger := p.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var errs []error
	for i, b := range p.Manifest.Bindings {
		abs, err := app.Catalog().ByName(b.Abstraction)
		if err != nil {
			errs = append(errs, fmt.Errorf("binding %d: abstraction: %w", i, err))
			continue
		}
		impl, err := app.Catalog().ByName(b.Implementation)
		if err != nil {
			errs = append(errs, fmt.Errorf("binding %d: implementation: %w", i, err))
			continue
		}
		if err := app.Register(abs, impl); err != nil {
			errs = append(errs, fmt.Errorf("binding %d: %w", i, err))
			continue
		}
		logger.Info("manifest binding",
			zap.Stringer("abstraction", abs),
			zap.Stringer("implementation", impl))
	}
	return errors.Join(errs...)
}

// WithLogger sets the logger used to report manifest bindings.
func (p *ManifestServiceProvider) WithLogger(logger *zap.Logger) *ManifestServiceProvider {
	p.logger = logger
	return p
}
