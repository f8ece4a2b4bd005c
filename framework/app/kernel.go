package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/framework/activator"
	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/container"
	"github.com/km-arc/go-ioc/framework/logging"
	"github.com/km-arc/go-ioc/framework/providers"
)

// Application is the top-level application container.
// It embeds the IoC Container and ProviderRegistry so user code can
// call app.Register(), app.Resolve() directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	cfg      *config.Config
	logger   *zap.Logger
	metrics  *container.Metrics
	registry *prometheus.Registry
}

// Option configures an Application.
type Option func(*options)

type options struct {
	cfg    *config.Config
	logger *zap.Logger
}

// WithConfig uses cfg instead of loading .env.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger uses logger instead of building one from the configuration.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New creates and bootstraps the application: configuration, logger,
// metrics, the container and the framework providers.
func New(opts ...Option) (*Application, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.cfg == nil {
		o.cfg = config.Load()
	}
	if o.logger == nil {
		logger, err := logging.New(o.cfg.Log)
		if err != nil {
			return nil, err
		}
		o.logger = logger
	}

	a := &Application{cfg: o.cfg, logger: o.logger}

	copts := []container.Option{
		container.WithLogger(o.logger),
		container.WithCatalog(activator.NewCatalog()),
	}
	if o.cfg.Container.Metrics {
		a.registry = prometheus.NewRegistry()
		m, err := container.NewMetrics(a.registry)
		if err != nil {
			return nil, fmt.Errorf("app: metrics: %w", err)
		}
		a.metrics = m
		copts = append(copts, container.WithMetrics(m))
	}

	a.Container = container.New(copts...)
	a.Providers = container.NewProviderRegistry(a.Container)

	// Framework core providers
	core := []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: o.cfg},
		&providers.LogServiceProvider{Logger: o.logger},
	}
	for _, p := range core {
		if err := a.Providers.Register(p); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers. The configured binding
// manifest, if any, is registered last so its bindings win. Later calls
// are no-ops.
func (a *Application) Boot() error {
	if a.Providers.Booted() {
		return nil
	}
	if path := a.cfg.Container.Manifest; path != "" {
		manifest := (&providers.ManifestServiceProvider{Path: path}).WithLogger(a.logger)
		if err := a.Providers.Register(manifest); err != nil {
			return err
		}
	}
	if err := a.Providers.Boot(); err != nil {
		return err
	}
	a.logger.Info("application booted",
		zap.String("app", a.cfg.App.Name),
		zap.String("env", a.cfg.App.Env),
		zap.Int("registrations", len(a.Registrations())))
	return nil
}

// Config returns the application configuration.
func (a *Application) Config() *config.Config { return a.cfg }

// Logger returns the application logger.
func (a *Application) Logger() *zap.Logger { return a.logger }

// Metrics returns the container collectors, nil when metrics are disabled.
func (a *Application) Metrics() *container.Metrics { return a.metrics }

// Gatherer exposes the metrics registry, nil when metrics are disabled.
func (a *Application) Gatherer() prometheus.Gatherer {
	if a.registry == nil {
		return nil
	}
	return a.registry
}

// Shutdown flushes buffered log entries.
func (a *Application) Shutdown() {
	_ = a.logger.Sync()
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.cfg.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.cfg.App.Debug }
func (a *Application) Version() string     { return "0.1.0" }
