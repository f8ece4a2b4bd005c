package container

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/framework/reflection"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups related registrations.
//
// Register binds types into the container. Boot is called after ALL eager
// providers have been registered, making it safe to resolve other bindings
// inside Boot.
//
//	type CoffeeProvider struct{ container.BaseProvider }
//
//	func (p *CoffeeProvider) Register(app *container.Container) error {
//	    return container.Register[coffee.WaterService, coffee.TapWaterService](app)
//	}
type ServiceProvider interface {
	// Register binds types into the container.
	// Do NOT resolve other bindings here; use Boot() for that.
	Register(app *Container) error

	// Boot is called after all providers are registered.
	Boot(app *Container) error

	// Provides returns the abstractions this provider registers. Used for
	// deferred loading; open templates cover all their instantiations.
	Provides() []reflection.Descriptor

	// IsDeferred returns true if this provider should be loaded lazily,
	// only when one of its Provides() abstractions is first resolved.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides no-op implementations
// of Boot(), Provides(), and IsDeferred().
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error           { return nil }
func (p *BaseProvider) Provides() []reflection.Descriptor { return nil }
func (p *BaseProvider) IsDeferred() bool                  { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred (lazy) providers.
type ProviderRegistry struct {
	mu         sync.Mutex
	app        *Container
	eager      []ServiceProvider
	deferred   map[string]ServiceProvider // abstraction key → provider
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to app and hooks deferred
// loading into app's resolution path.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	r := &ProviderRegistry{
		app:        app,
		deferred:   make(map[string]ServiceProvider),
		registered: make(map[ServiceProvider]bool),
	}
	app.OnMissing(r.loadDeferred)
	return r
}

// Register adds a provider and calls its Register() method (unless deferred).
// A provider registered after Boot is booted immediately.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return nil
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		for _, abstraction := range provider.Provides() {
			r.deferred[abstraction.Key()] = provider
		}
		r.mu.Unlock()
		r.app.logger.Debug("deferred provider", zap.String("provider", fmt.Sprintf("%T", provider)))
		return nil
	}
	booted := r.booted
	r.mu.Unlock()

	if err := provider.Register(r.app); err != nil {
		return fmt.Errorf("container: register %T: %w", provider, err)
	}

	r.mu.Lock()
	r.eager = append(r.eager, provider)
	r.mu.Unlock()

	if booted {
		if err := provider.Boot(r.app); err != nil {
			return fmt.Errorf("container: boot %T: %w", provider, err)
		}
	}
	return nil
}

// loadDeferred registers the deferred provider of abstraction (or of its open
// template). It reports whether a provider was loaded. A provider whose
// Register fails stays deferred and is retried on the next miss.
func (r *ProviderRegistry) loadDeferred(abstraction reflection.Descriptor) (bool, error) {
	r.mu.Lock()
	provider, ok := r.deferred[abstraction.Key()]
	if !ok {
		if tmpl, generic := abstraction.Definition(); generic {
			provider, ok = r.deferred[tmpl.Key()]
		}
	}
	if !ok {
		r.mu.Unlock()
		return false, nil
	}
	// claim the provider so concurrent misses do not load it twice
	var keys []string
	for key, p := range r.deferred {
		if p == provider {
			keys = append(keys, key)
			delete(r.deferred, key)
		}
	}
	r.mu.Unlock()

	log := r.app.logger.With(
		zap.String("provider", fmt.Sprintf("%T", provider)),
		zap.Stringer("abstraction", abstraction))
	if err := provider.Register(r.app); err != nil {
		r.mu.Lock()
		for _, key := range keys {
			r.deferred[key] = provider
		}
		r.mu.Unlock()
		log.Error("deferred provider failed to register", zap.Error(err))
		return false, fmt.Errorf("container: register deferred %T: %w", provider, err)
	}

	r.mu.Lock()
	r.eager = append(r.eager, provider)
	booted := r.booted
	r.mu.Unlock()

	if booted {
		if err := provider.Boot(r.app); err != nil {
			log.Error("deferred provider failed to boot", zap.Error(err))
			return true, fmt.Errorf("container: boot deferred %T: %w", provider, err)
		}
	}
	log.Debug("deferred provider loaded")
	return true, nil
}

// Boot calls Boot() on all eager providers. Must be called after ALL
// providers have been registered. Failures are joined.
func (r *ProviderRegistry) Boot() error {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return nil
	}
	r.booted = true
	providers := append([]ServiceProvider(nil), r.eager...)
	r.mu.Unlock()

	var errs []error
	for _, provider := range providers {
		if err := provider.Boot(r.app); err != nil {
			errs = append(errs, fmt.Errorf("container: boot %T: %w", provider, err))
		}
	}
	return errors.Join(errs...)
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Providers returns all eager providers and the deferred ones loaded so far.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.eager...)
}
