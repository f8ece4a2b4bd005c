package container

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/framework/activator"
	"github.com/km-arc/go-ioc/framework/reflection"
)

// ── Registration ──────────────────────────────────────────────────────────────

// Registration binds an abstraction to the implementation built for it.
// When Abstraction is an open generic template, Implementation is an open
// template of the same arity and parameters map positionally.
type Registration struct {
	Abstraction    reflection.Descriptor
	Implementation reflection.Descriptor
}

// String renders "abstraction => implementation".
func (r Registration) String() string {
	return r.Abstraction.String() + " => " + r.Implementation.String()
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the IoC container: a registry of abstraction → implementation
// bindings that constructs a new implementation instance on every Resolve.
//
// It supports:
//   - Register (closed pairs and open generic templates)
//   - Resolve (transient only, constructor injection through the catalog)
//   - Contextual binding (when A needs B, give it C)
//   - Resolved callbacks
//   - Deferred loading through OnMissing hooks (see ProviderRegistry)
type Container struct {
	mu sync.RWMutex

	id uuid.UUID

	// abstraction key → binding
	registrations map[string]Registration

	// contextual: when[concrete][abstraction] = implementation
	contextual map[string]map[string]reflection.Descriptor

	// resolved callbacks
	afterResolving []func(reflection.Descriptor, any)

	// consulted when an abstraction has no binding; true means "try again"
	onMissing []func(reflection.Descriptor) (bool, error)

	catalog   *activator.Catalog
	activator *activator.Activator
	logger    *zap.Logger
	metrics   *Metrics
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCatalog sets the type catalog used for activation.
func WithCatalog(catalog *activator.Catalog) Option {
	return func(c *Container) { c.catalog = catalog }
}

// WithMetrics records registrations and resolution outcomes.
func WithMetrics(m *Metrics) Option {
	return func(c *Container) { c.metrics = m }
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		id:            uuid.New(),
		registrations: make(map[string]Registration),
		contextual:    make(map[string]map[string]reflection.Descriptor),
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.catalog == nil {
		c.catalog = activator.NewCatalog()
	}
	c.logger = c.logger.With(zap.Stringer("container", c.id))
	c.activator = activator.New(c.catalog, c.logger)
	return c
}

// ID identifies this container in logs.
func (c *Container) ID() uuid.UUID { return c.id }

// Catalog returns the type catalog used for activation.
func (c *Container) Catalog() *activator.Catalog { return c.catalog }

// ── Registration ──────────────────────────────────────────────────────────────

// Register binds abstraction to implementation. A later registration for the
// same abstraction replaces the earlier one.
//
//	c.Register(reflection.TypeOf[coffee.WaterService](), reflection.TypeOf[coffee.TapWaterService]())
//	c.Register(reflection.OpenOf[coffee.BeanService[coffee.Catimor]](),
//	    reflection.OpenOf[coffee.ArabicaBeanService[coffee.Catimor]]())
//
// Only the shape of the pair is validated here; whether the implementation
// satisfies the abstraction is checked when it is resolved.
func (c *Container) Register(abstraction, implementation reflection.Descriptor) error {
	if err := validate(abstraction, implementation); err != nil {
		return err
	}

	c.mu.Lock()
	prev, replaced := c.registrations[abstraction.Key()]
	c.registrations[abstraction.Key()] = Registration{Abstraction: abstraction, Implementation: implementation}
	n := len(c.registrations)
	c.mu.Unlock()

	c.metrics.setRegistrations(n)
	if replaced {
		c.logger.Debug("registration replaced",
			zap.Stringer("abstraction", abstraction),
			zap.Stringer("previous", prev.Implementation),
			zap.Stringer("implementation", implementation))
		return nil
	}
	c.logger.Debug("registered",
		zap.Stringer("abstraction", abstraction),
		zap.Stringer("implementation", implementation))
	return nil
}

func validate(abstraction, implementation reflection.Descriptor) error {
	switch {
	case abstraction.IsZero() || implementation.IsZero():
		return fmt.Errorf("%w: empty descriptor", ErrInvalidRegistration)
	case abstraction.IsOpen() && !implementation.IsOpen():
		return fmt.Errorf("%w: open template %s bound to closed type %s", ErrInvalidRegistration, abstraction, implementation)
	case !abstraction.IsOpen() && implementation.IsOpen():
		return fmt.Errorf("%w: closed type %s bound to open template %s", ErrInvalidRegistration, abstraction, implementation)
	case abstraction.Arity() != implementation.Arity() && abstraction.IsOpen():
		return fmt.Errorf("%w: %w", ErrInvalidRegistration,
			&reflection.ArityError{Template: implementation, Want: abstraction.Arity(), Got: implementation.Arity()})
	}
	return nil
}

// ── Contextual Binding ────────────────────────────────────────────────────────

// When starts a contextual binding chain.
//
//	c.When(reflection.TypeOf[coffee.CoffeeService]()).
//	    Needs(reflection.TypeOf[coffee.WaterService]()).
//	    Give(reflection.TypeOf[coffee.BottledWaterService]())
func (c *Container) When(concrete reflection.Descriptor) *ContextualBuilder {
	return &ContextualBuilder{container: c, concrete: concrete}
}

// getContextual returns the implementation to inject into concrete for
// abstraction, if one was given.
func (c *Container) getContextual(concrete, abstraction reflection.Descriptor) (reflection.Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if m, ok := c.contextual[concrete.Key()]; ok {
		if impl, ok := m[abstraction.Key()]; ok {
			return impl, true
		}
	}
	return reflection.Descriptor{}, false
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Resolve constructs a new instance of the implementation bound to
// abstraction. A closed generic abstraction without a direct binding is
// served by the binding of its open template, with the type arguments
// substituted positionally into the implementation template.
//
// Errors are *ResolutionError when nothing is bound and *ActivationError
// when the implementation cannot be constructed.
func (c *Container) Resolve(abstraction reflection.Descriptor) (any, error) {
	return c.resolve(abstraction, nil)
}

func (c *Container) resolve(abstraction reflection.Descriptor, stack []string) (any, error) {
	reg, ok := c.lookup(abstraction)
	if !ok {
		loaded, err := c.loadMissing(abstraction)
		if err != nil {
			c.metrics.observe(abstraction, OutcomeActivationFailed)
			c.logger.Debug("missing hook failed", zap.Stringer("abstraction", abstraction), zap.Error(err))
			return nil, &ActivationError{Type: abstraction, Err: err}
		}
		if loaded {
			reg, ok = c.lookup(abstraction)
		}
	}
	if !ok {
		c.metrics.observe(abstraction, OutcomeUnregistered)
		c.logger.Debug("no registration", zap.Stringer("abstraction", abstraction))
		return nil, &ResolutionError{Abstraction: abstraction}
	}

	impl := reg.Implementation
	if reg.Abstraction.IsOpen() && !abstraction.IsOpen() {
		closed, err := impl.MakeGeneric(abstraction.Args()...)
		if err != nil {
			c.metrics.observe(abstraction, OutcomeActivationFailed)
			return nil, &ActivationError{Type: impl, Err: err}
		}
		impl = closed
	}

	instance, err := c.activate(abstraction, impl, stack)
	if err != nil {
		c.metrics.observe(abstraction, OutcomeActivationFailed)
		c.logger.Debug("activation failed",
			zap.Stringer("abstraction", abstraction),
			zap.Stringer("implementation", impl),
			zap.Error(err))
		return nil, err
	}

	c.metrics.observe(abstraction, OutcomeResolved)
	c.logger.Debug("resolved",
		zap.Stringer("abstraction", abstraction),
		zap.Stringer("implementation", impl))
	c.fireAfterResolving(abstraction, instance)
	return instance, nil
}

// lookup finds the binding for abstraction: by exact key first, then by the
// open template of a closed generic instantiation.
func (c *Container) lookup(abstraction reflection.Descriptor) (Registration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if reg, ok := c.registrations[abstraction.Key()]; ok {
		return reg, true
	}
	if abstraction.IsOpen() {
		return Registration{}, false
	}
	if tmpl, ok := abstraction.Definition(); ok {
		reg, ok := c.registrations[tmpl.Key()]
		return reg, ok
	}
	return Registration{}, false
}

// activate builds impl for abstraction, resolving constructor parameters
// through the container. stack holds the implementations under construction.
func (c *Container) activate(abstraction, impl reflection.Descriptor, stack []string) (any, error) {
	for _, key := range stack {
		if key == impl.Key() {
			chain := make([]string, 0, len(stack)+1)
			for _, k := range stack {
				chain = append(chain, reflection.Shorten(k))
			}
			chain = append(chain, impl.String())
			return nil, &ActivationError{Type: impl, Err: fmt.Errorf("%w: %s", ErrCircularDependency, strings.Join(chain, " -> "))}
		}
	}
	next := append(stack[:len(stack):len(stack)], impl.Key())

	deps := func(t reflect.Type) (any, error) {
		dep := reflection.Of(t)
		if override, ok := c.getContextual(impl, dep); ok {
			return c.activate(dep, override, next)
		}
		return c.resolve(dep, next)
	}

	instance, err := c.activator.CreateInstance(impl, deps)
	if err != nil {
		return nil, err
	}
	if !satisfies(instance, abstraction.Type()) {
		return nil, &ActivationError{Type: impl, Err: fmt.Errorf("%w: %T is not %s", ErrNotAssignable, instance, abstraction)}
	}
	return instance, nil
}

// satisfies reports whether instance can be used as a want. Name-only
// descriptors (want == nil) are not checked.
func satisfies(instance any, want reflect.Type) bool {
	if want == nil {
		return true
	}
	got := reflect.TypeOf(instance)
	if want.Kind() == reflect.Interface {
		return got.Implements(want)
	}
	return got == want || (got.Kind() == reflect.Pointer && got.Elem() == want)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound returns true if abstraction has a binding, directly or through its
// open generic template.
func (c *Container) Bound(abstraction reflection.Descriptor) bool {
	_, ok := c.lookup(abstraction)
	return ok
}

// Forget removes the binding registered for abstraction. Contextual
// bindings are kept.
func (c *Container) Forget(abstraction reflection.Descriptor) {
	c.mu.Lock()
	delete(c.registrations, abstraction.Key())
	n := len(c.registrations)
	c.mu.Unlock()
	c.metrics.setRegistrations(n)
}

// Flush resets the entire container. Callbacks and hooks are kept.
func (c *Container) Flush() {
	c.mu.Lock()
	c.registrations = make(map[string]Registration)
	c.contextual = make(map[string]map[string]reflection.Descriptor)
	c.mu.Unlock()
	c.metrics.setRegistrations(0)
}

// Registrations returns a snapshot of all bindings sorted by abstraction.
func (c *Container) Registrations() []Registration {
	c.mu.RLock()
	out := make([]Registration, 0, len(c.registrations))
	for _, reg := range c.registrations {
		out = append(out, reg)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Abstraction.Key() < out[j].Abstraction.Key() })
	return out
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// AfterResolving registers a callback fired after every successful Resolve,
// including resolutions of constructor dependencies.
func (c *Container) AfterResolving(cb func(abstraction reflection.Descriptor, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

// OnMissing registers a hook consulted when an abstraction has no binding.
// A hook returning true has registered something and the lookup is retried
// once. A hook error fails the Resolve with an *ActivationError.
func (c *Container) OnMissing(hook func(abstraction reflection.Descriptor) (bool, error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMissing = append(c.onMissing, hook)
}

func (c *Container) loadMissing(abstraction reflection.Descriptor) (bool, error) {
	c.mu.RLock()
	hooks := c.onMissing
	c.mu.RUnlock()

	loaded := false
	var errs []error
	for _, hook := range hooks {
		ok, err := hook(abstraction)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			loaded = true
		}
	}
	return loaded, errors.Join(errs...)
}

func (c *Container) fireAfterResolving(abstraction reflection.Descriptor, instance any) {
	c.mu.RLock()
	cbs := c.afterResolving
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(abstraction, instance)
	}
}
