package container

import (
	"errors"

	"github.com/km-arc/go-ioc/framework/activator"
	"github.com/km-arc/go-ioc/framework/reflection"
)

var (
	// ErrInvalidRegistration is returned by Register when the pair cannot
	// describe a binding: a zero descriptor, an open template bound to a
	// closed type (or the reverse), or templates of different arity.
	ErrInvalidRegistration = errors.New("container: invalid registration")

	// ErrNotRegistered is wrapped by every ResolutionError.
	ErrNotRegistered = errors.New("container: no registration found for requested abstraction")

	// ErrNotAssignable means the constructed instance does not satisfy the
	// requested abstraction.
	ErrNotAssignable = errors.New("instance does not satisfy abstraction")

	// ErrCircularDependency means a constructor (transitively) depends on
	// the type it builds.
	ErrCircularDependency = errors.New("circular dependency")
)

// ResolutionError reports that no binding exists for Abstraction, neither
// directly nor through its open generic template.
type ResolutionError struct {
	Abstraction reflection.Descriptor
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return "container: no registration found for " + e.Abstraction.String()
}

// Unwrap returns ErrNotRegistered.
func (e *ResolutionError) Unwrap() error { return ErrNotRegistered }

// ActivationError reports that a binding exists but its implementation could
// not be constructed.
type ActivationError = activator.ActivationError
