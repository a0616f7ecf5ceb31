package fields

import (
	"errors"
	"github.com/notargets/amrkit/mesh"
	"strings"
)

var (
	// ErrNoSuchField is the mesh sentinel, re-exported so callers of the
	// registry need not import mesh to test for it
	ErrNoSuchField = mesh.ErrNoSuchField

	ErrCyclicDependency = errors.New("cyclic field dependency")

	// ErrShadowed is returned when a derived name collides with a
	// coordinate or raw field, which would always win resolution
	ErrShadowed = errors.New("field name shadowed by coordinate or raw field")
)

// CycleError reports the resolution path that re-entered a field
type CycleError struct {
	Path []string // Ends with the repeated name
}

func (e *CycleError) Error() string {
	return ErrCyclicDependency.Error() + ": " + strings.Join(e.Path, " -> ")
}

func (e *CycleError) Unwrap() error { return ErrCyclicDependency }
