package fields

import (
	"fmt"
	"github.com/notargets/amrkit/backend"
	"github.com/notargets/amrkit/mesh"
	"go.uber.org/zap"
	"slices"
	"sort"
)

// Func derives a field from other fields through the Calc it is handed.
// It must be pure: same mesh, same result
type Func func(c *Calc) *mesh.BlockArray

// Registry resolves field names to per-block arrays in the order
// coordinate, raw, derived. Derived fields are recomputed on every request.
// Arrays returned by Resolve may be shared with the mesh and must not be
// modified
type Registry struct {
	mesh  *mesh.Mesh
	be    backend.Backend
	funcs map[string]Func
	log   *zap.Logger
}

type Option func(*Registry)

// WithBackend sets the array backend used by derived formulas (default host)
func WithBackend(be backend.Backend) Option {
	return func(r *Registry) {
		if be != nil {
			r.be = be
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRegistry creates a registry over m with the built-in formulas. The
// magnetic set is added only when bcc1, bcc2 and bcc3 are loaded
func NewRegistry(m *mesh.Mesh, opts ...Option) *Registry {
	r := &Registry{
		mesh:  m,
		be:    backend.Host{},
		funcs: make(map[string]Func),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.registerBuiltins(hydroFields)
	if m.HasRaw("bcc1") && m.HasRaw("bcc2") && m.HasRaw("bcc3") {
		r.registerBuiltins(mhdFields)
	}
	return r
}

func (r *Registry) registerBuiltins(defs []definition) {
	for _, d := range defs {
		if err := r.Register(d.name, d.fn); err != nil {
			r.log.Debug("built-in field not registered", zap.String("field", d.name), zap.Error(err))
		}
	}
}

func (r *Registry) Mesh() *mesh.Mesh { return r.mesh }

func (r *Registry) Backend() backend.Backend { return r.be }

func (r *Registry) Logger() *zap.Logger { return r.log }

// Register adds or replaces a derived field
func (r *Registry) Register(name string, fn Func) error {
	if fn == nil {
		return fmt.Errorf("register %q: nil function", name)
	}
	if _, ok := r.mesh.Coord(name); ok || r.mesh.HasRaw(name) {
		return fmt.Errorf("register %q: %w", name, ErrShadowed)
	}
	r.funcs[name] = fn
	return nil
}

// Has reports whether name resolves to something
func (r *Registry) Has(name string) bool {
	if _, ok := r.mesh.Coord(name); ok {
		return true
	}
	_, ok := r.funcs[name]
	return ok || r.mesh.HasRaw(name)
}

// Names lists coordinate, raw and derived names, each group sorted except
// coordinates which keep their natural order
func (r *Registry) Names() []string {
	names := r.mesh.CoordNames()
	names = append(names, r.mesh.RawNames()...)
	derived := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		derived = append(derived, name)
	}
	sort.Strings(derived)
	return append(names, derived...)
}

// Resolve returns the array for name
func (r *Registry) Resolve(name string) (*mesh.BlockArray, error) {
	return r.resolve(name, nil)
}

// ResolveAll resolves each name in order, stopping at the first failure
func (r *Registry) ResolveAll(names []string) ([]*mesh.BlockArray, error) {
	out := make([]*mesh.BlockArray, len(names))
	for n, name := range names {
		arr, err := r.Resolve(name)
		if err != nil {
			return nil, err
		}
		out[n] = arr
	}
	return out, nil
}

// resolve walks the dependency graph with path holding the derived fields
// currently being evaluated
func (r *Registry) resolve(name string, path []string) (*mesh.BlockArray, error) {
	if arr, ok := r.mesh.Coord(name); ok {
		return arr, nil
	}
	if r.mesh.HasRaw(name) {
		return r.mesh.Raw(name)
	}
	fn, ok := r.funcs[name]
	if !ok {
		return nil, fmt.Errorf("field %q: %w", name, ErrNoSuchField)
	}
	if slices.Contains(path, name) {
		return nil, &CycleError{Path: append(slices.Clone(path), name)}
	}

	c := &Calc{reg: r, path: append(slices.Clone(path), name)}
	arr := fn(c)
	if c.err != nil {
		return nil, c.err
	}
	if arr == nil {
		return nil, fmt.Errorf("derived field %q produced no data", name)
	}
	return arr, nil
}
