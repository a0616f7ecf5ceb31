package fields

import (
	"fmt"
	"github.com/notargets/amrkit/backend"
	"github.com/notargets/amrkit/mesh"
)

// Calc is handed to a Func to fetch dependencies and combine arrays.
// The first failure sticks: later calls return nil and Err reports it
type Calc struct {
	reg  *Registry
	path []string
	err  error
}

func (c *Calc) Err() error { return c.err }

// Fail records err unless an earlier error is already held
func (c *Calc) Fail(err error) *mesh.BlockArray {
	if c.err == nil {
		c.err = err
	}
	return nil
}

// Field resolves a dependency of the field being computed
func (c *Calc) Field(name string) *mesh.BlockArray {
	if c.err != nil {
		return nil
	}
	arr, err := c.reg.resolve(name, c.path)
	if err != nil {
		return c.Fail(err)
	}
	return arr
}

// Gamma is the adiabatic index of the mesh
func (c *Calc) Gamma() float64 { return c.reg.mesh.Params.Gamma }

// Const returns a new array of v with the mesh layout
func (c *Calc) Const(v float64) *mesh.BlockArray {
	if c.err != nil {
		return nil
	}
	m := c.reg.mesh
	return mesh.NewBlockArray(m.BlockCount(), m.Params.BlockShape()).Fill(v)
}

func (c *Calc) binary(op backend.Op, a, b *mesh.BlockArray) *mesh.BlockArray {
	if c.err != nil || a == nil || b == nil {
		return nil
	}
	if !a.SameLayout(b) {
		return c.Fail(fmt.Errorf("%s: %w", op, mesh.ErrShapeMismatch))
	}
	out := a.Like()
	if err := c.reg.be.Apply(op, out.Data, a.Data, b.Data); err != nil {
		return c.Fail(err)
	}
	return out
}

func (c *Calc) scalar(op backend.Op, a *mesh.BlockArray, s float64) *mesh.BlockArray {
	if c.err != nil || a == nil {
		return nil
	}
	out := a.Like()
	if err := c.reg.be.ApplyScalar(op, out.Data, a.Data, s); err != nil {
		return c.Fail(err)
	}
	return out
}

func (c *Calc) Add(a, b *mesh.BlockArray) *mesh.BlockArray { return c.binary(backend.Add, a, b) }
func (c *Calc) Sub(a, b *mesh.BlockArray) *mesh.BlockArray { return c.binary(backend.Sub, a, b) }
func (c *Calc) Mul(a, b *mesh.BlockArray) *mesh.BlockArray { return c.binary(backend.Mul, a, b) }
func (c *Calc) Div(a, b *mesh.BlockArray) *mesh.BlockArray { return c.binary(backend.Div, a, b) }
func (c *Calc) Min(a, b *mesh.BlockArray) *mesh.BlockArray { return c.binary(backend.Min, a, b) }
func (c *Calc) Max(a, b *mesh.BlockArray) *mesh.BlockArray { return c.binary(backend.Max, a, b) }

func (c *Calc) Scale(a *mesh.BlockArray, s float64) *mesh.BlockArray {
	return c.scalar(backend.Mul, a, s)
}

func (c *Calc) Shift(a *mesh.BlockArray, s float64) *mesh.BlockArray {
	return c.scalar(backend.Add, a, s)
}

func (c *Calc) Pow(a *mesh.BlockArray, s float64) *mesh.BlockArray {
	return c.scalar(backend.Pow, a, s)
}

func (c *Calc) MinScalar(a *mesh.BlockArray, s float64) *mesh.BlockArray {
	return c.scalar(backend.Min, a, s)
}

func (c *Calc) MaxScalar(a *mesh.BlockArray, s float64) *mesh.BlockArray {
	return c.scalar(backend.Max, a, s)
}

func (c *Calc) Sqrt(a *mesh.BlockArray) *mesh.BlockArray { return c.scalar(backend.Sqrt, a, 0) }

func (c *Calc) Square(a *mesh.BlockArray) *mesh.BlockArray { return c.Mul(a, a) }

// Dot3 is ax*bx + ay*by + az*bz
func (c *Calc) Dot3(ax, ay, az, bx, by, bz *mesh.BlockArray) *mesh.BlockArray {
	return c.Add(c.Add(c.Mul(ax, bx), c.Mul(ay, by)), c.Mul(az, bz))
}
