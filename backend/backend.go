package backend

import (
	"errors"
	"fmt"
)

// ErrLength is returned when operand lengths disagree
var ErrLength = errors.New("operand length mismatch")

// Op selects an elementwise operation
type Op uint8

const (
	Add Op = iota
	Sub
	Mul
	Div
	Min
	Max
	Pow

	// Unary ops, valid only for ApplyScalar where the scalar is ignored
	Sqrt
	Abs
	Log10
)

var opNames = [...]string{"add", "sub", "mul", "div", "min", "max", "pow", "sqrt", "abs", "log10"}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", op)
}

func (op Op) Unary() bool { return op >= Sqrt }

// Backend evaluates array arithmetic. All inputs and outputs are host slices;
// implementations that run elsewhere copy across the boundary themselves.
// dst may alias a or b
type Backend interface {
	Name() string
	// Apply sets dst[i] = a[i] op b[i]
	Apply(op Op, dst, a, b []float64) error
	// ApplyScalar sets dst[i] = a[i] op s, or op(a[i]) for unary ops
	ApplyScalar(op Op, dst, a []float64, s float64) error
	Sum(x []float64) (float64, error)
	Dot(x, y []float64) (float64, error)
	Close() error
}

func checkLen(op Op, n int, xs ...[]float64) error {
	for _, x := range xs {
		if len(x) != n {
			return fmt.Errorf("%s: %w: %d != %d", op, ErrLength, len(x), n)
		}
	}
	return nil
}
