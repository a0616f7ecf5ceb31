package backend

import (
	"fmt"
	"gonum.org/v1/gonum/floats"
	"math"
)

// Host evaluates on the CPU with gonum's floats kernels
type Host struct{}

var _ Backend = Host{}

func (Host) Name() string { return "host" }

func (Host) Close() error { return nil }

func (Host) Apply(op Op, dst, a, b []float64) error {
	if err := checkLen(op, len(dst), a, b); err != nil {
		return err
	}
	switch op {
	case Add:
		floats.AddTo(dst, a, b)
	case Sub:
		floats.SubTo(dst, a, b)
	case Mul:
		floats.MulTo(dst, a, b)
	case Div:
		floats.DivTo(dst, a, b)
	case Min:
		for i := range dst {
			dst[i] = math.Min(a[i], b[i])
		}
	case Max:
		for i := range dst {
			dst[i] = math.Max(a[i], b[i])
		}
	case Pow:
		for i := range dst {
			dst[i] = math.Pow(a[i], b[i])
		}
	default:
		return fmt.Errorf("host: %s is not a binary op", op)
	}
	return nil
}

func (Host) ApplyScalar(op Op, dst, a []float64, s float64) error {
	if err := checkLen(op, len(dst), a); err != nil {
		return err
	}
	switch op {
	case Add:
		copy(dst, a)
		floats.AddConst(s, dst)
	case Sub:
		copy(dst, a)
		floats.AddConst(-s, dst)
	case Mul:
		floats.ScaleTo(dst, s, a)
	case Div:
		for i := range dst {
			dst[i] = a[i] / s
		}
	case Min:
		for i := range dst {
			dst[i] = math.Min(a[i], s)
		}
	case Max:
		for i := range dst {
			dst[i] = math.Max(a[i], s)
		}
	case Pow:
		for i := range dst {
			dst[i] = math.Pow(a[i], s)
		}
	case Sqrt:
		for i := range dst {
			dst[i] = math.Sqrt(a[i])
		}
	case Abs:
		for i := range dst {
			dst[i] = math.Abs(a[i])
		}
	case Log10:
		for i := range dst {
			dst[i] = math.Log10(a[i])
		}
	default:
		return fmt.Errorf("host: unknown op %s", op)
	}
	return nil
}

func (Host) Sum(x []float64) (float64, error) { return floats.Sum(x), nil }

func (Host) Dot(x, y []float64) (float64, error) {
	if err := checkLen(Mul, len(x), y); err != nil {
		return 0, err
	}
	return floats.Dot(x, y), nil
}
