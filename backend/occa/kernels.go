package occa

import (
	"fmt"
	"github.com/notargets/amrkit/backend"
	"strings"
)

// chunk is the @inner width; each @outer iteration owns one chunk of cells
const chunk = 256

const preamble = "#define CHUNK %d\n"

// Elementwise expressions over a[i], b[i] and the scalar s
var binaryExpr = map[backend.Op]string{
	backend.Add: "a[i] + b[i]",
	backend.Sub: "a[i] - b[i]",
	backend.Mul: "a[i] * b[i]",
	backend.Div: "a[i] / b[i]",
	backend.Min: "fmin(a[i], b[i])",
	backend.Max: "fmax(a[i], b[i])",
	backend.Pow: "pow(a[i], b[i])",
}

var scalarExpr = map[backend.Op]string{
	backend.Add:   "a[i] + s",
	backend.Sub:   "a[i] - s",
	backend.Mul:   "a[i] * s",
	backend.Div:   "a[i] / s",
	backend.Min:   "fmin(a[i], s)",
	backend.Max:   "fmax(a[i], s)",
	backend.Pow:   "pow(a[i], s)",
	backend.Sqrt:  "sqrt(a[i])",
	backend.Abs:   "fabs(a[i])",
	backend.Log10: "log10(a[i])",
}

func binaryKernelName(op backend.Op) string { return "amr_" + op.String() }

func scalarKernelName(op backend.Op) string { return "amr_" + op.String() + "_s" }

const (
	sumKernelName = "amr_partial_sum"
	dotKernelName = "amr_partial_dot"
)

// The cell count travels as a double scalar; counts stay far below 2^53
const elementwiseTemplate = `
@kernel void %s(const double n, double *dst, const double *a, %s) {
	for (long c = 0; c < ((long) n + CHUNK - 1) / CHUNK; ++c; @outer) {
		for (long t = 0; t < CHUNK; ++t; @inner) {
			const long i = c * CHUNK + t;
			if (i < (long) n) {
				dst[i] = %s;
			}
		}
	}
}
`

const reduceTemplate = `
@kernel void %s(const double n, double *partial, const double *a, const double *b) {
	for (long c = 0; c < ((long) n + CHUNK - 1) / CHUNK; ++c; @outer) {
		for (long t = 0; t < 1; ++t; @inner) {
			double acc = 0.0;
			for (long m = 0; m < CHUNK; ++m) {
				const long i = c * CHUNK + m;
				if (i < (long) n) {
					acc += %s;
				}
			}
			partial[c] = acc;
		}
	}
}
`

func binarySource(op backend.Op) (string, error) {
	expr, ok := binaryExpr[op]
	if !ok {
		return "", fmt.Errorf("occa: %s is not a binary op", op)
	}
	return kernelSource(elementwiseTemplate, binaryKernelName(op), "const double *b", expr), nil
}

func scalarSource(op backend.Op) (string, error) {
	expr, ok := scalarExpr[op]
	if !ok {
		return "", fmt.Errorf("occa: unknown op %s", op)
	}
	return kernelSource(elementwiseTemplate, scalarKernelName(op), "const double s", expr), nil
}

func sumSource() string { return kernelSource(reduceTemplate, sumKernelName, "a[i]") }

func dotSource() string { return kernelSource(reduceTemplate, dotKernelName, "a[i] * b[i]") }

func kernelSource(template string, args ...any) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, preamble, chunk)
	fmt.Fprintf(&sb, template, args...)
	return sb.String()
}

func numChunks(n int) int { return (n + chunk - 1) / chunk }
