package occa

import (
	"fmt"
	"github.com/notargets/amrkit/backend"
	"github.com/notargets/gocca"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"sync"
	"unsafe"
)

// Device runs backend operations on an OCCA device. Kernels are built on
// first use and cached for the life of the Device
type Device struct {
	device  *gocca.OCCADevice
	kernels map[string]*gocca.OCCAKernel
	mu      sync.Mutex
	log     *zap.Logger
}

var _ backend.Backend = (*Device)(nil)

// NewDevice opens a device from OCCA JSON properties, e.g. {"mode": "Serial"}
func NewDevice(props string, log *zap.Logger) (*Device, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dev, err := gocca.NewDevice(props)
	if err != nil {
		return nil, fmt.Errorf("occa: opening device %s: %w", props, err)
	}
	return &Device{
		device:  dev,
		kernels: make(map[string]*gocca.OCCAKernel),
		log:     log,
	}, nil
}

func (d *Device) Name() string { return "occa/" + d.device.Mode() }

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for name, k := range d.kernels {
		k.Free()
		delete(d.kernels, name)
	}
	if d.device != nil {
		d.device.Free()
		d.device = nil
	}
	return nil
}

// kernel returns the cached kernel, building it from src on first use
func (d *Device) kernel(name string, src func() (string, error)) (*gocca.OCCAKernel, error) {
	if k, ok := d.kernels[name]; ok {
		return k, nil
	}
	source, err := src()
	if err != nil {
		return nil, err
	}

	var k *gocca.OCCAKernel
	if d.device.Mode() == "OpenMP" {
		// OCCA does not pass -O3 to OpenMP builds by default
		props := gocca.JsonParse(`{"compiler_flags": "-O3"}`)
		defer props.Free()
		k, err = d.device.BuildKernelFromString(source, name, props)
	} else {
		k, err = d.device.BuildKernelFromString(source, name, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build kernel %s: %w", name, err)
	}
	if k == nil {
		return nil, fmt.Errorf("kernel build returned nil for %s", name)
	}
	d.log.Debug("built kernel", zap.String("kernel", name), zap.String("mode", d.device.Mode()))
	d.kernels[name] = k
	return k, nil
}

func (d *Device) upload(x []float64) *gocca.OCCAMemory {
	return d.device.Malloc(int64(len(x)*8), unsafe.Pointer(&x[0]), nil)
}

func (d *Device) alloc(n int) *gocca.OCCAMemory {
	return d.device.Malloc(int64(n*8), nil, nil)
}

func (d *Device) Apply(op backend.Op, dst, a, b []float64) error {
	if len(a) != len(dst) || len(b) != len(dst) {
		return fmt.Errorf("%s: %w", op, backend.ErrLength)
	}
	if len(dst) == 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	k, err := d.kernel(binaryKernelName(op), func() (string, error) { return binarySource(op) })
	if err != nil {
		return err
	}
	aMem, bMem, out := d.upload(a), d.upload(b), d.alloc(len(dst))
	defer aMem.Free()
	defer bMem.Free()
	defer out.Free()
	if err := k.RunWithArgs(float64(len(dst)), out, aMem, bMem); err != nil {
		return fmt.Errorf("kernel execution failed: %w", err)
	}
	d.device.Finish()
	out.CopyTo(unsafe.Pointer(&dst[0]), int64(len(dst)*8))
	return nil
}

func (d *Device) ApplyScalar(op backend.Op, dst, a []float64, s float64) error {
	if len(a) != len(dst) {
		return fmt.Errorf("%s: %w", op, backend.ErrLength)
	}
	if len(dst) == 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	k, err := d.kernel(scalarKernelName(op), func() (string, error) { return scalarSource(op) })
	if err != nil {
		return err
	}
	aMem, out := d.upload(a), d.alloc(len(dst))
	defer aMem.Free()
	defer out.Free()
	if err := k.RunWithArgs(float64(len(dst)), out, aMem, s); err != nil {
		return fmt.Errorf("kernel execution failed: %w", err)
	}
	d.device.Finish()
	out.CopyTo(unsafe.Pointer(&dst[0]), int64(len(dst)*8))
	return nil
}

func (d *Device) Sum(x []float64) (float64, error) {
	return d.reduce(sumKernelName, func() (string, error) { return sumSource(), nil }, x, x)
}

func (d *Device) Dot(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("dot: %w", backend.ErrLength)
	}
	return d.reduce(dotKernelName, func() (string, error) { return dotSource(), nil }, x, y)
}

// reduce computes per-chunk partials on the device and folds them on the host
func (d *Device) reduce(name string, src func() (string, error), x, y []float64) (float64, error) {
	if len(x) == 0 {
		return 0, nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	k, err := d.kernel(name, src)
	if err != nil {
		return 0, err
	}
	nc := numChunks(len(x))
	xMem, yMem, out := d.upload(x), d.upload(y), d.alloc(nc)
	defer xMem.Free()
	defer yMem.Free()
	defer out.Free()
	if err := k.RunWithArgs(float64(len(x)), out, xMem, yMem); err != nil {
		return 0, fmt.Errorf("kernel execution failed: %w", err)
	}
	d.device.Finish()
	partial := make([]float64, nc)
	out.CopyTo(unsafe.Pointer(&partial[0]), int64(nc*8))
	return floats.Sum(partial), nil
}
