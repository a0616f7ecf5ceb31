package athena

import (
	"fmt"
)

// fakeSource serves attributes and datasets from memory
type fakeSource struct {
	strings  map[string][]string
	floats   map[string]float64
	ints     map[string][]int64
	fdata    map[string][]float64
	idata    map[string][]int64
	shapes   map[string][]uint64
	closed   bool
	requests []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		strings: map[string][]string{},
		floats:  map[string]float64{},
		ints:    map[string][]int64{},
		fdata:   map[string][]float64{},
		idata:   map[string][]int64{},
		shapes:  map[string][]uint64{},
	}
}

func (f *fakeSource) Strings(name string) ([]string, error) {
	v, ok := f.strings[name]
	if !ok {
		return nil, fmt.Errorf("attribute %q not found", name)
	}
	return v, nil
}

func (f *fakeSource) Float(name string) (float64, error) {
	v, ok := f.floats[name]
	if !ok {
		return 0, fmt.Errorf("attribute %q not found", name)
	}
	return v, nil
}

func (f *fakeSource) Ints(name string) ([]int64, error) {
	v, ok := f.ints[name]
	if !ok {
		return nil, fmt.Errorf("attribute %q not found", name)
	}
	return v, nil
}

func (f *fakeSource) FloatDataset(name string) ([]float64, []uint64, error) {
	f.requests = append(f.requests, name)
	v, ok := f.fdata[name]
	if !ok {
		return nil, nil, fmt.Errorf("dataset %q not found", name)
	}
	return v, f.shapes[name], nil
}

func (f *fakeSource) IntDataset(name string) ([]int64, []uint64, error) {
	v, ok := f.idata[name]
	if !ok {
		return nil, nil, fmt.Errorf("dataset %q not found", name)
	}
	return v, f.shapes[name], nil
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}
