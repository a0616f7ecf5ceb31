package athena

import (
	"fmt"
	"github.com/robert-malhotra/go-hdf5/hdf5"
)

// source is the part of an HDF5 file the loader reads. Attribute reads
// convert whatever integer or float width is stored
type source interface {
	Strings(attr string) ([]string, error)
	Float(attr string) (float64, error)
	Ints(attr string) ([]int64, error)
	FloatDataset(name string) ([]float64, []uint64, error)
	IntDataset(name string) ([]int64, []uint64, error)
	Close() error
}

type h5Source struct {
	f *hdf5.File
}

func openH5(path string) (*h5Source, error) {
	f, err := hdf5.Open(path)
	if err != nil {
		return nil, err
	}
	return &h5Source{f: f}, nil
}

func (s *h5Source) attr(name string) (*hdf5.Attribute, error) {
	a := s.f.Root().Attr(name)
	if a == nil {
		return nil, fmt.Errorf("attribute %q: %w", name, hdf5.ErrNotFound)
	}
	return a, nil
}

func (s *h5Source) Strings(name string) ([]string, error) {
	a, err := s.attr(name)
	if err != nil {
		return nil, err
	}
	return a.ReadString()
}

func (s *h5Source) Float(name string) (float64, error) {
	a, err := s.attr(name)
	if err != nil {
		return 0, err
	}
	return a.ReadScalarFloat64()
}

func (s *h5Source) Ints(name string) ([]int64, error) {
	a, err := s.attr(name)
	if err != nil {
		return nil, err
	}
	return a.ReadInt64()
}

func (s *h5Source) FloatDataset(name string) ([]float64, []uint64, error) {
	ds, err := s.f.OpenDataset(name)
	if err != nil {
		return nil, nil, err
	}
	data, err := ds.ReadFloat64()
	return data, ds.Shape(), err
}

func (s *h5Source) IntDataset(name string) ([]int64, []uint64, error) {
	ds, err := s.f.OpenDataset(name)
	if err != nil {
		return nil, nil, err
	}
	data, err := ds.ReadInt64()
	return data, ds.Shape(), err
}

func (s *h5Source) Close() error { return s.f.Close() }
