package results

import (
	"bytes"
	"fmt"
	"github.com/DataDog/zstd"
	"gopkg.in/yaml.v3"
	"io"
	"os"
	"strings"
)

const zstdLevel = 3

// WriteYAML encodes r as YAML
func (r *Results) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

// ReadYAML decodes results, rejecting unknown keys and other schema versions
func ReadYAML(rd io.Reader) (*Results, error) {
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)
	var r Results
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("decoding results: %w", err)
	}
	if err := r.check(); err != nil {
		return nil, err
	}
	r.ensure()
	return &r, nil
}

// Save writes r in the format named by the extension of path: .yaml/.yml,
// .yaml.zst for zstd-compressed YAML, or .h5/.hdf5
func (r *Results) Save(path string) error {
	switch format(path) {
	case "yaml":
		var buf bytes.Buffer
		if err := r.WriteYAML(&buf); err != nil {
			return err
		}
		return os.WriteFile(path, buf.Bytes(), 0o644)
	case "zst":
		var buf bytes.Buffer
		if err := r.WriteYAML(&buf); err != nil {
			return err
		}
		z, err := zstd.CompressLevel(nil, buf.Bytes(), zstdLevel)
		if err != nil {
			return fmt.Errorf("compressing %s: %w", path, err)
		}
		return os.WriteFile(path, z, 0o644)
	case "hdf5":
		return r.SaveHDF5(path)
	}
	return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Load reads results written by Save
func Load(path string) (*Results, error) {
	switch format(path) {
	case "yaml":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return ReadYAML(bytes.NewReader(b))
	case "zst":
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		raw, err := zstd.Decompress(nil, b)
		if err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", path, err)
		}
		return ReadYAML(bytes.NewReader(raw))
	case "hdf5":
		return LoadHDF5(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

func format(path string) string {
	p := strings.ToLower(path)
	switch {
	case strings.HasSuffix(p, ".yaml.zst"), strings.HasSuffix(p, ".yml.zst"):
		return "zst"
	case strings.HasSuffix(p, ".yaml"), strings.HasSuffix(p, ".yml"):
		return "yaml"
	case strings.HasSuffix(p, ".h5"), strings.HasSuffix(p, ".hdf5"):
		return "hdf5"
	}
	return ""
}
