package mesh

import (
	"fmt"
	"go.uber.org/zap"
	"strconv"
	"strings"
)

// Header holds the simulation's input-file metadata as section -> key -> value.
// A line "<name>" opens a section; "key = value" lines belong to the most
// recent section
type Header struct {
	sections map[string]*section
	order    []string
	log      *zap.Logger
}

type section struct {
	keys   []string
	values map[string]string
}

// ParseHeader parses header lines. Blank lines and '#' comments are skipped.
// A nil logger discards lookup diagnostics
func ParseHeader(lines []string, log *zap.Logger) (*Header, error) {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Header{
		sections: make(map[string]*section),
		log:      log,
	}
	current := ""
	for n, line := range lines {
		if c := strings.IndexByte(line, '#'); c >= 0 {
			line = line[:c]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "<") && strings.HasSuffix(line, ">") {
			current = strings.TrimSpace(line[1 : len(line)-1])
			if _, ok := h.sections[current]; !ok {
				h.sections[current] = &section{values: make(map[string]string)}
				h.order = append(h.order, current)
			}
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("header line %d: expected key = value, got %q", n+1, line)
		}
		if current == "" {
			return nil, fmt.Errorf("header line %d: key %q outside of any <section>", n+1, strings.TrimSpace(key))
		}
		s := h.sections[current]
		key = strings.TrimSpace(key)
		if _, seen := s.values[key]; !seen {
			s.keys = append(s.keys, key)
		}
		s.values[key] = strings.TrimSpace(value)
	}
	return h, nil
}

// Raw returns the unparsed value of section/key
func (h *Header) Raw(section, key string) (string, bool) {
	if h == nil {
		return "", false
	}
	s, ok := h.sections[section]
	if !ok {
		return "", false
	}
	v, ok := s.values[key]
	return v, ok
}

func (h *Header) HasSection(section string) bool {
	if h == nil {
		return false
	}
	_, ok := h.sections[section]
	return ok
}

// Sections lists section names in file order
func (h *Header) Sections() []string {
	if h == nil {
		return nil
	}
	return append([]string(nil), h.order...)
}

// Lines renders the header back to its text form
func (h *Header) Lines() []string {
	if h == nil {
		return nil
	}
	var lines []string
	for _, name := range h.order {
		lines = append(lines, "<"+name+">")
		s := h.sections[name]
		for _, key := range s.keys {
			lines = append(lines, key+" = "+s.values[key])
		}
	}
	return lines
}

// Scalar is the set of types a header value can be read as
type Scalar interface {
	int | float64 | bool | string
}

// Value is the result of a typed header lookup. Found is false when the
// default was substituted
type Value[T Scalar] struct {
	Value T
	Found bool
}

// Get reads section/key as T. A missing key, or one that does not parse as T,
// yields def with Found unset and a warning on the header's logger
func Get[T Scalar](h *Header, section, key string, def T) Value[T] {
	raw, ok := h.Raw(section, key)
	if !ok {
		h.logger().Warn("header key missing, using default",
			zap.String("section", section),
			zap.String("key", key),
			zap.Any("default", def))
		return Value[T]{Value: def}
	}
	v, err := parseScalar[T](raw)
	if err != nil {
		h.logger().Warn("header value unparsable, using default",
			zap.String("section", section),
			zap.String("key", key),
			zap.String("raw", raw),
			zap.Any("default", def),
			zap.Error(err))
		return Value[T]{Value: def}
	}
	return Value[T]{Value: v, Found: true}
}

func (h *Header) logger() *zap.Logger {
	if h == nil || h.log == nil {
		return zap.NewNop()
	}
	return h.log
}

func parseScalar[T Scalar](raw string) (T, error) {
	var out T
	var err error
	switch p := any(&out).(type) {
	case *int:
		*p, err = strconv.Atoi(raw)
	case *float64:
		*p, err = strconv.ParseFloat(raw, 64)
	case *bool:
		*p, err = strconv.ParseBool(raw)
	case *string:
		*p = raw
	}
	return out, err
}
