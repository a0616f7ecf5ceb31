package mesh

import "errors"

var (
	// ErrNoSuchField is returned when a name is not a loaded raw field,
	// coordinate or registered derived field
	ErrNoSuchField = errors.New("no such field")

	// ErrShapeMismatch is returned when block arrays disagree in layout
	ErrShapeMismatch = errors.New("block array shape mismatch")

	// ErrInvalidGeometry is returned for non-positive cell counts, empty
	// domain extents or negative refinement levels
	ErrInvalidGeometry = errors.New("invalid mesh geometry")
)
