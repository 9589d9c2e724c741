package terms

import "errors"

// Configuration faults. Every evaluator validates its inputs against these
// before numeric work; shape misuse inside the primitives themselves is a
// programming error and panics instead.
var (
	ErrDimension = errors.New("unsupported spatial dimension")
	ErrShape     = errors.New("field shape mismatch")
)
