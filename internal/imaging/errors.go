package imaging

import "github.com/pkg/errors"

// Error kinds surfaced by the engine. Every error returned by the core
// packages wraps exactly one of these, so callers can branch with errors.Is.
var (
	// ErrOutOfRange reports a direct pixel, channel or region access outside
	// the buffer. Filtering and morphology resolve such accesses internally
	// and never return it.
	ErrOutOfRange = errors.New("out of range")

	// ErrArityMismatch reports an algorithm called with the wrong number of inputs.
	ErrArityMismatch = errors.New("arity mismatch")

	// ErrDimensionMismatch reports inputs whose shapes cannot be aligned.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrConstruction reports a malformed kernel, structuring element,
	// region or buffer, rejected before any pixel work begins.
	ErrConstruction = errors.New("construction error")

	// ErrCodec marks failures coming from a file codec collaborator.
	ErrCodec = errors.New("codec error")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
