package residual

import "errors"

var (
	// ErrInputUnavailable indicates that the log could not be opened or read.
	ErrInputUnavailable = errors.New("residual: input unavailable")

	// ErrBadPattern indicates that a matcher did not compile or has too few
	// capture groups (time needs one, solver needs two).
	ErrBadPattern = errors.New("residual: bad pattern")
)
