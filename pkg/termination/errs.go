package termination

import "errors"

var (
	// ErrInputUnavailable indicates that the series file could not be opened or read.
	ErrInputUnavailable = errors.New("termination: input unavailable")

	// ErrMalformedRow indicates a data row with a missing or non-numeric column.
	ErrMalformedRow = errors.New("termination: malformed row")

	// ErrBadConfig indicates non-finite thresholds, a negative spread or a
	// negative window.
	ErrBadConfig = errors.New("termination: bad config")

	// ErrBadOptions indicates negative row/column settings.
	ErrBadOptions = errors.New("termination: bad read options")
)
