package report

import "errors"

var (
	// ErrNothingToPlot indicates that no series had a positive, finite point.
	ErrNothingToPlot = errors.New("report: nothing to plot")

	// ErrClosed indicates a write to a finished stream writer.
	ErrClosed = errors.New("report: writer closed")
)
