package util

import (
	"math"
	"strconv"
	"time"
)

// FmtFloat formats v with the shortest representation that round-trips.
func FmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// FmtSeconds renders a duration the way the CLI reports elapsed time.
func FmtSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 2, 64)
}

// MinMax returns the extremes of vals, skipping NaN. ok is false when no
// value remains.
func MinMax(vals []float64) (lo, hi float64, ok bool) {
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, ok
}

// EMA is an exponential moving average. The first sample seeds it; NaN
// samples are ignored and return the current average.
type EMA struct {
	alpha, prev float64
	ok          bool
}

// NewEMA returns an average with smoothing factor alpha in (0, 1].
func NewEMA(alpha float64) *EMA { return &EMA{alpha: alpha} }

// Next folds v in and returns the updated average.
func (e *EMA) Next(v float64) float64 {
	if math.IsNaN(v) {
		if !e.ok {
			return math.NaN()
		}
		return e.prev
	}
	if !e.ok {
		e.prev, e.ok = v, true
		return v
	}
	e.prev = e.alpha*v + (1-e.alpha)*e.prev
	return e.prev
}
