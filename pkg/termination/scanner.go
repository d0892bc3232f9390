package termination

import (
	"fmt"
	"iter"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Scanner finds the earliest row at which the channel has dropped below the
// level threshold and stayed within the spread threshold over the trailing
// window. A Scanner holds only configuration and may be shared.
type Scanner struct {
	cfg Config
}

// New creates a scanner. Fields > 0 in cfg override the defaults
// (level 0.5, spread 0.1, window 20000); a nil cfg uses the defaults.
func New(cfg *Config) *Scanner {
	merged := *_defaultConfig()
	if cfg == nil {
		return &Scanner{cfg: merged}
	}
	if cfg.LevelThreshold > 0 {
		merged.LevelThreshold = cfg.LevelThreshold
	}
	if cfg.SpreadThreshold > 0 {
		merged.SpreadThreshold = cfg.SpreadThreshold
	}
	if cfg.WindowSize > 0 {
		merged.WindowSize = cfg.WindowSize
	}
	return &Scanner{cfg: merged}
}

// NewExact creates a scanner that uses cfg as given, without merging
// defaults. Thresholds may be any finite value, so a level at or below zero
// suits channels that go negative; a zero window needs no history and a zero
// spread never qualifies.
func NewExact(cfg Config) (*Scanner, error) {
	if math.IsNaN(cfg.LevelThreshold) || math.IsInf(cfg.LevelThreshold, 0) {
		return nil, fmt.Errorf("%w: level threshold %v", ErrBadConfig, cfg.LevelThreshold)
	}
	if !(cfg.SpreadThreshold >= 0) || math.IsInf(cfg.SpreadThreshold, 0) {
		return nil, fmt.Errorf("%w: spread threshold %v", ErrBadConfig, cfg.SpreadThreshold)
	}
	if cfg.WindowSize < 0 {
		return nil, fmt.Errorf("%w: window size %d", ErrBadConfig, cfg.WindowSize)
	}
	return &Scanner{cfg: cfg}, nil
}

// Config returns the effective configuration.
func (s *Scanner) Config() Config { return s.cfg }

// Candidates yields, in index order, every row i >= WindowSize whose value is
// below the level threshold, together with the extremes of rows[i-W..i].
// Rows before WindowSize never qualify and NaN values inside the window are
// ignored. The sequence is lazy; stopping early stops the scan.
func (s *Scanner) Candidates(rows []Row) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		w := extremes{rows: rows}
		for i := s.cfg.WindowSize; i < len(rows); i++ {
			if !(rows[i].Value < s.cfg.LevelThreshold) {
				continue
			}
			w.slide(i-s.cfg.WindowSize, i)
			lo, hi := w.min(), w.max()
			spread := hi - lo
			c := Candidate{
				Index:  i,
				Time:   rows[i].Time,
				Value:  rows[i].Value,
				Min:    lo,
				Max:    hi,
				Spread: spread,
				Stable: spread < s.cfg.SpreadThreshold,
			}
			if !yield(c) {
				return
			}
		}
	}
}

// Find returns the first stable candidate. ok is false when no row crosses
// the level threshold, the series is not longer than the window, or no window
// is calm enough.
func (s *Scanner) Find(rows []Row) (res Result, ok bool) {
	for c := range s.Candidates(rows) {
		if c.Stable {
			return s.describe(rows, c), true
		}
	}
	return Result{}, false
}

func (s *Scanner) describe(rows []Row, c Candidate) Result {
	window := rows[c.Index-s.cfg.WindowSize : c.Index+1]
	vals := make([]float64, 0, len(window))
	for _, r := range window {
		if !math.IsNaN(r.Value) {
			vals = append(vals, r.Value)
		}
	}
	mean, std := stat.MeanStdDev(vals, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return Result{
		Index:  c.Index,
		Time:   c.Time,
		Spread: c.Spread,
		Min:    c.Min,
		Max:    c.Max,
		Mean:   mean,
		StdDev: std,
		Rows:   len(window),
	}
}

// FindStabilizationTime scans rows with exactly the given criteria. A
// negative window is treated as zero.
func FindStabilizationTime(rows []Row, level, spread float64, window int) (float64, bool) {
	s := &Scanner{cfg: Config{
		LevelThreshold:  level,
		SpreadThreshold: spread,
		WindowSize:      max(window, 0),
	}}
	res, ok := s.Find(rows)
	return res.Time, ok
}

// extremes tracks min and max of a sliding index window with monotonic
// deques. Both bounds only move forward, so a full scan is O(n). NaN rows
// are skipped; a candidate row is never NaN, so the deques are never empty
// when read.
type extremes struct {
	rows []Row
	next int
	maxq []int // values non-increasing
	minq []int // values non-decreasing
}

func (w *extremes) slide(lo, hi int) {
	for ; w.next <= hi; w.next++ {
		v := w.rows[w.next].Value
		if math.IsNaN(v) {
			continue
		}
		for len(w.maxq) > 0 && w.rows[w.maxq[len(w.maxq)-1]].Value <= v {
			w.maxq = w.maxq[:len(w.maxq)-1]
		}
		w.maxq = append(w.maxq, w.next)
		for len(w.minq) > 0 && w.rows[w.minq[len(w.minq)-1]].Value >= v {
			w.minq = w.minq[:len(w.minq)-1]
		}
		w.minq = append(w.minq, w.next)
	}
	for len(w.maxq) > 0 && w.maxq[0] < lo {
		w.maxq = w.maxq[1:]
	}
	for len(w.minq) > 0 && w.minq[0] < lo {
		w.minq = w.minq[1:]
	}
}

func (w *extremes) max() float64 { return w.rows[w.maxq[0]].Value }
func (w *extremes) min() float64 { return w.rows[w.minq[0]].Value }
