package residual

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ja7ad/foamcheck/pkg/types"
)

// accumulator is the in-progress record. Field values are not cleared when a
// new time marker arrives: the last observed value carries forward until the
// solver reports that field again.
type accumulator struct {
	time    string
	hasTime bool
	values  []Residual
}

func (a *accumulator) complete() bool {
	if !a.hasTime {
		return false
	}
	for _, v := range a.values {
		if !v.Observed {
			return false
		}
	}
	return true
}

func (a *accumulator) snapshot() Record {
	return Record{Time: a.time, Residuals: append([]Residual(nil), a.values...)}
}

// Extractor reads a solver log in fixed-size chunks and yields one Record per
// completed timestep. It is not safe for concurrent use; run one extractor per
// log.
//
//	ex := residual.NewExtractor(f, residual.Config{})
//	for ex.Scan() {
//		rec := ex.Record()
//		...
//	}
//	if err := ex.Err(); err != nil { ... }
type Extractor struct {
	r     io.Reader
	cfg   Config
	index map[string]int
	buf   []byte
	carry []byte
	acc   accumulator
	queue []Record
	rec   Record
	stats Stats
	err   error
	done  bool
}

// NewExtractor prepares an extractor over r. Nothing is read until Scan.
func NewExtractor(r io.Reader, cfg Config) *Extractor {
	cfg = cfg.withDefaults()
	index := make(map[string]int, len(cfg.Fields))
	for i, f := range cfg.Fields {
		if _, dup := index[f]; !dup {
			index[f] = i
		}
	}
	return &Extractor{
		r:     r,
		cfg:   cfg,
		index: index,
		buf:   make([]byte, cfg.ChunkSize.Int()),
		acc:   accumulator{values: make([]Residual, len(cfg.Fields))},
	}
}

// Fields returns the tracked field names in column order.
func (e *Extractor) Fields() []string { return append([]string(nil), e.cfg.Fields...) }

// Stats returns counters for the input consumed so far.
func (e *Extractor) Stats() Stats { return e.stats }

// Record returns the record produced by the last successful Scan.
func (e *Extractor) Record() Record { return e.rec }

// Err returns the first read error, if any. io.EOF is not an error.
func (e *Extractor) Err() error { return e.err }

// Scan advances to the next completed record. It returns false when the input
// is exhausted or a read error occurred.
func (e *Extractor) Scan() bool {
	for len(e.queue) == 0 {
		if e.done {
			return false
		}
		e.fill()
	}
	e.rec = e.queue[0]
	e.queue = e.queue[1:]
	e.stats.Records++
	return true
}

// fill performs one read and feeds the bytes through the line splitter.
func (e *Extractor) fill() {
	n, err := e.r.Read(e.buf)
	if n > 0 {
		e.stats.Reads++
		e.stats.BytesRead += types.ToBytes(uint64(n))
		e.consume(e.buf[:n])
	}

	switch {
	case err == nil:
		return
	case errors.Is(err, io.EOF):
		e.finish()
	default:
		e.err = fmt.Errorf("%w: %w", ErrInputUnavailable, err)
		e.queue = nil
		e.done = true
	}
}

// consume splits chunk on '\n'. An unterminated tail is kept in the carry
// buffer and completed by the next chunk.
func (e *Extractor) consume(chunk []byte) {
	for {
		i := bytes.IndexByte(chunk, '\n')
		if i < 0 {
			e.carry = append(e.carry, chunk...)
			return
		}
		if len(e.carry) > 0 {
			e.carry = append(e.carry, chunk[:i]...)
			e.line(e.carry)
			e.carry = e.carry[:0]
		} else {
			e.line(chunk[:i])
		}
		chunk = chunk[i+1:]
	}
}

// finish flushes the carry buffer as a final line and emits the pending record.
func (e *Extractor) finish() {
	if len(e.carry) > 0 {
		e.line(e.carry)
		e.carry = e.carry[:0]
	}
	if e.acc.hasTime {
		e.queue = append(e.queue, e.acc.snapshot())
	}
	e.done = true
}

func (e *Extractor) line(b []byte) {
	e.stats.Lines++
	b = bytes.TrimSuffix(b, []byte{'\r'})

	if m := e.cfg.Patterns.Time.FindSubmatch(b); m != nil {
		e.stats.TimeMarkers++
		switch {
		case e.acc.complete():
			e.queue = append(e.queue, e.acc.snapshot())
		case e.acc.hasTime:
			e.stats.DroppedSteps++
		}
		e.acc.time = string(m[1])
		e.acc.hasTime = true
	}

	if m := e.cfg.Patterns.Solver.FindSubmatch(b); m != nil {
		e.stats.SolverLines++
		if i, ok := e.index[string(m[1])]; ok {
			e.acc.values[i] = newResidual(string(m[2]))
		}
	}
}

// Extract reads r to the end and returns every record. On a read error no
// records are returned.
func Extract(r io.Reader, cfg Config) ([]Record, error) {
	ex := NewExtractor(r, cfg)
	var out []Record
	for ex.Scan() {
		out = append(out, ex.Record())
	}
	if err := ex.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ExtractFile opens path and runs Extract over it.
func ExtractFile(path string, cfg Config) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInputUnavailable, path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	recs, err := Extract(f, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}
