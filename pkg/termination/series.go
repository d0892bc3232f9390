package termination

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Row is one sample of the monitored channel.
type Row struct {
	Time  float64
	Value float64
}

// ReadOptions describes the whitespace separated table layout.
//   - SkipRows: physical lines dropped before parsing (header block).
//   - TimeColumn, ValueColumn: zero-based column positions.
//   - Comment: everything from this byte to end of line is ignored.
type ReadOptions struct {
	SkipRows    int
	TimeColumn  int
	ValueColumn int
	Comment     byte
}

// DefaultReadOptions matches postProcessing output: two header lines,
// time in column 0, channel in column 1, '#' comments.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{SkipRows: 2, TimeColumn: 0, ValueColumn: 1, Comment: '#'}
}

func (o ReadOptions) validate() error {
	if o.SkipRows < 0 || o.TimeColumn < 0 || o.ValueColumn < 0 {
		return fmt.Errorf("%w: skip=%d time=%d value=%d", ErrBadOptions, o.SkipRows, o.TimeColumn, o.ValueColumn)
	}
	return nil
}

// ReadSeries parses the table in r. Blank and comment-only lines are skipped;
// columns beyond the two selected ones are ignored. The first bad row aborts
// the read and no rows are returned.
func ReadSeries(r io.Reader, opts ReadOptions) ([]Row, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	need := max(opts.TimeColumn, opts.ValueColumn) + 1

	var (
		rows []Row
		n    int
		sc   = bufio.NewScanner(r)
	)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		n++
		if n <= opts.SkipRows {
			continue
		}
		line := sc.Bytes()
		if opts.Comment != 0 {
			if i := bytes.IndexByte(line, opts.Comment); i >= 0 {
				line = line[:i]
			}
		}
		fields := bytes.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < need {
			return nil, fmt.Errorf("%w: line %d: %d columns, need %d", ErrMalformedRow, n, len(fields), need)
		}

		t, err := parseCell(fields, opts.TimeColumn, n)
		if err != nil {
			return nil, err
		}
		v, err := parseCell(fields, opts.ValueColumn, n)
		if err != nil {
			return nil, err
		}
		rows = append(rows, Row{Time: t, Value: v})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputUnavailable, err)
	}
	return rows, nil
}

func parseCell(fields [][]byte, col, line int) (float64, error) {
	v, err := strconv.ParseFloat(string(fields[col]), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: line %d column %d: %q is not a number", ErrMalformedRow, line, col, fields[col])
	}
	return v, nil
}

// ReadSeriesFile opens path and runs ReadSeries over it.
func ReadSeriesFile(path string, opts ReadOptions) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInputUnavailable, path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	rows, err := ReadSeries(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}
