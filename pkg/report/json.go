package report

import (
	"encoding/json"
	"io"
	"math"

	"github.com/ja7ad/foamcheck/pkg/residual"
)

type jsonRecord struct {
	Time      string              `json:"time"`
	Residuals map[string]*float64 `json:"residuals"`
}

// JSONWriter streams records as a JSON array, one object per record.
// Unobserved residuals are null.
type JSONWriter struct {
	w      io.Writer
	fields []string
	n      int
	closed bool
}

// NewJSONWriter opens the array.
func NewJSONWriter(w io.Writer, fields []string) (*JSONWriter, error) {
	if _, err := io.WriteString(w, "[\n"); err != nil {
		return nil, err
	}
	return &JSONWriter{w: w, fields: fields}, nil
}

// Write appends one record.
func (j *JSONWriter) Write(rec residual.Record) error {
	if j.closed {
		return ErrClosed
	}
	out := jsonRecord{Time: rec.Time, Residuals: make(map[string]*float64, len(j.fields))}
	for i, f := range j.fields {
		v := rec.Get(i)
		if v.Observed && !math.IsNaN(v.Value) {
			val := v.Value
			out.Residuals[f] = &val
		} else {
			out.Residuals[f] = nil
		}
	}

	b, err := json.MarshalIndent(out, "  ", "  ")
	if err != nil {
		return err
	}
	if j.n > 0 {
		if _, err := io.WriteString(j.w, ",\n"); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(j.w, "  "); err != nil {
		return err
	}
	if _, err := j.w.Write(b); err != nil {
		return err
	}
	j.n++
	return nil
}

// Close terminates the array. It does not close the underlying writer.
func (j *JSONWriter) Close() error {
	if j.closed {
		return nil
	}
	j.closed = true
	_, err := io.WriteString(j.w, "\n]\n")
	return err
}

// WriteJSON writes all records as one array.
func WriteJSON(w io.Writer, fields []string, recs []residual.Record) error {
	jw, err := NewJSONWriter(w, fields)
	if err != nil {
		return err
	}
	for _, r := range recs {
		if err := jw.Write(r); err != nil {
			return err
		}
	}
	return jw.Close()
}
