package report

import (
	"encoding/csv"
	"io"

	"github.com/ja7ad/foamcheck/pkg/residual"
)

// DefaultComma is the column delimiter of residual tables.
const DefaultComma = ';'

// CSVWriter streams residual records as delimited rows. The header is
// "Time" followed by the field names; unobserved residuals are empty cells.
type CSVWriter struct {
	w      *csv.Writer
	fields []string
	row    []string
}

// NewCSVWriter writes the header and returns a writer for the rows.
func NewCSVWriter(w io.Writer, fields []string, comma rune) (*CSVWriter, error) {
	if comma == 0 {
		comma = DefaultComma
	}
	cw := csv.NewWriter(w)
	cw.Comma = comma

	header := append([]string{"Time"}, fields...)
	if err := cw.Write(header); err != nil {
		return nil, err
	}
	return &CSVWriter{w: cw, fields: fields, row: make([]string, len(fields)+1)}, nil
}

// Write appends one record.
func (c *CSVWriter) Write(rec residual.Record) error {
	c.row[0] = rec.Time
	for i := range c.fields {
		v := rec.Get(i)
		if v.Observed {
			c.row[i+1] = v.Text
		} else {
			c.row[i+1] = ""
		}
	}
	return c.w.Write(c.row)
}

// Flush flushes buffered rows and reports any write error.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// WriteCSV writes all records with a header.
func WriteCSV(w io.Writer, fields []string, recs []residual.Record, comma rune) error {
	cw, err := NewCSVWriter(w, fields, comma)
	if err != nil {
		return err
	}
	for _, r := range recs {
		if err := cw.Write(r); err != nil {
			return err
		}
	}
	return cw.Flush()
}
