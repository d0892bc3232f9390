package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ja7ad/foamcheck/pkg/residual"
	"github.com/ja7ad/foamcheck/pkg/util"
)

// TableWriter prints records as an aligned text table.
type TableWriter struct {
	tw     *tabwriter.Writer
	fields []string
}

// NewTableWriter prints the header.
func NewTableWriter(w io.Writer, fields []string) *TableWriter {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	head := append([]string{"TIME"}, fields...)
	rule := make([]string, len(head))
	for i, h := range head {
		rule[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(head, "\t"))
	fmt.Fprintln(tw, strings.Join(rule, "\t"))
	return &TableWriter{tw: tw, fields: fields}
}

// Write prints one record. Unobserved residuals print as "-".
func (t *TableWriter) Write(rec residual.Record) error {
	cells := make([]string, 0, len(t.fields)+1)
	cells = append(cells, rec.Time)
	for i := range t.fields {
		v := rec.Get(i)
		if v.Observed {
			cells = append(cells, v.Text)
		} else {
			cells = append(cells, "-")
		}
	}
	_, err := fmt.Fprintln(t.tw, strings.Join(cells, "\t"))
	return err
}

// Flush aligns and writes buffered rows.
func (t *TableWriter) Flush() error { return t.tw.Flush() }

// WriteSummary prints the per-field summary block.
func WriteSummary(w io.Writer, sums []FieldSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tSAMPLES\tMIN\tMAX\tLAST\tAT")
	fmt.Fprintln(tw, "-----\t-------\t---\t---\t----\t--")
	for _, s := range sums {
		if s.Observed == 0 {
			fmt.Fprintf(tw, "%s\t0\t-\t-\t-\t-\n", s.Field)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			s.Field, s.Observed, util.FmtFloat(s.Min), util.FmtFloat(s.Max), util.FmtFloat(s.Last), s.LastTime)
	}
	return tw.Flush()
}
