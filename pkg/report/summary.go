package report

import (
	"math"

	"github.com/ja7ad/foamcheck/pkg/residual"
	"github.com/ja7ad/foamcheck/pkg/util"
)

// FieldSummary aggregates one residual column.
type FieldSummary struct {
	Field    string
	Observed int
	Min      float64
	Max      float64
	Last     float64
	LastTime string
}

// Summarize computes per-field extremes over the records where the field was
// observed with a numeric value.
func Summarize(fields []string, recs []residual.Record) []FieldSummary {
	out := make([]FieldSummary, len(fields))
	for i, f := range fields {
		vals := make([]float64, 0, len(recs))
		s := FieldSummary{Field: f, Last: math.NaN()}
		for _, r := range recs {
			v := r.Get(i)
			if !v.Observed || math.IsNaN(v.Value) {
				continue
			}
			vals = append(vals, v.Value)
			s.Last = v.Value
			s.LastTime = r.Time
		}
		s.Observed = len(vals)
		if lo, hi, ok := util.MinMax(vals); ok {
			s.Min, s.Max = lo, hi
		} else {
			s.Min, s.Max = math.NaN(), math.NaN()
		}
		out[i] = s
	}
	return out
}
