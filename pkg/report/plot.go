package report

import (
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/ja7ad/foamcheck/pkg/residual"
)

// PlotOptions sizes the static chart. Zero values select 15x12 inches.
type PlotOptions struct {
	Title  string
	Width  vg.Length
	Height vg.Length
}

func (o PlotOptions) withDefaults() PlotOptions {
	if o.Title == "" {
		o.Title = "Final Residual x Time"
	}
	if o.Width <= 0 {
		o.Width = 15 * vg.Inch
	}
	if o.Height <= 0 {
		o.Height = 12 * vg.Inch
	}
	return o
}

// ResidualXYs returns the plottable points of field i: records whose time
// parses and whose residual is observed, finite and positive.
func ResidualXYs(recs []residual.Record, i int) plotter.XYs {
	xys := make(plotter.XYs, 0, len(recs))
	for _, r := range recs {
		v := r.Get(i)
		if !v.Observed || !(v.Value > 0) || math.IsInf(v.Value, 0) {
			continue
		}
		x, err := r.TimeValue()
		if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		xys = append(xys, plotter.XY{X: x, Y: v.Value})
	}
	return xys
}

// Plot builds a semilog chart with one line per field.
func Plot(fields []string, recs []residual.Record, o PlotOptions) (*plot.Plot, error) {
	o = o.withDefaults()

	p := plot.New()
	p.Title.Text = o.Title
	p.X.Label.Text = "Time"
	p.Y.Label.Text = "Final residual (log scale)"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	drawn := 0
	ymin, ymax := math.Inf(1), math.Inf(-1)
	for i, f := range fields {
		xys := ResidualXYs(recs, i)
		if len(xys) == 0 {
			continue
		}
		for _, xy := range xys {
			ymin = math.Min(ymin, xy.Y)
			ymax = math.Max(ymax, xy.Y)
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		l.Color = plotutil.Color(i)
		p.Add(l)
		p.Legend.Add(f, l)
		drawn++
	}
	if drawn == 0 {
		return nil, ErrNothingToPlot
	}
	// A flat range would be widened around zero, which a log axis rejects.
	if ymin == ymax {
		p.Y.Min, p.Y.Max = ymin/10, ymax*10
	}
	return p, nil
}

// SavePlot renders the chart to path; the extension selects the format
// (.png, .svg, .pdf, .jpg, ...).
func SavePlot(path string, fields []string, recs []residual.Record, o PlotOptions) error {
	p, err := Plot(fields, recs, o)
	if err != nil {
		return err
	}
	o = o.withDefaults()
	return p.Save(o.Width, o.Height, path)
}
