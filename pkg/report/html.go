package report

import (
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/ja7ad/foamcheck/pkg/residual"
	"github.com/ja7ad/foamcheck/pkg/termination"
	"github.com/ja7ad/foamcheck/pkg/util"
)

// echarts renders "-" as a gap in a line series.
const gap = "-"

func legendOpts() opts.Legend {
	return opts.Legend{
		Type:   "scroll",
		Orient: "vertical",
		Right:  "10",
		Top:    "20",
		Bottom: "20",
	}
}

// ResidualChart builds an interactive line chart of the final residuals,
// time on the X axis and a log-scaled Y axis. Unobserved or non-positive
// residuals are left as gaps.
func ResidualChart(title string, fields []string, recs []residual.Record) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "1200px",
			Height:    "700px",
			Theme:     types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: "Final residual x Time",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(legendOpts()),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time", SplitNumber: 20}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Final residual", Type: "log"}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
	)

	times := make([]string, len(recs))
	for i, r := range recs {
		times[i] = r.Time
	}
	line.SetXAxis(times)

	for fi, f := range fields {
		items := make([]opts.LineData, len(recs))
		for i, r := range recs {
			v := r.Get(fi)
			if v.Observed && v.Value > 0 && !math.IsInf(v.Value, 0) {
				items[i] = opts.LineData{Value: v.Value}
			} else {
				items[i] = opts.LineData{Value: gap}
			}
		}
		line.AddSeries(f, items)
	}
	return line
}

// TrendAlpha is the smoothing factor of the dashed trend line in SeriesChart.
const TrendAlpha = 0.05

// SeriesChart plots the monitored channel and its moving average, with the
// level threshold and, when found, the stabilization time marked.
func SeriesChart(title string, rows []termination.Row, cfg termination.Config, res *termination.Result) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "1200px",
			Height:    "500px",
			Theme:     types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: "Monitored channel x Time",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(legendOpts()),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time", SplitNumber: 20}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Value", Scale: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
	)

	times := make([]string, len(rows))
	items := make([]opts.LineData, len(rows))
	trend := make([]opts.LineData, len(rows))
	ema := util.NewEMA(TrendAlpha)
	for i, r := range rows {
		times[i] = util.FmtFloat(r.Time)
		items[i] = lineValue(r.Value)
		trend[i] = lineValue(ema.Next(r.Value))
	}
	line.SetXAxis(times)

	marks := []charts.SeriesOpts{
		charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{
			Name:  "level",
			YAxis: cfg.LevelThreshold,
		}),
	}
	if res != nil {
		marks = append(marks, charts.WithMarkLineNameXAxisItemOpts(opts.MarkLineNameXAxisItem{
			Name:  "stable",
			XAxis: util.FmtFloat(res.Time),
		}))
	}
	line.AddSeries("value", items, marks...)
	line.AddSeries("trend", trend,
		charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed", Width: 1}),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)
	return line
}

// lineValue maps values JSON cannot carry onto a gap.
func lineValue(v float64) opts.LineData {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return opts.LineData{Value: gap}
	}
	return opts.LineData{Value: v}
}

// WriteHTML renders the given charts on one page.
func WriteHTML(w io.Writer, title string, cs ...components.Charter) error {
	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(cs...)
	return page.Render(w)
}
