package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ja7ad/foamcheck/pkg/config"
	"github.com/ja7ad/foamcheck/pkg/report"
	"github.com/ja7ad/foamcheck/pkg/termination"
	"github.com/ja7ad/foamcheck/pkg/util"
)

type terminateOpts struct {
	level    float64
	spread   float64
	window   int
	skipRows int
	timeCol  int
	valueCol int
	htmlPath string
}

func addTerminateFlags(fs *pflag.FlagSet, o *terminateOpts) {
	def := config.Default().Termination

	fs.Float64Var(&o.level, "level", def.LevelThreshold, "channel must fall below this to be a candidate")
	fs.Float64Var(&o.spread, "spread", def.SpreadThreshold, "maximum max-min over the trailing window")
	fs.IntVar(&o.window, "window", def.WindowSize, "trailing window size in rows")
	fs.IntVar(&o.skipRows, "skip-rows", def.SkipRows, "header lines to skip")
	fs.IntVar(&o.timeCol, "time-col", def.TimeColumn, "zero-based time column")
	fs.IntVar(&o.valueCol, "value-col", def.ValueColumn, "zero-based channel column")
}

func (o *terminateOpts) overlay(fs *pflag.FlagSet, cfg *config.Config) error {
	if fs.Changed("level") {
		cfg.Termination.LevelThreshold = o.level
	}
	if fs.Changed("spread") {
		cfg.Termination.SpreadThreshold = o.spread
	}
	if fs.Changed("window") {
		cfg.Termination.WindowSize = o.window
	}
	if fs.Changed("skip-rows") {
		cfg.Termination.SkipRows = o.skipRows
	}
	if fs.Changed("time-col") {
		cfg.Termination.TimeColumn = o.timeCol
	}
	if fs.Changed("value-col") {
		cfg.Termination.ValueColumn = o.valueCol
	}
	return cfg.Validate()
}

func newTerminateCmd(a *app) *cobra.Command {
	var o terminateOpts

	cmd := &cobra.Command{
		Use:   "terminate SERIES",
		Short: "Find when a monitored channel stabilizes",
		Long: `Reads a whitespace separated table (time, channel, ...) and reports the first
time the channel is below --level while max-min over the preceding --window
rows (candidate included) is below --spread.

The older option names (--w_f_criterium, --residual_diff,
--sample_chunk) are accepted as aliases.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if err := o.overlay(cmd.Flags(), &cfg); err != nil {
				return err
			}
			res, err := runTerminate(cmd.Context(), cfg, args[0])
			if err != nil {
				return err
			}
			if o.htmlPath != "" {
				err := writeFile(o.htmlPath, func(w io.Writer) error {
					return report.WriteHTML(w, args[0], res.chart(args[0]))
				})
				if err != nil {
					return fmt.Errorf("html: %w", err)
				}
			}
			printTerminate(cmd.OutOrStdout(), res)
			return nil
		},
	}
	addTerminateFlags(cmd.Flags(), &o)
	cmd.Flags().StringVar(&o.htmlPath, "html", "", "write the channel chart to HTML file")
	return cmd
}

// terminateResult is the outcome of one stabilization scan.
type terminateResult struct {
	path    string
	rows    []termination.Row
	cfg     termination.Config
	found   *termination.Result
	elapsed time.Duration
}

func runTerminate(ctx context.Context, cfg config.Config, path string) (*terminateResult, error) {
	start := time.Now()
	rows, err := termination.ReadSeriesFile(path, cfg.ReadOptions())
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sc, err := termination.NewExact(cfg.Scanner())
	if err != nil {
		return nil, err
	}
	out := &terminateResult{path: path, rows: rows, cfg: sc.Config()}
	if res, ok := sc.Find(rows); ok {
		out.found = &res
		slog.Debug("stabilized",
			"series", path,
			"index", res.Index,
			"time", res.Time,
			"spread", res.Spread,
			"mean", res.Mean,
			"stddev", res.StdDev,
		)
	}
	out.elapsed = time.Since(start)
	return out, nil
}

func (r *terminateResult) chart(title string) *charts.Line {
	return report.SeriesChart(title, r.rows, r.cfg, r.found)
}

func printTerminate(w io.Writer, r *terminateResult) {
	if r.found != nil {
		fmt.Fprintf(w, "Anomaly has occurred at: %ss\n", util.FmtFloat(r.found.Time))
		fmt.Fprintf(w, "  row %d, window spread %s (mean %s, std %s over %d rows)\n",
			r.found.Index, util.FmtFloat(r.found.Spread),
			util.FmtFloat(r.found.Mean), util.FmtFloat(r.found.StdDev), r.found.Rows)
	} else {
		fmt.Fprintln(w, "Anomaly was not found in this sample")
	}
	fmt.Fprintf(w, "Elapsed time: %s seconds\n", util.FmtSeconds(r.elapsed))
}
