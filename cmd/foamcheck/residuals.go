package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/ja7ad/foamcheck/pkg/config"
	"github.com/ja7ad/foamcheck/pkg/report"
	"github.com/ja7ad/foamcheck/pkg/residual"
	"github.com/ja7ad/foamcheck/pkg/types"
	"github.com/ja7ad/foamcheck/pkg/util"
)

type residualOpts struct {
	chunkSize     types.Bytes
	fields        []string
	timePattern   string
	solverPattern string
	delimiter     string

	// outputs
	csvPath  string
	jsonPath string
	htmlPath string
	plotPath string
	pretty   bool
}

func addResidualFlags(fs *pflag.FlagSet, o *residualOpts) {
	def := config.Default()
	o.chunkSize = def.Residuals.ChunkSize

	fs.Var(&o.chunkSize, "chunk-size", "bytes per read call (e.g. 1024, 64KB, 1MiB)")
	fs.StringSliceVar(&o.fields, "fields", def.Residuals.Fields, "solver fields to track, in column order")
	fs.StringVar(&o.timePattern, "time-pattern", "", "regexp for time marker lines; group 1 is the time")
	fs.StringVar(&o.solverPattern, "solver-pattern", "", "regexp for solver lines; group 1 field, group 2 final residual")
	fs.StringVar(&o.delimiter, "delimiter", def.Output.Delimiter, "CSV column delimiter")

	fs.StringVar(&o.csvPath, "csv", "", "write residual rows to CSV file")
	fs.StringVar(&o.jsonPath, "json", "", "write residual rows to JSON file")
	fs.StringVar(&o.htmlPath, "html", "", "write an interactive residual chart to HTML file")
	fs.StringVar(&o.plotPath, "plot", "", "write a log-scale residual plot (.png, .svg, .pdf)")
	fs.BoolVar(&o.pretty, "pretty", false, "print every record as a table row")
}

// overlay copies explicitly set flags onto cfg.
func (o *residualOpts) overlay(fs *pflag.FlagSet, cfg *config.Config) error {
	if fs.Changed("chunk-size") {
		cfg.Residuals.ChunkSize = o.chunkSize
	}
	if fs.Changed("fields") {
		cfg.Residuals.Fields = o.fields
	}
	if fs.Changed("time-pattern") {
		cfg.Residuals.TimePattern = o.timePattern
	}
	if fs.Changed("solver-pattern") {
		cfg.Residuals.SolverPattern = o.solverPattern
	}
	if fs.Changed("delimiter") {
		cfg.Output.Delimiter = o.delimiter
	}
	return cfg.Validate()
}

func newResidualsCmd(a *app) *cobra.Command {
	var o residualOpts

	cmd := &cobra.Command{
		Use:   "residuals LOG [LOG...]",
		Short: "Extract per-timestep final residuals from solver logs",
		Long: `Reads each solver log in fixed-size chunks and reconstructs one record per
timestep holding the last final residual of every tracked field.

With several logs the scans run concurrently and every output path gets the
log's base name appended, e.g. out.csv -> out-log.run.csv.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if err := o.overlay(cmd.Flags(), &cfg); err != nil {
				return err
			}
			return runResiduals(cmd.Context(), cmd.OutOrStdout(), cfg, o, args)
		},
	}
	addResidualFlags(cmd.Flags(), &o)
	return cmd
}

// logResult is the outcome of one log scan.
type logResult struct {
	path    string
	fields  []string
	records []residual.Record
	stats   residual.Stats
	elapsed time.Duration
}

func runResiduals(ctx context.Context, out io.Writer, cfg config.Config, o residualOpts, logs []string) error {
	many := len(logs) > 1
	results := make([]*logResult, len(logs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range logs {
		g.Go(func() error {
			var live io.Writer
			if o.pretty && !many {
				live = out
			}
			res, err := scanLog(gctx, path, cfg, live)
			if err != nil {
				return err
			}
			results[i] = res
			return writeResidualOutputs(res, cfg, o, many)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, res := range results {
		printLogResult(out, res)
	}
	return nil
}

// scanLog drives one extractor over path. When live is set every record is
// printed as it is produced. Cancelling ctx stops the scan and keeps what was
// read so far.
func scanLog(ctx context.Context, path string, cfg config.Config, live io.Writer) (*logResult, error) {
	exCfg, err := cfg.Extractor()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", residual.ErrInputUnavailable, path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	var table *report.TableWriter
	if live != nil {
		table = report.NewTableWriter(live, exCfg.Fields)
	}

	start := time.Now()
	ex := residual.NewExtractor(f, exCfg)
	res := &logResult{path: path, fields: ex.Fields()}
	for ex.Scan() {
		rec := ex.Record()
		res.records = append(res.records, rec)
		if table != nil {
			if err := table.Write(rec); err != nil {
				return nil, err
			}
		}
		if ctx.Err() != nil {
			slog.Info("interrupted", "log", path, "records", len(res.records))
			break
		}
	}
	if err := ex.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if table != nil {
		if err := table.Flush(); err != nil {
			return nil, err
		}
	}

	res.stats = ex.Stats()
	res.elapsed = time.Since(start)
	slog.Debug("log scanned",
		"log", path,
		"records", len(res.records),
		"bytes", res.stats.BytesRead.Humanized(),
		"reads", res.stats.Reads,
		"dropped_steps", res.stats.DroppedSteps,
	)
	if res.stats.TimeMarkers == 0 {
		slog.Warn("no time markers found", "log", path)
	}
	return res, nil
}

func writeResidualOutputs(res *logResult, cfg config.Config, o residualOpts, many bool) error {
	if o.csvPath != "" {
		err := writeFile(outputPath(o.csvPath, res.path, many), func(w io.Writer) error {
			return report.WriteCSV(w, res.fields, res.records, cfg.Comma())
		})
		if err != nil {
			return fmt.Errorf("csv: %w", err)
		}
	}
	if o.jsonPath != "" {
		err := writeFile(outputPath(o.jsonPath, res.path, many), func(w io.Writer) error {
			return report.WriteJSON(w, res.fields, res.records)
		})
		if err != nil {
			return fmt.Errorf("json: %w", err)
		}
	}
	if o.htmlPath != "" {
		title := filepath.Base(res.path)
		err := writeFile(outputPath(o.htmlPath, res.path, many), func(w io.Writer) error {
			return report.WriteHTML(w, title, report.ResidualChart(title, res.fields, res.records))
		})
		if err != nil {
			return fmt.Errorf("html: %w", err)
		}
	}
	if o.plotPath != "" {
		path := outputPath(o.plotPath, res.path, many)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		err := report.SavePlot(path, res.fields, res.records, report.PlotOptions{Title: "Final Residual x Time"})
		switch {
		case errors.Is(err, report.ErrNothingToPlot):
			slog.Warn("plot skipped: no positive residuals", "log", res.path)
		case err != nil:
			return fmt.Errorf("plot: %w", err)
		}
	}
	return nil
}

func printLogResult(w io.Writer, res *logResult) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s: %d timesteps (%s read in %d calls)\n",
		res.path, len(res.records), res.stats.BytesRead.Humanized(), res.stats.Reads)
	_ = report.WriteSummary(w, report.Summarize(res.fields, res.records))
	fmt.Fprintf(w, "Elapsed time: %s seconds\n", util.FmtSeconds(res.elapsed))
}

// outputPath inserts the log's base name before the extension when several
// logs share one output flag.
func outputPath(out, logPath string, many bool) string {
	if !many {
		return out
	}
	ext := filepath.Ext(out)
	return strings.TrimSuffix(out, ext) + "-" + filepath.Base(logPath) + ext
}

func writeFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}
