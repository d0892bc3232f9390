package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ja7ad/foamcheck/pkg/report"
)

func newCheckCmd(a *app) *cobra.Command {
	var (
		ro         residualOpts
		to         terminateOpts
		logPath    string
		seriesPath string
		reportPath string
	)

	cmd := &cobra.Command{
		Use:   "check --log LOG --series SERIES",
		Short: "Extract residuals and detect stabilization in one pass",
		Long: `Runs the residual extraction over --log and the stabilization scan over
--series concurrently. --report writes one HTML page holding both charts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if logPath == "" && seriesPath == "" {
				return errors.New("check: need --log, --series or both")
			}
			cfg := a.cfg
			if err := ro.overlay(cmd.Flags(), &cfg); err != nil {
				return err
			}
			if err := to.overlay(cmd.Flags(), &cfg); err != nil {
				return err
			}

			var (
				logRes  *logResult
				termRes *terminateResult
			)
			g, gctx := errgroup.WithContext(cmd.Context())
			if logPath != "" {
				g.Go(func() error {
					res, err := scanLog(gctx, logPath, cfg, nil)
					if err != nil {
						return err
					}
					logRes = res
					return writeResidualOutputs(res, cfg, ro, false)
				})
			}
			if seriesPath != "" {
				g.Go(func() error {
					res, err := runTerminate(gctx, cfg, seriesPath)
					if err != nil {
						return err
					}
					termRes = res
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if reportPath != "" {
				var cs []components.Charter
				if logRes != nil {
					cs = append(cs, report.ResidualChart(filepath.Base(logRes.path), logRes.fields, logRes.records))
				}
				if termRes != nil {
					cs = append(cs, termRes.chart(filepath.Base(termRes.path)))
				}
				err := writeFile(reportPath, func(w io.Writer) error {
					return report.WriteHTML(w, "foamcheck", cs...)
				})
				if err != nil {
					return fmt.Errorf("report: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			if logRes != nil {
				printLogResult(out, logRes)
			}
			if termRes != nil {
				fmt.Fprintln(out)
				printTerminate(out, termRes)
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&logPath, "log", "", "solver log to extract residuals from")
	fs.StringVar(&seriesPath, "series", "", "channel table to scan for stabilization")
	fs.StringVar(&reportPath, "report", "", "write both charts to one HTML file")
	addResidualFlags(fs, &ro)
	addTerminateFlags(fs, &to)
	return cmd
}
