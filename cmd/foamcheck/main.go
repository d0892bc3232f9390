package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ja7ad/foamcheck/pkg/config"
)

type app struct {
	configPath string
	logLevel   string
	cfg        config.Config
}

// legacyFlags maps older option names onto the current ones.
var legacyFlags = map[string]string{
	"residual-diff": "spread",
	"w-f-criterium": "level",
	"sample-chunk":  "window",
}

func normalizeFlag(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	name = strings.ReplaceAll(name, "_", "-")
	if to, ok := legacyFlags[name]; ok {
		name = to
	}
	return pflag.NormalizedName(name)
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "foamcheck",
		Short: "Solver log residual extraction and run termination detection",
		Long: `foamcheck reads the output of an iterative CFD run.

  residuals  extracts the final residual of each tracked field per timestep
             from a solver log and writes it as CSV, JSON, HTML or a plot.
  terminate  finds the first time a monitored channel (e.g. water fraction)
             has dropped below a level and stayed calm over a trailing window.
  check      runs both at once.

Examples:
  foamcheck residuals log.run --csv output.csv --plot residuals.png
  foamcheck terminate postProcessing/alpha.dat --level 0.5 --spread 0.1 --window 20000
  foamcheck check --log log.run --series alpha.dat --html report.html`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := setupLogging(cmd, a.logLevel); err != nil {
				return err
			}
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			slog.Debug("config loaded", "path", a.configPath)
			return nil
		},
	}
	root.SetGlobalNormalizationFunc(normalizeFlag)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newResidualsCmd(a),
		newTerminateCmd(a),
		newCheckCmd(a),
	)
	return root
}

func setupLogging(cmd *cobra.Command, level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log-level: %w", err)
	}
	h := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error(err.Error())
		stop()
		os.Exit(1)
	}
}
