package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"digital.vasic.promisematchers/pkg/config"
	"digital.vasic.promisematchers/pkg/logging"
	"digital.vasic.promisematchers/pkg/matcher"
	"digital.vasic.promisematchers/pkg/metrics"
	"digital.vasic.promisematchers/pkg/promise"
	"digital.vasic.promisematchers/pkg/scenario"
)

var errScenariosFailed = errors.New("scenarios failed")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "promisematchers",
		Short: "Evaluate promise expectations from scenario files",
		Long: `promisematchers settles promises as described in YAML scenario
files, applies the toBeResolved/toBeRejected matchers to them and
checks every outcome against the declared one.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newRunCmd())
	root.AddCommand(newListCmd())
	return root
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file|directory>...",
		Short: "Run scenario files",
		Long: `Run loads every scenario of the given files and directories
(.yaml and .yml), evaluates them and prints a report.

Examples:
  promisematchers run scenarios/
  promisematchers run --format json settle.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCommand,
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered matchers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range matcher.NewRegistry(nil).Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newLogger(cfg *config.Config, w io.Writer) logging.Logger {
	if cfg.Log.Format == config.FormatJSON {
		return logging.NewZerologLogger(logging.ZerologConfig{
			Output: w,
			Level:  cfg.Log.Level,
			Fields: map[string]any{"app": "promisematchers"},
		})
	}
	return logging.NewLeveledConsoleLogger(w, cfg.Log.Level)
}

func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.Report.NoColor {
		color.NoColor = true
	}

	logger := newLogger(cfg, cmd.ErrOrStderr())
	defer logger.Close()

	bank := scenario.NewBank()
	if err := bank.Load(args...); err != nil {
		return err
	}
	logger.Info("scenarios loaded",
		logging.IntField("count", bank.Count()),
		logging.IntField("files", len(bank.Sources())))

	loop := promise.NewLoop(promise.WithLoopLogger(logger))
	mem := metrics.NewMemoryMetrics()
	verifier := matcher.NewVerifier(
		matcher.WithLogger(logger),
		matcher.WithMetrics(mem),
	)

	runner := scenario.NewRunner(loop, matcher.NewRegistry(verifier),
		scenario.WithLogger(logger),
		scenario.WithTimeout(cfg.Timeout),
		scenario.WithConcurrency(cfg.Concurrency),
	)

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	results, runErr := runner.Run(ctx, bank.All())
	if err := loop.Close(); err != nil {
		logger.Error("promise loop", logging.ErrorField(err))
	}
	if runErr != nil {
		return errors.Wrap(runErr, "run scenarios")
	}

	logger.Info("settlement latency",
		logging.DurationField("p50", mem.LatencyPercentile(50)),
		logging.DurationField("p99", mem.LatencyPercentile(99)),
		logging.IntField("verifications", int(mem.Verifications())))

	summary := scenario.BuildSummary(results)
	out := cmd.OutOrStdout()
	if cfg.Report.Format == config.FormatJSON {
		err = scenario.WriteJSON(out, summary)
	} else {
		err = scenario.WriteConsole(out, summary, cfg.Report.NoColor)
	}
	if err != nil {
		return errors.Wrap(err, "write report")
	}

	if !summary.OK() {
		return errScenariosFailed
	}
	return nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt)
}
