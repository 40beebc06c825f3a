package commands

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/mkock/bootseq/v3"
	"github.com/mkock/bootseq/v3/internal/config"
	"github.com/mkock/bootseq/v3/internal/sim"
)

// ErrDegraded is returned by the run command when at least one component failed to start.
var ErrDegraded = errors.New("degraded start")

type runOptions struct {
	file      string
	workers   int
	timeout   time.Duration
	logLevel  string
	logFormat string
	metrics   bool
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start and then stop a sequence of simulated components",
		Long: `Start every component of a sequence file in dependency order, then stop them
in reverse order. Prints the result of every component and the order of the
recorded action events. Exits with a non-zero status if any component failed
to start.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSequence(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Path to the sequence file (required)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Maximum number of concurrent actions, overrides the file (0 keeps the file value)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Time limit per phase, overrides the file (0 keeps the file value)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", "", "Log format: text or json")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Print Prometheus metrics after the run")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runSequence(cmd *cobra.Command, opts *runOptions) error {
	cfg, err := config.Load(opts.file)
	if err != nil {
		return err
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	if opts.timeout > 0 {
		cfg.Timeout = opts.timeout
	}

	logger, err := setupLog(cmd.ErrOrStderr(), cfg.Log, opts.logLevel, opts.logFormat)
	if err != nil {
		return err
	}

	seqOpts := []bootseq.Option{bootseq.WithLogger(bootseq.NewLogrusLogger(logger))}
	reg := prometheus.NewRegistry()
	if opts.metrics {
		seqOpts = append(seqOpts, bootseq.WithMetrics(bootseq.NewMetrics(reg, cfg.Name)))
	}

	s, err := sim.Build(cfg, seqOpts...)
	if err != nil {
		return err
	}

	report, runErr := s.Run(cmd.Context(), sim.Executor(cfg))

	out := cmd.OutOrStdout()
	printReport(out, report)

	if opts.metrics {
		if err := printMetrics(out, reg); err != nil {
			return err
		}
	}

	if runErr != nil {
		return runErr
	}
	if report.Degraded() {
		return ErrDegraded
	}
	return nil
}

func printReport(out io.Writer, report sim.Report) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "STARTUP\tRESULT\tDETAIL")
	for _, res := range report.Startup {
		fmt.Fprintf(w, "%s\t%s\t%s\n", res.Component, res.Kind, detail(res.Err))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "SHUTDOWN\tRESULT\tDETAIL")
	for _, res := range report.Stop {
		fmt.Fprintf(w, "%s\t%s\t%s\n", res.Component, res.Kind, detail(res.Err))
	}
	_ = w.Flush()

	fmt.Fprintf(out, "\nOrder: %s\n", report.Order())
}

func detail(err error) string {
	if err == nil {
		return "-"
	}
	return err.Error()
}

func printMetrics(out io.Writer, reg prometheus.Gatherer) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	fmt.Fprintln(out)
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}
