package bootseq

import "github.com/google/uuid"

type managerOptions struct {
	logger  Logger
	metrics *Metrics
	runID   string
}

func defaultManagerOptions() *managerOptions {
	return &managerOptions{
		logger: NewNoopLogger(),
		runID:  uuid.NewString(),
	}
}

// Option configures a Manager.
type Option func(*managerOptions)

func buildManagerOptions(opts ...Option) *managerOptions {
	options := defaultManagerOptions()
	for _, fn := range opts {
		fn(options)
	}
	return options
}

// WithLogger sets the logger for the Manager. Default is the NoopLogger.
func WithLogger(logger Logger) Option {
	return func(options *managerOptions) {
		options.logger = logger
	}
}

// WithMetrics makes the Manager record action durations and outcomes. Default is no metrics.
func WithMetrics(metrics *Metrics) Option {
	return func(options *managerOptions) {
		options.metrics = metrics
	}
}

// WithRunID overrides the identifier attached to log messages of this Manager. Default is a random
// UUID.
func WithRunID(id string) Option {
	return func(options *managerOptions) {
		options.runID = id
	}
}
