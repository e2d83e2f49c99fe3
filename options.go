package sparsegrid

import (
	"log/slog"

	"github.com/hupe1980/sparsegrid/design"
)

type options struct {
	lower            float64
	upper            float64
	family           design.Family
	dyadicSort       bool
	neighbors        bool
	parallelism      int
	tolerance        float64
	logger           *Logger
	metricsCollector MetricsCollector
}

// Option configures SparseGrid construction behavior.
type Option func(*options)

// WithBounds configures the input interval the per-axis designs are placed
// on. Default: [0, 1].
func WithBounds(lower, upper float64) Option {
	return func(o *options) {
		o.lower = lower
		o.upper = upper
	}
}

// WithFamily configures the one-dimensional design family used on every
// axis. Default: design.FamilyHyperbolicCross.
func WithFamily(f design.Family) Option {
	return func(o *options) {
		o.family = f
	}
}

// WithDyadicSort configures whether per-axis points are kept in the family's
// hierarchical order (true, default) or pre-sorted ascending (false).
func WithDyadicSort(enabled bool) Option {
	return func(o *options) {
		o.dyadicSort = enabled
	}
}

// WithNeighbors configures whether per-axis designs carry left/right
// neighbor metadata for multiresolution hierarchy queries. Default: false.
func WithNeighbors(enabled bool) Option {
	return func(o *options) {
		o.neighbors = enabled
	}
}

// WithParallelism caps the number of partitions expanded concurrently during
// Generate. Values below 1 select runtime.GOMAXPROCS(0).
//
// Partitions are independent before the final concatenation/dedup pass, so
// parallel expansion never changes the result.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithMatchTolerance switches point deduplication from exact floating-point
// equality to bucketed matching with the given absolute tolerance.
//
// The built-in dyadic families guarantee that shared points are bit-identical
// across partitions, so the default (0, exact equality) is correct for them.
// Set a tolerance only when substituting a non-dyadic family whose refinement
// levels coincide approximately.
func WithMatchTolerance(eps float64) Option {
	return func(o *options) {
		o.tolerance = eps
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// generation and snapshot operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		lower:            0,
		upper:            1,
		family:           design.FamilyHyperbolicCross,
		dyadicSort:       true,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
