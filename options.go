package blockcache

import (
	"log/slog"

	"github.com/hupe1980/blockcache/resource"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	resources        *resource.Controller
}

// Option configures New and NewSharded.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &blockcache.BasicMetricsCollector{}
//	c, _ := blockcache.New(4096, 64, blockcache.WithMetricsCollector(metrics))
//	// ... use c ...
//	stats := metrics.GetStats()
//	fmt.Printf("Hit ratio: %.2f, Avg load: %dns\n", stats.HitRatio, stats.MissAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := blockcache.NewJSONLogger(slog.LevelDebug)
//	c, _ := blockcache.New(4096, 64, blockcache.WithLogger(logger))
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

// WithResourceController charges the cache's block buffers against the
// controller's memory limit. Sharded caches also bound their fan-out by the
// controller's background worker slots.
//
//	rc := resource.NewController(resource.Config{MemoryLimitBytes: 64 << 20})
//	c, err := blockcache.New(4096, 1024, blockcache.WithResourceController(rc))
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
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
