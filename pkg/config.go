package hashengine

// config.go defines the functional options accepted by New. Unlike the
// cache this module grew out of, key and value are always []byte (spec.md
// §3), so there is no generic type parameter to thread through options.
//
// All fields are immutable once the Engine is constructed: there is no
// live-mutation/hot-reload path, matching the teacher codebase's choice to
// keep correctness reasoning simple.
//
// © 2025 hashtable-engine authors. MIT License.

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Voskan/hashtable-engine/internal/loadpolicy"
)

// Option configures an Engine at construction time.
type Option func(*config)

type config struct {
	logger          *zap.Logger
	registry        *prometheus.Registry
	policy          loadpolicy.Policy
	initialCapacity int
}

func defaultConfig() *config {
	return &config{
		logger: zap.NewNop(),
		policy: loadpolicy.New(),
	}
}

// WithLogger plugs an external zap.Logger. The engine never logs on the hot
// path (put/get/delete); only the WeakRandomness warning and resize debug
// events are emitted.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics enables Prometheus metrics collection for the engine. Passing
// nil disables metrics (the default) and the engine uses a no-op sink that
// costs nothing on the hot path.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(c *config) {
		c.registry = reg
	}
}

// WithMaxLoadFactor overrides the growth threshold (default 0.75, spec.md
// §6 MAX_LOAD_FACTOR). Values outside (0, 1] are ignored.
func WithMaxLoadFactor(f float64) Option {
	return func(c *config) {
		if f > 0 && f <= 1 {
			c.policy.MaxLoadFactor = f
		}
	}
}

// WithMinLoadFactor overrides the shrink threshold (default 0.2, spec.md §6
// MIN_LOAD_FACTOR). Values outside [0, 1) are ignored.
func WithMinLoadFactor(f float64) Option {
	return func(c *config) {
		if f >= 0 && f < 1 {
			c.policy.MinLoadFactor = f
		}
	}
}

// WithInitialCapacity is an alternative spelling of New's positional
// capacity argument, for callers who build an Engine entirely through
// options. It only takes effect when New is called with capacity <= 0;
// an explicit positional capacity always wins. Non-positive values are
// ignored.
func WithInitialCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.initialCapacity = n
		}
	}
}

// WithShrinkCooldown sets the minimum time a table generation must exist
// before it becomes eligible to shrink (default 0: no cooldown, see
// loadpolicy.DefaultShrinkCooldown). Widen this if a bursty workload is
// causing the table to shrink and immediately grow back. Negative
// durations are ignored.
func WithShrinkCooldown(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.policy.ShrinkCooldown = d
		}
	}
}

func applyOptions(cfg *config, opts []Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
}
