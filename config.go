package titanium

import "log/slog"

// config collects the values [Option]s mutate before [NewEngine] assembles
// the actual engine.
type config struct {
	store        Store
	storeExplicit bool
	events       *EventBus
	failFast     bool
	logger       *slog.Logger
	stack        *ContextStack
	cacheMaxCost int64
}

// Option configures an [Engine] at construction time.
type Option func(*config)

// WithStore overrides the default persistence backend (a [FileStore]
// rooted at the cache-directory environment variable, or no store at all
// if persistence is disabled).
func WithStore(s Store) Option {
	return func(c *config) {
		c.store = s
		c.storeExplicit = true
	}
}

// WithEventBus supplies an [EventBus] for the engine to publish to.
// Without this option, a fresh, subscriber-less bus is used.
func WithEventBus(b *EventBus) Option {
	return func(c *config) { c.events = b }
}

// WithFailFast stops the run after the first level in which any task
// fails: the rest of that level still completes, but no later level is
// scheduled, and the tasks in those levels are marked failed without
// running. Without it, every level runs and only dependents of a failed
// task fail.
func WithFailFast(v bool) Option {
	return func(c *config) { c.failFast = v }
}

// WithLogger overrides the engine's structured logger (default
// slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithContextStack gives the engine an isolated [ContextStack] instead of
// the package-level default, for test hermeticity or running more than one
// engine with independent ambient context in the same process.
func WithContextStack(s *ContextStack) Option {
	return func(c *config) { c.stack = s }
}

// WithCacheCost bounds the in-process memoization cache's maximum cost
// (ristretto's cost units, one per cached entry by default).
func WithCacheCost(maxCost int64) Option {
	return func(c *config) { c.cacheMaxCost = maxCost }
}
