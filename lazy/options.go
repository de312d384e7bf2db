package lazy

import "github.com/IvanBrykalov/lazyval/retain"

// Metrics exposes holder-level observability hooks.
// A NoopMetrics implementation is used by default.
type Metrics interface {
	// Hit is called when Get is served from the slot.
	Hit()
	// Compute is called after the producer succeeded and its value was published.
	Compute()
	// Fail is called when the producer returned an error.
	Fail()
	// Reclaimed is called when a Soft holder finds its value was collected.
	Reclaimed()
}

// Option configures a holder.
type Option func(*config)

type config struct {
	metrics  Metrics
	retainer retain.Retainer
}

func newConfig(opts []Option) config {
	c := config{metrics: NoopMetrics{}}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// WithMetrics reports holder activity to m. A nil m keeps the default.
func WithMetrics(m Metrics) Option {
	return func(c *config) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithRetainer makes Soft holders keep their values alive through r instead
// of retain.Default(). Value holders ignore it.
func WithRetainer(r retain.Retainer) Option {
	return func(c *config) { c.retainer = r }
}
