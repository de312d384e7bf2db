// Package prom exports lazy holder and retainer activity as Prometheus metrics.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/IvanBrykalov/lazyval/lazy"
	"github.com/IvanBrykalov/lazyval/retain"
)

// Adapter implements lazy.Metrics and retain.Metrics.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits     prometheus.Counter
	computes prometheus.Counter
	failures prometheus.Counter
	reclaims prometheus.Counter
	admits   prometheus.Counter
	releases *prometheus.CounterVec

	reg         prometheus.Registerer
	ns, sub     string
	constLabels prometheus.Labels
}

// New constructs a metrics adapter.
//   - reg:         registry to register with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:     Prometheus namespace and subsystem
//   - constLabels: static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}
	a := &Adapter{
		hits:     counter("hits_total", "Gets served from a holder's slot"),
		computes: counter("computes_total", "Successful producer runs"),
		failures: counter("producer_failures_total", "Producer runs that returned an error"),
		reclaims: counter("reclaims_total", "Gets that found a soft value collected"),
		admits:   counter("retain_admits_total", "References newly retained"),
		releases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "retain_releases_total",
				Help:        "Retained references released, by reason",
				ConstLabels: constLabels,
			},
			[]string{"reason"},
		),
		reg:         reg,
		ns:          ns,
		sub:         sub,
		constLabels: constLabels,
	}
	reg.MustRegister(a.hits, a.computes, a.failures, a.reclaims, a.admits, a.releases)
	return a
}

func (a *Adapter) Hit()       { a.hits.Inc() }
func (a *Adapter) Compute()   { a.computes.Inc() }
func (a *Adapter) Fail()      { a.failures.Inc() }
func (a *Adapter) Reclaimed() { a.reclaims.Inc() }

func (a *Adapter) Admit() { a.admits.Inc() }

// Release counts a release with its reason as label value.
func (a *Adapter) Release(r retain.ReleaseReason) {
	a.releases.WithLabelValues(r.String()).Inc()
}

// Observe registers a gauge reporting how many references p retains.
// Call it at most once per Adapter.
func (a *Adapter) Observe(p *retain.Pool) {
	a.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   a.ns,
		Subsystem:   a.sub,
		Name:        "retained_entries",
		Help:        "References currently retained",
		ConstLabels: a.constLabels,
	}, func() float64 { return float64(p.Len()) }))
}

var (
	_ lazy.Metrics   = (*Adapter)(nil)
	_ retain.Metrics = (*Adapter)(nil)
)
