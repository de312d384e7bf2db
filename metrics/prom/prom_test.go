package prom

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/lazyval/lazy"
	"github.com/IvanBrykalov/lazyval/retain"
)

// gathered returns metric families by name from reg.
func gathered(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(mfs))
	for _, mf := range mfs {
		out[mf.GetName()] = mf
	}
	return out
}

func value(t *testing.T, mfs map[string]*dto.MetricFamily, name string) float64 {
	t.Helper()
	mf, ok := mfs[name]
	require.True(t, ok, "metric %s not gathered", name)
	var sum float64
	for _, m := range mf.GetMetric() {
		switch {
		case m.Counter != nil:
			sum += m.GetCounter().GetValue()
		case m.Gauge != nil:
			sum += m.GetGauge().GetValue()
		}
	}
	return sum
}

func TestAdapter_HolderAndRetainerMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	a := New(reg, "lazyval", "test", prometheus.Labels{"app": "unit"})

	r := retain.New(retain.Options{Capacity: 1, Shards: 1, Metrics: a})
	t.Cleanup(func() { _ = r.Close() })
	a.Observe(r)

	one := lazy.NewSoft(func() (int, error) { return 1, nil }, lazy.WithRetainer(r), lazy.WithMetrics(a))
	two := lazy.New(func() (int, error) { return 2, nil }, lazy.WithMetrics(a))
	other := lazy.NewSoft(func() (int, error) { return 3, nil }, lazy.WithRetainer(r))

	_, _ = one.Get()
	_, _ = one.Get()
	_, _ = two.Get()
	_, _ = other.Get() // displaces one's reference
	r.Purge()

	mfs := gathered(t, reg)
	require.Equal(t, 1.0, value(t, mfs, "lazyval_test_hits_total"))
	require.Equal(t, 2.0, value(t, mfs, "lazyval_test_computes_total"))
	require.Equal(t, 2.0, value(t, mfs, "lazyval_test_retain_admits_total"))
	require.Equal(t, 2.0, value(t, mfs, "lazyval_test_retain_releases_total"))
	require.Equal(t, 0.0, value(t, mfs, "lazyval_test_retained_entries"))

	var reasons []string
	for _, m := range mfs["lazyval_test_retain_releases_total"].GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == "reason" {
				reasons = append(reasons, lp.GetValue())
			}
		}
	}
	require.ElementsMatch(t, []string{"policy", "pressure"}, reasons)
}
