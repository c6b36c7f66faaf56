package cache

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatherValue sums all samples of the named family in the registry.
func gatherValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var total float64
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			}
		}
		return total
	}
	t.Fatalf("metric family %q not registered", name)
	return 0
}

func TestPrometheusSinkMirrorsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(100, 8, 8, WithMetrics(reg), WithFiller(doubler))
	require.NoError(t, err)
	defer c.Close()

	c.GetFloat64(1) // miss + add
	c.GetFloat64(1) // hit
	require.NoError(t, c.Put(f64key(1), f64val(5))) // update

	assert.Equal(t, 2.0, gatherValue(t, reg, "iht_cache_lookups_total"))
	assert.Equal(t, 1.0, gatherValue(t, reg, "iht_cache_hits_total"))
	assert.Equal(t, 1.0, gatherValue(t, reg, "iht_cache_misses_total"))
	assert.Equal(t, 1.0, gatherValue(t, reg, "iht_cache_adds_total"))
	assert.Equal(t, 1.0, gatherValue(t, reg, "iht_cache_updates_total"))
	assert.Equal(t, 0.0, gatherValue(t, reg, "iht_cache_evictions_total"))
	assert.Equal(t, 1.0, gatherValue(t, reg, "iht_cache_items"))
}

func TestMetricsDisabledByDefault(t *testing.T) {
	c, err := New(100, 8, 8)
	require.NoError(t, err)
	defer c.Close()

	_, isNoop := c.met.(noopMetrics)
	assert.True(t, isNoop, "without a registry the hot path must not pay for metrics")
}
