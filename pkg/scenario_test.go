package cache

// scenario_test.go drives the cache with the workload shapes the original
// timing harness used: a cyclic value generator vv(pos, count) swept over
// warm, undersized, shifting and noisy access patterns.  Assertions are on
// returned means (the producer is authoritative, so these are tight) and on
// the counter movements each shape must produce.

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vv maps a position to a value in [0.5, 10.0): the access-stream generator
// shared by every scenario.
func vv(pos, count int) float64 {
	return 0.5 + (9.5*float64(pos%count))/float64(count)
}

func expFiller(key, valueOut []byte) error {
	copy(valueOut, f64val(math.Exp(f64of(key))))
	return nil
}

// runPattern sweeps the warm access pattern over the cache and returns the
// mean of the cached results next to the mean of direct computation.
func runPattern(c *Cache, n, r int, f func(float64) float64) (got, want float64) {
	var sumCache, sumDirect float64
	for round := 0; round < r; round++ {
		b := round % 100
		for i := 0; i < n; i++ {
			x := vv(i+b, 100+n)
			sumCache += c.GetFloat64(x)
			sumDirect += f(x)
		}
	}
	total := float64(n) * float64(r)
	return sumCache / total, sumDirect / total
}

func TestScenarioWarmDoubler(t *testing.T) {
	const n, r = 1000, 1000
	c, err := New(n, 8, 8, WithFiller(doubler))
	require.NoError(t, err)
	defer c.Close()

	got, want := runPattern(c, n, r, func(x float64) float64 { return 2 * x })
	assert.InEpsilon(t, want, got, 0.05)

	s := c.Stats()
	assert.Zero(t, s.Evictions.Count, "the working set fits; nothing may be evicted")
	assert.Greater(t, s.HitRate(), 0.99, "steady state over a resident set is all hits")
}

func TestScenarioWarmExp(t *testing.T) {
	const n, r = 1000, 1000
	c, err := New(n, 8, 8, WithFiller(expFiller))
	require.NoError(t, err)
	defer c.Close()

	got, want := runPattern(c, n, r, math.Exp)
	assert.InEpsilon(t, want, got, 0.05)
	assert.Zero(t, c.Stats().Evictions.Count)
}

func TestScenarioUndersizedCache(t *testing.T) {
	const n, r = 1000, 200
	c, err := New(n/2, 8, 8, WithFiller(expFiller))
	require.NoError(t, err)
	defer c.Close()

	got, want := runPattern(c, n, r, math.Exp)
	// The producer is authoritative: results stay correct even while the
	// cache thrashes.
	assert.InEpsilon(t, want, got, 0.05)

	s := c.Stats()
	assert.Positive(t, s.Evictions.Count)
	assert.Less(t, s.HitRate(), 1.0)
}

func TestScenarioShiftingWindow(t *testing.T) {
	const n, r = 1000, 200
	c, err := New(n, 8, 8, WithFiller(expFiller))
	require.NoError(t, err)
	defer c.Close()

	var sumCache, sumDirect float64
	for round := 0; round < r; round++ {
		b := (10 * n * round) / r // window slides far past the cache size
		for i := 0; i < n; i++ {
			x := vv(i+b, 11*n)
			sumCache += c.GetFloat64(x)
			sumDirect += math.Exp(x)
		}
	}
	total := float64(n) * float64(r)
	assert.InEpsilon(t, sumDirect/total, sumCache/total, 0.05)

	// Every distinct key seen costs one add; the slide visits far more
	// distinct keys than the cache holds.
	s := c.Stats()
	assert.Greater(t, s.Adds.Count, int64(2*c.MaxItems()))
}

func TestScenarioNoiseDoesNotPurgeHotSet(t *testing.T) {
	const n, r = 1000, 200
	hotMisses := 0
	hotAccesses := 0

	// The filler sees exactly the misses; hot keys are non-negative, noise
	// keys negative, so miss attribution is exact.
	c, err := New(n, 8, 8, WithFiller(func(key, valueOut []byte) error {
		if f64of(key) >= 0 {
			hotMisses++
		}
		return doubler(key, valueOut)
	}))
	require.NoError(t, err)
	defer c.Close()

	noise := 0
	for round := 0; round < r; round++ {
		for i := 0; i < n; i++ {
			if i%10 == 0 {
				noise++
				c.GetFloat64(-float64(noise)) // sweeping unique key
				continue
			}
			hotAccesses++
			x := vv(i, 100+n)
			got := c.GetFloat64(x)
			require.Equal(t, 2*x, got)
		}
	}

	hotHitRate := 1 - float64(hotMisses)/float64(hotAccesses)
	assert.GreaterOrEqual(t, hotHitRate, 0.8,
		"aging must retain the repeatedly accessed hot set against the noise sweep")
}
