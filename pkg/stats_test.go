package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStats() Stats {
	return Stats{
		Lookups:   100,
		Hits:      Counter{Count: 90, Scans: 45},
		Misses:    Counter{Count: 10, Scans: 20},
		Adds:      Counter{Count: 10, Scans: 5},
		Updates:   Counter{Count: 0, Scans: 0},
		Evictions: Counter{Count: 2, Scans: 30},
	}
}

func TestPrintStatsFullDetail(t *testing.T) {
	var sb strings.Builder
	sampleStats().Print(&sb, "warm", 2, 2)

	want := "" +
		"  warm: Cache Stats: lookups: 100 hit=90.00 miss=10.00\n" +
		"  hits: 90 (scans=45, ratio=0.50)\n" +
		"  misses: 10 (scans=20, ratio=2.00)\n" +
		"  adds: 10 (scans=5, ratio=0.50)\n" +
		"  updates: 0 (scans=0, ratio=-1.00)\n" +
		"  evictions: 2 (scans=30, ratio=15.00)\n"
	assert.Equal(t, want, sb.String())
}

func TestPrintStatsDetailLevels(t *testing.T) {
	var sb strings.Builder
	sampleStats().Print(&sb, "x", 0, 0)
	assert.Equal(t, 1, strings.Count(sb.String(), "\n"), "detail 0 is the header only")

	sb.Reset()
	sampleStats().Print(&sb, "x", 0, 1)
	assert.Equal(t, 3, strings.Count(sb.String(), "\n"), "detail 1 adds hits and misses")
}

func TestPrintStatsZeroLookups(t *testing.T) {
	var sb strings.Builder
	Stats{}.Print(&sb, "empty", 0, 2)

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "empty: Cache Stats: lookups: 0 hit=0.00 miss=0.00", lines[0])
	for _, line := range lines[1:] {
		assert.Contains(t, line, "ratio=-1.00", "zero counters report -1.00")
	}
}

func TestCounterRatio(t *testing.T) {
	assert.Equal(t, -1.0, Counter{}.Ratio())
	assert.Equal(t, 2.5, Counter{Count: 2, Scans: 5}.Ratio())
}

func TestStatsTrackOperations(t *testing.T) {
	c, err := New(100, 8, 8)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Put(f64key(1), f64val(1)))
	out := make([]byte, 8)
	require.True(t, c.Lookup(f64key(1), out))
	require.False(t, c.Lookup(f64key(2), out))

	s := c.Stats()
	assert.Equal(t, int64(2), s.Lookups)
	assert.Equal(t, int64(1), s.Hits.Count)
	assert.Equal(t, int64(1), s.Misses.Count)
	assert.Equal(t, int64(1), s.Adds.Count)
	assert.Equal(t, int64(0), s.Updates.Count)
	assert.Equal(t, int64(0), s.Evictions.Count)
	assert.InDelta(t, 0.5, s.HitRate(), 1e-9)
}
