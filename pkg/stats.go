package cache

// stats.go keeps the operation counters and the normative text rendering.
// Counters are plain integers: the cache is single-owner by contract, so the
// atomics the concurrent caches in this space reach for would buy nothing on
// the hot path here.
//
// © 2025 iht-cache authors. MIT License.

import (
	"fmt"
	"io"
	"strings"
)

// Counter is one operation class: how many times it happened and the total
// probe distance those occurrences walked.
type Counter struct {
	Count int64
	Scans int64
}

func (c *Counter) bump(scans int) {
	c.Count++
	c.Scans += int64(scans)
}

// Ratio is the mean probe distance, or -1 when the counter never fired.
func (c Counter) Ratio() float64 {
	if c.Count == 0 {
		return -1
	}
	return float64(c.Scans) / float64(c.Count)
}

// Stats is a snapshot of the cache's counters.
type Stats struct {
	Lookups   int64
	Hits      Counter
	Misses    Counter
	Adds      Counter
	Updates   Counter
	Evictions Counter
}

// HitRate returns hits/lookups in [0, 1].
func (s Stats) HitRate() float64 {
	if s.Lookups == 0 {
		return 0
	}
	return float64(s.Hits.Count) / float64(s.Lookups)
}

// Print renders the stats block.  detail selects the depth: 0 the header
// line only, 1 adds hits and misses, 2 the full per-counter breakdown.
// Every line is prefixed by indent spaces.  The format is stable; tooling
// parses it.
func (s Stats) Print(w io.Writer, label string, indent, detail int) {
	pad := strings.Repeat(" ", indent)
	den := s.Lookups
	if den < 1 {
		den = 1
	}
	fmt.Fprintf(w, "%s%s: Cache Stats: lookups: %d hit=%.2f miss=%.2f\n",
		pad, label, s.Lookups,
		100*float64(s.Hits.Count)/float64(den),
		100*float64(s.Misses.Count)/float64(den))
	if detail < 1 {
		return
	}
	printCounter(w, pad, "hits", s.Hits)
	printCounter(w, pad, "misses", s.Misses)
	if detail < 2 {
		return
	}
	printCounter(w, pad, "adds", s.Adds)
	printCounter(w, pad, "updates", s.Updates)
	printCounter(w, pad, "evictions", s.Evictions)
}

func printCounter(w io.Writer, pad, label string, c Counter) {
	fmt.Fprintf(w, "%s%s: %d (scans=%d, ratio=%.2f)\n", pad, label, c.Count, c.Scans, c.Ratio())
}

// Stats returns a copy of the current counters.
func (c *Cache) Stats() Stats { return c.stats }

// ClearStats zeroes every counter.
func (c *Cache) ClearStats() { c.stats = Stats{} }

// PrintStats writes the stats block for this cache to w.
func (c *Cache) PrintStats(w io.Writer, label string, indent, detail int) {
	c.stats.Print(w, label, indent, detail)
}
