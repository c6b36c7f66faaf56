package main

// main.go implements the iht-bench timing harness: it sweeps the cyclic
// vv(pos, count) access pattern over a set of cache configurations (warm,
// undersized, high load factor, shifting window, noise, fuzzy) and reports
// wall time, relative error against direct computation, humanized throughput
// and the cache's own statistics block.
//
// Run:
//   go run ./cmd/iht-bench -n 1000 -r 1000 -s
//
// Flags:
//   -n        working-set size per round (default 1000)
//   -r        rounds (default 1000)
//   -s        print the full per-counter stats breakdown
//   -q        quiet: suppress stats entirely
//   --trace   optional key-trace file produced by tools/dataset_gen; when
//             set, the trace replaces the synthetic access pattern
//
// © 2025 iht-cache authors. MIT License.

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	cache "github.com/Voskan/iht-cache/pkg"
)

func vv(pos, count int) float64 {
	return 0.5 + (9.5*float64(pos%count))/float64(count)
}

func mult2(x float64) float64 { return x + x }

type options struct {
	n, r   int
	detail int
	trace  string
}

func parseFlags() options {
	var opts options
	var full, quiet bool
	flag.IntVarP(&opts.n, "keys", "n", 1000, "working-set size per round")
	flag.IntVarP(&opts.r, "rounds", "r", 1000, "rounds")
	flag.BoolVarP(&full, "stats", "s", false, "full per-counter stats breakdown")
	flag.BoolVarP(&quiet, "quiet", "q", false, "suppress stats")
	flag.StringVar(&opts.trace, "trace", "", "key-trace file (one float64 per line)")
	flag.Parse()

	opts.detail = 1
	if full {
		opts.detail = 2
	}
	if quiet {
		opts.detail = -1
	}
	return opts
}

// report prints timing, error against the baseline and the stats block.
func report(name string, dt time.Duration, expected, result float64, c *cache.Cache, opts options) {
	errPct := 0.0
	if expected+result != 0 {
		errPct = 100 * 2 * (result - expected) / (expected + result)
	}
	ops := float64(opts.n) * float64(opts.r) / dt.Seconds()
	fmt.Printf("%s (%.3f seconds, %s ops/s): Error=%.2f (V=%.3f)\n",
		name, dt.Seconds(), humanize.SIWithDigits(ops, 1, ""), errPct, result)
	if c != nil && opts.detail >= 0 {
		c.PrintStats(os.Stdout, name, 2, opts.detail)
	}
}

// baseline computes the direct (uncached) mean for f over the warm pattern.
func baseline(name string, opts options, f func(float64) float64) float64 {
	start := time.Now()
	var sum float64
	for r := 0; r < opts.r; r++ {
		b := r % 100
		for i := 0; i < opts.n; i++ {
			sum += f(vv(i+b, 100+opts.n))
		}
	}
	result := sum / float64(opts.r) / float64(opts.n)
	report(name, time.Since(start), result, result, nil, opts)
	return result
}

// cachedRun drives one cache over an access pattern and reports against the
// expected mean.
func cachedRun(name string, opts options, expected float64, c *cache.Cache, access func(r, i int) float64) {
	defer c.Close()
	start := time.Now()
	var sum float64
	for r := 0; r < opts.r; r++ {
		for i := 0; i < opts.n; i++ {
			sum += c.GetFloat64(access(r, i))
		}
	}
	report(name, time.Since(start), expected, sum/float64(opts.r)/float64(opts.n), c, opts)
}

// fillerFor adapts a float64 function to the byte-level filler contract;
// keys and values are little-endian float64 bit patterns end to end.
func fillerFor(f func(float64) float64) cache.FillerFunc {
	return func(key, valueOut []byte) error {
		x := math.Float64frombits(binary.LittleEndian.Uint64(key))
		binary.LittleEndian.PutUint64(valueOut, math.Float64bits(f(x)))
		return nil
	}
}

func mustCache(log *zap.Logger, capacity int, f func(float64) float64, opts ...cache.Option) *cache.Cache {
	all := append([]cache.Option{
		cache.WithLogger(log),
		cache.WithFiller(fillerFor(f)),
	}, opts...)
	c, err := cache.New(capacity, 8, 8, all...)
	if err != nil {
		log.Fatal("cache init", zap.Error(err))
	}
	return c
}

func runTrace(log *zap.Logger, opts options) {
	f, err := os.Open(opts.trace)
	if err != nil {
		log.Fatal("open trace", zap.Error(err))
	}
	defer f.Close()

	var keys []float64
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		x, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			log.Fatal("parse trace line", zap.Error(err))
		}
		keys = append(keys, x)
	}
	if err := sc.Err(); err != nil {
		log.Fatal("read trace", zap.Error(err))
	}

	c := mustCache(log, opts.n, math.Exp)
	defer c.Close()
	start := time.Now()
	var sum float64
	for _, x := range keys {
		sum += c.GetFloat64(x)
	}
	dt := time.Since(start)
	fmt.Printf("trace (%.3f seconds, %s keys, %s ops/s): V=%.3f\n",
		dt.Seconds(), humanize.Comma(int64(len(keys))),
		humanize.SIWithDigits(float64(len(keys))/dt.Seconds(), 1, ""),
		sum/float64(len(keys)))
	if opts.detail >= 0 {
		c.PrintStats(os.Stdout, "trace", 2, opts.detail)
	}
}

func main() {
	opts := parseFlags()

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if opts.trace != "" {
		runTrace(log, opts)
		return
	}

	fmt.Fprintf(os.Stderr, "iht-bench (N=%d,R=%d)\n", opts.n, opts.r)

	nopResult := baseline("nop", opts, mult2)
	expResult := baseline("exp", opts, math.Exp)

	warm := func(r, i int) float64 { return vv(i+r%100, 100+opts.n) }
	shift := func(r, i int) float64 { return vv(i+(10*opts.n*r)/opts.r, 11*opts.n) }
	noise := func(r, i int) float64 {
		if i%100 == 0 {
			return vv(r+1, opts.r+1)
		}
		return shift(r, i)
	}
	fuzzy := func(r, i int) float64 {
		if i%3 == 0 {
			return vv(r+1, opts.r+1)
		}
		return shift(r, i)
	}

	cachedRun("cache_nop", opts, nopResult, mustCache(log, opts.n, mult2), warm)
	cachedRun("cache_exp", opts, expResult, mustCache(log, opts.n, math.Exp), warm)
	cachedRun("cache_too_small", opts, expResult, mustCache(log, opts.n/2, math.Exp), warm)

	high := mustCache(log, opts.n, math.Exp)
	high.SetMaxLoadFactor(0.9)
	high.Reconfigure()
	cachedRun("cache_high_load", opts, expResult, high, warm)

	cachedRun("cache_shift", opts, expResult, mustCache(log, opts.n, math.Exp), shift)
	cachedRun("cache_noise", opts, expResult, mustCache(log, opts.n, math.Exp), noise)
	cachedRun("cache_fuzzy", opts, expResult, mustCache(log, opts.n, math.Exp), fuzzy)
}
