package main

// dataset_gen.go is a tiny helper utility to generate deterministic key
// traces for standalone benchmarking of iht-cache (outside `go test`).
// It emits newline-separated float64 keys which iht-bench replays via its
// --trace flag.
//
// Usage:
//   go run ./tools/dataset_gen -n 1000000 -dist=zipf -seed=42 -out keys.txt
//
// Flags:
//   -n       number of keys to generate (default 1e6)
//   -dist    distribution: "uniform" or "zipf" (default uniform)
//   -space   size of the key space the draws are folded into (default 100000)
//   -zipfs   Zipf s parameter (>1)  (default 1.2)
//   -zipfv   Zipf v parameter (>=1) (default 1.0)
//   -seed    RNG seed (default 42)
//   -out     output file (default stdout)
//
// Keys are vv-domain values (0.5 .. 10.0) so a trace exercises exactly the
// float64 fast path the synthetic scenarios do.  The program is placed under
// version control so any contributor can regenerate the exact trace used in
// performance-regression hunting.
//
// © 2025 iht-cache authors. MIT License.

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
)

func vv(pos, count int) float64 {
	return 0.5 + (9.5*float64(pos%count))/float64(count)
}

func main() {
	var (
		n       = flag.Int("n", 1_000_000, "number of keys to generate")
		dist    = flag.String("dist", "uniform", "distribution: uniform or zipf")
		space   = flag.Int("space", 100_000, "key-space size")
		zipfS   = flag.Float64("zipfs", 1.2, "zipf s parameter (>1)")
		zipfV   = flag.Float64("zipfv", 1.0, "zipf v parameter (>=1)")
		seedVal = flag.Int64("seed", 42, "PRNG seed")
		outPath = flag.String("out", "", "output file (default stdout)")
	)
	flag.Parse()

	rnd := rand.New(rand.NewSource(*seedVal))

	var gen func() int
	switch *dist {
	case "uniform":
		gen = func() int { return rnd.Intn(*space) }
	case "zipf":
		if *zipfS <= 1.0 || *zipfV < 1 {
			fmt.Fprintln(os.Stderr, "zipfs must be >1 and zipfv >=1")
			os.Exit(1)
		}
		z := rand.NewZipf(rnd, *zipfS, *zipfV, uint64(*space-1))
		gen = func() int { return int(z.Uint64()) }
	default:
		fmt.Fprintf(os.Stderr, "unknown distribution %q\n", *dist)
		os.Exit(1)
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "create:", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	w := bufio.NewWriter(out)
	defer w.Flush()
	for i := 0; i < *n; i++ {
		fmt.Fprintf(w, "%g\n", vv(gen(), *space))
	}
}
