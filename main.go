//go:build !lambda

package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

const usage = `usage: mixcalc [flags] product.json additives.json multipliers.json rules.json maxDepth

Finds the most profitable additive mix for a product. The four JSON files
describe the product, the additive catalog, the effect multiplier table and
the per-additive transformation rules.

flags:
  -strategy name   bfs, bfs-parallel, dfs, or all (benchmark every strategy
                   and verify they agree) (default bfs-parallel)
  -workers n       goroutines for the parallel strategies (default GOMAXPROCS)
  -capacity n      effect capacity per mix (default 8)
  -nodes n         stop after n nodes, report non-exhaustive (default unlimited)
  -timeout d       stop after duration d, e.g. 30s (default none)
  -json            emit the result as JSON instead of text
  -o file          write the result to file instead of stdout
  -progress        print progress to stderr while searching
  -verbose         print search phase details to stderr
`

func main() {
	var (
		strategy = flag.String("strategy", StrategyBFSParallel, "search strategy, or all")
		workers  = flag.Int("workers", 0, "worker goroutines (0 = GOMAXPROCS)")
		capacity = flag.Int("capacity", DefaultEffectCapacity, "effect capacity per mix")
		nodes    = flag.Int64("nodes", 0, "node budget (0 = unlimited)")
		timeout  = flag.Duration("timeout", 0, "time budget (0 = none)")
		asJSON   = flag.Bool("json", false, "emit JSON output")
		outPath  = flag.String("o", "", "output file (default stdout)")
		progress = flag.Bool("progress", false, "print progress to stderr")
		verbose  = flag.Bool("verbose", false, "print search details to stderr")
	)
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) != 5 {
		flag.Usage()
		os.Exit(2)
	}
	maxDepth, err := strconv.Atoi(args[4])
	if err != nil {
		fail(fmt.Errorf("%w: max depth %q is not a number", ErrInvalidInput, args[4]))
	}

	cfg := DefaultConfig()
	if *workers > 0 {
		cfg.Workers = *workers
	}
	cfg.EffectCapacity = *capacity
	cfg.NodeBudget = *nodes
	cfg.TimeBudget = *timeout
	cfg.Verbose = *verbose
	if *progress {
		cfg.Progress = printProgress
	}

	cat, err := LoadCatalog(args[0], args[1], args[2], args[3], cfg.capacity())
	if err != nil {
		fail(err)
	}

	var out string
	if *strategy == "all" {
		out, err = runAll(cat, maxDepth, cfg, *asJSON)
	} else {
		out, err = runOne(cat, maxDepth, *strategy, cfg, *asJSON)
	}
	if err != nil {
		fail(err)
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, []byte(out), 0o644); err != nil {
			fail(fmt.Errorf("writing %s: %w", *outPath, err))
		}
		return
	}
	fmt.Print(out)
}

func runOne(cat *Catalog, maxDepth int, strategy string, cfg Config, asJSON bool) (string, error) {
	res, err := FindBestMix(cat, maxDepth, strategy, cfg)
	if err != nil {
		return "", err
	}
	o, err := Report(cat, res)
	if err != nil {
		return "", err
	}
	if asJSON {
		buf, err := json.MarshalIndent(o, "", "  ")
		if err != nil {
			return "", err
		}
		return string(buf) + "\n", nil
	}
	return FormatOutput(o), nil
}

// runAll benchmarks every strategy on the same catalog and verifies the
// answers agree byte for byte before printing the comparison.
func runAll(cat *Catalog, maxDepth int, cfg Config, asJSON bool) (string, error) {
	outs := make([]*Output, 0, len(strategyOrder))
	for _, name := range strategyOrder {
		start := time.Now()
		res, err := FindBestMix(cat, maxDepth, name, cfg)
		if err != nil {
			return "", err
		}
		o, err := Report(cat, res)
		if err != nil {
			return "", err
		}
		if cfg.Verbose {
			fmt.Fprintf(os.Stderr, "[bench] %s done in %s\n", name, time.Since(start))
		}
		outs = append(outs, o)
	}
	want := outs[0].resultKey()
	for _, o := range outs[1:] {
		if got := o.resultKey(); got != want {
			return "", fmt.Errorf("%w: strategy %s disagrees with %s:\n  %s\n  %s",
				ErrInternal, o.Stats.Strategy, outs[0].Stats.Strategy, got, want)
		}
	}

	if asJSON {
		buf, err := json.MarshalIndent(outs, "", "  ")
		if err != nil {
			return "", err
		}
		return string(buf) + "\n", nil
	}
	return FormatOutput(outs[0]) + "\n" + printBenchTable(outs), nil
}

func printProgress(depth int, processed, total int64) {
	if total > 0 {
		fmt.Fprintf(os.Stderr, "[progress] depth=%d nodes=%d/%d (%.1f%%)\n",
			depth, processed, total, 100*float64(processed)/float64(total))
		return
	}
	fmt.Fprintf(os.Stderr, "[progress] depth=%d nodes=%d\n", depth, processed)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "mixcalc: %v\n", err)
	if errors.Is(err, ErrInvalidInput) {
		os.Exit(2)
	}
	os.Exit(1)
}
