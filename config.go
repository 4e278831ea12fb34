package main

import (
	"runtime"
	"time"
)

// MaxSearchDepth bounds the depth a caller may request. Anything deeper is a
// configuration error, not a bigger search.
const MaxSearchDepth = 16

// DefaultEffectCapacity is the number of effects a mix saturates at.
const DefaultEffectCapacity = 8

// ProgressFunc receives periodic progress reports: the depth currently being
// expanded, nodes processed so far and the (capped) expected total. It may be
// called concurrently from several workers.
type ProgressFunc func(depth int, processed, total int64)

// Config carries search tuning parameters. Adjust these to trade speed for
// memory or to bound a run.
type Config struct {
	// Workers is the number of goroutines used by the parallel strategies.
	Workers int
	// EffectCapacity caps the effect set size; 0 means DefaultEffectCapacity.
	EffectCapacity int
	// NodeBudget stops the search after this many nodes (0 = unlimited).
	// The result is then reported as non-exhaustive, never as an error.
	NodeBudget int64
	// TimeBudget stops the search after this wall-clock duration (0 = none).
	TimeBudget time.Duration
	// ReportInterval is how many nodes pass between Progress calls.
	ReportInterval int64
	// Progress, when non-nil, receives periodic progress reports.
	Progress ProgressFunc
	// Verbose prints search phase details to stderr.
	Verbose bool
}

// DefaultConfig returns the tuning used by the CLI and lambda entrypoints.
func DefaultConfig() Config {
	return Config{
		Workers:        runtime.GOMAXPROCS(0),
		EffectCapacity: DefaultEffectCapacity,
		ReportInterval: 100000,
	}
}

func (c Config) workers() int {
	if c.Workers < 1 {
		return 1
	}
	return c.Workers
}

func (c Config) capacity() int {
	if c.EffectCapacity <= 0 {
		return DefaultEffectCapacity
	}
	return c.EffectCapacity
}
