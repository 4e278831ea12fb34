package main

import (
	"fmt"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// ── Strategies ──────────────────────────────────────────────────────

const (
	StrategyBFS         = "bfs"          // single-threaded layered frontier
	StrategyBFSParallel = "bfs-parallel" // layered frontier sharded over workers
	StrategyDFS         = "dfs"          // parallel backtracking with bound pruning
)

type strategyFunc func(cat *Catalog, maxDepth int, cfg Config) SearchResult

var strategies = map[string]strategyFunc{
	StrategyBFS:         runBFS,
	StrategyBFSParallel: runBFSParallel,
	StrategyDFS:         runDFS,
}

// strategyOrder is the display order for benchmark output.
var strategyOrder = []string{StrategyBFS, StrategyBFSParallel, StrategyDFS}

// Stats describes how much work a search did.
type Stats struct {
	NodesExpanded      int64
	StatesDeduplicated int64
	DepthReached       int
	Elapsed            time.Duration
}

// SearchResult is the winning mixture plus search statistics. Paths are
// additive indices into the catalog; the reporter turns them into names.
type SearchResult struct {
	Strategy       string
	Path           []uint8
	Set            EffectSet
	SalePriceCents int
	CostCents      int
	ProfitCents    int
	MaxDepth       int
	Exhaustive     bool
	Stats          Stats
}

// FindBestMix runs the named strategy over the catalog up to maxDepth.
// maxDepth <= 0 and empty catalogs yield the trivial (empty-path) result;
// depths beyond MaxSearchDepth and unknown strategies are input errors.
func FindBestMix(cat *Catalog, maxDepth int, strategy string, cfg Config) (SearchResult, error) {
	run, ok := strategies[strategy]
	if !ok {
		return SearchResult{}, fmt.Errorf("%w: unknown strategy %q", ErrInvalidInput, strategy)
	}
	if maxDepth > MaxSearchDepth {
		return SearchResult{}, fmt.Errorf("%w: max depth %d exceeds limit %d",
			ErrInvalidInput, maxDepth, MaxSearchDepth)
	}
	if maxDepth < 0 {
		maxDepth = 0
	}
	if maxDepth == 0 || len(cat.Additives) == 0 {
		return trivialResult(cat, maxDepth, strategy), nil
	}
	return run(cat, maxDepth, cfg), nil
}

// trivialResult prices the untouched product. Still a real result with a
// stats block, per the output contract.
func trivialResult(cat *Catalog, maxDepth int, strategy string) SearchResult {
	set := cat.Product.InitialEffects
	sale := salePriceCents(cat, set)
	return SearchResult{
		Strategy:       strategy,
		Set:            set,
		SalePriceCents: sale,
		ProfitCents:    sale,
		MaxDepth:       maxDepth,
		Exhaustive:     true,
	}
}

// ── Best-result tracking ────────────────────────────────────────────
//
// A single explicitly-owned holder, updated only through the total order:
// profit desc, cost asc, path length asc, path lex asc (by additive name).
// The order is total, so racing workers can never change the final winner.

type bestTracker struct {
	mu           sync.Mutex
	profitAtomic atomic.Int64 // mirror for cheap lock-free reads

	profit int
	sale   int
	cost   int
	set    EffectSet
	path   []uint8
}

func (b *bestTracker) seed(profit, sale, cost int, set EffectSet) {
	b.profit, b.sale, b.cost, b.set, b.path = profit, sale, cost, set, nil
	b.profitAtomic.Store(int64(profit))
}

func (b *bestTracker) bestProfit() int { return int(b.profitAtomic.Load()) }

func (b *bestTracker) offer(cat *Catalog, profit, sale, cost int, set EffectSet, path []uint8) {
	// Strictly worse profit can never win; skip the lock.
	if profit < b.bestProfit() {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case profit > b.profit:
	case profit < b.profit:
		return
	case cost < b.cost:
	case cost > b.cost:
		return
	case len(path) < len(b.path):
	case len(path) > len(b.path):
		return
	case cat.pathLexLess(path, b.path):
	default:
		return
	}
	b.profit, b.sale, b.cost, b.set = profit, sale, cost, set
	b.path = clonePath(path)
	b.profitAtomic.Store(int64(profit))
}

// ── Visited table ───────────────────────────────────────────────────
//
// Canonical effect set -> best-known way to reach it, sharded with per-shard
// locks. An entry is replaced only by a strictly better candidate under
// (cost asc, length asc, lex asc), a compare-and-update that is commutative:
// the final table content does not depend on arrival order.

const visitedShards = 64

type visitedEntry struct {
	costCents int
	path      []uint8
}

type visitedShard struct {
	mu sync.Mutex
	m  map[EffectSet]visitedEntry
}

type visitedTable struct {
	shards [visitedShards]visitedShard
}

func newVisitedTable() *visitedTable {
	t := &visitedTable{}
	for i := range t.shards {
		t.shards[i].m = make(map[EffectSet]visitedEntry)
	}
	return t
}

func (t *visitedTable) shard(set EffectSet) *visitedShard {
	return &t.shards[(uint64(set)*0x9E3779B97F4A7C15)>>58&(visitedShards-1)]
}

// record installs the candidate as its state's representative if it beats
// the current entry, and reports whether it did. Losing candidates are the
// deduplicated states that keep the search tractable.
func (t *visitedTable) record(cat *Catalog, set EffectSet, cost int, path []uint8) bool {
	sh := t.shard(set)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	e, ok := sh.m[set]
	if ok {
		switch {
		case cost > e.costCents:
			return false
		case cost == e.costCents && len(path) > len(e.path):
			return false
		case cost == e.costCents && len(path) == len(e.path) && !cat.pathLexLess(path, e.path):
			return false
		}
	}
	sh.m[set] = visitedEntry{costCents: cost, path: clonePath(path)}
	return true
}

// owns reports whether the candidate is still its state's representative.
// Distinct paths are never equal, so path identity decides ownership.
func (t *visitedTable) owns(set EffectSet, path []uint8) bool {
	sh := t.shard(set)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	e, ok := sh.m[set]
	return ok && pathEqual(e.path, path)
}

func pathEqual(a, b []uint8) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ── Searcher ────────────────────────────────────────────────────────

type searcher struct {
	cat      *Catalog
	cfg      Config
	maxDepth int
	strategy string

	visited *visitedTable
	best    bestTracker
	maxSale int // admissible sale-price bound, see pricing.go

	nodes        atomic.Int64
	deduped      atomic.Int64
	depthReached atomic.Int64
	exhausted    atomic.Bool

	deadline      time.Time
	hasDeadline   bool
	totalEstimate int64
	start         time.Time
}

func newSearcher(cat *Catalog, maxDepth int, cfg Config, strategy string) *searcher {
	s := &searcher{
		cat:           cat,
		cfg:           cfg,
		maxDepth:      maxDepth,
		strategy:      strategy,
		visited:       newVisitedTable(),
		maxSale:       maxSalePriceCents(cat),
		totalEstimate: estimateTotalNodes(len(cat.Additives), maxDepth),
		start:         time.Now(),
	}
	if cfg.TimeBudget > 0 {
		s.deadline = s.start.Add(cfg.TimeBudget)
		s.hasDeadline = true
	}
	// The empty path is a candidate too: shorter mixes can out-earn deeper
	// ones, and it seeds the dedup table so no-op children are discarded.
	set := cat.Product.InitialEffects
	sale := salePriceCents(cat, set)
	s.best.seed(sale, sale, 0, set)
	s.visited.record(cat, set, 0, nil)
	return s
}

// countNode accounts for one generated node and reports whether the search
// must stop because a budget ran out.
func (s *searcher) countNode(depth int) (stop bool) {
	n := s.nodes.Add(1)
	if s.cfg.Progress != nil && s.cfg.ReportInterval > 0 && n%s.cfg.ReportInterval == 0 {
		s.cfg.Progress(depth, n, s.totalEstimate)
	}
	if s.cfg.NodeBudget > 0 && n > s.cfg.NodeBudget {
		s.exhausted.Store(true)
		return true
	}
	if s.hasDeadline && n%1024 == 0 && time.Now().After(s.deadline) {
		s.exhausted.Store(true)
		return true
	}
	return false
}

func (s *searcher) offer(set EffectSet, cost int, path []uint8) {
	sale := salePriceCents(s.cat, set)
	s.best.offer(s.cat, sale-cost, sale, cost, set, path)
}

func (s *searcher) bumpDepth(depth int) {
	d := int64(depth)
	for {
		cur := s.depthReached.Load()
		if d <= cur || s.depthReached.CompareAndSwap(cur, d) {
			return
		}
	}
}

func (s *searcher) result() SearchResult {
	if s.cfg.Progress != nil {
		s.cfg.Progress(s.maxDepth, s.nodes.Load(), s.totalEstimate)
	}
	b := &s.best
	return SearchResult{
		Strategy:       s.strategy,
		Path:           clonePath(b.path),
		Set:            b.set,
		SalePriceCents: b.sale,
		CostCents:      b.cost,
		ProfitCents:    b.profit,
		MaxDepth:       s.maxDepth,
		Exhaustive:     !s.exhausted.Load(),
		Stats: Stats{
			NodesExpanded:      s.nodes.Load(),
			StatesDeduplicated: s.deduped.Load(),
			DepthReached:       int(s.depthReached.Load()),
			Elapsed:            time.Since(s.start),
		},
	}
}

// ── Layered (breadth-first) strategies ──────────────────────────────
//
// Both BFS strategies share one implementation; the single-threaded one is
// the degenerate worker count. Each level runs in two phases: expand the
// frontier shards and record candidates, then, after the level barrier,
// accept only the children that remained their state's representative.
// The accept set is determined by the total order alone, so worker racing
// cannot change it.

type bfsNode struct {
	set  EffectSet
	cost int
	path []uint8
}

func runBFS(cat *Catalog, maxDepth int, cfg Config) SearchResult {
	return runLayered(cat, maxDepth, cfg, 1, StrategyBFS)
}

func runBFSParallel(cat *Catalog, maxDepth int, cfg Config) SearchResult {
	return runLayered(cat, maxDepth, cfg, cfg.workers(), StrategyBFSParallel)
}

func runLayered(cat *Catalog, maxDepth int, cfg Config, workers int, name string) SearchResult {
	s := newSearcher(cat, maxDepth, cfg, name)
	frontier := []bfsNode{{set: cat.Product.InitialEffects}}
	for depth := 1; depth <= maxDepth && len(frontier) > 0 && !s.exhausted.Load(); depth++ {
		if cfg.Verbose {
			fmt.Fprintf(os.Stderr, "[%s] depth=%d frontier=%d\n", name, depth, len(frontier))
		}
		frontier = s.expandLevel(frontier, depth, workers)
	}
	return s.result()
}

func (s *searcher) expandLevel(frontier []bfsNode, depth, workers int) []bfsNode {
	if workers > len(frontier) {
		workers = len(frontier)
	}
	if workers < 1 {
		workers = 1
	}
	// Static range partition of the frontier; child candidates stay local to
	// their worker until the barrier.
	locals := make([][]bfsNode, workers)
	chunk := (len(frontier) + workers - 1) / workers
	before := s.nodes.Load()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo, hi := w*chunk, (w+1)*chunk
		if hi > len(frontier) {
			hi = len(frontier)
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			var local []bfsNode
			for i := lo; i < hi; i++ {
				node := &frontier[i]
				for idx := range s.cat.Additives {
					if s.exhausted.Load() || s.countNode(depth) {
						locals[w] = local
						return
					}
					a := &s.cat.Additives[idx]
					childSet := applyAdditive(node.set, a, s.cat.Capacity)
					cost := node.cost + a.CostCents
					path := make([]uint8, len(node.path)+1)
					copy(path, node.path)
					path[len(node.path)] = uint8(idx)
					// Every candidate is priced before dedup so the winner
					// tie-break sees all paths.
					s.offer(childSet, cost, path)
					if s.visited.record(s.cat, childSet, cost, path) {
						local = append(local, bfsNode{childSet, cost, path})
					} else {
						s.deduped.Add(1)
					}
				}
			}
			locals[w] = local
		}(w, lo, hi)
	}
	wg.Wait()

	if s.nodes.Load() > before {
		s.bumpDepth(depth)
	}

	// Accept phase: the level's visited updates are all published; keep only
	// candidates that are still representatives. Supersessions count as
	// deduplicated states so the totals match the single-threaded run.
	var next []bfsNode
	for _, local := range locals {
		for _, n := range local {
			if s.visited.owns(n.set, n.path) {
				next = append(next, n)
			} else {
				s.deduped.Add(1)
			}
		}
	}
	return next
}

// estimateTotalNodes is Σ additives^d for d in 1..maxDepth, saturating at
// MaxInt64. Only used for progress reporting.
func estimateTotalNodes(additives, maxDepth int) int64 {
	if additives == 0 || maxDepth <= 0 {
		return 0
	}
	var total, level int64 = 0, 1
	for d := 0; d < maxDepth; d++ {
		if level > math.MaxInt64/int64(additives) {
			return math.MaxInt64
		}
		level *= int64(additives)
		if total > math.MaxInt64-level {
			return math.MaxInt64
		}
		total += level
	}
	return total
}
