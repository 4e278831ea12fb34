package main

import "sync"

// ── Backtracking strategy ───────────────────────────────────────────
//
// Depth-first exploration parallelized over the first additive choice: each
// worker pulls start indices off a channel and owns the whole subtree below
// them. The shared visited table makes workers cooperate: a subtree already
// reached more cheaply by another worker is cut on sight.
//
// Pruning uses the admissible sale-price bound: if even a perfect finish
// from here cannot strictly beat the running best profit, the branch dies.
// The comparison is strict, so candidates that merely tie are still
// generated and settled by the tie-break order.

func runDFS(cat *Catalog, maxDepth int, cfg Config) SearchResult {
	s := newSearcher(cat, maxDepth, cfg, StrategyDFS)

	workers := cfg.workers()
	if workers > len(cat.Additives) {
		workers = len(cat.Additives)
	}
	startCh := make(chan int, len(cat.Additives))
	for i := range cat.Additives {
		startCh <- i
	}
	close(startCh)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// One path buffer per worker; record and offer clone what they
			// keep, so sibling frames may reuse the slot.
			path := make([]uint8, 0, maxDepth)
			for start := range startCh {
				if s.exhausted.Load() {
					return
				}
				a := &s.cat.Additives[start]
				child := applyAdditive(s.cat.Product.InitialEffects, a, s.cat.Capacity)
				s.dfsVisit(child, a.CostCents, append(path, uint8(start)), 1)
			}
		}()
	}
	wg.Wait()
	return s.result()
}

func (s *searcher) dfsVisit(set EffectSet, cost int, path []uint8, depth int) {
	if s.countNode(depth) {
		return
	}
	s.bumpDepth(depth)
	s.offer(set, cost, path)
	if depth >= s.maxDepth || s.exhausted.Load() {
		return
	}
	// Descend only as the state's representative. A candidate that loses
	// here was reached better some other way; that way explores the subtree.
	if !s.visited.record(s.cat, set, cost, path) {
		s.deduped.Add(1)
		return
	}
	if s.maxSale-cost < s.best.bestProfit() {
		return
	}
	for idx := range s.cat.Additives {
		a := &s.cat.Additives[idx]
		child := applyAdditive(set, a, s.cat.Capacity)
		s.dfsVisit(child, cost+a.CostCents, append(path, uint8(idx)), depth+1)
	}
}
