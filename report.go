package main

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ── Reporting ───────────────────────────────────────────────────────
//
// The search result is re-derived and cross-checked before anything is
// printed: effects are replayed from the path, prices recomputed, bounds
// verified. A mismatch means a bug in the engine, surfaced as ErrInternal
// rather than a silently wrong answer.

// Output is the JSON shape emitted by the CLI and the lambda endpoint.
type Output struct {
	Product     string      `json:"product"`
	Mix         []string    `json:"mix"`
	Effects     []string    `json:"effects"`
	SaleCents   int         `json:"salePriceCents"`
	CostCents   int         `json:"costCents"`
	ProfitCents int         `json:"profitCents"`
	SalePrice   string      `json:"salePrice"`
	Cost        string      `json:"cost"`
	Profit      string      `json:"profit"`
	MaxDepth    int         `json:"maxDepth"`
	Exhaustive  bool        `json:"exhaustive"`
	Stats       OutputStats `json:"stats"`
}

// OutputStats is the per-run statistics block. These legitimately differ
// between strategies and runs; everything above them must not.
type OutputStats struct {
	Strategy           string `json:"strategy"`
	NodesExpanded      int64  `json:"nodesExpanded"`
	StatesDeduplicated int64  `json:"statesDeduplicated"`
	DepthReached       int    `json:"depthReached"`
	ElapsedMs          int64  `json:"elapsedMs"`
}

// Report validates a search result against the catalog and builds the
// output document. Any inconsistency is ErrInternal.
func Report(cat *Catalog, res SearchResult) (*Output, error) {
	if len(res.Path) > res.MaxDepth {
		return nil, fmt.Errorf("%w: mix of %d additives exceeds max depth %d",
			ErrInternal, len(res.Path), res.MaxDepth)
	}
	for _, idx := range res.Path {
		if int(idx) >= len(cat.Additives) {
			return nil, fmt.Errorf("%w: mix references additive index %d of %d",
				ErrInternal, idx, len(cat.Additives))
		}
	}
	if got := effectsForPath(cat, res.Path); got != res.Set {
		return nil, fmt.Errorf("%w: replayed effects %v do not match result %v",
			ErrInternal, cat.EffectNamesOf(got), cat.EffectNamesOf(res.Set))
	}
	if n := res.Set.Count(); n > cat.Capacity {
		return nil, fmt.Errorf("%w: result carries %d effects, capacity is %d",
			ErrInternal, n, cat.Capacity)
	}
	if got := salePriceCents(cat, res.Set); got != res.SalePriceCents {
		return nil, fmt.Errorf("%w: recomputed sale price %d != %d",
			ErrInternal, got, res.SalePriceCents)
	}
	if got := costCents(cat, res.Path); got != res.CostCents {
		return nil, fmt.Errorf("%w: recomputed cost %d != %d", ErrInternal, got, res.CostCents)
	}
	if res.SalePriceCents-res.CostCents != res.ProfitCents {
		return nil, fmt.Errorf("%w: profit %d != sale %d - cost %d",
			ErrInternal, res.ProfitCents, res.SalePriceCents, res.CostCents)
	}

	return &Output{
		Product:     cat.Product.Name,
		Mix:         cat.MixNames(res.Path),
		Effects:     cat.EffectNamesOf(res.Set),
		SaleCents:   res.SalePriceCents,
		CostCents:   res.CostCents,
		ProfitCents: res.ProfitCents,
		SalePrice:   dollars(res.SalePriceCents),
		Cost:        dollars(res.CostCents),
		Profit:      dollars(res.ProfitCents),
		MaxDepth:    res.MaxDepth,
		Exhaustive:  res.Exhaustive,
		Stats: OutputStats{
			Strategy:           res.Strategy,
			NodesExpanded:      res.Stats.NodesExpanded,
			StatesDeduplicated: res.Stats.StatesDeduplicated,
			DepthReached:       res.Stats.DepthReached,
			ElapsedMs:          res.Stats.Elapsed.Milliseconds(),
		},
	}, nil
}

// resultKey serializes everything strategies must agree on, byte for byte.
// Stats are excluded: node counts and timings are per-strategy.
func (o *Output) resultKey() string {
	key := *o
	key.Stats = OutputStats{}
	buf, _ := json.Marshal(&key)
	return string(buf)
}

func dollars(cents int) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// FormatOutput renders the human-readable report.
func FormatOutput(o *Output) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Product:  %s\n", o.Product)
	if len(o.Mix) == 0 {
		fmt.Fprintf(&b, "Mix:      (none, sell as-is)\n")
	} else {
		fmt.Fprintf(&b, "Mix:      %s\n", strings.Join(o.Mix, " -> "))
	}
	fmt.Fprintf(&b, "Effects:  %s\n", strings.Join(o.Effects, ", "))
	fmt.Fprintf(&b, "Sale:     %s\n", o.SalePrice)
	fmt.Fprintf(&b, "Cost:     %s\n", o.Cost)
	fmt.Fprintf(&b, "Profit:   %s\n", o.Profit)
	if !o.Exhaustive {
		fmt.Fprintf(&b, "Note:     search budget exhausted before full exploration\n")
	}
	fmt.Fprintf(&b, "Searched: %d nodes, %d deduplicated, depth %d/%d, %dms (%s)\n",
		o.Stats.NodesExpanded, o.Stats.StatesDeduplicated,
		o.Stats.DepthReached, o.MaxDepth, o.Stats.ElapsedMs, o.Stats.Strategy)
	return b.String()
}

// printBenchTable renders the strategy comparison grid.
func printBenchTable(outs []*Output) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-14s %14s %14s %8s %10s\n",
		"strategy", "nodes", "deduplicated", "depth", "elapsed")
	for _, o := range outs {
		fmt.Fprintf(&b, "%-14s %14d %14d %8d %8dms\n",
			o.Stats.Strategy, o.Stats.NodesExpanded,
			o.Stats.StatesDeduplicated, o.Stats.DepthReached, o.Stats.ElapsedMs)
	}
	return b.String()
}
