package main

import "math/bits"

// ── Pricing ─────────────────────────────────────────────────────────
//
// All money is integer cents and all multipliers are integer percent points,
// so every strategy computes bit-identical prices. The formula is a contract:
//
//	salePriceCents = base + base*Σmul/100   (integer division)

// salePriceCents prices an effect set against the product's base price.
// Effects absent from the set contribute nothing.
func salePriceCents(cat *Catalog, set EffectSet) int {
	total := 0
	for s := uint64(set); s != 0; s &= s - 1 {
		total += cat.MultiplierBP[bits.TrailingZeros64(s)]
	}
	base := cat.Product.BasePriceCents
	return base + base*total/100
}

// costCents sums additive unit costs over a path. Order never matters here;
// only effect resolution is order-sensitive.
func costCents(cat *Catalog, path []uint8) int {
	total := 0
	for _, idx := range path {
		total += cat.Additives[idx].CostCents
	}
	return total
}

// maxSalePriceCents is an admissible upper bound on the sale price of any
// reachable effect set: the sum of the highest positive multipliers that fit
// within capacity. Used by the backtracking strategy to prune branches that
// cannot beat the running best even with a perfect finish.
func maxSalePriceCents(cat *Catalog) int {
	muls := make([]int, len(cat.MultiplierBP))
	copy(muls, cat.MultiplierBP)
	// Selection of the top `capacity` positives; the table is small.
	best := 0
	for k := 0; k < cat.Capacity; k++ {
		hi := -1
		for i, v := range muls {
			if v > 0 && (hi < 0 || v > muls[hi]) {
				hi = i
			}
		}
		if hi < 0 {
			break
		}
		best += muls[hi]
		muls[hi] = 0
	}
	base := cat.Product.BasePriceCents
	return base + base*best/100
}
