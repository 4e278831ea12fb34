package main

import "testing"

func pricingCatalog(base int, multipliers ...int) *Catalog {
	cat := &Catalog{MultiplierBP: multipliers, Capacity: 8}
	cat.Product.BasePriceCents = base
	return cat
}

func TestSalePriceFormula(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		base int
		muls []int
		set  EffectSet
		want int
	}{
		{"no effects", 10000, []int{50}, 0, 10000},
		{"single positive", 10000, []int{50}, set(0), 15000},
		{"negative drags the sum", 3500, []int{50, -20}, set(0, 1), 4550},
		{"net negative", 10000, []int{-30}, set(0), 7000},
		{"integer division truncates", 999, []int{50}, set(0), 1498},
		{"absent effects contribute nothing", 10000, []int{50, 30, 40}, set(1), 13000},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cat := pricingCatalog(tc.base, tc.muls...)
			if got := salePriceCents(cat, tc.set); got != tc.want {
				t.Fatalf("salePriceCents = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestCostIsOrderIndependent(t *testing.T) {
	t.Parallel()
	cat := &Catalog{
		Capacity: 8,
		Additives: []Additive{
			{Name: "A", CostCents: 200},
			{Name: "B", CostCents: 350},
			{Name: "C", CostCents: 500},
		},
	}
	want := 200 + 350 + 500
	for _, path := range [][]uint8{{0, 1, 2}, {2, 1, 0}, {1, 2, 0}} {
		if got := costCents(cat, path); got != want {
			t.Fatalf("costCents(%v) = %d, want %d", path, got, want)
		}
	}
	if got := costCents(cat, nil); got != 0 {
		t.Fatalf("costCents(nil) = %d, want 0", got)
	}
}

func TestMaxSalePriceBound(t *testing.T) {
	t.Parallel()
	cat := pricingCatalog(10000, 50, 30, -20, 40)
	cat.Capacity = 2
	// Top two positives are 50 and 40; negatives never improve a sale.
	if got := maxSalePriceCents(cat); got != 19000 {
		t.Fatalf("maxSalePriceCents = %d, want 19000", got)
	}

	// The bound must dominate the price of every subset within capacity.
	for s := EffectSet(0); s < 1<<4; s++ {
		if s.Count() > cat.Capacity {
			continue
		}
		if price := salePriceCents(cat, s); price > 19000 {
			t.Fatalf("set %v prices at %d, above the bound", s.Effects(), price)
		}
	}
}
