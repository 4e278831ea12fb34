package main

import (
	"errors"
	"math/bits"
)

// Sentinel errors for the two caller-visible failure classes. Budget
// exhaustion is not an error; it is reported on the result itself.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal invariant violation")
)

// EffectID indexes into Catalog.EffectNames and Catalog.MultiplierBP.
type EffectID uint8

// EffectSet is a canonical, order-independent set of effects: bit i set means
// EffectID(i) is present. Two application orders that produce the same
// effects compare equal, which is what makes visited-state dedup work.
type EffectSet uint64

func (s EffectSet) Has(e EffectID) bool         { return s&(1<<e) != 0 }
func (s EffectSet) Add(e EffectID) EffectSet    { return s | 1<<e }
func (s EffectSet) Remove(e EffectID) EffectSet { return s &^ (1 << e) }
func (s EffectSet) Count() int                  { return bits.OnesCount64(uint64(s)) }

// Effects returns the member IDs in ascending order.
func (s EffectSet) Effects() []EffectID {
	out := make([]EffectID, 0, s.Count())
	for s != 0 {
		e := EffectID(bits.TrailingZeros64(uint64(s)))
		out = append(out, e)
		s = s.Remove(e)
	}
	return out
}

type RuleType int

const (
	RuleNone RuleType = iota
	RuleAdd
	RuleReplace
)

func parseRuleType(s string) RuleType {
	switch s {
	case "add":
		return RuleAdd
	case "replace":
		return RuleReplace
	}
	return RuleNone
}

// Rule is one transformation clause of an additive. Conditions are tested
// against the effect set as it was before the additive was applied; the
// mutation lands on the working copy.
type Rule struct {
	Type     RuleType
	CondMask EffectSet // every condition effect must be present
	NotMask  EffectSet // no ifNotPresent effect may be present
	Target   EffectID
	With     EffectID // replacement effect, RuleReplace only
}

// Additive is a catalog entry that transforms the current effect set when
// applied. Cost is in integer cents.
type Additive struct {
	Name          string
	CostCents     int
	DefaultEffect EffectID
	HasDefault    bool // additives may carry no default effect
	Rules         []Rule
}

// Product is the base being mixed. BasePriceCents and the optional inherent
// effects come from the product document.
type Product struct {
	Name           string
	BasePriceCents int
	InitialEffects EffectSet
}

// Catalog is the immutable input bundle shared read-only by all workers.
type Catalog struct {
	Product      Product
	Additives    []Additive
	EffectNames  []string // indexed by EffectID
	MultiplierBP []int    // indexed by EffectID, percent points (0.26 -> 26)
	Capacity     int      // max effects a set may hold

	effectByName map[string]EffectID
	lexRank      []int // lexRank[additive index] = rank of its name
}

// MixNames maps a path of additive indices to additive names.
func (c *Catalog) MixNames(path []uint8) []string {
	names := make([]string, len(path))
	for i, idx := range path {
		names[i] = c.Additives[idx].Name
	}
	return names
}

// EffectNamesOf returns the member effect names sorted by ID, which is the
// canonical rendering order for the output contract.
func (c *Catalog) EffectNamesOf(set EffectSet) []string {
	ids := set.Effects()
	names := make([]string, len(ids))
	for i, e := range ids {
		names[i] = c.EffectNames[e]
	}
	return names
}

// pathLexLess compares two paths by additive name, element by element, the
// way the winner tie-break demands. Shorter paths only reach here on equal
// length, but the prefix rule is implemented anyway.
func (c *Catalog) pathLexLess(a, b []uint8) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ra, rb := c.lexRank[a[i]], c.lexRank[b[i]]
		if ra != rb {
			return ra < rb
		}
	}
	return len(a) < len(b)
}

func clonePath(p []uint8) []uint8 {
	if len(p) == 0 {
		return nil
	}
	out := make([]uint8, len(p))
	copy(out, p)
	return out
}
