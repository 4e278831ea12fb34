package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// ── Catalog loading ─────────────────────────────────────────────────
//
// The input bundle arrives as four JSON documents: product, additives,
// effect multipliers and transformation rules. Everything is validated here,
// before any search starts; the engine itself never sees malformed data.

// LoadCatalog reads the four documents from files and parses them.
func LoadCatalog(productPath, additivesPath, multipliersPath, rulesPath string, capacity int) (*Catalog, error) {
	docs := make([]string, 4)
	for i, p := range []string{productPath, additivesPath, multipliersPath, rulesPath} {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidInput, p, err)
		}
		docs[i] = string(raw)
	}
	return ParseCatalog(docs[0], docs[1], docs[2], docs[3], capacity)
}

// ParseCatalog builds the immutable catalog from raw JSON documents.
// The multiplier table defines the effect universe; any other name appearing
// anywhere else must resolve against it.
func ParseCatalog(productJSON, additivesJSON, multipliersJSON, rulesJSON string, capacity int) (*Catalog, error) {
	if capacity <= 0 {
		capacity = DefaultEffectCapacity
	}
	cat := &Catalog{
		Capacity:     capacity,
		effectByName: make(map[string]EffectID),
	}

	if err := cat.parseMultipliers(multipliersJSON); err != nil {
		return nil, err
	}
	if err := cat.parseAdditives(additivesJSON); err != nil {
		return nil, err
	}
	if err := cat.parseRules(rulesJSON); err != nil {
		return nil, err
	}
	if err := cat.parseProduct(productJSON); err != nil {
		return nil, err
	}

	cat.buildLexRanks()
	return cat, nil
}

func (c *Catalog) parseMultipliers(doc string) error {
	root := gjson.Parse(doc)
	if !root.IsArray() {
		return fmt.Errorf("%w: effect multipliers: expected a JSON array", ErrInvalidInput)
	}
	for _, item := range root.Array() {
		name := item.Get("name").String()
		if name == "" {
			return fmt.Errorf("%w: effect multiplier entry without a name", ErrInvalidInput)
		}
		if _, dup := c.effectByName[name]; dup {
			return fmt.Errorf("%w: duplicate effect %q", ErrInvalidInput, name)
		}
		if len(c.EffectNames) >= 64 {
			return fmt.Errorf("%w: more than 64 distinct effects", ErrInvalidInput)
		}
		// Percent points: 0.26 becomes 26. Integer arithmetic from here on.
		bp := int(math.Round(item.Get("multiplier").Float() * 100))
		c.effectByName[name] = EffectID(len(c.EffectNames))
		c.EffectNames = append(c.EffectNames, name)
		c.MultiplierBP = append(c.MultiplierBP, bp)
	}
	return nil
}

func (c *Catalog) effectID(name, where string) (EffectID, error) {
	id, ok := c.effectByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s references unknown effect %q", ErrInvalidInput, where, name)
	}
	return id, nil
}

func (c *Catalog) parseAdditives(doc string) error {
	root := gjson.Parse(doc)
	if !root.IsArray() {
		return fmt.Errorf("%w: additives: expected a JSON array", ErrInvalidInput)
	}
	seen := make(map[string]bool)
	for _, item := range root.Array() {
		name := item.Get("name").String()
		if name == "" {
			return fmt.Errorf("%w: additive entry without a name", ErrInvalidInput)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate additive %q", ErrInvalidInput, name)
		}
		seen[name] = true
		if len(c.Additives) >= 256 {
			return fmt.Errorf("%w: more than 256 additives", ErrInvalidInput)
		}

		cost := item.Get("cost").Float()
		if cost < 0 {
			return fmt.Errorf("%w: additive %q has negative cost", ErrInvalidInput, name)
		}
		a := Additive{
			Name:      name,
			CostCents: int(math.Round(cost * 100)),
		}
		if def := item.Get("defaultEffect"); def.Exists() && def.String() != "" {
			id, err := c.effectID(def.String(), "additive "+name)
			if err != nil {
				return err
			}
			a.DefaultEffect = id
			a.HasDefault = true
		}
		c.Additives = append(c.Additives, a)
	}
	return nil
}

func (c *Catalog) additiveByName(name string) *Additive {
	for i := range c.Additives {
		if c.Additives[i].Name == name {
			return &c.Additives[i]
		}
	}
	return nil
}

func (c *Catalog) parseRules(doc string) error {
	root := gjson.Parse(doc)
	if !root.IsArray() {
		return fmt.Errorf("%w: transformation rules: expected a JSON array", ErrInvalidInput)
	}
	for _, entry := range root.Array() {
		subName := entry.Get("substanceName").String()
		add := c.additiveByName(subName)
		if add == nil {
			return fmt.Errorf("%w: rule table references unknown additive %q", ErrInvalidInput, subName)
		}
		for _, item := range entry.Get("rules").Array() {
			where := "rule for additive " + subName
			rule := Rule{Type: parseRuleType(item.Get("action.type").String())}
			if rule.Type == RuleNone {
				return fmt.Errorf("%w: %s has unknown action type %q",
					ErrInvalidInput, where, item.Get("action.type").String())
			}

			target, err := c.effectID(item.Get("action.target").String(), where)
			if err != nil {
				return err
			}
			rule.Target = target

			if rule.Type == RuleReplace {
				with := item.Get("action.withEffect")
				if !with.Exists() || with.String() == "" {
					return fmt.Errorf("%w: %s replaces without a withEffect", ErrInvalidInput, where)
				}
				id, err := c.effectID(with.String(), where)
				if err != nil {
					return err
				}
				rule.With = id
			}

			for _, cond := range item.Get("condition").Array() {
				id, err := c.effectID(cond.String(), where)
				if err != nil {
					return err
				}
				rule.CondMask = rule.CondMask.Add(id)
			}
			for _, np := range item.Get("ifNotPresent").Array() {
				id, err := c.effectID(np.String(), where)
				if err != nil {
					return err
				}
				rule.NotMask = rule.NotMask.Add(id)
			}

			add.Rules = append(add.Rules, rule)
		}
	}
	return nil
}

func (c *Catalog) parseProduct(doc string) error {
	root := gjson.Parse(doc)
	name := root.Get("name").String()
	if name == "" {
		return fmt.Errorf("%w: product without a name", ErrInvalidInput)
	}
	c.Product.Name = name

	if bp := root.Get("basePrice"); bp.Exists() && bp.Float() > 0 {
		c.Product.BasePriceCents = int(math.Round(bp.Float() * 100))
	} else {
		c.Product.BasePriceCents = defaultBasePriceCents(name)
	}

	// Single initialEffect (legacy document shape) or an initialEffects array.
	if ie := root.Get("initialEffect"); ie.Exists() && ie.String() != "" {
		id, err := c.effectID(ie.String(), "product")
		if err != nil {
			return err
		}
		c.Product.InitialEffects = c.Product.InitialEffects.Add(id)
	}
	for _, ie := range root.Get("initialEffects").Array() {
		id, err := c.effectID(ie.String(), "product")
		if err != nil {
			return err
		}
		c.Product.InitialEffects = c.Product.InitialEffects.Add(id)
	}

	if n := c.Product.InitialEffects.Count(); n > c.Capacity {
		return fmt.Errorf("%w: product has %d initial effects, capacity is %d",
			ErrInvalidInput, n, c.Capacity)
	}
	return nil
}

// defaultBasePriceCents keeps the historical name-based pricing for product
// documents that predate the explicit basePrice field.
func defaultBasePriceCents(productName string) int {
	switch {
	case strings.Contains(productName, "Meth"):
		return 7000
	case strings.Contains(productName, "Cocaine"):
		return 15000
	default:
		return 3500
	}
}

func (c *Catalog) buildLexRanks() {
	order := make([]int, len(c.Additives))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return c.Additives[order[i]].Name < c.Additives[order[j]].Name
	})
	c.lexRank = make([]int, len(c.Additives))
	for rank, idx := range order {
		c.lexRank[idx] = rank
	}
}
