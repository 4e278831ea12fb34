package main

// ── Effect resolution ───────────────────────────────────────────────
//
// Applying an additive walks its rule table in order. Conditions and
// exclusions are evaluated against the set as it stood BEFORE the additive;
// mutations accumulate in a working copy. That split is what makes rule
// order within one additive matter without making it self-interfering.

// applyAdditive resolves one additive against the current effect set and
// returns the resulting set. Pure; safe for concurrent use on the shared
// read-only catalog. Adding past capacity is a silent no-op: mixes saturate,
// they do not fail.
func applyAdditive(set EffectSet, a *Additive, capacity int) EffectSet {
	og := set
	ns := set
	for i := range a.Rules {
		r := &a.Rules[i]
		if og&r.CondMask != r.CondMask {
			continue
		}
		if og&r.NotMask != 0 {
			continue
		}
		switch r.Type {
		case RuleReplace:
			// Replace only when the target is still present and the
			// replacement is not; size is unchanged, so no capacity check.
			if ns.Has(r.Target) && !ns.Has(r.With) {
				ns = ns.Remove(r.Target).Add(r.With)
			}
		case RuleAdd:
			if !ns.Has(r.Target) && ns.Count() < capacity {
				ns = ns.Add(r.Target)
			}
		}
	}
	if a.HasDefault && !ns.Has(a.DefaultEffect) && ns.Count() < capacity {
		ns = ns.Add(a.DefaultEffect)
	}
	return ns
}

// effectsForPath replays a whole mix from the product's initial effects.
// The search never calls this in its hot loop (it carries sets forward); the
// reporter uses it to re-derive and cross-check a finished result.
func effectsForPath(cat *Catalog, path []uint8) EffectSet {
	set := cat.Product.InitialEffects
	for _, idx := range path {
		set = applyAdditive(set, &cat.Additives[idx], cat.Capacity)
	}
	return set
}
