package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMultipliers = `[
		{"name": "Calming", "multiplier": 0.10},
		{"name": "Energizing", "multiplier": 0.22},
		{"name": "Euphoric", "multiplier": 0.18},
		{"name": "Sedating", "multiplier": 0.26},
		{"name": "Toxic", "multiplier": -0.34},
		{"name": "Bright", "multiplier": 0.14}
	]`

	testAdditives = `[
		{"name": "Cuke", "cost": 2.0, "defaultEffect": "Energizing"},
		{"name": "Banana", "cost": 2.0, "defaultEffect": "Calming"},
		{"name": "Gasoline", "cost": 5.0, "defaultEffect": "Toxic"},
		{"name": "Paracetamol", "cost": 3.0, "defaultEffect": "Bright"}
	]`

	testRules = `[
		{"substanceName": "Banana", "rules": [
			{"action": {"type": "replace", "target": "Energizing", "withEffect": "Euphoric"}}
		]},
		{"substanceName": "Gasoline", "rules": [
			{"action": {"type": "replace", "target": "Euphoric", "withEffect": "Sedating"},
			 "condition": ["Calming"]},
			{"action": {"type": "add", "target": "Bright"},
			 "ifNotPresent": ["Toxic"]}
		]}
	]`

	testProduct = `{"name": "Test Batch", "basePrice": 35.0, "initialEffect": "Calming"}`
)

func parseTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := ParseCatalog(testProduct, testAdditives, testMultipliers, testRules, 8)
	require.NoError(t, err)
	return cat
}

func TestParseCatalog(t *testing.T) {
	t.Parallel()
	cat := parseTestCatalog(t)

	require.Len(t, cat.EffectNames, 6)
	assert.Equal(t, []int{10, 22, 18, 26, -34, 14}, cat.MultiplierBP)

	require.Len(t, cat.Additives, 4)
	cuke := cat.additiveByName("Cuke")
	require.NotNil(t, cuke)
	assert.Equal(t, 200, cuke.CostCents)
	assert.True(t, cuke.HasDefault)
	assert.Equal(t, "Energizing", cat.EffectNames[cuke.DefaultEffect])

	banana := cat.additiveByName("Banana")
	require.NotNil(t, banana)
	require.Len(t, banana.Rules, 1)
	assert.Equal(t, RuleReplace, banana.Rules[0].Type)
	assert.Equal(t, "Euphoric", cat.EffectNames[banana.Rules[0].With])

	gasoline := cat.additiveByName("Gasoline")
	require.NotNil(t, gasoline)
	require.Len(t, gasoline.Rules, 2)
	calming, ok := cat.effectByName["Calming"]
	require.True(t, ok)
	assert.True(t, gasoline.Rules[0].CondMask.Has(calming))
	toxic, ok := cat.effectByName["Toxic"]
	require.True(t, ok)
	assert.True(t, gasoline.Rules[1].NotMask.Has(toxic))

	assert.Equal(t, "Test Batch", cat.Product.Name)
	assert.Equal(t, 3500, cat.Product.BasePriceCents)
	assert.True(t, cat.Product.InitialEffects.Has(calming))
	assert.Equal(t, 1, cat.Product.InitialEffects.Count())
}

func TestParseProductDefaultBasePrice(t *testing.T) {
	t.Parallel()
	for name, want := range map[string]int{
		`{"name": "Blue Meth"}`:    7000,
		`{"name": "Pure Cocaine"}`: 15000,
		`{"name": "OG Kush"}`:      3500,
	} {
		cat, err := ParseCatalog(name, testAdditives, testMultipliers, testRules, 8)
		require.NoError(t, err, name)
		assert.Equal(t, want, cat.Product.BasePriceCents, name)
	}
}

func TestParseProductInitialEffectsArray(t *testing.T) {
	t.Parallel()
	product := `{"name": "X", "basePrice": 10, "initialEffects": ["Calming", "Bright"]}`
	cat, err := ParseCatalog(product, testAdditives, testMultipliers, testRules, 8)
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Product.InitialEffects.Count())
}

func TestParseCatalogRejectsBadInput(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name                             string
		product, additives, mults, rules string
	}{
		{"multipliers not array", testProduct, testAdditives, `{}`, testRules},
		{"duplicate effect", testProduct, testAdditives,
			`[{"name": "Calming", "multiplier": 0.1}, {"name": "Calming", "multiplier": 0.2}]`,
			`[]`},
		{"unnamed effect", testProduct, testAdditives, `[{"multiplier": 0.1}]`, `[]`},
		{"unknown default effect", testProduct,
			`[{"name": "Cuke", "cost": 2.0, "defaultEffect": "Sparkly"}]`,
			testMultipliers, `[]`},
		{"negative additive cost", testProduct,
			`[{"name": "Cuke", "cost": -2.0}]`, testMultipliers, `[]`},
		{"duplicate additive", testProduct,
			`[{"name": "Cuke", "cost": 2.0}, {"name": "Cuke", "cost": 3.0}]`,
			testMultipliers, `[]`},
		{"rules for unknown additive", testProduct, testAdditives, testMultipliers,
			`[{"substanceName": "Ghost", "rules": []}]`},
		{"unknown action type", testProduct, testAdditives, testMultipliers,
			`[{"substanceName": "Cuke", "rules": [{"action": {"type": "remove", "target": "Calming"}}]}]`},
		{"replace without withEffect", testProduct, testAdditives, testMultipliers,
			`[{"substanceName": "Cuke", "rules": [{"action": {"type": "replace", "target": "Calming"}}]}]`},
		{"unknown rule target", testProduct, testAdditives, testMultipliers,
			`[{"substanceName": "Cuke", "rules": [{"action": {"type": "add", "target": "Sparkly"}}]}]`},
		{"unknown condition effect", testProduct, testAdditives, testMultipliers,
			`[{"substanceName": "Cuke", "rules": [{"action": {"type": "add", "target": "Calming"}, "condition": ["Sparkly"]}]}]`},
		{"product without name", `{"basePrice": 10}`, testAdditives, testMultipliers, testRules},
		{"unknown initial effect", `{"name": "X", "initialEffect": "Sparkly"}`,
			testAdditives, testMultipliers, testRules},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCatalog(tc.product, tc.additives, tc.mults, tc.rules, 8)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestParseCatalogInitialEffectsExceedCapacity(t *testing.T) {
	t.Parallel()
	product := `{"name": "X", "initialEffects": ["Calming", "Bright", "Euphoric"]}`
	_, err := ParseCatalog(product, testAdditives, testMultipliers, testRules, 2)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestLexRanksFollowNames(t *testing.T) {
	t.Parallel()
	cat := parseTestCatalog(t)
	// Catalog order: Cuke, Banana, Gasoline, Paracetamol.
	// Name order:    Banana, Cuke, Gasoline, Paracetamol.
	banana := []uint8{1}
	cuke := []uint8{0}
	assert.True(t, cat.pathLexLess(banana, cuke))
	assert.False(t, cat.pathLexLess(cuke, banana))
	// Equal prefix, shorter path first.
	assert.True(t, cat.pathLexLess(banana, []uint8{1, 0}))
}
